package apperror

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadyJoined = errors.New("already joined this room")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrInvalidInput  = errors.New("invalid input")
)

// Wire error kinds reported back to the offending connection.
const (
	KindRoomNotFound  = "RoomNotFound"
	KindRoomFull      = "RoomFull"
	KindAlreadyJoined = "AlreadyJoined"
	KindInvalidMove   = "InvalidMove"
	KindNotYourTurn   = "NotYourTurn"
	KindInvalidInput  = "InvalidInput"
	KindInternal      = "Internal"
)

// Kind - maps a command error to its wire kind.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return KindRoomNotFound
	case errors.Is(err, ErrRoomFull):
		return KindRoomFull
	case errors.Is(err, ErrAlreadyJoined):
		return KindAlreadyJoined
	case errors.Is(err, ErrCellOccupied):
		return KindInvalidMove
	case errors.Is(err, ErrNotYourTurn):
		return KindNotYourTurn
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	default:
		return KindInternal
	}
}
