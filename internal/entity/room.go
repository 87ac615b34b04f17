package entity

import (
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

const (
	StatusWaiting  = "waiting"
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"
)

const maxParticipants = 2

// Room is the authoritative unit of one game session. Every read-modify-write
// of a room happens under its embedded mutex; no operation ever needs two
// rooms at once.
type Room struct {
	sync.Mutex

	Code      string
	Players   []*Participant
	Board     Board
	Turn      string
	Status    string
	Winner    string
	CreatedAt time.Time

	Rematch *Rematch

	detached bool
}

// NewRoom - creates a room in waiting state with its creator as MarkX.
func NewRoom(code string, creator *Participant) *Room {
	creator.Mark = MarkX

	return &Room{
		Code:      code,
		Players:   []*Participant{creator},
		Board:     NewBoard(),
		Turn:      MarkX,
		Status:    StatusWaiting,
		CreatedAt: time.Now(),
	}
}

// AddParticipant - binds the second session to the room and starts the game.
func (that *Room) AddParticipant(joiner *Participant) error {
	if that.ParticipantByID(joiner.SessionID) != nil {
		return apperror.ErrAlreadyJoined
	}

	if len(that.Players) >= maxParticipants {
		return apperror.ErrRoomFull
	}

	joiner.Mark = MarkO
	that.Players = append(that.Players, joiner)

	if len(that.Players) == maxParticipants {
		that.Status = StatusOngoing
	}

	return nil
}

// RemoveParticipant - unbinds a session from the room; idempotent. Any
// outstanding rematch acceptance by that session is withdrawn with it.
func (that *Room) RemoveParticipant(id SessionID) bool {
	for i, player := range that.Players {
		if player.SessionID != id {
			continue
		}

		that.Players = append(that.Players[:i], that.Players[i+1:]...)

		if that.Rematch != nil {
			that.Rematch.Withdraw(id)
		}

		return true
	}

	return false
}

func (that *Room) ParticipantByID(id SessionID) *Participant {
	for _, player := range that.Players {
		if player.SessionID == id {
			return player
		}
	}
	return nil
}

func (that *Room) Opponent(id SessionID) *Participant {
	for _, player := range that.Players {
		if player.SessionID != id {
			return player
		}
	}
	return nil
}

// MakeTurn - applies one move for the given mark and advances the game state.
func (that *Room) MakeTurn(mark string, cell int) error {
	if cell < 0 || cell >= BoardSize {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidInput, cell)
	}

	if that.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if !that.Board.IsCellEmpty(cell) {
		return apperror.ErrCellOccupied
	}

	that.Board[cell] = mark
	that.Turn = ToggleMark(mark)

	if result := that.Board.DetermineResult(); result != EmptyCell {
		that.Winner = result
		that.Status = StatusFinished
	}

	return nil
}

// ResetForRematch - starts a fresh game in the same room: empty board, MarkX
// to move, no winner, rematch record destroyed.
func (that *Room) ResetForRematch() {
	that.Board.Reset()
	that.Turn = MarkX
	that.Winner = EmptyCell
	that.Status = StatusOngoing
	that.Rematch = nil
}

// Detach - marks the room as removed from the registry. Commands that fetched
// the room pointer before the removal see the flag under the room lock and
// reject instead of mutating unreachable state.
func (that *Room) Detach() {
	that.detached = true
}

func (that *Room) IsDetached() bool {
	return that.detached
}

func (that *Room) IsEmpty() bool {
	return len(that.Players) == 0
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}
