package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/usecase"
)

// Inbound actions.
const (
	actionConnect        = "connect"
	actionRoomCreate     = "room:create"
	actionRoomJoin       = "room:join"
	actionGameTurn       = "game:turn"
	actionRematchRequest = "rematch:request"
	actionRematchCancel  = "rematch:cancel"
)

// Outbound actions.
const (
	actionRoomCreated      = "room:created"
	actionRoomJoined       = "room:joined"
	actionGameFinished     = "game:finished"
	actionRematchRequested = "rematch:requested"
	actionRematchWaiting   = "rematch:waiting"
	actionRematchStarted   = "rematch:started"
	actionRematchCancelled = "rematch:cancelled"
	actionOpponentLeft     = "game:opponent_left"
	actionError            = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Player holds what a client may know about a participant.
type Player struct {
	Name string `json:"name"`
	Mark string `json:"mark,omitempty"`
}

// Room is the canonical room state as rendered to clients. The server copy is
// authoritative; clients must overwrite any speculative local state with it.
type Room struct {
	Code   string    `json:"code"`
	Board  [9]string `json:"board"`
	Turn   string    `json:"turn,omitempty"`
	Status string    `json:"status"`
	Winner string    `json:"winner,omitempty"`
}

type ErrorInfo struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

type Payload struct {
	Player   *Player    `json:"player,omitempty"`
	Opponent *Player    `json:"opponent,omitempty"`
	Room     *Room      `json:"room,omitempty"`
	Winner   string     `json:"winner,omitempty"`
	Error    *ErrorInfo `json:"error,omitempty"`
}

type CreateRoomPayload struct {
	Player struct {
		Name string `json:"name"`
	} `json:"player"`
}

type JoinRoomPayload struct {
	Player struct {
		Name string `json:"name"`
	} `json:"player"`
	Room struct {
		Code string `json:"code"`
	} `json:"room"`
}

type TurnPayload struct {
	Room struct {
		Code string `json:"code"`
	} `json:"room"`
	Cell int `json:"cell"`
}

type RematchPayload struct {
	Room struct {
		Code string `json:"code"`
	} `json:"room"`
}

// roomView - renders a coordinator snapshot for the wire.
func roomView(state *usecase.RoomState) *Room {
	return &Room{
		Code:   state.Code,
		Board:  [9]string(state.Board),
		Turn:   state.Turn,
		Status: state.Status,
		Winner: state.Winner,
	}
}
