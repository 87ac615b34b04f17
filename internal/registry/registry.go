package registry

import (
	"strings"
	"sync"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/pkg"
)

// Registry owns the process-lifetime mapping from room code to room, plus a
// reverse index from session to room code. It guards only the maps; room
// state itself is serialized by each room's own mutex.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*entity.Room
	sessions map[entity.SessionID]string
}

func New() *Registry {
	return &Registry{
		rooms:    make(map[string]*entity.Room),
		sessions: make(map[entity.SessionID]string),
	}
}

// CreateRoom - allocates a fresh unique code and stores a new waiting room
// with the creator as its only participant.
func (that *Registry) CreateRoom(creator *entity.Participant) *entity.Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	code := pkg.GenerateRoomCode()
	for {
		if _, exists := that.rooms[code]; !exists {
			break
		}
		code = pkg.GenerateRoomCode()
	}

	room := entity.NewRoom(code, creator)
	that.rooms[code] = room
	that.sessions[creator.SessionID] = code

	return room
}

// Get - looks a room up by its case-normalized code.
func (that *Registry) Get(code string) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[normalizeCode(code)]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return room, nil
}

// BindSession - records which room a session belongs to.
func (that *Registry) BindSession(id entity.SessionID, code string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions[id] = normalizeCode(code)
}

// UnbindSession - forgets a session's room binding; idempotent.
func (that *Registry) UnbindSession(id entity.SessionID) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.sessions, id)
}

// RoomCodeBySession - returns the code of the room a session is bound to.
func (that *Registry) RoomCodeBySession(id entity.SessionID) (string, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	code, ok := that.sessions[id]

	return code, ok
}

// Delete - removes a room and every session binding pointing at it;
// idempotent.
func (that *Registry) Delete(code string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	code = normalizeCode(code)

	room, ok := that.rooms[code]
	if !ok {
		return
	}

	// In-flight commands holding a stale pointer must observe the removal.
	room.Lock()
	room.Detach()
	room.Unlock()

	delete(that.rooms, code)

	for id, bound := range that.sessions {
		if bound == code {
			delete(that.sessions, id)
		}
	}
}

// Codes - returns a snapshot of all live room codes.
func (that *Registry) Codes() []string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	codes := make([]string, 0, len(that.rooms))
	for code := range that.rooms {
		codes = append(codes, code)
	}

	return codes
}

func (that *Registry) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}

// Reset - drops all rooms and bindings; for tests.
func (that *Registry) Reset() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rooms = make(map[string]*entity.Room)
	that.sessions = make(map[entity.SessionID]string)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
