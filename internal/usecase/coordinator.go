package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/registry"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
)

const (
	RematchPending = "pending"
	RematchStarted = "started"
)

type sessionRepo interface {
	SaveName(ctx context.Context, id entity.SessionID, name string) error
	GetName(ctx context.Context, id entity.SessionID) (string, error)
}

// RoomState is an immutable snapshot of a room taken under its lock, safe to
// render and send after the lock is released.
type RoomState struct {
	Code    string
	Board   entity.Board
	Turn    string
	Status  string
	Winner  string
	Players []entity.Participant
}

// LeaveResult describes what a disconnect did to the room the session was in.
type LeaveResult struct {
	Code         string
	RoomDeleted  bool
	NotifyTarget entity.SessionID
	Notify       bool
}

// RoomCoordinator is the authoritative coordinator: it owns command handling
// against the registry and serializes every room mutation under that room's
// own mutex. It never blocks on anything but the session name store.
type RoomCoordinator struct {
	logger   *slog.Logger
	registry *registry.Registry
	sessions sessionRepo
}

func NewRoomCoordinator(logger *slog.Logger, reg *registry.Registry, sessions sessionRepo) *RoomCoordinator {
	return &RoomCoordinator{
		logger:   logger,
		registry: reg,
		sessions: sessions,
	}
}

// ResumeSession - returns the display name stored for a session, or an empty
// string for a session seen for the first time.
func (that *RoomCoordinator) ResumeSession(ctx context.Context, id entity.SessionID) (string, error) {
	name, err := that.sessions.GetName(ctx, id)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to get session name: %w", err)
	}

	return name, nil
}

// CreateRoom - creates a fresh waiting room with the caller as MarkX.
func (that *RoomCoordinator) CreateRoom(ctx context.Context, id entity.SessionID, name string) (*RoomState, error) {
	log := that.logger.With("method", "CreateRoom")

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: player name is required", apperror.ErrInvalidInput)
	}

	creator := &entity.Participant{SessionID: id, Name: name}
	room := that.registry.CreateRoom(creator)

	that.saveSessionName(ctx, id, name)

	room.Lock()
	state := snapshotLocked(room)
	room.Unlock()

	log.Info("room created", "code", state.Code, "player", name)

	return state, nil
}

// JoinRoom - binds the caller to an existing waiting room as MarkO and starts
// the game.
func (that *RoomCoordinator) JoinRoom(ctx context.Context, id entity.SessionID, name, code string) (*RoomState, error) {
	log := that.logger.With("method", "JoinRoom")

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: player name is required", apperror.ErrInvalidInput)
	}

	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: room code is required", apperror.ErrInvalidInput)
	}

	room, err := that.registry.Get(code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room %s: %w", code, err)
	}

	joiner := &entity.Participant{SessionID: id, Name: name}

	room.Lock()
	if room.IsDetached() {
		room.Unlock()
		return nil, fmt.Errorf("failed to join room %s: %w", code, apperror.ErrRoomNotFound)
	}
	err = room.AddParticipant(joiner)
	state := snapshotLocked(room)
	room.Unlock()

	if err != nil {
		return nil, fmt.Errorf("failed to join room %s: %w", state.Code, err)
	}

	that.registry.BindSession(id, state.Code)
	that.saveSessionName(ctx, id, name)

	log.Info("player joined room", "code", state.Code, "player", name)

	return state, nil
}

// MakeTurn - applies one move for the calling session and returns the
// canonical state to broadcast to both participants.
func (that *RoomCoordinator) MakeTurn(_ context.Context, id entity.SessionID, code string, cell int) (*RoomState, error) {
	room, err := that.registry.Get(code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room %s: %w", code, err)
	}

	room.Lock()
	defer room.Unlock()

	if room.IsDetached() {
		return nil, fmt.Errorf("failed to get room %s: %w", code, apperror.ErrRoomNotFound)
	}

	player := room.ParticipantByID(id)
	if player == nil {
		return nil, fmt.Errorf("%w: not a participant of room %s", apperror.ErrInvalidInput, room.Code)
	}

	if !room.IsOngoing() {
		return nil, fmt.Errorf("%w: game is not in progress", apperror.ErrInvalidInput)
	}

	if err = room.MakeTurn(player.Mark, cell); err != nil {
		return nil, fmt.Errorf("failed to make turn in room %s: %w", room.Code, err)
	}

	return snapshotLocked(room), nil
}

// RequestRematch - records the caller's acceptance; when both participants
// have accepted, the room is atomically reset into a fresh ongoing game.
func (that *RoomCoordinator) RequestRematch(_ context.Context, id entity.SessionID, code string) (string, *RoomState, error) {
	log := that.logger.With("method", "RequestRematch")

	room, err := that.registry.Get(code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get room %s: %w", code, err)
	}

	room.Lock()
	defer room.Unlock()

	if room.IsDetached() {
		return "", nil, fmt.Errorf("failed to get room %s: %w", code, apperror.ErrRoomNotFound)
	}

	if room.ParticipantByID(id) == nil {
		return "", nil, fmt.Errorf("%w: not a participant of room %s", apperror.ErrInvalidInput, room.Code)
	}

	if !room.IsFinished() {
		return "", nil, fmt.Errorf("%w: game is not finished", apperror.ErrInvalidInput)
	}

	if room.Rematch == nil {
		room.Rematch = entity.NewRematch()
	}

	room.Rematch.Accept(id)

	if !room.Rematch.IsComplete() {
		return RematchPending, snapshotLocked(room), nil
	}

	room.ResetForRematch()

	log.Info("rematch started", "code", room.Code)

	return RematchStarted, snapshotLocked(room), nil
}

// CancelRematch - withdraws the caller's acceptance. The board and the room
// phase stay exactly as they were.
func (that *RoomCoordinator) CancelRematch(_ context.Context, id entity.SessionID, code string) (*RoomState, error) {
	room, err := that.registry.Get(code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room %s: %w", code, err)
	}

	room.Lock()
	defer room.Unlock()

	if room.IsDetached() {
		return nil, fmt.Errorf("failed to get room %s: %w", code, apperror.ErrRoomNotFound)
	}

	if room.ParticipantByID(id) == nil {
		return nil, fmt.Errorf("%w: not a participant of room %s", apperror.ErrInvalidInput, room.Code)
	}

	if room.Rematch != nil {
		room.Rematch.Withdraw(id)
		if room.Rematch.Size() == 0 {
			room.Rematch = nil
		}
	}

	return snapshotLocked(room), nil
}

// Leave - reconciles a session going away: removes it from every room it
// occupies, reports who must be told the opponent left, and deletes rooms once
// empty. A session can occupy more than one room when it creates or joins a
// second one without leaving the first, so the whole registry is scanned.
// Remaining participants are notified only when their game had not finished.
func (that *RoomCoordinator) Leave(_ context.Context, id entity.SessionID) ([]LeaveResult, error) {
	log := that.logger.With("method", "Leave")

	that.registry.UnbindSession(id)

	var results []LeaveResult

	for _, code := range that.registry.Codes() {
		room, err := that.registry.Get(code)
		if err != nil {
			continue
		}

		room.Lock()

		if room.IsDetached() {
			room.Unlock()
			continue
		}

		wasFinished := room.IsFinished()
		removed := room.RemoveParticipant(id)

		result := LeaveResult{Code: room.Code}

		if opponent := room.Opponent(id); opponent != nil {
			result.NotifyTarget = opponent.SessionID
			result.Notify = removed && !wasFinished
		}

		empty := room.IsEmpty()

		room.Unlock()

		if !removed {
			continue
		}

		if empty {
			that.registry.Delete(code)
			result.RoomDeleted = true

			log.Info("room deleted", "code", code)
		}

		results = append(results, result)
	}

	return results, nil
}

// saveSessionName - best effort; losing a stored name never fails a command.
func (that *RoomCoordinator) saveSessionName(ctx context.Context, id entity.SessionID, name string) {
	if err := that.sessions.SaveName(ctx, id, name); err != nil {
		that.logger.Error("failed to save session name", "error", err)
	}
}

func snapshotLocked(room *entity.Room) *RoomState {
	players := make([]entity.Participant, 0, len(room.Players))
	for _, player := range room.Players {
		players = append(players, *player)
	}

	return &RoomState{
		Code:    room.Code,
		Board:   room.Board,
		Turn:    room.Turn,
		Status:  room.Status,
		Winner:  room.Winner,
		Players: players,
	}
}
