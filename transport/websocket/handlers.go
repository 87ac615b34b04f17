package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/usecase"
)

func (that *Server) handleConnect(ctx context.Context, c *client, message *Message) error {
	log := that.logger.With("method", "handleConnect")

	name, err := that.coordinator.ResumeSession(ctx, c.sessionID)
	if err != nil {
		log.Error("failed to resume session", "error", err)
		that.sendError(c.sessionID, apperror.KindInternal, "failed to resume session")
		return fmt.Errorf("failed to resume session: %w", err)
	}

	that.sendTo(c.sessionID, message.Action, Payload{
		Player: &Player{Name: name},
	})

	return nil
}

func (that *Server) handleRoomCreate(ctx context.Context, c *client, message *Message) error {
	var payloadReq CreateRoomPayload
	if err := json.Unmarshal(message.Payload, &payloadReq); err != nil {
		that.sendError(c.sessionID, apperror.KindInvalidInput, "malformed payload")
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	state, err := that.coordinator.CreateRoom(ctx, c.sessionID, payloadReq.Player.Name)
	if err != nil {
		that.sendError(c.sessionID, apperror.Kind(err), err.Error())
		return nil
	}

	that.sendTo(c.sessionID, actionRoomCreated, Payload{
		Room: roomView(state),
	})

	return nil
}

func (that *Server) handleRoomJoin(ctx context.Context, c *client, message *Message) error {
	var payloadReq JoinRoomPayload
	if err := json.Unmarshal(message.Payload, &payloadReq); err != nil {
		that.sendError(c.sessionID, apperror.KindInvalidInput, "malformed payload")
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	state, err := that.coordinator.JoinRoom(ctx, c.sessionID, payloadReq.Player.Name, payloadReq.Room.Code)
	if err != nil {
		that.sendError(c.sessionID, apperror.Kind(err), err.Error())
		return nil
	}

	// Both participants learn who they are playing against and as which mark.
	for _, player := range state.Players {
		payloadResp := Payload{
			Player: &Player{Name: player.Name, Mark: player.Mark},
			Room:   roomView(state),
		}

		if opponent := opponentOf(state, player.SessionID); opponent != nil {
			payloadResp.Opponent = &Player{Name: opponent.Name, Mark: opponent.Mark}
		}

		that.sendTo(player.SessionID, actionRoomJoined, payloadResp)
	}

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, c *client, message *Message) error {
	var payloadReq TurnPayload
	if err := json.Unmarshal(message.Payload, &payloadReq); err != nil {
		that.sendError(c.sessionID, apperror.KindInvalidInput, "malformed payload")
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	state, err := that.coordinator.MakeTurn(ctx, c.sessionID, payloadReq.Room.Code, payloadReq.Cell)
	if err != nil {
		that.sendError(c.sessionID, apperror.Kind(err), err.Error())
		return nil
	}

	// Every accepted move is broadcast with the canonical board, terminal or
	// not; clients overwrite any speculative local state with it.
	that.broadcast(state, actionGameTurn, Payload{
		Room: roomView(state),
	})

	if state.Status == entity.StatusFinished {
		that.broadcast(state, actionGameFinished, Payload{
			Room:   roomView(state),
			Winner: state.Winner,
		})
	}

	return nil
}

func (that *Server) handleRematchRequest(ctx context.Context, c *client, message *Message) error {
	var payloadReq RematchPayload
	if err := json.Unmarshal(message.Payload, &payloadReq); err != nil {
		that.sendError(c.sessionID, apperror.KindInvalidInput, "malformed payload")
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	outcome, state, err := that.coordinator.RequestRematch(ctx, c.sessionID, payloadReq.Room.Code)
	if err != nil {
		that.sendError(c.sessionID, apperror.Kind(err), err.Error())
		return nil
	}

	if outcome == usecase.RematchStarted {
		that.broadcast(state, actionRematchStarted, Payload{
			Room: roomView(state),
		})

		return nil
	}

	that.sendTo(c.sessionID, actionRematchWaiting, Payload{})

	if opponent := opponentOf(state, c.sessionID); opponent != nil {
		that.sendTo(opponent.SessionID, actionRematchRequested, Payload{})
	}

	return nil
}

func (that *Server) handleRematchCancel(ctx context.Context, c *client, message *Message) error {
	var payloadReq RematchPayload
	if err := json.Unmarshal(message.Payload, &payloadReq); err != nil {
		that.sendError(c.sessionID, apperror.KindInvalidInput, "malformed payload")
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	state, err := that.coordinator.CancelRematch(ctx, c.sessionID, payloadReq.Room.Code)
	if err != nil {
		that.sendError(c.sessionID, apperror.Kind(err), err.Error())
		return nil
	}

	if opponent := opponentOf(state, c.sessionID); opponent != nil {
		that.sendTo(opponent.SessionID, actionRematchCancelled, Payload{})
	}

	return nil
}

// handleDisconnect - reconciles a connection going away, across every room
// the session occupied. Each remaining participant is told the opponent left
// at most once, and only for a game that had not finished.
func (that *Server) handleDisconnect(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleDisconnect", "sessionID", c.sessionID)

	if !that.unregisterClient(c) {
		// A newer connection took over this session; nothing to reconcile.
		return
	}

	results, err := that.coordinator.Leave(ctx, c.sessionID)
	if err != nil {
		log.Error("failed to reconcile disconnect", "error", err)
		return
	}

	for _, result := range results {
		if result.Notify {
			that.sendTo(result.NotifyTarget, actionOpponentLeft, Payload{})
		}

		log.Info("player disconnected", "code", result.Code, "roomDeleted", result.RoomDeleted)
	}
}

func (that *Server) broadcast(state *usecase.RoomState, action string, payload Payload) {
	for _, player := range state.Players {
		that.sendTo(player.SessionID, action, payload)
	}
}

func opponentOf(state *usecase.RoomState, id entity.SessionID) *entity.Participant {
	for i := range state.Players {
		if state.Players[i].SessionID != id {
			return &state.Players[i]
		}
	}
	return nil
}
