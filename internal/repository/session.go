package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

var ErrSessionNotFound = errors.New("session not found")

// Display names live as long as the session cookie, so a reconnecting client
// keeps its identity without re-entering a name.
const sessionTTL = 24 * time.Hour

type SessionRepository interface {
	SaveName(ctx context.Context, id entity.SessionID, name string) error
	GetName(ctx context.Context, id entity.SessionID) (string, error)
}

type dbSession struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) SessionRepository {
	return &dbSession{
		client: client,
	}
}

func (that *dbSession) SaveName(ctx context.Context, id entity.SessionID, name string) error {
	sessionKey := "session:" + string(id)

	if err := that.client.Set(ctx, sessionKey, name, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *dbSession) GetName(ctx context.Context, id entity.SessionID) (string, error) {
	sessionKey := "session:" + string(id)

	name, err := that.client.Get(ctx, sessionKey).Result()

	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to get session by ID: %w", err)
	}

	return name, nil
}
