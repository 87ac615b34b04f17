package usecase

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/registry"
)

func TestSweeper_Sweep(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Purges rooms past the TTL regardless of phase", func(t *testing.T) {
		// Given: an old finished room and an old ongoing room
		reg := registry.New()
		oldFinished := reg.CreateRoom(&entity.Participant{SessionID: "s1", Name: "p1"})
		oldFinished.Status = entity.StatusFinished
		oldOngoing := reg.CreateRoom(&entity.Participant{SessionID: "s2", Name: "p2"})
		oldOngoing.Status = entity.StatusOngoing

		sweeper := NewSweeper(logger, reg, time.Hour, time.Minute)

		// When: sweeping well past the TTL
		purged := sweeper.Sweep(time.Now().Add(2 * time.Hour))

		// Then: both rooms are gone
		assert.Equal(t, 2, purged)
		assert.Equal(t, 0, reg.Len())

		_, err := reg.Get(oldFinished.Code)
		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Keeps rooms younger than the TTL", func(t *testing.T) {
		// Given: a freshly created room
		reg := registry.New()
		room := reg.CreateRoom(&entity.Participant{SessionID: "s1", Name: "p1"})

		sweeper := NewSweeper(logger, reg, time.Hour, time.Minute)

		// When: sweeping now
		purged := sweeper.Sweep(time.Now())

		// Then: the room survives
		assert.Equal(t, 0, purged)

		_, err := reg.Get(room.Code)
		require.NoError(t, err)
	})
}
