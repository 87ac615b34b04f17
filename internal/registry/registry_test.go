package registry

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

var roomCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestRegistry_CreateRoom(t *testing.T) {
	// Given: an empty registry
	reg := New()

	// When: creating a room
	room := reg.CreateRoom(&entity.Participant{SessionID: "alice-session", Name: "Alice"})

	// Then: the room is stored under a well-formed unique code and the
	// creator's session is bound to it
	assert.Regexp(t, roomCodePattern, room.Code)
	assert.Equal(t, 1, reg.Len())

	stored, err := reg.Get(room.Code)
	require.NoError(t, err)
	assert.Same(t, room, stored)

	code, ok := reg.RoomCodeBySession("alice-session")
	require.True(t, ok)
	assert.Equal(t, room.Code, code)
}

func TestRegistry_Get(t *testing.T) {
	t.Run("Lookup is case-insensitive", func(t *testing.T) {
		// Given: a stored room
		reg := New()
		room := reg.CreateRoom(&entity.Participant{SessionID: "alice-session", Name: "Alice"})

		// When: looking it up with a lowercase code
		stored, err := reg.Get(strings.ToLower(room.Code))

		// Then: the room is found
		require.NoError(t, err)
		assert.Same(t, room, stored)
	})

	t.Run("Returns ErrRoomNotFound for an unknown code", func(t *testing.T) {
		reg := New()

		_, err := reg.Get("NOSUCH")

		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestRegistry_Delete(t *testing.T) {
	// Given: a room with two bound sessions
	reg := New()
	room := reg.CreateRoom(&entity.Participant{SessionID: "alice-session", Name: "Alice"})
	reg.BindSession("bob-session", room.Code)

	// When: deleting the room
	reg.Delete(room.Code)

	// Then: the room and both bindings are gone, holders of the stale pointer
	// see it detached, and deleting again is a no-op
	_, err := reg.Get(room.Code)
	assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
	assert.True(t, room.IsDetached())

	_, ok := reg.RoomCodeBySession("alice-session")
	assert.False(t, ok)
	_, ok = reg.RoomCodeBySession("bob-session")
	assert.False(t, ok)

	reg.Delete(room.Code)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_Codes(t *testing.T) {
	// Given: three rooms
	reg := New()
	want := make(map[string]bool)
	for _, session := range []entity.SessionID{"s1", "s2", "s3"} {
		room := reg.CreateRoom(&entity.Participant{SessionID: session, Name: "p"})
		want[room.Code] = true
	}

	// When: snapshotting the codes
	codes := reg.Codes()

	// Then: every live room appears exactly once
	require.Len(t, codes, 3)
	for _, code := range codes {
		assert.True(t, want[code])
	}
}

func TestRegistry_Reset(t *testing.T) {
	reg := New()
	reg.CreateRoom(&entity.Participant{SessionID: "alice-session", Name: "Alice"})

	reg.Reset()

	assert.Equal(t, 0, reg.Len())
	_, ok := reg.RoomCodeBySession("alice-session")
	assert.False(t, ok)
}
