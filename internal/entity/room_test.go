package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

func newTestRoom() *Room {
	return NewRoom("AB12CD", &Participant{SessionID: "alice-session", Name: "Alice"})
}

func TestNewRoom(t *testing.T) {
	// Given: a freshly created room
	room := newTestRoom()

	// Then: creator is MarkX, room waits for an opponent, MarkX moves first
	require.Len(t, room.Players, 1)
	assert.Equal(t, MarkX, room.Players[0].Mark)
	assert.Equal(t, MarkX, room.Turn)
	assert.True(t, room.IsWaiting())
	assert.False(t, room.CreatedAt.IsZero())
}

func TestRoom_AddParticipant(t *testing.T) {
	t.Run("Second joiner gets MarkO and the game starts", func(t *testing.T) {
		// Given: a waiting room
		room := newTestRoom()

		// When: a second participant joins
		bob := &Participant{SessionID: "bob-session", Name: "Bob"}
		err := room.AddParticipant(bob)

		// Then: the room is ongoing and marks are fixed
		require.NoError(t, err)
		assert.Equal(t, MarkO, bob.Mark)
		assert.True(t, room.IsOngoing())
	})

	t.Run("Returns ErrAlreadyJoined for a session already in the room", func(t *testing.T) {
		// Given: a room with its creator
		room := newTestRoom()

		// When: the same session joins again
		err := room.AddParticipant(&Participant{SessionID: "alice-session", Name: "Alice"})

		// Then: the join is rejected and the room is unchanged
		assert.ErrorIs(t, err, apperror.ErrAlreadyJoined)
		assert.Len(t, room.Players, 1)
	})

	t.Run("Returns ErrRoomFull for a third participant", func(t *testing.T) {
		// Given: a room with two participants
		room := newTestRoom()
		require.NoError(t, room.AddParticipant(&Participant{SessionID: "bob-session", Name: "Bob"}))

		// When: a third session tries to join
		err := room.AddParticipant(&Participant{SessionID: "carol-session", Name: "Carol"})

		// Then: the join is rejected and the room is unchanged
		assert.ErrorIs(t, err, apperror.ErrRoomFull)
		assert.Len(t, room.Players, 2)
	})
}

func TestRoom_MakeTurn(t *testing.T) {
	t.Run("Accepted move writes the mark and flips the turn", func(t *testing.T) {
		// Given: an ongoing room
		room := newTestRoom()
		require.NoError(t, room.AddParticipant(&Participant{SessionID: "bob-session", Name: "Bob"}))

		// When: MarkX plays the top-left cell
		err := room.MakeTurn(MarkX, 0)

		// Then: the cell holds MarkX and MarkO moves next
		require.NoError(t, err)
		assert.Equal(t, MarkX, room.Board[0])
		assert.Equal(t, MarkO, room.Turn)
		assert.True(t, room.IsOngoing())
	})

	t.Run("Returns ErrNotYourTurn when moving out of order", func(t *testing.T) {
		room := newTestRoom()
		require.NoError(t, room.AddParticipant(&Participant{SessionID: "bob-session", Name: "Bob"}))

		// When: MarkO moves first
		err := room.MakeTurn(MarkO, 0)

		// Then: the move is rejected without state change
		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.True(t, room.Board.IsCellEmpty(0))
		assert.Equal(t, MarkX, room.Turn)
	})

	t.Run("Returns ErrCellOccupied for a taken cell", func(t *testing.T) {
		room := newTestRoom()
		require.NoError(t, room.AddParticipant(&Participant{SessionID: "bob-session", Name: "Bob"}))
		require.NoError(t, room.MakeTurn(MarkX, 4))

		// When: MarkO plays the same cell
		err := room.MakeTurn(MarkO, 4)

		// Then: the move is rejected and the cell keeps its mark
		assert.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, MarkX, room.Board[4])
	})

	t.Run("Returns ErrInvalidInput for an out-of-range cell", func(t *testing.T) {
		room := newTestRoom()
		require.NoError(t, room.AddParticipant(&Participant{SessionID: "bob-session", Name: "Bob"}))

		assert.ErrorIs(t, room.MakeTurn(MarkX, -1), apperror.ErrInvalidInput)
		assert.ErrorIs(t, room.MakeTurn(MarkX, 9), apperror.ErrInvalidInput)
	})

	t.Run("Completing the top row finishes the game", func(t *testing.T) {
		// Given: an ongoing room
		room := newTestRoom()
		require.NoError(t, room.AddParticipant(&Participant{SessionID: "bob-session", Name: "Bob"}))

		// When: X takes the top row while O plays elsewhere
		require.NoError(t, room.MakeTurn(MarkX, 0))
		require.NoError(t, room.MakeTurn(MarkO, 4))
		require.NoError(t, room.MakeTurn(MarkX, 1))
		require.NoError(t, room.MakeTurn(MarkO, 5))
		require.NoError(t, room.MakeTurn(MarkX, 2))

		// Then: the room is finished with MarkX as winner
		assert.True(t, room.IsFinished())
		assert.Equal(t, MarkX, room.Winner)
	})
}

func TestRoom_RemoveParticipant(t *testing.T) {
	t.Run("Removes a participant and reports emptiness", func(t *testing.T) {
		// Given: a room with two participants
		room := newTestRoom()
		require.NoError(t, room.AddParticipant(&Participant{SessionID: "bob-session", Name: "Bob"}))

		// When: both leave
		assert.True(t, room.RemoveParticipant("alice-session"))
		assert.False(t, room.IsEmpty())
		assert.True(t, room.RemoveParticipant("bob-session"))

		// Then: the room is empty
		assert.True(t, room.IsEmpty())
	})

	t.Run("Is idempotent", func(t *testing.T) {
		room := newTestRoom()

		assert.True(t, room.RemoveParticipant("alice-session"))
		assert.False(t, room.RemoveParticipant("alice-session"))
	})

	t.Run("Withdraws the leaver's rematch acceptance", func(t *testing.T) {
		// Given: a finished room where the leaver requested a rematch
		room := newTestRoom()
		require.NoError(t, room.AddParticipant(&Participant{SessionID: "bob-session", Name: "Bob"}))
		room.Status = StatusFinished
		room.Rematch = NewRematch()
		room.Rematch.Accept("alice-session")

		// When: the leaver goes away
		room.RemoveParticipant("alice-session")

		// Then: the acceptance is gone
		assert.False(t, room.Rematch.Contains("alice-session"))
	})
}

func TestRoom_ResetForRematch(t *testing.T) {
	// Given: a finished room with marks on the board
	room := newTestRoom()
	require.NoError(t, room.AddParticipant(&Participant{SessionID: "bob-session", Name: "Bob"}))
	require.NoError(t, room.MakeTurn(MarkX, 0))
	room.Status = StatusFinished
	room.Winner = MarkX
	room.Rematch = NewRematch()

	// When: resetting for a rematch
	room.ResetForRematch()

	// Then: fresh ongoing game, empty board, MarkX to move, record destroyed
	assert.True(t, room.IsOngoing())
	assert.Equal(t, MarkX, room.Turn)
	assert.Equal(t, EmptyCell, room.Winner)
	assert.Nil(t, room.Rematch)
	for i := 0; i < BoardSize; i++ {
		assert.True(t, room.Board.IsCellEmpty(i))
	}
}
