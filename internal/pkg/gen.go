package pkg

import (
	"crypto/rand"

	"github.com/google/uuid"
)

const (
	roomCodeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength  = 6
)

// GenerateNewSessionID - generates a new unique session identifier.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

// GenerateRoomCode - generates a short shareable room code, uppercase
// alphanumeric. Uniqueness against live rooms is the registry's job.
func GenerateRoomCode() string {
	buf := make([]byte, roomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	out := make([]byte, roomCodeLength)
	for i := range out {
		out[i] = roomCodeLetters[int(buf[i])%len(roomCodeLetters)]
	}

	return string(out)
}
