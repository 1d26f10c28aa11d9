package roomid

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// Canonical tokens are lowercase UUIDv4 strings, the shape the store issues.
// Validation runs client-locally so malformed input never costs a round-trip.

const (
	tokenLength = 36

	passwordLength   = 8
	passwordAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var dashPositions = map[int]bool{8: true, 13: true, 18: true, 23: true}

// New - issues a fresh canonical room token.
func New() string {
	return uuid.NewString()
}

// Validate - reports whether token matches the canonical shape: fixed
// length, lowercase hex alphabet per segment, version marker 4 and a
// valid variant nibble.
func Validate(token string) bool {
	if len(token) != tokenLength {
		return false
	}

	for i := 0; i < tokenLength; i++ {
		c := token[i]

		if dashPositions[i] {
			if c != '-' {
				return false
			}
			continue
		}

		if !isLowerHex(c) {
			return false
		}
	}

	if token[14] != '4' {
		return false
	}

	variant := token[19]
	return variant == '8' || variant == '9' || variant == 'a' || variant == 'b'
}

// NewPassword - generates the room credential: random lowercase
// alphanumeric characters, treated as uniform over the alphabet.
func NewPassword() string {
	password := make([]byte, passwordLength)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordAlphabet))))
		if err != nil {
			// crypto/rand only fails if the platform source is broken
			panic(err)
		}
		password[i] = passwordAlphabet[n.Int64()]
	}

	return string(password)
}

func isLowerHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}
