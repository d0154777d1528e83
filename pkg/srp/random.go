package srp

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
)

// saltSize is the length in bytes of a newly generated Salt.
const saltSize = 16

// ephemeralSize is the number of random bytes drawn for a private ephemeral
// exponent (a or b), matching the entropy used throughout the retrieved
// reference implementations.
const ephemeralSize = 32

// randomBytes draws n cryptographically secure random bytes. A failure to
// read from the OS CSPRNG is fatal; callers propagate it rather than retry.
func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("srp: failed to read random bytes: %w", err)
	}
	return b, nil
}

// randomExponent draws an ephemeralSize-byte secure random value and
// interprets it as a big integer, for use as a or b.
func randomExponent() (*big.Int, error) {
	b, err := randomBytes(ephemeralSize)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}

// newSalt draws a fresh Salt from the secure random source.
func newSalt() (Salt, error) {
	b, err := randomBytes(saltSize)
	if err != nil {
		return nil, err
	}
	return Salt(b), nil
}

// constantTimeEqual reports whether a and b are byte-equal, examining every
// byte regardless of where the first difference occurs. Used for all
// secret-derived proof comparisons (M1, M2) to avoid leaking which byte
// differed through timing.
func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
