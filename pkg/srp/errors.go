package srp

import "errors"

// Error kinds returned by the client and server roles. Every error here is
// non-recoverable within a session: the caller must discard the session's
// state rather than retry with the same keys.
var (
	// ErrNullClientKey is returned by the server when A mod N == 0.
	ErrNullClientKey = errors.New("srp: client public key is zero mod N")

	// ErrNullServerKey is returned by the client when B mod N == 0, or when
	// the derived scrambling parameter u is zero.
	ErrNullServerKey = errors.New("srp: server public key is zero mod N")

	// ErrInvalidClientProof is returned by the server when the client's M1
	// does not match the server's own computation.
	ErrInvalidClientProof = errors.New("srp: client proof does not match")

	// ErrInvalidServerProof is returned by the client when the server's M2
	// does not match the client's own computation.
	ErrInvalidServerProof = errors.New("srp: server proof does not match")

	// ErrInvalidKey is returned by KeyFromHex when the supplied hex string
	// cannot be parsed as an integer.
	ErrInvalidKey = errors.New("srp: invalid key encoding")
)
