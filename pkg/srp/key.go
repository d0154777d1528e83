package srp

import (
	"encoding/hex"
	"math/big"
)

// Key represents a non-negative integer smaller than a group's modulus N, or
// more generally any value that participates in the exchange as a big
// integer: an ephemeral public/private value, a verifier, or a shared
// secret. It carries the padding width it was constructed with so that its
// padded byte view is unambiguous; a Key never stores bytes and an integer
// independently, to avoid the two views drifting apart.
type Key struct {
	n       *big.Int
	padSize int
}

// NewKeyFromInt wraps n, padded to padSize bytes when rendered for hashing.
func NewKeyFromInt(n *big.Int, padSize int) Key {
	return Key{n: new(big.Int).Set(n), padSize: padSize}
}

// NewKeyFromBytes interprets b as a big-endian unsigned integer.
func NewKeyFromBytes(b []byte, padSize int) Key {
	return Key{n: new(big.Int).SetBytes(b), padSize: padSize}
}

// KeyFromHex parses a hex string (as produced by Key.Hex) into a Key.
func KeyFromHex(s string, padSize int) (Key, error) {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return Key{}, ErrInvalidKey
	}
	return Key{n: n, padSize: padSize}, nil
}

// Int returns the big-integer view of the key. Callers must not mutate the
// returned value.
func (k Key) Int() *big.Int {
	if k.n == nil {
		return new(big.Int)
	}
	return k.n
}

// Bytes returns the minimal big-endian encoding of the key, with no leading
// zero padding.
func (k Key) Bytes() []byte {
	return k.Int().Bytes()
}

// Padded returns the big-endian encoding of the key, left-zero-padded to the
// key's configured pad size. This is the view used whenever the key is
// placed into a hash input representing a group element.
func (k Key) Padded() []byte {
	return pad(k.Bytes(), k.padSize)
}

// Hex returns the padded byte view hex-encoded.
func (k Key) Hex() string {
	return hex.EncodeToString(k.Padded())
}

// IsZeroModN reports whether the key reduces to zero modulo n. Both client
// and server must reject ephemeral public keys satisfying this before using
// them further.
func (k Key) IsZeroModN(n *big.Int) bool {
	return new(big.Int).Mod(k.Int(), n).Sign() == 0
}

// Zeroize overwrites the key's integer value. Intended for private keys and
// shared secrets once a session concludes or fails.
func (k *Key) Zeroize() {
	if k.n != nil {
		k.n.SetInt64(0)
	}
}

// KeyPair holds an ephemeral public/private pair generated by Client.GenerateKeys or Server.GenerateKeys.
// The private half is never persisted and should be zeroized as soon as the
// shared secret has been derived.
type KeyPair struct {
	Public  Key
	private Key
}

// Private returns the private half of the pair. Exported as a method rather
// than a field to discourage incidental copying into long-lived state.
func (kp KeyPair) Private() Key {
	return kp.private
}

// Zeroize clears the private half of the pair.
func (kp *KeyPair) Zeroize() {
	kp.private.Zeroize()
}

// Salt is an opaque per-user random byte string, 16 bytes for newly
// generated salts. It has no internal structure.
type Salt []byte

// pad left-zero-extends b to size bytes. If b is already size bytes or
// longer, it is returned unchanged: a correctly reduced group element never
// exceeds len(N) bytes, so callers choose a pad size large enough for every
// value in play.
func pad(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out
}
