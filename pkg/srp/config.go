package srp

import (
	"crypto"
	"fmt"
	"math/big"
)

// Configuration bundles a Diffie-Hellman group, a digest, and the derived
// multiplier k. It is immutable once constructed and safe to share across
// concurrently executing sessions: client and server must agree on an
// identical Configuration (same group, same digest) before exchanging any
// messages.
type Configuration struct {
	group   *Group
	hash    crypto.Hash
	k       *big.Int
	padSize int
}

// NewConfiguration builds a Configuration from one of the predefined RFC
// 5054 group identifiers (Group1024 … Group8192, or the legacy Group512).
// hash must have been registered via a blank import of its implementation
// package (e.g. _ "crypto/sha256"), exactly as the standard library's own
// hash registry requires.
func NewConfiguration(groupID string, hash crypto.Hash) (*Configuration, error) {
	group, err := LookupGroup(groupID)
	if err != nil {
		return nil, err
	}
	return newConfiguration(group, hash)
}

// NewCustomConfiguration builds a Configuration from caller-supplied group
// parameters. No primality check is performed.
func NewCustomConfiguration(group *Group, hash crypto.Hash) (*Configuration, error) {
	return newConfiguration(group, hash)
}

func newConfiguration(group *Group, hash crypto.Hash) (*Configuration, error) {
	if !hash.Available() {
		return nil, fmt.Errorf("srp: hash %v is not registered (missing blank import?)", hash)
	}

	padSize := (group.N.BitLen() + 7) / 8

	cfg := &Configuration{
		group:   group,
		hash:    hash,
		padSize: padSize,
	}
	cfg.k = new(big.Int).SetBytes(cfg.hashBytes(pad(group.N.Bytes(), padSize), pad(group.G.Bytes(), padSize)))
	return cfg, nil
}

// Group returns the Diffie-Hellman group backing this configuration.
func (c *Configuration) Group() *Group { return c.group }

// Hash returns the digest family used by this configuration.
func (c *Configuration) Hash() crypto.Hash { return c.hash }

// K returns the SRP-6a multiplier k = H(pad(N) ‖ pad(g)) as a plain integer
// (it is never itself padded before use; it is a scalar multiplier, not a
// hash input).
func (c *Configuration) K() *big.Int { return c.k }

// PadSize returns ceil(bitlen(N) / 8), the byte length every group element
// is left-zero-padded to before being placed into a hash input.
func (c *Configuration) PadSize() int { return c.padSize }

// N returns the group's safe prime modulus.
func (c *Configuration) N() *big.Int { return c.group.N }

// G returns the group's generator.
func (c *Configuration) G() *big.Int { return c.group.G }

// newKey wraps n using this configuration's pad size.
func (c *Configuration) newKey(n *big.Int) Key {
	return NewKeyFromInt(n, c.padSize)
}

// hashBytes applies H to the concatenation of parts and returns the raw
// digest (not padded — callers pad first when a padded view is required).
func (c *Configuration) hashBytes(parts ...[]byte) []byte {
	h := c.hash.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}
