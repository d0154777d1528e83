package srp

import "math/big"

// derivePrivateKey computes x = H(salt ‖ H(username ‖ ":" ‖ password)), the
// private exponent shared by verifier generation and shared-secret
// derivation on the client.
func (c *Configuration) derivePrivateKey(username, password string, salt Salt) *big.Int {
	inner := c.hashBytes([]byte(username), []byte(":"), []byte(password))
	x := c.hashBytes(salt, inner)
	return new(big.Int).SetBytes(x)
}

// derivePrivateKeyRaw computes x = H(salt ‖ H(0x3A ‖ password)), the variant
// that omits the username from the inner hash (message = 0x3A ‖ password).
func (c *Configuration) derivePrivateKeyRaw(password []byte, salt Salt) *big.Int {
	inner := c.hashBytes([]byte{0x3A}, password)
	x := c.hashBytes(salt, inner)
	return new(big.Int).SetBytes(x)
}

// computeU computes u = H(pad(A) ‖ pad(B)) and rejects a zero result, which
// both sides must treat as a fatal protocol failure (ErrNullServerKey per
// spec — u collapsing to zero is equivalent in severity to a null key).
func (c *Configuration) computeU(A, B Key) (*big.Int, error) {
	digest := c.hashBytes(A.Padded(), B.Padded())
	u := new(big.Int).SetBytes(digest)
	if u.Sign() == 0 {
		return nil, ErrNullServerKey
	}
	return u, nil
}

// sessionKey computes K = H(pad(S)), the canonical RFC 2945/5054 form (see
// design notes: some historical variants hash S unpadded, or skip hashing S
// entirely — this implementation always hashes the padded secret).
func (c *Configuration) sessionKey(S Key) []byte {
	return c.hashBytes(S.Padded())
}

// hashNXorG computes H(pad(N)) ⊕ H(pad(g)), the first component of the
// client proof M1.
func (c *Configuration) hashNXorG() []byte {
	hN := c.hashBytes(pad(c.N().Bytes(), c.padSize))
	hG := c.hashBytes(pad(c.G().Bytes(), c.padSize))
	out := make([]byte, len(hN))
	for i := range out {
		out[i] = hN[i] ^ hG[i]
	}
	return out
}

// clientProof computes M1 = H( H(pad(N)) ⊕ H(pad(g)) ‖ H(username) ‖ salt ‖
// pad(A) ‖ pad(B) ‖ K ). Embedding H(username) prevents a malicious server
// from learning whether two users share a password.
func (c *Configuration) clientProof(username string, salt Salt, A, B Key, K []byte) []byte {
	hUsername := c.hashBytes([]byte(username))
	return c.hashBytes(c.hashNXorG(), hUsername, salt, A.Padded(), B.Padded(), K)
}

// serverProof computes M2 = H(pad(A) ‖ M1 ‖ K).
func (c *Configuration) serverProof(A Key, M1 []byte, K []byte) []byte {
	return c.hashBytes(A.Padded(), M1, K)
}
