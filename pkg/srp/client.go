package srp

import "math/big"

// Client implements the client-side SRP-6a operations for a fixed
// Configuration. A Client holds no session state of its own; every method
// takes the session data it needs and returns a fresh value, so one Client
// can safely serve many concurrent authentication attempts.
type Client struct {
	cfg *Configuration
}

// NewClient returns a Client bound to cfg.
func NewClient(cfg *Configuration) *Client {
	return &Client{cfg: cfg}
}

// Configuration returns the Configuration this Client is bound to.
func (c *Client) Configuration() *Configuration { return c.cfg }

// GenerateSaltAndVerifier performs the one-time registration step: it draws
// a fresh salt and computes the verifier v = g^x mod N, where
// x = H(salt ‖ H(username ‖ ":" ‖ password)). The caller sends (salt,
// verifier) to the server, which persists them against username; the
// password itself is never transmitted.
func (c *Client) GenerateSaltAndVerifier(username, password string) (Salt, Key, error) {
	salt, err := newSalt()
	if err != nil {
		return nil, Key{}, err
	}

	x := c.cfg.derivePrivateKey(username, password, salt)
	v := new(big.Int).Exp(c.cfg.G(), x, c.cfg.N())

	return salt, c.cfg.newKey(v), nil
}

// GenerateKeys draws a fresh ephemeral keypair (a, A), resampling a until
// A mod N != 0 (astronomically unlikely, but cheap to guard against).
func (c *Client) GenerateKeys() (KeyPair, error) {
	for {
		a, err := randomExponent()
		if err != nil {
			return KeyPair{}, err
		}

		A := new(big.Int).Exp(c.cfg.G(), a, c.cfg.N())
		key := c.cfg.newKey(A)
		if key.IsZeroModN(c.cfg.N()) {
			continue
		}

		return KeyPair{Public: key, private: c.cfg.newKey(a)}, nil
	}
}

// CalculateSharedSecret derives S = (B − k·g^x)^(a + u·x) mod N from the
// password, the registration salt, the client's own ephemeral keypair, and
// the server's public key B. It fails with ErrNullServerKey if B or the
// derived u reduce to zero mod N.
func (c *Client) CalculateSharedSecret(username, password string, salt Salt, keys KeyPair, B Key) (Key, error) {
	x := c.cfg.derivePrivateKey(username, password, salt)
	return c.calculateSharedSecret(x, keys, B)
}

// CalculateSharedSecretWithRawIdentity is the byte-string password variant:
// x = H(salt ‖ H(0x3A ‖ password)), omitting the username from the inner
// hash.
func (c *Client) CalculateSharedSecretWithRawIdentity(password []byte, salt Salt, keys KeyPair, B Key) (Key, error) {
	x := c.cfg.derivePrivateKeyRaw(password, salt)
	return c.calculateSharedSecret(x, keys, B)
}

func (c *Client) calculateSharedSecret(x *big.Int, keys KeyPair, B Key) (Key, error) {
	if B.IsZeroModN(c.cfg.N()) {
		return Key{}, ErrNullServerKey
	}

	u, err := c.cfg.computeU(keys.Public, B)
	if err != nil {
		return Key{}, err
	}

	// S = (B - k*g^x)^(a + u*x) mod N
	gx := new(big.Int).Exp(c.cfg.G(), x, c.cfg.N())
	kgx := new(big.Int).Mul(c.cfg.K(), gx)
	kgx.Mod(kgx, c.cfg.N())

	base := new(big.Int).Sub(B.Int(), kgx)
	base.Mod(base, c.cfg.N())

	ux := new(big.Int).Mul(u, x)
	exponent := new(big.Int).Add(keys.private.Int(), ux)

	S := new(big.Int).Exp(base, exponent, c.cfg.N())
	return c.cfg.newKey(S), nil
}

// CalculateClientProof computes M1, the client's proof of possession of the
// shared secret, to be sent to the server.
func (c *Client) CalculateClientProof(username string, salt Salt, A, B, S Key) []byte {
	K := c.cfg.sessionKey(S)
	return c.cfg.clientProof(username, salt, A, B, K)
}

// CalculateServerProof computes the value a server would be expected to
// return as M2. Exposed for tests and tooling that need to precompute an
// expected proof; a real client instead calls VerifyServerProof against the
// value received over the wire.
func (c *Client) CalculateServerProof(A Key, M1 []byte, S Key) []byte {
	K := c.cfg.sessionKey(S)
	return c.cfg.serverProof(A, M1, K)
}

// VerifyServerProof recomputes the expected M2 from A, M1, and S, and
// compares it in constant time against the value received from the server.
// Returns ErrInvalidServerProof on mismatch, meaning the server could not be
// authenticated (it either does not hold the verifier, or the proof was
// tampered with in transit).
func (c *Client) VerifyServerProof(M2Received, M1 []byte, A, S Key) error {
	expected := c.CalculateServerProof(A, M1, S)
	if !constantTimeEqual(M2Received, expected) {
		return ErrInvalidServerProof
	}
	return nil
}
