package srp

import "math/big"

// Server implements the server-side SRP-6a operations for a fixed
// Configuration. Like Client, a Server holds no session state; the caller
// is responsible for persisting (username, salt, verifier) and for holding
// the ephemeral KeyPair between GenerateKeys and the later verification
// step (see internal/auth's SRPStore for a concrete implementation of that
// storage).
type Server struct {
	cfg *Configuration
}

// NewServer returns a Server bound to cfg.
func NewServer(cfg *Configuration) *Server {
	return &Server{cfg: cfg}
}

// GenerateKeys draws a fresh ephemeral keypair (b, B), where
// B = (k·v + g^b mod N) mod N, resampling b until B mod N != 0.
func (s *Server) GenerateKeys(verifier Key) (KeyPair, error) {
	for {
		b, err := randomExponent()
		if err != nil {
			return KeyPair{}, err
		}

		kv := new(big.Int).Mul(s.cfg.K(), verifier.Int())
		kv.Mod(kv, s.cfg.N())

		gb := new(big.Int).Exp(s.cfg.G(), b, s.cfg.N())

		B := new(big.Int).Add(kv, gb)
		B.Mod(B, s.cfg.N())

		key := s.cfg.newKey(B)
		if key.IsZeroModN(s.cfg.N()) {
			continue
		}

		return KeyPair{Public: key, private: s.cfg.newKey(b)}, nil
	}
}

// CalculateSharedSecret derives S = (A · v^u)^b mod N from the client's
// public key A, the server's own ephemeral keypair, and the persisted
// verifier. Fails with ErrNullClientKey if A mod N == 0.
func (s *Server) CalculateSharedSecret(A Key, keys KeyPair, verifier Key) (Key, error) {
	if A.IsZeroModN(s.cfg.N()) {
		return Key{}, ErrNullClientKey
	}

	u, err := s.cfg.computeU(A, keys.Public)
	if err != nil {
		return Key{}, err
	}

	vu := new(big.Int).Exp(verifier.Int(), u, s.cfg.N())

	avu := new(big.Int).Mul(A.Int(), vu)
	avu.Mod(avu, s.cfg.N())

	S := new(big.Int).Exp(avu, keys.private.Int(), s.cfg.N())
	return s.cfg.newKey(S), nil
}

// VerifyClientProof recomputes the expected M1 from username, salt, A, B,
// and S, and compares it in constant time against the value received from
// the client. On success it returns M2 = server_proof(A, M1, H(pad(S))),
// which the caller returns to the client. On mismatch it returns
// ErrInvalidClientProof and no M2; the session must be discarded.
func (s *Server) VerifyClientProof(M1Received []byte, username string, salt Salt, A, B, S Key) ([]byte, error) {
	K := s.cfg.sessionKey(S)
	expected := s.cfg.clientProof(username, salt, A, B, K)

	if !constantTimeEqual(M1Received, expected) {
		return nil, ErrInvalidClientProof
	}

	return s.cfg.serverProof(A, expected, K), nil
}
