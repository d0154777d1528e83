package client

import (
	"crypto"
	_ "crypto/sha256" // register SHA-256 with the standard hash registry
	"encoding/hex"
	"fmt"

	"github.com/nullreceiver/srp6a/pkg/srp"
)

// defaultGroup and defaultHash must match the configuration the srp6a server
// was started with; the CLI has no discovery mechanism for these and they
// are not negotiated as part of the handshake.
const (
	defaultGroup = srp.Group2048
	defaultHash  = crypto.SHA256
)

// SRPClient wraps the shared SRP client implementation for use in the CLI,
// binding it to the group and digest the CLI assumes the server uses.
type SRPClient struct {
	*srp.Client
}

// NewSRPClient creates a new SRP client for authentication.
func NewSRPClient() (*SRPClient, error) {
	cfg, err := srp.NewConfiguration(defaultGroup, defaultHash)
	if err != nil {
		return nil, fmt.Errorf("failed to build SRP configuration: %w", err)
	}
	return &SRPClient{Client: srp.NewClient(cfg)}, nil
}

// RegisterUser runs the one-time local registration step and submits the
// resulting salt and verifier to the server. The password never leaves this
// function.
func (c *Client) RegisterUser(username, password string) error {
	srpClient, err := NewSRPClient()
	if err != nil {
		return err
	}

	salt, verifier, err := srpClient.GenerateSaltAndVerifier(username, password)
	if err != nil {
		return fmt.Errorf("failed to generate verifier: %w", err)
	}

	if _, err := c.Register(username, hex.EncodeToString(salt), verifier.Hex()); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	return nil
}

// Login runs the full two-phase SRP-6a handshake against the server and
// stores the resulting session token on success.
func (c *Client) Login(username, password string) error {
	srpClient, err := NewSRPClient()
	if err != nil {
		return err
	}

	keys, err := srpClient.GenerateKeys()
	if err != nil {
		return fmt.Errorf("failed to generate ephemeral key pair: %w", err)
	}

	initResp, err := c.SRPInit(username, keys.Public.Hex())
	if err != nil {
		return fmt.Errorf("SRP init failed: %w", err)
	}

	salt, err := hex.DecodeString(initResp.Salt)
	if err != nil {
		return fmt.Errorf("server returned malformed salt: %w", err)
	}

	B, err := srp.KeyFromHex(initResp.B, srpClient.PadSize())
	if err != nil {
		return fmt.Errorf("server returned malformed B: %w", err)
	}

	S, err := srpClient.CalculateSharedSecret(username, password, srp.Salt(salt), keys, B)
	if err != nil {
		return fmt.Errorf("failed to derive shared secret: %w", err)
	}

	M1 := srpClient.CalculateClientProof(username, srp.Salt(salt), keys.Public, B, S)

	verifyResp, err := c.SRPVerify(initResp.SessionID, hex.EncodeToString(M1))
	if err != nil {
		return fmt.Errorf("SRP verify failed: %w", err)
	}

	M2, err := hex.DecodeString(verifyResp.M2)
	if err != nil {
		return fmt.Errorf("server returned malformed M2: %w", err)
	}
	if err := srpClient.VerifyServerProof(M2, M1, keys.Public, S); err != nil {
		return fmt.Errorf("server proof verification failed: %w", err)
	}

	c.SetSessionToken(verifyResp.SessionToken)
	return nil
}

// PadSize exposes the configuration's pad size for callers outside this
// package that need to parse hex-encoded group elements.
func (c *SRPClient) PadSize() int {
	return c.Client.Configuration().PadSize()
}
