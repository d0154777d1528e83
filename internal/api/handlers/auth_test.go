package handlers_test

import (
	"bytes"
	"crypto"
	_ "crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullreceiver/srp6a/internal/api/handlers"
	"github.com/nullreceiver/srp6a/internal/auth"
	"github.com/nullreceiver/srp6a/pkg/protocol"
	"github.com/nullreceiver/srp6a/pkg/srp"
)

func newTestHandler(t *testing.T) (*handlers.AuthHandler, *srp.Configuration) {
	t.Helper()

	cfg, err := srp.NewConfiguration(srp.Group2048, crypto.SHA256)
	require.NoError(t, err)

	verifiers, err := auth.LoadVerifierStore(t.TempDir() + "/verifiers.json")
	require.NoError(t, err)

	sessionManager := auth.NewSessionManager([]byte("test-secret-32-bytes-long-value!"), time.Minute)
	t.Cleanup(sessionManager.Stop)

	rateLimiter := auth.NewRateLimiter()
	t.Cleanup(rateLimiter.Stop)

	logger := log.New(bytes.NewBuffer(nil), "", 0)

	h := handlers.NewAuthHandler(cfg, verifiers, sessionManager, rateLimiter, logger)
	t.Cleanup(h.Stop)

	return h, cfg
}

// TestFullHTTPHandshake drives register -> init -> verify entirely through
// the HTTP handlers, the same way cmd/srpcli's client does.
func TestFullHTTPHandshake(t *testing.T) {
	h, cfg := newTestHandler(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/srp/register", h.HandleSRPRegister)
	mux.HandleFunc("/auth/srp/init", h.HandleSRPInit)
	mux.HandleFunc("/auth/srp/verify", h.HandleSRPVerify)

	server := httptest.NewServer(mux)
	defer server.Close()

	username, password := "alice", "hunter2"

	client := srp.NewClient(cfg)
	salt, verifier, err := client.GenerateSaltAndVerifier(username, password)
	require.NoError(t, err)

	registerBody, err := json.Marshal(protocol.RegisterRequest{
		Username: username,
		Salt:     hex.EncodeToString(salt),
		Verifier: verifier.Hex(),
	})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/auth/srp/register", "application/json", bytes.NewReader(registerBody))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	clientKeys, err := client.GenerateKeys()
	require.NoError(t, err)

	initBody, err := json.Marshal(protocol.SRPInitRequest{Username: username, A: clientKeys.Public.Hex()})
	require.NoError(t, err)

	resp, err = http.Post(server.URL+"/auth/srp/init", "application/json", bytes.NewReader(initBody))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var initResp protocol.SRPInitResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&initResp))
	resp.Body.Close()

	serverSalt, err := hex.DecodeString(initResp.Salt)
	require.NoError(t, err)
	serverB, err := srp.KeyFromHex(initResp.B, cfg.PadSize())
	require.NoError(t, err)

	clientSecret, err := client.CalculateSharedSecret(username, password, srp.Salt(serverSalt), clientKeys, serverB)
	require.NoError(t, err)

	M1 := client.CalculateClientProof(username, srp.Salt(serverSalt), clientKeys.Public, serverB, clientSecret)

	verifyBody, err := json.Marshal(protocol.SRPVerifyRequest{
		SessionID: initResp.SessionID,
		M1:        hex.EncodeToString(M1),
	})
	require.NoError(t, err)

	resp, err = http.Post(server.URL+"/auth/srp/verify", "application/json", bytes.NewReader(verifyBody))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var verifyResp protocol.SRPVerifyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&verifyResp))
	resp.Body.Close()

	assert.NotEmpty(t, verifyResp.SessionToken)

	M2, err := hex.DecodeString(verifyResp.M2)
	require.NoError(t, err)
	assert.NoError(t, client.VerifyServerProof(M2, M1, clientKeys.Public, clientSecret))
}

func TestHandleSRPRegister_RejectsDuplicateUsername(t *testing.T) {
	h, cfg := newTestHandler(t)

	client := srp.NewClient(cfg)
	salt, verifier, err := client.GenerateSaltAndVerifier("alice", "hunter2")
	require.NoError(t, err)

	body, err := json.Marshal(protocol.RegisterRequest{
		Username: "alice",
		Salt:     hex.EncodeToString(salt),
		Verifier: verifier.Hex(),
	})
	require.NoError(t, err)

	req1 := httptest.NewRequest(http.MethodPost, "/auth/srp/register", bytes.NewReader(body))
	rr1 := httptest.NewRecorder()
	h.HandleSRPRegister(rr1, req1)
	require.Equal(t, http.StatusCreated, rr1.Code)

	req2 := httptest.NewRequest(http.MethodPost, "/auth/srp/register", bytes.NewReader(body))
	rr2 := httptest.NewRecorder()
	h.HandleSRPRegister(rr2, req2)
	assert.Equal(t, http.StatusConflict, rr2.Code)
}

func TestHandleSRPInit_UnknownUsernameLooksLikeAuthFailure(t *testing.T) {
	h, _ := newTestHandler(t)

	body, err := json.Marshal(protocol.SRPInitRequest{Username: "ghost", A: "aa"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/srp/init", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.HandleSRPInit(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	var errResp protocol.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
	assert.Equal(t, protocol.ErrCodeAuthenticationFailed, errResp.Code)
}

func TestHandleSRPVerify_UnknownSessionID(t *testing.T) {
	h, _ := newTestHandler(t)

	body, err := json.Marshal(protocol.SRPVerifyRequest{SessionID: "does-not-exist", M1: "aa"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/srp/verify", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.HandleSRPVerify(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var errResp protocol.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
	assert.Equal(t, protocol.ErrCodeInvalidSessionID, errResp.Code)
}
