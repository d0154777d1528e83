// Package handlers provides HTTP request handlers for the srp6a API.
package handlers

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/nullreceiver/srp6a/internal/auth"
	"github.com/nullreceiver/srp6a/pkg/protocol"
	"github.com/nullreceiver/srp6a/pkg/srp"
)

// sessionTTL bounds how long a pending init/verify handshake may stay
// outstanding before the session ID it handed out becomes invalid.
const sessionTTL = 5 * time.Minute

// AuthHandler handles SRP-6a authentication endpoints.
type AuthHandler struct {
	cfg            *srp.Configuration
	verifiers      *auth.VerifierStore
	pending        *auth.SRPStore
	sessionManager *auth.SessionManager
	rateLimiter    *auth.RateLimiter
	logger         *log.Logger
}

// NewAuthHandler creates a new authentication handler.
func NewAuthHandler(
	cfg *srp.Configuration,
	verifiers *auth.VerifierStore,
	sessionManager *auth.SessionManager,
	rateLimiter *auth.RateLimiter,
	logger *log.Logger,
) *AuthHandler {
	return &AuthHandler{
		cfg:            cfg,
		verifiers:      verifiers,
		pending:        auth.NewSRPStore(sessionTTL),
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
		logger:         logger,
	}
}

// Stop releases the handler's background goroutines.
func (ah *AuthHandler) Stop() {
	ah.pending.Stop()
}

// HandleSRPRegister handles POST /auth/srp/register - register a new user's
// salt and verifier. The client has already run generateSaltAndVerifier
// locally; the password is never sent.
func (ah *AuthHandler) HandleSRPRegister(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)

	var req protocol.RegisterRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		ah.logAuthEvent("srp_register_invalid_request", clientIP, "", fmt.Sprintf("parse error: %v", err))
		writeJSONError(w, http.StatusBadRequest, protocol.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" || req.Salt == "" || req.Verifier == "" {
		ah.logAuthEvent("srp_register_missing_field", clientIP, req.Username, "missing username, salt, or verifier")
		writeJSONError(w, http.StatusBadRequest, protocol.NewInvalidRequestError("missing required field: username, salt, or verifier"))
		return
	}

	if _, exists := ah.verifiers.Lookup(req.Username); exists {
		ah.logAuthEvent("srp_register_username_taken", clientIP, req.Username, "username already registered")
		writeJSONError(w, http.StatusConflict, protocol.NewUsernameTakenError(req.Username))
		return
	}

	record := auth.VerifierRecord{Username: req.Username, Salt: req.Salt, Verifier: req.Verifier}
	if _, err := record.DecodeSalt(); err != nil {
		writeJSONError(w, http.StatusBadRequest, protocol.NewInvalidRequestError("salt is not valid hex"))
		return
	}
	if _, err := record.DecodeVerifier(ah.cfg.PadSize()); err != nil {
		writeJSONError(w, http.StatusBadRequest, protocol.NewInvalidRequestError("verifier is not valid hex"))
		return
	}

	if err := ah.verifiers.Put(record); err != nil {
		ah.logAuthEvent("srp_register_store_error", clientIP, req.Username, fmt.Sprintf("failed to persist verifier: %v", err))
		writeJSONError(w, http.StatusInternalServerError, protocol.NewSystemError("failed to persist verifier"))
		return
	}

	ah.logAuthEvent("srp_register_success", clientIP, req.Username, "registration successful")
	writeJSONResponse(w, http.StatusCreated, protocol.RegisterResponse{Status: "registered"})
}

// HandleSRPInit handles POST /auth/srp/init - initialize SRP handshake.
func (ah *AuthHandler) HandleSRPInit(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)

	locked, retryAfter, _ := ah.rateLimiter.CheckLimit(clientIP)
	if locked {
		ah.logAuthEvent("srp_init_rate_limited", clientIP, "", "client locked out")
		writeRateLimited(w, retryAfter)
		return
	}

	var req protocol.SRPInitRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		ah.logAuthEvent("srp_init_invalid_request", clientIP, "", fmt.Sprintf("parse error: %v", err))
		writeJSONError(w, http.StatusBadRequest, protocol.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		writeJSONError(w, http.StatusBadRequest, protocol.NewInvalidRequestError("missing required field: username"))
		return
	}
	if req.A == "" {
		writeJSONError(w, http.StatusBadRequest, protocol.NewInvalidRequestError("missing required field: A"))
		return
	}

	record, exists := ah.verifiers.Lookup(req.Username)
	if !exists {
		// Don't reveal whether the username is registered - treat as an
		// ordinary authentication failure for rate-limiting purposes.
		ah.logAuthEvent("srp_init_unknown_username", clientIP, req.Username, "no verifier for username")
		delay := ah.rateLimiter.RecordFailure(clientIP)
		writeJSONError(w, http.StatusUnauthorized, protocol.NewAuthenticationFailedError(""), withRetryAfter(w, delay))
		return
	}

	salt, err := record.DecodeSalt()
	if err != nil {
		ah.logAuthEvent("srp_init_bad_salt", clientIP, req.Username, fmt.Sprintf("stored salt is corrupt: %v", err))
		writeJSONError(w, http.StatusInternalServerError, protocol.NewSystemError("stored verifier is corrupt"))
		return
	}
	verifier, err := record.DecodeVerifier(ah.cfg.PadSize())
	if err != nil {
		ah.logAuthEvent("srp_init_bad_verifier", clientIP, req.Username, fmt.Sprintf("stored verifier is corrupt: %v", err))
		writeJSONError(w, http.StatusInternalServerError, protocol.NewSystemError("stored verifier is corrupt"))
		return
	}

	A, err := srp.KeyFromHex(req.A, ah.cfg.PadSize())
	if err != nil {
		ah.logAuthEvent("srp_init_bad_A", clientIP, req.Username, fmt.Sprintf("A is not valid hex: %v", err))
		writeJSONError(w, http.StatusBadRequest, protocol.NewInvalidRequestError("A is not valid hex"))
		return
	}
	if A.IsZeroModN(ah.cfg.N()) {
		ah.logAuthEvent("srp_init_null_A", clientIP, req.Username, "client public key is zero mod N")
		delay := ah.rateLimiter.RecordFailure(clientIP)
		writeJSONError(w, http.StatusBadRequest, protocol.NewInvalidRequestError("A is zero mod N"), withRetryAfter(w, delay))
		return
	}

	server := srp.NewServer(ah.cfg)
	serverKeys, err := server.GenerateKeys(verifier)
	if err != nil {
		ah.logAuthEvent("srp_init_keygen_error", clientIP, req.Username, fmt.Sprintf("key generation failed: %v", err))
		writeJSONError(w, http.StatusInternalServerError, protocol.NewSystemError("key generation failed"))
		return
	}

	sessionID, err := ah.pending.Store(auth.PendingSession{
		Username: req.Username,
		Salt:     salt,
		A:        A,
		Keys:     serverKeys,
		Verifier: verifier,
	})
	if err != nil {
		ah.logAuthEvent("srp_init_session_store_error", clientIP, req.Username, fmt.Sprintf("failed to store pending session: %v", err))
		writeJSONError(w, http.StatusInternalServerError, protocol.NewSystemError("failed to store pending session"))
		return
	}

	resp := protocol.SRPInitResponse{
		SessionID: sessionID,
		Salt:      hex.EncodeToString(salt),
		B:         serverKeys.Public.Hex(),
	}

	ah.logAuthEvent("srp_init_success", clientIP, req.Username, "SRP init successful")
	writeJSONResponse(w, http.StatusOK, resp)
}

// HandleSRPVerify handles POST /auth/srp/verify - verify client proof and issue session token.
func (ah *AuthHandler) HandleSRPVerify(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)

	locked, retryAfter, _ := ah.rateLimiter.CheckLimit(clientIP)
	if locked {
		ah.logAuthEvent("srp_verify_rate_limited", clientIP, "", "client locked out")
		writeRateLimited(w, retryAfter)
		return
	}

	var req protocol.SRPVerifyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		ah.logAuthEvent("srp_verify_invalid_request", clientIP, "", fmt.Sprintf("parse error: %v", err))
		writeJSONError(w, http.StatusBadRequest, protocol.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.SessionID == "" || req.M1 == "" {
		writeJSONError(w, http.StatusBadRequest, protocol.NewInvalidRequestError("missing required field: session_id or M1"))
		return
	}

	pending, ok := ah.pending.Retrieve(req.SessionID)
	if !ok {
		ah.logAuthEvent("srp_verify_unknown_session", clientIP, "", "session_id not found or expired")
		writeJSONError(w, http.StatusBadRequest, protocol.NewInvalidSessionIDError())
		return
	}

	M1, err := hex.DecodeString(req.M1)
	if err != nil {
		ah.logAuthEvent("srp_verify_bad_M1", clientIP, pending.Username, fmt.Sprintf("M1 is not valid hex: %v", err))
		writeJSONError(w, http.StatusBadRequest, protocol.NewInvalidRequestError("M1 is not valid hex"))
		return
	}

	server := srp.NewServer(ah.cfg)
	S, err := server.CalculateSharedSecret(pending.A, pending.Keys, pending.Verifier)
	if err != nil {
		ah.logAuthEvent("srp_verify_shared_secret_error", clientIP, pending.Username, fmt.Sprintf("shared secret derivation failed: %v", err))
		delay := ah.rateLimiter.RecordFailure(clientIP)
		writeJSONError(w, http.StatusUnauthorized, protocol.NewAuthenticationFailedError(""), withRetryAfter(w, delay))
		return
	}

	M2, err := server.VerifyClientProof(M1, pending.Username, pending.Salt, pending.A, pending.Keys.Public, S)
	if err != nil {
		ah.logAuthEvent("srp_verify_failed", clientIP, pending.Username, fmt.Sprintf("proof verification failed: %v", err))
		delay := ah.rateLimiter.RecordFailure(clientIP)
		writeJSONError(w, http.StatusUnauthorized, protocol.NewAuthenticationFailedError(""), withRetryAfter(w, delay))
		return
	}

	ah.rateLimiter.RecordSuccess(clientIP)

	sessionToken, err := ah.sessionManager.CreateSession(pending.Username)
	if err != nil {
		ah.logAuthEvent("srp_verify_session_error", clientIP, pending.Username, fmt.Sprintf("session creation failed: %v", err))
		writeJSONError(w, http.StatusInternalServerError, protocol.NewSystemError("session creation failed"))
		return
	}

	resp := protocol.SRPVerifyResponse{
		M2:           hex.EncodeToString(M2),
		SessionToken: sessionToken,
	}

	ah.logAuthEvent("srp_verify_success", clientIP, pending.Username, "authentication successful")
	writeJSONResponse(w, http.StatusOK, resp)
}

// logAuthEvent logs an authentication event. A, B, M1, M2, and session
// tokens are deliberately never logged.
func (ah *AuthHandler) logAuthEvent(event, clientIP, username, details string) {
	ah.logger.Printf("[AUTH] event=%s client_ip=%s username=%s details=%s",
		event, clientIP, username, details)
}

// getClientIP extracts the client IP address from the request.
// Checks X-Forwarded-For header first (for proxies), then RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}

	remoteAddr := r.RemoteAddr
	if idx := strings.LastIndex(remoteAddr, ":"); idx != -1 {
		return remoteAddr[:idx]
	}
	return remoteAddr
}

// writeJSONResponse writes a JSON success response.
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeJSONError writes a protocol.ErrorResponse as JSON. Optional setup
// funcs run before the status is written (used to set Retry-After).
func writeJSONError(w http.ResponseWriter, statusCode int, errResp *protocol.ErrorResponse, setup ...func()) {
	for _, fn := range setup {
		fn()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errResp)
}

// withRetryAfter returns a setup func that sets the Retry-After header.
func withRetryAfter(w http.ResponseWriter, delay time.Duration) func() {
	return func() {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", auth.FormatRetryAfter(delay)))
	}
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set("Retry-After", fmt.Sprintf("%d", auth.FormatRetryAfter(retryAfter)))
	writeJSONError(w, http.StatusTooManyRequests, protocol.NewRateLimitExceededError(auth.FormatRetryAfter(retryAfter)))
}
