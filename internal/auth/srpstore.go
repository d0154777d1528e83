package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/nullreceiver/srp6a/pkg/srp"
)

// PendingSession is the server-side state that must survive between the
// init and verify steps of a handshake: the username and salt being
// authenticated, the client's public value A, the server's own ephemeral
// keypair (b, B), and the verifier looked up for this username. None of it
// is safe to derive again at verify time, since b must match the B already
// handed to the client.
type PendingSession struct {
	Username string
	Salt     srp.Salt
	A        srp.Key
	Keys     srp.KeyPair
	Verifier srp.Key
}

type srpSession struct {
	pending   PendingSession
	expiresAt time.Time
}

// SRPStore holds PendingSessions between a handshake's init and verify
// steps. It provides thread-safe storage with automatic cleanup of expired
// sessions.
type SRPStore struct {
	sessions map[string]*srpSession
	mu       sync.RWMutex
	ttl      time.Duration
	stopCh   chan struct{}
}

// NewSRPStore creates a new pending-session store with the given TTL.
// Sessions older than ttl are automatically cleaned up.
func NewSRPStore(ttl time.Duration) *SRPStore {
	store := &SRPStore{
		sessions: make(map[string]*srpSession),
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}

	go store.cleanupLoop()

	return store
}

// Store saves a pending session and returns a session ID. The session ID is
// returned to the client for use in the verify step.
func (s *SRPStore) Store(pending PendingSession) (string, error) {
	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	sessionID := base64.URLEncoding.EncodeToString(idBytes)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = &srpSession{
		pending:   pending,
		expiresAt: time.Now().Add(s.ttl),
	}

	return sessionID, nil
}

// Retrieve fetches a pending session by ID. Returns false if the session
// doesn't exist or has expired. The session is removed after retrieval
// (one-time use) regardless of outcome.
func (s *SRPStore) Retrieve(sessionID string) (PendingSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return PendingSession{}, false
	}
	delete(s.sessions, sessionID)

	if time.Now().After(session.expiresAt) {
		return PendingSession{}, false
	}

	return session.pending, true
}

// cleanupLoop periodically removes expired sessions until Stop is called.
func (s *SRPStore) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// Stop terminates the background cleanup goroutine.
func (s *SRPStore) Stop() {
	close(s.stopCh)
}

// cleanup removes all expired sessions.
func (s *SRPStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, session := range s.sessions {
		if now.After(session.expiresAt) {
			delete(s.sessions, id)
		}
	}
}

// Count returns the number of pending sessions (for testing/monitoring).
func (s *SRPStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
