package auth

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nullreceiver/srp6a/pkg/srp"
)

// VerifierRecord is the durable, JSON-serializable shape a server persists
// per registered user: the tuple the client handed over during
// registration. The password itself is never part of this record.
type VerifierRecord struct {
	Username string `json:"username"`
	Salt     string `json:"salt"`     // hex-encoded
	Verifier string `json:"verifier"` // hex-encoded, padded to the group's pad size
}

// VerifierStore persists VerifierRecords keyed by username in a single JSON
// file, read wholesale into memory and rewritten atomically on every change.
// This generalizes a single-user verifier file into a multi-user store.
type VerifierStore struct {
	mu      sync.RWMutex
	path    string
	records map[string]VerifierRecord
}

// LoadVerifierStore reads path into memory. A missing file is treated as an
// empty store (the first call to Put will create it).
func LoadVerifierStore(path string) (*VerifierStore, error) {
	store := &VerifierStore{
		path:    path,
		records: make(map[string]VerifierRecord),
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to read verifier store: %w", err)
	}

	if len(data) == 0 {
		return store, nil
	}

	var records []VerifierRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse verifier store: %w", err)
	}
	for _, r := range records {
		store.records[r.Username] = r
	}

	return store, nil
}

// Lookup returns the record for username, if one has been registered.
func (s *VerifierStore) Lookup(username string) (VerifierRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[username]
	return r, ok
}

// Put registers or replaces the record for record.Username, then persists
// the full store to disk.
func (s *VerifierStore) Put(record VerifierRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Username] = record
	return s.save()
}

// Count returns the number of registered users.
func (s *VerifierStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// save rewrites the store atomically: write to a temp file in the same
// directory, then rename over the destination, so a crash mid-write never
// leaves a truncated store on disk. Permissions are 0600, since the file
// contains password verifiers.
func (s *VerifierStore) save() error {
	records := make([]VerifierRecord, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal verifier store: %w", err)
	}

	dir := filepath.Dir(s.path)
	//nolint:gosec // G301: 0755 is acceptable for the store directory (file itself is 0600)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create verifier store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".verifiers-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp verifier file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write verifier store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp verifier file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set verifier file permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace verifier store: %w", err)
	}

	return nil
}

// NewVerifierRecord builds a VerifierRecord from a salt and verifier key, as
// produced by (*srp.Client).GenerateSaltAndVerifier.
func NewVerifierRecord(username string, salt srp.Salt, verifier srp.Key) VerifierRecord {
	return VerifierRecord{
		Username: username,
		Salt:     hex.EncodeToString(salt),
		Verifier: verifier.Hex(),
	}
}

// DecodeSalt decodes the record's hex-encoded salt back into an srp.Salt.
func (r VerifierRecord) DecodeSalt() (srp.Salt, error) {
	b, err := hex.DecodeString(r.Salt)
	if err != nil {
		return nil, fmt.Errorf("invalid salt encoding: %w", err)
	}
	return srp.Salt(b), nil
}

// DecodeVerifier decodes the record's hex-encoded verifier back into an
// srp.Key, padded to padSize bytes.
func (r VerifierRecord) DecodeVerifier(padSize int) (srp.Key, error) {
	return srp.KeyFromHex(r.Verifier, padSize)
}
