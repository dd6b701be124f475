package hubclient

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/google/uuid"
)

// CredentialStore holds the client's identity: the anonymous session id
// from first launch, and the bearer token once the user signs in.
type CredentialStore interface {
	SessionID() string
	Token() string
	SetSessionID(id string)
	SetToken(token string)
}

// MemoryCredentialStore keeps credentials in memory. Suitable for tests
// and short-lived tools.
type MemoryCredentialStore struct {
	mu        sync.Mutex
	sessionID string
	token     string
}

// NewMemoryCredentialStore creates a store seeded with a fresh session id.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{sessionID: uuid.NewString()}
}

var _ CredentialStore = (*MemoryCredentialStore)(nil)

func (s *MemoryCredentialStore) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *MemoryCredentialStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *MemoryCredentialStore) SetSessionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = id
}

func (s *MemoryCredentialStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// fileCredentials is the on-disk shape of a FileCredentialStore.
type fileCredentials struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token,omitempty"`
}

// FileCredentialStore persists credentials to a JSON file so the
// session id survives restarts. Write failures are swallowed: losing
// persistence only costs a fresh session next launch.
type FileCredentialStore struct {
	mu    sync.Mutex
	path  string
	creds fileCredentials
}

// NewFileCredentialStore loads credentials from path, generating a new
// session id when the file is missing or unreadable.
func NewFileCredentialStore(path string) *FileCredentialStore {
	s := &FileCredentialStore{path: path}

	if data, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(data, &s.creds)
	}
	if s.creds.SessionID == "" {
		s.creds.SessionID = uuid.NewString()
		s.persist()
	}
	return s
}

var _ CredentialStore = (*FileCredentialStore)(nil)

func (s *FileCredentialStore) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.SessionID
}

func (s *FileCredentialStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.Token
}

func (s *FileCredentialStore) SetSessionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds.SessionID = id
	s.persist()
}

func (s *FileCredentialStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds.Token = token
	s.persist()
}

// persist writes the credentials file; callers hold the lock.
func (s *FileCredentialStore) persist() {
	data, err := json.Marshal(s.creds)
	if err != nil {
		return
	}
	_ = os.WriteFile(s.path, data, 0o600)
}
