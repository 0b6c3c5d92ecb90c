package credentials

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
)

// EnvGeminiAPIKey is the environment variable consulted on refresh.
const EnvGeminiAPIKey = "GEMINI_API_KEY"

// Store holds the Gemini API credential in memory. Interactive selection goes
// through the HTTP surface; Refresh re-reads the environment so a key rotated
// out of band is picked up without restarting.
type Store struct {
	mu     sync.RWMutex
	apiKey string
}

// NewStore seeds the store with an initial key, which may be empty.
func NewStore(initialKey string) *Store {
	return &Store{apiKey: strings.TrimSpace(initialKey)}
}

// APIKey returns the current key, or empty when none is configured.
func (s *Store) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

// Configured reports whether a usable credential is present.
func (s *Store) Configured() bool {
	return s.APIKey() != ""
}

// Set installs a new key selected by the user.
func (s *Store) Set(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("credentials: api key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = key
	return nil
}

// Refresh re-reads the environment. It never clears a key that is already
// set; an empty environment simply leaves the store as it was.
func (s *Store) Refresh(_ context.Context) error {
	key := strings.TrimSpace(os.Getenv(EnvGeminiAPIKey))
	if key == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = key
	return nil
}
