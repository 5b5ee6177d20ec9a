package identity

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// store resolves display names from the users table.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new identity Resolver.
func New(db *sql.DB) Resolver {
	return &store{db: db}
}

// GetDisplayName returns the stored display name for a user. Unknown ids
// (guests who never created a profile) get a derived guest name instead of
// an error.
func (s *store) GetDisplayName(userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var name string
	err := s.db.QueryRow("SELECT display_name FROM users WHERE id = ?", userID).Scan(&name)
	if err == sql.ErrNoRows {
		return GuestName(userID), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up display name: %w", err)
	}
	return name, nil
}

func (s *store) UpsertUser(userID, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO users (id, display_name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name`,
		userID, displayName)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	log.Debug("Upserted user", "userID", userID, "name", displayName)
	return nil
}

// GuestName derives a stable throwaway name from a user id.
func GuestName(userID string) string {
	suffix := userID
	if len(suffix) > 4 {
		suffix = suffix[:4]
	}
	return "Guest-" + suffix
}
