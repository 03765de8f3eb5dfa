package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// SaveSession stores the serialized session of a player, replacing any
// previous save.
func (s *Store) SaveSession(gameID, player string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO saved_sessions (game_id, player, data) VALUES (?, ?, ?)
		 ON CONFLICT (game_id, player) DO UPDATE
		 SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		gameID, player, data,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save session: %w", err)
	}
	return nil
}

// LoadSession returns the saved session of a player, or nil when none exists.
func (s *Store) LoadSession(gameID, player string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(
		"SELECT data FROM saved_sessions WHERE game_id = ? AND player = ?",
		gameID, player,
	).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot load session: %w", err)
	}
	return data, nil
}

// DeleteSession removes a player's saved session.
func (s *Store) DeleteSession(gameID, player string) error {
	if _, err := s.db.Exec(
		"DELETE FROM saved_sessions WHERE game_id = ? AND player = ?",
		gameID, player,
	); err != nil {
		return fmt.Errorf("storage: cannot delete session: %w", err)
	}
	return nil
}
