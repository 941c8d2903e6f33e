package storage

import "fmt"

// IsUserAllowed reports whether telegramID is on the allow-list.
func (s *SQLiteStore) IsUserAllowed(telegramID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var allowed bool
	err := s.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM allowed_users WHERE telegram_id = ?)",
		telegramID,
	).Scan(&allowed)
	if err != nil {
		return false, fmt.Errorf("failed to look up allowed user %d: %w", telegramID, err)
	}
	return allowed, nil
}

// AddAllowedUser allows telegramID. Adding an existing user refreshes who
// added them and when.
func (s *SQLiteStore) AddAllowedUser(telegramID, addedBy int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO allowed_users (telegram_id, added_by) VALUES (?, ?)
		ON CONFLICT(telegram_id) DO UPDATE SET
			added_by = excluded.added_by,
			added_at = CURRENT_TIMESTAMP
	`, telegramID, addedBy)
	if err != nil {
		return fmt.Errorf("failed to allow user %d: %w", telegramID, err)
	}
	return nil
}

// RemoveAllowedUser revokes access. Removing an unknown user is a no-op.
func (s *SQLiteStore) RemoveAllowedUser(telegramID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM allowed_users WHERE telegram_id = ?", telegramID); err != nil {
		return fmt.Errorf("failed to remove allowed user %d: %w", telegramID, err)
	}
	return nil
}

// GetAllowedUsers lists the allow-list, oldest first.
func (s *SQLiteStore) GetAllowedUsers() ([]AllowedUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT telegram_id, added_at, added_by FROM allowed_users ORDER BY added_at, telegram_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list allowed users: %w", err)
	}
	defer rows.Close()

	var users []AllowedUser
	for rows.Next() {
		var u AllowedUser
		if err := rows.Scan(&u.TelegramID, &u.AddedAt, &u.AddedBy); err != nil {
			return nil, fmt.Errorf("failed to scan allowed user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
