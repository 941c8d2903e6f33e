package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/raine/platescan/internal/analysis"
	"github.com/raine/platescan/internal/models"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when deleting a row that does not exist for the
// given user.
var ErrNotFound = errors.New("not found")

// HistoryStore persists analysis results per user. Both the local SQLite
// store and the remote backend client implement it.
type HistoryStore interface {
	SaveAnalysis(ctx context.Context, userID string, r *analysis.Result) error
	ListAnalyses(ctx context.Context, userID string, limit, offset int) ([]*analysis.Result, error)
	DeleteAnalysis(ctx context.Context, userID, id string) error
}

// MedicationStore persists a user's medication list.
type MedicationStore interface {
	ListMedications(ctx context.Context, userID string) ([]models.Medication, error)
	AddMedication(ctx context.Context, userID string, m models.Medication) (models.Medication, error)
	UpdateMedication(ctx context.Context, userID string, m models.Medication) (models.Medication, error)
	DeleteMedication(ctx context.Context, userID, id string) error
}

// CacheStore keeps raw analysis responses keyed by a content hash.
type CacheStore interface {
	GetAnalysisCache(ctx context.Context, key string) (*CacheEntry, error)
	SetAnalysisCache(ctx context.Context, key string, entry *CacheEntry) error
}

// AllowedUser represents a user in the bot whitelist.
type AllowedUser struct {
	TelegramID int64
	AddedAt    time.Time
	AddedBy    int64
}

// AllowListStore keeps the set of Telegram users that may use the bot.
type AllowListStore interface {
	IsUserAllowed(telegramID int64) (bool, error)
	AddAllowedUser(telegramID, addedBy int64) error
	RemoveAllowedUser(telegramID int64) error
	GetAllowedUsers() ([]AllowedUser, error)
}

// SQLiteStore implements every store interface on one SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ HistoryStore    = (*SQLiteStore)(nil)
	_ MedicationStore = (*SQLiteStore)(nil)
	_ CacheStore      = (*SQLiteStore)(nil)
	_ AllowListStore  = (*SQLiteStore)(nil)
)

// NewSQLiteStore opens (and creates if needed) the database at dbPath.
// ":memory:" gives a private in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// WAL mode and busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writes.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}

	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	// In-memory databases have no file.
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		db.Close()
		return nil, fmt.Errorf("failed to set database permissions: %w", err)
	}

	return store, nil
}

var schema = []struct {
	name  string
	query string
}{
	{"analysis_cache", `
	CREATE TABLE IF NOT EXISTS analysis_cache (
		cache_key TEXT PRIMARY KEY,
		analysis TEXT NOT NULL,
		alerts TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`},
	{"analysis_history", `
	CREATE TABLE IF NOT EXISTS analysis_history (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		category TEXT NOT NULL,
		dish_name TEXT,
		payload TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`},
	{"analysis_history index", `
	CREATE INDEX IF NOT EXISTS idx_analysis_history_user
		ON analysis_history (user_id, created_at);
	`},
	{"medications", `
	CREATE TABLE IF NOT EXISTS medications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		dosage TEXT NOT NULL DEFAULT '',
		frequency TEXT NOT NULL DEFAULT '',
		time_of_day TEXT NOT NULL DEFAULT '[]',
		notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);
	`},
	{"allowed_users", `
	CREATE TABLE IF NOT EXISTS allowed_users (
		telegram_id INTEGER PRIMARY KEY,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		added_by INTEGER
	);
	`},
}

func (s *SQLiteStore) init() error {
	for _, t := range schema {
		if _, err := s.db.Exec(t.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
