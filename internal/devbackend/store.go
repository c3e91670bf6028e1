package devbackend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/soyeahso/lively/internal/logging"
)

// Speaker values stored with each message.
const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// StoredMessage is one persisted chat turn.
type StoredMessage struct {
	ID        int64
	Speaker   string
	Content   string
	Intent    string
	CreatedAt time.Time
}

// Store persists users and messages in SQLite.
type Store struct {
	sql *sql.DB
	log *logging.Logger
}

// OpenStore opens (or creates) the database at path and runs migrations.
// Use ":memory:" for a throwaway database.
func OpenStore(path string, log *logging.Logger) (*Store, error) {
	memory := path == ":memory:"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if memory {
		// Every connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	} else if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	s := &Store{sql: sqlDB, log: log.Sub("devstore")}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	s.log.Info().Str("path", path).Msg("database opened")
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.sql.Close()
}

// Password returns the stored password for name. ok is false if the user
// does not exist.
func (s *Store) Password(ctx context.Context, name string) (password string, ok bool, err error) {
	err = s.sql.QueryRowContext(ctx, "SELECT password FROM users WHERE name = ?", name).Scan(&password)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up user %q: %w", name, err)
	}
	return password, true, nil
}

// CreateUser adds a user. Existing users are left unchanged.
func (s *Store) CreateUser(ctx context.Context, name, password string) error {
	_, err := s.sql.ExecContext(ctx,
		"INSERT INTO users (name, password) VALUES (?, ?) ON CONFLICT(name) DO NOTHING",
		name, password)
	if err != nil {
		return fmt.Errorf("creating user %q: %w", name, err)
	}
	return nil
}

// AppendMessage stores one turn.
func (s *Store) AppendMessage(ctx context.Context, speaker, content, intent string) error {
	var in sql.NullString
	if intent != "" {
		in = sql.NullString{String: intent, Valid: true}
	}
	_, err := s.sql.ExecContext(ctx,
		"INSERT INTO messages (speaker, content, intent, created_at) VALUES (?, ?, ?, ?)",
		speaker, content, in, time.Now().UTC().Format(time.DateTime))
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// Messages returns every stored turn in insertion order.
func (s *Store) Messages(ctx context.Context) ([]StoredMessage, error) {
	rows, err := s.sql.QueryContext(ctx,
		"SELECT id, speaker, content, intent, created_at FROM messages ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var out []StoredMessage
	for rows.Next() {
		var (
			m       StoredMessage
			intent  sql.NullString
			created string
		)
		if err := rows.Scan(&m.ID, &m.Speaker, &m.Content, &intent, &created); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Intent = intent.String
		m.CreatedAt, _ = time.Parse(time.DateTime, created)
		out = append(out, m)
	}
	return out, rows.Err()
}
