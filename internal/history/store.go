package history

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded transcript or translation segment
type Entry struct {
	ID        int64
	SessionID string
	Kind      string // "transcript" or "translation"
	Text      string
	CreatedAt time.Time
}

const (
	KindTranscript  = "transcript"
	KindTranslation = "translation"
)

// Store persists finalized segments and translations to SQLite. It
// implements the session sink contract; writes are best-effort and
// never block or fail the session.
type Store struct {
	db            *sql.DB
	sessionID     string
	retentionDays int
	clock         func() time.Time
}

// DefaultPath returns <user cache dir>/captiond/history.db
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "captiond", "history.db"), nil
}

// Open initializes the history database, creating it if needed
func Open(ctx context.Context, path string, retentionDays int) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{
		db:            db,
		sessionID:     time.Now().UTC().Format("20060102-150405"),
		retentionDays: retentionDays,
		clock:         time.Now,
	}

	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := s.Prune(ctx); err != nil {
		log.Printf("history: prune on open failed: %v", err)
	}

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS segments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    text TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_segments_session_created ON segments(session_id, created_at);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// SessionID identifies the daemon run all entries are recorded under
func (s *Store) SessionID() string {
	return s.sessionID
}

// FinalSegment records a finalized transcript segment
func (s *Store) FinalSegment(text string) {
	s.insert(KindTranscript, text)
}

// Translation records a committed translation
func (s *Store) Translation(text string) {
	s.insert(KindTranslation, text)
}

func (s *Store) insert(kind, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO segments (session_id, kind, text, created_at) VALUES (?, ?, ?, ?)`,
		s.sessionID, kind, text, s.clock().UTC())
	if err != nil {
		log.Printf("history: insert %s failed: %v", kind, err)
	}
}

// Recent returns the newest entries, most recent first
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, kind, text, created_at FROM segments ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Kind, &e.Text, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune removes entries older than the retention window
func (s *Store) Prune(ctx context.Context) error {
	if s.retentionDays <= 0 {
		return nil
	}
	cutoff := s.clock().UTC().AddDate(0, 0, -s.retentionDays)
	_, err := s.db.ExecContext(ctx, `DELETE FROM segments WHERE created_at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
