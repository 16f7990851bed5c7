package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"jobwatch-engine/internal/domain"
	logx "jobwatch-engine/pkg/logx"
)

// InitError reports that the backing database could not be opened or migrated.
type InitError struct {
	Path string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("seen store init (%s): %v", e.Path, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

var ErrNotInitialized = errors.New("seen store not initialized")

// SeenStore persists the urls of postings that have already been reported.
// It is read once at run start and written at most once at run end.
type SeenStore struct {
	path string
	log  logx.Logger
	now  func() time.Time

	mu sync.Mutex
	db *DB
}

func NewSeenStore(path string, log logx.Logger) *SeenStore {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &SeenStore{path: path, log: log.Component("store"), now: time.Now}
}

// Init opens and migrates the database. Calling it again is a no-op.
func (s *SeenStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return nil
	}
	if strings.TrimSpace(s.path) == "" {
		return &InitError{Path: s.path, Err: errors.New("database path is empty")}
	}

	db, err := Open(ctx, s.path)
	if err != nil {
		return &InitError{Path: s.path, Err: err}
	}
	if err := Migrate(ctx, db.Pool); err != nil {
		_ = db.Close()
		return &InitError{Path: s.path, Err: fmt.Errorf("migrate: %w", err)}
	}
	s.db = db
	s.log.Debug("seen store ready", logx.String("path", s.path))
	return nil
}

func (s *SeenStore) handle() (*DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

func (s *SeenStore) SeenJobs(ctx context.Context) ([]domain.SeenRecord, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.Pool.QueryContext(ctx, `SELECT url, title, place, first_seen FROM seen_jobs;`)
	if err != nil {
		return nil, fmt.Errorf("query seen jobs: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// AddSeenJobs records postings in one transaction. Urls already present keep
// their original first_seen.
func (s *SeenStore) AddSeenJobs(ctx context.Context, jobs []domain.JobPosting) error {
	if len(jobs) == 0 {
		return nil
	}
	db, err := s.handle()
	if err != nil {
		return err
	}

	tx, err := db.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO seen_jobs (url, title, place, first_seen)
VALUES (?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	at := s.now().UTC().Format(time.RFC3339)
	added := 0
	for _, j := range jobs {
		url := strings.TrimSpace(j.URL)
		if url == "" {
			continue
		}
		res, err := stmt.ExecContext(ctx, url, j.Title, j.Place, at)
		if err != nil {
			return fmt.Errorf("insert seen job %q: %w", url, err)
		}
		n, _ := res.RowsAffected()
		added += int(n)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seen jobs: %w", err)
	}

	s.log.Info("seen jobs saved", logx.Int("given", len(jobs)), logx.Int("added", added))
	return nil
}

func (s *SeenStore) Count(ctx context.Context) (int, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM seen_jobs;`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Recent returns the newest records first.
func (s *SeenStore) Recent(ctx context.Context, limit int) ([]domain.SeenRecord, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.QueryContext(ctx, `
SELECT url, title, place, first_seen
FROM seen_jobs
ORDER BY first_seen DESC, rowid DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Checkpoint folds the WAL back into the main database file.
func (s *SeenStore) Checkpoint(ctx context.Context) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	_, err = db.Pool.ExecContext(ctx, `PRAGMA wal_checkpoint(FULL);`)
	return err
}

func (s *SeenStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.Close()
	s.db = nil
	return err
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRecords(rows rowScanner) ([]domain.SeenRecord, error) {
	var out []domain.SeenRecord
	for rows.Next() {
		var r domain.SeenRecord
		var firstSeen string
		if err := rows.Scan(&r.URL, &r.Title, &r.Place, &firstSeen); err != nil {
			return nil, err
		}
		r.FirstSeen, _ = time.Parse(time.RFC3339, firstSeen)
		out = append(out, r)
	}
	return out, rows.Err()
}
