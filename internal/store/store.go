package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/goalpath/internal/model"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store persists one user's goals and preferences.
//
// Goal writes are full overwrites by id. Subscribers receive the whole goal
// list, newest CreatedAt first, once on subscribe and again after every
// change. Implementations must be safe for concurrent use.
type Store interface {
	// GetPreferences returns the user's preferences, or nil if none exist.
	GetPreferences(ctx context.Context, userID string) (*model.Preferences, error)

	// SetPreferences merges patch into the stored preferences, creating the
	// record from defaults when absent.
	SetPreferences(ctx context.Context, userID string, patch model.PreferencesPatch) error

	// SubscribeGoals registers fn for goal list pushes. It returns once fn
	// has received the first list, or with the error that prevented loading
	// it. The returned func stops delivery.
	SubscribeGoals(ctx context.Context, userID string, fn func([]model.Goal)) (func(), error)

	// PutGoal creates or overwrites the goal with g.ID.
	PutGoal(ctx context.Context, userID string, g model.Goal) error

	// DeleteGoal removes a goal. Deleting a missing goal is not an error.
	DeleteGoal(ctx context.Context, userID, goalID string) error

	Close() error
}

// Option configures a store adapter.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger used for background delivery errors.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// SQLite is the local Store backed by a single SQLite file.
type SQLite struct {
	db  *sql.DB
	seq *sequenceCounter
	log *zap.Logger

	// wmu serializes read-modify-write of preferences.
	wmu sync.Mutex

	mu      sync.Mutex
	subs    map[string]map[int]*subscriber
	nextSub int
	closed  bool
}

// Open creates a new SQLite store at dsn. It applies recommended pragmas
// and creates the schema.
func Open(dsn string, opts ...Option) (*SQLite, error) {
	o := buildOptions(opts)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps in-memory databases and pragmas consistent and
	// avoids SQLITE_LOCKED between subscriber reads and writes.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{
		db:   db,
		seq:  seq,
		log:  o.logger,
		subs: make(map[string]map[int]*subscriber),
	}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// EventRepo returns an EventRepo backed by this store.
func (s *SQLite) EventRepo() EventRepo {
	return &eventRepo{db: s.db, seq: s.seq}
}

// Close stops all subscriptions and closes the database connection.
func (s *SQLite) Close() error {
	s.mu.Lock()
	s.closed = true
	for _, byID := range s.subs {
		for _, sub := range byID {
			sub.stop()
		}
	}
	s.subs = map[string]map[int]*subscriber{}
	s.mu.Unlock()

	return s.db.Close()
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. GOALPATH_DB environment variable
// 2. $XDG_DATA_HOME/goalpath/goalpath.db
// 3. ~/.local/share/goalpath/goalpath.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("GOALPATH_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "goalpath", "goalpath.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
