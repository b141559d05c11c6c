package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Memory путь in-memory базы.
const Memory = ":memory:"

// Options настройки подключения.
type Options struct {
	MaxOpenConns int
	PingTimeout  time.Duration
	// WAL не поддерживается для in-memory базы и там игнорируется.
	WAL         bool
	BusyTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxOpenConns: 4,
		PingTimeout:  5 * time.Second,
		WAL:          true,
		BusyTimeout:  5 * time.Second,
	}
}

// Open открывает файл базы, создавая директорию при необходимости.
func Open(ctx context.Context, path string, opts Options) (*sql.DB, error) {
	if path != Memory {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create directory %s: %w", dir, err)
			}
		}
	} else {
		// Каждое соединение к :memory: видит свою базу, поэтому одно соединение.
		opts.WAL = false
		opts.MaxOpenConns = 1
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
	}
	if path == Memory {
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := applyPragmas(ctx, db, opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenMemory открывает пустую in-memory базу.
func OpenMemory(ctx context.Context) (*sql.DB, error) {
	return Open(ctx, Memory, DefaultOptions())
}

func applyPragmas(ctx context.Context, db *sql.DB, opts Options) error {
	pragmas := []string{"PRAGMA foreign_keys = ON", "PRAGMA synchronous = NORMAL"}
	if opts.WAL {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	if opts.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA busy_timeout = %d", opts.BusyTimeout.Milliseconds()))
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
