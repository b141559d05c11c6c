package pg

import (
	"errors"
	"fmt"
	"io/fs"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// MigrationInfo описывает результат применения миграций.
type MigrationInfo struct {
	From    uint
	To      uint
	Applied bool
}

// ApplyMigrations применяет встроенные миграции из fsys/dir.
// Повторный вызов без новых миграций не считается ошибкой.
func ApplyMigrations(dsn string, fsys fs.FS, dir string) (MigrationInfo, error) {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return MigrationInfo{}, fmt.Errorf("open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return MigrationInfo{}, fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	return up(m)
}

func up(m *migrate.Migrate) (MigrationInfo, error) {
	var info MigrationInfo
	from, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return info, fmt.Errorf("read version: %w", err)
	}
	info.From, info.To = from, from
	if dirty {
		return info, fmt.Errorf("database is dirty at version %d", from)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return info, nil
		}
		return info, fmt.Errorf("apply migrations: %w", err)
	}
	info.Applied = true
	if to, _, err := m.Version(); err == nil {
		info.To = to
	}
	return info, nil
}
