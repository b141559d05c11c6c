// Package sqlite открывает встроенную базу SQLite (modernc, без cgo)
// и применяет к ней миграции.
//
// Используется как альтернатива PostgreSQL для локального запуска
// (DB_DRIVER=sqlite) и в тестах репозитория:
//
//	db, err := sqlite.OpenMemory(ctx)
//	if err != nil {
//		return err
//	}
//	if err := sqlite.ApplyMigrations(db, migrations.SQLite, migrations.SQLiteDir); err != nil {
//		return err
//	}
package sqlite
