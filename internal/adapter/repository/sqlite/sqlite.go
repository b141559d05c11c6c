// Package sqlite stores users in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"userapi/internal/domain/user"
	"userapi/internal/shared"
)

// Times are stored as fixed-width UTC text so they sort lexically.
const (
	timeLayout = "2006-01-02T15:04:05.000000000Z"
	dateLayout = "2006-01-02"
)

const columns = `user_id, id, first_name, last_name, email, phone_number, password_hash,
	date_of_birth, is_active, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, u user.User) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, email, phone_number, password_hash,
		                   date_of_birth, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.FirstName, u.LastName, u.Email, u.PhoneNumber, u.PasswordHash,
		u.DateOfBirth.Format(dateLayout), u.IsActive, u.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return 0, mapError("insert user", err)
	}
	return res.LastInsertId()
}

func (r *Repository) GetByID(ctx context.Context, id int64) (user.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM users WHERE user_id = ?`, id)
	return scanUser(row)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *Repository) List(ctx context.Context, q user.ListQuery) (user.Page, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return user.Page{}, err
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return user.Page{}, mapError("count users", err)
	}

	// SortColumn only ever returns a whitelisted column name.
	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY %s %s, user_id %s LIMIT ? OFFSET ?`,
		columns, user.SortColumn(q.SortBy), dir, dir)
	rows, err := tx.QueryContext(ctx, query, q.PageSize, q.Offset())
	if err != nil {
		return user.Page{}, mapError("list users", err)
	}
	defer rows.Close()

	users := make([]user.User, 0, q.PageSize)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return user.Page{}, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return user.Page{}, mapError("list users", err)
	}
	return user.Page{Users: users, Total: total}, tx.Commit()
}

func (r *Repository) Update(ctx context.Context, u user.User) error {
	var updated any
	if u.UpdatedAt != nil {
		updated = u.UpdatedAt.UTC().Format(timeLayout)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		   SET first_name = ?, last_name = ?, email = ?, phone_number = ?,
		       date_of_birth = ?, is_active = ?, updated_at = ?
		 WHERE user_id = ?`,
		u.FirstName, u.LastName, u.Email, u.PhoneNumber,
		u.DateOfBirth.Format(dateLayout), u.IsActive, updated, u.UserID)
	if err != nil {
		return mapError("update user", err)
	}
	return affected(res)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, id)
	if err != nil {
		return mapError("delete user", err)
	}
	return affected(res)
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)`, email).Scan(&ok)
	if err != nil {
		return false, mapError("check email", err)
	}
	return ok, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (user.User, error) {
	var (
		u                user.User
		id, dob, created string
		updated          sql.NullString
	)
	err := s.Scan(&u.UserID, &id, &u.FirstName, &u.LastName, &u.Email, &u.PhoneNumber,
		&u.PasswordHash, &dob, &u.IsActive, &created, &updated)
	if err != nil {
		return user.User{}, mapError("scan user", err)
	}
	if u.ID, err = uuid.Parse(id); err != nil {
		return user.User{}, fmt.Errorf("user %d id: %w", u.UserID, err)
	}
	if u.DateOfBirth, err = time.Parse(dateLayout, dob); err != nil {
		return user.User{}, fmt.Errorf("user %d date_of_birth: %w", u.UserID, err)
	}
	if u.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return user.User{}, fmt.Errorf("user %d created_at: %w", u.UserID, err)
	}
	if updated.Valid {
		t, err := time.Parse(timeLayout, updated.String)
		if err != nil {
			return user.User{}, fmt.Errorf("user %d updated_at: %w", u.UserID, err)
		}
		u.UpdatedAt = &t
	}
	return u, nil
}

func mapError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return user.ErrNotFound
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return shared.MarkKind(fmt.Errorf("%s: %w", op, err), shared.KindConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ user.Repository = (*Repository)(nil)
