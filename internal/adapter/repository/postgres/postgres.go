// Package postgres stores users in PostgreSQL through the sp_* functions
// created by the migrations.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"userapi/internal/domain/user"
	"userapi/internal/platform/pg"
	"userapi/internal/shared"
)

const uniqueViolation = "23505"

// Repository implements user.Repository on top of a pgx pool.
type Repository struct {
	tx *pg.TxRunner
}

func New(tx *pg.TxRunner) *Repository {
	return &Repository{tx: tx}
}

func (r *Repository) Create(ctx context.Context, u user.User) (int64, error) {
	var id int64
	err := r.tx.Querier(ctx).QueryRow(ctx,
		`SELECT sp_insert_user($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PhoneNumber, u.PasswordHash,
		u.DateOfBirth, u.IsActive, u.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, mapError("sp_insert_user", err)
	}
	return id, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (user.User, error) {
	rows, err := r.tx.Querier(ctx).Query(ctx, `SELECT * FROM sp_get_user_by_id($1)`, id)
	if err != nil {
		return user.User{}, mapError("sp_get_user_by_id", err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		return user.User{}, mapError("sp_get_user_by_id", err)
	}
	return u, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	rows, err := r.tx.Querier(ctx).Query(ctx, `SELECT * FROM sp_get_user_by_email($1)`, email)
	if err != nil {
		return user.User{}, mapError("sp_get_user_by_email", err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		return user.User{}, mapError("sp_get_user_by_email", err)
	}
	return u, nil
}

// List reads the total and the page in one transaction so both agree.
func (r *Repository) List(ctx context.Context, q user.ListQuery) (user.Page, error) {
	var page user.Page
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		db := r.tx.Querier(ctx)
		var total int64
		if err := db.QueryRow(ctx, `SELECT sp_count_users()`).Scan(&total); err != nil {
			return mapError("sp_count_users", err)
		}
		rows, err := db.Query(ctx, `SELECT * FROM sp_get_all_users_paginated($1, $2, $3, $4)`,
			q.Page, q.PageSize, user.SortColumn(q.SortBy), q.Descending)
		if err != nil {
			return mapError("sp_get_all_users_paginated", err)
		}
		users, err := pgx.CollectRows(rows, scanUser)
		if err != nil {
			return mapError("sp_get_all_users_paginated", err)
		}
		page = user.Page{Users: users, Total: int(total)}
		return nil
	})
	return page, err
}

func (r *Repository) Update(ctx context.Context, u user.User) error {
	var n int
	err := r.tx.Querier(ctx).QueryRow(ctx,
		`SELECT sp_update_user($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.UserID, u.FirstName, u.LastName, u.Email, u.PhoneNumber,
		u.DateOfBirth, u.IsActive, u.UpdatedAt,
	).Scan(&n)
	if err != nil {
		return mapError("sp_update_user", err)
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	var n int
	if err := r.tx.Querier(ctx).QueryRow(ctx, `SELECT sp_delete_user($1)`, id).Scan(&n); err != nil {
		return mapError("sp_delete_user", err)
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var ok bool
	if err := r.tx.Querier(ctx).QueryRow(ctx, `SELECT sp_check_email_exists($1)`, email).Scan(&ok); err != nil {
		return false, mapError("sp_check_email_exists", err)
	}
	return ok, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.tx.Pool.Ping(ctx)
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.UserID, &u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PhoneNumber,
		&u.PasswordHash, &u.DateOfBirth, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func mapError(proc string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return user.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return shared.MarkKind(fmt.Errorf("%s: %s", proc, pgErr.Detail), shared.KindConflict)
	}
	return fmt.Errorf("%s: %w", proc, err)
}

var _ user.Repository = (*Repository)(nil)
