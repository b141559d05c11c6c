// Package decorator wraps a user.Repository with logging and caching.
package decorator

import (
	"context"
	"errors"
	"log/slog"

	"userapi/internal/domain/user"
)

// Logging logs every storage call before and after it runs.
type Logging struct {
	next user.Repository
	log  *slog.Logger
}

func NewLogging(next user.Repository, log *slog.Logger) *Logging {
	return &Logging{next: next, log: log.With("component", "user_repository")}
}

func (l *Logging) Create(ctx context.Context, u user.User) (int64, error) {
	l.log.InfoContext(ctx, "[sp_insert_user] executing", "email", u.Email)
	id, err := l.next.Create(ctx, u)
	if err != nil {
		l.failed(ctx, "sp_insert_user", err)
		return 0, err
	}
	l.log.InfoContext(ctx, "[sp_insert_user] completed", "user_id", id)
	return id, nil
}

func (l *Logging) GetByID(ctx context.Context, id int64) (user.User, error) {
	l.log.InfoContext(ctx, "[sp_get_user_by_id] executing", "user_id", id)
	u, err := l.next.GetByID(ctx, id)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		l.failed(ctx, "sp_get_user_by_id", err)
		return u, err
	}
	l.log.InfoContext(ctx, "[sp_get_user_by_id] completed", "found", err == nil)
	return u, err
}

func (l *Logging) GetByEmail(ctx context.Context, email string) (user.User, error) {
	l.log.InfoContext(ctx, "[sp_get_user_by_email] executing", "email", email)
	u, err := l.next.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		l.failed(ctx, "sp_get_user_by_email", err)
		return u, err
	}
	l.log.InfoContext(ctx, "[sp_get_user_by_email] completed", "found", err == nil)
	return u, err
}

func (l *Logging) List(ctx context.Context, q user.ListQuery) (user.Page, error) {
	l.log.InfoContext(ctx, "[sp_get_all_users_paginated] executing",
		"page", q.Page, "page_size", q.PageSize, "sort_by", q.SortBy, "desc", q.Descending)
	p, err := l.next.List(ctx, q)
	if err != nil {
		l.failed(ctx, "sp_get_all_users_paginated", err)
		return p, err
	}
	l.log.InfoContext(ctx, "[sp_get_all_users_paginated] completed", "total_records", p.Total)
	return p, nil
}

func (l *Logging) Update(ctx context.Context, u user.User) error {
	l.log.InfoContext(ctx, "[sp_update_user] executing", "user_id", u.UserID)
	if err := l.next.Update(ctx, u); err != nil {
		l.failed(ctx, "sp_update_user", err)
		return err
	}
	l.log.InfoContext(ctx, "[sp_update_user] completed")
	return nil
}

func (l *Logging) Delete(ctx context.Context, id int64) error {
	l.log.InfoContext(ctx, "[sp_delete_user] executing", "user_id", id)
	if err := l.next.Delete(ctx, id); err != nil {
		l.failed(ctx, "sp_delete_user", err)
		return err
	}
	l.log.InfoContext(ctx, "[sp_delete_user] completed")
	return nil
}

func (l *Logging) EmailExists(ctx context.Context, email string) (bool, error) {
	l.log.InfoContext(ctx, "[sp_check_email_exists] executing", "email", email)
	ok, err := l.next.EmailExists(ctx, email)
	if err != nil {
		l.failed(ctx, "sp_check_email_exists", err)
		return false, err
	}
	l.log.InfoContext(ctx, "[sp_check_email_exists] completed", "exists", ok)
	return ok, nil
}

func (l *Logging) failed(ctx context.Context, proc string, err error) {
	l.log.WarnContext(ctx, "["+proc+"] failed", "err", err)
}

var _ user.Repository = (*Logging)(nil)
