// Package memory is a process-local user repository.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"userapi/internal/domain/user"
	"userapi/internal/shared"
)

// Repository keeps users in a map guarded by a mutex.
type Repository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]user.User
}

func New() *Repository {
	return &Repository{users: make(map[int64]user.User)}
}

func (r *Repository) Create(ctx context.Context, u user.User) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(u.Email, 0) {
		return 0, shared.MarkKind(fmt.Errorf("email %q taken", u.Email), shared.KindConflict)
	}
	r.nextID++
	u.UserID = r.nextID
	r.users[u.UserID] = u
	return u.UserID, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *Repository) List(ctx context.Context, q user.ListQuery) (user.Page, error) {
	if err := ctx.Err(); err != nil {
		return user.Page{}, err
	}
	r.mu.RLock()
	all := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	r.mu.RUnlock()

	col := user.SortColumn(q.SortBy)
	slices.SortFunc(all, func(a, b user.User) int {
		c := compareBy(col, a, b)
		if c == 0 {
			c = cmp.Compare(a.UserID, b.UserID)
		}
		if q.Descending {
			return -c
		}
		return c
	})

	start := min(q.Offset(), len(all))
	end := min(start+q.PageSize, len(all))
	return user.Page{Users: all[start:end], Total: len(all)}, nil
}

func compareBy(col string, a, b user.User) int {
	switch col {
	case "first_name":
		return cmp.Compare(a.FirstName, b.FirstName)
	case "last_name":
		return cmp.Compare(a.LastName, b.LastName)
	case "email":
		return cmp.Compare(a.Email, b.Email)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return cmp.Compare(a.UserID, b.UserID)
	}
}

func (r *Repository) Update(ctx context.Context, u user.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[u.UserID]
	if !ok {
		return user.ErrNotFound
	}
	if r.emailTaken(u.Email, u.UserID) {
		return shared.MarkKind(fmt.Errorf("email %q taken", u.Email), shared.KindConflict)
	}
	u.PasswordHash = stored.PasswordHash
	r.users[u.UserID] = u
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.emailTaken(email, 0), nil
}

// emailTaken must be called with r.mu held.
func (r *Repository) emailTaken(email string, except int64) bool {
	for id, u := range r.users {
		if id != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// Ping always succeeds.
func (r *Repository) Ping(context.Context) error { return nil }

var _ user.Repository = (*Repository)(nil)
