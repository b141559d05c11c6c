// Package user holds the user aggregate and the storage contract it needs.
package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	UserID       int64
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	PhoneNumber  string
	PasswordHash string
	DateOfBirth  time.Time
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Profile is the editable part of a user.
type Profile struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	DateOfBirth time.Time
	IsActive    bool
}

// New creates an active user with a time-ordered public id.
func New(p Profile, passwordHash string, now time.Time) (User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return User{}, err
	}
	return User{
		ID:           id,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		PhoneNumber:  p.PhoneNumber,
		PasswordHash: passwordHash,
		DateOfBirth:  p.DateOfBirth,
		IsActive:     p.IsActive,
		CreatedAt:    now.UTC(),
	}, nil
}

// Update replaces the profile fields.
func (u *User) Update(p Profile, now time.Time) {
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.Email = p.Email
	u.PhoneNumber = p.PhoneNumber
	u.DateOfBirth = p.DateOfBirth
	u.IsActive = p.IsActive
	u.touch(now)
}

func (u *User) touch(now time.Time) {
	t := now.UTC()
	u.UpdatedAt = &t
}

// ErrNotFound is returned by repositories when no user matches.
var ErrNotFound = errors.New("user not found")

// SortColumns maps accepted sort keys to storage columns.
var SortColumns = map[string]string{
	"userId":    "user_id",
	"firstName": "first_name",
	"lastName":  "last_name",
	"email":     "email",
	"createdAt": "created_at",
}

// SortColumn returns the column for key, defaulting to user_id.
func SortColumn(key string) string {
	if c, ok := SortColumns[key]; ok {
		return c
	}
	return "user_id"
}

// ListQuery selects one page of users.
type ListQuery struct {
	Page       int
	PageSize   int
	SortBy     string
	Descending bool
}

// Offset returns the number of rows to skip.
func (q ListQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// Page is one page of users plus the total row count.
type Page struct {
	Users []User
	Total int
}

// Repository persists users. GetByID, GetByEmail, Update and Delete
// return ErrNotFound when no user matches.
type Repository interface {
	Create(ctx context.Context, u User) (int64, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, q ListQuery) (Page, error)
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id int64) error
	EmailExists(ctx context.Context, email string) (bool, error)
}
