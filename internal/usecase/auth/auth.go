// Package auth implements registration and login.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"userapi/internal/dispatch"
	"userapi/internal/domain/user"
	"userapi/internal/result"
	"userapi/internal/shared"
	"userapi/internal/usecase/errs"
	"userapi/internal/usecase/users"
	"userapi/internal/validation"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// Token is a signed access token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TokenIssuer signs access tokens for a user.
type TokenIssuer interface {
	Issue(u user.User) (Token, error)
}

// Binding tags reject bodies missing credentials before dispatch.
type Register struct {
	FirstName   string    `json:"firstName" validate:"required,max=100"`
	LastName    string    `json:"lastName" validate:"required,max=100"`
	Email       string    `json:"email" binding:"required" validate:"required,email,max=255"`
	PhoneNumber string    `json:"phoneNumber" validate:"max=20"`
	Password    string    `json:"password" binding:"required" validate:"min=8,max=72"`
	DateOfBirth time.Time `json:"dateOfBirth" validate:"past"`
}

type Login struct {
	Email    string `json:"email" binding:"required" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required"`
}

var messages = validation.Messages{
	"Password.min": "Password must be at least 8 characters long.",
	"Password.max": "Password must not exceed 72 characters.",
	"Email.email":  "A valid email address is required.",
}

// Result is returned by both Register and Login.
type Result struct {
	User      users.UserDTO `json:"user"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// Handlers serves the authentication requests.
type Handlers struct {
	repo   user.Repository
	hasher PasswordHasher
	tokens TokenIssuer
	now    func() time.Time
}

func NewHandlers(repo user.Repository, hasher PasswordHasher, tokens TokenIssuer, now func() time.Time) *Handlers {
	if now == nil {
		now = time.Now
	}
	return &Handlers{repo: repo, hasher: hasher, tokens: tokens, now: now}
}

// RegisterHandlers wires the auth handlers and validators into b.
func RegisterHandlers(b *dispatch.Builder, h *Handlers, v *validator.Validate) {
	dispatch.Register[Register, Result](b, dispatch.HandlerFunc[Register, Result](h.Register))
	dispatch.Register[Login, Result](b, dispatch.HandlerFunc[Login, Result](h.Login))
	dispatch.RegisterValidator(b, validation.Struct[Register](v, messages))
	dispatch.RegisterValidator(b, validation.Struct[Login](v, messages))
}

func Requirements() []dispatch.Requirement {
	return []dispatch.Requirement{
		dispatch.Expect[Register, Result](),
		dispatch.Expect[Login, Result](),
	}
}

func (h *Handlers) Register(ctx context.Context, req Register) (result.Result[Result], error) {
	_, err := h.repo.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return result.Fail[Result](errs.UserAlreadyExistsByEmail(req.Email)), nil
	case !errors.Is(err, user.ErrNotFound):
		return result.Result[Result]{}, err
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		return result.Result[Result]{}, shared.Wrap(err, "hash password")
	}

	u, err := user.New(user.Profile{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: req.DateOfBirth,
		IsActive:    true,
	}, hash, h.now())
	if err != nil {
		return result.Result[Result]{}, err
	}

	id, err := h.repo.Create(ctx, u)
	if shared.IsConflict(err) {
		return result.Fail[Result](errs.UserAlreadyExistsByEmail(req.Email)), nil
	}
	if err != nil {
		return result.Result[Result]{}, err
	}
	u.UserID = id

	return h.issue(u)
}

func (h *Handlers) Login(ctx context.Context, req Login) (result.Result[Result], error) {
	u, err := h.repo.GetByEmail(ctx, req.Email)
	if errors.Is(err, user.ErrNotFound) {
		return result.Fail[Result](errs.InvalidCredentials()), nil
	}
	if err != nil {
		return result.Result[Result]{}, err
	}
	if u.PasswordHash == "" || !h.hasher.Verify(req.Password, u.PasswordHash) {
		return result.Fail[Result](errs.InvalidCredentials()), nil
	}
	if !u.IsActive {
		return result.Fail[Result](errs.UnauthorizedFor("sign in with a deactivated account")), nil
	}
	return h.issue(u)
}

func (h *Handlers) issue(u user.User) (result.Result[Result], error) {
	tok, err := h.tokens.Issue(u)
	if err != nil {
		return result.Result[Result]{}, shared.Wrap(err, "issue token")
	}
	return result.Ok(Result{User: users.ToDTO(u), Token: tok.Value, ExpiresAt: tok.ExpiresAt}), nil
}
