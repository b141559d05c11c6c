package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"userapi/internal/dispatch"
	"userapi/internal/domain/user"
	"userapi/internal/result"
	"userapi/internal/shared"
	"userapi/internal/usecase/errs"
	"userapi/internal/validation"
)

// Handlers serves the user requests.
type Handlers struct {
	repo user.Repository
	now  func() time.Time
}

// NewHandlers creates Handlers. A nil clock defaults to time.Now.
func NewHandlers(repo user.Repository, now func() time.Time) *Handlers {
	if now == nil {
		now = time.Now
	}
	return &Handlers{repo: repo, now: now}
}

// Register wires the user handlers and their validators into b.
func Register(b *dispatch.Builder, h *Handlers, v *validator.Validate) {
	dispatch.Register[CreateUser, UserDTO](b, dispatch.HandlerFunc[CreateUser, UserDTO](h.Create))
	dispatch.Register[GetUserByID, UserDTO](b, dispatch.HandlerFunc[GetUserByID, UserDTO](h.GetByID))
	dispatch.Register[ListUsers, PagedResult[UserDTO]](b, dispatch.HandlerFunc[ListUsers, PagedResult[UserDTO]](h.List))
	dispatch.Register[UpdateUser, result.Unit](b, dispatch.HandlerFunc[UpdateUser, result.Unit](h.Update))
	dispatch.Register[DeleteUser, result.Unit](b, dispatch.HandlerFunc[DeleteUser, result.Unit](h.Delete))

	dispatch.RegisterValidator(b, validation.Struct[CreateUser](v, Messages))
	dispatch.RegisterValidator(b, validation.Struct[GetUserByID](v, Messages))
	dispatch.RegisterValidator(b, validation.Struct[ListUsers](v, Messages))
	dispatch.RegisterValidator(b, validation.Struct[UpdateUser](v, Messages))
	dispatch.RegisterValidator(b, validation.Struct[DeleteUser](v, Messages))
}

// Requirements lists the request/response pairs the HTTP layer sends.
func Requirements() []dispatch.Requirement {
	return []dispatch.Requirement{
		dispatch.Expect[CreateUser, UserDTO](),
		dispatch.Expect[GetUserByID, UserDTO](),
		dispatch.Expect[ListUsers, PagedResult[UserDTO]](),
		dispatch.Expect[UpdateUser, result.Unit](),
		dispatch.Expect[DeleteUser, result.Unit](),
	}
}

func (h *Handlers) Create(ctx context.Context, req CreateUser) (result.Result[UserDTO], error) {
	exists, err := h.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return result.Result[UserDTO]{}, err
	}
	if exists {
		return result.Fail[UserDTO](errs.UserAlreadyExists()), nil
	}

	u, err := user.New(user.Profile{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: req.DateOfBirth,
		IsActive:    req.IsActive,
	}, "", h.now())
	if err != nil {
		return result.Result[UserDTO]{}, err
	}

	id, err := h.repo.Create(ctx, u)
	if shared.IsConflict(err) {
		return result.Fail[UserDTO](errs.UserAlreadyExists()), nil
	}
	if err != nil {
		return result.Result[UserDTO]{}, err
	}
	u.UserID = id
	return result.Ok(ToDTO(u)), nil
}

func (h *Handlers) GetByID(ctx context.Context, req GetUserByID) (result.Result[UserDTO], error) {
	u, err := h.repo.GetByID(ctx, req.UserID)
	if errors.Is(err, user.ErrNotFound) {
		return result.Fail[UserDTO](errs.UserNotFoundByID(req.UserID)), nil
	}
	if err != nil {
		return result.Result[UserDTO]{}, err
	}
	return result.Ok(ToDTO(u)), nil
}

func (h *Handlers) List(ctx context.Context, req ListUsers) (result.Result[PagedResult[UserDTO]], error) {
	page, err := h.repo.List(ctx, user.ListQuery{
		Page:       req.Page,
		PageSize:   req.PageSize,
		SortBy:     req.SortBy,
		Descending: req.SortDescending,
	})
	if err != nil {
		return result.Result[PagedResult[UserDTO]]{}, err
	}
	data := make([]UserDTO, 0, len(page.Users))
	for _, u := range page.Users {
		data = append(data, ToDTO(u))
	}
	return result.Ok(NewPagedResult(data, req.PageSize, req.Page, page.Total, req.SortDescending, req.SortBy)), nil
}

func (h *Handlers) Update(ctx context.Context, req UpdateUser) (result.Result[result.Unit], error) {
	existing, err := h.repo.GetByID(ctx, req.UserID)
	if errors.Is(err, user.ErrNotFound) {
		return result.Fail[result.Unit](errs.UserNotFoundByID(req.UserID)), nil
	}
	if err != nil {
		return result.Result[result.Unit]{}, err
	}

	if !strings.EqualFold(existing.Email, req.Email) {
		exists, err := h.repo.EmailExists(ctx, req.Email)
		if err != nil {
			return result.Result[result.Unit]{}, err
		}
		if exists {
			return result.Fail[result.Unit](errs.UserAlreadyExists()), nil
		}
	}

	existing.Update(user.Profile{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: req.DateOfBirth,
		IsActive:    req.IsActive,
	}, h.now())

	switch err := h.repo.Update(ctx, existing); {
	case errors.Is(err, user.ErrNotFound):
		return result.Fail[result.Unit](errs.UserNotFoundByID(req.UserID)), nil
	case shared.IsConflict(err):
		return result.Fail[result.Unit](errs.UserAlreadyExists()), nil
	case err != nil:
		return result.Result[result.Unit]{}, err
	}
	return result.Done(), nil
}

func (h *Handlers) Delete(ctx context.Context, req DeleteUser) (result.Result[result.Unit], error) {
	err := h.repo.Delete(ctx, req.UserID)
	if errors.Is(err, user.ErrNotFound) {
		return result.Fail[result.Unit](errs.UserNotFoundByID(req.UserID)), nil
	}
	if err != nil {
		return result.Result[result.Unit]{}, err
	}
	return result.Done(), nil
}
