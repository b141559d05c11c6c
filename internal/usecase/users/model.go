// Package users implements the user CRUD requests.
package users

import (
	"math"
	"time"

	"github.com/google/uuid"

	"userapi/internal/domain/user"
	"userapi/internal/validation"
)

type CreateUser struct {
	FirstName   string    `json:"firstName" validate:"required,max=100"`
	LastName    string    `json:"lastName" validate:"required,max=100"`
	Email       string    `json:"email" validate:"required,email,max=255"`
	PhoneNumber string    `json:"phoneNumber" validate:"max=20"`
	DateOfBirth time.Time `json:"dateOfBirth" validate:"past"`
	IsActive    bool      `json:"isActive"`
}

type GetUserByID struct {
	UserID int64 `uri:"userId" validate:"gt=0"`
}

type ListUsers struct {
	Page           int    `form:"page" validate:"gt=0"`
	PageSize       int    `form:"pageSize" validate:"gt=0,lte=100"`
	SortBy         string `form:"sortBy" validate:"omitempty,oneof=userId firstName lastName email createdAt"`
	SortDescending bool   `form:"sortDescending"`
}

type UpdateUser struct {
	UserID      int64     `json:"userId" validate:"gt=0"`
	FirstName   string    `json:"firstName" validate:"required,max=100"`
	LastName    string    `json:"lastName" validate:"required,max=100"`
	Email       string    `json:"email" validate:"required,email,max=255"`
	PhoneNumber string    `json:"phoneNumber" validate:"max=20"`
	DateOfBirth time.Time `json:"dateOfBirth" validate:"past"`
	IsActive    bool      `json:"isActive"`
}

type DeleteUser struct {
	UserID int64 `uri:"userId" validate:"gt=0"`
}

// Messages are the user-facing texts for the request validate tags.
var Messages = validation.Messages{
	"UserID.gt":          "User ID must be greater than 0.",
	"Page.gt":            "Page must be greater than 0.",
	"PageSize.gt":        "Page size must be greater than 0.",
	"PageSize.lte":       "Page size cannot exceed 100.",
	"FirstName.required": "First name is required.",
	"FirstName.max":      "First name must not exceed 100 characters.",
	"LastName.required":  "Last name is required.",
	"LastName.max":       "Last name must not exceed 100 characters.",
	"Email.required":     "Email is required.",
	"Email.email":        "A valid email address is required.",
	"PhoneNumber.max":    "Phone number must not exceed 20 characters.",
	"DateOfBirth.past":   "Date of birth must be in the past.",
}

// UserDTO is the public representation of a user.
type UserDTO struct {
	UserID      int64      `json:"userId"`
	ID          uuid.UUID  `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	DateOfBirth time.Time  `json:"dateOfBirth"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

// ToDTO maps a stored user. The password hash never leaves the domain.
func ToDTO(u user.User) UserDTO {
	return UserDTO{
		UserID:      u.UserID,
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		DateOfBirth: u.DateOfBirth,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// PagedResult is one page of items with navigation hints.
type PagedResult[T any] struct {
	Data            []T    `json:"data"`
	PageSize        int    `json:"pageSize"`
	PageNumber      int    `json:"pageNumber"`
	TotalRecords    int    `json:"totalRecords"`
	TotalPages      int    `json:"totalPages"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
	HasNextPage     bool   `json:"hasNextPage"`
	OrderDescending bool   `json:"orderDescending"`
	OrderBy         string `json:"orderBy,omitempty"`
}

// NewPagedResult fills in the derived page counters.
func NewPagedResult[T any](data []T, pageSize, pageNumber, total int, desc bool, orderBy string) PagedResult[T] {
	if data == nil {
		data = []T{}
	}
	pages := 0
	if pageSize > 0 {
		pages = int(math.Ceil(float64(total) / float64(pageSize)))
	}
	return PagedResult[T]{
		Data:            data,
		PageSize:        pageSize,
		PageNumber:      pageNumber,
		TotalRecords:    total,
		TotalPages:      pages,
		HasPreviousPage: pageNumber > 1,
		HasNextPage:     pageNumber < pages,
		OrderDescending: desc,
		OrderBy:         orderBy,
	}
}
