package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"userapi/internal/dispatch"
	"userapi/internal/result"
	"userapi/internal/shared"
	"userapi/internal/usecase/auth"
	"userapi/internal/usecase/dummy"
	"userapi/internal/usecase/users"
)

// bind records a binding failure for the exception chain. Tag failures
// stay validator.ValidationErrors; anything else is a malformed request.
func bind(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		err = shared.MarkKind(fmt.Errorf("malformed request: %w", err), shared.KindValidation)
	}
	_ = c.Error(err)
	return false
}

type pathID struct {
	UserID int64 `uri:"userId"`
}

func (s *Server) createUser(c *gin.Context) {
	var req users.CreateUser
	if !bind(c, c.ShouldBindJSON(&req)) {
		return
	}
	res, err := dispatch.Send[users.CreateUser, users.UserDTO](c.Request.Context(), s.d, req)
	respond(c, s.tr, res, err, func(u users.UserDTO) {
		c.Header("Location", "/api/users/"+strconv.FormatInt(u.UserID, 10))
		c.JSON(http.StatusCreated, u)
	})
}

func (s *Server) getUser(c *gin.Context) {
	var req users.GetUserByID
	if !bind(c, c.ShouldBindUri(&req)) {
		return
	}
	res, err := dispatch.Send[users.GetUserByID, users.UserDTO](c.Request.Context(), s.d, req)
	respond(c, s.tr, res, err, func(u users.UserDTO) {
		c.JSON(http.StatusOK, u)
	})
}

func (s *Server) listUsers(c *gin.Context) {
	req := users.ListUsers{Page: 1, PageSize: 10}
	if !bind(c, c.ShouldBindQuery(&req)) {
		return
	}
	res, err := dispatch.Send[users.ListUsers, users.PagedResult[users.UserDTO]](c.Request.Context(), s.d, req)
	respond(c, s.tr, res, err, func(p users.PagedResult[users.UserDTO]) {
		c.JSON(http.StatusOK, p)
	})
}

// updateUser takes the id from the path; a userId in the body is ignored.
func (s *Server) updateUser(c *gin.Context) {
	var id pathID
	if !bind(c, c.ShouldBindUri(&id)) {
		return
	}
	var req users.UpdateUser
	if !bind(c, c.ShouldBindJSON(&req)) {
		return
	}
	req.UserID = id.UserID
	res, err := dispatch.Send[users.UpdateUser, result.Unit](c.Request.Context(), s.d, req)
	respond(c, s.tr, res, err, func(result.Unit) {
		c.Status(http.StatusNoContent)
	})
}

func (s *Server) deleteUser(c *gin.Context) {
	var req users.DeleteUser
	if !bind(c, c.ShouldBindUri(&req)) {
		return
	}
	res, err := dispatch.Send[users.DeleteUser, result.Unit](c.Request.Context(), s.d, req)
	respond(c, s.tr, res, err, func(result.Unit) {
		c.Status(http.StatusNoContent)
	})
}

func (s *Server) register(c *gin.Context) {
	var req auth.Register
	if !bind(c, c.ShouldBindJSON(&req)) {
		return
	}
	res, err := dispatch.Send[auth.Register, auth.Result](c.Request.Context(), s.d, req)
	respond(c, s.tr, res, err, func(r auth.Result) {
		c.JSON(http.StatusOK, r)
	})
}

func (s *Server) login(c *gin.Context) {
	var req auth.Login
	if !bind(c, c.ShouldBindJSON(&req)) {
		return
	}
	res, err := dispatch.Send[auth.Login, auth.Result](c.Request.Context(), s.d, req)
	respond(c, s.tr, res, err, func(r auth.Result) {
		c.JSON(http.StatusOK, r)
	})
}

func (s *Server) greet(c *gin.Context) {
	var req dummy.Greet
	if !bind(c, c.ShouldBindQuery(&req)) {
		return
	}
	res, err := dispatch.Send[dummy.Greet, string](c.Request.Context(), s.d, req)
	respond(c, s.tr, res, err, func(msg string) {
		c.String(http.StatusOK, msg)
	})
}
