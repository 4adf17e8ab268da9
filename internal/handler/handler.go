// Package handler holds the helpers shared by the HTTP handlers in its
// subpackages.
package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/vacina-dashboard/internal/middleware"
	"github.com/jwalitptl/vacina-dashboard/internal/session"
	apperrors "github.com/jwalitptl/vacina-dashboard/pkg/errors"
	"github.com/jwalitptl/vacina-dashboard/pkg/httputil"
)

const MsgInvalidBody = "Corpo da requisição inválido"

// Session returns the caller's session, answering 401 when there is none.
func Session(c *gin.Context) (*session.Session, bool) {
	s := middleware.GetSession(c)
	if s == nil {
		httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("no session in context")))
		return nil, false
	}
	return s, true
}

// Bind decodes and validates the JSON body into req. Validation failures
// are left on the context for the validation middleware to report per field.
func Bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(apperrors.BadRequest(MsgInvalidBody, err))
		c.Abort()
		return false
	}
	return true
}

// UUIDParam returns the named path parameter when it is a UUID.
func UUIDParam(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("Identificador inválido", fmt.Errorf("invalid %s %q: %w", name, raw, err)))
		return "", false
	}
	return id.String(), true
}
