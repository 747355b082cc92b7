package handler

import (
	"errors"
	"net/http"

	"github.com/dzkrii/fintrack/internal/ledger"
	"github.com/dzkrii/fintrack/internal/models"
	"github.com/dzkrii/fintrack/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser pulls the authenticated user placed into the context by
// AuthMiddleware. When it returns false an error response has already been
// written.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	return user, true
}

// writeLedgerError maps the ledger error taxonomy to the response envelope.
func writeLedgerError(c *gin.Context, err error) {
	var (
		validationErr *ledger.ValidationError
		notFoundErr   *ledger.NotFoundError
		conflictErr   *ledger.ConflictError
	)
	switch {
	case errors.As(err, &validationErr):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, validationErr.Msg)
	case errors.As(err, &notFoundErr):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		util.Error(c, http.StatusConflict, util.CodeConflict, conflictErr.Error())
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "operation failed, please retry")
	}
}
