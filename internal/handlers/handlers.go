// Package handlers implements the JSON API endpoints. Handlers stay thin:
// they bind and validate input, call into the session engine or repository,
// and translate errors onto the response envelope.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dementia-tracker/internal/repository"
	"dementia-tracker/internal/response"
	"dementia-tracker/internal/session"
)

// ContextKeyUserID is set by the auth middleware after token validation.
const ContextKeyUserID = "userID"

func currentUserID(c *gin.Context) uint {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(uint)
	return id
}

// failSession maps a session-engine error onto the envelope.
func failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, session.ErrWrongPhase),
		errors.Is(err, session.ErrWrongTestKind),
		errors.Is(err, session.ErrNotRecallStage):
		response.Fail(c, http.StatusConflict, response.ErrWrongPhase)
	case errors.Is(err, session.ErrInputDisabled):
		response.Fail(c, http.StatusConflict, response.ErrInputDisabled)
	case errors.Is(err, session.ErrUnknownTestType):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownTestType)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// failRepo maps a repository error onto the envelope.
func failRepo(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrValidation):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, repository.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrPersistence)
	}
}
