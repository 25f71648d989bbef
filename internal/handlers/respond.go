package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/evidence"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/exchange"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/repository"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/service"
)

// ok writes the response envelope every endpoint shares.
func ok(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{
		"success": true,
		"message": message,
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func failWith(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// fail translates an engine error into the envelope. Callers depend on
// telling not-found, not-authorized, and wrong-state apart, so each
// class keeps its own status.
func (h HandlerSet) fail(c *gin.Context, err error) {
	switch {
	// Validation.
	case errors.Is(err, exchange.ErrSelfSession),
		errors.Is(err, service.ErrSkillOwnership),
		errors.Is(err, service.ErrTooManyPending),
		errors.Is(err, service.ErrReasonRequired),
		errors.Is(err, evidence.ErrUnsupportedType):
		failWith(c, http.StatusBadRequest, err.Error())

	// Authorization.
	case errors.Is(err, exchange.ErrNotParticipant),
		errors.Is(err, exchange.ErrOwnDecision),
		errors.Is(err, exchange.ErrOwnRequest),
		errors.Is(err, exchange.ErrNotInitiator),
		errors.Is(err, exchange.ErrNotProposer):
		failWith(c, http.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrInvalidCredentials):
		failWith(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrUserSuspended):
		failWith(c, http.StatusForbidden, err.Error())

	// Not found.
	case errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrSkillNotFound),
		errors.Is(err, repository.ErrCounterOfferNotFound),
		errors.Is(err, repository.ErrCancellationNotFound),
		errors.Is(err, repository.ErrCompletionNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrNotificationNotFound),
		errors.Is(err, exchange.ErrNoPendingCompletion):
		failWith(c, http.StatusNotFound, err.Error())

	// State conflicts seen on the fresh read.
	case errors.Is(err, exchange.ErrAlreadyDecided),
		errors.Is(err, exchange.ErrNotPending),
		errors.Is(err, exchange.ErrNotActive),
		errors.Is(err, exchange.ErrDuplicateCompletion),
		errors.Is(err, exchange.ErrCancellationOpen),
		errors.Is(err, exchange.ErrCancellationClosed),
		errors.Is(err, exchange.ErrNotDisputed),
		errors.Is(err, exchange.ErrOfferDecided):
		failWith(c, http.StatusBadRequest, err.Error())

	// Lost a write race: the precondition held on read but another
	// request committed first.
	case errors.Is(err, repository.ErrStateConflict):
		failWith(c, http.StatusConflict, err.Error())

	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		failWith(c, http.StatusInternalServerError, "internal server error")
	}
}
