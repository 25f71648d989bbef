package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/middleware"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
)

type completionRequestResponse struct {
	ID          string     `json:"id"`
	SessionID   string     `json:"sessionId"`
	RequestedBy string     `json:"requestedBy"`
	Status      string     `json:"status"`
	Reason      *string    `json:"reason,omitempty"`
	RespondedBy *string    `json:"respondedBy,omitempty"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toCompletionResponse(req models.CompletionRequest) completionRequestResponse {
	return completionRequestResponse{
		ID:          req.ID,
		SessionID:   req.SessionID,
		RequestedBy: req.RequestedBy,
		Status:      string(req.Status),
		Reason:      req.Reason,
		RespondedBy: req.RespondedBy,
		RespondedAt: req.RespondedAt,
		CreatedAt:   req.CreatedAt,
	}
}

func (h HandlerSet) RequestCompletion(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, err := h.completionService.Request(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusCreated, "completion requested", gin.H{"completionRequest": toCompletionResponse(req)})
}

type respondCompletionRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
	Reason string `json:"reason"`
}

func (h HandlerSet) RespondCompletion(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req respondCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.completionService.Respond(c.Request.Context(), c.Param("id"), user.ID, req.Action == "approve", req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}

	message := "completion rejected"
	if session.Status == models.SessionStatusCompleted {
		message = "session completed"
	}
	ok(c, http.StatusOK, message, gin.H{"session": toSessionResponse(session)})
}

func (h HandlerSet) ListCompletionRequests(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	requests, err := h.completionService.ListBySession(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	items := make([]completionRequestResponse, 0, len(requests))
	for _, req := range requests {
		items = append(items, toCompletionResponse(req))
	}

	ok(c, http.StatusOK, "ok", gin.H{"completionRequests": items})
}

func (h HandlerSet) ListMyCompletionRequests(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	requests, err := h.completionService.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	items := make([]completionRequestResponse, 0, len(requests))
	for _, req := range requests {
		items = append(items, toCompletionResponse(req))
	}

	ok(c, http.StatusOK, "ok", gin.H{"completionRequests": items})
}
