package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/middleware"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/service"
)

type createSessionRequest struct {
	CounterpartID      string    `json:"counterpartId" binding:"required"`
	ProposerSkillID    string    `json:"proposerSkillId" binding:"required"`
	ProposerService    string    `json:"proposerService" binding:"required"`
	CounterpartSkillID string    `json:"counterpartSkillId" binding:"required"`
	CounterpartService string    `json:"counterpartService" binding:"required"`
	StartDate          time.Time `json:"startDate" binding:"required"`
	EndDate            time.Time `json:"endDate" binding:"required"`
}

type sessionResponse struct {
	ID                 string     `json:"id"`
	ProposerID         string     `json:"proposerId"`
	CounterpartID      string     `json:"counterpartId"`
	ProposerSkillID    string     `json:"proposerSkillId"`
	ProposerService    string     `json:"proposerService"`
	CounterpartSkillID string     `json:"counterpartSkillId"`
	CounterpartService string     `json:"counterpartService"`
	StartDate          time.Time  `json:"startDate"`
	EndDate            time.Time  `json:"endDate"`
	IsAccepted         *bool      `json:"isAccepted"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`

	CompletionRequestedBy *string    `json:"completionRequestedBy,omitempty"`
	CompletionRequestedAt *time.Time `json:"completionRequestedAt,omitempty"`
	CompletionApprovedBy  *string    `json:"completionApprovedBy,omitempty"`
	CompletionApprovedAt  *time.Time `json:"completionApprovedAt,omitempty"`
	CompletionRejectedBy  *string    `json:"completionRejectedBy,omitempty"`
	CompletionRejectedAt  *time.Time `json:"completionRejectedAt,omitempty"`
	CompletionRejectedWhy *string    `json:"completionRejectedReason,omitempty"`

	Proposer         *userResponse  `json:"proposer,omitempty"`
	Counterpart      *userResponse  `json:"counterpart,omitempty"`
	ProposerSkill    *skillResponse `json:"proposerSkill,omitempty"`
	CounterpartSkill *skillResponse `json:"counterpartSkill,omitempty"`
}

func toSessionResponse(s models.Session) sessionResponse {
	return sessionResponse{
		ID:                  s.ID,
		ProposerID:          s.ProposerID,
		CounterpartID:       s.CounterpartID,
		ProposerSkillID:     s.ProposerSkillID,
		ProposerService:     s.ProposerService,
		CounterpartSkillID:  s.CounterpartSkillID,
		CounterpartService:  s.CounterpartService,
		StartDate:           s.StartDate,
		EndDate:             s.EndDate,
		IsAccepted:          s.IsAccepted,
		Status:              string(s.Status),
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
		CompletionRequestedBy: s.CompletionRequestedBy,
		CompletionRequestedAt: s.CompletionRequestedAt,
		CompletionApprovedBy:  s.CompletionApprovedBy,
		CompletionApprovedAt:  s.CompletionApprovedAt,
		CompletionRejectedBy:  s.CompletionRejectedBy,
		CompletionRejectedAt:  s.CompletionRejectedAt,
		CompletionRejectedWhy: s.CompletionRejectedWhy,
	}
}

func (h HandlerSet) CreateSession(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.sessionService.Create(c.Request.Context(), service.CreateSessionInput{
		ProposerID:         user.ID,
		CounterpartID:      req.CounterpartID,
		ProposerSkillID:    req.ProposerSkillID,
		ProposerService:    req.ProposerService,
		CounterpartSkillID: req.CounterpartSkillID,
		CounterpartService: req.CounterpartService,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusCreated, "session proposed", gin.H{"session": toSessionResponse(session)})
}

func (h HandlerSet) ListSessions(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessions, err := h.sessionService.List(c.Request.Context(), user.ID, models.SessionStatus(c.Query("status")))
	if err != nil {
		h.fail(c, err)
		return
	}

	items := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, toSessionResponse(session))
	}

	ok(c, http.StatusOK, "ok", gin.H{"sessions": items})
}

func (h HandlerSet) GetSession(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	session, err := h.sessionService.Get(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := toSessionResponse(session)
	h.populateSession(c, &resp, session)

	ok(c, http.StatusOK, "ok", gin.H{"session": resp})
}

// populateSession attaches party and skill summaries to a detail view.
// Lookups are best effort; a missing reference leaves the field empty.
func (h HandlerSet) populateSession(c *gin.Context, resp *sessionResponse, session models.Session) {
	ctx := c.Request.Context()

	if proposer, err := h.users.GetByID(ctx, session.ProposerID); err == nil {
		u := toUserResponse(proposer)
		resp.Proposer = &u
	}
	if counterpart, err := h.users.GetByID(ctx, session.CounterpartID); err == nil {
		u := toUserResponse(counterpart)
		resp.Counterpart = &u
	}
	if skill, err := h.skills.GetByID(ctx, session.ProposerSkillID); err == nil {
		sk := toSkillResponse(skill)
		resp.ProposerSkill = &sk
	}
	if skill, err := h.skills.GetByID(ctx, session.CounterpartSkillID); err == nil {
		sk := toSkillResponse(skill)
		resp.CounterpartSkill = &sk
	}
}

type respondSessionRequest struct {
	Action string `json:"action" binding:"required,oneof=accept reject"`
}

func (h HandlerSet) RespondSession(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req respondSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.sessionService.Respond(c.Request.Context(), c.Param("id"), user.ID, req.Action == "accept")
	if err != nil {
		h.fail(c, err)
		return
	}

	message := "session rejected"
	if session.Status == models.SessionStatusActive {
		message = "session accepted"
	}
	ok(c, http.StatusOK, message, gin.H{"session": toSessionResponse(session)})
}

func (h HandlerSet) DeleteSession(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.sessionService.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusOK, "session deleted", nil)
}
