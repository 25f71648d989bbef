package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/middleware"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/service"
)

type counterOfferRequest struct {
	ProposerSkillID    string    `json:"proposerSkillId" binding:"required"`
	ProposerService    string    `json:"proposerService" binding:"required"`
	CounterpartSkillID string    `json:"counterpartSkillId" binding:"required"`
	CounterpartService string    `json:"counterpartService" binding:"required"`
	StartDate          time.Time `json:"startDate" binding:"required"`
	EndDate            time.Time `json:"endDate" binding:"required"`
	Note               string    `json:"note"`
}

type counterOfferResponse struct {
	ID                 string     `json:"id"`
	SessionID          string     `json:"sessionId"`
	OfferedBy          string     `json:"offeredBy"`
	ProposerSkillID    string     `json:"proposerSkillId"`
	ProposerService    string     `json:"proposerService"`
	CounterpartSkillID string     `json:"counterpartSkillId"`
	CounterpartService string     `json:"counterpartService"`
	StartDate          time.Time  `json:"startDate"`
	EndDate            time.Time  `json:"endDate"`
	Note               string     `json:"note,omitempty"`
	Status             string     `json:"status"`
	DecidedAt          *time.Time `json:"decidedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

func toCounterOfferResponse(offer models.CounterOffer) counterOfferResponse {
	return counterOfferResponse{
		ID:                 offer.ID,
		SessionID:          offer.SessionID,
		OfferedBy:          offer.OfferedBy,
		ProposerSkillID:    offer.ProposerSkillID,
		ProposerService:    offer.ProposerService,
		CounterpartSkillID: offer.CounterpartSkillID,
		CounterpartService: offer.CounterpartService,
		StartDate:          offer.StartDate,
		EndDate:            offer.EndDate,
		Note:               offer.Note,
		Status:             string(offer.Status),
		DecidedAt:          offer.DecidedAt,
		CreatedAt:          offer.CreatedAt,
	}
}

func (h HandlerSet) CreateCounterOffer(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req counterOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, err.Error())
		return
	}

	offer, err := h.sessionService.CreateCounterOffer(c.Request.Context(), c.Param("id"), user.ID, service.CounterOfferInput{
		ProposerSkillID:    req.ProposerSkillID,
		ProposerService:    req.ProposerService,
		CounterpartSkillID: req.CounterpartSkillID,
		CounterpartService: req.CounterpartService,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		Note:               req.Note,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusCreated, "counter offer created", gin.H{"counterOffer": toCounterOfferResponse(offer)})
}

func (h HandlerSet) ListCounterOffers(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	offers, err := h.sessionService.ListCounterOffers(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	items := make([]counterOfferResponse, 0, len(offers))
	for _, offer := range offers {
		items = append(items, toCounterOfferResponse(offer))
	}

	ok(c, http.StatusOK, "ok", gin.H{"counterOffers": items})
}

type decideCounterOfferRequest struct {
	Action string `json:"action" binding:"required,oneof=accept reject"`
}

func (h HandlerSet) DecideCounterOffer(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req decideCounterOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.sessionService.DecideCounterOffer(c.Request.Context(), c.Param("id"), c.Param("offerId"), user.ID, req.Action == "accept")
	if err != nil {
		h.fail(c, err)
		return
	}

	message := "counter offer rejected"
	if req.Action == "accept" {
		message = "counter offer accepted"
	}
	ok(c, http.StatusOK, message, gin.H{"session": toSessionResponse(session)})
}
