package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/ids"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/middleware"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
)

type createSkillRequest struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type skillResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toSkillResponse(skill models.Skill) skillResponse {
	return skillResponse{
		ID:          skill.ID,
		UserID:      skill.UserID,
		Name:        skill.Name,
		Category:    skill.Category,
		Description: skill.Description,
		CreatedAt:   skill.CreatedAt,
	}
}

func (h HandlerSet) CreateSkill(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, err.Error())
		return
	}

	skill := models.Skill{
		ID:          ids.New(),
		UserID:      user.ID,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.skills.Create(c.Request.Context(), skill); err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusCreated, "skill created", gin.H{"skill": toSkillResponse(skill)})
}

func (h HandlerSet) ListSkills(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	skills, err := h.skills.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	items := make([]skillResponse, 0, len(skills))
	for _, skill := range skills {
		items = append(items, toSkillResponse(skill))
	}

	ok(c, http.StatusOK, "ok", gin.H{"skills": items})
}

func (h HandlerSet) DeleteSkill(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.skills.DeleteOwned(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusOK, "skill deleted", nil)
}
