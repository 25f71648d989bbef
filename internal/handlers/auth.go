package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/middleware"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/service"
)

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"displayName" binding:"required"`
}

type userResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	DisplayName string  `json:"displayName"`
	Status      string  `json:"status"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Status:      string(user.Status),
		AvatarURL:   user.AvatarURL,
	}
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		failWith(c, http.StatusBadRequest, err.Error())
		return
	}

	ok(c, http.StatusCreated, "registered", gin.H{
		"accessToken": result.AccessToken,
		"user":        toUserResponse(result.User),
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusOK, "logged in", gin.H{
		"accessToken": result.AccessToken,
		"user":        toUserResponse(result.User),
	})
}

func (h HandlerSet) Me(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	ok(c, http.StatusOK, "ok", gin.H{
		"user": toUserResponse(user),
	})
}
