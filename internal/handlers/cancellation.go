package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/middleware"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/service"
)

const maxEvidenceSize = 10 << 20 // per file

type cancellationResponse struct {
	ID             string     `json:"id"`
	SessionID      string     `json:"sessionId"`
	InitiatorID    string     `json:"initiatorId"`
	Reason         string     `json:"reason"`
	Description    string     `json:"description,omitempty"`
	EvidenceURLs   []string   `json:"evidenceUrls,omitempty"`
	ResponseStatus string     `json:"responseStatus"`
	Resolution     string     `json:"resolution"`
	DisputeNote    *string    `json:"disputeNote,omitempty"`
	FinalNote      *string    `json:"finalNote,omitempty"`
	RespondedAt    *time.Time `json:"respondedAt,omitempty"`
	ResolvedAt     *time.Time `json:"resolvedDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func toCancellationResponse(req models.CancellationRequest) cancellationResponse {
	return cancellationResponse{
		ID:             req.ID,
		SessionID:      req.SessionID,
		InitiatorID:    req.InitiatorID,
		Reason:         req.Reason,
		Description:    req.Description,
		EvidenceURLs:   req.EvidenceURLs,
		ResponseStatus: string(req.ResponseStatus),
		Resolution:     string(req.Resolution),
		DisputeNote:    req.DisputeNote,
		FinalNote:      req.FinalNote,
		RespondedAt:    req.RespondedAt,
		ResolvedAt:     req.ResolvedAt,
		CreatedAt:      req.CreatedAt,
	}
}

// RequestCancellation accepts a multipart form so evidence files can
// ride along with the reason and description.
func (h HandlerSet) RequestCancellation(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	reason := c.PostForm("reason")
	description := c.PostForm("description")

	files, err := h.readEvidence(c)
	if err != nil {
		failWith(c, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.cancellationService.Request(c.Request.Context(), c.Param("id"), user.ID, reason, description, files)
	if err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusCreated, "cancellation requested", gin.H{"cancellationRequest": toCancellationResponse(req)})
}

func (h HandlerSet) readEvidence(c *gin.Context) ([]service.EvidenceFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// Plain form posts without attachments are fine.
		return nil, nil
	}

	var files []service.EvidenceFile
	for _, header := range form.File["evidence"] {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(io.LimitReader(file, maxEvidenceSize))
		file.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, service.EvidenceFile{
			Name: header.Filename,
			Data: data,
		})
	}
	return files, nil
}

// GetCancellation returns the session's open request, or with
// ?history=true the full record of resolved and open requests.
func (h HandlerSet) GetCancellation(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	if history, _ := strconv.ParseBool(c.Query("history")); history {
		requests, err := h.cancellationService.History(c.Request.Context(), c.Param("id"), user.ID)
		if err != nil {
			h.fail(c, err)
			return
		}

		items := make([]cancellationResponse, 0, len(requests))
		for _, req := range requests {
			items = append(items, toCancellationResponse(req))
		}

		ok(c, http.StatusOK, "ok", gin.H{"cancellationRequests": items})
		return
	}

	req, err := h.cancellationService.Get(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusOK, "ok", gin.H{"cancellationRequest": toCancellationResponse(req)})
}

type respondCancellationRequest struct {
	Action      string `json:"action" binding:"required,oneof=agree dispute finalize"`
	Description string `json:"description"`
	FinalNote   string `json:"finalNote"`
}

func (h HandlerSet) RespondCancellation(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		failWith(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body respondCancellationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		failWith(c, http.StatusBadRequest, err.Error())
		return
	}

	var (
		req models.CancellationRequest
		err error
	)
	sessionID := c.Param("id")

	switch body.Action {
	case "agree":
		req, err = h.cancellationService.Agree(c.Request.Context(), sessionID, user.ID)
	case "dispute":
		req, err = h.cancellationService.Dispute(c.Request.Context(), sessionID, user.ID, body.Description)
	case "finalize":
		req, err = h.cancellationService.Finalize(c.Request.Context(), sessionID, user.ID, body.FinalNote)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusOK, "cancellation "+body.Action+"d", gin.H{"cancellationRequest": toCancellationResponse(req)})
}
