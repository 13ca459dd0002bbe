package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"powerwrite-backend/internal/domains/generation"
	"powerwrite-backend/internal/shared/middleware"
	"powerwrite-backend/internal/shared/response"
	"powerwrite-backend/internal/shared/utils"
)

// Handler exposes the generation endpoints.
type Handler struct {
	service generation.Service
	jobs    generation.JobService
}

func NewHandler(service generation.Service, jobs generation.JobService) *Handler {
	return &Handler{
		service: service,
		jobs:    jobs,
	}
}

// GenerateOutline - POST /v1/generate/outline
//
// The response shapes here predate the shared envelope and are kept
// for wire compatibility with the existing client:
//
//	200 {"success":true,"outline":{...},"modelUsed":"..."}
//	400 {"error":"..."}
//	500 {"error":"...","details":"...","hint":"..."}
func (h *Handler) GenerateOutline(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no acting user"})
		return
	}

	var req generation.GenerateOutlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, modelUsed, err := h.service.GenerateOutline(c.Request.Context(), actor, req)
	if err != nil {
		log.Printf("[Handler] Outline generation failed: %v", err)
		body := gin.H{
			"error":   "outline generation failed",
			"details": err.Error(),
		}
		if strings.Contains(err.Error(), "API key") {
			body["hint"] = "Set OPENAI_API_KEY or OPENROUTER_API_KEY in the server environment."
		}
		c.JSON(http.StatusInternalServerError, body)
		return
	}

	c.JSON(http.StatusOK, generation.OutlineResponse{
		Success:   true,
		Outline:   result,
		ModelUsed: modelUsed,
	})
}

// GenerateBook - POST /v1/generate/book
func (h *Handler) GenerateBook(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req generation.GenerateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	job, err := h.service.StartBookGeneration(c.Request.Context(), actor, req)
	if generation.HandleJobError(c, err) {
		return
	}

	response.Success(c, http.StatusAccepted, "Book generation started", job)
}

// exportRequest - body for export job creation.
type exportRequest struct {
	BookID string `json:"bookId" binding:"required"`
}

// ExportVideo - POST /v1/generate/video
func (h *Handler) ExportVideo(c *gin.Context) {
	h.startExport(c, generation.KindVideo)
}

// ExportAudio - POST /v1/generate/audio
func (h *Handler) ExportAudio(c *gin.Context) {
	h.startExport(c, generation.KindAudio)
}

func (h *Handler) startExport(c *gin.Context, kind generation.JobKind) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}
	if !utils.IsValidUUID(req.BookID) {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid book ID", "bookId must be a valid UUID")
		return
	}
	bookID := utils.ParseStringToUUID(req.BookID)

	job, err := h.service.StartExport(c.Request.Context(), actor, bookID, kind)
	if generation.HandleJobError(c, err) {
		return
	}

	response.Success(c, http.StatusAccepted, "Export started", job)
}

// GetJob - GET /v1/generate/video/:jobId
func (h *Handler) GetJob(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	if !utils.IsValidUUID(c.Param("jobId")) {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid job ID", "jobId must be a valid UUID")
		return
	}
	jobID := utils.ParseStringToUUID(c.Param("jobId"))

	job, err := h.jobs.GetJob(c.Request.Context(), actor, jobID)
	if generation.HandleJobError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Job status", job)
}

// DeleteJob - DELETE /v1/generate/video/:jobId
//
// Cancels a running job or hard-deletes a terminal one. The message
// tells the client which branch ran.
func (h *Handler) DeleteJob(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	if !utils.IsValidUUID(c.Param("jobId")) {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid job ID", "jobId must be a valid UUID")
		return
	}
	jobID := utils.ParseStringToUUID(c.Param("jobId"))

	message, err := h.jobs.CancelOrDelete(c.Request.Context(), actor, jobID)
	if generation.HandleJobError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, message, nil)
}
