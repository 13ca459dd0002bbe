package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"powerwrite-backend/internal/domains/outline"
	"powerwrite-backend/internal/shared/middleware"
	"powerwrite-backend/internal/shared/response"
	"powerwrite-backend/internal/shared/utils"
)

// Handler exposes the outline snapshot endpoints.
type Handler struct {
	service outline.Service
}

func NewHandler(service outline.Service) *Handler {
	return &Handler{service: service}
}

// SaveSnapshot - POST /v1/outlines
func (h *Handler) SaveSnapshot(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req outline.SaveSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[Handler] Invalid outline request: %v", err)
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	snapshot, err := h.service.SaveSnapshot(c.Request.Context(), actor, req)
	if outline.HandleOutlineError(c, err) {
		return
	}

	response.Success(c, http.StatusCreated, "Outline saved successfully", snapshot)
}

// ListSnapshots - GET /v1/outlines
func (h *Handler) ListSnapshots(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	summaries, err := h.service.ListSnapshots(c.Request.Context(), actor)
	if outline.HandleOutlineError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Outlines retrieved successfully", summaries)
}

// GetSnapshot - GET /v1/outlines/:id
func (h *Handler) GetSnapshot(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid outline ID", "id must be a valid UUID")
		return
	}

	snapshot, err := h.service.GetSnapshot(c.Request.Context(), actor, utils.ParseStringToUUID(id))
	if outline.HandleOutlineError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Outline retrieved successfully", snapshot)
}

// DeleteSnapshot - DELETE /v1/outlines/:id
func (h *Handler) DeleteSnapshot(c *gin.Context) {
	h.deleteByID(c, c.Param("id"))
}

// DeleteSnapshotByQuery - DELETE /v1/outlines?id=
//
// The original web client deletes by query parameter; kept alongside
// the path form for wire compatibility.
func (h *Handler) DeleteSnapshotByQuery(c *gin.Context) {
	h.deleteByID(c, c.Query("id"))
}

func (h *Handler) deleteByID(c *gin.Context, id string) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	if !utils.IsValidUUID(id) {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid outline ID", "id must be a valid UUID")
		return
	}

	err := h.service.DeleteSnapshot(c.Request.Context(), actor, utils.ParseStringToUUID(id))
	if outline.HandleOutlineError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Outline deleted successfully", nil)
}

// Mutate - POST /v1/outlines/:id/mutate
func (h *Handler) Mutate(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid outline ID", "id must be a valid UUID")
		return
	}

	var req outline.MutateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[Handler] Invalid mutate request: %v", err)
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	snapshot, err := h.service.Mutate(c.Request.Context(), actor, utils.ParseStringToUUID(id), req)
	if outline.HandleOutlineError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Outline updated successfully", snapshot)
}
