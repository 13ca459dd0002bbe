package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"powerwrite-backend/internal/domains/user"
	"powerwrite-backend/internal/shared/middleware"
	"powerwrite-backend/internal/shared/response"
)

// UserHandler exposes auth and profile endpoints.
type UserHandler struct {
	service user.Service
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// Register - POST /v1/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	dto, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			response.ErrorResponse(c, http.StatusConflict, "Email already registered", nil)
			return
		}
		response.ErrorResponse(c, http.StatusBadRequest, "Registration failed", err.Error())
		return
	}

	response.Success(c, http.StatusCreated, "Account created", dto)
}

// Login - POST /v1/auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			response.ErrorResponse(c, http.StatusUnauthorized, "Invalid email or password", nil)
			return
		}
		log.Printf("[Handler] Login failed: %v", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "Login failed", "Internal server error")
		return
	}

	response.Success(c, http.StatusOK, "Logged in", resp)
}

// GetProfile - GET /v1/users/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	id, err := uuid.Parse(actor.ID)
	if err != nil {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	dto, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		response.ErrorResponse(c, http.StatusNotFound, "User not found", nil)
		return
	}

	response.Success(c, http.StatusOK, "Profile", dto)
}

// UpgradeTier - PUT /v1/users/me/tier
func (h *UserHandler) UpgradeTier(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req user.UpgradeTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	id, _ := uuid.Parse(actor.ID)
	if err := h.service.UpgradeTier(c.Request.Context(), id, user.Tier(req.Tier)); err != nil {
		log.Printf("[Handler] Tier upgrade failed: %v", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "Tier upgrade failed", "Internal server error")
		return
	}

	response.Success(c, http.StatusOK, "Tier updated", nil)
}
