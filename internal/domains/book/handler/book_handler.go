package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"powerwrite-backend/internal/domains/book/model"
	service "powerwrite-backend/internal/domains/book/service"
	"powerwrite-backend/internal/shared/middleware"
	"powerwrite-backend/internal/shared/response"
	"powerwrite-backend/internal/shared/utils"
	"powerwrite-backend/pkg/cache"
)

// Handler - HTTP Handler (single file)
type Handler struct {
	service service.ServiceInterface
	export  service.ExportServiceInterface
	cache   cache.Cache
}

// NewHandler - Constructor with DI
func NewHandler(service service.ServiceInterface, export service.ExportServiceInterface, cache cache.Cache) *Handler {
	return &Handler{
		service: service,
		export:  export,
		cache:   cache,
	}
}

// CreateBook - POST /v1/books
func (h *Handler) CreateBook(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[Handler] Invalid create book request: %v", err)
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	b, err := h.service.CreateBook(c.Request.Context(), actor, req)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusCreated, "Book created successfully", b)
}

// ListBooks - GET /v1/books
func (h *Handler) ListBooks(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	books, err := h.service.ListBooks(c.Request.Context(), actor)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Books retrieved successfully", books)
}

// GetBookDetail - GET /v1/books/:id
func (h *Handler) GetBookDetail(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid book ID", "id must be a valid UUID")
		return
	}

	// Check cache first. Cached details are only served to the owner;
	// the ownership check needs the row anyway for everyone else.
	cacheKey := model.BookDetailCacheKey(id)
	var cached model.BookDetail
	if found, err := h.cache.Get(c.Request.Context(), cacheKey, &cached); found {
		if cached.UserID.String() == actor.ID || cached.IsShowcased {
			response.Success(c, http.StatusOK, "Book retrieved successfully", &cached)
			return
		}
	} else if err != nil {
		log.Printf("[Handler] Cache error for key %s: %v", cacheKey, err)
	}

	detail, err := h.service.GetBook(c.Request.Context(), actor, utils.ParseStringToUUID(id))
	if model.HandleBookError(c, err) {
		return
	}

	if err := h.cache.Set(c.Request.Context(), cacheKey, detail, 10*time.Minute); err != nil {
		log.Printf("[Handler] Failed to cache book detail: %v", err)
	}

	response.Success(c, http.StatusOK, "Book retrieved successfully", detail)
}

// UpdateBook - PATCH /v1/books/:id
func (h *Handler) UpdateBook(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid book ID", "id must be a valid UUID")
		return
	}

	var req model.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[Handler] Invalid update book request: %v", err)
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	b, err := h.service.UpdateBook(c.Request.Context(), actor, utils.ParseStringToUUID(id), req)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Book updated successfully", b)
}

// DeleteBook - DELETE /v1/books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid book ID", "id must be a valid UUID")
		return
	}

	err := h.service.DeleteBook(c.Request.Context(), actor, utils.ParseStringToUUID(id))
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Book deleted successfully", nil)
}

// PutChapters - PUT /v1/books/:id/chapters
//
// Bulk replace. The server renumbers by position so chapter numbers
// always match their index regardless of what the client sent.
func (h *Handler) PutChapters(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid book ID", "id must be a valid UUID")
		return
	}

	var req model.PutChaptersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[Handler] Invalid chapters request: %v", err)
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	detail, err := h.service.PutChapters(c.Request.Context(), actor, utils.ParseStringToUUID(id), req)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Chapters updated successfully", detail)
}

// DuplicateBook - POST /v1/books/:id/duplicate
func (h *Handler) DuplicateBook(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid book ID", "id must be a valid UUID")
		return
	}

	detail, err := h.service.DuplicateBook(c.Request.Context(), actor, utils.ParseStringToUUID(id))
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusCreated, "Book duplicated successfully", detail)
}

// AddShowcase - POST /v1/books/:id/showcase
func (h *Handler) AddShowcase(c *gin.Context) {
	h.setShowcase(c, true, "Book added to showcase")
}

// RemoveShowcase - DELETE /v1/books/:id/showcase
func (h *Handler) RemoveShowcase(c *gin.Context) {
	h.setShowcase(c, false, "Book removed from showcase")
}

func (h *Handler) setShowcase(c *gin.Context, showcased bool, message string) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	id := c.Param("id")
	if !utils.IsValidUUID(id) {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid book ID", "id must be a valid UUID")
		return
	}

	err := h.service.SetShowcase(c.Request.Context(), actor, utils.ParseStringToUUID(id), showcased)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, message, nil)
}

// ListShowcase - GET /v1/books/showcase
func (h *Handler) ListShowcase(c *gin.Context) {
	books, err := h.service.ListShowcase(c.Request.Context())
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Showcase retrieved successfully", books)
}

// ExportBook - POST /v1/books/export
//
// Streams the rendered artifact as an attachment. pdf/docx answer 422
// FORMAT_NOT_SUPPORTED.
func (h *Handler) ExportBook(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req model.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[Handler] Invalid export request: %v", err)
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}
	if !utils.IsValidUUID(req.BookID) {
		response.ErrorResponse(c, http.StatusBadRequest, "Invalid book ID", "bookId must be a valid UUID")
		return
	}

	result, err := h.export.ExportBook(c.Request.Context(), actor, req)
	if model.HandleBookError(c, err) {
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// BooksReport - GET /v1/admin/books/report
func (h *Handler) BooksReport(c *gin.Context) {
	data, err := h.export.BuildBooksReport(c.Request.Context())
	if err != nil {
		log.Printf("[Handler] Report build failed: %v", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "Report generation failed", "Internal server error")
		return
	}

	fileName := fmt.Sprintf("books-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
