package model

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"powerwrite-backend/internal/shared/response"
)

var (
	ErrBookNotFound       = errors.New("book not found")
	ErrChapterNotFound    = errors.New("chapter not found")
	ErrNotOwner           = errors.New("book belongs to another user")
	ErrProRequired        = errors.New("this feature requires a pro subscription")
	ErrFormatNotSupported = errors.New("FORMAT_NOT_SUPPORTED")
	ErrInvalidStatus      = errors.New("invalid status value")
)

// bookErrorMap - business error -> HTTP status
var bookErrorMap = map[error]int{
	ErrBookNotFound:       http.StatusNotFound,
	ErrChapterNotFound:    http.StatusNotFound,
	ErrNotOwner:           http.StatusForbidden,
	ErrProRequired:        http.StatusForbidden,
	ErrFormatNotSupported: http.StatusUnprocessableEntity,
	ErrInvalidStatus:      http.StatusBadRequest,
}

// HandleBookError - check business errors and write the mapped HTTP
// response. Returns true when the error was handled.
func HandleBookError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	for sentinel, status := range bookErrorMap {
		if errors.Is(err, sentinel) {
			response.ErrorResponse(c, status, sentinel.Error(), nil)
			return true
		}
	}

	response.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", nil)
	return true
}
