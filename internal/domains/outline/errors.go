package outline

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"powerwrite-backend/internal/shared/response"
)

var (
	ErrOutlineNotFound        = errors.New("outline not found")
	ErrChapterIndexOutOfRange = errors.New("chapter index out of range")
	ErrInvalidMoveDirection   = errors.New("move direction must be up or down")
	ErrNotOwner               = errors.New("outline belongs to another user")
)

var outlineErrorMap = map[error]struct {
	Status  int
	Title   string
	Message string
}{
	ErrOutlineNotFound: {
		Status:  http.StatusNotFound,
		Title:   "Outline not found",
		Message: "The specified outline does not exist",
	},
	ErrChapterIndexOutOfRange: {
		Status:  http.StatusBadRequest,
		Title:   "Invalid chapter index",
		Message: "The chapter index is out of range",
	},
	ErrInvalidMoveDirection: {
		Status:  http.StatusBadRequest,
		Title:   "Invalid move",
		Message: "Move direction must be 'up' or 'down'",
	},
	ErrNotOwner: {
		Status:  http.StatusForbidden,
		Title:   "Forbidden",
		Message: "You do not have access to this outline",
	},
}

// HandleOutlineError writes the mapped HTTP error. Returns true when
// the request is finished (err != nil).
func HandleOutlineError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if config, ok := outlineErrorMap[err]; ok {
		response.ErrorResponse(c, config.Status, config.Title, config.Message)
		return true
	}

	log.Printf("[Handler] Outline error: %v", err)
	response.ErrorResponse(c, http.StatusInternalServerError, "Outline operation failed", "Internal server error")
	return true
}
