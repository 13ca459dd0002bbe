package generation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"powerwrite-backend/internal/shared/response"
)

var (
	ErrJobNotFound     = errors.New("generation job not found")
	ErrJobAccessDenied = errors.New("not allowed to access this job")
	ErrStatusConflict  = errors.New("job status changed concurrently")
	ErrBookNotFound    = errors.New("book not found for generation")
	ErrInvalidJobKind  = errors.New("invalid job kind")
)

// jobErrorMap - business error -> HTTP status
var jobErrorMap = map[error]int{
	ErrJobNotFound:     http.StatusNotFound,
	ErrJobAccessDenied: http.StatusForbidden,
	ErrStatusConflict:  http.StatusConflict,
	ErrBookNotFound:    http.StatusNotFound,
	ErrInvalidJobKind:  http.StatusBadRequest,
}

// HandleJobError - check business errors and write the mapped HTTP
// response. Returns true when the error was handled.
func HandleJobError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	for sentinel, status := range jobErrorMap {
		if errors.Is(err, sentinel) {
			response.ErrorResponse(c, status, sentinel.Error(), nil)
			return true
		}
	}

	// Unknown errors -> 500, no internals leaked
	response.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", nil)
	return true
}
