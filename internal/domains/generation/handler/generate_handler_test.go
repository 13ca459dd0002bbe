package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerwrite-backend/internal/domains/generation"
	"powerwrite-backend/internal/domains/outline"
	"powerwrite-backend/internal/shared"
	"powerwrite-backend/internal/shared/middleware"
)

type fakeGenService struct {
	outline    *outline.BookOutline
	modelUsed  string
	outlineErr error
	job        *generation.GenerationJob
	jobErr     error
}

func (f *fakeGenService) GenerateOutline(ctx context.Context, actor shared.Actor, req generation.GenerateOutlineRequest) (*outline.BookOutline, string, error) {
	if f.outlineErr != nil {
		return nil, "", f.outlineErr
	}
	return f.outline, f.modelUsed, nil
}

func (f *fakeGenService) StartBookGeneration(ctx context.Context, actor shared.Actor, req generation.GenerateBookRequest) (*generation.GenerationJob, error) {
	return f.job, f.jobErr
}

func (f *fakeGenService) StartExport(ctx context.Context, actor shared.Actor, bookID uuid.UUID, kind generation.JobKind) (*generation.GenerationJob, error) {
	return f.job, f.jobErr
}

type fakeJobService struct {
	job     *generation.GenerationJob
	message string
	err     error
}

func (f *fakeJobService) GetJob(ctx context.Context, actor shared.Actor, jobID uuid.UUID) (*generation.GenerationJob, error) {
	return f.job, f.err
}

func (f *fakeJobService) CancelOrDelete(ctx context.Context, actor shared.Actor, jobID uuid.UUID) (string, error) {
	return f.message, f.err
}

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ActorKey, shared.Actor{ID: uuid.NewString(), Tier: "free"})
	})
	r.POST("/generate/outline", h.GenerateOutline)
	r.GET("/generate/video/:jobId", h.GetJob)
	r.DELETE("/generate/video/:jobId", h.DeleteJob)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateOutlineValidation(t *testing.T) {
	h := NewHandler(&fakeGenService{}, &fakeJobService{})
	r := setupRouter(h)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"missing userId", `{"config":{"basicInfo":{"title":"T","author":"A"}}}`, "userId"},
		{"missing config", `{"userId":"u1"}`, "config"},
		{"missing title", `{"userId":"u1","config":{"basicInfo":{"author":"A"}}}`, "title"},
		{"missing author", `{"userId":"u1","config":{"basicInfo":{"title":"T"}}}`, "author"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/generate/outline", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			errMsg, _ := body["error"].(string)
			assert.Contains(t, errMsg, tt.wantErr)
		})
	}
}

func TestGenerateOutlineSuccessShape(t *testing.T) {
	svc := &fakeGenService{
		outline: &outline.BookOutline{
			Title:    "The Salt Road",
			Chapters: []outline.ChapterOutline{{Number: 1, Title: "Departure"}},
		},
		modelUsed: "gpt-4o-mini",
	}
	r := setupRouter(NewHandler(svc, &fakeJobService{}))

	w := postJSON(r, "/generate/outline",
		`{"userId":"u1","config":{"basicInfo":{"title":"The Salt Road","author":"A. Writer"}}}`)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success   bool                 `json:"success"`
		Outline   *outline.BookOutline `json:"outline"`
		ModelUsed string               `json:"modelUsed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "gpt-4o-mini", body.ModelUsed)
	require.NotNil(t, body.Outline)
	assert.Equal(t, "The Salt Road", body.Outline.Title)
}

func TestGenerateOutlineProviderFailure(t *testing.T) {
	t.Run("generic failure has no hint", func(t *testing.T) {
		svc := &fakeGenService{outlineErr: errors.New("provider timeout")}
		r := setupRouter(NewHandler(svc, &fakeJobService{}))

		w := postJSON(r, "/generate/outline",
			`{"userId":"u1","config":{"basicInfo":{"title":"T","author":"A"}}}`)

		require.Equal(t, http.StatusInternalServerError, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "outline generation failed", body["error"])
		assert.Equal(t, "provider timeout", body["details"])
		assert.NotContains(t, body, "hint")
	})

	t.Run("missing API key gets a hint", func(t *testing.T) {
		svc := &fakeGenService{outlineErr: errors.New("no API key configured for model gpt-4o")}
		r := setupRouter(NewHandler(svc, &fakeJobService{}))

		w := postJSON(r, "/generate/outline",
			`{"userId":"u1","config":{"basicInfo":{"title":"T","author":"A"}}}`)

		require.Equal(t, http.StatusInternalServerError, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		hint, _ := body["hint"].(string)
		assert.Contains(t, hint, "OPENAI_API_KEY")
	})
}

func TestJobEndpointsRejectBadID(t *testing.T) {
	r := setupRouter(NewHandler(&fakeGenService{}, &fakeJobService{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/generate/video/not-a-uuid", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/generate/video/not-a-uuid", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteJobReportsBranchTaken(t *testing.T) {
	jobs := &fakeJobService{message: "Job cancelled"}
	r := setupRouter(NewHandler(&fakeGenService{}, jobs))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/generate/video/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Job cancelled")
}

func TestGetJobNotFound(t *testing.T) {
	jobs := &fakeJobService{err: generation.ErrJobNotFound}
	r := setupRouter(NewHandler(&fakeGenService{}, jobs))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/generate/video/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
