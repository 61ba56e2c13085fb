package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-config-console/internal/service/generation"
	"ai-config-console/internal/service/lifecycle"
	"ai-config-console/internal/service/llm"
	"ai-config-console/internal/service/playground"
	"ai-config-console/internal/service/ranker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubExecutor struct{}

func (s *stubExecutor) Execute(_ context.Context, promptID, _ uuid.UUID, _ map[string]string) (*generation.Result, error) {
	return &generation.Result{Content: promptID.String()}, nil
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"prompt not found", lifecycle.ErrNotFound, http.StatusNotFound},
		{"model not found", ranker.ErrNotFound, http.StatusNotFound},
		{"generation resource not found", generation.ErrNotFound, http.StatusNotFound},
		{"delete active prompt", lifecycle.ErrConflict, http.StatusConflict},
		{"duplicate version", lifecycle.ErrDuplicateVersion, http.StatusConflict},
		{"generation history", lifecycle.ErrHasActiveGenerations, http.StatusConflict},
		{"invalid transition", lifecycle.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{"edit locked", lifecycle.ErrEditLocked, http.StatusUnprocessableEntity},
		{"inactive resource", generation.ErrInactiveResource, http.StatusUnprocessableEntity},
		{"invalid version", lifecycle.ErrInvalidVersion, http.StatusBadRequest},
		{"invalid type", lifecycle.ErrInvalidType, http.StatusBadRequest},
		{"invalid priority", ranker.ErrInvalidPriority, http.StatusBadRequest},
		{"playground validation", playground.ErrValidation, http.StatusBadRequest},
		{"provider failure", generation.ErrProvider, http.StatusBadGateway},
		{"missing credential", llm.ErrNoCredential, http.StatusBadGateway},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorStatus(tt.err))
		})
	}

	t.Run("wrapped errors resolve through Is", func(t *testing.T) {
		wrapped := fmt.Errorf("%w: upstream timeout", generation.ErrProvider)
		assert.Equal(t, http.StatusBadGateway, errorStatus(wrapped))
	})
}

func TestRespondError(t *testing.T) {
	router := gin.New()
	router.GET("/boom", func(c *gin.Context) {
		respondError(c, lifecycle.ErrEditLocked)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/boom", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, lifecycle.ErrEditLocked.Error(), body["error"])
}

func TestPromptHandlerBindingValidation(t *testing.T) {
	handler := NewPromptHandler(nil, zap.NewNop())
	router := gin.New()
	router.POST("/prompts", handler.Create)
	router.POST("/prompts/:id/clone", handler.Clone)
	router.GET("/prompts/:id", handler.Get)
	router.GET("/prompts/diff", handler.Diff)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "create missing name",
			method:     "POST",
			path:       "/prompts",
			body:       `{"type":"defesa_previa","version":"1.0.0","user_prompt_template":"x"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "create missing user template",
			method:     "POST",
			path:       "/prompts",
			body:       `{"name":"x","type":"defesa_previa","version":"1.0.0"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "create malformed json",
			method:     "POST",
			path:       "/prompts",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "clone bad id",
			method:     "POST",
			path:       "/prompts/not-a-uuid/clone",
			body:       `{"new_version":"2.0.0"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "get bad id",
			method:     "GET",
			path:       "/prompts/not-a-uuid",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "diff missing ids",
			method:     "GET",
			path:       "/prompts/diff",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestModelHandlerBindingValidation(t *testing.T) {
	handler := NewModelHandler(nil, nil, zap.NewNop())
	router := gin.New()
	router.POST("/models", handler.Create)
	router.PUT("/models/:id/priority", handler.SetPriority)
	router.POST("/models/:id/move", handler.Move)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "create missing provider",
			method:     "POST",
			path:       "/models",
			body:       `{"name":"GPT-4o","slug":"gpt-4o"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "priority bad id",
			method:     "PUT",
			path:       "/models/nope/priority",
			body:       `{"priority":2}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "move bad id",
			method:     "POST",
			path:       "/models/nope/move",
			body:       `{"direction":-1}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestPlaygroundHandlerExecute(t *testing.T) {
	executor := &stubExecutor{}
	orch := playground.NewOrchestrator(executor, time.Minute, zap.NewNop())
	handler := NewPlaygroundHandler(orch, zap.NewNop())

	router := gin.New()
	router.POST("/playground/execute", handler.Execute)
	router.POST("/playground/compare", handler.Compare)

	t.Run("empty config rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/playground/execute", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("valid single run returns bare result", func(t *testing.T) {
		// the execute body is the run config itself, not a wrapper
		body := `{"prompt_id":"7f1aa2a5-95dd-4cc4-86b4-0f0f13aa44a0","model_id":"0e9f4d8a-3d3b-4a41-9a87-0f4cf59c59ff","test_data":{"numero_auto":"AB123"}}`
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/playground/execute", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		var result generation.Result
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "7f1aa2a5-95dd-4cc4-86b4-0f0f13aa44a0", result.Content)
		assert.NotContains(t, w.Body.String(), "result_a")
	})

	t.Run("compare needs both configs valid", func(t *testing.T) {
		body := `{"config_a":{"prompt_id":"7f1aa2a5-95dd-4cc4-86b4-0f0f13aa44a0","model_id":"0e9f4d8a-3d3b-4a41-9a87-0f4cf59c59ff","test_data":{"x":"y"}},"config_b":{}}`
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/playground/compare", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
