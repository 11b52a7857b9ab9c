package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/pdflux/internal/pkg/errcode"
)

type apiResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *apiResponse {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	var out apiResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return &out
}

func TestTaskEndToEnd(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	env.seedDocument(t, "doc-e2e-task", "hello.pdf", "Hello world. A tiny document.")

	resp := doJSON(t, env.router, http.MethodPost, "/api/v1/ai/tasks", map[string]string{
		"document_id": "doc-e2e-task",
		"task_type":   "summarize",
	})
	require.Zero(t, resp.Code, resp.Msg)
	var task struct {
		TaskID         string  `json:"task_id"`
		TaskType       string  `json:"task_type"`
		Result         string  `json:"result"`
		ProcessingTime float64 `json:"processing_time"`
		DocumentID     string  `json:"document_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &task))
	require.NotEmpty(t, task.TaskID)
	require.Equal(t, "summarize", task.TaskType)
	require.Equal(t, "stub reply", task.Result)
	require.Equal(t, "doc-e2e-task", task.DocumentID)
	require.GreaterOrEqual(t, task.ProcessingTime, 0.0)

	// the interaction is now in the document's history
	resp = doJSON(t, env.router, http.MethodGet, "/api/v1/documents/doc-e2e-task/history", nil)
	require.Zero(t, resp.Code)
	var history struct {
		Items []struct {
			ID       string `json:"id"`
			TaskType string `json:"task_type"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &history))
	require.Len(t, history.Items, 1)
	require.Equal(t, task.TaskID, history.Items[0].ID)
	require.Equal(t, "summarize", history.Items[0].TaskType)
}

func TestTaskUnknownDocument(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	resp := doJSON(t, env.router, http.MethodPost, "/api/v1/ai/tasks", map[string]string{
		"document_id": "doc-e2e-missing",
		"task_type":   "summarize",
	})
	require.Equal(t, errcode.ErrNotFound, resp.Code)
}

func TestTaskEmptyDocument(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	env.seedDocument(t, "doc-e2e-empty", "scan.pdf", "")
	resp := doJSON(t, env.router, http.MethodPost, "/api/v1/ai/tasks", map[string]string{
		"document_id": "doc-e2e-empty",
		"task_type":   "summarize",
	})
	require.Equal(t, errcode.ErrNoContent, resp.Code)
}

func TestTaskInvalidType(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	resp := doJSON(t, env.router, http.MethodPost, "/api/v1/ai/tasks", map[string]string{
		"document_id": "doc-e2e-any",
		"task_type":   "explode",
	})
	require.Equal(t, errcode.ErrInvalid, resp.Code)
}

func TestChatEndToEnd(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	env.seedDocument(t, "doc-e2e-chat", "topic.pdf", "The document is about tides.")
	resp := doJSON(t, env.router, http.MethodPost, "/api/v1/ai/chat", map[string]interface{}{
		"document_id": "doc-e2e-chat",
		"messages": []map[string]interface{}{
			{"role": "user", "content": "what is this about?"},
		},
	})
	require.Zero(t, resp.Code, resp.Msg)
	var chat struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		ModelUsed string `json:"model_used"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &chat))
	require.Equal(t, "assistant", chat.Message.Role)
	require.Equal(t, "stub reply", chat.Message.Content)
	require.Equal(t, "openai:gpt-4o-mini", chat.ModelUsed, "defaults apply when no model is requested")
}

func TestChatSystemOnlyFallback(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	resp := doJSON(t, env.router, http.MethodPost, "/api/v1/ai/chat", map[string]interface{}{
		"messages": []map[string]interface{}{
			{"role": "system", "content": "be nice"},
		},
	})
	require.Zero(t, resp.Code)
	var chat struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &chat))
	require.Equal(t, "No valid messages provided.", chat.Message.Content)
}

func TestChatValidation(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	resp := doJSON(t, env.router, http.MethodPost, "/api/v1/ai/chat", map[string]interface{}{
		"messages": []map[string]interface{}{},
	})
	require.Equal(t, errcode.ErrInvalid, resp.Code)

	resp = doJSON(t, env.router, http.MethodPost, "/api/v1/ai/chat", map[string]interface{}{
		"messages": []map[string]interface{}{
			{"role": "robot", "content": "beep"},
		},
	})
	require.Equal(t, errcode.ErrInvalid, resp.Code)
}

func TestProviders(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	resp := doJSON(t, env.router, http.MethodGet, "/api/v1/ai/providers", nil)
	require.Zero(t, resp.Code)
	var providers []struct {
		Name            string   `json:"name"`
		AvailableModels []string `json:"available_models"`
		Status          string   `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &providers))
	require.Len(t, providers, 3)
	for _, p := range providers {
		require.NotEmpty(t, p.AvailableModels)
		require.Equal(t, "available", p.Status)
	}
}

func TestHealth(t *testing.T) {
	env, cleanup := setupRouter(t)
	defer cleanup()

	resp := doJSON(t, env.router, http.MethodGet, "/api/v1/health", nil)
	require.Zero(t, resp.Code)
	var health struct {
		Status      string              `json:"status"`
		Version     string              `json:"version"`
		AIProviders map[string][]string `json:"ai_providers"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &health))
	require.Equal(t, "healthy", health.Status)
	require.NotEmpty(t, health.Version)
	require.Contains(t, health.AIProviders, "openai")
	require.Contains(t, health.AIProviders, "anthropic")
	require.Contains(t, health.AIProviders, "gemini")
}
