package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/pdflux/internal/ai"
	"github.com/xxxsen/pdflux/internal/model"
	"github.com/xxxsen/pdflux/internal/pkg/errcode"
	"github.com/xxxsen/pdflux/internal/pkg/response"
	"github.com/xxxsen/pdflux/internal/service"
)

const serverVersion = "1.0.0"

const (
	defaultProvider = "openai"
	defaultModel    = "gpt-4o-mini"
)

// AIHandler is the transport shim over the orchestration service. It
// validates the role and task_type enumerations here so the service can
// assume they hold.
type AIHandler struct {
	ai *service.AIService
}

func NewAIHandler(aiService *service.AIService) *AIHandler {
	return &AIHandler{ai: aiService}
}

type chatMessageBody struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

type chatRequest struct {
	DocumentID    string            `json:"document_id"`
	Messages      []chatMessageBody `json:"messages"`
	ModelProvider string            `json:"model_provider"`
	ModelName     string            `json:"model_name"`
}

type chatResponse struct {
	Message        model.ChatMessage `json:"message"`
	ModelUsed      string            `json:"model_used"`
	ProcessingTime float64           `json:"processing_time"`
}

type taskRequest struct {
	DocumentID             string `json:"document_id"`
	TaskType               string `json:"task_type"`
	AdditionalInstructions string `json:"additional_instructions"`
	ModelProvider          string `json:"model_provider"`
	ModelName              string `json:"model_name"`
}

type taskResponse struct {
	TaskID         string  `json:"task_id"`
	TaskType       string  `json:"task_type"`
	Result         string  `json:"result"`
	ProcessingTime float64 `json:"processing_time"`
	DocumentID     string  `json:"document_id"`
}

func isValidRole(role string) bool {
	switch role {
	case model.RoleSystem, model.RoleUser, model.RoleAssistant:
		return true
	}
	return false
}

func (h *AIHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if len(req.Messages) == 0 {
		response.Error(c, errcode.ErrInvalid, "messages are required")
		return
	}
	messages := make([]model.ChatMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if !isValidRole(msg.Role) {
			response.Error(c, errcode.ErrInvalid, "invalid message role")
			return
		}
		if msg.Content == "" {
			response.Error(c, errcode.ErrInvalid, "message content is required")
			return
		}
		ts := msg.Timestamp
		if ts == 0 {
			ts = time.Now().Unix()
		}
		messages = append(messages, model.ChatMessage{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: ts,
		})
	}
	provider, modelName := resolveModel(req.ModelProvider, req.ModelName)
	res, err := h.ai.Chat(c.Request.Context(), messages, req.DocumentID, provider, modelName)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chatResponse{
		Message:        res.Message,
		ModelUsed:      res.ModelUsed,
		ProcessingTime: res.ProcessingTime,
	})
}

func (h *AIHandler) Task(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.DocumentID == "" {
		response.Error(c, errcode.ErrInvalid, "document_id is required")
		return
	}
	if !ai.IsTaskType(req.TaskType) {
		response.Error(c, errcode.ErrInvalid, "invalid task type")
		return
	}
	provider, modelName := resolveModel(req.ModelProvider, req.ModelName)
	res, err := h.ai.RunTask(c.Request.Context(), req.DocumentID, req.TaskType, req.AdditionalInstructions, provider, modelName)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, taskResponse{
		TaskID:         res.TaskID,
		TaskType:       res.TaskType,
		Result:         res.Result,
		ProcessingTime: res.ProcessingTime,
		DocumentID:     res.DocumentID,
	})
}

func (h *AIHandler) Providers(c *gin.Context) {
	response.Success(c, h.ai.ListProviders())
}

func (h *AIHandler) Health(c *gin.Context) {
	providers := map[string][]string{}
	for _, entry := range ai.Catalog() {
		providers[entry.Name] = entry.Models
	}
	response.Success(c, gin.H{
		"status":       "healthy",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"ai_providers": providers,
		"version":      serverVersion,
	})
}

func resolveModel(provider, modelName string) (string, string) {
	if provider == "" {
		provider = defaultProvider
	}
	if modelName == "" {
		modelName = defaultModel
	}
	return provider, modelName
}
