package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/pdflux/internal/ai"
	"github.com/xxxsen/pdflux/internal/model"
	appErr "github.com/xxxsen/pdflux/internal/pkg/errors"
)

// noValidMessagesReply is returned verbatim when a chat request carries no
// non-system message. It is a normal reply, not an error, and no history
// record is written for it.
const noValidMessagesReply = "No valid messages provided."

const providerStatusAvailable = "available"

type documentGetter interface {
	GetByID(ctx context.Context, docID string) (*model.Document, error)
}

type interactionWriter interface {
	Create(ctx context.Context, rec *model.Interaction) error
}

// AIService orchestrates one AI call end to end: fetch document context,
// build the instruction, dispatch, record the interaction, return the typed
// result. Calls are independent; the service holds no mutable state.
type AIService struct {
	dispatcher ai.Dispatcher
	documents  documentGetter
	history    interactionWriter
}

func NewAIService(dispatcher ai.Dispatcher, documents documentGetter, history interactionWriter) *AIService {
	return &AIService{
		dispatcher: dispatcher,
		documents:  documents,
		history:    history,
	}
}

type ChatResult struct {
	Message        model.ChatMessage
	ModelUsed      string
	ProcessingTime float64
}

type TaskResult struct {
	TaskID         string
	TaskType       string
	Result         string
	DocumentID     string
	ProcessingTime float64
}

func (s *AIService) ListProviders() []model.ProviderInfo {
	entries := ai.Catalog()
	out := make([]model.ProviderInfo, 0, len(entries))
	for _, entry := range entries {
		out = append(out, model.ProviderInfo{
			Name:            entry.Name,
			AvailableModels: entry.Models,
			Status:          providerStatusAvailable,
		})
	}
	return out
}

// Chat answers the last user-visible message of the supplied conversation.
// An unknown document id degrades to "no document context" instead of
// failing; this leniency is intentional and differs from RunTask. Only the
// last non-system message is forwarded to the provider; earlier turns are
// stored in history but not replayed.
func (s *AIService) Chat(ctx context.Context, messages []model.ChatMessage, documentID, provider, modelName string) (*ChatResult, error) {
	start := time.Now()
	modelUsed := modelUsed(provider, modelName)
	logger := logutil.GetLogger(ctx).With(
		zap.String("document_id", documentID),
		zap.String("model_used", modelUsed),
	)

	documentText := ""
	if documentID != "" {
		doc, err := s.documents.GetByID(ctx, documentID)
		switch {
		case err == nil:
			documentText = doc.TextContent
		case appErr.IsNotFound(err):
			logger.Debug("chat document not found, continuing without context")
		default:
			return nil, err
		}
	}

	filtered := make([]model.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role != model.RoleSystem {
			filtered = append(filtered, msg)
		}
	}
	if len(filtered) == 0 {
		return &ChatResult{
			Message: model.ChatMessage{
				Role:      model.RoleAssistant,
				Content:   noValidMessagesReply,
				Timestamp: time.Now().Unix(),
			},
			ModelUsed:      modelUsed,
			ProcessingTime: time.Since(start).Seconds(),
		}, nil
	}

	instruction := ai.BuildChatInstruction(documentText)
	userText := filtered[len(filtered)-1].Content
	reply, err := s.dispatcher.Send(ctx, provider, modelName, instruction, userText)
	if err != nil {
		logger.Error("chat dispatch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", appErr.ErrProvider, err)
	}
	elapsed := time.Since(start).Seconds()

	assistant := model.ChatMessage{
		Role:      model.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now().Unix(),
	}
	recorded := make([]model.ChatMessage, 0, len(messages)+1)
	recorded = append(recorded, messages...)
	recorded = append(recorded, assistant)
	record := &model.Interaction{
		ID:             newID(),
		DocumentID:     documentID,
		Kind:           model.InteractionKindChat,
		Messages:       recorded,
		ModelUsed:      modelUsed,
		ProcessingTime: elapsed,
		Timestamp:      time.Now().Unix(),
	}
	if err := s.history.Create(ctx, record); err != nil {
		logger.Error("record chat interaction failed", zap.Error(err))
		return nil, err
	}
	logger.Info("chat finished", zap.Float64("processing_time", elapsed))
	return &ChatResult{
		Message:        assistant,
		ModelUsed:      modelUsed,
		ProcessingTime: elapsed,
	}, nil
}

// RunTask executes one fixed-purpose task against a stored document. The
// document must exist and carry extracted text; both checks fail before any
// provider call is made.
func (s *AIService) RunTask(ctx context.Context, documentID, taskType, additionalInstructions, provider, modelName string) (*TaskResult, error) {
	start := time.Now()
	modelUsed := modelUsed(provider, modelName)
	logger := logutil.GetLogger(ctx).With(
		zap.String("document_id", documentID),
		zap.String("task_type", taskType),
		zap.String("model_used", modelUsed),
	)

	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.TextContent == "" {
		return nil, appErr.ErrNoContent
	}

	instruction := ai.BuildTaskInstruction(taskType, doc.TextContent, additionalInstructions)
	result, err := s.dispatcher.Send(ctx, provider, modelName, ai.TaskSystemMessage(), instruction)
	if err != nil {
		logger.Error("task dispatch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", appErr.ErrProvider, err)
	}
	elapsed := time.Since(start).Seconds()

	taskID := newID()
	record := &model.Interaction{
		ID:             taskID,
		DocumentID:     documentID,
		Kind:           model.InteractionKindTask,
		TaskType:       taskType,
		Result:         result,
		Instructions:   additionalInstructions,
		ModelUsed:      modelUsed,
		ProcessingTime: elapsed,
		Timestamp:      time.Now().Unix(),
	}
	if err := s.history.Create(ctx, record); err != nil {
		logger.Error("record task interaction failed", zap.Error(err))
		return nil, err
	}
	logger.Info("task finished", zap.Float64("processing_time", elapsed))
	return &TaskResult{
		TaskID:         taskID,
		TaskType:       taskType,
		Result:         result,
		DocumentID:     documentID,
		ProcessingTime: elapsed,
	}, nil
}

func modelUsed(provider, modelName string) string {
	return provider + ":" + modelName
}
