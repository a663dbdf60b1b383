// Package chat shapes search results into chat replies.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matsearch/internal/domain"
	"github.com/kailas-cloud/matsearch/internal/logger"
)

// Request is one user message.
type Request struct {
	Message        string
	ConversationID string
}

// Action asks the client to do something with the results.
type Action struct {
	Type    Intent
	Items   []string
	Message string
}

// Response is the reply to one message.
type Response struct {
	Response       string
	ConversationID string
	Table          Table
	Action         *Action
	Intent         Intent
}

// Service answers chat messages.
type Service struct {
	search Searcher
	logger *zap.Logger
}

// New creates a chat service.
func New(search Searcher, logger *zap.Logger) *Service {
	return &Service{search: search, logger: logger}
}

// Reply runs the pipeline for a message. Only a blank message fails.
func (s *Service) Reply(ctx context.Context, req Request) (Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Response{}, fmt.Errorf("message is required: %w", domain.ErrInvalidRequest)
	}

	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	intent := DetectIntent(message)
	res := s.search.RunSearch(ctx, message)

	resp := Response{
		Response:       res.Narrative,
		ConversationID: conversationID,
		Table:          NewTable(res.Records, res.Description),
		Intent:         intent,
	}
	if intent == IntentCreateRequisition {
		resp.Action = requisition(res.Records)
	}

	logger.FromContextOr(ctx, s.logger).Info("Chat message answered",
		zap.String("conversation_id", conversationID),
		zap.String("intent", string(intent)),
		zap.Int("records", len(res.Records)),
		zap.String("source", string(res.Source)),
	)
	return resp, nil
}
