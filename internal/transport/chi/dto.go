package chi

import (
	"time"

	"github.com/kailas-cloud/matsearch/internal/domain/material"
	chatuc "github.com/kailas-cloud/matsearch/internal/usecase/chat"
	semanticuc "github.com/kailas-cloud/matsearch/internal/usecase/semantic"
)

// ErrorCode is the machine-readable error kind in error responses.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeRateLimited      ErrorCode = "rate_limited"
	ErrorCodeProviderError    ErrorCode = "provider_error"
	ErrorCodeIndexUnavailable ErrorCode = "index_unavailable"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ChatMessageRequest is the body of POST /api/v1/chat/message.
type ChatMessageRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

// TableData is a rendered result table.
type TableData struct {
	Title       string              `json:"title"`
	Headers     []string            `json:"headers"`
	Rows        []map[string]string `json:"rows"`
	Description string              `json:"description"`
}

// ActionData asks the client to perform an action on the results.
type ActionData struct {
	Type    string   `json:"type"`
	Items   []string `json:"items"`
	Message string   `json:"message,omitempty"`
}

// ChatMessageResponse is the reply to a chat message.
type ChatMessageResponse struct {
	Response       string      `json:"response"`
	ConversationID string      `json:"conversationId"`
	TableData      TableData   `json:"tableData"`
	ActionData     *ActionData `json:"actionData,omitempty"`
}

// HistoryResponse is the transaction history of one item code.
type HistoryResponse struct {
	ItemCode         string              `json:"itemCode"`
	ItemName         string              `json:"itemName"`
	Count            int                 `json:"count"`
	MinPrice         *float64            `json:"minPrice"`
	MaxPrice         *float64            `json:"maxPrice"`
	AvgPrice         *float64            `json:"avgPrice"`
	FirstTransaction *string             `json:"firstTransaction"`
	LastTransaction  *string             `json:"lastTransaction"`
	History          []map[string]string `json:"history"`
}

// CategoriesResponse lists catalog categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// GenerateVectorsResponse summarizes an ingest run.
type GenerateVectorsResponse struct {
	TotalProcessed int `json:"totalProcessed"`
	TotalStored    int `json:"totalStored"`
	TotalSkipped   int `json:"totalSkipped"`
}

// SemanticHit is one nearest neighbor.
type SemanticHit struct {
	ID       uint64  `json:"id"`
	Score    float64 `json:"score"`
	UID      string  `json:"uid"`
	ItemCode string  `json:"itemCode"`
	ItemName string  `json:"itemName"`
}

// SemanticSearchResponse is the body of the admin semantic search.
type SemanticSearchResponse struct {
	Query   string        `json:"query"`
	TopK    int           `json:"topK"`
	Results []SemanticHit `json:"results"`
}

// ServiceStatusResponse is the body of the chat liveness probe.
type ServiceStatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// HealthResponse is the aggregated component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func chatResponseToDTO(resp *chatuc.Response) ChatMessageResponse {
	out := ChatMessageResponse{
		Response:       resp.Response,
		ConversationID: resp.ConversationID,
		TableData: TableData{
			Title:       resp.Table.Title,
			Headers:     resp.Table.Headers,
			Rows:        resp.Table.Rows,
			Description: resp.Table.Description,
		},
	}
	if a := resp.Action; a != nil {
		items := a.Items
		if items == nil {
			items = []string{}
		}
		out.ActionData = &ActionData{Type: string(a.Type), Items: items, Message: a.Message}
	}
	return out
}

func historyToDTO(stats *material.HistoryStats) HistoryResponse {
	return HistoryResponse{
		ItemCode:         stats.ItemCode,
		ItemName:         stats.ItemName,
		Count:            stats.Count,
		MinPrice:         stats.MinPrice,
		MaxPrice:         stats.MaxPrice,
		AvgPrice:         stats.AvgPrice,
		FirstTransaction: dateString(stats.FirstTransaction),
		LastTransaction:  dateString(stats.LastTransaction),
		History:          chatuc.NewTable(stats.History, "").Rows,
	}
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

func semanticHitsToDTO(hits []semanticuc.Hit) []SemanticHit {
	out := make([]SemanticHit, len(hits))
	for i, h := range hits {
		out[i] = SemanticHit{
			ID:       h.ID,
			Score:    h.Score,
			UID:      h.Product.UID,
			ItemCode: h.Product.ItemCode,
			ItemName: h.Product.ItemName,
		}
	}
	return out
}
