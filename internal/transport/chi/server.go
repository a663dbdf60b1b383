// Package chi exposes the chat and admin HTTP API on a chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matsearch/internal/domain"
	"github.com/kailas-cloud/matsearch/internal/logger"
	chatuc "github.com/kailas-cloud/matsearch/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/matsearch/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/matsearch/internal/usecase/ingest"
)

const (
	maxBodyBytes = 1 << 20
	maxTopK      = 100
	maxBatchSize = 1000
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Services are the use cases behind the API. Nil services leave their routes unregistered.
type Services struct {
	Chat      ChatService
	Materials MaterialService
	Ingest    IngestService
	Semantic  SemanticService
	Health    HealthService
}

// Server serves the HTTP API.
type Server struct {
	svc           Services
	apiKeys       []string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. apiKeys guard the admin routes; empty disables auth.
func NewServer(svc Services, apiKeys []string, logger *zap.Logger) *Server {
	s := &Server{svc: svc, apiKeys: apiKeys, logger: logger}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeProviderError),
		sentinelHandler(domain.ErrCompletionProviderError, http.StatusBadGateway, ErrorCodeProviderError),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, ErrorCodeIndexUnavailable),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, ErrorCodeBadRequest),
	}
	return s
}

// Register mounts every route on r.
func (s *Server) Register(r chirouter.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chirouter.Router) {
		r.Route("/chat", func(r chirouter.Router) {
			r.Get("/health", s.ChatHealth)
			if s.svc.Chat != nil {
				r.Post("/message", s.ChatMessage)
			}
		})

		if s.svc.Materials != nil {
			r.Route("/materials", func(r chirouter.Router) {
				r.Get("/categories", s.Categories)
				r.Get("/{itemCode}/history", s.History)
			})
		}

		if s.svc.Ingest == nil && s.svc.Semantic == nil {
			return
		}
		r.Route("/admin/embedding", func(r chirouter.Router) {
			r.Use(BearerAuthMiddleware(s.apiKeys))
			if s.svc.Ingest != nil {
				r.Post("/generate-vectors", s.GenerateVectors)
			}
			if s.svc.Semantic != nil {
				r.Get("/search", s.SemanticSearch)
			}
		})
	})
}

// ChatMessage handles POST /api/v1/chat/message.
func (s *Server) ChatMessage(w http.ResponseWriter, r *http.Request) {
	var req ChatMessageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := s.svc.Chat.Reply(r.Context(), chatuc.Request{
		Message:        req.Message,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponseToDTO(&resp))
}

// ChatHealth handles GET /api/v1/chat/health.
func (s *Server) ChatHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ServiceStatusResponse{Status: "ok", Service: "chat"})
}

// History handles GET /api/v1/materials/{itemCode}/history.
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Materials.History(r.Context(), chirouter.URLParam(r, "itemCode"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyToDTO(&stats))
}

// Categories handles GET /api/v1/materials/categories.
func (s *Server) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Materials.Categories(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: cats})
}

// GenerateVectors handles POST /api/v1/admin/embedding/generate-vectors.
func (s *Server) GenerateVectors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	batchSize, err := intParam(q.Get("batchSize"), 0, maxBatchSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "batchSize: "+err.Error())
		return
	}
	force, _ := strconv.ParseBool(q.Get("force"))

	summary, err := s.svc.Ingest.Run(r.Context(), ingestuc.Options{PageSize: batchSize, Force: force})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, GenerateVectorsResponse{
		TotalProcessed: summary.TotalProcessed,
		TotalStored:    summary.TotalStored,
		TotalSkipped:   summary.TotalSkipped,
	})
}

// SemanticSearch handles GET /api/v1/admin/embedding/search.
func (s *Server) SemanticSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "query is required")
		return
	}
	topK, err := intParam(q.Get("topK"), s.svc.Semantic.TopK(), maxTopK)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "topK: "+err.Error())
		return
	}

	hits := s.svc.Semantic.SearchSimilar(r.Context(), query, topK)
	writeJSON(w, http.StatusOK, SemanticSearchResponse{
		Query:   query,
		TopK:    topK,
		Results: semanticHitsToDTO(hits),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if s.svc.Health == nil {
		writeJSON(w, http.StatusOK, HealthResponse{Status: string(healthuc.Healthy), Checks: map[string]string{}})
		return
	}
	report := s.svc.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

// intParam parses an optional positive integer query value; empty yields def.
func intParam(raw string, def, limit int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("must be an integer")
	}
	if n <= 0 || n > limit {
		return 0, errors.New("must be between 1 and " + strconv.Itoa(limit))
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// Invalid requests keep their full message since it only describes caller input.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
		domain.ErrCompletionProviderError,
		domain.ErrIndexUnavailable,
		domain.ErrVectorDimMismatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logger.FromContextOr(r.Context(), s.logger).Error("Unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, msg)
}
