package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	dombatch "github.com/kailas-cloud/matsearch/internal/domain/batch"
	"github.com/kailas-cloud/matsearch/internal/domain/material"
	"github.com/kailas-cloud/matsearch/internal/metrics"
	chatuc "github.com/kailas-cloud/matsearch/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/matsearch/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/matsearch/internal/usecase/ingest"
	semanticuc "github.com/kailas-cloud/matsearch/internal/usecase/semantic"
)

func TestMain(m *testing.M) {
	metrics.RegisterHTTPMetrics()
	os.Exit(m.Run())
}

type mockChat struct {
	replyFn func(ctx context.Context, req chatuc.Request) (chatuc.Response, error)
}

func (m *mockChat) Reply(ctx context.Context, req chatuc.Request) (chatuc.Response, error) {
	return m.replyFn(ctx, req)
}

type mockMaterials struct {
	historyFn    func(ctx context.Context, itemCode string) (material.HistoryStats, error)
	categoriesFn func(ctx context.Context) ([]string, error)
}

func (m *mockMaterials) History(ctx context.Context, itemCode string) (material.HistoryStats, error) {
	return m.historyFn(ctx, itemCode)
}

func (m *mockMaterials) Categories(ctx context.Context) ([]string, error) {
	return m.categoriesFn(ctx)
}

type mockIngest struct {
	runFn func(ctx context.Context, opts ingestuc.Options) (dombatch.Summary, error)
}

func (m *mockIngest) Run(ctx context.Context, opts ingestuc.Options) (dombatch.Summary, error) {
	return m.runFn(ctx, opts)
}

type mockSemantic struct {
	topK     int
	searchFn func(ctx context.Context, text string, topK int) []semanticuc.Hit
}

func (m *mockSemantic) SearchSimilar(ctx context.Context, text string, topK int) []semanticuc.Hit {
	return m.searchFn(ctx, text, topK)
}

func (m *mockSemantic) TopK() int { return m.topK }

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

func newTestRouter(svc Services, apiKeys ...string) http.Handler {
	r := chirouter.NewRouter()
	NewServer(svc, apiKeys, zap.NewNop()).Register(r)
	return r
}

func do(h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
