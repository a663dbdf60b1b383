package interpret

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matsearch/internal/domain"
)

// mockCompleter implements domain.Completer for tests.
type mockCompleter struct {
	completeFn func(ctx context.Context, req domain.CompletionRequest) (string, error)
	requests   []domain.CompletionRequest
}

func (m *mockCompleter) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	m.requests = append(m.requests, req)
	if m.completeFn != nil {
		return m.completeFn(ctx, req)
	}
	return "", nil
}

func newTestService(t *testing.T, reply string, err error) (*Service, *mockCompleter) {
	t.Helper()
	mc := &mockCompleter{completeFn: func(context.Context, domain.CompletionRequest) (string, error) {
		return reply, err
	}}
	return New(mc, 0, zap.NewNop()), mc
}
