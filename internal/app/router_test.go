package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/partytb/internal/observability"
	"github.com/odyssey-erp/partytb/internal/partytb"
	partytbhttp "github.com/odyssey-erp/partytb/internal/partytb/http"
)

type emptyRunner struct{}

func (emptyRunner) Run(ctx context.Context, f partytb.Filter) (partytb.Report, error) {
	return partytb.Report{Columns: partytb.Columns(f.PartyType, false)}, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler, err := partytbhttp.NewHandler(partytbhttp.Config{Logger: logger, Reports: emptyRunner{}})
	require.NoError(t, err)
	return NewRouter(RouterParams{
		Logger:         logger,
		Config:         &Config{AppEnv: "production", RateLimitPerMin: 100},
		PartyTBHandler: handler,
		Metrics:        observability.NewMetrics(),
	})
}

func httpsRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	return req
}

func TestRouterHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httpsRequest("/healthz"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRouterMountsPartyTrialBalance(t *testing.T) {
	router := testRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httpsRequest("/finance/party-tb?company=A&party_type=Customer&from_date=2025-01-01&to_date=2025-01-31"))
	require.Equal(t, http.StatusOK, rec.Code)

	metrics := httptest.NewRecorder()
	router.ServeHTTP(metrics, httpsRequest("/metrics"))
	require.Equal(t, http.StatusOK, metrics.Code)
	require.Contains(t, metrics.Body.String(), "partytb_http_requests_total")
}
