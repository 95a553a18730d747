package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/odyssey-erp/partytb/internal/jobs"
	"github.com/odyssey-erp/partytb/internal/partytb"
	_ "github.com/odyssey-erp/partytb/testing"
)

type stubRunner struct {
	filters []partytb.Filter
	err     error
}

func (s *stubRunner) Run(_ context.Context, f partytb.Filter) (partytb.Report, error) {
	s.filters = append(s.filters, f)
	if s.err != nil {
		return partytb.Report{}, s.err
	}
	rows := partytb.BuildRows(partytb.RowInput{
		Parties:  []partytb.Party{{Name: "C1"}, {Name: "C2"}},
		Period:   partytb.Balances{"C1": {Debit: decimal.NewFromInt(10), Credit: decimal.Zero}, "C2": {Debit: decimal.Zero, Credit: decimal.NewFromInt(4)}},
		Currency: "USD",
	})
	return partytb.Report{Columns: partytb.Columns(f.PartyType, false), Rows: rows}, nil
}

func newTestJob(t *testing.T, runner ReportRunner) (*PartyTBExportJob, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "exports")
	job := NewPartyTBExportJob(runner, dir, slog.New(slog.NewTextHandler(io.Discard, nil)), jobmetrics.NewMetrics(prometheus.NewRegistry()))
	job.clock = func() time.Time { return time.Date(2025, 5, 14, 3, 0, 0, 0, time.UTC) }
	return job, dir
}

func task(t *testing.T, payload PartyTBExportPayload) *asynq.Task {
	t.Helper()
	tk, err := NewPartyTBExportTask(payload)
	require.NoError(t, err)
	return tk
}

func TestExportJobWritesCSV(t *testing.T) {
	runner := &stubRunner{}
	job, dir := newTestJob(t, runner)

	err := job.Handle(context.Background(), task(t, PartyTBExportPayload{
		Company:   "Odyssey Trading",
		PartyType: "customer",
		FromDate:  "2025-04-01",
		ToDate:    "2025-04-30",
	}))
	require.NoError(t, err)
	require.Len(t, runner.filters, 1)
	require.Equal(t, partytb.PartyCustomer, runner.filters[0].PartyType)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	name := entries[0].Name()
	require.True(t, strings.HasPrefix(name, "partytb_odyssey-trading_customer_20250401_20250430_"), name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	require.Contains(t, string(data), "C1,0.00,0.00,10.00,0.00,10.00,0.00")
	require.Contains(t, string(data), "Totals,")
}

func TestExportJobPreviousMonthScope(t *testing.T) {
	runner := &stubRunner{}
	job, _ := newTestJob(t, runner)

	require.NoError(t, job.Handle(context.Background(), task(t, PartyTBExportPayload{Company: "ACME", PartyType: "Supplier"})))
	f := runner.filters[0]
	require.Equal(t, "2025-04-01", f.FromDate.Format(partytb.DateLayout))
	require.Equal(t, "2025-04-30", f.ToDate.Format(partytb.DateLayout))
}

func TestExportJobSkipsRetryOnInvalidPayload(t *testing.T) {
	runner := &stubRunner{}
	job, _ := newTestJob(t, runner)

	err := job.Handle(context.Background(), asynq.NewTask(TaskPartyTBExport, []byte("{")))
	require.True(t, errors.Is(err, asynq.SkipRetry))

	err = job.Handle(context.Background(), task(t, PartyTBExportPayload{Company: "ACME", PartyType: "Vendor"}))
	require.True(t, errors.Is(err, asynq.SkipRetry))

	err = job.Handle(context.Background(), task(t, PartyTBExportPayload{PartyType: "Customer", FromDate: "2025-04-30", ToDate: "2025-04-01"}))
	require.True(t, errors.Is(err, asynq.SkipRetry))
	require.True(t, errors.Is(err, partytb.ErrInvalidFilter))
	require.Empty(t, runner.filters)
}

func TestExportJobRetriesReportFailures(t *testing.T) {
	boom := errors.New("ledger offline")
	job, dir := newTestJob(t, &stubRunner{err: boom})

	err := job.Handle(context.Background(), task(t, PartyTBExportPayload{Company: "ACME", PartyType: "Customer"}))
	require.ErrorIs(t, err, boom)
	require.False(t, errors.Is(err, asynq.SkipRetry))
	_, statErr := os.Stat(dir)
	require.True(t, os.IsNotExist(statErr))
}

func TestPayloadRoundTripsFilter(t *testing.T) {
	f := partytb.Filter{
		Company:     "ACME",
		PartyType:   partytb.PartyEmployee,
		FromDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ToDate:      time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Account:     "Advances",
		SalesPerson: "Ravi",
	}
	raw, err := json.Marshal(PayloadFromFilter(f))
	require.NoError(t, err)
	var payload PartyTBExportPayload
	require.NoError(t, json.Unmarshal(raw, &payload))
	back, err := payload.Filter(time.Now())
	require.NoError(t, err)
	require.Equal(t, f, back)
}

func TestExportFileName(t *testing.T) {
	f := partytb.Filter{
		Company:   "  PT. Maju & Jaya ",
		PartyType: partytb.PartyShareholder,
		FromDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ToDate:    time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	id := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
	require.Equal(t, "partytb_pt-maju-jaya_shareholder_20250101_20251231_0f8fad5b.csv", ExportFileName(f, id))
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func TestJobsHealth(t *testing.T) {
	router := chi.NewRouter()
	NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3, Retry: 1}}, nil).MountRoutes(router)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"queue":"default","pending":3,"active":0,"scheduled":0,"retry":1}`, rr.Body.String())

	router = chi.NewRouter()
	NewHandler(stubInspector{err: errors.New("redis down")}, slog.New(slog.NewTextHandler(io.Discard, nil))).MountRoutes(router)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
