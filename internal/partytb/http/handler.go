// Package http serves party trial balances over HTTP.
package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/partytb/internal/partytb"
	"github.com/odyssey-erp/partytb/internal/partytb/export"
	"github.com/odyssey-erp/partytb/internal/platform/httpx"
	"github.com/odyssey-erp/partytb/jobs"
)

// ReportRunner builds a report for a validated filter.
type ReportRunner interface {
	Run(ctx context.Context, f partytb.Filter) (partytb.Report, error)
}

// PDFRenderer turns a report into a PDF document.
type PDFRenderer interface {
	PDF(ctx context.Context, report partytb.Report, f partytb.Filter) ([]byte, error)
}

// ExportEnqueuer schedules background exports.
type ExportEnqueuer interface {
	EnqueuePartyTBExport(ctx context.Context, payload jobs.PartyTBExportPayload, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// DefaultBuildTimeout bounds a shared report build when Config.BuildTimeout
// is unset.
const DefaultBuildTimeout = 45 * time.Second

// Config collects handler dependencies. PDF and Exports are optional.
type Config struct {
	Logger       *slog.Logger
	Reports      ReportRunner
	PDF          PDFRenderer
	Exports      ExportEnqueuer
	ExportsLimit int
	BuildTimeout time.Duration
}

// Handler wires party trial balance endpoints.
type Handler struct {
	logger    *slog.Logger
	reports   ReportRunner
	pdf       PDFRenderer
	exports   ExportEnqueuer
	rateLimit func(http.Handler) http.Handler
	timeout   time.Duration
}

var errorMap = httpx.ErrorMap{
	{Target: partytb.ErrInvalidFilter, Status: http.StatusBadRequest, Title: "Invalid Filter"},
	{Target: partytb.ErrUnknownPartyType, Status: http.StatusBadRequest, Title: "Invalid Filter"},
	{Target: partytb.ErrCompanyNotFound, Status: http.StatusNotFound, Title: "Company Not Found"},
	{Target: context.DeadlineExceeded, Status: http.StatusGatewayTimeout, Title: "Report Timed Out"},
}

// NewHandler constructs the handler.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Reports == nil {
		return nil, errors.New("partytb handler: report runner required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.BuildTimeout
	if timeout <= 0 {
		timeout = DefaultBuildTimeout
	}
	limit := cfg.ExportsLimit
	if limit <= 0 {
		limit = 10
	}
	limiter := httprate.Limit(limit, time.Minute, httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return "ip:" + r.RemoteAddr, nil
		}
		return "ip:" + host, nil
	}))
	return &Handler{
		logger:    logger,
		reports:   cfg.Reports,
		pdf:       cfg.PDF,
		exports:   cfg.Exports,
		rateLimit: limiter,
		timeout:   timeout,
	}, nil
}

// MountRoutes registers party trial balance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/finance/party-tb", h.handleGetReport)
	r.Group(func(r chi.Router) {
		r.Use(h.rateLimit)
		r.Get("/finance/party-tb/export.csv", h.handleExportCSV)
		r.Get("/finance/party-tb/pdf", h.handleExportPDF)
		r.Post("/finance/party-tb/export-jobs", h.handleEnqueueExport)
	})
}

func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	f, ok := h.parseQuery(w, r)
	if !ok {
		return
	}
	report, ok := h.build(w, r, f)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	f, ok := h.parseQuery(w, r)
	if !ok {
		return
	}
	report, ok := h.build(w, r, f)
	if !ok {
		return
	}
	buf := &bytes.Buffer{}
	if _, err := export.WriteCSV(buf, report, export.Metadata{Filter: f}); err != nil {
		h.logger.Error("write party tb csv", slog.Any("error", err))
		errorMap.Respond(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", downloadName(f, "csv")))
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "PDF Unavailable", "pdf rendering is not configured")
		return
	}
	f, ok := h.parseQuery(w, r)
	if !ok {
		return
	}
	report, ok := h.build(w, r, f)
	if !ok {
		return
	}
	pdf, err := h.pdf.PDF(r.Context(), report, f)
	if err != nil {
		h.logger.Error("generate party tb pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "PDF Rendering Failed", "")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", downloadName(f, "pdf")))
	_, _ = w.Write(pdf)
}

type enqueueResponse struct {
	TaskID string `json:"task_id"`
	Queue  string `json:"queue"`
}

func (h *Handler) handleEnqueueExport(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Exports Unavailable", "background exports are not configured")
		return
	}
	var in filterInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Request", err.Error())
		return
	}
	f, errs := in.filter()
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}
	var opts []asynq.Option
	if key := strings.TrimSpace(r.Header.Get("Idempotency-Key")); key != "" {
		opts = append(opts, jobs.IdempotentExport(key))
	}
	info, err := h.exports.EnqueuePartyTBExport(r.Context(), jobs.PayloadFromFilter(f), opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		httpx.Problem(w, http.StatusConflict, "Duplicate Export", "an export with this idempotency key is already queued")
		return
	}
	if err != nil {
		h.logger.Error("enqueue party tb export", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", "")
		return
	}
	httpx.JSON(w, http.StatusAccepted, enqueueResponse{TaskID: info.ID, Queue: info.Queue})
}

func (h *Handler) parseQuery(w http.ResponseWriter, r *http.Request) (partytb.Filter, bool) {
	f, errs := inputFromQuery(r.URL.Query().Get).filter()
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return partytb.Filter{}, false
	}
	return f, true
}

// build runs the report, sharing the result with identical concurrent
// requests.
func (h *Handler) build(w http.ResponseWriter, r *http.Request, f partytb.Filter) (partytb.Report, bool) {
	val, err, shared := coalesce(r.Context(), f.Key(), h.timeout, func(ctx context.Context) (any, error) {
		return h.reports.Run(ctx, f)
	})
	if err != nil {
		h.logger.Warn("party tb request failed", slog.String("key", f.Key()), slog.Any("error", err))
		errorMap.Respond(w, err)
		return partytb.Report{}, false
	}
	if shared {
		h.logger.Debug("party tb result shared", slog.String("key", f.Key()))
	}
	return val.(partytb.Report), true
}

func writeFieldErrors(w http.ResponseWriter, errs map[string]string) {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = errs[k]
	}
	httpx.WriteProblem(w, httpx.ProblemDetail{
		Title:  "Invalid Filter",
		Status: http.StatusBadRequest,
		Detail: strings.Join(msgs, "; "),
		Fields: errs,
	})
}

func downloadName(f partytb.Filter, ext string) string {
	return fmt.Sprintf("party_trial_balance_%s_%s_%s.%s",
		strings.ToLower(string(f.PartyType)),
		f.FromDate.Format("20060102"),
		f.ToDate.Format("20060102"),
		ext)
}
