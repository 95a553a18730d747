package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/partytb/internal/jobs"
	"github.com/odyssey-erp/partytb/internal/partytb"
	"github.com/odyssey-erp/partytb/internal/partytb/export"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReportRunner builds a report for a validated filter.
type ReportRunner interface {
	Run(ctx context.Context, f partytb.Filter) (partytb.Report, error)
}

// PartyTBExportJob writes party trial balance CSV files.
type PartyTBExportJob struct {
	Reports ReportRunner
	Dir     string
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewPartyTBExportJob wires dependencies for the export handler.
func NewPartyTBExportJob(reports ReportRunner, dir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *PartyTBExportJob {
	return &PartyTBExportJob{
		Reports: reports,
		Dir:     dir,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskPartyTBExport tasks. Malformed or invalid payloads are
// not retried.
func (j *PartyTBExportJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Reports == nil {
		return errors.New("partytb export: handler not configured")
	}
	tracker := j.metrics().Track(TaskPartyTBExport)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	var payload PartyTBExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("partytb export: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	filter, err := payload.Filter(j.now())
	if err == nil {
		err = partytb.ValidateFilter(filter)
	}
	if err != nil {
		return fmt.Errorf("partytb export: %w: %w", err, asynq.SkipRetry)
	}

	logger := j.logger().With(
		slog.String("company", filter.Company),
		slog.String("party_type", string(filter.PartyType)),
		slog.String("from_date", filter.FromDate.Format(partytb.DateLayout)),
		slog.String("to_date", filter.ToDate.Format(partytb.DateLayout)),
	)
	logger.Info("starting party trial balance export")

	report, err := j.Reports.Run(ctx, filter)
	if err != nil {
		logger.Error("build report", slog.Any("error", err))
		return err
	}
	path, rows, err := j.write(report, filter)
	if err != nil {
		logger.Error("write export", slog.Any("error", err))
		return err
	}
	j.metrics().AddExportedRows("csv", rows)
	logger.Info("completed party trial balance export", slog.String("path", path), slog.Int("rows", rows))
	return nil
}

// write stores the CSV atomically: a temp file in the same directory is
// renamed once complete.
func (j *PartyTBExportJob) write(report partytb.Report, f partytb.Filter) (string, int, error) {
	if err := os.MkdirAll(j.Dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("partytb export: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(j.Dir, ".partytb-*.csv.tmp")
	if err != nil {
		return "", 0, fmt.Errorf("partytb export: create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	rows, err := export.WriteCSV(tmp, report, export.Metadata{Filter: f})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", 0, fmt.Errorf("partytb export: write csv: %w", err)
	}
	path := filepath.Join(j.Dir, ExportFileName(f, uuid.New()))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", 0, fmt.Errorf("partytb export: finalise file: %w", err)
	}
	return path, rows, nil
}

// ExportFileName returns a unique, filesystem-safe name for an export.
func ExportFileName(f partytb.Filter, id uuid.UUID) string {
	return fmt.Sprintf("partytb_%s_%s_%s_%s_%s.csv",
		slug(f.Company),
		strings.ToLower(string(f.PartyType)),
		f.FromDate.Format("20060102"),
		f.ToDate.Format("20060102"),
		id.String()[:8],
	)
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (j *PartyTBExportJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskPartyTBExport))
	}
	return slog.Default().With(slog.String("job", TaskPartyTBExport))
}

func (j *PartyTBExportJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *PartyTBExportJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
