package partytb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RunObserver records report executions.
type RunObserver interface {
	ObserveReportRun(partyType, status string, rows int, elapsed time.Duration)
}

// ServiceConfig collects the collaborators of a Service.
type ServiceConfig struct {
	Ledger    LedgerSource
	Directory PartyDirectory
	Companies CompanyLookup
	Naming    NamingLookup
	Logger    *slog.Logger
	Metrics   RunObserver
}

// Service builds party trial balances.
type Service struct {
	directory  PartyDirectory
	companies  CompanyLookup
	naming     NamingLookup
	resolver   *Resolver
	aggregator *Aggregator
	logger     *slog.Logger
	metrics    RunObserver
}

// NewService wires the report pipeline.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		directory:  cfg.Directory,
		companies:  cfg.Companies,
		naming:     cfg.Naming,
		resolver:   NewResolver(cfg.Directory),
		aggregator: NewAggregator(cfg.Ledger),
		logger:     logger,
		metrics:    cfg.Metrics,
	}
}

// Run executes the report for a validated filter. Any failure aborts the
// run; a partial report is never returned.
func (s *Service) Run(ctx context.Context, f Filter) (Report, error) {
	start := time.Now()
	logger := s.logger.With(
		slog.String("run_id", uuid.NewString()),
		slog.String("company", f.Company),
		slog.String("party_type", string(f.PartyType)),
	)

	report, err := s.build(ctx, f)
	elapsed := time.Since(start)
	if err != nil {
		s.observe(f, "failure", 0, elapsed)
		logger.Error("party trial balance failed", slog.Any("error", err))
		return Report{}, err
	}
	s.observe(f, "success", len(report.Rows), elapsed)
	logger.Info("party trial balance built", slog.Int("rows", len(report.Rows)), slog.Duration("duration", elapsed))
	return report, nil
}

func (s *Service) build(ctx context.Context, f Filter) (Report, error) {
	showName, err := PartyNameVisible(ctx, s.naming, f.PartyType)
	if err != nil {
		return Report{}, err
	}
	report := Report{Columns: Columns(f.PartyType, showName), Rows: []Row{}}

	allowed, err := s.resolver.Resolve(ctx, f)
	if err != nil {
		return Report{}, err
	}
	if allowed.Empty() {
		return report, nil
	}

	parties, err := s.directory.ListParties(ctx, f.PartyType, PartyListWhere(f, allowed))
	if err != nil {
		return Report{}, fmt.Errorf("partytb: list parties: %w", err)
	}
	currency, err := s.companies.DefaultCurrency(ctx, f.Company)
	if err != nil {
		return Report{}, fmt.Errorf("partytb: company currency: %w", err)
	}
	opening, period, err := s.aggregator.Aggregate(ctx, f, allowed)
	if err != nil {
		return Report{}, err
	}

	report.Rows = BuildRows(RowInput{
		Parties:        parties,
		ShowPartyName:  showName,
		Opening:        opening,
		Period:         period,
		Currency:       currency,
		ShowZeroValues: f.ShowZeroValues,
	})
	return report, nil
}

func (s *Service) observe(f Filter, status string, rows int, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveReportRun(string(f.PartyType), status, rows, elapsed)
}
