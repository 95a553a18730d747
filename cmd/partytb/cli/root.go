// Package cli implements the partytb command line tool.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/partytb/internal/partytb"
	"github.com/odyssey-erp/partytb/internal/platform/db"
	"github.com/odyssey-erp/partytb/internal/store"
	"github.com/odyssey-erp/partytb/internal/store/postgres"
	"github.com/odyssey-erp/partytb/internal/store/sqlite"
)

// backend is a store that can serve reports and accept fixtures.
type backend interface {
	partytb.LedgerSource
	partytb.PartyDirectory
	partytb.CompanyLookup
	partytb.NamingLookup
	Load(ctx context.Context, fx store.Fixture) error
}

type globalFlags struct {
	db        string
	pgDSN     string
	redisAddr string
}

// open connects to Postgres when a DSN is given, otherwise to the SQLite
// file.
func (g *globalFlags) open(ctx context.Context) (backend, func(), error) {
	if g.pgDSN != "" {
		pool, err := db.New(ctx, g.pgDSN)
		if err != nil {
			return nil, nil, err
		}
		s := postgres.New(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return s, pool.Close, nil
	}
	s, err := sqlite.Open(g.db)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}

// NewRootCommand builds the command tree writing to the given streams.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "partytb",
		Short:         "Party trial balance reports",
		Long:          "Builds party trial balances (opening, period and closing balances per customer, supplier or other party) from the general ledger.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&g.db, "db", "partytb.db", "SQLite database path")
	root.PersistentFlags().StringVar(&g.pgDSN, "pg-dsn", os.Getenv("PG_DSN"), "PostgreSQL DSN; overrides --db when set")
	root.PersistentFlags().StringVar(&g.redisAddr, "redis-addr", envOr("REDIS_ADDR", "127.0.0.1:6379"), "Redis address for the job queue")

	root.AddCommand(newReportCommand(g), newSeedCommand(g), newJobsCommand(g))
	return root
}

// Execute runs the CLI against the process streams.
func Execute() error {
	return NewRootCommand(os.Stdout, os.Stderr).Execute()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
