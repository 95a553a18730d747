package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/partytb/internal/masterdata"
	"github.com/odyssey-erp/partytb/internal/platform/cache"
	"github.com/odyssey-erp/partytb/internal/store"
)

func newSeedCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo company, parties and ledger entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, closeFn, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			fx := store.Demo()
			if err := b.Load(cmd.Context(), fx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d companies, %d parties, %d ledger entries\n",
				len(fx.Companies), len(fx.Parties), len(fx.Entries))
			invalidateMasterData(cmd.Context(), g.redisAddr, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return nil
		},
	}
}

// invalidateMasterData bumps the shared master data cache version so running
// servers stop serving currency and naming settings cached before the seed.
// A missing Redis only warns; the seed itself already succeeded.
func invalidateMasterData(ctx context.Context, addr string, stdout, stderr io.Writer) {
	if addr == "" {
		return
	}
	client, err := cache.New(ctx, cache.Options{Addr: addr})
	if err != nil {
		fmt.Fprintf(stderr, "warning: master data cache not invalidated: %v\n", err)
		return
	}
	defer func() { _ = client.Close() }()

	if err := masterdata.NewCache(client, 0).Bump(ctx); err != nil {
		fmt.Fprintf(stderr, "warning: master data cache not invalidated: %v\n", err)
		return
	}
	fmt.Fprintln(stdout, "master data cache invalidated")
}
