package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/partytb/internal/partytb"
	"github.com/odyssey-erp/partytb/internal/partytb/export"
)

// filterFlags binds the report filter to command flags.
type filterFlags struct {
	company     string
	partyType   string
	from        string
	to          string
	account     string
	party       string
	territory   string
	salesPerson string
	showZero    bool
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.company, "company", "", "Company to report on (required)")
	flags.StringVar(&f.partyType, "party-type", string(partytb.PartyCustomer), "Party type: Customer, Supplier, Employee, Member, Shareholder or Student")
	flags.StringVar(&f.from, "from", "", "Period start, YYYY-MM-DD")
	flags.StringVar(&f.to, "to", "", "Period end, YYYY-MM-DD")
	flags.StringVar(&f.account, "account", "", "Restrict to one ledger account")
	flags.StringVar(&f.party, "party", "", "Restrict to one party")
	flags.StringVar(&f.territory, "territory", "", "Customer territory")
	flags.StringVar(&f.salesPerson, "sales-person", "", "Customer sales person")
	flags.BoolVar(&f.showZero, "show-zero", false, "Include parties without any balance")
}

func (f *filterFlags) filter() (partytb.Filter, error) {
	pt, err := partytb.ParsePartyType(f.partyType)
	if err != nil {
		return partytb.Filter{}, err
	}
	out := partytb.Filter{
		Company:        f.company,
		PartyType:      pt,
		Account:        f.account,
		Party:          f.party,
		Territory:      f.territory,
		SalesPerson:    f.salesPerson,
		ShowZeroValues: f.showZero,
	}
	if f.from != "" {
		if out.FromDate, err = partytb.ParseDate(f.from); err != nil {
			return partytb.Filter{}, fmt.Errorf("%w: from: %v", partytb.ErrInvalidFilter, err)
		}
	}
	if f.to != "" {
		if out.ToDate, err = partytb.ParseDate(f.to); err != nil {
			return partytb.Filter{}, fmt.Errorf("%w: to: %v", partytb.ErrInvalidFilter, err)
		}
	}
	if err := partytb.ValidateFilter(out); err != nil {
		return partytb.Filter{}, err
	}
	return out, nil
}

func newReportCommand(g *globalFlags) *cobra.Command {
	var (
		ff     filterFlags
		format string
		locale string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a party trial balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ff.filter()
			if err != nil {
				return err
			}
			tag, err := language.Parse(locale)
			if err != nil {
				return fmt.Errorf("locale %q: %w", locale, err)
			}
			switch format {
			case "table", "csv", "json":
			default:
				return fmt.Errorf("unsupported format %q", format)
			}

			ctx := cmd.Context()
			b, closeFn, err := g.open(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			service := partytb.NewService(partytb.ServiceConfig{
				Ledger:    b,
				Directory: b,
				Companies: b,
				Naming:    b,
			})
			report, err := service.Run(ctx, f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "csv":
				_, err = export.WriteCSV(out, report, export.Metadata{Filter: f})
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				err = enc.Encode(report)
			default:
				err = export.WriteTable(out, report, export.NewAmountFormatter(tag))
			}
			return err
		},
	}
	ff.bind(cmd)
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, csv or json")
	cmd.Flags().StringVar(&locale, "locale", "en-US", "Locale for table amounts")
	return cmd
}
