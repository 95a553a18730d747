package sqlite

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/partytb/internal/partytb"
	"github.com/odyssey-erp/partytb/internal/platform/query"
)

// SumByParty aggregates debit and credit per party. Sums are rendered as
// fixed-point text so they scan into decimals without float formatting.
func (s *Store) SumByParty(ctx context.Context, where query.Where) ([]partytb.PartySum, error) {
	clause, args := where.Render(query.SQLite)
	stmt := fmt.Sprintf(`SELECT party, printf('%%.6f', TOTAL(debit)), printf('%%.6f', TOTAL(credit))
		FROM gl_entries
		WHERE %s
		GROUP BY party
		ORDER BY party`, clause)

	rows, err := s.reader.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("store/sqlite: sum by party: %w", err)
	}
	defer rows.Close()

	var out []partytb.PartySum
	for rows.Next() {
		var sum partytb.PartySum
		if err := rows.Scan(&sum.Party, &sum.Debit, &sum.Credit); err != nil {
			return nil, fmt.Errorf("store/sqlite: scan party sum: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
