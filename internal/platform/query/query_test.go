package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWhereRenderPostgres(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	w := Where{
		Eq("company", "ACME"),
		Eq("is_cancelled", false),
		Ne(IfNull("party", ""), ""),
	}.With(
		Or(Lt("posting_date", from), And(EqLiteral(IfNull("is_opening", "No"), "Yes"), Lte("posting_date", to))),
		In("party", []string{"C1", "C2"}),
	)

	clause, args := w.Render(Postgres)
	require.Equal(t,
		"company = $1 AND is_cancelled = $2 AND COALESCE(party, '') <> $3 AND "+
			"(posting_date < $4 OR (COALESCE(is_opening, 'No') = 'Yes' AND posting_date <= $5)) AND party IN ($6, $7)",
		clause)
	require.Equal(t, []any{"ACME", false, "", from, to, "C1", "C2"}, args)
}

func TestWhereRenderSQLiteConvertsValues(t *testing.T) {
	day := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	clause, args := Where{Eq("is_cancelled", true), Gte("posting_date", day)}.Render(SQLite)
	require.Equal(t, "is_cancelled = ? AND posting_date >= ?", clause)
	require.Equal(t, []any{int64(1), "2025-03-09"}, args)
}

func TestEmptyConstructs(t *testing.T) {
	clause, args := Where{}.Render(Postgres)
	require.Equal(t, "1 = 1", clause)
	require.Empty(t, args)

	clause, _ = Where{In("party", nil)}.Render(Postgres)
	require.Equal(t, "1 = 0", clause)

	clause, _ = Where{Or()}.Render(SQLite)
	require.Equal(t, "(1 = 0)", clause)
}

func TestExistsCorrelatesSubquery(t *testing.T) {
	w := Where{
		Eq("c.territory", "North"),
		Exists("sales_team st",
			ColumnEq("st.parent", "c.name"),
			EqLiteral("st.parenttype", "Customer"),
			Eq("st.sales_person", "Ravi"),
		),
	}
	clause, args := w.Render(Postgres)
	require.Equal(t,
		"c.territory = $1 AND EXISTS (SELECT 1 FROM sales_team st WHERE st.parent = c.name AND st.parenttype = 'Customer' AND st.sales_person = $2)",
		clause)
	require.Equal(t, []any{"North", "Ravi"}, args)
}

func TestWithDoesNotAliasReceiver(t *testing.T) {
	base := make(Where, 1, 4)
	base[0] = Eq("a", 1)
	left := base.With(Eq("b", 2))
	right := base.With(Eq("c", 3))

	l, _ := left.Render(Postgres)
	r, _ := right.Render(Postgres)
	require.Equal(t, "a = $1 AND b = $2", l)
	require.Equal(t, "a = $1 AND c = $2", r)
}

func TestIfNullEscapesLiteral(t *testing.T) {
	require.Equal(t, "COALESCE(x, 'it''s')", IfNull("x", "it's"))
}
