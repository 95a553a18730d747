// Package query renders conjunctive SQL filters from composable predicates.
//
// Column names and literals passed to the constructors are trusted
// identifiers supplied by code; every caller-provided value is bound as a
// placeholder argument.
package query

import (
	"strconv"
	"strings"
	"time"
)

// Dialect selects placeholder syntax and value conversion for a database.
type Dialect int

const (
	// Postgres renders numbered placeholders ($1, $2, ...).
	Postgres Dialect = iota
	// SQLite renders positional placeholders (?).
	SQLite
)

const dateLayout = "2006-01-02"

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// value adapts Go values to what the driver stores. SQLite keeps dates as
// ISO text and booleans as integers.
func (d Dialect) value(v any) any {
	if d != SQLite {
		return v
	}
	switch val := v.(type) {
	case time.Time:
		return val.Format(dateLayout)
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	default:
		return v
	}
}

// Predicate is a boolean SQL expression.
type Predicate interface {
	render(b *Builder) string
}

// Builder accumulates bind arguments while predicates render.
type Builder struct {
	dialect Dialect
	args    []any
}

// NewBuilder constructs a Builder for the dialect.
func NewBuilder(d Dialect) *Builder {
	return &Builder{dialect: d}
}

// Args returns the bind arguments collected so far.
func (b *Builder) Args() []any {
	return b.args
}

// Clause renders the predicates joined with AND.
func (b *Builder) Clause(w Where) string {
	return joinPredicates(b, w, " AND ", "1 = 1")
}

// Bind appends a value and returns its placeholder.
func (b *Builder) Bind(v any) string {
	b.args = append(b.args, b.dialect.value(v))
	if b.dialect == Postgres {
		return "$" + strconv.Itoa(len(b.args))
	}
	return "?"
}

// Where is a list of predicates combined conjunctively.
type Where []Predicate

// With returns a copy of w extended by preds.
func (w Where) With(preds ...Predicate) Where {
	out := make(Where, 0, len(w)+len(preds))
	out = append(out, w...)
	for _, p := range preds {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Render produces the clause text and its arguments.
func (w Where) Render(d Dialect) (string, []any) {
	b := NewBuilder(d)
	clause := b.Clause(w)
	return clause, b.Args()
}

type comparison struct {
	column string
	op     string
	value  any
}

func (c comparison) render(b *Builder) string {
	return c.column + " " + c.op + " " + b.Bind(c.value)
}

// Eq matches column = value.
func Eq(column string, value any) Predicate { return comparison{column, "=", value} }

// Ne matches column <> value.
func Ne(column string, value any) Predicate { return comparison{column, "<>", value} }

// Lt matches column < value.
func Lt(column string, value any) Predicate { return comparison{column, "<", value} }

// Lte matches column <= value.
func Lte(column string, value any) Predicate { return comparison{column, "<=", value} }

// Gte matches column >= value.
func Gte(column string, value any) Predicate { return comparison{column, ">=", value} }

type columnEq struct {
	left, right string
}

func (c columnEq) render(*Builder) string {
	return c.left + " = " + c.right
}

// ColumnEq compares two columns, used to correlate subqueries.
func ColumnEq(left, right string) Predicate { return columnEq{left, right} }

type literalEq struct {
	column  string
	literal string
}

func (l literalEq) render(*Builder) string {
	return l.column + " = " + quote(l.literal)
}

// EqLiteral compares a column with a constant known at compile time.
func EqLiteral(column, literal string) Predicate { return literalEq{column, literal} }

type in struct {
	column string
	values []string
}

func (p in) render(b *Builder) string {
	if len(p.values) == 0 {
		return "1 = 0"
	}
	holders := make([]string, len(p.values))
	for i, v := range p.values {
		holders[i] = b.Bind(v)
	}
	return p.column + " IN (" + strings.Join(holders, ", ") + ")"
}

// In matches column against a set. An empty set matches nothing.
func In(column string, values []string) Predicate {
	return in{column: column, values: append([]string(nil), values...)}
}

type group struct {
	sep   string
	empty string
	preds []Predicate
}

func (g group) render(b *Builder) string {
	if len(g.preds) == 1 {
		return g.preds[0].render(b)
	}
	return "(" + joinPredicates(b, g.preds, g.sep, g.empty) + ")"
}

// And groups predicates conjunctively.
func And(preds ...Predicate) Predicate { return group{sep: " AND ", empty: "1 = 1", preds: preds} }

// Or groups predicates disjunctively. An empty Or matches nothing.
func Or(preds ...Predicate) Predicate { return group{sep: " OR ", empty: "1 = 0", preds: preds} }

type exists struct {
	from  string
	where Where
}

func (e exists) render(b *Builder) string {
	return "EXISTS (SELECT 1 FROM " + e.from + " WHERE " + b.Clause(e.where) + ")"
}

// Exists matches when the correlated subquery returns a row.
func Exists(from string, preds ...Predicate) Predicate {
	return exists{from: from, where: Where(nil).With(preds...)}
}

// IfNull wraps a nullable column with a constant fallback.
func IfNull(column, fallback string) string {
	return "COALESCE(" + column + ", " + quote(fallback) + ")"
}

func joinPredicates(b *Builder, preds []Predicate, sep, empty string) string {
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		if p == nil {
			continue
		}
		parts = append(parts, p.render(b))
	}
	if len(parts) == 0 {
		return empty
	}
	return strings.Join(parts, sep)
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
