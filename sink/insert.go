package sink

import (
	"fmt"
	"strings"
)

// Dialect controls the placeholder style of generated INSERT statements.
type Dialect int

const (
	// DialectQuestion uses "?" placeholders (sqlite, mysql).
	DialectQuestion Dialect = iota
	// DialectDollar uses "$n" placeholders (postgres).
	DialectDollar
)

// BuildInsert renders a multi-row INSERT statement for the given dialect.
func BuildInsert(dialect Dialect, table string, columns []string, rowCount int) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(") VALUES ")
	n := 1
	for r := 0; r < rowCount; r++ {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for c := range columns {
			if c > 0 {
				sb.WriteString(", ")
			}
			if dialect == DialectDollar {
				fmt.Fprintf(&sb, "$%d", n)
				n++
			} else {
				sb.WriteString("?")
			}
		}
		sb.WriteString(")")
	}
	return sb.String()
}

// FlattenValues concatenates the values of a homogeneous batch in row order,
// for binding against a BuildInsert statement.
func FlattenValues(rows []Row) []interface{} {
	if len(rows) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(rows)*len(rows[0].Columns()))
	for _, r := range rows {
		args = append(args, r.Values()...)
	}
	return args
}
