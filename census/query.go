package census

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Server-side bounds on caller-controlled pagination.
const (
	MinLimit = 1
	MaxLimit = 1000
)

// Query describes one parameterized fetch against the fact store.
// Column lists, joins and order-by identifiers are fixed constants
// chosen by the operation; caller-controlled values only ever appear as
// bound parameters.
type Query struct {
	Distinct   bool
	Columns    string  // select list
	Join       string  // optional sub-table join clause
	Levels     []Level // one level matches by equality, several by ANY
	Codes      []int64 // resolved dimension codes, bound as one array
	CodeColumn string  // defaults to l.state_code
	TRU        string  // normalized; empty means all splits
	OrderBy    string  // fixed identifier list, never raw input
	Limit      int     // 0 disables the clause
	Offset     int
}

// SQL renders the statement and its bound arguments.
func (q Query) SQL() (string, []interface{}) {
	col := q.CodeColumn
	if col == "" {
		col = "l.state_code"
	}

	var b strings.Builder
	var args []interface{}

	b.WriteString("SELECT ")
	if q.Distinct {
		b.WriteString("DISTINCT ")
	}
	b.WriteString(q.Columns)
	b.WriteString(" FROM locations l")
	if q.Join != "" {
		b.WriteString(" ")
		b.WriteString(q.Join)
	}

	if len(q.Levels) == 1 {
		args = append(args, string(q.Levels[0]))
		fmt.Fprintf(&b, " WHERE TRIM(LOWER(l.level)) = $%d", len(args))
	} else {
		levels := make([]string, 0, len(q.Levels))
		for _, lv := range q.Levels {
			levels = append(levels, string(lv))
		}
		args = append(args, pq.Array(levels))
		fmt.Fprintf(&b, " WHERE TRIM(LOWER(l.level)) = ANY($%d)", len(args))
	}

	if len(q.Codes) > 0 {
		args = append(args, pq.Array(q.Codes))
		fmt.Fprintf(&b, " AND %s = ANY($%d)", col, len(args))
	}

	if q.TRU != "" {
		args = append(args, q.TRU)
		fmt.Fprintf(&b, " AND TRIM(LOWER(l.tru)) = $%d", len(args))
	}

	if q.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.OrderBy)
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
		args = append(args, q.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}

	return b.String(), args
}

// ValidateLimit checks caller pagination against the server-side bounds.
func ValidateLimit(limit, offset int) error {
	if limit < MinLimit || limit > MaxLimit {
		return Validationf("limit must be between %d and %d", MinLimit, MaxLimit)
	}
	if offset < 0 {
		return Validationf("offset must be non-negative")
	}
	return nil
}
