package census

import (
	"context"
	"database/sql"
)

// ScanFunc converts one result-set row into a Row. The operation owns
// the column list, so it owns the scan as well.
type ScanFunc func(*sql.Rows) (Row, error)

// FetchRows executes the query and drains the result set. Row order is
// unspecified; grouping must not depend on it. Store failures surface
// as UpstreamError and are not retried here. Context cancellation
// cancels the in-flight query through QueryContext.
func FetchRows(ctx context.Context, db *sql.DB, q Query, scan ScanFunc) ([]Row, error) {
	stmt, args := q.SQL()
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, NewUpstream("query fact store", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, NewUpstream("scan fact row", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, NewUpstream("read fact rows", err)
	}
	return out, nil
}
