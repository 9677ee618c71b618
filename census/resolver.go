package census

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/patrickmn/go-cache"
)

// Ref is a resolved administrative unit: its internal code and the
// canonical display name stored for it.
type Ref struct {
	Code int64  `json:"code"`
	Name string `json:"name"`
}

// DISTINCT ON the normalized name ordered by state_code keeps the
// lowest code when two rows share a name.
const resolveStatesSQL = `SELECT DISTINCT ON (TRIM(LOWER(name))) TRIM(LOWER(name)), state_code, name FROM locations WHERE TRIM(LOWER(level)) = 'state' AND TRIM(LOWER(name)) = ANY($1) ORDER BY TRIM(LOWER(name)), state_code`

// ResolveStates maps normalized state names to their codes. Matching is
// case and whitespace insensitive. Names matching nothing are skipped;
// zero matches overall is NotFound. Resolution is a pure read, so
// resolved pairs may sit in the TTL cache for the serving lifetime.
func ResolveStates(ctx context.Context, db *sql.DB, c *cache.Cache, names []string) ([]Ref, error) {
	found := make(map[string]Ref, len(names))
	misses := names
	if c != nil {
		misses = misses[:0:0]
		for _, n := range names {
			if v, ok := c.Get("state:" + n); ok {
				found[n] = v.(Ref)
			} else {
				misses = append(misses, n)
			}
		}
	}

	if len(misses) > 0 {
		rows, err := db.QueryContext(ctx, resolveStatesSQL, pq.Array(misses))
		if err != nil {
			return nil, NewUpstream("resolve state names", err)
		}
		defer rows.Close()
		for rows.Next() {
			var norm, display string
			var code int64
			if err := rows.Scan(&norm, &code, &display); err != nil {
				return nil, NewUpstream("scan resolved state", err)
			}
			ref := Ref{Code: code, Name: display}
			found[norm] = ref
			if c != nil {
				c.Set("state:"+norm, ref, cache.DefaultExpiration)
			}
		}
		if err := rows.Err(); err != nil {
			return nil, NewUpstream("read resolved states", err)
		}
	}

	refs := make([]Ref, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		if ref, ok := found[n]; ok {
			refs = append(refs, ref)
		}
	}
	if len(refs) == 0 {
		return nil, NotFoundf("no matching states found")
	}
	return refs, nil
}

// ResolveState resolves a single state name.
func ResolveState(ctx context.Context, db *sql.DB, c *cache.Cache, name string) (Ref, error) {
	n := Normalize(name)
	if n == "" {
		return Ref{}, Validationf("no valid state name provided")
	}
	refs, err := ResolveStates(ctx, db, c, []string{n})
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return Ref{}, NotFoundf("state not found")
		}
		return Ref{}, err
	}
	return refs[0], nil
}

// Codes extracts the code list a query builder binds for an IN
// predicate.
func Codes(refs []Ref) []int64 {
	codes := make([]int64, 0, len(refs))
	for _, ref := range refs {
		codes = append(codes, ref.Code)
	}
	return codes
}
