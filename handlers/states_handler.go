package handlers

import (
	"fmt"
	"net/http"

	"github.com/imranKhanTsx/indian-cences/census"
)

// stateFieldAllowList declares the projectable fields for the state
// metadata operation, in emission order.
var stateFieldAllowList = []string{
	"state", "name", "level",
	"district_count", "subdistrict_count", "town_count", "village_count",
}

// stateSortColumns whitelists sortable identifiers. Count fields are
// computed after the base query and cannot be sorted on.
var stateSortColumns = map[string]string{
	"state": "state_code",
	"name":  "name",
	"level": "level",
}

// countSpecs maps each count field to the code column counted and the
// level its rows live at. Both are fixed identifiers.
var countSpecs = map[string]struct {
	column string
	level  census.Level
}{
	"district_count":    {"district_code", census.LevelDistrict},
	"subdistrict_count": {"subdistrict_code", census.LevelSubDistrict},
	"town_count":        {"town_village_code", census.LevelTown},
	"village_count":     {"town_village_code", census.LevelVillage},
}

// GetStates serves state metadata with optional count fields, a field
// projection, a whitelisted sort and bounded pagination.
func (s *Server) GetStates(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	fields := []string{"state", "name"}
	if requested := query.Get("fields"); requested != "" {
		var err error
		fields, err = census.ProjectFields(requested, stateFieldAllowList)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	sortBy := query.Get("sort_by")
	if sortBy == "" {
		sortBy = "state"
	}
	sortCol, ok := stateSortColumns[census.Normalize(sortBy)]
	if !ok {
		writeError(w, r, census.Validationf("invalid sort_by value %q", sortBy))
		return
	}
	direction := "ASC"
	switch census.Normalize(query.Get("sort_order")) {
	case "", "asc":
	case "desc":
		direction = "DESC"
	default:
		writeError(w, r, census.Validationf("sort_order must be asc or desc"))
		return
	}

	limit, err := parseIntParam("limit", query.Get("limit"), 100)
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := parseIntParam("offset", query.Get("offset"), 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := census.ValidateLimit(limit, offset); err != nil {
		writeError(w, r, err)
		return
	}

	sql := "SELECT state_code, name, level FROM (SELECT DISTINCT ON (state_code) state_code, name, level FROM locations WHERE TRIM(LOWER(level)) = $1 ORDER BY state_code) s"
	args := []interface{}{string(census.LevelState)}
	if sc := query.Get("state_code"); sc != "" {
		code, err := parseIntParam("state_code", sc, 0)
		if err != nil {
			writeError(w, r, err)
			return
		}
		args = append(args, code)
		sql += fmt.Sprintf(" WHERE state_code = $%d", len(args))
	}
	sql += fmt.Sprintf(" ORDER BY %s %s", sortCol, direction)
	args = append(args, limit)
	sql += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, offset)
	sql += fmt.Sprintf(" OFFSET $%d", len(args))

	type stateRow struct {
		code  int64
		name  string
		level string
	}
	rows, err := s.DB.QueryContext(r.Context(), sql, args...)
	if err != nil {
		writeError(w, r, census.NewUpstream("query state metadata", err))
		return
	}
	defer rows.Close()

	var states []stateRow
	for rows.Next() {
		var sr stateRow
		if err := rows.Scan(&sr.code, &sr.name, &sr.level); err != nil {
			writeError(w, r, census.NewUpstream("scan state metadata", err))
			return
		}
		states = append(states, sr)
	}
	if err := rows.Err(); err != nil {
		writeError(w, r, census.NewUpstream("read state metadata", err))
		return
	}
	if len(states) == 0 {
		writeError(w, r, census.NotFoundf("no matching states found"))
		return
	}

	counts, err := s.fetchStateCounts(r, fields)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]*census.Object, 0, len(states))
	for _, sr := range states {
		obj := census.NewObject()
		for _, f := range fields {
			switch f {
			case "state":
				obj.Set("state", sr.code)
			case "name":
				obj.Set("name", sr.name)
			case "level":
				obj.Set("level", sr.level)
			default:
				obj.Set(f, counts[f][sr.code])
			}
		}
		out = append(out, obj)
	}
	writeJSON(w, http.StatusOK, out)
}

// fetchStateCounts runs one grouped count query per selected count
// field. Unselected fields cost nothing.
func (s *Server) fetchStateCounts(r *http.Request, fields []string) (map[string]map[int64]int64, error) {
	counts := make(map[string]map[int64]int64)
	for _, f := range fields {
		spec, ok := countSpecs[f]
		if !ok {
			continue
		}
		sql := fmt.Sprintf("SELECT state_code, COUNT(DISTINCT %s) FROM locations WHERE TRIM(LOWER(level)) = $1 GROUP BY state_code", spec.column)
		rows, err := s.DB.QueryContext(r.Context(), sql, string(spec.level))
		if err != nil {
			return nil, census.NewUpstream("query "+f, err)
		}
		byState := make(map[int64]int64)
		for rows.Next() {
			var code, count int64
			if err := rows.Scan(&code, &count); err != nil {
				rows.Close()
				return nil, census.NewUpstream("scan "+f, err)
			}
			byState[code] = count
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, census.NewUpstream("read "+f, err)
		}
		rows.Close()
		counts[f] = byState
	}
	return counts, nil
}
