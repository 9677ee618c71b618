package handlers

import (
	"database/sql"
	"net/http"

	"github.com/imranKhanTsx/indian-cences/census"
	"github.com/imranKhanTsx/indian-cences/models"
)

func scanDistrictPopulation(rows *sql.Rows) (census.Row, error) {
	var r census.Row
	var state, district int64
	var m models.GenderCount
	err := rows.Scan(&r.Name, &state, &district, &r.TRU, &m.Total, &m.Male, &m.Female)
	if err != nil {
		return r, err
	}
	r.Level = census.LevelDistrict
	r.Key = census.DistrictKey(state, district)
	r.TRU = census.Normalize(r.TRU)
	r.Metrics = m
	return r, nil
}

// GetDistrictPopulationBreakdown serves district-level population
// grouped under the resolved states.
func (s *Server) GetDistrictPopulationBreakdown(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	names, err := census.SplitNames(query.Get("states"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	tru, err := census.ParseTRU(query.Get("tru"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := parseIntParam("limit", query.Get("limit"), 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := parseIntParam("offset", query.Get("offset"), 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if limit != 0 || offset != 0 {
		if limit == 0 {
			limit = census.MaxLimit
		}
		if err := census.ValidateLimit(limit, offset); err != nil {
			writeError(w, r, err)
			return
		}
	}

	refs, err := census.ResolveStates(r.Context(), s.DB, s.Cache, names)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stateName := make(map[int64]string, len(refs))
	for _, ref := range refs {
		stateName[ref.Code] = ref.Name
	}

	rows, err := census.FetchRows(r.Context(), s.DB, census.Query{
		Columns: "l.name, l.state_code, l.district_code, l.tru, h.tot_p, h.tot_m, h.tot_f",
		Join:    "JOIN households_and_population h ON h.location_id = l.id",
		Levels:  []census.Level{census.LevelDistrict},
		Codes:   census.Codes(refs),
		TRU:     tru,
		OrderBy: "l.state_code, l.name",
		Limit:   limit,
		Offset:  offset,
	}, scanDistrictPopulation)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(rows) == 0 {
		writeError(w, r, census.NotFoundf("no data found"))
		return
	}

	districts := census.GroupRows(rows, census.KeyOfRow, tru != "")

	// Bucket district groups under their parent state, keeping
	// first-seen state order.
	var stateOrder []int64
	byState := make(map[int64][]*census.Object)
	for _, g := range districts.Groups() {
		obj := census.NewObject()
		obj.Set("name", g.Name)
		obj.Set("population", g.Metric())
		code := g.Key.State
		if _, ok := byState[code]; !ok {
			stateOrder = append(stateOrder, code)
		}
		byState[code] = append(byState[code], obj)
	}

	out := make([]*census.Object, 0, len(stateOrder))
	for _, code := range stateOrder {
		obj := census.NewObject()
		obj.Set("state", stateName[code])
		obj.Set("state_code", code)
		obj.Set("districts", byState[code])
		out = append(out, obj)
	}
	writeJSON(w, http.StatusOK, out)
}
