package handlers

import (
	"database/sql"
	"net/http"

	"github.com/imranKhanTsx/indian-cences/census"
	"github.com/imranKhanTsx/indian-cences/models"
)

// metricSpec wires one state-level metric operation: the JSON field its
// block lives under, the sub-table columns and join that produce it,
// and the scan for one fetched row.
type metricSpec struct {
	field   string
	columns string
	join    string
	scan    census.ScanFunc
}

// scanIdentity reads the leading identity columns every metric query
// selects, leaving the remaining destinations for the metric block.
func scanIdentity(rows *sql.Rows, r *census.Row, metrics ...interface{}) error {
	var state int64
	dest := append([]interface{}{&r.Name, &state, &r.TRU}, metrics...)
	if err := rows.Scan(dest...); err != nil {
		return err
	}
	r.Key = census.StateKey(state)
	r.Level = census.LevelState
	r.TRU = census.Normalize(r.TRU)
	return nil
}

var populationSpec = metricSpec{
	field:   "population",
	columns: "h.tot_p",
	join:    "JOIN households_and_population h ON h.location_id = l.id",
	scan: func(rows *sql.Rows) (census.Row, error) {
		var r census.Row
		var total int64
		if err := scanIdentity(rows, &r, &total); err != nil {
			return r, err
		}
		r.Metrics = total
		return r, nil
	},
}

var genderPopulationSpec = metricSpec{
	field:   "population",
	columns: "h.tot_p, h.tot_m, h.tot_f",
	join:    "JOIN households_and_population h ON h.location_id = l.id",
	scan: func(rows *sql.Rows) (census.Row, error) {
		var r census.Row
		var m models.GenderCount
		if err := scanIdentity(rows, &r, &m.Total, &m.Male, &m.Female); err != nil {
			return r, err
		}
		r.Metrics = m
		return r, nil
	},
}

var literacySpec = metricSpec{
	field:   "literacy",
	columns: "t.p_lit, t.m_lit, t.f_lit",
	join:    "JOIN literacy t ON t.location_id = l.id",
	scan: func(rows *sql.Rows) (census.Row, error) {
		var r census.Row
		var m models.GenderCount
		if err := scanIdentity(rows, &r, &m.Total, &m.Male, &m.Female); err != nil {
			return r, err
		}
		r.Metrics = m
		return r, nil
	},
}

var workersSpec = metricSpec{
	field:   "workers",
	columns: "t.tot_work_p, t.tot_work_m, t.tot_work_f",
	join:    "JOIN workers_total t ON t.location_id = l.id",
	scan: func(rows *sql.Rows) (census.Row, error) {
		var r census.Row
		var m models.GenderCount
		if err := scanIdentity(rows, &r, &m.Total, &m.Male, &m.Female); err != nil {
			return r, err
		}
		r.Metrics = m
		return r, nil
	},
}

var nonWorkersSpec = metricSpec{
	field:   "non_workers",
	columns: "t.non_work_p, t.non_work_m, t.non_work_f",
	join:    "JOIN workers_total t ON t.location_id = l.id",
	scan: func(rows *sql.Rows) (census.Row, error) {
		var r census.Row
		var m models.GenderCount
		if err := scanIdentity(rows, &r, &m.Total, &m.Male, &m.Female); err != nil {
			return r, err
		}
		r.Metrics = m
		return r, nil
	},
}

var casteSpec = metricSpec{
	field:   "caste_population",
	columns: "t.p_sc, t.m_sc, t.f_sc, t.p_st, t.m_st, t.f_st",
	join:    "JOIN scheduled_caste_tribe t ON t.location_id = l.id",
	scan: func(rows *sql.Rows) (census.Row, error) {
		var r census.Row
		var m models.CastePopulation
		err := scanIdentity(rows, &r,
			&m.SC.Total, &m.SC.Male, &m.SC.Female,
			&m.ST.Total, &m.ST.Male, &m.ST.Female)
		if err != nil {
			return r, err
		}
		r.Metrics = m
		return r, nil
	},
}

var householdsSpec = metricSpec{
	field:   "households",
	columns: "h.no_hh, h.tot_p, h.tot_m, h.tot_f, h.p_06, h.m_06, h.f_06",
	join:    "JOIN households_and_population h ON h.location_id = l.id",
	scan: func(rows *sql.Rows) (census.Row, error) {
		var r census.Row
		var m models.Households
		err := scanIdentity(rows, &r,
			&m.Households,
			&m.Population.Total, &m.Population.Male, &m.Population.Female,
			&m.Under6.Total, &m.Under6.Male, &m.Under6.Female)
		if err != nil {
			return r, err
		}
		r.Metrics = m
		return r, nil
	},
}

var mainWorkersSpec = metricSpec{
	field: "main_workers",
	columns: "t.mainwork_p, t.mainwork_m, t.mainwork_f, " +
		"t.main_cl_p, t.main_cl_m, t.main_cl_f, " +
		"t.main_al_p, t.main_al_m, t.main_al_f, " +
		"t.main_hh_p, t.main_hh_m, t.main_hh_f, " +
		"t.main_ot_p, t.main_ot_m, t.main_ot_f",
	join: "JOIN main_workers t ON t.location_id = l.id",
	scan: func(rows *sql.Rows) (census.Row, error) {
		var r census.Row
		var m models.WorkerSplit
		if err := scanIdentity(rows, &r, splitDest(&m)...); err != nil {
			return r, err
		}
		r.Metrics = m
		return r, nil
	},
}

var marginalWorkersSpec = metricSpec{
	field: "marginal_workers",
	columns: "t.margwork_p, t.margwork_m, t.margwork_f, " +
		"t.marg_cl_p, t.marg_cl_m, t.marg_cl_f, " +
		"t.marg_al_p, t.marg_al_m, t.marg_al_f, " +
		"t.marg_hh_p, t.marg_hh_m, t.marg_hh_f, " +
		"t.marg_ot_p, t.marg_ot_m, t.marg_ot_f, " +
		"t.margwork_3_6_p, t.margwork_3_6_m, t.margwork_3_6_f, " +
		"t.marg_cl_3_6_p, t.marg_cl_3_6_m, t.marg_cl_3_6_f, " +
		"t.marg_al_3_6_p, t.marg_al_3_6_m, t.marg_al_3_6_f, " +
		"t.marg_hh_3_6_p, t.marg_hh_3_6_m, t.marg_hh_3_6_f, " +
		"t.marg_ot_3_6_p, t.marg_ot_3_6_m, t.marg_ot_3_6_f, " +
		"t.margwork_0_3_p, t.margwork_0_3_m, t.margwork_0_3_f, " +
		"t.marg_cl_0_3_p, t.marg_cl_0_3_m, t.marg_cl_0_3_f, " +
		"t.marg_al_0_3_p, t.marg_al_0_3_m, t.marg_al_0_3_f, " +
		"t.marg_hh_0_3_p, t.marg_hh_0_3_m, t.marg_hh_0_3_f, " +
		"t.marg_ot_0_3_p, t.marg_ot_0_3_m, t.marg_ot_0_3_f",
	join: "JOIN marginal_workers t ON t.location_id = l.id",
	scan: func(rows *sql.Rows) (census.Row, error) {
		var r census.Row
		var m models.MarginalWorkers
		dest := splitDest(&m.WorkerSplit)
		dest = append(dest, splitDest(&m.Months3To6)...)
		dest = append(dest, splitDest(&m.Months0To3)...)
		if err := scanIdentity(rows, &r, dest...); err != nil {
			return r, err
		}
		r.Metrics = m
		return r, nil
	},
}

func splitDest(m *models.WorkerSplit) []interface{} {
	return []interface{}{
		&m.Total.Total, &m.Total.Male, &m.Total.Female,
		&m.Cultivators.Total, &m.Cultivators.Male, &m.Cultivators.Female,
		&m.AgriculturalLabourers.Total, &m.AgriculturalLabourers.Male, &m.AgriculturalLabourers.Female,
		&m.HouseholdIndustry.Total, &m.HouseholdIndustry.Male, &m.HouseholdIndustry.Female,
		&m.Other.Total, &m.Other.Male, &m.Other.Female,
	}
}

// stateIdentity writes the identifying fields every state-level group
// carries.
func stateIdentity(g *census.Group, obj *census.Object) {
	obj.Set("name", g.Name)
	obj.Set("state", g.Key.State)
}

// serveStateMetric is the shared pipeline for every state-level metric
// operation: parse and validate, resolve names to codes, fetch, group,
// compose. Operations differ only in their metricSpec.
func (s *Server) serveStateMetric(w http.ResponseWriter, r *http.Request, spec metricSpec) {
	names, err := census.SplitNames(r.URL.Query().Get("states"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	tru, err := census.ParseTRU(r.URL.Query().Get("tru"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	refs, err := census.ResolveStates(r.Context(), s.DB, s.Cache, names)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows, err := census.FetchRows(r.Context(), s.DB, census.Query{
		Columns: "l.name, l.state_code, l.tru, " + spec.columns,
		Join:    spec.join,
		Levels:  []census.Level{census.LevelState},
		Codes:   census.Codes(refs),
		TRU:     tru,
	}, spec.scan)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(rows) == 0 {
		writeError(w, r, census.NotFoundf("no data found"))
		return
	}

	agg := census.GroupRows(rows, census.KeyOfRow, tru != "")
	writeJSON(w, http.StatusOK, census.Compose(agg, spec.field, stateIdentity))
}

func (s *Server) GetStateGenderPopulation(w http.ResponseWriter, r *http.Request) {
	s.serveStateMetric(w, r, genderPopulationSpec)
}

func (s *Server) GetStateLiteracy(w http.ResponseWriter, r *http.Request) {
	s.serveStateMetric(w, r, literacySpec)
}

func (s *Server) GetStateWorkers(w http.ResponseWriter, r *http.Request) {
	s.serveStateMetric(w, r, workersSpec)
}

func (s *Server) GetStateNonWorkers(w http.ResponseWriter, r *http.Request) {
	s.serveStateMetric(w, r, nonWorkersSpec)
}

func (s *Server) GetStateCastePopulation(w http.ResponseWriter, r *http.Request) {
	s.serveStateMetric(w, r, casteSpec)
}

func (s *Server) GetStateHouseholds(w http.ResponseWriter, r *http.Request) {
	s.serveStateMetric(w, r, householdsSpec)
}

func (s *Server) GetStateMainWorkers(w http.ResponseWriter, r *http.Request) {
	s.serveStateMetric(w, r, mainWorkersSpec)
}

func (s *Server) GetStateMarginalWorkers(w http.ResponseWriter, r *http.Request) {
	s.serveStateMetric(w, r, marginalWorkersSpec)
}

// GetStatePopulation serves total population per state. The
// include_population flag drops the metric block entirely, leaving just
// the resolved identities.
func (s *Server) GetStatePopulation(w http.ResponseWriter, r *http.Request) {
	if parseBoolDefault(r.URL.Query().Get("include_population"), true) {
		s.serveStateMetric(w, r, populationSpec)
		return
	}

	names, err := census.SplitNames(r.URL.Query().Get("states"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := census.ParseTRU(r.URL.Query().Get("tru")); err != nil {
		writeError(w, r, err)
		return
	}
	refs, err := census.ResolveStates(r.Context(), s.DB, s.Cache, names)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]*census.Object, 0, len(refs))
	for _, ref := range refs {
		obj := census.NewObject()
		obj.Set("name", ref.Name)
		obj.Set("state", ref.Code)
		out = append(out, obj)
	}
	writeJSON(w, http.StatusOK, out)
}
