package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imranKhanTsx/indian-cences/census"
)

const resolveStatesSQL = `SELECT DISTINCT ON (TRIM(LOWER(name))) TRIM(LOWER(name)), state_code, name FROM locations WHERE TRIM(LOWER(level)) = 'state' AND TRIM(LOWER(name)) = ANY($1) ORDER BY TRIM(LOWER(name)), state_code`

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewServer(db, nil), mock
}

func expectResolve(mock sqlmock.Sqlmock, names []string, rows *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta(resolveStatesSQL)).
		WithArgs(pq.Array(names)).
		WillReturnRows(rows)
}

func resolvedRows(pairs ...interface{}) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"norm", "state_code", "name"})
	for i := 0; i+1 < len(pairs); i += 2 {
		norm := pairs[i].(string)
		code := pairs[i+1].(int64)
		rows.AddRow(norm, code, norm)
	}
	return rows
}

func metricSQL(columns, join string, tru string) string {
	q := census.Query{
		Columns: "l.name, l.state_code, l.tru, " + columns,
		Join:    join,
		Levels:  []census.Level{census.LevelState},
		Codes:   []int64{1},
		TRU:     tru,
	}
	sql, _ := q.SQL()
	return sql
}

func TestInvalidTRURejectedBeforeQuery(t *testing.T) {
	s, mock := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state-population?states=karnataka&tru=suburban", nil)
	w := httptest.NewRecorder()
	s.GetStatePopulation(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet(), "validation must precede any query")
}

func TestEmptyStatesRejected(t *testing.T) {
	s, mock := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state-population?states=,%20,", nil)
	w := httptest.NewRecorder()
	s.GetStatePopulation(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(400), body["code"])
}

func TestStatePopulationNestedByTRU(t *testing.T) {
	s, mock := newTestServer(t)

	expectResolve(mock, []string{"karnataka"}, resolvedRows("karnataka", int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(metricSQL("h.tot_p", "JOIN households_and_population h ON h.location_id = l.id", ""))).
		WithArgs("state", pq.Array([]int64{1})).
		WillReturnRows(sqlmock.NewRows([]string{"name", "state_code", "tru", "tot_p"}).
			AddRow("Karnataka", int64(1), "Rural", int64(100)).
			AddRow("Karnataka", int64(1), "Urban", int64(50)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state-population?states=Karnataka", nil)
	w := httptest.NewRecorder()
	s.GetStatePopulation(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`[{"name":"Karnataka","state":1,"population":{"rural":100,"urban":50}}]`,
		w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatePopulationFlatWithTRUFilter(t *testing.T) {
	s, mock := newTestServer(t)

	expectResolve(mock, []string{"karnataka"}, resolvedRows("karnataka", int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(metricSQL("h.tot_p", "JOIN households_and_population h ON h.location_id = l.id", "urban"))).
		WithArgs("state", pq.Array([]int64{1}), "urban").
		WillReturnRows(sqlmock.NewRows([]string{"name", "state_code", "tru", "tot_p"}).
			AddRow("Karnataka", int64(1), "Urban", int64(50)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state-population?states=Karnataka&tru=urban", nil)
	w := httptest.NewRecorder()
	s.GetStatePopulation(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"name":"Karnataka","state":1,"population":50}]`, w.Body.String())
}

func TestStatePopulationExcluded(t *testing.T) {
	s, mock := newTestServer(t)

	expectResolve(mock, []string{"karnataka"}, resolvedRows("karnataka", int64(1)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state-population?states=Karnataka&include_population=false", nil)
	w := httptest.NewRecorder()
	s.GetStatePopulation(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"name":"karnataka","state":1}]`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet(), "no fact query when the metric is excluded")
}

func TestStateGenderPopulationShape(t *testing.T) {
	s, mock := newTestServer(t)

	expectResolve(mock, []string{"karnataka"}, resolvedRows("karnataka", int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(metricSQL("h.tot_p, h.tot_m, h.tot_f", "JOIN households_and_population h ON h.location_id = l.id", ""))).
		WithArgs("state", pq.Array([]int64{1})).
		WillReturnRows(sqlmock.NewRows([]string{"name", "state_code", "tru", "tot_p", "tot_m", "tot_f"}).
			AddRow("Karnataka", int64(1), "Total", int64(150), int64(80), int64(70)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state-gender-population?states=Karnataka", nil)
	w := httptest.NewRecorder()
	s.GetStateGenderPopulation(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`[{"name":"Karnataka","state":1,"population":{"total":{"total":150,"male":80,"female":70}}}]`,
		w.Body.String())
}

func TestZeroFactRowsIsNotFound(t *testing.T) {
	s, mock := newTestServer(t)

	expectResolve(mock, []string{"karnataka"}, resolvedRows("karnataka", int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(metricSQL("t.p_lit, t.m_lit, t.f_lit", "JOIN literacy t ON t.location_id = l.id", ""))).
		WithArgs("state", pq.Array([]int64{1})).
		WillReturnRows(sqlmock.NewRows([]string{"name", "state_code", "tru", "p_lit", "m_lit", "f_lit"}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state-literacy?states=Karnataka", nil)
	w := httptest.NewRecorder()
	s.GetStateLiteracy(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownStatesIsNotFound(t *testing.T) {
	s, mock := newTestServer(t)

	expectResolve(mock, []string{"atlantis"}, resolvedRows())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state-population?states=Atlantis", nil)
	w := httptest.NewRecorder()
	s.GetStatePopulation(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatesBogusFieldsRejected(t *testing.T) {
	s, mock := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/states?fields=bogus,nonsense", nil)
	w := httptest.NewRecorder()
	s.GetStates(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatesInvalidSortRejected(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/states?sort_by=population", nil)
	w := httptest.NewRecorder()
	s.GetStates(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatesLimitBounds(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/states?limit=5000", nil)
	w := httptest.NewRecorder()
	s.GetStates(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatesDefaultFields(t *testing.T) {
	s, mock := newTestServer(t)

	base := "SELECT state_code, name, level FROM (SELECT DISTINCT ON (state_code) state_code, name, level FROM locations WHERE TRIM(LOWER(level)) = $1 ORDER BY state_code) s ORDER BY state_code ASC LIMIT $2 OFFSET $3"
	mock.ExpectQuery(regexp.QuoteMeta(base)).
		WithArgs("state", 100, 0).
		WillReturnRows(sqlmock.NewRows([]string{"state_code", "name", "level"}).
			AddRow(int64(1), "JAMMU & KASHMIR", "STATE").
			AddRow(int64(29), "KARNATAKA", "STATE"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/states", nil)
	w := httptest.NewRecorder()
	s.GetStates(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`[{"state":1,"name":"JAMMU & KASHMIR"},{"state":29,"name":"KARNATAKA"}]`,
		w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatesCountFields(t *testing.T) {
	s, mock := newTestServer(t)

	base := "SELECT state_code, name, level FROM (SELECT DISTINCT ON (state_code) state_code, name, level FROM locations WHERE TRIM(LOWER(level)) = $1 ORDER BY state_code) s ORDER BY state_code ASC LIMIT $2 OFFSET $3"
	mock.ExpectQuery(regexp.QuoteMeta(base)).
		WithArgs("state", 100, 0).
		WillReturnRows(sqlmock.NewRows([]string{"state_code", "name", "level"}).
			AddRow(int64(29), "KARNATAKA", "STATE"))

	countSQL := "SELECT state_code, COUNT(DISTINCT district_code) FROM locations WHERE TRIM(LOWER(level)) = $1 GROUP BY state_code"
	mock.ExpectQuery(regexp.QuoteMeta(countSQL)).
		WithArgs("district").
		WillReturnRows(sqlmock.NewRows([]string{"state_code", "count"}).
			AddRow(int64(29), int64(30)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/states?fields=name,district_count", nil)
	w := httptest.NewRecorder()
	s.GetStates(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"name":"KARNATAKA","district_count":30}]`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDistrictBreakdownShape(t *testing.T) {
	s, mock := newTestServer(t)

	expectResolve(mock, []string{"karnataka"}, resolvedRows("karnataka", int64(29)))

	q := census.Query{
		Columns: "l.name, l.state_code, l.district_code, l.tru, h.tot_p, h.tot_m, h.tot_f",
		Join:    "JOIN households_and_population h ON h.location_id = l.id",
		Levels:  []census.Level{census.LevelDistrict},
		Codes:   []int64{29},
		TRU:     "total",
		OrderBy: "l.state_code, l.name",
	}
	dsql, _ := q.SQL()
	mock.ExpectQuery(regexp.QuoteMeta(dsql)).
		WithArgs("district", pq.Array([]int64{29}), "total").
		WillReturnRows(sqlmock.NewRows([]string{"name", "state_code", "district_code", "tru", "tot_p", "tot_m", "tot_f"}).
			AddRow("Bangalore", int64(29), int64(572), "Total", int64(9621551), int64(5022661), int64(4598890)).
			AddRow("Mysore", int64(29), int64(577), "Total", int64(3001127), int64(1511600), int64(1489527)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/district-population-breakdown?states=Karnataka&tru=total", nil)
	w := httptest.NewRecorder()
	s.GetDistrictPopulationBreakdown(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{
		"state": "karnataka",
		"state_code": 29,
		"districts": [
			{"name":"Bangalore","population":{"total":9621551,"male":5022661,"female":4598890}},
			{"name":"Mysore","population":{"total":3001127,"male":1511600,"female":1489527}}
		]
	}]`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDistrictBreakdownBadLimit(t *testing.T) {
	s, mock := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/district-population-breakdown?states=Karnataka&offset=-5", nil)
	w := httptest.NewRecorder()
	s.GetDistrictPopulationBreakdown(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheControlOnSuccessOnly(t *testing.T) {
	s, mock := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state-population?states=Karnataka&tru=bogus", nil)
	w := httptest.NewRecorder()
	s.GetStatePopulation(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Header().Get("Cache-Control"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
