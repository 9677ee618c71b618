package handlers

import (
	"database/sql"
	"net/http"

	"github.com/imranKhanTsx/indian-cences/census"
)

func scanName(rows *sql.Rows) (census.Row, error) {
	var r census.Row
	err := rows.Scan(&r.Name)
	return r, err
}

// GetStateLocations serves the distinct unit names under one state,
// bucketed by level.
func (s *Server) GetStateLocations(w http.ResponseWriter, r *http.Request) {
	ref, err := census.ResolveState(r.Context(), s.DB, s.Cache, r.URL.Query().Get("state"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	levels := []struct {
		field string
		level census.Level
	}{
		{"districts", census.LevelDistrict},
		{"subdistricts", census.LevelSubDistrict},
		{"towns", census.LevelTown},
		{"villages", census.LevelVillage},
	}

	obj := census.NewObject()
	obj.Set("name", ref.Name)
	obj.Set("state", ref.Code)
	for _, lv := range levels {
		rows, err := census.FetchRows(r.Context(), s.DB, census.Query{
			Distinct: true,
			Columns:  "l.name",
			Levels:   []census.Level{lv.level},
			Codes:    []int64{ref.Code},
			OrderBy:  "l.name",
		}, scanName)
		if err != nil {
			writeError(w, r, err)
			return
		}
		names := make([]string, 0, len(rows))
		for _, row := range rows {
			names = append(names, row.Name)
		}
		obj.Set(lv.field, names)
	}
	writeJSON(w, http.StatusOK, obj)
}

// GetLocationHierarchy serves the nested district / sub-district /
// place tree for one state. Depth flags skip whole levels, fetches
// included.
func (s *Server) GetLocationHierarchy(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ref, err := census.ResolveState(r.Context(), s.DB, s.Cache, query.Get("state"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	opt := census.HierarchyOptions{
		IncludeSubdistricts: parseBoolDefault(query.Get("include_subdistricts"), true),
		IncludePlaces:       parseBoolDefault(query.Get("include_places"), true),
	}
	h, err := census.AssembleHierarchy(r.Context(), s.DB, ref, opt)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := census.NewObject()
	out.Set("state", h.State.Name)
	districts := make([]*census.Object, 0, len(h.Districts))
	for _, d := range h.Districts {
		dObj := census.NewObject()
		dObj.Set("name", d.Name)
		if opt.IncludeSubdistricts {
			subs := make([]*census.Object, 0, len(d.Subdistricts))
			for _, sub := range d.Subdistricts {
				sObj := census.NewObject()
				sObj.Set("name", sub.Name)
				if opt.IncludePlaces {
					sObj.Set("towns", sub.Towns)
					sObj.Set("villages", sub.Villages)
				}
				subs = append(subs, sObj)
			}
			dObj.Set("subdistricts", subs)
		}
		districts = append(districts, dObj)
	}
	out.Set("districts", districts)
	writeJSON(w, http.StatusOK, out)
}
