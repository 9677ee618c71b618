package census

import (
	"context"
	"database/sql"
)

// Node is one assembled tree node below the state root. Children stay
// bucketed by kind so towns and villages remain disjoint.
type Node struct {
	Name         string
	Key          DimensionKey
	Subdistricts []*Node
	Towns        []string
	Villages     []string
}

// Hierarchy is the per-request location tree for one state. It is never
// persisted.
type Hierarchy struct {
	State     Ref
	Districts []*Node
}

// HierarchyOptions selects how deep the tree goes. A level the caller
// opted out of is never fetched, not computed and discarded.
type HierarchyOptions struct {
	IncludeSubdistricts bool
	IncludePlaces       bool
}

// AssembleHierarchy builds the district / sub-district / place tree for
// one resolved state. Each level is grouped once through the engine and
// linked to its parent by the shared key prefix. Place rows partition
// into towns and villages by their level value; any other level is
// dropped rather than silently bucketed.
func AssembleHierarchy(ctx context.Context, db *sql.DB, state Ref, opt HierarchyOptions) (*Hierarchy, error) {
	districtRows, err := FetchRows(ctx, db, Query{
		Columns: "l.name, l.state_code, l.district_code",
		Levels:  []Level{LevelDistrict},
		Codes:   []int64{state.Code},
		OrderBy: "l.name",
	}, scanDistrict)
	if err != nil {
		return nil, err
	}
	districts := GroupRows(districtRows, KeyOfRow, true)

	subsByDistrict := make(map[DimensionKey][]*Node)
	if opt.IncludeSubdistricts {
		subRows, err := FetchRows(ctx, db, Query{
			Columns: "l.name, l.state_code, l.district_code, l.subdistrict_code",
			Levels:  []Level{LevelSubDistrict},
			Codes:   []int64{state.Code},
			OrderBy: "l.name",
		}, scanSubdistrict)
		if err != nil {
			return nil, err
		}
		subdistricts := GroupRows(subRows, KeyOfRow, true)

		places := make(map[DimensionKey]*placeBucket)
		if opt.IncludePlaces {
			placeRows, err := FetchRows(ctx, db, Query{
				Columns: "l.name, l.level, l.state_code, l.district_code, l.subdistrict_code, l.town_village_code",
				Levels:  []Level{LevelTown, LevelVillage},
				Codes:   []int64{state.Code},
			}, scanPlace)
			if err != nil {
				return nil, err
			}
			for _, r := range placeRows {
				parent := r.Key.ParentSubdistrict()
				b := places[parent]
				if b == nil {
					b = &placeBucket{}
					places[parent] = b
				}
				switch Normalize(string(r.Level)) {
				case string(LevelTown):
					b.towns = append(b.towns, r.Name)
				case string(LevelVillage):
					b.villages = append(b.villages, r.Name)
				}
			}
		}

		for _, g := range subdistricts.Groups() {
			node := &Node{Name: g.Name, Key: g.Key}
			if opt.IncludePlaces {
				node.Towns = []string{}
				node.Villages = []string{}
				if b, ok := places[g.Key]; ok {
					node.Towns = b.towns
					node.Villages = b.villages
				}
			}
			parent := g.Key.ParentDistrict()
			subsByDistrict[parent] = append(subsByDistrict[parent], node)
		}
	}

	h := &Hierarchy{State: state, Districts: []*Node{}}
	for _, g := range districts.Groups() {
		node := &Node{Name: g.Name, Key: g.Key}
		if opt.IncludeSubdistricts {
			node.Subdistricts = subsByDistrict[g.Key]
			if node.Subdistricts == nil {
				node.Subdistricts = []*Node{}
			}
		}
		h.Districts = append(h.Districts, node)
	}
	return h, nil
}

type placeBucket struct {
	towns    []string
	villages []string
}

func scanDistrict(rows *sql.Rows) (Row, error) {
	var r Row
	var state, district int64
	if err := rows.Scan(&r.Name, &state, &district); err != nil {
		return r, err
	}
	r.Level = LevelDistrict
	r.Key = DistrictKey(state, district)
	return r, nil
}

func scanSubdistrict(rows *sql.Rows) (Row, error) {
	var r Row
	var state, district, subdistrict int64
	if err := rows.Scan(&r.Name, &state, &district, &subdistrict); err != nil {
		return r, err
	}
	r.Level = LevelSubDistrict
	r.Key = SubdistrictKey(state, district, subdistrict)
	return r, nil
}

func scanPlace(rows *sql.Rows) (Row, error) {
	var r Row
	var level string
	var state, district, subdistrict, place int64
	if err := rows.Scan(&r.Name, &level, &state, &district, &subdistrict, &place); err != nil {
		return r, err
	}
	r.Level = Level(level)
	r.Key = PlaceKey(state, district, subdistrict, place)
	return r, nil
}
