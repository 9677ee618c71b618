package census

import "strings"

// Level is the administrative tier of a fact row. The locations table
// stores levels as free text ("STATE", "Sub-District", ...), so every
// comparison goes through Normalize.
type Level string

const (
	LevelState       Level = "state"
	LevelDistrict    Level = "district"
	LevelSubDistrict Level = "sub-district"
	LevelTown        Level = "town"
	LevelVillage     Level = "village"
	LevelWard        Level = "ward"
	LevelEB          Level = "eb"
)

// TRU labels as they appear in responses.
const (
	TRUTotal = "total"
	TRURural = "rural"
	TRUUrban = "urban"
)

// truOrder fixes the emission order for nested TRU blocks.
var truOrder = []string{TRUTotal, TRURural, TRUUrban}

// Normalize trims whitespace and lowercases a name, level or TRU value
// so matching is insensitive to either.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseTRU validates an optional tru filter. Empty input means all
// splits; anything outside total/rural/urban is rejected before any
// query is built.
func ParseTRU(s string) (string, error) {
	t := Normalize(s)
	switch t {
	case "", TRUTotal, TRURural, TRUUrban:
		return t, nil
	}
	return "", Validationf("invalid tru value %q: use total, rural or urban", s)
}

// SplitNames parses a comma-separated name list into normalized,
// non-empty values.
func SplitNames(csv string) ([]string, error) {
	var names []string
	for _, part := range strings.Split(csv, ",") {
		if n := Normalize(part); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil, Validationf("no valid names provided")
	}
	return names, nil
}

// DimensionKey identifies one administrative unit at a given level. Only
// the codes relevant to that level are set; the constructors below keep
// a child key's prefix equal to its parent key.
type DimensionKey struct {
	State       int64
	District    int64
	Subdistrict int64
	TownVillage int64
}

func StateKey(state int64) DimensionKey {
	return DimensionKey{State: state}
}

func DistrictKey(state, district int64) DimensionKey {
	return DimensionKey{State: state, District: district}
}

func SubdistrictKey(state, district, subdistrict int64) DimensionKey {
	return DimensionKey{State: state, District: district, Subdistrict: subdistrict}
}

func PlaceKey(state, district, subdistrict, townVillage int64) DimensionKey {
	return DimensionKey{State: state, District: district, Subdistrict: subdistrict, TownVillage: townVillage}
}

// ParentState truncates the key to its state prefix.
func (k DimensionKey) ParentState() DimensionKey {
	return StateKey(k.State)
}

// ParentDistrict truncates the key to its (state, district) prefix.
func (k DimensionKey) ParentDistrict() DimensionKey {
	return DistrictKey(k.State, k.District)
}

// ParentSubdistrict truncates the key to its (state, district,
// subdistrict) prefix.
func (k DimensionKey) ParentSubdistrict() DimensionKey {
	return SubdistrictKey(k.State, k.District, k.Subdistrict)
}
