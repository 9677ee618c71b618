package census

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func districtQuery(code int64) Query {
	return Query{
		Columns: "l.name, l.state_code, l.district_code",
		Levels:  []Level{LevelDistrict},
		Codes:   []int64{code},
		OrderBy: "l.name",
	}
}

func subdistrictQuery(code int64) Query {
	return Query{
		Columns: "l.name, l.state_code, l.district_code, l.subdistrict_code",
		Levels:  []Level{LevelSubDistrict},
		Codes:   []int64{code},
		OrderBy: "l.name",
	}
}

func placeQuery(code int64) Query {
	return Query{
		Columns: "l.name, l.level, l.state_code, l.district_code, l.subdistrict_code, l.town_village_code",
		Levels:  []Level{LevelTown, LevelVillage},
		Codes:   []int64{code},
	}
}

func TestAssembleHierarchyFullTree(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dsql, _ := districtQuery(29).SQL()
	mock.ExpectQuery(regexp.QuoteMeta(dsql)).
		WithArgs("district", pq.Array([]int64{29})).
		WillReturnRows(sqlmock.NewRows([]string{"name", "state_code", "district_code"}).
			AddRow("Bangalore", int64(29), int64(572)).
			AddRow("Mysore", int64(29), int64(577)))

	ssql, _ := subdistrictQuery(29).SQL()
	mock.ExpectQuery(regexp.QuoteMeta(ssql)).
		WithArgs("sub-district", pq.Array([]int64{29})).
		WillReturnRows(sqlmock.NewRows([]string{"name", "state_code", "district_code", "subdistrict_code"}).
			AddRow("Anekal", int64(29), int64(572), int64(5596)))

	psql, _ := placeQuery(29).SQL()
	mock.ExpectQuery(regexp.QuoteMeta(psql)).
		WithArgs(pq.Array([]string{"town", "village"}), pq.Array([]int64{29})).
		WillReturnRows(sqlmock.NewRows([]string{"name", "level", "state_code", "district_code", "subdistrict_code", "town_village_code"}).
			AddRow("Attibele", "Town", int64(29), int64(572), int64(5596), int64(803131)).
			AddRow("Bidaraguppe", "Village", int64(29), int64(572), int64(5596), int64(612101)))

	h, err := AssembleHierarchy(context.Background(), db, Ref{Code: 29, Name: "KARNATAKA"},
		HierarchyOptions{IncludeSubdistricts: true, IncludePlaces: true})
	require.NoError(t, err)
	require.Len(t, h.Districts, 2)

	bangalore := h.Districts[0]
	assert.Equal(t, "Bangalore", bangalore.Name)
	require.Len(t, bangalore.Subdistricts, 1)

	anekal := bangalore.Subdistricts[0]
	assert.Equal(t, "Anekal", anekal.Name)
	assert.Equal(t, []string{"Attibele"}, anekal.Towns)
	assert.Equal(t, []string{"Bidaraguppe"}, anekal.Villages)

	// Districts with no sub-districts still carry an empty list.
	assert.Equal(t, []*Node{}, h.Districts[1].Subdistricts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssembleHierarchyDedupsTRURows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dsql, _ := districtQuery(29).SQL()
	mock.ExpectQuery(regexp.QuoteMeta(dsql)).
		WithArgs("district", pq.Array([]int64{29})).
		WillReturnRows(sqlmock.NewRows([]string{"name", "state_code", "district_code"}).
			AddRow("Bangalore", int64(29), int64(572)).
			AddRow("Bangalore", int64(29), int64(572)).
			AddRow("Bangalore", int64(29), int64(572)))

	h, err := AssembleHierarchy(context.Background(), db, Ref{Code: 29, Name: "KARNATAKA"},
		HierarchyOptions{})
	require.NoError(t, err)
	require.Len(t, h.Districts, 1)
	assert.Equal(t, "Bangalore", h.Districts[0].Name)
}

func TestAssembleHierarchyDropsUnknownPlaceLevel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dsql, _ := districtQuery(29).SQL()
	mock.ExpectQuery(regexp.QuoteMeta(dsql)).
		WithArgs("district", pq.Array([]int64{29})).
		WillReturnRows(sqlmock.NewRows([]string{"name", "state_code", "district_code"}).
			AddRow("Bangalore", int64(29), int64(572)))

	ssql, _ := subdistrictQuery(29).SQL()
	mock.ExpectQuery(regexp.QuoteMeta(ssql)).
		WithArgs("sub-district", pq.Array([]int64{29})).
		WillReturnRows(sqlmock.NewRows([]string{"name", "state_code", "district_code", "subdistrict_code"}).
			AddRow("Anekal", int64(29), int64(572), int64(5596)))

	psql, _ := placeQuery(29).SQL()
	mock.ExpectQuery(regexp.QuoteMeta(psql)).
		WithArgs(pq.Array([]string{"town", "village"}), pq.Array([]int64{29})).
		WillReturnRows(sqlmock.NewRows([]string{"name", "level", "state_code", "district_code", "subdistrict_code", "town_village_code"}).
			AddRow("Attibele", "Town", int64(29), int64(572), int64(5596), int64(803131)).
			AddRow("Oddball", "Hamlet", int64(29), int64(572), int64(5596), int64(999999)))

	h, err := AssembleHierarchy(context.Background(), db, Ref{Code: 29, Name: "KARNATAKA"},
		HierarchyOptions{IncludeSubdistricts: true, IncludePlaces: true})
	require.NoError(t, err)

	anekal := h.Districts[0].Subdistricts[0]
	assert.Equal(t, []string{"Attibele"}, anekal.Towns)
	assert.Empty(t, anekal.Villages)
}

func TestAssembleHierarchyOptOutLevelsNeverFetched(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dsql, _ := districtQuery(29).SQL()
	mock.ExpectQuery(regexp.QuoteMeta(dsql)).
		WithArgs("district", pq.Array([]int64{29})).
		WillReturnRows(sqlmock.NewRows([]string{"name", "state_code", "district_code"}).
			AddRow("Bangalore", int64(29), int64(572)))

	h, err := AssembleHierarchy(context.Background(), db, Ref{Code: 29, Name: "KARNATAKA"},
		HierarchyOptions{IncludeSubdistricts: false, IncludePlaces: true})
	require.NoError(t, err)
	require.Len(t, h.Districts, 1)
	assert.Nil(t, h.Districts[0].Subdistricts)

	// Only the district query may have run.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssembleHierarchyPrefixLinking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dsql, _ := districtQuery(29).SQL()
	mock.ExpectQuery(regexp.QuoteMeta(dsql)).
		WithArgs("district", pq.Array([]int64{29})).
		WillReturnRows(sqlmock.NewRows([]string{"name", "state_code", "district_code"}).
			AddRow("Bangalore", int64(29), int64(572)).
			AddRow("Mysore", int64(29), int64(577)))

	ssql, _ := subdistrictQuery(29).SQL()
	mock.ExpectQuery(regexp.QuoteMeta(ssql)).
		WithArgs("sub-district", pq.Array([]int64{29})).
		WillReturnRows(sqlmock.NewRows([]string{"name", "state_code", "district_code", "subdistrict_code"}).
			AddRow("Anekal", int64(29), int64(572), int64(5596)).
			AddRow("Nanjangud", int64(29), int64(577), int64(5612)))

	h, err := AssembleHierarchy(context.Background(), db, Ref{Code: 29, Name: "KARNATAKA"},
		HierarchyOptions{IncludeSubdistricts: true})
	require.NoError(t, err)

	require.Len(t, h.Districts, 2)
	require.Len(t, h.Districts[0].Subdistricts, 1)
	assert.Equal(t, "Anekal", h.Districts[0].Subdistricts[0].Name)
	require.Len(t, h.Districts[1].Subdistricts, 1)
	assert.Equal(t, "Nanjangud", h.Districts[1].Subdistricts[0].Name)
}
