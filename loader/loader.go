// Package loader populates the census fact store one source row at a
// time. The serving engine depends only on its output: a locations row
// plus its one-to-one metric sub-table rows, all keyed by a
// caller-supplied location id.
package loader

import (
	"context"
	"database/sql"

	"github.com/imranKhanTsx/indian-cences/config"
)

// Execer is satisfied by both *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Location is the identity portion of one source row.
type Location struct {
	StateCode       int64
	DistrictCode    int64
	SubdistrictCode int64
	TownVillageCode int64
	WardCode        int64
	EBCode          int64
	Level           string
	Name            string
	TRU             string
}

// HouseholdsPopulation mirrors the households_and_population sub-table.
type HouseholdsPopulation struct {
	Households int64
	TotP       int64
	TotM       int64
	TotF       int64
	P06        int64
	M06        int64
	F06        int64
}

// CasteTribe mirrors the scheduled_caste_tribe sub-table.
type CasteTribe struct {
	PSC int64
	MSC int64
	FSC int64
	PST int64
	MST int64
	FST int64
}

// Literacy mirrors the literacy sub-table.
type Literacy struct {
	PLit int64
	MLit int64
	FLit int64
	PIll int64
	MIll int64
	FIll int64
}

// WorkersTotal mirrors the workers_total sub-table.
type WorkersTotal struct {
	TotWorkP int64
	TotWorkM int64
	TotWorkF int64
	NonWorkP int64
	NonWorkM int64
	NonWorkF int64
}

// CategoryCounts is one person/male/female triple per worker category.
type CategoryCounts struct {
	WorkP int64
	WorkM int64
	WorkF int64
	ClP   int64
	ClM   int64
	ClF   int64
	AlP   int64
	AlM   int64
	AlF   int64
	HhP   int64
	HhM   int64
	HhF   int64
	OtP   int64
	OtM   int64
	OtF   int64
}

// MarginalWorkers mirrors the marginal_workers sub-table: overall
// category counts plus the 3-6 and 0-3 month duration bands.
type MarginalWorkers struct {
	Overall    CategoryCounts
	Months3To6 CategoryCounts
	Months0To3 CategoryCounts
}

// Record is one complete source row.
type Record struct {
	Location        Location
	Households      HouseholdsPopulation
	CasteTribe      CasteTribe
	Literacy        Literacy
	Workers         WorkersTotal
	MainWorkers     CategoryCounts
	MarginalWorkers MarginalWorkers
}

func InsertLocation(ctx context.Context, db Execer, id int64, loc Location) error {
	_, err := db.ExecContext(ctx, `
        INSERT INTO locations (
            id, state_code, district_code, subdistrict_code,
            town_village_code, ward_code, eb_code,
            level, name, tru
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, loc.StateCode, loc.DistrictCode, loc.SubdistrictCode,
		loc.TownVillageCode, loc.WardCode, loc.EBCode,
		loc.Level, loc.Name, loc.TRU)
	return err
}

func InsertHouseholdsPopulation(ctx context.Context, db Execer, id int64, h HouseholdsPopulation) error {
	_, err := db.ExecContext(ctx, `
        INSERT INTO households_and_population (
            location_id, no_hh, tot_p, tot_m, tot_f,
            p_06, m_06, f_06
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, h.Households, h.TotP, h.TotM, h.TotF, h.P06, h.M06, h.F06)
	return err
}

func InsertCasteTribe(ctx context.Context, db Execer, id int64, c CasteTribe) error {
	_, err := db.ExecContext(ctx, `
        INSERT INTO scheduled_caste_tribe (
            location_id,
            p_sc, m_sc, f_sc,
            p_st, m_st, f_st
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, c.PSC, c.MSC, c.FSC, c.PST, c.MST, c.FST)
	return err
}

func InsertLiteracy(ctx context.Context, db Execer, id int64, l Literacy) error {
	_, err := db.ExecContext(ctx, `
        INSERT INTO literacy (
            location_id,
            p_lit, m_lit, f_lit,
            p_ill, m_ill, f_ill
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, l.PLit, l.MLit, l.FLit, l.PIll, l.MIll, l.FIll)
	return err
}

func InsertWorkersTotal(ctx context.Context, db Execer, id int64, w WorkersTotal) error {
	_, err := db.ExecContext(ctx, `
        INSERT INTO workers_total (
            location_id,
            tot_work_p, tot_work_m, tot_work_f,
            non_work_p, non_work_m, non_work_f
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, w.TotWorkP, w.TotWorkM, w.TotWorkF, w.NonWorkP, w.NonWorkM, w.NonWorkF)
	return err
}

func InsertMainWorkers(ctx context.Context, db Execer, id int64, m CategoryCounts) error {
	_, err := db.ExecContext(ctx, `
        INSERT INTO main_workers (
            location_id,
            mainwork_p, mainwork_m, mainwork_f,
            main_cl_p, main_cl_m, main_cl_f,
            main_al_p, main_al_m, main_al_f,
            main_hh_p, main_hh_m, main_hh_f,
            main_ot_p, main_ot_m, main_ot_f
        ) VALUES (
            $1, $2, $3, $4,
            $5, $6, $7,
            $8, $9, $10,
            $11, $12, $13,
            $14, $15, $16
        )`,
		append([]interface{}{id}, categoryArgs(m)...)...)
	return err
}

func InsertMarginalWorkers(ctx context.Context, db Execer, id int64, m MarginalWorkers) error {
	args := []interface{}{id}
	args = append(args, categoryArgs(m.Overall)...)
	args = append(args, categoryArgs(m.Months3To6)...)
	args = append(args, categoryArgs(m.Months0To3)...)
	_, err := db.ExecContext(ctx, `
        INSERT INTO marginal_workers (
            location_id,
            margwork_p, margwork_m, margwork_f,
            marg_cl_p, marg_cl_m, marg_cl_f,
            marg_al_p, marg_al_m, marg_al_f,
            marg_hh_p, marg_hh_m, marg_hh_f,
            marg_ot_p, marg_ot_m, marg_ot_f,
            margwork_3_6_p, margwork_3_6_m, margwork_3_6_f,
            marg_cl_3_6_p, marg_cl_3_6_m, marg_cl_3_6_f,
            marg_al_3_6_p, marg_al_3_6_m, marg_al_3_6_f,
            marg_hh_3_6_p, marg_hh_3_6_m, marg_hh_3_6_f,
            marg_ot_3_6_p, marg_ot_3_6_m, marg_ot_3_6_f,
            margwork_0_3_p, margwork_0_3_m, margwork_0_3_f,
            marg_cl_0_3_p, marg_cl_0_3_m, marg_cl_0_3_f,
            marg_al_0_3_p, marg_al_0_3_m, marg_al_0_3_f,
            marg_hh_0_3_p, marg_hh_0_3_m, marg_hh_0_3_f,
            marg_ot_0_3_p, marg_ot_0_3_m, marg_ot_0_3_f
        ) VALUES (
            $1, $2, $3, $4,
            $5, $6, $7,
            $8, $9, $10,
            $11, $12, $13,
            $14, $15, $16,
            $17, $18, $19,
            $20, $21, $22,
            $23, $24, $25,
            $26, $27, $28,
            $29, $30, $31,
            $32, $33, $34,
            $35, $36, $37,
            $38, $39, $40,
            $41, $42, $43,
            $44, $45, $46
        )`,
		args...)
	return err
}

func categoryArgs(m CategoryCounts) []interface{} {
	return []interface{}{
		m.WorkP, m.WorkM, m.WorkF,
		m.ClP, m.ClM, m.ClF,
		m.AlP, m.AlM, m.AlF,
		m.HhP, m.HhM, m.HhF,
		m.OtP, m.OtM, m.OtF,
	}
}

// InsertRecord writes one complete source row atomically.
func InsertRecord(ctx context.Context, db *sql.DB, id int64, rec Record) error {
	return config.WithTransaction(ctx, db, func(tx *sql.Tx) error {
		if err := InsertLocation(ctx, tx, id, rec.Location); err != nil {
			return err
		}
		if err := InsertHouseholdsPopulation(ctx, tx, id, rec.Households); err != nil {
			return err
		}
		if err := InsertCasteTribe(ctx, tx, id, rec.CasteTribe); err != nil {
			return err
		}
		if err := InsertLiteracy(ctx, tx, id, rec.Literacy); err != nil {
			return err
		}
		if err := InsertWorkersTotal(ctx, tx, id, rec.Workers); err != nil {
			return err
		}
		if err := InsertMainWorkers(ctx, tx, id, rec.MainWorkers); err != nil {
			return err
		}
		return InsertMarginalWorkers(ctx, tx, id, rec.MarginalWorkers)
	})
}
