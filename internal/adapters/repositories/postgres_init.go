package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
)

// Initialize the Postgres database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createInstancesQuery := `
	CREATE TABLE IF NOT EXISTS instances (
		name TEXT PRIMARY KEY,
		num_time_steps INTEGER NOT NULL
	);
	`

	createPortsQuery := `
	CREATE TABLE IF NOT EXISTS ports (
		instance TEXT NOT NULL REFERENCES instances(name) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		name TEXT NOT NULL,
		pickup_demand DOUBLE PRECISION NOT NULL,
		delivery_demand DOUBLE PRECISION NOT NULL,
		pickup_penalty DOUBLE PRECISION NOT NULL,
		delivery_penalty DOUBLE PRECISION NOT NULL,
		pickup_start INTEGER NOT NULL,
		pickup_end INTEGER NOT NULL,
		delivery_start INTEGER NOT NULL,
		delivery_end INTEGER NOT NULL,
		handling_steps INTEGER NOT NULL,
		PRIMARY KEY (instance, idx)
	);
	`

	createVesselClassesQuery := `
	CREATE TABLE IF NOT EXISTS vessel_classes (
		instance TEXT NOT NULL REFERENCES instances(name) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		name TEXT NOT NULL,
		capacity DOUBLE PRECISION NOT NULL,
		num_vessels INTEGER NOT NULL,
		speed DOUBLE PRECISION NOT NULL,
		cost_per_mile DOUBLE PRECISION NOT NULL,
		cost_per_step DOUBLE PRECISION NOT NULL,
		fixed_cost DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (instance, idx)
	);
	`

	createDistancesQuery := `
	CREATE TABLE IF NOT EXISTS distances (
		instance TEXT NOT NULL REFERENCES instances(name) ON DELETE CASCADE,
		from_idx INTEGER NOT NULL,
		to_idx INTEGER NOT NULL,
		miles DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (instance, from_idx, to_idx)
	);
	`

	createColumnCacheQuery := `
	CREATE TABLE IF NOT EXISTS column_cache (
		instance TEXT NOT NULL,
		column_key TEXT NOT NULL,
		route TEXT NOT NULL,
		PRIMARY KEY (instance, column_key)
	);
	`

	statements := []string{
		createInstancesQuery,
		createPortsQuery,
		createVesselClassesQuery,
		createDistancesQuery,
		createColumnCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the database with one instance from a JSON file. An instance of
// the same name is replaced.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed instance: read %q: %w", jsonPath, err)
	}

	f, err := ParseInstance(bytes)
	if err != nil {
		return fmt.Errorf("seed instance: %w", err)
	}
	// validate before touching the database
	if _, err := f.Problem(); err != nil {
		return fmt.Errorf("seed instance: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed instance: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM instances WHERE name = $1;`, f.Name); err != nil {
		return fmt.Errorf("seed instance: delete %q: %w", f.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO instances (name, num_time_steps) VALUES ($1, $2);`, f.Name, f.NumTimeSteps); err != nil {
		return fmt.Errorf("seed instance: insert %q: %w", f.Name, err)
	}

	portQuery := `
	INSERT INTO ports (
		instance, idx, name,
		pickup_demand, delivery_demand,
		pickup_penalty, delivery_penalty,
		pickup_start, pickup_end,
		delivery_start, delivery_end,
		handling_steps
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	for i, p := range f.Ports {
		if _, err := tx.ExecContext(ctx, portQuery, f.Name, i, p.Name,
			p.PickupDemand, p.DeliveryDemand, p.PickupPenalty, p.DeliveryPenalty,
			p.PickupWindow.Start, p.PickupWindow.End, p.DeliveryWindow.Start, p.DeliveryWindow.End,
			p.HandlingSteps); err != nil {
			return fmt.Errorf("seed instance: insert port #%d %q: %w", i, p.Name, err)
		}
	}

	vcQuery := `
	INSERT INTO vessel_classes (
		instance, idx, name, capacity, num_vessels, speed,
		cost_per_mile, cost_per_step, fixed_cost
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	for i, v := range f.VesselClasses {
		if _, err := tx.ExecContext(ctx, vcQuery, f.Name, i, v.Name, v.Capacity, v.NumVessels, v.Speed,
			v.CostPerMile, v.CostPerStep, v.FixedCost); err != nil {
			return fmt.Errorf("seed instance: insert vessel class #%d %q: %w", i, v.Name, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO distances (instance, from_idx, to_idx, miles) VALUES ($1, $2, $3, $4);`)
	if err != nil {
		return fmt.Errorf("seed instance: prepare distances: %w", err)
	}
	defer stmt.Close()

	for i, row := range f.Distances {
		for j, d := range row {
			if _, err := stmt.ExecContext(ctx, f.Name, i, j, d); err != nil {
				return fmt.Errorf("seed instance: insert distance %d->%d: %w", i, j, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed instance: commit tx: %w", err)
	}

	return nil
}
