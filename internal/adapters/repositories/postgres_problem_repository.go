package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/platform/obs"
	"github.com/daunfamily/maritime-vrp/internal/ports"
)

// Postgres-backed implementation of the ProblemRepository port.
type PostgresProblemRepository struct{ DB *sql.DB }

func NewPostgresProblemRepository(db *sql.DB) *PostgresProblemRepository {
	return &PostgresProblemRepository{DB: db}
}

// Return the names of all stored instances.
func (r *PostgresProblemRepository) ListProblems(ctx context.Context) ([]string, error) {
	if r.DB == nil {
		return nil, errors.New("postgres problem repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT name FROM instances ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("list problems: query instances table: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0, 16)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list problems: scan row: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list problems: row iteration: %w", err)
	}

	return names, nil
}

// Load one instance with its ports, vessel classes and distances.
func (r *PostgresProblemRepository) LoadProblem(ctx context.Context, name string) (prob *domain.Problem, err error) {
	defer obs.Time(ctx, "postgres_repo.load_problem")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres problem repository: DB is nil")
	}

	f := &InstanceFile{Name: name}
	err = r.DB.QueryRowContext(ctx, `SELECT num_time_steps FROM instances WHERE name = $1;`, name).Scan(&f.NumTimeSteps)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load problem %q: %w", name, ports.ErrProblemNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load problem %q: query instance: %w", name, err)
	}

	if f.Ports, err = r.loadPorts(ctx, name); err != nil {
		return nil, err
	}
	if f.VesselClasses, err = r.loadVesselClasses(ctx, name); err != nil {
		return nil, err
	}
	if f.Distances, err = r.loadDistances(ctx, name, len(f.Ports)); err != nil {
		return nil, err
	}

	return f.Problem()
}

func (r *PostgresProblemRepository) loadPorts(ctx context.Context, name string) ([]PortSeed, error) {
	query := `
	SELECT
		name,
		pickup_demand, delivery_demand,
		pickup_penalty, delivery_penalty,
		pickup_start, pickup_end,
		delivery_start, delivery_end,
		handling_steps
	FROM ports
	WHERE instance = $1
	ORDER BY idx;
	`
	rows, err := r.DB.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("load problem %q: query ports: %w", name, err)
	}
	defer rows.Close()

	var out []PortSeed
	for rows.Next() {
		var p PortSeed
		if err := rows.Scan(&p.Name, &p.PickupDemand, &p.DeliveryDemand, &p.PickupPenalty, &p.DeliveryPenalty,
			&p.PickupWindow.Start, &p.PickupWindow.End, &p.DeliveryWindow.Start, &p.DeliveryWindow.End,
			&p.HandlingSteps); err != nil {
			return nil, fmt.Errorf("load problem %q: scan port: %w", name, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load problem %q: port iteration: %w", name, err)
	}
	return out, nil
}

func (r *PostgresProblemRepository) loadVesselClasses(ctx context.Context, name string) ([]VesselClassSeed, error) {
	query := `
	SELECT
		name, capacity, num_vessels, speed,
		cost_per_mile, cost_per_step, fixed_cost
	FROM vessel_classes
	WHERE instance = $1
	ORDER BY idx;
	`
	rows, err := r.DB.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("load problem %q: query vessel classes: %w", name, err)
	}
	defer rows.Close()

	var out []VesselClassSeed
	for rows.Next() {
		var v VesselClassSeed
		if err := rows.Scan(&v.Name, &v.Capacity, &v.NumVessels, &v.Speed,
			&v.CostPerMile, &v.CostPerStep, &v.FixedCost); err != nil {
			return nil, fmt.Errorf("load problem %q: scan vessel class: %w", name, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load problem %q: vessel class iteration: %w", name, err)
	}
	return out, nil
}

func (r *PostgresProblemRepository) loadDistances(ctx context.Context, name string, n int) ([][]float64, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT from_idx, to_idx, miles FROM distances WHERE instance = $1;`, name)
	if err != nil {
		return nil, fmt.Errorf("load problem %q: query distances: %w", name, err)
	}
	defer rows.Close()

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for rows.Next() {
		var from, to int
		var miles float64
		if err := rows.Scan(&from, &to, &miles); err != nil {
			return nil, fmt.Errorf("load problem %q: scan distance: %w", name, err)
		}
		if from < 0 || from >= n || to < 0 || to >= n {
			return nil, fmt.Errorf("load problem %q: distance %d->%d outside %d ports", name, from, to, n)
		}
		dist[from][to] = miles
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load problem %q: distance iteration: %w", name, err)
	}
	return dist, nil
}
