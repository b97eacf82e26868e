package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/platform/obs"
	"github.com/daunfamily/maritime-vrp/internal/ports"
)

// MasterProblem formulates the restricted master problem over a list of
// columns and delegates the solve. It keeps no state between calls and can
// be shared by concurrently solved branch nodes.
//
// Rows come first for every (port, type) of the row table, bounded by 1 from
// above, or fixed to 1 for the branching equality rows; then one row per
// vessel class bounded by its fleet size. The objective constant is the sum
// of all penalties, so an empty selection costs exactly what serving
// nothing costs.
type MasterProblem struct {
	prob   *domain.Problem
	rows   *domain.RowTable
	solver ports.LinearSolver
}

func NewMasterProblem(prob *domain.Problem, rows *domain.RowTable, solver ports.LinearSolver) *MasterProblem {
	return &MasterProblem{prob: prob, rows: rows, solver: solver}
}

// Rows returns the row table the problem is formulated with.
func (mp *MasterProblem) Rows() *domain.RowTable { return mp.rows }

// SolveLP solves the linear relaxation and returns duals for every row.
func (mp *MasterProblem) SolveLP(ctx context.Context, cols []domain.Column, eq []domain.PortWithType) (sol domain.MPLinearSolution, err error) {
	defer obs.Time(ctx, "master_problem.solve_lp")(&err)

	res, err := mp.solve(ctx, cols, eq, ports.Continuous)
	if err != nil {
		return domain.MPLinearSolution{}, fmt.Errorf("solve lp: %w", err)
	}
	if len(res.Duals) != mp.rows.Len()+mp.prob.NumVesselClasses() {
		return domain.MPLinearSolution{}, fmt.Errorf("solve lp: got %d duals for %d rows: %w",
			len(res.Duals), mp.rows.Len()+mp.prob.NumVesselClasses(), ErrInfeasible)
	}

	sol = domain.MPLinearSolution{
		Objective: res.Objective,
		PortDuals: make(map[*domain.Port]domain.PortDual, mp.prob.NumPorts()-1),
		VcDuals:   make(map[*domain.VesselClass]float64, mp.prob.NumVesselClasses()),
		Variables: res.Primal,
	}
	for row := 0; row < mp.rows.Len(); row++ {
		k := mp.rows.Key(row)
		d := sol.PortDuals[k.Port]
		if k.Type == domain.Pickup {
			d.Pickup = res.Duals[row]
		} else {
			d.Delivery = res.Duals[row]
		}
		sol.PortDuals[k.Port] = d
	}
	for i, vc := range mp.prob.VesselClasses {
		sol.VcDuals[vc] = res.Duals[mp.rows.Len()+i]
	}
	return sol, nil
}

// SolveMIP solves the problem with binary column variables.
func (mp *MasterProblem) SolveMIP(ctx context.Context, cols []domain.Column, eq []domain.PortWithType) (sol domain.MPIntegerSolution, err error) {
	defer obs.Time(ctx, "master_problem.solve_mip")(&err)

	res, err := mp.solve(ctx, cols, eq, ports.Binary)
	if err != nil {
		return domain.MPIntegerSolution{}, fmt.Errorf("solve mip: %w", err)
	}
	return domain.MPIntegerSolution{Objective: res.Objective, Variables: res.Primal, Truncated: res.Truncated}, nil
}

// solve builds and solves the model. Every solver failure, panics
// included, comes out as ErrInfeasible and the handle is always closed.
func (mp *MasterProblem) solve(ctx context.Context, cols []domain.Column, eq []domain.PortWithType, vt ports.VarType) (res *ports.SolverResult, err error) {
	if len(cols) == 0 {
		return nil, ErrEmptyPool
	}
	m, err := mp.Model(cols, eq, vt)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: solver panic: %v", ErrInfeasible, r)
			res = nil
		}
		if err != nil {
			log.WithFields(log.Fields{"run_id": obs.RunID(ctx), "columns": len(cols), "equalities": len(eq)}).
				WithError(err).Warn("master problem solve failed")
		}
	}()

	h, err := mp.solver.Build(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("%w: build model: %w", ErrInfeasible, err)
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			log.WithError(cerr).Warn("close solver handle")
		}
	}()

	res, err = mp.solver.Solve(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInfeasible, err)
	}
	if len(res.Primal) != len(cols) {
		return nil, fmt.Errorf("%w: got %d primal values for %d columns", ErrInfeasible, len(res.Primal), len(cols))
	}
	return res, nil
}

// Model builds the solver independent formulation. Variables follow the
// order of cols.
func (mp *MasterProblem) Model(cols []domain.Column, eq []domain.PortWithType, vt ports.VarType) (*ports.LinearModel, error) {
	nRows := mp.rows.Len()
	nVc := mp.prob.NumVesselClasses()

	m := &ports.LinearModel{
		ObjConstant: mp.prob.TotalPenalty(),
		Obj:         make([]float64, len(cols)),
		VarTypes:    make([]ports.VarType, len(cols)),
		VarNames:    make([]string, len(cols)),
		Rows:        make([]ports.Row, 0, nRows+nVc),
	}

	for _, k := range mp.rows.Keys() {
		m.Rows = append(m.Rows, ports.Row{
			Name:  fmt.Sprintf("%s_%s", k.Type, k.Port.Name),
			Sense: ports.LessEqual,
			RHS:   1,
		})
	}
	for _, e := range eq {
		row, ok := mp.rows.Row(e.Port, e.Type)
		if !ok {
			return nil, fmt.Errorf("model: equality row %s has no master row", e)
		}
		m.Rows[row].Sense = ports.Equal
	}
	for _, vc := range mp.prob.VesselClasses {
		m.Rows = append(m.Rows, ports.Row{
			Name:  "vc_" + vc.Name,
			Sense: ports.LessEqual,
			RHS:   float64(vc.NumVessels),
		})
	}

	for j, c := range cols {
		if len(c.PortCoeff) != nRows || len(c.VcCoeff) != nVc {
			return nil, fmt.Errorf("model: column %d has %d/%d coefficients, want %d/%d",
				j, len(c.PortCoeff), len(c.VcCoeff), nRows, nVc)
		}
		m.Obj[j] = c.ObjCoeff
		m.VarTypes[j] = vt
		m.VarNames[j] = fmt.Sprintf("x_%d", j)
		for row, v := range c.PortCoeff {
			if v != 0 {
				m.Coeffs = append(m.Coeffs, ports.Nonzero{Row: row, Col: j, Val: v})
			}
		}
		for i, v := range c.VcCoeff {
			if v != 0 {
				m.Coeffs = append(m.Coeffs, ports.Nonzero{Row: nRows + i, Col: j, Val: v})
			}
		}
	}
	return m, nil
}
