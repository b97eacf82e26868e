package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/platform/obs"
	"github.com/daunfamily/maritime-vrp/internal/ports"
)

// RowRef names a master row by port name.
type RowRef struct {
	Port string
	Type domain.PickupType
}

// ArcExclusion forbids sailing directly from one row's vertices to another's.
type ArcExclusion struct {
	From RowRef
	To   RowRef
}

type SolveRequest struct {
	Instance     string
	EqualityRows []RowRef
	ExcludedArcs []ArcExclusion
	Params       Params
}

// RouteUsage is a column selected by the integer solution.
type RouteUsage struct {
	VesselClass string
	Route       domain.Route
	Value       float64
	ObjCoeff    float64
	Origin      domain.ColumnOrigin
}

// SolveReport summarises one column generation run on a branch node.
// IntegerError explains a missing MIPObjective when the integer solve ran
// and failed.
type SolveReport struct {
	RunID        string
	Instance     string
	NodeID       string
	State        State
	Rounds       int
	ColumnsAdded int
	PoolSize     int
	ArcsRemoved  int
	LPObjective  *float64
	MIPObjective *float64
	IntegerError string
	MIPTruncated bool
	Routes       []RouteUsage
	Promoted     int
	ExactTime    time.Duration
	Elapsed      time.Duration
}

// SolveInstance builds the branch node described by req, runs column
// generation on it and promotes the columns of the integer solution. An
// infeasible node and a failed integer solve are reported, not returned as
// errors.
func SolveInstance(
	ctx context.Context,
	req SolveRequest,
	ws *Workspace,
	solver ports.LinearSolver,
	reporter ports.PricingReporter,
) (_ *SolveReport, err error) {
	ctx = obs.WithRunID(ctx)
	defer obs.Time(ctx, "solve_instance")(&err)

	prob, global, err := ws.Open(ctx, req.Instance)
	if err != nil {
		return nil, fmt.Errorf("solve instance: %w", err)
	}

	node, removed, err := BuildNode(prob, req.EqualityRows, req.ExcludedArcs)
	if err != nil {
		return nil, fmt.Errorf("solve instance: %w", err)
	}

	cg := NewColumnGeneration(prob, solver, global, reporter, req.Params)
	res, err := cg.Run(ctx, node)
	if err != nil && !(errors.Is(err, ErrInfeasible) && res != nil && res.State == Infeasible) {
		return nil, fmt.Errorf("solve instance: %w", err)
	}

	rep := &SolveReport{
		RunID:        obs.RunID(ctx),
		Instance:     prob.Name,
		NodeID:       res.NodeID,
		State:        res.State,
		Rounds:       res.Rounds,
		ColumnsAdded: res.ColumnsAdded,
		PoolSize:     len(res.Columns),
		ArcsRemoved:  removed,
		ExactTime:    res.ExactTime,
		Elapsed:      res.Elapsed,
	}
	if res.State == Infeasible {
		return rep, nil
	}
	if res.LP != nil {
		obj := res.LP.Objective
		rep.LPObjective = &obj
	}
	if res.MIPErr != nil {
		rep.IntegerError = res.MIPErr.Error()
	}
	if res.MIP == nil {
		return rep, nil
	}

	obj := res.MIP.Objective
	rep.MIPObjective = &obj
	rep.MIPTruncated = res.MIP.Truncated
	var used []domain.Column
	for i, c := range res.Columns {
		if i >= len(res.MIP.Variables) || res.MIP.Variables[i] <= 0.5 {
			continue
		}
		used = append(used, c)
		rep.Routes = append(rep.Routes, RouteUsage{
			VesselClass: c.Route.VesselClass.Name,
			Route:       c.Route,
			Value:       res.MIP.Variables[i],
			ObjCoeff:    c.ObjCoeff,
			Origin:      c.Origin,
		})
	}

	rep.Promoted, err = ws.Promote(ctx, prob.Name, used)
	if err != nil {
		log.WithFields(log.Fields{"run_id": rep.RunID, "instance": prob.Name}).
			WithError(err).Warn("persisting promoted columns failed")
	}
	return rep, nil
}

// BuildNode resolves row references against prob and returns the matching
// root-derived node together with the number of arcs removed.
func BuildNode(prob *domain.Problem, eqs []RowRef, excluded []ArcExclusion) (*BranchNode, int, error) {
	node := NewRootNode(prob)

	ids := make([]string, 0, len(eqs)+len(excluded))
	for _, ref := range eqs {
		row, err := resolveRow(prob, ref)
		if err != nil {
			return nil, 0, err
		}
		node.EqualityRows = append(node.EqualityRows, row)
		ids = append(ids, "eq:"+row.String())
	}

	removed := 0
	for _, ex := range excluded {
		from, err := resolveRow(prob, ex.From)
		if err != nil {
			return nil, 0, err
		}
		to, err := resolveRow(prob, ex.To)
		if err != nil {
			return nil, 0, err
		}
		removed += node.Graphs.RemoveArcsBetween(from, to)
		ids = append(ids, "x:"+from.String()+">"+to.String())
	}

	if len(ids) > 0 {
		node.ID = strings.Join(ids, ",")
	}
	return node, removed, nil
}

func resolveRow(prob *domain.Problem, ref RowRef) (domain.PortWithType, error) {
	if ref.Type != domain.Pickup && ref.Type != domain.Delivery {
		return domain.PortWithType{}, fmt.Errorf("%w: row %q must be pickup or delivery", ErrInvalidRequest, ref.Port)
	}
	for i, p := range prob.Ports {
		if p.Name != ref.Port {
			continue
		}
		if i == 0 {
			return domain.PortWithType{}, fmt.Errorf("%w: hub %q has no master rows", ErrInvalidRequest, ref.Port)
		}
		return domain.PortWithType{Port: p, Type: ref.Type}, nil
	}
	return domain.PortWithType{}, fmt.Errorf("%w: unknown port %q", ErrInvalidRequest, ref.Port)
}
