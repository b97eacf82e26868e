package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/graph"
	"github.com/daunfamily/maritime-vrp/internal/platform/obs"
	"github.com/daunfamily/maritime-vrp/internal/pool"
	"github.com/daunfamily/maritime-vrp/internal/ports"
)

// State is where the column generation of a node stands.
type State int

const (
	// Continue means the budget ran out while columns were still being added.
	Continue State = iota
	Converged
	Infeasible
)

func (s State) String() string {
	switch s {
	case Converged:
		return "converged"
	case Infeasible:
		return "infeasible"
	default:
		return "continue"
	}
}

// BranchNode is one node of the branch-and-price tree. It owns its graphs
// and its pool.
type BranchNode struct {
	ID           string
	EqualityRows []domain.PortWithType
	Graphs       graph.GraphMap
	Pool         *pool.ColumnPool
}

// NewRootNode builds the unrestricted node of a problem.
func NewRootNode(prob *domain.Problem) *BranchNode {
	return &BranchNode{ID: "root", Graphs: graph.BuildMap(prob), Pool: pool.NewColumnPool()}
}

// WithEquality returns a child node whose row (Port, Type) must hold with
// equality. The child gets copies of the graphs and of the pool.
func (n *BranchNode) WithEquality(id string, eq domain.PortWithType) *BranchNode {
	rows := make([]domain.PortWithType, 0, len(n.EqualityRows)+1)
	rows = append(append(rows, n.EqualityRows...), eq)
	return &BranchNode{ID: id, EqualityRows: rows, Graphs: n.Graphs.Clone(), Pool: n.Pool.Clone()}
}

type Params struct {
	MaxRounds    int
	TimeLimit    time.Duration
	SolveInteger bool
	Pricing      PricingParams
}

func DefaultParams() Params {
	return Params{MaxRounds: 1000, TimeLimit: 10 * time.Minute, SolveInteger: true, Pricing: DefaultPricingParams()}
}

// Result describes a column generation run. Columns is the pool the last
// master problem was built from, in variable order. MIPErr is set when the
// integer solve ran and failed; LP is still valid then.
type Result struct {
	NodeID       string
	State        State
	Rounds       int
	ColumnsAdded int
	LP           *domain.MPLinearSolution
	MIP          *domain.MPIntegerSolution
	MIPErr       error
	Columns      []domain.Column
	ExactTime    time.Duration
	Elapsed      time.Duration
}

// ColumnGeneration alternates master problem and pricing on a branch node
// until pricing finds nothing or the budget is spent.
type ColumnGeneration struct {
	prob     *domain.Problem
	rows     *domain.RowTable
	master   *MasterProblem
	global   *pool.GlobalPool
	reporter ports.PricingReporter
	params   Params
}

// NewColumnGeneration wires the engine. global may be nil when columns are
// not shared between nodes.
func NewColumnGeneration(prob *domain.Problem, solver ports.LinearSolver, global *pool.GlobalPool, reporter ports.PricingReporter, params Params) *ColumnGeneration {
	rows := domain.NewRowTable(prob)
	return &ColumnGeneration{
		prob:     prob,
		rows:     rows,
		master:   NewMasterProblem(prob, rows, solver),
		global:   global,
		reporter: reporter,
		params:   params,
	}
}

func (cg *ColumnGeneration) Master() *MasterProblem { return cg.master }

// Run solves the linear relaxation of node by column generation. Only the
// columns whose routes the node's graphs admit enter the master problem. An
// infeasible master problem ends the run with state Infeasible and an error
// wrapping ErrInfeasible.
func (cg *ColumnGeneration) Run(ctx context.Context, node *BranchNode) (res *Result, err error) {
	ctx = obs.WithRunID(ctx)
	defer obs.Time(ctx, "column_generation.run")(&err)

	start := time.Now()
	res = &Result{NodeID: node.ID, State: Continue}
	defer func() { res.Elapsed = time.Since(start) }()

	entry := log.WithFields(log.Fields{"run_id": obs.RunID(ctx), "node": node.ID})

	var global pool.Reader
	if cg.global != nil {
		global = cg.global
	}

	n, err := cg.Seed(node, cg.admitted(node, global))
	if err != nil {
		return res, fmt.Errorf("column generation: node %s: %w", node.ID, err)
	}
	if n > 0 {
		entry.WithField("columns", n).Debug("seeded node pool")
	}

	tryElementary := false
	for {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("column generation: node %s: %w", node.ID, err)
		}
		if cg.params.MaxRounds > 0 && res.Rounds >= cg.params.MaxRounds {
			entry.WithField("rounds", res.Rounds).Info("round limit reached")
			break
		}
		if cg.params.TimeLimit > 0 && time.Since(start) >= cg.params.TimeLimit {
			entry.WithField("rounds", res.Rounds).Info("time limit reached")
			break
		}

		cols := cg.admitted(node, global)
		sol, err := cg.master.SolveLP(ctx, cols, node.EqualityRows)
		if err != nil {
			res.State = Infeasible
			return res, fmt.Errorf("column generation: node %s: %w", node.ID, err)
		}
		res.Rounds++
		res.LP = &sol
		res.Columns = cols

		sp := NewSPSolver(cg.prob, cg.rows, node.Graphs, sol, cg.params.Pricing, cg.reporter, node.ID)
		added, origin, err := sp.Solve(ctx, node.Pool, global, tryElementary, &res.ExactTime)
		if err != nil {
			return res, fmt.Errorf("column generation: node %s: pricing: %w", node.ID, err)
		}
		if added == 0 && !tryElementary {
			tryElementary = true
			added, origin, err = sp.Solve(ctx, node.Pool, global, tryElementary, &res.ExactTime)
			if err != nil {
				return res, fmt.Errorf("column generation: node %s: pricing: %w", node.ID, err)
			}
		}
		entry.WithFields(log.Fields{
			"round":     res.Rounds,
			"objective": sol.Objective,
			"added":     added,
			"origin":    origin.String(),
		}).Debug("column generation round")

		if added == 0 {
			res.State = Converged
			break
		}
		res.ColumnsAdded += added
	}

	if res.State == Converged && cg.params.SolveInteger {
		mip, err := cg.master.SolveMIP(ctx, res.Columns, node.EqualityRows)
		switch {
		case err == nil:
			res.MIP = &mip
		case ctx.Err() != nil:
			return res, fmt.Errorf("column generation: node %s: integer solve: %w", node.ID, err)
		default:
			res.MIPErr = err
			entry.WithError(err).Warn("integer solve failed, keeping the linear relaxation only")
		}
	}

	entry.WithFields(log.Fields{"state": res.State.String(), "rounds": res.Rounds, "columns": len(res.Columns)}).Info("column generation done")
	return res, nil
}

// Seed adds a single-visit route to the node pool for every row the
// existing columns leave uncovered and for every equality row, using the
// cheapest vessel class and time step that can serve the row alone. It
// returns the number of columns added, or ErrEmptyPool if the node ends up
// with no column at all.
func (cg *ColumnGeneration) Seed(node *BranchNode, existing []domain.Column) (int, error) {
	type best struct {
		g    *graph.Graph
		v    int
		cost float64
	}
	cheapest := make([]*best, cg.rows.Len())

	need := make([]bool, cg.rows.Len())
	for r := range need {
		need[r] = true
	}
	for _, c := range existing {
		for r, v := range c.PortCoeff {
			if v > 0 {
				need[r] = false
			}
		}
	}
	for _, eq := range node.EqualityRows {
		if r, ok := cg.rows.Row(eq.Port, eq.Type); ok {
			need[r] = true
		}
	}

	for _, g := range node.Graphs.Ordered(cg.prob) {
		for _, a := range g.Successors(g.Source()) {
			back, ok := g.Arc(a.To, g.Sink())
			if !ok {
				continue
			}
			n := g.Vertex(a.To).Node
			if n.Demand() > g.VesselClass().Capacity+1e-9 {
				continue
			}
			r, ok := cg.rows.RowOf(n)
			if !ok || !need[r] {
				continue
			}
			cost := g.VesselClass().FixedCost + a.Cost + back.Cost
			if b := cheapest[r]; b == nil || cost < b.cost {
				cheapest[r] = &best{g: g, v: a.To, cost: cost}
			}
		}
	}

	added := 0
	for _, b := range cheapest {
		if b == nil {
			continue
		}
		route, err := b.g.RouteOf([]int{b.g.Source(), b.v, b.g.Sink()})
		if err != nil {
			continue
		}
		col, err := domain.NewColumn(cg.prob, cg.rows, route, domain.OriginInitial)
		if err != nil {
			continue
		}
		if node.Pool.Insert(col) {
			added++
		}
	}
	if added == 0 && len(existing) == 0 {
		return 0, ErrEmptyPool
	}
	return added, nil
}

// admitted merges the global and node pools and drops the columns whose
// routes the node's graphs no longer admit.
func (cg *ColumnGeneration) admitted(node *BranchNode, global pool.Reader) []domain.Column {
	merged := pool.Merge(global, node.Pool)
	cols := make([]domain.Column, 0, len(merged))
	for _, c := range merged {
		if node.Graphs.Admits(c.Route) {
			cols = append(cols, c)
		}
	}
	return cols
}
