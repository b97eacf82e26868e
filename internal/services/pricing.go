package services

import (
	"context"
	"math/rand"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/graph"
	"github.com/daunfamily/maritime-vrp/internal/platform/obs"
	"github.com/daunfamily/maritime-vrp/internal/pool"
	"github.com/daunfamily/maritime-vrp/internal/ports"
)

type PricingParams struct {
	// MaxColumns caps the columns added per round, most negative first.
	MaxColumns int
	// HeuristicIterations is the number of greedy walks per vessel class.
	HeuristicIterations int
	// HeuristicTopK is how many cheapest successors a randomized walk picks from.
	HeuristicTopK int
	// LocalSearchColumns is how many pool columns per vessel class seed the
	// local search.
	LocalSearchColumns int
	// ExactTimeLimit bounds the exact phase of one round. Zero means no limit.
	ExactTimeLimit time.Duration
	Schedule       ElementaritySchedule
	Seed           int64
}

func DefaultPricingParams() PricingParams {
	return PricingParams{
		MaxColumns:          50,
		HeuristicIterations: 20,
		HeuristicTopK:       3,
		LocalSearchColumns:  5,
		ExactTimeLimit:      30 * time.Second,
		Schedule:            DefaultElementaritySchedule(),
		Seed:                1,
	}
}

// SPSolver is the pricing subproblem of one round: it searches the graphs
// of a branch node for routes with negative reduced cost under the duals of
// the last master problem.
type SPSolver struct {
	prob     *domain.Problem
	rows     *domain.RowTable
	graphs   graph.GraphMap
	pc       *priceContext
	params   PricingParams
	reporter ports.PricingReporter
	nodeID   string
}

func NewSPSolver(prob *domain.Problem, rows *domain.RowTable, graphs graph.GraphMap, duals domain.MPLinearSolution,
	params PricingParams, reporter ports.PricingReporter, nodeID string) *SPSolver {
	if reporter == nil {
		reporter = NewLogReporter(log.StandardLogger())
	}
	return &SPSolver{
		prob:     prob,
		rows:     rows,
		graphs:   graphs,
		pc:       newPriceContext(prob, rows, duals),
		params:   params,
		reporter: reporter,
		nodeID:   nodeID,
	}
}

// candidate is a priced path waiting for classification.
type candidate struct {
	pricedPath
	origin domain.ColumnOrigin
}

// round classifies the candidates of one Solve call and keeps the counters.
type round struct {
	sp     *SPSolver
	node   *pool.ColumnPool
	global pool.Reader
	seen   *pool.ColumnPool
	report ports.PricingReport
}

// admit classifies candidates, most negative first, and inserts the
// improving new ones into the node pool until MaxColumns is reached.
func (r *round) admit(cands []candidate) int {
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].cost < cands[j].cost })

	added := 0
	for _, c := range cands {
		if r.sp.params.MaxColumns > 0 && added >= r.sp.params.MaxColumns {
			break
		}
		r.report.Generated++
		if c.cost >= -reducedCostEps {
			r.report.DiscardedPrc++
			continue
		}
		route, err := c.graph.RouteOf(c.path)
		if err != nil || !route.IsElementary() || !route.CapacityFeasible() || !route.TimeFeasible(r.sp.prob) {
			r.report.DiscardedInfeasible++
			continue
		}
		col, err := domain.NewColumn(r.sp.prob, r.sp.rows, route, c.origin)
		if err != nil {
			r.report.DiscardedInfeasible++
			continue
		}
		if pool.Contains(col, r.node, r.global, r.seen) {
			r.report.DiscardedInPool++
			continue
		}
		r.seen.Insert(col)
		r.node.Insert(col)
		r.report.Accepted++
		added++
	}
	return added
}

// Solve runs the heuristics and, if they find nothing, the exact labeling.
// It returns the number of columns added to nodePool and which phase
// produced them; zero columns is the convergence signal. timeSpent
// accumulates the time of the exact phase.
func (sp *SPSolver) Solve(ctx context.Context, nodePool *pool.ColumnPool, globalPool pool.Reader, tryElementary bool, timeSpent *time.Duration) (added int, origin domain.ColumnOrigin, err error) {
	defer obs.Time(ctx, "pricing.solve")(&err)
	start := time.Now()

	r := &round{
		sp:     sp,
		node:   nodePool,
		global: globalPool,
		seen:   pool.NewColumnPool(),
		report: ports.PricingReport{NodeID: sp.nodeID},
	}
	defer func() {
		r.report.Origin = origin
		r.report.Elapsed = time.Since(start)
		sp.reporter.Report(r.report)
	}()

	if added = r.admit(sp.heuristicCandidates(nodePool, globalPool)); added > 0 {
		return added, domain.OriginHeuristic, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, domain.OriginNone, err
	}

	exactStart := time.Now()
	added = sp.exact(ctx, r, tryElementary)
	if timeSpent != nil {
		*timeSpent += time.Since(exactStart)
	}
	if added > 0 {
		return added, domain.OriginExact, nil
	}
	return 0, domain.OriginNone, ctx.Err()
}

func (sp *SPSolver) heuristicCandidates(nodePool *pool.ColumnPool, globalPool pool.Reader) []candidate {
	var cands []candidate
	rng := rand.New(rand.NewSource(sp.params.Seed))

	for _, g := range sp.graphs.Ordered(sp.prob) {
		for it := 0; it < sp.params.HeuristicIterations; it++ {
			topK := sp.params.HeuristicTopK
			if it == 0 {
				topK = 1
			}
			path := greedyWalk(sp.pc, g, topK, rng)
			if path == nil {
				continue
			}
			cost, ok := sp.pc.pathCost(g, path)
			if !ok {
				continue
			}
			cands = append(cands, candidate{pricedPath{g, path, cost}, domain.OriginHeuristic})
		}

		for _, seed := range sp.localSearchSeeds(g, nodePool, globalPool) {
			for _, path := range neighbours(sp.pc, g, seed) {
				cost, ok := sp.pc.pathCost(g, path)
				if !ok {
					continue
				}
				cands = append(cands, candidate{pricedPath{g, path, cost}, domain.OriginHeuristic})
			}
		}
	}
	return cands
}

// localSearchSeeds picks the pool columns of g's vessel class with the
// lowest reduced cost whose route still maps onto g.
func (sp *SPSolver) localSearchSeeds(g *graph.Graph, nodePool *pool.ColumnPool, globalPool pool.Reader) [][]int {
	type seed struct {
		path []int
		rc   float64
	}
	var seeds []seed
	for _, col := range pool.Merge(globalPool, nodePool) {
		path, ok := g.PathOf(col.Route)
		if !ok {
			continue
		}
		rc, ok := sp.pc.pathCost(g, path)
		if !ok {
			continue
		}
		seeds = append(seeds, seed{path, rc})
	}
	sort.SliceStable(seeds, func(i, j int) bool { return seeds[i].rc < seeds[j].rc })

	out := make([][]int, 0, sp.params.LocalSearchColumns)
	for i := 0; i < len(seeds) && i < sp.params.LocalSearchColumns; i++ {
		out = append(out, seeds[i].path)
	}
	return out
}

// exact walks the elementarity schedule. A level with no negative path
// proves that no improving route exists; a level whose negative paths are
// all non-elementary or already known moves to the next level while the
// time budget allows.
func (sp *SPSolver) exact(ctx context.Context, r *round, tryElementary bool) int {
	var deadline time.Time
	if sp.params.ExactTimeLimit > 0 {
		deadline = time.Now().Add(sp.params.ExactTimeLimit)
	}

	for _, pct := range sp.params.Schedule.Levels(tryElementary) {
		r.report.ElementarityPct = pct
		critical := criticalRows(sp.pc.prize, pct)

		var cands []candidate
		timedOut := false
		for _, g := range sp.graphs.Ordered(sp.prob) {
			res := labelSetting(ctx, sp.pc, g, critical, deadline)
			timedOut = timedOut || res.timedOut
			for _, p := range res.paths {
				cands = append(cands, candidate{p, domain.OriginExact})
			}
		}

		if len(cands) == 0 {
			if timedOut {
				log.WithFields(log.Fields{"node": sp.nodeID, "pct": pct}).Warn("exact pricing stopped by its time limit")
			}
			return 0
		}
		if added := r.admit(cands); added > 0 {
			return added
		}
		if timedOut || (!deadline.IsZero() && time.Now().After(deadline)) {
			log.WithFields(log.Fields{"node": sp.nodeID, "pct": pct}).Warn("exact pricing budget spent before reaching an elementary route")
			return 0
		}
	}
	return 0
}
