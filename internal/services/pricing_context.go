package services

import (
	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/graph"
)

// reducedCostEps is the threshold under which a reduced cost counts as
// negative.
const reducedCostEps = 1e-7

// priceContext prices graph arcs against the duals of one round. The
// reduced cost of a source-to-sink path is startCost plus the reduced cost
// of its arcs, which equals Column.ReducedCost of the route it encodes.
type priceContext struct {
	prob  *domain.Problem
	rows  *domain.RowTable
	duals domain.MPLinearSolution
	prize []float64
}

func newPriceContext(prob *domain.Problem, rows *domain.RowTable, duals domain.MPLinearSolution) *priceContext {
	return &priceContext{prob: prob, rows: rows, duals: duals, prize: rowPrizes(rows, duals)}
}

func (pc *priceContext) startCost(vc *domain.VesselClass) float64 {
	return vc.FixedCost - pc.duals.VcDuals[vc]
}

// row returns the master row of a vertex, or -1 for the hub.
func (pc *priceContext) row(g *graph.Graph, v int) int {
	r, ok := pc.rows.RowOf(g.Vertex(v).Node)
	if !ok {
		return -1
	}
	return r
}

func (pc *priceContext) arcCost(g *graph.Graph, a graph.Arc) float64 {
	if r := pc.row(g, a.To); r >= 0 {
		return a.Cost - pc.prize[r]
	}
	return a.Cost
}

// pathCost is the reduced cost of a path. ok is false if an arc is missing.
func (pc *priceContext) pathCost(g *graph.Graph, path []int) (float64, bool) {
	cost := pc.startCost(g.VesselClass())
	for i := 1; i < len(path); i++ {
		a, ok := g.Arc(path[i-1], path[i])
		if !ok {
			return 0, false
		}
		cost += pc.arcCost(g, a)
	}
	return cost, true
}
