package services

import (
	"context"
	"sort"
	"time"

	"github.com/yourbasic/bit"

	"github.com/daunfamily/maritime-vrp/internal/graph"
)

// label is a partial path from the source. Loads follow the route load
// model: delivered and picked are the quantities handled so far and surplus
// is the largest picked-delivered over the prefixes, so the peak load of the
// finished route is delivered+surplus.
type label struct {
	vertex    int
	cost      float64
	delivered float64
	picked    float64
	surplus   float64
	visited   *bit.Set
	pred      *label
}

func (l *label) dominates(o *label) bool {
	return l.cost <= o.cost+1e-12 &&
		l.delivered <= o.delivered+1e-12 &&
		l.surplus <= o.surplus+1e-12 &&
		l.picked-l.delivered <= o.picked-o.delivered+1e-12 &&
		l.visited.Subset(o.visited)
}

func (l *label) path() []int {
	var rev []int
	for cur := l; cur != nil; cur = cur.pred {
		rev = append(rev, cur.vertex)
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

type labelingResult struct {
	paths    []pricedPath
	timedOut bool
	labels   int
}

type pricedPath struct {
	graph *graph.Graph
	path  []int
	cost  float64
}

// labelSetting runs a forward labeling over one graph. Revisits are
// forbidden for the critical rows only; every other row may be visited
// again, which makes the search a relaxation of the elementary problem. It
// returns every negative source-to-sink path found, most negative first.
func labelSetting(ctx context.Context, pc *priceContext, g *graph.Graph, critical []int, deadline time.Time) labelingResult {
	isCritical := make([]bool, pc.rows.Len())
	for _, r := range critical {
		isCritical[r] = true
	}
	capacity := g.VesselClass().Capacity

	buckets := make([][]*label, g.NumVertices())
	buckets[g.Source()] = []*label{{
		vertex:  g.Source(),
		cost:    pc.startCost(g.VesselClass()),
		visited: new(bit.Set),
	}}

	var res labelingResult
	for u := 0; u < g.Sink(); u++ {
		if ctx.Err() != nil || (!deadline.IsZero() && time.Now().After(deadline)) {
			res.timedOut = true
			break
		}
		for _, l := range buckets[u] {
			for _, a := range g.Successors(u) {
				cost := l.cost + pc.arcCost(g, a)
				if a.To == g.Sink() {
					if cost < -reducedCostEps {
						end := &label{vertex: a.To, cost: cost, pred: l}
						res.paths = append(res.paths, pricedPath{graph: g, path: end.path(), cost: cost})
					}
					continue
				}

				n := g.Vertex(a.To).Node
				r := pc.row(g, a.To)
				if isCritical[r] && l.visited.Contains(r) {
					continue
				}
				next := &label{
					vertex:    a.To,
					cost:      cost,
					delivered: l.delivered + n.DeliveryDemand(),
					picked:    l.picked + n.PickupDemand(),
					surplus:   l.surplus,
					visited:   l.visited,
					pred:      l,
				}
				if s := next.picked - next.delivered; s > next.surplus {
					next.surplus = s
				}
				if next.delivered+next.surplus > capacity+1e-9 {
					continue
				}
				if isCritical[r] {
					next.visited = new(bit.Set).Set(l.visited).Add(r)
				}
				buckets[a.To] = insertLabel(buckets[a.To], next)
				res.labels++
			}
		}
		buckets[u] = nil
	}

	sort.SliceStable(res.paths, func(i, j int) bool { return res.paths[i].cost < res.paths[j].cost })
	return res
}

// insertLabel adds l to a bucket unless a label there dominates it, and
// drops the labels it dominates.
func insertLabel(bucket []*label, l *label) []*label {
	for _, o := range bucket {
		if o.dominates(l) {
			return bucket
		}
	}
	kept := bucket[:0]
	for _, o := range bucket {
		if !l.dominates(o) {
			kept = append(kept, o)
		}
	}
	return append(kept, l)
}
