package services

import (
	"math/rand"
	"sort"

	"github.com/yourbasic/bit"

	"github.com/daunfamily/maritime-vrp/internal/graph"
)

// greedyWalk builds one route by walking forward from the source, each step
// choosing among the topK cheapest successors that keep the route
// elementary and within capacity. The route is closed at the prefix whose
// return to the hub is cheapest. topK of 1 is the plain greedy walk.
func greedyWalk(pc *priceContext, g *graph.Graph, topK int, rng *rand.Rand) []int {
	capacity := g.VesselClass().Capacity

	u := g.Source()
	path := []int{u}
	cost := pc.startCost(g.VesselClass())
	visited := new(bit.Set)
	var delivered, picked, surplus float64

	var best []int
	bestCost := 0.0

	for {
		if u != g.Source() {
			if a, ok := g.Arc(u, g.Sink()); ok {
				if closed := cost + pc.arcCost(g, a); best == nil || closed < bestCost {
					best = append(append(best[:0:0], path...), g.Sink())
					bestCost = closed
				}
			}
		}

		var options []graph.Arc
		for _, a := range g.Successors(u) {
			if a.To == g.Sink() {
				continue
			}
			r := pc.row(g, a.To)
			if visited.Contains(r) {
				continue
			}
			n := g.Vertex(a.To).Node
			d := delivered + n.DeliveryDemand()
			s := surplus
			if p := picked + n.PickupDemand() - d; p > s {
				s = p
			}
			if d+s > capacity+1e-9 {
				continue
			}
			options = append(options, a)
		}
		if len(options) == 0 {
			return best
		}
		sort.SliceStable(options, func(i, j int) bool {
			return pc.arcCost(g, options[i]) < pc.arcCost(g, options[j])
		})

		k := topK
		if k > len(options) {
			k = len(options)
		}
		pick := options[0]
		if k > 1 {
			pick = options[rng.Intn(k)]
		}

		n := g.Vertex(pick.To).Node
		delivered += n.DeliveryDemand()
		picked += n.PickupDemand()
		if s := picked - delivered; s > surplus {
			surplus = s
		}
		visited.Add(pc.row(g, pick.To))
		cost += pc.arcCost(g, pick)
		path = append(path, pick.To)
		u = pick.To
	}
}

// neighbours returns the paths one move away from path: a port visit
// removed, or a visit of a row not yet on the path inserted between two
// consecutive vertices. Capacity is not checked here.
func neighbours(pc *priceContext, g *graph.Graph, path []int) [][]int {
	onPath := make(map[int]bool, len(path))
	for _, v := range path {
		onPath[pc.row(g, v)] = true
	}

	var out [][]int
	for i := 1; i < len(path)-1; i++ {
		if len(path) <= 3 {
			break
		}
		if _, ok := g.Arc(path[i-1], path[i+1]); !ok {
			continue
		}
		next := make([]int, 0, len(path)-1)
		next = append(append(next, path[:i]...), path[i+1:]...)
		out = append(out, next)
	}

	for i := 0; i < len(path)-1; i++ {
		for _, a := range g.Successors(path[i]) {
			if a.To == g.Sink() || onPath[pc.row(g, a.To)] {
				continue
			}
			if _, ok := g.Arc(a.To, path[i+1]); !ok {
				continue
			}
			next := make([]int, 0, len(path)+1)
			next = append(append(append(next, path[:i+1]...), a.To), path[i+1:]...)
			out = append(out, next)
		}
	}
	return out
}
