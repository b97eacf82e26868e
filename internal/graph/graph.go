// Package graph builds the time-expanded constraint graph the pricing
// subproblem searches. There is one graph per vessel class; a branch node
// owns its own copy so that arc exclusions never leak between nodes.
package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/daunfamily/maritime-vrp/internal/domain"
)

var ErrInvalidPath = errors.New("graph: invalid path")

// Vertex is a port visit at a time step. Source and sink are hub vertices.
type Vertex struct {
	ID   int
	Node domain.Node
}

// Arc is a feasible move between two consecutive visits.
type Arc struct {
	From int
	To   int
	Cost float64
}

// Graph is a DAG whose vertex ids follow time order: the source comes first
// and the sink last, so iterating ids ascending is a topological sort.
type Graph struct {
	prob     *domain.Problem
	vc       *domain.VesselClass
	vertices []Vertex
	out      [][]Arc
	index    map[domain.Node]int
}

// Build creates the graph of one vessel class.
func Build(prob *domain.Problem, vc *domain.VesselClass) *Graph {
	hub := prob.Hub()
	nodes := []domain.Node{{Port: hub, Type: domain.Hub, TimeStep: 0}}
	for _, p := range prob.Ports[1:] {
		for t := p.PickupWindow.Start; t <= p.PickupWindow.End; t++ {
			nodes = append(nodes, domain.Node{Port: p, Type: domain.Pickup, TimeStep: t})
		}
		for t := p.DeliveryWindow.Start; t <= p.DeliveryWindow.End; t++ {
			nodes = append(nodes, domain.Node{Port: p, Type: domain.Delivery, TimeStep: t})
		}
	}
	// stable on equal steps so that ids are deterministic
	inner := nodes[1:]
	sort.SliceStable(inner, func(i, j int) bool { return inner[i].TimeStep < inner[j].TimeStep })
	nodes = append(nodes, domain.Node{Port: hub, Type: domain.Hub, TimeStep: prob.NumTimeSteps})

	g := &Graph{
		prob:     prob,
		vc:       vc,
		vertices: make([]Vertex, len(nodes)),
		out:      make([][]Arc, len(nodes)),
		index:    make(map[domain.Node]int, len(nodes)),
	}
	for i, n := range nodes {
		g.vertices[i] = Vertex{ID: i, Node: n}
		g.index[n] = i
	}

	sink := g.Sink()
	for u := 0; u < sink; u++ {
		for v := 1; v <= sink; v++ {
			if u == g.Source() && v == sink {
				continue
			}
			if cost, ok := g.arcCost(u, v); ok {
				g.out[u] = append(g.out[u], Arc{From: u, To: v, Cost: cost})
			}
		}
	}
	return g
}

// arcCost decides whether u->v is feasible and prices it. The vessel leaves
// the hub just in time for its first visit and returns as soon as possible.
func (g *Graph) arcCost(u, v int) (float64, bool) {
	from, to := g.vertices[u].Node, g.vertices[v].Node
	if from.Type != domain.Hub && from.SameRowAs(to) {
		return 0, false
	}
	steps := domain.MinSteps(g.prob, g.vc, from, to)
	switch {
	case u == g.Source():
		from.TimeStep = to.TimeStep - steps
		if from.TimeStep < 0 {
			return 0, false
		}
	case v == g.Sink():
		to.TimeStep = from.TimeStep + steps
		if to.TimeStep > g.prob.NumTimeSteps {
			return 0, false
		}
	default:
		if to.TimeStep < from.TimeStep+steps {
			return 0, false
		}
	}
	return domain.ArcCost(g.prob, g.vc, from, to), true
}

func (g *Graph) VesselClass() *domain.VesselClass { return g.vc }

func (g *Graph) Problem() *domain.Problem { return g.prob }

func (g *Graph) Source() int { return 0 }

func (g *Graph) Sink() int { return len(g.vertices) - 1 }

func (g *Graph) NumVertices() int { return len(g.vertices) }

func (g *Graph) Vertex(id int) Vertex { return g.vertices[id] }

// VertexOf finds the vertex of a port visit. Hub visits are not indexed by
// time: use Source and Sink instead.
func (g *Graph) VertexOf(n domain.Node) (int, bool) {
	if n.Type == domain.Hub {
		return 0, false
	}
	id, ok := g.index[n]
	return id, ok
}

// Successors returns the outgoing arcs of a vertex. The slice must not be
// modified.
func (g *Graph) Successors(id int) []Arc { return g.out[id] }

// Arc looks up the arc u->v.
func (g *Graph) Arc(u, v int) (Arc, bool) {
	for _, a := range g.out[u] {
		if a.To == v {
			return a, true
		}
	}
	return Arc{}, false
}

// NumArcs counts the arcs still in the graph.
func (g *Graph) NumArcs() int {
	n := 0
	for _, arcs := range g.out {
		n += len(arcs)
	}
	return n
}

// RemoveArc excludes u->v. It reports whether the arc existed.
func (g *Graph) RemoveArc(u, v int) bool {
	arcs := g.out[u]
	for i, a := range arcs {
		if a.To == v {
			g.out[u] = append(arcs[:i:i], arcs[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveArcsBetween excludes every arc leaving a vertex of row a and entering
// a vertex of row b, whatever the time steps. It returns the number removed.
func (g *Graph) RemoveArcsBetween(a, b domain.PortWithType) int {
	removed := 0
	for u := range g.out {
		from := g.vertices[u].Node
		if from.Port != a.Port || from.Type != a.Type {
			continue
		}
		kept := g.out[u][:0:0]
		for _, arc := range g.out[u] {
			to := g.vertices[arc.To].Node
			if to.Port == b.Port && to.Type == b.Type {
				removed++
				continue
			}
			kept = append(kept, arc)
		}
		g.out[u] = kept
	}
	return removed
}

// Clone deep-copies the adjacency lists. Vertices are immutable and shared.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		prob:     g.prob,
		vc:       g.vc,
		vertices: g.vertices,
		out:      make([][]Arc, len(g.out)),
		index:    g.index,
	}
	for i, arcs := range g.out {
		c.out[i] = append([]Arc(nil), arcs...)
	}
	return c
}

// PathCost sums the arc costs of a source-to-sink path, fixed cost included.
func (g *Graph) PathCost(path []int) (float64, error) {
	if err := g.checkEnds(path); err != nil {
		return 0, err
	}
	cost := g.vc.FixedCost
	for i := 1; i < len(path); i++ {
		a, ok := g.Arc(path[i-1], path[i])
		if !ok {
			return 0, fmt.Errorf("path cost: no arc %d->%d: %w", path[i-1], path[i], ErrInvalidPath)
		}
		cost += a.Cost
	}
	return cost, nil
}

// RouteOf materialises a source-to-sink path as a route, with the hub times
// the arcs were priced with.
func (g *Graph) RouteOf(path []int) (domain.Route, error) {
	if err := g.checkEnds(path); err != nil {
		return domain.Route{}, err
	}
	if len(path) < 3 {
		return domain.Route{}, fmt.Errorf("route of: path visits no port: %w", ErrInvalidPath)
	}
	nodes := make([]domain.Node, len(path))
	for i, id := range path {
		if i > 0 {
			if _, ok := g.Arc(path[i-1], id); !ok {
				return domain.Route{}, fmt.Errorf("route of: no arc %d->%d: %w", path[i-1], id, ErrInvalidPath)
			}
		}
		nodes[i] = g.vertices[id].Node
	}
	first, last := nodes[1], nodes[len(nodes)-2]
	nodes[0].TimeStep = first.TimeStep - domain.MinSteps(g.prob, g.vc, nodes[0], first)
	nodes[len(nodes)-1].TimeStep = last.TimeStep + domain.MinSteps(g.prob, g.vc, last, nodes[len(nodes)-1])
	return domain.Route{VesselClass: g.vc, Nodes: nodes}, nil
}

// PathOf maps a route of this vessel class back to vertex ids.
func (g *Graph) PathOf(r domain.Route) ([]int, bool) {
	if r.VesselClass != g.vc || len(r.Nodes) < 3 {
		return nil, false
	}
	path := make([]int, 0, len(r.Nodes))
	path = append(path, g.Source())
	for _, n := range r.Visits() {
		id, ok := g.VertexOf(n)
		if !ok {
			return nil, false
		}
		path = append(path, id)
	}
	return append(path, g.Sink()), true
}

// Admits reports whether r can be sailed in g: every visit is a vertex and
// every leg an arc that has not been excluded.
func (g *Graph) Admits(r domain.Route) bool {
	path, ok := g.PathOf(r)
	if !ok {
		return false
	}
	for i := 1; i < len(path); i++ {
		if _, ok := g.Arc(path[i-1], path[i]); !ok {
			return false
		}
	}
	return true
}

func (g *Graph) checkEnds(path []int) error {
	if len(path) < 2 || path[0] != g.Source() || path[len(path)-1] != g.Sink() {
		return fmt.Errorf("path must run from source to sink: %w", ErrInvalidPath)
	}
	for _, id := range path {
		if id < 0 || id >= len(g.vertices) {
			return fmt.Errorf("vertex %d out of range: %w", id, ErrInvalidPath)
		}
	}
	return nil
}
