package graph

import "github.com/daunfamily/maritime-vrp/internal/domain"

// GraphMap holds the graph of every vessel class of a branch node.
type GraphMap map[*domain.VesselClass]*Graph

func BuildMap(prob *domain.Problem) GraphMap {
	m := make(GraphMap, len(prob.VesselClasses))
	for _, vc := range prob.VesselClasses {
		m[vc] = Build(prob, vc)
	}
	return m
}

// Clone copies every graph for a child node.
func (m GraphMap) Clone() GraphMap {
	c := make(GraphMap, len(m))
	for vc, g := range m {
		c[vc] = g.Clone()
	}
	return c
}

// RemoveArcsBetween excludes a->b in every graph.
func (m GraphMap) RemoveArcsBetween(a, b domain.PortWithType) int {
	n := 0
	for _, g := range m {
		n += g.RemoveArcsBetween(a, b)
	}
	return n
}

// Admits reports whether the graph of r's vessel class still admits r.
func (m GraphMap) Admits(r domain.Route) bool {
	g, ok := m[r.VesselClass]
	return ok && g.Admits(r)
}

// Ordered returns the graphs in the problem's vessel class order.
func (m GraphMap) Ordered(prob *domain.Problem) []*Graph {
	out := make([]*Graph, 0, len(m))
	for _, vc := range prob.VesselClasses {
		if g, ok := m[vc]; ok {
			out = append(out, g)
		}
	}
	return out
}
