// Package cache persists master problem columns outside the process so that
// later runs on the same instance start from a warm pool.
package cache

import (
	"encoding/json"
	"fmt"

	"github.com/daunfamily/maritime-vrp/internal/domain"
)

// storedRoute is the persisted form of a column. Coefficients are not stored;
// they are recomputed from the route against the loading problem.
type storedRoute struct {
	VesselClass string       `json:"vessel_class"`
	Origin      string       `json:"origin"`
	Nodes       []storedNode `json:"nodes"`
}

type storedNode struct {
	Port string `json:"port"`
	Type string `json:"type"`
	Time int    `json:"t"`
}

func encodeRoute(c domain.Column) ([]byte, error) {
	if c.Route.VesselClass == nil {
		return nil, fmt.Errorf("encode route: column has no route")
	}
	sr := storedRoute{
		VesselClass: c.Route.VesselClass.Name,
		Origin:      c.Origin.String(),
		Nodes:       make([]storedNode, len(c.Route.Nodes)),
	}
	for i, n := range c.Route.Nodes {
		sr.Nodes[i] = storedNode{Port: n.Port.Name, Type: n.Type.String(), Time: n.TimeStep}
	}
	return json.Marshal(sr)
}

func parseOrigin(s string) domain.ColumnOrigin {
	switch s {
	case "heuristic":
		return domain.OriginHeuristic
	case "exact":
		return domain.OriginExact
	case "initial":
		return domain.OriginInitial
	}
	return domain.OriginNone
}

// decodeRoute rebuilds a column against prob. Names that the problem no
// longer knows, and routes its current windows, capacities or distances no
// longer allow, make the column unusable.
func decodeRoute(prob *domain.Problem, rows *domain.RowTable, data []byte) (domain.Column, error) {
	var sr storedRoute
	if err := json.Unmarshal(data, &sr); err != nil {
		return domain.Column{}, fmt.Errorf("decode route: %w", err)
	}

	var vc *domain.VesselClass
	for _, v := range prob.VesselClasses {
		if v.Name == sr.VesselClass {
			vc = v
			break
		}
	}
	if vc == nil {
		return domain.Column{}, fmt.Errorf("decode route: unknown vessel class %q", sr.VesselClass)
	}

	portByName := make(map[string]*domain.Port, len(prob.Ports))
	for _, p := range prob.Ports {
		portByName[p.Name] = p
	}

	r := domain.Route{VesselClass: vc, Nodes: make([]domain.Node, len(sr.Nodes))}
	last := len(sr.Nodes) - 1
	for i, sn := range sr.Nodes {
		port, ok := portByName[sn.Port]
		if !ok {
			return domain.Column{}, fmt.Errorf("decode route: unknown port %q", sn.Port)
		}
		typ := domain.Hub
		if i != 0 && i != last {
			t, err := domain.ParsePickupType(sn.Type)
			if err != nil {
				return domain.Column{}, fmt.Errorf("decode route: %w", err)
			}
			typ = t
		}
		r.Nodes[i] = domain.Node{Port: port, Type: typ, TimeStep: sn.Time}
	}

	switch {
	case len(r.Visits()) == 0:
		return domain.Column{}, fmt.Errorf("decode route: route visits no port")
	case !r.IsElementary():
		return domain.Column{}, fmt.Errorf("decode route: %s visits a row twice", r)
	case !r.CapacityFeasible():
		return domain.Column{}, fmt.Errorf("decode route: %s exceeds the capacity of %q", r, vc.Name)
	case !r.TimeFeasible(prob):
		return domain.Column{}, fmt.Errorf("decode route: %s misses a time window or sailing time", r)
	}

	return domain.NewColumn(prob, rows, r, parseOrigin(sr.Origin))
}
