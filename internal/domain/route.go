package domain

import (
	"fmt"
	"strings"
)

// Route is a vessel itinerary: it leaves the hub, visits ports and returns
// to the hub. Nodes includes both hub visits.
type Route struct {
	VesselClass *VesselClass
	Nodes       []Node
}

// Visits returns the nodes between the two hub visits.
func (r Route) Visits() []Node {
	if len(r.Nodes) < 2 {
		return nil
	}
	return r.Nodes[1 : len(r.Nodes)-1]
}

// ArcCost is the sailing cost of going from one visit to the next.
func ArcCost(prob *Problem, vc *VesselClass, from, to Node) float64 {
	d := prob.Distance(from.Port, to.Port)
	return d*vc.CostPerMile + float64(to.TimeStep-from.TimeStep)*vc.CostPerStep
}

// Cost is the total cost of sailing the route, fixed cost included.
func (r Route) Cost(prob *Problem) float64 {
	cost := r.VesselClass.FixedCost
	for i := 1; i < len(r.Nodes); i++ {
		cost += ArcCost(prob, r.VesselClass, r.Nodes[i-1], r.Nodes[i])
	}
	return cost
}

// PickupLoad is the total quantity picked up along the route.
func (r Route) PickupLoad() float64 {
	total := 0.0
	for _, n := range r.Nodes {
		total += n.PickupDemand()
	}
	return total
}

// DeliveryLoad is the total quantity delivered along the route.
func (r Route) DeliveryLoad() float64 {
	total := 0.0
	for _, n := range r.Nodes {
		total += n.DeliveryDemand()
	}
	return total
}

// MaxLoad is the peak quantity on board. The vessel leaves the hub with
// every delivery of the route, unloads at delivery ports and loads at pickup
// ports.
func (r Route) MaxLoad() float64 {
	load := r.DeliveryLoad()
	peak := load
	for _, n := range r.Nodes {
		load += n.PickupDemand() - n.DeliveryDemand()
		if load > peak {
			peak = load
		}
	}
	return peak
}

// CapacityFeasible reports whether the peak load fits the vessel class.
func (r Route) CapacityFeasible() bool {
	return r.MaxLoad() <= r.VesselClass.Capacity+1e-9
}

// IsElementary reports whether no master row is visited twice.
func (r Route) IsElementary() bool {
	seen := make(map[RowKey]struct{}, len(r.Nodes))
	for _, n := range r.Visits() {
		k := RowKey{Port: n.Port, Type: n.Type}
		if _, ok := seen[k]; ok {
			return false
		}
		seen[k] = struct{}{}
	}
	return true
}

// MinSteps is the least number of time steps between two consecutive visits
// of a vessel of class vc: handling at the origin plus sailing, and at least
// one step so that routes always move forward in time.
func MinSteps(prob *Problem, vc *VesselClass, from, to Node) int {
	steps := prob.TravelSteps(vc, from.Port, to.Port)
	if from.Type != Hub {
		steps += from.Port.HandlingSteps
	}
	if steps < 1 {
		steps = 1
	}
	return steps
}

// TimeFeasible checks the route against the time windows, the handling
// times and the sailing times of its vessel class. Hub visits may happen at
// any step of the horizon, the return included.
func (r Route) TimeFeasible(prob *Problem) bool {
	if len(r.Nodes) < 2 {
		return false
	}
	hub := prob.Hub()
	first, last := r.Nodes[0], r.Nodes[len(r.Nodes)-1]
	if first.Port != hub || last.Port != hub || first.Type != Hub || last.Type != Hub {
		return false
	}
	for i, n := range r.Nodes {
		switch n.Type {
		case Pickup:
			if !n.Port.PickupWindow.Contains(n.TimeStep) {
				return false
			}
		case Delivery:
			if !n.Port.DeliveryWindow.Contains(n.TimeStep) {
				return false
			}
		default:
			if n.TimeStep < 0 || n.TimeStep > prob.NumTimeSteps {
				return false
			}
		}
		if i > 0 && n.TimeStep < r.Nodes[i-1].TimeStep+MinSteps(prob, r.VesselClass, r.Nodes[i-1], n) {
			return false
		}
	}
	return true
}

func (r Route) String() string {
	parts := make([]string, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		parts = append(parts, n.String())
	}
	return fmt.Sprintf("%s: %s", r.VesselClass.Name, strings.Join(parts, " -> "))
}
