// Package domaintest provides small problem instances shared by tests.
package domaintest

import (
	"testing"

	"github.com/daunfamily/maritime-vrp/internal/domain"
)

// TwoPortProblem is a hub with two ports ten miles away from it and one mile
// away from each other, served by a single feeder. The route serving all four
// rows costs 21 and saves 24 in penalties; every shorter route costs more
// than the penalties it saves.
func TwoPortProblem(t testing.TB) *domain.Problem {
	t.Helper()

	hub := &domain.Port{Name: "H"}
	p1 := &domain.Port{
		Name:            "P1",
		PickupDemand:    3,
		DeliveryDemand:  2,
		PickupPenalty:   6,
		DeliveryPenalty: 6,
		PickupWindow:    domain.TimeWindow{Start: 0, End: 9},
		DeliveryWindow:  domain.TimeWindow{Start: 0, End: 9},
	}
	p2 := &domain.Port{
		Name:            "P2",
		PickupDemand:    1,
		DeliveryDemand:  4,
		PickupPenalty:   6,
		DeliveryPenalty: 6,
		PickupWindow:    domain.TimeWindow{Start: 0, End: 9},
		DeliveryWindow:  domain.TimeWindow{Start: 0, End: 9},
	}
	vc := &domain.VesselClass{Name: "feeder", Capacity: 10, NumVessels: 1, Speed: 10, CostPerMile: 1}

	prob, err := domain.NewProblem("two-port", 10, []*domain.Port{hub, p1, p2}, []*domain.VesselClass{vc}, [][]float64{
		{0, 10, 10},
		{10, 0, 1},
		{10, 1, 0},
	})
	if err != nil {
		t.Fatalf("two-port problem: %v", err)
	}
	return prob
}

// FullRoute serves the four rows of TwoPortProblem in one sweep.
func FullRoute(prob *domain.Problem) domain.Route {
	hub, p1, p2 := prob.Ports[0], prob.Ports[1], prob.Ports[2]
	return domain.Route{
		VesselClass: prob.VesselClasses[0],
		Nodes: []domain.Node{
			{Port: hub, Type: domain.Hub, TimeStep: 0},
			{Port: p1, Type: domain.Delivery, TimeStep: 1},
			{Port: p1, Type: domain.Pickup, TimeStep: 2},
			{Port: p2, Type: domain.Delivery, TimeStep: 3},
			{Port: p2, Type: domain.Pickup, TimeStep: 4},
			{Port: hub, Type: domain.Hub, TimeStep: 5},
		},
	}
}
