package domain

import "testing"

// twoPortProblem builds a hub with two ports ten miles away from it and one
// mile away from each other.
func twoPortProblem(t *testing.T) *Problem {
	t.Helper()

	hub := &Port{Name: "H"}
	p1 := &Port{
		Name:            "P1",
		PickupDemand:    3,
		DeliveryDemand:  2,
		PickupPenalty:   6,
		DeliveryPenalty: 6,
		PickupWindow:    TimeWindow{Start: 0, End: 9},
		DeliveryWindow:  TimeWindow{Start: 0, End: 9},
	}
	p2 := &Port{
		Name:            "P2",
		PickupDemand:    1,
		DeliveryDemand:  4,
		PickupPenalty:   6,
		DeliveryPenalty: 6,
		PickupWindow:    TimeWindow{Start: 0, End: 9},
		DeliveryWindow:  TimeWindow{Start: 0, End: 9},
	}
	vc := &VesselClass{Name: "feeder", Capacity: 10, NumVessels: 1, Speed: 10, CostPerMile: 1}

	prob, err := NewProblem("two-port", 10, []*Port{hub, p1, p2}, []*VesselClass{vc}, [][]float64{
		{0, 10, 10},
		{10, 0, 1},
		{10, 1, 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return prob
}
