package domain

import "testing"

func TestNodeSameRowAs(t *testing.T) {
	p1 := &Port{Name: "P1", PickupDemand: 5, DeliveryDemand: 7}
	p2 := &Port{Name: "P2"}

	a := Node{Port: p1, Type: Pickup, TimeStep: 3}
	b := Node{Port: p1, Type: Pickup, TimeStep: 7}

	if !a.SameRowAs(b) {
		t.Fatalf("expected %s and %s to share a row", a, b)
	}
	if a.Equal(b) {
		t.Fatalf("expected %s and %s to differ", a, b)
	}
	if !a.Equal(Node{Port: p1, Type: Pickup, TimeStep: 3}) {
		t.Fatalf("expected %s to equal its copy", a)
	}

	if a.SameRowAs(Node{Port: p1, Type: Delivery, TimeStep: 3}) {
		t.Errorf("pickup and delivery of the same port must not share a row")
	}
	if a.SameRowAs(Node{Port: p2, Type: Pickup, TimeStep: 3}) {
		t.Errorf("visits of different ports must not share a row")
	}
}

func TestNodeDemandFollowsType(t *testing.T) {
	port := &Port{Name: "P1", PickupDemand: 5, DeliveryDemand: 7, PickupPenalty: 11, DeliveryPenalty: 13}

	pu := Node{Port: port, Type: Pickup}
	de := Node{Port: port, Type: Delivery}
	hub := Node{Port: port, Type: Hub}

	if pu.PickupDemand() != 5 || pu.DeliveryDemand() != 0 || pu.Demand() != 5 {
		t.Errorf("pickup demand = (%g, %g), want (5, 0)", pu.PickupDemand(), pu.DeliveryDemand())
	}
	if de.PickupDemand() != 0 || de.DeliveryDemand() != 7 || de.Demand() != 7 {
		t.Errorf("delivery demand = (%g, %g), want (0, 7)", de.PickupDemand(), de.DeliveryDemand())
	}
	if hub.Demand() != 0 || hub.Penalty() != 0 {
		t.Errorf("hub visit demand = %g penalty = %g, want 0, 0", hub.Demand(), hub.Penalty())
	}
	if pu.Penalty() != 11 || de.Penalty() != 13 {
		t.Errorf("penalties = (%g, %g), want (11, 13)", pu.Penalty(), de.Penalty())
	}
}

func TestParsePickupType(t *testing.T) {
	for in, want := range map[string]PickupType{"pu": Pickup, "pickup": Pickup, "de": Delivery, "DELIVERY": Delivery} {
		got, err := ParsePickupType(in)
		if err != nil {
			t.Fatalf("ParsePickupType(%q): unexpected error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParsePickupType(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParsePickupType("both"); err == nil {
		t.Errorf("expected an error for an unknown pickup type")
	}
}
