package domain

import "fmt"

// PickupType tells what a vessel does at a visited port.
type PickupType int

const (
	Pickup PickupType = iota
	Delivery
	// Hub marks the start and end visits of a route; it carries no demand.
	Hub
)

func (t PickupType) String() string {
	switch t {
	case Pickup:
		return "pu"
	case Delivery:
		return "de"
	default:
		return "hub"
	}
}

// ParsePickupType accepts the short and long spellings used by the loaders
// and the HTTP API.
func ParsePickupType(s string) (PickupType, error) {
	switch s {
	case "pu", "pickup", "PICKUP":
		return Pickup, nil
	case "de", "delivery", "DELIVERY":
		return Delivery, nil
	}
	return Hub, fmt.Errorf("parse pickup type: unknown value %q", s)
}

// Node is a port visit at a given time step.
type Node struct {
	Port     *Port
	Type     PickupType
	TimeStep int
}

// PickupDemand is the port's pickup demand for a pickup visit, zero otherwise.
func (n Node) PickupDemand() float64 {
	if n.Type == Pickup {
		return n.Port.PickupDemand
	}
	return 0
}

// DeliveryDemand is the port's delivery demand for a delivery visit, zero otherwise.
func (n Node) DeliveryDemand() float64 {
	if n.Type == Delivery {
		return n.Port.DeliveryDemand
	}
	return 0
}

// Demand is the quantity handled by the visit, whichever direction it goes.
func (n Node) Demand() float64 {
	return n.PickupDemand() + n.DeliveryDemand()
}

// Penalty is what the master problem pays when this visit's row is left unserved.
func (n Node) Penalty() float64 {
	switch n.Type {
	case Pickup:
		return n.Port.PickupPenalty
	case Delivery:
		return n.Port.DeliveryPenalty
	}
	return 0
}

// SameRowAs reports whether both visits cover the same master problem row,
// regardless of when they happen.
func (n Node) SameRowAs(other Node) bool {
	return n.Port == other.Port && n.Type == other.Type
}

func (n Node) Equal(other Node) bool {
	return n.SameRowAs(other) && n.TimeStep == other.TimeStep
}

func (n Node) String() string {
	return fmt.Sprintf("[%s, %s, %d, dem: %g]", n.Port.Name, n.Type, n.TimeStep, n.Demand())
}

// PortWithType is a branching decision: the row of (Port, Type) must hold
// with equality in the master problem.
type PortWithType struct {
	Port *Port
	Type PickupType
}

func (p PortWithType) String() string {
	return fmt.Sprintf("%s/%s", p.Port.Name, p.Type)
}
