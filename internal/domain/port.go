package domain

// TimeWindow is an inclusive range of time steps.
type TimeWindow struct {
	Start int
	End   int
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t int) bool { return t >= w.Start && t <= w.End }

// Port is a location served by the fleet. Ports are immutable once loaded and
// shared by pointer between graphs, columns and dual maps.
type Port struct {
	Name            string
	PickupDemand    float64
	DeliveryDemand  float64
	PickupPenalty   float64
	DeliveryPenalty float64
	PickupWindow    TimeWindow
	DeliveryWindow  TimeWindow
	HandlingSteps   int
}

// VesselClass groups identical vessels. NumVessels bounds how many routes of
// this class the master problem may select at once.
type VesselClass struct {
	Name        string
	Capacity    float64
	NumVessels  int
	Speed       float64
	CostPerMile float64
	CostPerStep float64
	FixedCost   float64
}
