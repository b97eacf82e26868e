package domain

// PortDual holds the duals of the pickup and delivery rows of one port.
type PortDual struct {
	Pickup   float64
	Delivery float64
}

// MPLinearSolution is the result of solving the linear relaxation of the
// restricted master problem. Variables follows pool order.
type MPLinearSolution struct {
	Objective float64
	PortDuals map[*Port]PortDual
	VcDuals   map[*VesselClass]float64
	Variables []float64
}

// RowDual returns the dual of a port-row; rows without a dual (the hub) are 0.
func (s MPLinearSolution) RowDual(k RowKey) float64 {
	d, ok := s.PortDuals[k.Port]
	if !ok {
		return 0
	}
	if k.Type == Pickup {
		return d.Pickup
	}
	if k.Type == Delivery {
		return d.Delivery
	}
	return 0
}

// ZeroDuals is the dual solution used before any master problem has been
// solved.
func ZeroDuals() MPLinearSolution {
	return MPLinearSolution{
		PortDuals: map[*Port]PortDual{},
		VcDuals:   map[*VesselClass]float64{},
	}
}

// MPIntegerSolution is the result of solving the restricted master problem
// with binary column variables. Variables follows pool order. Truncated is
// set when the solver stopped before proving the solution optimal.
type MPIntegerSolution struct {
	Objective float64
	Variables []float64
	Truncated bool
}
