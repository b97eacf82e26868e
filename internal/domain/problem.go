package domain

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidProblem = errors.New("invalid problem")

// Problem is the immutable instance data. Ports[0] is the hub: routes start
// and end there and it has no master problem rows.
type Problem struct {
	Name          string
	NumTimeSteps  int
	Ports         []*Port
	VesselClasses []*VesselClass
	Distances     [][]float64

	portIndex map[*Port]int
	vcIndex   map[*VesselClass]int
}

// NewProblem validates the data and builds the lookup indexes.
func NewProblem(name string, steps int, ports []*Port, vcs []*VesselClass, dist [][]float64) (*Problem, error) {
	p := &Problem{
		Name:          name,
		NumTimeSteps:  steps,
		Ports:         ports,
		VesselClasses: vcs,
		Distances:     dist,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the structural invariants of the instance and (re)builds
// the port and vessel class indexes.
func (p *Problem) Validate() error {
	if p.NumTimeSteps < 2 {
		return fmt.Errorf("%w: horizon must have at least 2 time steps, got %d", ErrInvalidProblem, p.NumTimeSteps)
	}
	if len(p.Ports) < 2 {
		return fmt.Errorf("%w: need the hub and at least one port, got %d ports", ErrInvalidProblem, len(p.Ports))
	}
	if len(p.VesselClasses) == 0 {
		return fmt.Errorf("%w: no vessel classes", ErrInvalidProblem)
	}
	if len(p.Distances) != len(p.Ports) {
		return fmt.Errorf("%w: distance matrix has %d rows for %d ports", ErrInvalidProblem, len(p.Distances), len(p.Ports))
	}

	p.portIndex = make(map[*Port]int, len(p.Ports))
	for i, port := range p.Ports {
		if port == nil {
			return fmt.Errorf("%w: port %d is nil", ErrInvalidProblem, i)
		}
		if len(p.Distances[i]) != len(p.Ports) {
			return fmt.Errorf("%w: distance row %d has %d entries", ErrInvalidProblem, i, len(p.Distances[i]))
		}
		if port.PickupDemand < 0 || port.DeliveryDemand < 0 {
			return fmt.Errorf("%w: port %q has negative demand", ErrInvalidProblem, port.Name)
		}
		if port.PickupPenalty < 0 || port.DeliveryPenalty < 0 {
			return fmt.Errorf("%w: port %q has negative penalty", ErrInvalidProblem, port.Name)
		}
		if port.HandlingSteps < 0 {
			return fmt.Errorf("%w: port %q has negative handling time", ErrInvalidProblem, port.Name)
		}
		if i > 0 {
			for _, w := range []TimeWindow{port.PickupWindow, port.DeliveryWindow} {
				if w.Start < 0 || w.End >= p.NumTimeSteps || w.Start > w.End {
					return fmt.Errorf("%w: port %q window [%d,%d] outside horizon %d",
						ErrInvalidProblem, port.Name, w.Start, w.End, p.NumTimeSteps)
				}
			}
		}
		p.portIndex[port] = i
	}

	p.vcIndex = make(map[*VesselClass]int, len(p.VesselClasses))
	for i, vc := range p.VesselClasses {
		if vc == nil {
			return fmt.Errorf("%w: vessel class %d is nil", ErrInvalidProblem, i)
		}
		if vc.Capacity <= 0 || vc.Speed <= 0 {
			return fmt.Errorf("%w: vessel class %q needs positive capacity and speed", ErrInvalidProblem, vc.Name)
		}
		if vc.NumVessels < 0 {
			return fmt.Errorf("%w: vessel class %q has negative fleet size", ErrInvalidProblem, vc.Name)
		}
		p.vcIndex[vc] = i
	}

	return nil
}

// Hub returns the reference port.
func (p *Problem) Hub() *Port { return p.Ports[0] }

// NumPorts includes the hub.
func (p *Problem) NumPorts() int { return len(p.Ports) }

func (p *Problem) NumVesselClasses() int { return len(p.VesselClasses) }

// PortIndex returns the position of port in Ports, or -1.
func (p *Problem) PortIndex(port *Port) int {
	if i, ok := p.portIndex[port]; ok {
		return i
	}
	return -1
}

// VesselClassIndex returns the position of vc in VesselClasses, or -1.
func (p *Problem) VesselClassIndex(vc *VesselClass) int {
	if i, ok := p.vcIndex[vc]; ok {
		return i
	}
	return -1
}

func (p *Problem) Distance(from, to *Port) float64 {
	return p.Distances[p.PortIndex(from)][p.PortIndex(to)]
}

// TravelSteps is the number of whole time steps vc needs to sail from one
// port to another.
func (p *Problem) TravelSteps(vc *VesselClass, from, to *Port) int {
	d := p.Distance(from, to)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d / vc.Speed))
}

// TotalPenalty is the cost of serving nothing at all.
func (p *Problem) TotalPenalty() float64 {
	total := 0.0
	for _, port := range p.Ports {
		total += port.PickupPenalty + port.DeliveryPenalty
	}
	return total
}
