package repositories

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/daunfamily/maritime-vrp/internal/domain"
)

// InstanceFile is the JSON layout of an instance. The first port is the hub.
type InstanceFile struct {
	Name          string            `json:"name"`
	NumTimeSteps  int               `json:"num_time_steps"`
	Ports         []PortSeed        `json:"ports"`
	VesselClasses []VesselClassSeed `json:"vessel_classes"`
	Distances     [][]float64       `json:"distances"`
}

type WindowSeed struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type PortSeed struct {
	Name            string     `json:"name"`
	PickupDemand    float64    `json:"pickup_demand"`
	DeliveryDemand  float64    `json:"delivery_demand"`
	PickupPenalty   float64    `json:"pickup_penalty"`
	DeliveryPenalty float64    `json:"delivery_penalty"`
	PickupWindow    WindowSeed `json:"pickup_window"`
	DeliveryWindow  WindowSeed `json:"delivery_window"`
	HandlingSteps   int        `json:"handling_steps"`
}

type VesselClassSeed struct {
	Name        string  `json:"name"`
	Capacity    float64 `json:"capacity"`
	NumVessels  int     `json:"num_vessels"`
	Speed       float64 `json:"speed"`
	CostPerMile float64 `json:"cost_per_mile"`
	CostPerStep float64 `json:"cost_per_step"`
	FixedCost   float64 `json:"fixed_cost"`
}

// ParseInstance decodes an instance file. Unknown fields are rejected.
func ParseInstance(data []byte) (*InstanceFile, error) {
	var f InstanceFile
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse instance: %w", err)
	}
	if strings.TrimSpace(f.Name) == "" {
		return nil, fmt.Errorf("parse instance: name cannot be empty")
	}
	return &f, nil
}

// Problem builds and validates the domain problem.
func (f *InstanceFile) Problem() (*domain.Problem, error) {
	ports := make([]*domain.Port, len(f.Ports))
	for i, p := range f.Ports {
		ports[i] = &domain.Port{
			Name:            p.Name,
			PickupDemand:    p.PickupDemand,
			DeliveryDemand:  p.DeliveryDemand,
			PickupPenalty:   p.PickupPenalty,
			DeliveryPenalty: p.DeliveryPenalty,
			PickupWindow:    domain.TimeWindow{Start: p.PickupWindow.Start, End: p.PickupWindow.End},
			DeliveryWindow:  domain.TimeWindow{Start: p.DeliveryWindow.Start, End: p.DeliveryWindow.End},
			HandlingSteps:   p.HandlingSteps,
		}
	}
	vcs := make([]*domain.VesselClass, len(f.VesselClasses))
	for i, v := range f.VesselClasses {
		vcs[i] = &domain.VesselClass{
			Name:        v.Name,
			Capacity:    v.Capacity,
			NumVessels:  v.NumVessels,
			Speed:       v.Speed,
			CostPerMile: v.CostPerMile,
			CostPerStep: v.CostPerStep,
			FixedCost:   v.FixedCost,
		}
	}
	prob, err := domain.NewProblem(f.Name, f.NumTimeSteps, ports, vcs, f.Distances)
	if err != nil {
		return nil, fmt.Errorf("instance %q: %w", f.Name, err)
	}
	return prob, nil
}
