package dto

import (
	"fmt"
	"strings"

	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/services"
)

type RowRequest struct {
	Port string `json:"port"`
	Type string `json:"type"`
}

type ArcRequest struct {
	From RowRequest `json:"from"`
	To   RowRequest `json:"to"`
}

type SolveRequest struct {
	Instance         string       `json:"instance"`
	EqualityRows     []RowRequest `json:"equality_rows"`
	ExcludedArcs     []ArcRequest `json:"excluded_arcs"`
	MaxRounds        *int         `json:"max_rounds"`
	TimeLimitSeconds *float64     `json:"time_limit_seconds"`
	SolveInteger     *bool        `json:"solve_integer"`
}

func (r RowRequest) RowRef() (services.RowRef, error) {
	port := strings.TrimSpace(r.Port)
	if port == "" {
		return services.RowRef{}, fmt.Errorf("row port is required")
	}
	typ, err := domain.ParsePickupType(strings.TrimSpace(r.Type))
	if err != nil {
		return services.RowRef{}, err
	}
	return services.RowRef{Port: port, Type: typ}, nil
}

type NodeResponse struct {
	Port string `json:"port"`
	Type string `json:"type"`
	Time int    `json:"t"`
}

type RouteResponse struct {
	VesselClass string         `json:"vessel_class"`
	Value       float64        `json:"value"`
	ObjCoeff    float64        `json:"obj_coeff"`
	Origin      string         `json:"origin"`
	Nodes       []NodeResponse `json:"nodes"`
}

type SolveResponse struct {
	RunID        string          `json:"run_id"`
	Instance     string          `json:"instance"`
	NodeID       string          `json:"node_id"`
	State        string          `json:"state"`
	Rounds       int             `json:"rounds"`
	ColumnsAdded int             `json:"columns_added"`
	PoolSize     int             `json:"pool_size"`
	ArcsRemoved  int             `json:"arcs_removed"`
	LPObjective  *float64        `json:"lp_objective"`
	MIPObjective *float64        `json:"mip_objective"`
	IntegerError string          `json:"integer_error,omitempty"`
	MIPTruncated bool            `json:"mip_truncated,omitempty"`
	Routes       []RouteResponse `json:"routes"`
	Promoted     int             `json:"promoted"`
	ExactTimeMs  int64           `json:"exact_time_ms"`
	ElapsedMs    int64           `json:"elapsed_ms"`
}

// NewSolveResponse flattens a run report for JSON output.
func NewSolveResponse(rep *services.SolveReport) SolveResponse {
	res := SolveResponse{
		RunID:        rep.RunID,
		Instance:     rep.Instance,
		NodeID:       rep.NodeID,
		State:        rep.State.String(),
		Rounds:       rep.Rounds,
		ColumnsAdded: rep.ColumnsAdded,
		PoolSize:     rep.PoolSize,
		ArcsRemoved:  rep.ArcsRemoved,
		LPObjective:  rep.LPObjective,
		MIPObjective: rep.MIPObjective,
		IntegerError: rep.IntegerError,
		MIPTruncated: rep.MIPTruncated,
		Routes:       make([]RouteResponse, 0, len(rep.Routes)),
		Promoted:     rep.Promoted,
		ExactTimeMs:  rep.ExactTime.Milliseconds(),
		ElapsedMs:    rep.Elapsed.Milliseconds(),
	}
	for _, u := range rep.Routes {
		nodes := make([]NodeResponse, 0, len(u.Route.Nodes))
		for _, n := range u.Route.Nodes {
			nodes = append(nodes, NodeResponse{Port: n.Port.Name, Type: n.Type.String(), Time: n.TimeStep})
		}
		res.Routes = append(res.Routes, RouteResponse{
			VesselClass: u.VesselClass,
			Value:       u.Value,
			ObjCoeff:    u.ObjCoeff,
			Origin:      u.Origin.String(),
			Nodes:       nodes,
		})
	}
	return res
}
