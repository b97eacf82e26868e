package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daunfamily/maritime-vrp/internal/adapters/lpsolver"
	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/domain/domaintest"
	"github.com/daunfamily/maritime-vrp/internal/graph"
	"github.com/daunfamily/maritime-vrp/internal/ports"
)

// collectingReporter keeps every pricing report.
type collectingReporter struct {
	mu      sync.Mutex
	reports []ports.PricingReport
}

func (r *collectingReporter) Report(rep ports.PricingReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
}

// scriptedSolver returns a fixed result, error or panic and counts the
// handles it closes.
type scriptedSolver struct {
	result *ports.SolverResult
	err    error
	panics bool
	built  *ports.LinearModel
	closed int
}

type scriptedHandle struct{ s *scriptedSolver }

func (h scriptedHandle) Close() error {
	h.s.closed++
	return nil
}

func (s *scriptedSolver) Build(_ context.Context, m *ports.LinearModel) (ports.SolverHandle, error) {
	s.built = m
	return scriptedHandle{s}, nil
}

func (s *scriptedSolver) Solve(context.Context, ports.SolverHandle) (*ports.SolverResult, error) {
	if s.panics {
		panic("numerical trouble")
	}
	return s.result, s.err
}

func gonumSolver() ports.LinearSolver {
	return lpsolver.New(lpsolver.DefaultOptions())
}

func fullColumn(t *testing.T, prob *domain.Problem, rows *domain.RowTable) domain.Column {
	t.Helper()
	col, err := domain.NewColumn(prob, rows, domaintest.FullRoute(prob), domain.OriginExact)
	require.NoError(t, err)
	return col
}

// singleVisit builds the hub -> (port, typ) -> hub column.
func singleVisit(t *testing.T, prob *domain.Problem, rows *domain.RowTable, port *domain.Port, typ domain.PickupType) domain.Column {
	t.Helper()
	hub := prob.Hub()
	r := domain.Route{
		VesselClass: prob.VesselClasses[0],
		Nodes: []domain.Node{
			{Port: hub, Type: domain.Hub, TimeStep: 0},
			{Port: port, Type: typ, TimeStep: 1},
			{Port: hub, Type: domain.Hub, TimeStep: 2},
		},
	}
	col, err := domain.NewColumn(prob, rows, r, domain.OriginInitial)
	require.NoError(t, err)
	return col
}

// integerFailingSolver delegates continuous models to inner and fails every
// integer one with err.
type integerFailingSolver struct {
	inner ports.LinearSolver
	err   error
}

type integerHandle struct{}

func (integerHandle) Close() error { return nil }

func (s integerFailingSolver) Build(ctx context.Context, m *ports.LinearModel) (ports.SolverHandle, error) {
	if m.IsInteger() {
		return integerHandle{}, nil
	}
	return s.inner.Build(ctx, m)
}

func (s integerFailingSolver) Solve(ctx context.Context, h ports.SolverHandle) (*ports.SolverResult, error) {
	if _, ok := h.(integerHandle); ok {
		return nil, s.err
	}
	return s.inner.Solve(ctx, h)
}

// isElementaryPath reports whether no row appears twice on the path.
func isElementaryPath(pc *priceContext, g *graph.Graph, path []int) bool {
	seen := make(map[int]struct{}, len(path))
	for _, v := range path {
		r := pc.row(g, v)
		if r < 0 {
			continue
		}
		if _, ok := seen[r]; ok {
			return false
		}
		seen[r] = struct{}{}
	}
	return true
}
