package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/domain/domaintest"
	"github.com/daunfamily/maritime-vrp/internal/ports"
)

type memRepo struct {
	prob  *domain.Problem
	loads int
}

func (r *memRepo) LoadProblem(_ context.Context, name string) (*domain.Problem, error) {
	r.loads++
	if name != r.prob.Name {
		return nil, fmt.Errorf("load %q: %w", name, ports.ErrProblemNotFound)
	}
	return r.prob, nil
}

func (r *memRepo) ListProblems(context.Context) ([]string, error) {
	return []string{r.prob.Name}, nil
}

type memStore struct {
	saved   map[string][]domain.Column
	loadErr error
}

func (s *memStore) SaveColumns(_ context.Context, instance string, cols []domain.Column) (int, error) {
	if s.saved == nil {
		s.saved = map[string][]domain.Column{}
	}
	s.saved[instance] = append(s.saved[instance], cols...)
	return len(cols), nil
}

func (s *memStore) LoadColumns(_ context.Context, instance string, _ *domain.Problem) ([]domain.Column, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.saved[instance], nil
}

func TestSolveInstancePromotesIntegerRoutes(t *testing.T) {
	prob := domaintest.TwoPortProblem(t)
	store := &memStore{}
	ws := NewWorkspace(&memRepo{prob: prob}, store)

	rep, err := SolveInstance(context.Background(), SolveRequest{Instance: "two-port", Params: testParams()}, ws, gonumSolver(), nil)
	require.NoError(t, err)

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, "root", rep.NodeID)
	assert.Equal(t, Converged, rep.State)
	require.NotNil(t, rep.LPObjective)
	assert.InDelta(t, 21, *rep.LPObjective, 1e-6)
	require.NotNil(t, rep.MIPObjective)
	assert.InDelta(t, 21, *rep.MIPObjective, 1e-6)

	require.Len(t, rep.Routes, 1)
	assert.Equal(t, "feeder", rep.Routes[0].VesselClass)
	assert.InDelta(t, -3, rep.Routes[0].ObjCoeff, 1e-9)
	assert.Len(t, rep.Routes[0].Route.Visits(), 4)

	assert.Equal(t, 1, rep.Promoted)
	assert.Len(t, store.saved["two-port"], 1)

	// the promoted column is already known the second time
	rep, err = SolveInstance(context.Background(), SolveRequest{Instance: "two-port", Params: testParams()}, ws, gonumSolver(), nil)
	require.NoError(t, err)
	assert.Equal(t, Converged, rep.State)
	assert.Zero(t, rep.Promoted)
}

func TestSolveInstanceWithBranchingDecisions(t *testing.T) {
	prob := domaintest.TwoPortProblem(t)
	ws := NewWorkspace(&memRepo{prob: prob}, nil)

	req := SolveRequest{
		Instance:     "two-port",
		EqualityRows: []RowRef{{Port: "P1", Type: domain.Pickup}},
		ExcludedArcs: []ArcExclusion{{
			From: RowRef{Port: "P2", Type: domain.Pickup},
			To:   RowRef{Port: "P1", Type: domain.Delivery},
		}},
		Params: testParams(),
	}
	rep, err := SolveInstance(context.Background(), req, ws, gonumSolver(), nil)
	require.NoError(t, err)

	assert.Equal(t, "eq:P1/pu,x:P2/pu>P1/de", rep.NodeID)
	assert.Positive(t, rep.ArcsRemoved)
	assert.Equal(t, Converged, rep.State)
	require.NotNil(t, rep.LPObjective)
	assert.GreaterOrEqual(t, *rep.LPObjective, 21-1e-6)
}

func TestSolveInstanceRejectsBadRows(t *testing.T) {
	prob := domaintest.TwoPortProblem(t)
	ws := NewWorkspace(&memRepo{prob: prob}, nil)

	for _, ref := range []RowRef{
		{Port: "P9", Type: domain.Pickup},
		{Port: "H", Type: domain.Pickup},
		{Port: "P1", Type: domain.Hub},
	} {
		_, err := SolveInstance(context.Background(), SolveRequest{Instance: "two-port", EqualityRows: []RowRef{ref}, Params: testParams()}, ws, gonumSolver(), nil)
		assert.ErrorIs(t, err, ErrInvalidRequest, "%+v", ref)
	}

	_, err := SolveInstance(context.Background(), SolveRequest{Instance: "nowhere", Params: testParams()}, ws, gonumSolver(), nil)
	assert.ErrorIs(t, err, ports.ErrProblemNotFound)
}

func TestSolveInstanceReportsInfeasibleNode(t *testing.T) {
	prob := domaintest.TwoPortProblem(t)
	ws := NewWorkspace(&memRepo{prob: prob}, nil)
	solver := &scriptedSolver{err: ports.ErrSolverInfeasible}

	rep, err := SolveInstance(context.Background(), SolveRequest{Instance: "two-port", Params: testParams()}, ws, solver, nil)
	require.NoError(t, err)
	assert.Equal(t, Infeasible, rep.State)
	assert.Nil(t, rep.LPObjective)
	assert.Empty(t, rep.Routes)
}

func TestWorkspaceLoadsOnce(t *testing.T) {
	prob := domaintest.TwoPortProblem(t)
	repo := &memRepo{prob: prob}
	rows := domain.NewRowTable(prob)
	store := &memStore{saved: map[string][]domain.Column{"two-port": {fullColumn(t, prob, rows)}}}
	ws := NewWorkspace(repo, store)

	p1, g1, err := ws.Open(context.Background(), "two-port")
	require.NoError(t, err)
	p2, g2, err := ws.Open(context.Background(), "two-port")
	require.NoError(t, err)

	assert.Same(t, p1, p2)
	assert.Same(t, g1, g2)
	assert.Equal(t, 1, repo.loads)
	assert.Equal(t, 1, g1.Len())
}

func TestWorkspaceStartsColdWhenStoreFails(t *testing.T) {
	prob := domaintest.TwoPortProblem(t)
	ws := NewWorkspace(&memRepo{prob: prob}, &memStore{loadErr: errors.New("connection refused")})

	_, global, err := ws.Open(context.Background(), "two-port")
	require.NoError(t, err)
	assert.Zero(t, global.Len())

	_, err = ws.Promote(context.Background(), "other", nil)
	assert.Error(t, err)
}

func TestSolveInstanceHonoursExclusionsOnWarmPool(t *testing.T) {
	prob := domaintest.TwoPortProblem(t)
	rows := domain.NewRowTable(prob)
	store := &memStore{saved: map[string][]domain.Column{"two-port": {fullColumn(t, prob, rows)}}}
	ws := NewWorkspace(&memRepo{prob: prob}, store)

	// FullRoute sails P1/pu -> P2/de
	req := SolveRequest{
		Instance: "two-port",
		ExcludedArcs: []ArcExclusion{{
			From: RowRef{Port: "P1", Type: domain.Pickup},
			To:   RowRef{Port: "P2", Type: domain.Delivery},
		}},
		Params: testParams(),
	}
	rep, err := SolveInstance(context.Background(), req, ws, gonumSolver(), nil)
	require.NoError(t, err)
	assert.Equal(t, Converged, rep.State)
	require.NotNil(t, rep.MIPObjective)

	for _, u := range rep.Routes {
		visits := u.Route.Visits()
		for i := 1; i < len(visits); i++ {
			from, to := visits[i-1], visits[i]
			sailsExcluded := from.Port.Name == "P1" && from.Type == domain.Pickup &&
				to.Port.Name == "P2" && to.Type == domain.Delivery
			assert.False(t, sailsExcluded, "route %s", u.Route)
		}
	}
}

func TestSolveInstanceSeedsEqualityRowOnWarmPool(t *testing.T) {
	prob := domaintest.TwoPortProblem(t)
	rows := domain.NewRowTable(prob)
	warm := singleVisit(t, prob, rows, prob.Ports[1], domain.Delivery)
	ws := NewWorkspace(&memRepo{prob: prob}, &memStore{saved: map[string][]domain.Column{"two-port": {warm}}})

	req := SolveRequest{
		Instance:     "two-port",
		EqualityRows: []RowRef{{Port: "P2", Type: domain.Pickup}},
		Params:       testParams(),
	}
	rep, err := SolveInstance(context.Background(), req, ws, gonumSolver(), nil)
	require.NoError(t, err)
	assert.Equal(t, Converged, rep.State)
	assert.Positive(t, rep.Rounds)
	require.NotNil(t, rep.LPObjective)
	assert.GreaterOrEqual(t, *rep.LPObjective, 21-1e-6)
}

func TestSolveInstanceReportsFailedIntegerSolve(t *testing.T) {
	prob := domaintest.TwoPortProblem(t)
	store := &memStore{}
	ws := NewWorkspace(&memRepo{prob: prob}, store)
	solver := integerFailingSolver{inner: gonumSolver(), err: ports.ErrSolverInfeasible}

	rep, err := SolveInstance(context.Background(), SolveRequest{Instance: "two-port", Params: testParams()}, ws, solver, nil)
	require.NoError(t, err)
	assert.Equal(t, Converged, rep.State)
	require.NotNil(t, rep.LPObjective)
	assert.InDelta(t, 21, *rep.LPObjective, 1e-6)
	assert.Nil(t, rep.MIPObjective)
	assert.Contains(t, rep.IntegerError, "infeasible")
	assert.Empty(t, rep.Routes)
	assert.Zero(t, rep.Promoted)
	assert.Empty(t, store.saved)
}
