package lpsolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daunfamily/maritime-vrp/internal/ports"
)

func solve(t *testing.T, s *GonumSolver, m *ports.LinearModel) (*ports.SolverResult, error) {
	t.Helper()
	ctx := context.Background()
	h, err := s.Build(ctx, m)
	require.NoError(t, err)
	defer h.Close()
	return s.Solve(ctx, h)
}

func continuous(n int) []ports.VarType { return make([]ports.VarType, n) }

func binaries(n int) []ports.VarType {
	out := make([]ports.VarType, n)
	for i := range out {
		out[i] = ports.Binary
	}
	return out
}

func TestSolveLPWithDuals(t *testing.T) {
	m := &ports.LinearModel{
		Obj:      []float64{-1, -1},
		VarTypes: continuous(2),
		Rows: []ports.Row{
			{Name: "a", Sense: ports.LessEqual, RHS: 4},
			{Name: "b", Sense: ports.LessEqual, RHS: 6},
		},
		Coeffs: []ports.Nonzero{
			{Row: 0, Col: 0, Val: 1}, {Row: 0, Col: 1, Val: 2},
			{Row: 1, Col: 0, Val: 3}, {Row: 1, Col: 1, Val: 1},
		},
	}

	res, err := solve(t, New(DefaultOptions()), m)
	require.NoError(t, err)
	assert.InDelta(t, -2.8, res.Objective, 1e-6)
	assert.InDeltaSlice(t, []float64{1.6, 1.2}, res.Primal, 1e-6)
	assert.InDeltaSlice(t, []float64{-0.4, -0.2}, res.Duals, 1e-6)
}

func TestSolveLPMixedSenses(t *testing.T) {
	m := &ports.LinearModel{
		ObjConstant: 10,
		Obj:         []float64{1, 1, 2},
		VarTypes:    continuous(3),
		Rows: []ports.Row{
			{Name: "cover", Sense: ports.GreaterEqual, RHS: 2},
			{Name: "balance", Sense: ports.Equal, RHS: 0},
		},
		Coeffs: []ports.Nonzero{
			{Row: 0, Col: 0, Val: 1}, {Row: 0, Col: 1, Val: 1},
			{Row: 1, Col: 0, Val: 1}, {Row: 1, Col: 1, Val: -1},
		},
	}

	res, err := solve(t, New(DefaultOptions()), m)
	require.NoError(t, err)
	assert.InDelta(t, 12, res.Objective, 1e-6)
	assert.InDeltaSlice(t, []float64{1, 1, 0}, res.Primal, 1e-6)
	assert.InDeltaSlice(t, []float64{1, 0}, res.Duals, 1e-6)
}

func TestSolveLPInfeasible(t *testing.T) {
	m := &ports.LinearModel{
		Obj:      []float64{1},
		VarTypes: continuous(1),
		Rows: []ports.Row{
			{Sense: ports.LessEqual, RHS: 1},
			{Sense: ports.GreaterEqual, RHS: 2},
		},
		Coeffs: []ports.Nonzero{{Row: 0, Col: 0, Val: 1}, {Row: 1, Col: 0, Val: 1}},
	}

	_, err := solve(t, New(DefaultOptions()), m)
	assert.ErrorIs(t, err, ports.ErrSolverInfeasible)
}

func TestSolveLPUncoveredEqualityIsInfeasible(t *testing.T) {
	m := &ports.LinearModel{
		Obj:      []float64{-1},
		VarTypes: continuous(1),
		Rows: []ports.Row{
			{Sense: ports.LessEqual, RHS: 1},
			{Sense: ports.Equal, RHS: 1},
		},
		Coeffs: []ports.Nonzero{{Row: 0, Col: 0, Val: 1}},
	}

	_, err := solve(t, New(DefaultOptions()), m)
	assert.ErrorIs(t, err, ports.ErrSolverInfeasible)
}

func TestSolveBinaryKnapsack(t *testing.T) {
	m := &ports.LinearModel{
		Obj:      []float64{-5, -4, -3},
		VarTypes: binaries(3),
		Rows:     []ports.Row{{Name: "weight", Sense: ports.LessEqual, RHS: 5}},
		Coeffs: []ports.Nonzero{
			{Row: 0, Col: 0, Val: 2}, {Row: 0, Col: 1, Val: 3}, {Row: 0, Col: 2, Val: 1},
		},
	}

	for _, threads := range []int{1, 4} {
		res, err := solve(t, New(Options{Threads: threads}), m)
		require.NoError(t, err, "threads=%d", threads)
		assert.InDelta(t, -9, res.Objective, 1e-6, "threads=%d", threads)
		assert.Equal(t, []float64{1, 1, 0}, res.Primal, "threads=%d", threads)
		assert.Nil(t, res.Duals)
	}
}

func TestSolveBinaryNodeLimitMarksTruncated(t *testing.T) {
	m := &ports.LinearModel{
		Obj:      []float64{-5, -4, -3},
		VarTypes: binaries(3),
		Rows:     []ports.Row{{Name: "weight", Sense: ports.LessEqual, RHS: 5}},
		Coeffs: []ports.Nonzero{
			{Row: 0, Col: 0, Val: 2}, {Row: 0, Col: 1, Val: 3}, {Row: 0, Col: 2, Val: 1},
		},
	}

	// root, then x1=1, then x1=1 x0=1 is integral with two nodes still open
	res, err := solve(t, New(Options{Threads: 1, NodeLimit: 3}), m)
	require.NoError(t, err)
	assert.InDelta(t, -9, res.Objective, 1e-6)
	assert.True(t, res.Truncated)

	_, err = solve(t, New(Options{Threads: 1, NodeLimit: 1}), m)
	assert.ErrorIs(t, err, ErrNodeLimit)

	res, err = solve(t, New(DefaultOptions()), m)
	require.NoError(t, err)
	assert.False(t, res.Truncated)
}

func TestSolveBinaryInfeasible(t *testing.T) {
	m := &ports.LinearModel{
		Obj:      []float64{1, 1},
		VarTypes: binaries(2),
		Rows:     []ports.Row{{Sense: ports.GreaterEqual, RHS: 3}},
		Coeffs:   []ports.Nonzero{{Row: 0, Col: 0, Val: 1}, {Row: 0, Col: 1, Val: 1}},
	}

	_, err := solve(t, New(DefaultOptions()), m)
	assert.ErrorIs(t, err, ports.ErrSolverInfeasible)
}

func TestHandleLifecycle(t *testing.T) {
	s := New(DefaultOptions())
	ctx := context.Background()

	_, err := s.Build(ctx, &ports.LinearModel{})
	assert.Error(t, err)

	h, err := s.Build(ctx, &ports.LinearModel{Obj: []float64{1}, VarTypes: continuous(1)})
	require.NoError(t, err)
	require.NoError(t, h.Close())

	_, err = s.Solve(ctx, h)
	assert.ErrorIs(t, err, ErrClosedHandle)

	_, err = s.Solve(ctx, foreignHandle{})
	assert.ErrorIs(t, err, ErrForeignModel)
}

type foreignHandle struct{}

func (foreignHandle) Close() error { return nil }
