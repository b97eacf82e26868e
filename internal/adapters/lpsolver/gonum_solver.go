// Package lpsolver is the gonum backed implementation of ports.LinearSolver.
// Continuous models are solved with the primal simplex and a second simplex
// on the dual program for the row duals. Models with binary variables are
// solved by branch-and-bound over LP relaxations.
package lpsolver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/daunfamily/maritime-vrp/internal/ports"
)

var (
	ErrClosedHandle = errors.New("lpsolver: handle is closed")
	ErrForeignModel = errors.New("lpsolver: handle was not built by this solver")
	ErrNodeLimit    = errors.New("lpsolver: node limit reached without an integer solution")
)

type Options struct {
	// Threads is the number of branch-and-bound nodes solved at once.
	Threads int
	// Tolerance is used for feasibility and integrality checks.
	Tolerance float64
	// NodeLimit bounds the number of branch-and-bound nodes. When it is hit
	// the best incumbent so far is returned with Truncated set, or
	// ErrNodeLimit if there is none.
	NodeLimit int
}

func DefaultOptions() Options {
	return Options{Threads: 1, Tolerance: 1e-6, NodeLimit: 10000}
}

type GonumSolver struct {
	opts Options
}

func New(opts Options) *GonumSolver {
	def := DefaultOptions()
	if opts.Threads < 1 {
		opts.Threads = def.Threads
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = def.Tolerance
	}
	if opts.NodeLimit < 1 {
		opts.NodeLimit = def.NodeLimit
	}
	return &GonumSolver{opts: opts}
}

type handle struct {
	mu      sync.Mutex
	closed  bool
	problem *denseProblem
	binary  []bool
}

func (h *handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.problem = nil
	return nil
}

// Build validates the model and copies it into dense form.
func (s *GonumSolver) Build(ctx context.Context, m *ports.LinearModel) (ports.SolverHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validate(m); err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	h := &handle{
		problem: newDenseProblem(m),
		binary:  make([]bool, m.NumVars()),
	}
	for j, t := range m.VarTypes {
		h.binary[j] = t == ports.Binary
	}
	return h, nil
}

// Solve optimises the model. Panics raised by the numerical code are
// returned as errors.
func (s *GonumSolver) Solve(ctx context.Context, sh ports.SolverHandle) (res *ports.SolverResult, err error) {
	h, ok := sh.(*handle)
	if !ok {
		return nil, ErrForeignModel
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosedHandle
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lpsolver: simplex panic: %v", r)
			res = nil
		}
	}()

	integer := false
	for _, b := range h.binary {
		integer = integer || b
	}
	if integer {
		return s.solveBinary(ctx, h.problem, h.binary)
	}
	return s.solveContinuous(h.problem)
}

func (s *GonumSolver) solveContinuous(p *denseProblem) (*ports.SolverResult, error) {
	z, x, err := p.solvePrimal(s.opts.Tolerance)
	if err != nil {
		return nil, mapSimplexError(err)
	}
	y, err := p.solveDual()
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"rows": p.numRows(), "vars": p.numVars(), "objective": z}).Trace("lp solved")
	return &ports.SolverResult{Objective: z, Primal: x, Duals: y}, nil
}

func validate(m *ports.LinearModel) error {
	n := m.NumVars()
	if n == 0 {
		return errors.New("model has no variables")
	}
	if len(m.VarTypes) != n {
		return fmt.Errorf("model has %d variable types for %d variables", len(m.VarTypes), n)
	}
	for _, nz := range m.Coeffs {
		if nz.Row < 0 || nz.Row >= len(m.Rows) || nz.Col < 0 || nz.Col >= n {
			return fmt.Errorf("coefficient (%d,%d) out of range %dx%d", nz.Row, nz.Col, len(m.Rows), n)
		}
	}
	return nil
}
