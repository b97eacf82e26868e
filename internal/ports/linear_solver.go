package ports

import (
	"context"
	"errors"
)

// ErrSolverInfeasible is returned by a SolverHandle when the model has no
// feasible point.
var ErrSolverInfeasible = errors.New("solver: model is infeasible")

// Sense is the direction of a constraint row.
type Sense int

const (
	LessEqual Sense = iota
	GreaterEqual
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	default:
		return "="
	}
}

// VarType is the domain of a model variable. All variables are bounded
// below by zero; binaries are also bounded above by one.
type VarType int

const (
	Continuous VarType = iota
	Binary
)

// Row is a linear constraint: sum(coeff * x) Sense RHS.
type Row struct {
	Name  string
	Sense Sense
	RHS   float64
}

// Nonzero is a single constraint matrix entry.
type Nonzero struct {
	Row int
	Col int
	Val float64
}

// LinearModel is a minimisation problem in sparse form. ObjConstant is added
// to the reported objective.
type LinearModel struct {
	ObjConstant float64
	Obj         []float64
	VarTypes    []VarType
	VarNames    []string
	Rows        []Row
	Coeffs      []Nonzero
}

// NumVars is the number of model variables.
func (m *LinearModel) NumVars() int { return len(m.Obj) }

// IsInteger reports whether any variable is binary.
func (m *LinearModel) IsInteger() bool {
	for _, t := range m.VarTypes {
		if t == Binary {
			return true
		}
	}
	return false
}

// SolverResult is what a solve returns. Duals is only filled for purely
// continuous models and follows row order; Primal follows variable order.
// Truncated marks an integer result whose optimality was not proven because
// a search limit was hit.
type SolverResult struct {
	Objective float64
	Primal    []float64
	Duals     []float64
	Truncated bool
}

// SolverHandle is a built model owned by the caller, who must Close it.
type SolverHandle interface {
	Close() error
}

// LinearSolver is the external LP/MIP engine. Implementations never leak
// their native types past this interface.
type LinearSolver interface {
	// Build turns a model into a solver specific handle.
	Build(ctx context.Context, m *LinearModel) (SolverHandle, error)
	// Solve optimises a handle obtained from Build.
	Solve(ctx context.Context, h SolverHandle) (*SolverResult, error)
}
