package lpsolver

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/daunfamily/maritime-vrp/internal/ports"
)

// denseProblem is a model in dense form: min obj*x + constant subject to the
// rows, x >= 0.
type denseProblem struct {
	constant float64
	obj      []float64
	a        [][]float64
	senses   []ports.Sense
	rhs      []float64
}

func newDenseProblem(m *ports.LinearModel) *denseProblem {
	p := &denseProblem{
		constant: m.ObjConstant,
		obj:      append([]float64(nil), m.Obj...),
		a:        make([][]float64, len(m.Rows)),
		senses:   make([]ports.Sense, len(m.Rows)),
		rhs:      make([]float64, len(m.Rows)),
	}
	for i, r := range m.Rows {
		p.a[i] = make([]float64, len(m.Obj))
		p.senses[i] = r.Sense
		p.rhs[i] = r.RHS
	}
	for _, nz := range m.Coeffs {
		p.a[nz.Row][nz.Col] += nz.Val
	}
	return p
}

func (p *denseProblem) numVars() int { return len(p.obj) }

func (p *denseProblem) numRows() int { return len(p.a) }

// addUpperBound appends the row x_j <= ub.
func (p *denseProblem) addUpperBound(j int, ub float64) {
	row := make([]float64, p.numVars())
	row[j] = 1
	p.a = append(p.a, row)
	p.senses = append(p.senses, ports.LessEqual)
	p.rhs = append(p.rhs, ub)
}

// activeColumns lists the variables with a nonzero coefficient.
func (p *denseProblem) activeColumns() []int {
	var cols []int
	for j := 0; j < p.numVars(); j++ {
		for i := range p.a {
			if p.a[i][j] != 0 {
				cols = append(cols, j)
				break
			}
		}
	}
	return cols
}

func satisfied(lhs float64, s ports.Sense, rhs, tol float64) bool {
	switch s {
	case ports.LessEqual:
		return lhs <= rhs+tol
	case ports.GreaterEqual:
		return lhs >= rhs-tol
	default:
		return lhs >= rhs-tol && lhs <= rhs+tol
	}
}

// solvePrimal solves the problem with the gonum simplex. Variables that
// appear in no row are set to zero; every row gets its own slack (equality
// rows get two) so that the equality form always has full row rank.
func (p *denseProblem) solvePrimal(tol float64) (float64, []float64, error) {
	x := make([]float64, p.numVars())
	active := p.activeColumns()
	isActive := make([]bool, p.numVars())
	for _, j := range active {
		isActive[j] = true
	}
	for j, c := range p.obj {
		if !isActive[j] && c < 0 {
			return 0, nil, fmt.Errorf("variable %d is free with cost %g: %w", j, c, lp.ErrUnbounded)
		}
	}

	if len(active) == 0 {
		for i := range p.a {
			if !satisfied(0, p.senses[i], p.rhs[i], tol) {
				return 0, nil, lp.ErrInfeasible
			}
		}
		return p.constant, x, nil
	}

	type eqRow struct {
		src   int
		slack float64
	}
	var rows []eqRow
	for i, s := range p.senses {
		switch s {
		case ports.LessEqual:
			rows = append(rows, eqRow{i, 1})
		case ports.GreaterEqual:
			rows = append(rows, eqRow{i, -1})
		default:
			rows = append(rows, eqRow{i, 1}, eqRow{i, -1})
		}
	}

	nCols := len(active) + len(rows)
	A := mat.NewDense(len(rows), nCols, nil)
	b := make([]float64, len(rows))
	c := make([]float64, nCols)
	for k, j := range active {
		c[k] = p.obj[j]
	}
	for r, er := range rows {
		sign := 1.0
		if p.rhs[er.src] < 0 {
			sign = -1
		}
		for k, j := range active {
			A.Set(r, k, sign*p.a[er.src][j])
		}
		A.Set(r, len(active)+r, sign*er.slack)
		b[r] = sign * p.rhs[er.src]
	}

	z, xs, err := lp.Simplex(c, A, b, 0, nil)
	if err != nil {
		return 0, nil, err
	}
	for k, j := range active {
		x[j] = xs[k]
	}
	return z + p.constant, x, nil
}

// solveDual returns one dual per row such that obj - A^T y >= 0 at the
// optimum, with y <= 0 on <= rows and y >= 0 on >= rows. It solves the dual
// program of the problem written with >= rows only:
//
//	min -b'w  s.t.  A'^T w + s = c,  w, s >= 0
func (p *denseProblem) solveDual() ([]float64, error) {
	type geRow struct {
		src  int
		sign float64
	}
	var rows []geRow
	for i, s := range p.senses {
		zero := true
		for _, v := range p.a[i] {
			if v != 0 {
				zero = false
				break
			}
		}
		if zero {
			continue
		}
		switch s {
		case ports.LessEqual:
			rows = append(rows, geRow{i, -1})
		case ports.GreaterEqual:
			rows = append(rows, geRow{i, 1})
		default:
			rows = append(rows, geRow{i, 1}, geRow{i, -1})
		}
	}

	y := make([]float64, p.numRows())
	if len(rows) == 0 {
		return y, nil
	}

	n := p.numVars()
	nCols := len(rows) + n
	A := mat.NewDense(n, nCols, nil)
	b := make([]float64, n)
	c := make([]float64, nCols)
	for k, r := range rows {
		c[k] = -r.sign * p.rhs[r.src]
	}
	for j := 0; j < n; j++ {
		sign := 1.0
		if p.obj[j] < 0 {
			sign = -1
		}
		for k, r := range rows {
			A.Set(j, k, sign*r.sign*p.a[r.src][j])
		}
		A.Set(j, len(rows)+j, sign)
		b[j] = sign * p.obj[j]
	}

	_, w, err := lp.Simplex(c, A, b, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("dual: %w", err)
	}
	for k, r := range rows {
		y[r.src] += r.sign * w[k]
	}
	return y, nil
}

// mapSimplexError turns gonum's sentinel errors into the port's.
func mapSimplexError(err error) error {
	if errors.Is(err, lp.ErrInfeasible) {
		return fmt.Errorf("%w: %w", ports.ErrSolverInfeasible, err)
	}
	return err
}
