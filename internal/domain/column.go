package domain

import "fmt"

// ColumnOrigin tells which pricing phase produced a column.
type ColumnOrigin int

const (
	OriginNone ColumnOrigin = iota
	OriginHeuristic
	OriginExact
	// OriginInitial marks the single-visit columns used to seed an empty pool.
	OriginInitial
)

func (o ColumnOrigin) String() string {
	switch o {
	case OriginHeuristic:
		return "heuristic"
	case OriginExact:
		return "exact"
	case OriginInitial:
		return "initial"
	default:
		return "none"
	}
}

// Column is a priced route as seen by the master problem. Columns are value
// objects: two columns are equal when their objective coefficient and both
// coefficient vectors are equal. Origin and Route are provenance only.
type Column struct {
	ObjCoeff  float64
	PortCoeff []float64
	VcCoeff   []float64
	Origin    ColumnOrigin
	Route     Route
}

// NewColumn prices a route against the row layout of the problem.
func NewColumn(prob *Problem, rows *RowTable, r Route, origin ColumnOrigin) (Column, error) {
	vc := prob.VesselClassIndex(r.VesselClass)
	if vc < 0 {
		return Column{}, fmt.Errorf("new column: vessel class %q not in problem %q", r.VesselClass.Name, prob.Name)
	}

	c := Column{
		PortCoeff: make([]float64, rows.Len()),
		VcCoeff:   make([]float64, prob.NumVesselClasses()),
		Origin:    origin,
		Route:     r,
	}
	c.VcCoeff[vc] = 1

	penalties := 0.0
	for _, n := range r.Visits() {
		row, ok := rows.RowOf(n)
		if !ok {
			return Column{}, fmt.Errorf("new column: visit %s has no master row", n)
		}
		c.PortCoeff[row]++
		penalties += n.Penalty()
	}
	c.ObjCoeff = r.Cost(prob) - penalties

	return c, nil
}

// Equal compares the objective coefficient and the coefficient vectors.
func (c Column) Equal(other Column) bool {
	if c.ObjCoeff != other.ObjCoeff {
		return false
	}
	return floatsEqual(c.PortCoeff, other.PortCoeff) && floatsEqual(c.VcCoeff, other.VcCoeff)
}

// ReducedCost is the objective coefficient minus what the column captures
// from the given duals.
func (c Column) ReducedCost(rows *RowTable, prob *Problem, sol MPLinearSolution) float64 {
	rc := c.ObjCoeff
	for row, coeff := range c.PortCoeff {
		if coeff == 0 {
			continue
		}
		rc -= coeff * sol.RowDual(rows.Key(row))
	}
	for i, coeff := range c.VcCoeff {
		if coeff == 0 {
			continue
		}
		rc -= coeff * sol.VcDuals[prob.VesselClasses[i]]
	}
	return rc
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
