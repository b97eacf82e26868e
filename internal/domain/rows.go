package domain

import "fmt"

// RowKey identifies a port-row of the master problem.
type RowKey struct {
	Port *Port
	Type PickupType
}

// RowTable maps master problem port-rows to linear row indices and back.
//
// Rows are laid out as all pickup rows for Ports[1..n-1] followed by all
// delivery rows in the same port order, so 2(n-1) rows in total. The hub
// (Ports[0]) has no rows. The table is built once and both directions are
// plain lookups.
type RowTable struct {
	keys  []RowKey
	index map[RowKey]int
}

func NewRowTable(prob *Problem) *RowTable {
	n := prob.NumPorts()
	t := &RowTable{
		keys:  make([]RowKey, 0, 2*(n-1)),
		index: make(map[RowKey]int, 2*(n-1)),
	}
	for _, typ := range []PickupType{Pickup, Delivery} {
		for i := 1; i < n; i++ {
			k := RowKey{Port: prob.Ports[i], Type: typ}
			t.index[k] = len(t.keys)
			t.keys = append(t.keys, k)
		}
	}
	return t
}

// Len is the number of port-rows.
func (t *RowTable) Len() int { return len(t.keys) }

// Row returns the row index of (port, typ). ok is false for the hub, for
// Hub visits and for ports outside the problem.
func (t *RowTable) Row(port *Port, typ PickupType) (int, bool) {
	i, ok := t.index[RowKey{Port: port, Type: typ}]
	return i, ok
}

// RowOf returns the row covered by a visit.
func (t *RowTable) RowOf(n Node) (int, bool) { return t.Row(n.Port, n.Type) }

// Key is the inverse of Row.
func (t *RowTable) Key(row int) RowKey {
	if row < 0 || row >= len(t.keys) {
		panic(fmt.Sprintf("row table: row %d out of range [0,%d)", row, len(t.keys)))
	}
	return t.keys[row]
}

// Keys returns all row keys in row order.
func (t *RowTable) Keys() []RowKey {
	out := make([]RowKey, len(t.keys))
	copy(out, t.keys)
	return out
}

// Penalty is the penalty paid when the row is left unserved.
func (t *RowTable) Penalty(row int) float64 {
	k := t.Key(row)
	return Node{Port: k.Port, Type: k.Type}.Penalty()
}
