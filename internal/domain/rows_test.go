package domain

import "testing"

func TestRowTableIsBijection(t *testing.T) {
	prob := twoPortProblem(t)
	rows := NewRowTable(prob)

	if rows.Len() != 2*(prob.NumPorts()-1) {
		t.Fatalf("rows = %d, want %d", rows.Len(), 2*(prob.NumPorts()-1))
	}

	seen := map[RowKey]bool{}
	for r := 0; r < rows.Len(); r++ {
		k := rows.Key(r)
		if seen[k] {
			t.Fatalf("row key %v appears twice", k)
		}
		seen[k] = true

		back, ok := rows.Row(k.Port, k.Type)
		if !ok || back != r {
			t.Fatalf("Row(Key(%d)) = %d, %v", r, back, ok)
		}
	}

	for i, port := range prob.Ports {
		for _, typ := range []PickupType{Pickup, Delivery} {
			_, ok := rows.Row(port, typ)
			if i == 0 && ok {
				t.Errorf("hub must not have a %s row", typ)
			}
			if i > 0 && !ok {
				t.Errorf("port %s has no %s row", port.Name, typ)
			}
		}
	}
}

func TestRowTableLayout(t *testing.T) {
	prob := twoPortProblem(t)
	rows := NewRowTable(prob)

	want := []RowKey{
		{Port: prob.Ports[1], Type: Pickup},
		{Port: prob.Ports[2], Type: Pickup},
		{Port: prob.Ports[1], Type: Delivery},
		{Port: prob.Ports[2], Type: Delivery},
	}
	for r, k := range want {
		if rows.Key(r) != k {
			t.Errorf("row %d = %s/%s, want %s/%s", r, rows.Key(r).Port.Name, rows.Key(r).Type, k.Port.Name, k.Type)
		}
	}
}
