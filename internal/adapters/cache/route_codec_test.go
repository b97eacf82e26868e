package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/domain/domaintest"
)

func TestDecodeRouteRejectsInfeasibleRoutes(t *testing.T) {
	prob := domaintest.TwoPortProblem(t)
	rows := domain.NewRowTable(prob)

	tests := []struct {
		name string
		data string
	}{
		{"unknown vessel class", `{"vessel_class":"tanker","nodes":[{"port":"H","t":0},{"port":"P1","type":"pu","t":1},{"port":"H","t":2}]}`},
		{"unknown port", `{"vessel_class":"feeder","nodes":[{"port":"H","t":0},{"port":"P7","type":"pu","t":1},{"port":"H","t":2}]}`},
		{"no visit", `{"vessel_class":"feeder","nodes":[{"port":"H","t":0},{"port":"H","t":2}]}`},
		{"row visited twice", `{"vessel_class":"feeder","nodes":[{"port":"H","t":0},{"port":"P1","type":"pu","t":1},{"port":"P2","type":"pu","t":2},{"port":"P1","type":"pu","t":3},{"port":"H","t":4}]}`},
		{"sails too fast", `{"vessel_class":"feeder","nodes":[{"port":"H","t":0},{"port":"P1","type":"pu","t":0},{"port":"H","t":2}]}`},
		{"outside window", `{"vessel_class":"feeder","nodes":[{"port":"H","t":0},{"port":"P1","type":"pu","t":10},{"port":"H","t":11}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeRoute(prob, rows, []byte(tt.data))
			assert.Error(t, err)
		})
	}

	col, err := decodeRoute(prob, rows, []byte(`{"vessel_class":"feeder","origin":"exact","nodes":[{"port":"H","t":0},{"port":"P1","type":"pu","t":1},{"port":"H","t":2}]}`))
	require.NoError(t, err)
	assert.Equal(t, domain.OriginExact, col.Origin)
	assert.InDelta(t, 14, col.ObjCoeff, 1e-9)
}
