package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/domain/domaintest"
)

func newTestStore(t *testing.T) (*RedisColumnStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisColumnStore(client), mr
}

func fixtureColumns(t *testing.T, prob *domain.Problem) []domain.Column {
	t.Helper()
	rows := domain.NewRowTable(prob)

	full, err := domain.NewColumn(prob, rows, domaintest.FullRoute(prob), domain.OriginExact)
	require.NoError(t, err)

	hub, p2 := prob.Ports[0], prob.Ports[2]
	single, err := domain.NewColumn(prob, rows, domain.Route{
		VesselClass: prob.VesselClasses[0],
		Nodes: []domain.Node{
			{Port: hub, Type: domain.Hub, TimeStep: 0},
			{Port: p2, Type: domain.Delivery, TimeStep: 1},
			{Port: hub, Type: domain.Hub, TimeStep: 2},
		},
	}, domain.OriginInitial)
	require.NoError(t, err)

	return []domain.Column{full, single}
}

func TestRedisColumnStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	prob := domaintest.TwoPortProblem(t)
	cols := fixtureColumns(t, prob)

	added, err := store.SaveColumns(ctx, prob.Name, cols)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	// saving again is a no-op
	added, err = store.SaveColumns(ctx, prob.Name, cols)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	// a fresh problem object has different port pointers; columns are rebuilt
	other := domaintest.TwoPortProblem(t)
	got, err := store.LoadColumns(ctx, prob.Name, other)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byObj := map[float64]domain.Column{}
	for _, c := range got {
		byObj[c.ObjCoeff] = c
	}
	for _, want := range cols {
		c, ok := byObj[want.ObjCoeff]
		require.True(t, ok, "missing column with obj %v", want.ObjCoeff)
		assert.True(t, c.Equal(want))
		assert.Equal(t, want.Origin, c.Origin)
		assert.Same(t, other.VesselClasses[0], c.Route.VesselClass)
	}
}

func TestRedisColumnStoreSeparatesInstances(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	prob := domaintest.TwoPortProblem(t)

	_, err := store.SaveColumns(ctx, "a", fixtureColumns(t, prob))
	require.NoError(t, err)

	got, err := store.LoadColumns(ctx, "b", prob)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.True(t, mr.Exists("columns:a"))
	assert.False(t, mr.Exists("columns:b"))
}

func TestRedisColumnStoreSkipsStaleEntries(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	prob := domaintest.TwoPortProblem(t)

	_, err := store.SaveColumns(ctx, prob.Name, fixtureColumns(t, prob))
	require.NoError(t, err)
	mr.HSet("columns:"+prob.Name, "zz", `{"vessel_class":"tanker","nodes":[]}`)
	mr.HSet("columns:"+prob.Name, "zy", `not json`)

	got, err := store.LoadColumns(ctx, prob.Name, prob)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRedisColumnStoreErrors(t *testing.T) {
	ctx := context.Background()
	prob := domaintest.TwoPortProblem(t)

	_, err := (&RedisColumnStore{}).SaveColumns(ctx, prob.Name, nil)
	assert.Error(t, err)

	store, mr := newTestStore(t)
	_, err = store.SaveColumns(ctx, "", fixtureColumns(t, prob))
	assert.Error(t, err)

	n, err := store.SaveColumns(ctx, prob.Name, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = store.SaveColumns(ctx, prob.Name, []domain.Column{{ObjCoeff: 1}})
	assert.Error(t, err, "column without a route")

	mr.Close()
	_, err = store.LoadColumns(ctx, prob.Name, prob)
	assert.Error(t, err)
}

func TestRedisColumnStoreSkipsRoutesTheProblemNoLongerAllows(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	prob := domaintest.TwoPortProblem(t)
	cols := fixtureColumns(t, prob)

	_, err := store.SaveColumns(ctx, prob.Name, cols)
	require.NoError(t, err)

	// FullRoute delivers to P1 at step 1
	narrowed := domaintest.TwoPortProblem(t)
	narrowed.Ports[1].DeliveryWindow = domain.TimeWindow{Start: 5, End: 9}
	got, err := store.LoadColumns(ctx, prob.Name, narrowed)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, cols[1].ObjCoeff, got[0].ObjCoeff, 1e-9)

	// FullRoute leaves the hub with 6 units on board
	smaller := domaintest.TwoPortProblem(t)
	smaller.VesselClasses[0].Capacity = 5
	got, err = store.LoadColumns(ctx, prob.Name, smaller)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Route.Visits(), 1)
}
