package repositories

import (
	"context"
	"errors"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daunfamily/maritime-vrp/internal/platform/db"
	"github.com/daunfamily/maritime-vrp/internal/ports"
)

// Runs against a live database only when DATABASE_URL is set.
func TestPostgresRepositoryRoundTrip(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()

	conn, err := db.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitSchema(ctx, conn))
	require.NoError(t, SeedFromJSON(ctx, conn, instancesDir+"/two-port.json"))
	// seeding twice replaces the instance
	require.NoError(t, SeedFromJSON(ctx, conn, instancesDir+"/two-port.json"))

	repo := NewPostgresProblemRepository(conn)
	names, err := repo.ListProblems(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "two-port")

	want, err := NewJSONProblemRepository(instancesDir).LoadProblem(ctx, "two-port")
	require.NoError(t, err)
	got, err := repo.LoadProblem(ctx, "two-port")
	require.NoError(t, err)
	assert.Equal(t, want.NumTimeSteps, got.NumTimeSteps)
	assert.Equal(t, want.Distances, got.Distances)
	require.Equal(t, len(want.Ports), len(got.Ports))
	for i := range want.Ports {
		assert.Equal(t, *want.Ports[i], *got.Ports[i])
	}
	require.Equal(t, len(want.VesselClasses), len(got.VesselClasses))
	for i := range want.VesselClasses {
		assert.Equal(t, *want.VesselClasses[i], *got.VesselClasses[i])
	}

	_, err = repo.LoadProblem(ctx, "no-such-instance")
	assert.True(t, errors.Is(err, ports.ErrProblemNotFound))
}

func TestPostgresRepositoryNilDB(t *testing.T) {
	repo := NewPostgresProblemRepository(nil)
	_, err := repo.ListProblems(context.Background())
	assert.Error(t, err)
	assert.Error(t, InitSchema(context.Background(), nil))
}
