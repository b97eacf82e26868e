package repositories

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daunfamily/maritime-vrp/internal/ports"
)

const instancesDir = "../../../data/instances"

func TestJSONRepositoryLoadsShippedInstances(t *testing.T) {
	repo := NewJSONProblemRepository(instancesDir)

	names, err := repo.ListProblems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"baltic-feeder", "two-port"}, names)

	for _, name := range names {
		prob, err := repo.LoadProblem(context.Background(), name)
		require.NoError(t, err, name)
		assert.Equal(t, name, prob.Name)
		assert.NoError(t, prob.Validate())
	}
}

func TestJSONRepositoryTwoPort(t *testing.T) {
	prob, err := NewJSONProblemRepository(instancesDir).LoadProblem(context.Background(), "two-port")
	require.NoError(t, err)

	assert.Equal(t, 10, prob.NumTimeSteps)
	require.Equal(t, 3, prob.NumPorts())
	assert.Equal(t, "H", prob.Hub().Name)
	assert.Equal(t, 3.0, prob.Ports[1].PickupDemand)
	assert.Equal(t, 4.0, prob.Ports[2].DeliveryDemand)
	require.Equal(t, 1, prob.NumVesselClasses())
	assert.Equal(t, "feeder", prob.VesselClasses[0].Name)
	assert.Equal(t, 1.0, prob.Distance(prob.Ports[1], prob.Ports[2]))
	assert.Equal(t, 24.0, prob.TotalPenalty())
}

func TestJSONRepositoryNotFound(t *testing.T) {
	repo := NewJSONProblemRepository(t.TempDir())

	for _, name := range []string{"missing", "", "../two-port", ".hidden"} {
		_, err := repo.LoadProblem(context.Background(), name)
		if !errors.Is(err, ports.ErrProblemNotFound) {
			t.Fatalf("LoadProblem(%q) err = %v, want ErrProblemNotFound", name, err)
		}
	}
}

func TestJSONRepositoryRejectsInvalidInstance(t *testing.T) {
	dir := t.TempDir()
	bad := `{"name": "bad", "num_time_steps": 1, "ports": [{"name": "H"}], "vessel_classes": [], "distances": [[0]]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(bad), 0o644))

	_, err := NewJSONProblemRepository(dir).LoadProblem(context.Background(), "bad")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ports.ErrProblemNotFound))
}

func TestParseInstanceRejectsUnknownFields(t *testing.T) {
	_, err := ParseInstance([]byte(`{"name": "x", "trucks": 3}`))
	assert.Error(t, err)

	_, err = ParseInstance([]byte(`{"name": "  "}`))
	assert.Error(t, err)
}
