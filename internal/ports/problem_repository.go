package ports

import (
	"context"
	"errors"

	"github.com/daunfamily/maritime-vrp/internal/domain"
)

var ErrProblemNotFound = errors.New("problem not found")

// Port: a boundary for retrieving instance data from a data source.
type ProblemRepository interface {
	// Retrieve a validated problem by instance name.
	LoadProblem(ctx context.Context, name string) (*domain.Problem, error)
	// Retrieve the names of all stored instances.
	ListProblems(ctx context.Context) ([]string, error)
}
