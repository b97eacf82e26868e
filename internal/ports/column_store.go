package ports

import (
	"context"

	"github.com/daunfamily/maritime-vrp/internal/domain"
)

// ColumnStore persists globally valid columns so that solvers working on the
// same instance can share them. Saving a column twice is a no-op.
type ColumnStore interface {
	SaveColumns(ctx context.Context, instance string, cols []domain.Column) (int, error)
	// LoadColumns rebuilds the stored columns against prob's row layout.
	LoadColumns(ctx context.Context, instance string, prob *domain.Problem) ([]domain.Column, error)
}
