package repositories

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/platform/obs"
	"github.com/daunfamily/maritime-vrp/internal/ports"
)

// JSONProblemRepository reads instances from <Dir>/<name>.json.
type JSONProblemRepository struct{ Dir string }

func NewJSONProblemRepository(dir string) *JSONProblemRepository {
	return &JSONProblemRepository{Dir: dir}
}

func (r *JSONProblemRepository) LoadProblem(ctx context.Context, name string) (prob *domain.Problem, err error) {
	defer obs.Time(ctx, "json_repo.load_problem")(&err)

	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("load problem %q: %w", name, ports.ErrProblemNotFound)
	}
	data, err := os.ReadFile(filepath.Join(r.Dir, name+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load problem %q: %w", name, ports.ErrProblemNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load problem %q: %w", name, err)
	}
	f, err := ParseInstance(data)
	if err != nil {
		return nil, fmt.Errorf("load problem %q: %w", name, err)
	}
	return f.Problem()
}

func (r *JSONProblemRepository) ListProblems(ctx context.Context) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(r.Dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".json"))
	}
	sort.Strings(names)
	return names, nil
}
