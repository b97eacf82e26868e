package services

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/platform/obs"
	"github.com/daunfamily/maritime-vrp/internal/pool"
	"github.com/daunfamily/maritime-vrp/internal/ports"
)

// Workspace keeps one loaded problem and one global pool per instance, so
// that every run on an instance shares port pointers and promoted columns.
type Workspace struct {
	Repo  ports.ProblemRepository
	Store ports.ColumnStore

	mu        sync.Mutex
	instances map[string]*openInstance
}

type openInstance struct {
	prob   *domain.Problem
	global *pool.GlobalPool
}

// NewWorkspace creates a workspace. store may be nil.
func NewWorkspace(repo ports.ProblemRepository, store ports.ColumnStore) *Workspace {
	return &Workspace{Repo: repo, Store: store, instances: map[string]*openInstance{}}
}

// Open returns the problem and global pool of an instance, loading them on
// first use. Stored columns warm the pool; a failing store only logs.
func (w *Workspace) Open(ctx context.Context, name string) (*domain.Problem, *pool.GlobalPool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if inst, ok := w.instances[name]; ok {
		return inst.prob, inst.global, nil
	}

	prob, err := w.Repo.LoadProblem(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("open instance %q: %w", name, err)
	}

	global := pool.NewGlobalPool()
	if w.Store != nil {
		cols, err := w.Store.LoadColumns(ctx, name, prob)
		if err != nil {
			log.WithFields(log.Fields{"run_id": obs.RunID(ctx), "instance": name}).
				WithError(err).Warn("column store unavailable, starting cold")
		} else {
			n := global.Promote(cols)
			log.WithFields(log.Fields{"run_id": obs.RunID(ctx), "instance": name, "columns": n}).
				Info("global pool warmed from store")
		}
	}

	w.instances[name] = &openInstance{prob: prob, global: global}
	return prob, global, nil
}

// Promote adds cols to the instance's global pool and persists the new ones.
// It returns how many columns were new to the pool.
func (w *Workspace) Promote(ctx context.Context, name string, cols []domain.Column) (int, error) {
	w.mu.Lock()
	inst, ok := w.instances[name]
	w.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("promote columns: instance %q is not open", name)
	}
	if len(cols) == 0 {
		return 0, nil
	}

	added := inst.global.Promote(cols)
	if w.Store != nil {
		if _, err := w.Store.SaveColumns(ctx, name, cols); err != nil {
			return added, fmt.Errorf("promote columns: %w", err)
		}
	}
	return added, nil
}
