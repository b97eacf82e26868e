package pool

import (
	"sync"

	"github.com/daunfamily/maritime-vrp/internal/domain"
)

// Reader is the read side shared by both pool scopes.
type Reader interface {
	Contains(c domain.Column) bool
	Columns() []domain.Column
	Len() int
}

// ColumnPool is the pool of one branch node. It is owned by the goroutine
// solving that node and is not safe for concurrent use.
type ColumnPool struct {
	s set
}

func NewColumnPool() *ColumnPool {
	return &ColumnPool{s: newSet()}
}

func (p *ColumnPool) Contains(c domain.Column) bool {
	return p.s.find(c, Key(c))
}

// Insert adds c unless an equal column is already present.
func (p *ColumnPool) Insert(c domain.Column) bool {
	return p.s.insert(c)
}

// Columns returns the columns in insertion order.
func (p *ColumnPool) Columns() []domain.Column {
	return p.s.snapshot()
}

func (p *ColumnPool) Len() int { return len(p.s.cols) }

// Clone copies the pool for a child node.
func (p *ColumnPool) Clone() *ColumnPool {
	c := NewColumnPool()
	for _, col := range p.s.cols {
		c.s.insert(col)
	}
	return c
}

// GlobalPool holds columns valid at every branch node. It is safe for
// concurrent use; inserting the same column from several goroutines leaves
// exactly one copy whatever the interleaving. A nil *GlobalPool reads as empty.
type GlobalPool struct {
	mu sync.RWMutex
	s  set
}

func NewGlobalPool() *GlobalPool {
	return &GlobalPool{s: newSet()}
}

func (p *GlobalPool) Contains(c domain.Column) bool {
	if p == nil {
		return false
	}
	key := Key(c)
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.s.find(c, key)
}

func (p *GlobalPool) Insert(c domain.Column) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.s.insert(c)
}

// Promote inserts every column and returns how many were new.
func (p *GlobalPool) Promote(cols []domain.Column) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	added := 0
	for _, c := range cols {
		if p.s.insert(c) {
			added++
		}
	}
	return added
}

// Columns returns a snapshot in insertion order.
func (p *GlobalPool) Columns() []domain.Column {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.s.snapshot()
}

func (p *GlobalPool) Len() int {
	if p == nil {
		return 0
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.s.cols)
}

// Merge returns the columns the master problem is built from: global
// columns first, then node columns not already in the global pool. global
// may be nil.
func Merge(global Reader, node Reader) []domain.Column {
	if global == nil {
		return node.Columns()
	}
	merged := newSet()
	for _, c := range global.Columns() {
		merged.insert(c)
	}
	for _, c := range node.Columns() {
		merged.insert(c)
	}
	return merged.cols
}

// Contains reports whether c is in any of the given pools. nil pools are skipped.
func Contains(c domain.Column, pools ...Reader) bool {
	for _, p := range pools {
		if p != nil && p.Contains(c) {
			return true
		}
	}
	return false
}
