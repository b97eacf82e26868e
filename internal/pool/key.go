// Package pool holds the column pools read by the master problem and filled
// by the pricing subproblem.
package pool

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/daunfamily/maritime-vrp/internal/domain"
)

// Key hashes the parts of a column that define its identity. Columns with
// equal keys still need a full comparison.
func Key(c domain.Column) uint64 {
	d := xxhash.New()
	var buf [8]byte

	write := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
	}

	write(c.ObjCoeff)
	binary.LittleEndian.PutUint64(buf[:], uint64(len(c.PortCoeff)))
	_, _ = d.Write(buf[:])
	for _, f := range c.PortCoeff {
		write(f)
	}
	for _, f := range c.VcCoeff {
		write(f)
	}

	return d.Sum64()
}

// KeyString is Key in hexadecimal, used as an external identifier.
func KeyString(c domain.Column) string {
	return strconv.FormatUint(Key(c), 16)
}

// set is an insertion ordered set of columns. It is not safe for concurrent use.
type set struct {
	cols    []domain.Column
	buckets map[uint64][]int
}

func newSet() set {
	return set{buckets: make(map[uint64][]int)}
}

func (s *set) find(c domain.Column, key uint64) bool {
	for _, i := range s.buckets[key] {
		if s.cols[i].Equal(c) {
			return true
		}
	}
	return false
}

func (s *set) insert(c domain.Column) bool {
	key := Key(c)
	if s.find(c, key) {
		return false
	}
	s.buckets[key] = append(s.buckets[key], len(s.cols))
	s.cols = append(s.cols, c)
	return true
}

func (s *set) snapshot() []domain.Column {
	out := make([]domain.Column, len(s.cols))
	copy(out, s.cols)
	return out
}
