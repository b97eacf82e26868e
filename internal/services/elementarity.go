package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/daunfamily/maritime-vrp/internal/domain"
)

// ElementaritySchedule drives the exact pricing. The labeling forbids
// revisits only for a fraction of the rows, the critical ones, starting at
// Start and growing by Increment while the cheaper levels only produce
// non-elementary routes. The last level is EndRelaxed, or End when
// elementary routes are required.
type ElementaritySchedule struct {
	Start      float64
	Increment  float64
	EndRelaxed float64
	End        float64
}

func DefaultElementaritySchedule() ElementaritySchedule {
	return ElementaritySchedule{Start: 0.1, Increment: 0.1, EndRelaxed: 0.6, End: 1.0}
}

func (s ElementaritySchedule) Validate() error {
	switch {
	case s.Start <= 0 || s.Start > 1:
		return fmt.Errorf("elementarity schedule: start %g must be in (0,1]", s.Start)
	case s.Increment <= 0:
		return fmt.Errorf("elementarity schedule: increment %g must be positive", s.Increment)
	case s.EndRelaxed < s.Start || s.EndRelaxed > s.End:
		return fmt.Errorf("elementarity schedule: relaxed end %g must be in [%g,%g]", s.EndRelaxed, s.Start, s.End)
	case s.End > 1:
		return fmt.Errorf("elementarity schedule: end %g must be at most 1", s.End)
	}
	return nil
}

// Levels lists the fractions tried in order. The cap is always the last
// level even when it is not a multiple of the increment.
func (s ElementaritySchedule) Levels(tryElementary bool) []float64 {
	limit := s.EndRelaxed
	if tryElementary {
		limit = s.End
	}
	var levels []float64
	for k := 0; ; k++ {
		pct := math.Round((s.Start+float64(k)*s.Increment)*1e9) / 1e9
		if pct >= limit-1e-9 {
			break
		}
		levels = append(levels, pct)
	}
	return append(levels, limit)
}

// criticalRows returns the ceil(pct*R) rows with the largest prize. Ties go
// to the lower row index.
func criticalRows(prize []float64, pct float64) []int {
	n := int(math.Ceil(pct*float64(len(prize)) - 1e-9))
	if n > len(prize) {
		n = len(prize)
	}
	order := make([]int, len(prize))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return prize[order[a]] > prize[order[b]] })
	return order[:n]
}

// rowPrizes is what visiting each row is worth under the given duals: the
// penalty saved plus the dual captured.
func rowPrizes(rows *domain.RowTable, duals domain.MPLinearSolution) []float64 {
	prize := make([]float64, rows.Len())
	for r := range prize {
		prize[r] = rows.Penalty(r) + duals.RowDual(rows.Key(r))
	}
	return prize
}
