package lpsolver

import (
	"context"
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/daunfamily/maritime-vrp/internal/ports"
)

// bbNode fixes a subset of the binary variables to 0 or 1.
type bbNode struct {
	fixed map[int]float64
	depth int
}

func (n bbNode) child(j int, v float64) bbNode {
	fixed := make(map[int]float64, len(n.fixed)+1)
	for k, x := range n.fixed {
		fixed[k] = x
	}
	fixed[j] = v
	return bbNode{fixed: fixed, depth: n.depth + 1}
}

type bbResult struct {
	node bbNode
	z    float64
	x    []float64
	err  error
}

// relax builds the LP relaxation of a node. Fixed variables are substituted
// out: a variable fixed to 1 moves its column into the right-hand side and
// its cost into the constant.
func relax(p *denseProblem, binary []bool, n bbNode) (*denseProblem, []int) {
	free := make([]int, 0, p.numVars()-len(n.fixed))
	for j := 0; j < p.numVars(); j++ {
		if _, ok := n.fixed[j]; !ok {
			free = append(free, j)
		}
	}

	sub := &denseProblem{
		constant: p.constant,
		obj:      make([]float64, len(free)),
		a:        make([][]float64, p.numRows()),
		senses:   append([]ports.Sense(nil), p.senses...),
		rhs:      append([]float64(nil), p.rhs...),
	}
	for j, v := range n.fixed {
		if v == 0 {
			continue
		}
		sub.constant += p.obj[j] * v
		for i := range p.a {
			sub.rhs[i] -= p.a[i][j] * v
		}
	}
	for i := range p.a {
		sub.a[i] = make([]float64, len(free))
		for k, j := range free {
			sub.a[i][k] = p.a[i][j]
		}
	}
	for k, j := range free {
		sub.obj[k] = p.obj[j]
		if binary[j] {
			sub.addUpperBound(k, 1)
		}
	}
	return sub, free
}

func (s *GonumSolver) solveNode(p *denseProblem, binary []bool, n bbNode) bbResult {
	sub, free := relax(p, binary, n)
	z, xs, err := sub.solvePrimal(s.opts.Tolerance)
	if err != nil {
		return bbResult{node: n, err: err}
	}
	x := make([]float64, p.numVars())
	for j, v := range n.fixed {
		x[j] = v
	}
	for k, j := range free {
		x[j] = xs[k]
	}
	return bbResult{node: n, z: z, x: x}
}

// mostFractional returns the binary variable farthest from integrality, or
// -1 if the point is integral.
func (s *GonumSolver) mostFractional(x []float64, binary []bool) int {
	best, bestDist := -1, s.opts.Tolerance
	for j, v := range x {
		if !binary[j] {
			continue
		}
		d := math.Abs(v - math.Round(v))
		if d > bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

// solveBinary runs a depth-first branch-and-bound. Up to Threads open nodes
// are solved concurrently; results are then merged in stack order so the
// search does not depend on scheduling.
func (s *GonumSolver) solveBinary(ctx context.Context, p *denseProblem, binary []bool) (*ports.SolverResult, error) {
	var (
		incumbent []float64
		best      = math.Inf(1)
		stack     = []bbNode{{fixed: map[int]float64{}}}
		solved    int
	)

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if solved >= s.opts.NodeLimit {
			log.WithFields(log.Fields{"nodes": solved, "open": len(stack)}).Warn("branch-and-bound node limit reached")
			break
		}

		batch := s.opts.Threads
		if batch > len(stack) {
			batch = len(stack)
		}
		if rest := s.opts.NodeLimit - solved; batch > rest {
			batch = rest
		}
		nodes := make([]bbNode, batch)
		for i := range nodes {
			nodes[i] = stack[len(stack)-1-i]
		}
		stack = stack[:len(stack)-batch]

		results := make([]bbResult, batch)
		g, _ := errgroup.WithContext(ctx)
		for i, n := range nodes {
			g.Go(func() error {
				results[i] = s.solveNode(p, binary, n)
				return nil
			})
		}
		_ = g.Wait()
		solved += batch

		var children []bbNode
		for _, r := range results {
			if r.err != nil {
				if errors.Is(r.err, lp.ErrInfeasible) {
					continue
				}
				// an unbounded node is never expected with binary variables
				return nil, fmt.Errorf("branch-and-bound node at depth %d: %w", r.node.depth, r.err)
			}
			if r.z >= best-s.opts.Tolerance {
				continue
			}
			j := s.mostFractional(r.x, binary)
			if j < 0 {
				best = r.z
				incumbent = r.x
				for k := range incumbent {
					if binary[k] {
						incumbent[k] = math.Round(incumbent[k])
					}
				}
				continue
			}
			// pushed last, popped first: dive on x_j = 1
			children = append(children, r.node.child(j, 0), r.node.child(j, 1))
		}
		// keep the first result's children on top of the stack
		for i := len(children) - 2; i >= 0; i -= 2 {
			stack = append(stack, children[i], children[i+1])
		}
	}

	if incumbent == nil {
		if len(stack) > 0 {
			return nil, ErrNodeLimit
		}
		return nil, mapSimplexError(lp.ErrInfeasible)
	}
	log.WithFields(log.Fields{"nodes": solved, "objective": best}).Debug("branch-and-bound done")
	// open nodes left mean the node limit cut the search short
	return &ports.SolverResult{Objective: best, Primal: incumbent, Truncated: len(stack) > 0}, nil
}
