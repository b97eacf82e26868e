package services

import "errors"

var (
	// ErrInfeasible reports that the restricted master problem of a node has
	// no feasible point, or that the solver failed on it. The node must be
	// pruned.
	ErrInfeasible = errors.New("master problem infeasible")

	// ErrEmptyPool reports that no column could be built for a node.
	ErrEmptyPool = errors.New("column pool is empty")

	// ErrInvalidRequest reports a solve request that does not fit its instance.
	ErrInvalidRequest = errors.New("invalid solve request")
)
