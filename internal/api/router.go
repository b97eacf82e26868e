package api

import (
	"net/http"

	"github.com/daunfamily/maritime-vrp/internal/api/handlers"
	"github.com/daunfamily/maritime-vrp/internal/ports"
	"github.com/daunfamily/maritime-vrp/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(ws *services.Workspace, solver ports.LinearSolver, params services.Params) http.Handler {
	mux := http.NewServeMux()

	instanceHandler := &handlers.InstanceHandler{Repo: ws.Repo}
	solveHandler := &handlers.SolveHandler{
		Workspace: ws,
		Solver:    solver,
		Defaults:  params,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/instances", instanceHandler.List)
	mux.HandleFunc("/solve", solveHandler.Solve)

	return loggingMiddleware(mux)
}
