package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/daunfamily/maritime-vrp/internal/api/dto"
	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/ports"
	"github.com/daunfamily/maritime-vrp/internal/services"
)

// Upper bounds on what a single request may ask for.
const (
	maxRoundsLimit = 10000
	maxTimeLimit   = 30 * time.Minute
)

type SolveHandler struct {
	Workspace *services.Workspace
	Solver    ports.LinearSolver
	Reporter  ports.PricingReporter
	Defaults  services.Params
}

// Solve runs column generation on the node described by the request body and
// returns the run report.
func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.SolveRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	svcReq, msg := h.toServiceRequest(req)
	if msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	rep, err := services.SolveInstance(r.Context(), svcReq, h.Workspace, h.Solver, h.Reporter)
	switch {
	case errors.Is(err, ports.ErrProblemNotFound):
		writeError(w, r, http.StatusNotFound, "instance not found")
		return
	case errors.Is(err, services.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidProblem):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrEmptyPool):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		log.WithError(err).Error("solve failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewSolveResponse(rep))
}

func (h *SolveHandler) toServiceRequest(req dto.SolveRequest) (services.SolveRequest, string) {
	out := services.SolveRequest{
		Instance: strings.TrimSpace(req.Instance),
		Params:   h.Defaults,
	}
	if out.Instance == "" {
		return out, "instance is required"
	}

	for _, row := range req.EqualityRows {
		ref, err := row.RowRef()
		if err != nil {
			return out, "equality_rows: " + err.Error()
		}
		out.EqualityRows = append(out.EqualityRows, ref)
	}
	for _, arc := range req.ExcludedArcs {
		from, err := arc.From.RowRef()
		if err != nil {
			return out, "excluded_arcs: " + err.Error()
		}
		to, err := arc.To.RowRef()
		if err != nil {
			return out, "excluded_arcs: " + err.Error()
		}
		out.ExcludedArcs = append(out.ExcludedArcs, services.ArcExclusion{From: from, To: to})
	}

	if req.MaxRounds != nil {
		if *req.MaxRounds < 1 || *req.MaxRounds > maxRoundsLimit {
			return out, "max_rounds must be between 1 and 10000"
		}
		out.Params.MaxRounds = *req.MaxRounds
	}
	if req.TimeLimitSeconds != nil {
		limit := time.Duration(*req.TimeLimitSeconds * float64(time.Second))
		if limit <= 0 || limit > maxTimeLimit {
			return out, "time_limit_seconds must be positive and at most 1800"
		}
		out.Params.TimeLimit = limit
	}
	if req.SolveInteger != nil {
		out.Params.SolveInteger = *req.SolveInteger
	}

	return out, ""
}
