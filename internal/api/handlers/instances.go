package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/daunfamily/maritime-vrp/internal/api/dto"
	"github.com/daunfamily/maritime-vrp/internal/ports"
)

// InstanceHandler exposes read-only instance listing.
type InstanceHandler struct {
	Repo ports.ProblemRepository
}

func (h *InstanceHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	names, err := h.Repo.ListProblems(r.Context())
	if err != nil {
		log.WithError(err).Error("list instances failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if names == nil {
		names = []string{}
	}

	writeJSON(w, r, http.StatusOK, dto.ListInstancesResponse{Instances: names})
}
