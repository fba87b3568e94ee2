package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const maxCleanBody = 1 << 20

func (s *Server) handleHearingEntities(w http.ResponseWriter, r *http.Request) {
	hearingID := chi.URLParam(r, "hearingID")
	if !validHearingID.MatchString(hearingID) {
		jsonError(w, "invalid hearing id", http.StatusBadRequest)
		return
	}
	entities, err := s.store.HearingEntities(r.Context(), hearingID)
	if err != nil {
		s.log.Error("hearing entities query failed", "hearing", hearingID, "error", err)
		jsonError(w, "failed to read entities", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hearing_id": hearingID,
		"entities":   entities,
	})
}

func (s *Server) handleEntityCounts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	counts, err := s.store.EntityCounts(r.Context(), limit)
	if err != nil {
		s.log.Error("entity counts query failed", "error", err)
		jsonError(w, "failed to count entities", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": counts})
}

type cleanRequest struct {
	Candidates []string `json:"candidates"`
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCleanBody)
	var req cleanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entities": s.cleaner.Clean(req.Candidates)})
}
