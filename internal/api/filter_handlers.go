package api

import (
	"net/http"

	"github.com/terra-clan/pathfinder/internal/filter"
	"github.com/terra-clan/pathfinder/internal/models"
)

// ToggleFilterRequest flips one tag in the session's filter state
type ToggleFilterRequest struct {
	Category string `json:"category"`
	Value    string `json:"value"`
}

// SetQueryRequest replaces the free-text query
type SetQueryRequest struct {
	Query string `json:"query"`
}

// FilterResponse is a filter state together with the catalog it selects
type FilterResponse struct {
	Filters filter.State            `json:"filters"`
	Results models.LearningPathList `json:"results"`
}

func (s *Server) filterResponse(state filter.State) FilterResponse {
	return FilterResponse{Filters: state, Results: s.listFiltered(state)}
}

func (s *Server) handleGetFilters(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, s.filterResponse(s.filters.Get(sess.ID)))
}

func (s *Server) handleToggleFilter(w http.ResponseWriter, r *http.Request) {
	var req ToggleFilterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Value == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "value is required")
		return
	}

	sess := SessionFromContext(r.Context())
	state, err := s.filters.Toggle(sess.ID, req.Category, req.Value)
	if err != nil {
		respondServiceError(w, err, "toggle filter")
		return
	}
	respondJSON(w, http.StatusOK, s.filterResponse(state))
}

func (s *Server) handleSetFilterQuery(w http.ResponseWriter, r *http.Request) {
	var req SetQueryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess := SessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, s.filterResponse(s.filters.SetQuery(sess.ID, req.Query)))
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, s.filterResponse(s.filters.Clear(sess.ID)))
}

func (s *Server) handleMyLearningPaths(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, s.listFiltered(s.filters.Get(sess.ID)))
}
