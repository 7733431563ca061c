package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/pathfinder/internal/filter"
	"github.com/terra-clan/pathfinder/internal/models"
)

// Catalog handlers. Filters come from the query string: q, level, duration,
// category; each tag parameter may repeat or hold a comma-separated list.

func (s *Server) listFiltered(state filter.State) models.LearningPathList {
	all := s.catalog.LearningPaths()
	matched := filter.Apply(all, state)
	return models.LearningPathList{
		LearningPaths: matched,
		Total:         len(matched),
		CatalogSize:   len(all),
	}
}

func (s *Server) handleListLearningPaths(w http.ResponseWriter, r *http.Request) {
	state := filter.ParseState(r.URL.Query())
	respondJSON(w, http.StatusOK, s.listFiltered(state))
}

func (s *Server) handleGetLearningPath(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lp := s.catalog.GetLearningPath(id)
	if lp == nil {
		respondError(w, http.StatusNotFound, "not_found", "learning path not found")
		return
	}
	respondJSON(w, http.StatusOK, lp)
}

func (s *Server) handleListCareers(w http.ResponseWriter, r *http.Request) {
	careers := s.catalog.Careers()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"careers": careers,
		"total":   len(careers),
	})
}

func (s *Server) handleGetCareer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	career := s.catalog.GetCareer(id)
	if career == nil {
		respondError(w, http.StatusNotFound, "not_found", "career not found")
		return
	}
	respondJSON(w, http.StatusOK, career)
}
