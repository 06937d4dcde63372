package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ateliernoir/search/internal/models"
)

// handleQuickSearch serves the storefront's inline search box. The search
// service is fail-soft, so this endpoint always answers 200 with at worst
// an empty result set.
func (s *Server) handleQuickSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	s.logger.Debug("quick search request", zap.String("query", q))
	result := s.service.QuickSearch(r.Context(), q, models.StatusPublished)
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleProductSearch(w http.ResponseWriter, r *http.Request) {
	var req models.ProductSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("product search request", zap.String("query", req.Query), zap.Int("limit", req.Limit))
	page, err := s.service.SearchProducts(r.Context(), &req)
	if err != nil {
		s.logger.Error("product search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleUpsertProduct(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.Name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if p.Status == "" {
		p.Status = models.StatusDraft
	}
	if err := s.storage.UpsertProduct(r.Context(), &p); err != nil {
		s.logger.Error("upsert product failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": p.ID, "status": "stored"})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.storage.GetProduct(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "product not found")
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleRefreshVocabulary(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.RefreshVocabulary(r.Context()); err != nil {
		s.logger.Error("vocabulary refresh failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
