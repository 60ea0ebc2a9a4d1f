package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/raysh454/vexora/internal/history"
	"github.com/raysh454/vexora/internal/logging"
)

func (s *Server) historyAvailable(w http.ResponseWriter) bool {
	if s.deps.History == nil {
		writeError(w, http.StatusServiceUnavailable, "history is disabled")
		return false
	}
	return true
}

func (s *Server) writeHistoryError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "history item not found")
		return
	}
	s.logger.Warn(op, logging.Err(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

// handleListHistory godoc
// @Summary List saved analyses, newest first
// @Tags history
// @Produce json
// @Param limit query int false "Maximum number of items"
// @Success 200 {array} model.HistoryItem
// @Router /history [get]
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if !s.historyAvailable(w) {
		return
	}
	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		v, err := strconv.Atoi(ls)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = v
	}
	items, err := s.deps.History.List(r.Context(), limit)
	if err != nil {
		s.writeHistoryError(w, "listing history", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleGetHistory godoc
// @Summary Get one saved analysis
// @Tags history
// @Produce json
// @Param id path string true "History item id"
// @Success 200 {object} model.HistoryItem
// @Failure 404 {object} ErrorResponse
// @Router /history/{id} [get]
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if !s.historyAvailable(w) {
		return
	}
	item, err := s.deps.History.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeHistoryError(w, "getting history item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleClearHistory godoc
// @Summary Delete every saved analysis
// @Tags history
// @Produce json
// @Success 200 {object} ClearHistoryResponse
// @Router /history [delete]
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if !s.historyAvailable(w) {
		return
	}
	if err := s.deps.History.Clear(r.Context()); err != nil {
		s.writeHistoryError(w, "clearing history", err)
		return
	}
	writeJSON(w, http.StatusOK, ClearHistoryResponse{Cleared: true})
}

// handleCompareHistory godoc
// @Summary Diff two saved analyses
// @Tags history
// @Produce json
// @Param id path string true "Base item id"
// @Param other path string true "Head item id"
// @Success 200 {object} history.Comparison
// @Failure 404 {object} ErrorResponse
// @Router /history/{id}/compare/{other} [get]
func (s *Server) handleCompareHistory(w http.ResponseWriter, r *http.Request) {
	if !s.historyAvailable(w) {
		return
	}
	cmp, err := s.deps.History.Compare(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "other"))
	if err != nil {
		s.writeHistoryError(w, "comparing history items", err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}
