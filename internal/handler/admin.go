package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dodorico/property-assistant/internal/catalog"
	"github.com/dodorico/property-assistant/internal/middleware"
	"github.com/dodorico/property-assistant/internal/model"
	"github.com/dodorico/property-assistant/pkg/logger"
)

// StateResetter discards a user's conversation state.
type StateResetter interface {
	Reset(ctx context.Context, userID string) error
}

// AdminHandler handles the operator API: catalog inspection, cache control and
// conversation state resets.
type AdminHandler struct {
	catalog  *catalog.Client
	resetter StateResetter
	logger   *logger.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(cat *catalog.Client, resetter StateResetter, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		catalog:  cat,
		resetter: resetter,
		logger:   log,
	}
}

// SearchCatalog handles POST /api/v1/catalog/search. It runs a search with
// the given filters, bypassing the model entirely.
func (h *AdminHandler) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var filters model.SearchFilters
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.catalog.Search(ctx, filters)
	if err != nil {
		h.logger.Error("catalog search failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ResolveLocation handles GET /api/v1/catalog/locations?q=...
func (h *AdminHandler) ResolveLocation(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	loc := h.catalog.ResolveLocation(r.Context(), query)
	if loc == nil {
		writeError(w, http.StatusNotFound, "no matching location")
		return
	}

	writeJSON(w, http.StatusOK, loc)
}

// InvalidateCache handles POST /api/v1/catalog/cache/invalidate.
func (h *AdminHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.catalog.InvalidateCache()
	h.logger.Info("catalog cache invalidated",
		zap.String("subject", middleware.GetSubject(r.Context())))
	writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// ResetState handles DELETE /api/v1/conversations/{userID}.
func (h *AdminHandler) ResetState(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := middleware.ValidateUserID(userID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.resetter.Reset(r.Context(), userID); err != nil {
		h.logger.Error("state reset failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to reset conversation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
