package leads

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/launchpadhq/intake-platform/internal/scoring"
	"github.com/launchpadhq/intake-platform/internal/tenancy"
	"github.com/launchpadhq/intake-platform/pkg/logging"
)

// Handler serves the dashboard read API for leads.
type Handler struct {
	repo    Repository
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a leads handler.
func NewHandler(repo Repository, service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:    repo,
		service: service,
		logger:  logger,
	}
}

// ListLeadsResponse is the response for listing leads.
type ListLeadsResponse struct {
	Leads  []*Lead `json:"leads"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// ListLeads handles GET /api/leads requests.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	businessID, ok := tenancy.BusinessIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing business context", http.StatusBadRequest)
		return
	}

	filter := ListFilter{
		Limit:  50,
		Offset: 0,
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	if hotness := r.URL.Query().Get("hotness"); hotness != "" {
		filter.Hotness = scoring.Hotness(hotness)
	}
	if intent := r.URL.Query().Get("intent"); intent != "" {
		filter.Intent = scoring.Intent(intent)
	}

	result, err := h.repo.ListByBusiness(r.Context(), businessID, filter)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err, "business_id", businessID)
		http.Error(w, "failed to list leads", http.StatusInternalServerError)
		return
	}

	response := ListLeadsResponse{
		Leads:  result,
		Count:  len(result),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	}
	writeJSON(w, http.StatusOK, response)
}

// GetLead handles GET /api/leads/{leadID} requests.
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	businessID, ok := tenancy.BusinessIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing business context", http.StatusBadRequest)
		return
	}
	leadID := chi.URLParam(r, "leadID")

	lead, err := h.repo.GetByID(r.Context(), businessID, leadID)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			http.Error(w, "lead not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get lead", "error", err, "lead_id", leadID)
		http.Error(w, "failed to get lead", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// GetStats handles GET /api/stats requests with derived aggregates.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	businessID, ok := tenancy.BusinessIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing business context", http.StatusBadRequest)
		return
	}

	agg, err := h.repo.Aggregates(r.Context(), businessID)
	if err != nil {
		h.logger.Error("failed to compute aggregates", "error", err, "business_id", businessID)
		http.Error(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// UpdateNotesRequest is the body for PATCH /api/leads/{leadID}/notes.
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// UpdateNotes handles operator note edits.
func (h *Handler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	businessID, ok := tenancy.BusinessIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing business context", http.StatusBadRequest)
		return
	}
	leadID := chi.URLParam(r, "leadID")

	var req UpdateNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	lead, err := h.service.UpdateNotes(r.Context(), businessID, leadID, req.Notes)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			http.Error(w, "lead not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update notes", "error", err, "lead_id", leadID)
		http.Error(w, "failed to update notes", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// Rescore handles POST /api/leads/{leadID}/rescore requests.
func (h *Handler) Rescore(w http.ResponseWriter, r *http.Request) {
	businessID, ok := tenancy.BusinessIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing business context", http.StatusBadRequest)
		return
	}
	leadID := chi.URLParam(r, "leadID")

	lead, err := h.service.Rescore(r.Context(), businessID, leadID)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			http.Error(w, "lead not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to rescore lead", "error", err, "lead_id", leadID)
		http.Error(w, "failed to rescore lead", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
