package pricingsvc

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxRequestBytes = 1 << 20

// Handler serves the pricing endpoints from a local calculator.
type Handler struct {
	local *Local
}

// NewHandler returns the HTTP face of local.
func NewHandler(local *Local) *Handler {
	return &Handler{local: local}
}

// Mount registers the pricing routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Post(PathItem, h.handleItem)
	r.Post(PathTotals, h.handleTotals)
	r.Post(PathTypeMetrics, h.handleTypeMetrics)
	r.Post(PathQuote, h.handleQuote)
}

func (h *Handler) handleItem(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b, _ := h.local.CalculateItem(r.Context(), req.Item)
	WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) handleTotals(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, _ := h.local.CalculateQuoteTotals(r.Context(), req.Items, req.AdditionalCosts)
	WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) handleTypeMetrics(w http.ResponseWriter, r *http.Request) {
	var req TypeMetricsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.SystemType.Valid() {
		WriteError(w, http.StatusBadRequest, "unknown systemType")
		return
	}
	m, _ := h.local.CalculateTypeMetrics(r.Context(), req.Items, req.SystemType, req.AdditionalCosts)
	WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	q, _ := h.local.CalculateQuote(r.Context(), req.Items, req.AdditionalCosts)
	WriteJSON(w, http.StatusOK, q)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}
