package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/creamcroissant/ovenboard/internal/order"
	"github.com/creamcroissant/ovenboard/internal/service"
)

// OrderHandler exposes the order views and the status update endpoint.
type OrderHandler struct {
	orders service.OrderService
}

// NewOrderHandler constructs an order handler.
func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List returns enriched order views.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	views, err := h.orders.List(r.Context(), limit)
	if err != nil {
		respondUpstream(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": views})
}

// Get returns one enriched order view.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondUpstream(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"order": view})
}

// UpdateStatus applies a lifecycle transition.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	to, err := order.ParseStatus(payload.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), to); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTransition):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, order.ErrUnknownStatus):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondUpstream(w, err)
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// History returns the status audit trail for one order.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.orders.StatusHistory(r.Context(), chi.URLParam(r, "id"), 50)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "status history unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// Elapsed returns the current pending-elapsed string once.
func (h *OrderHandler) Elapsed(w http.ResponseWriter, r *http.Request) {
	elapsed, pending, err := h.orders.PendingElapsed(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondUpstream(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"pending": pending, "elapsed": elapsed})
}

// elapsedTick is how often the pending-elapsed stream refreshes.
const elapsedTick = time.Second

// ElapsedStream emits the pending-elapsed string once per second over SSE.
// The stream ends as soon as the order leaves the pending stage or the
// client disconnects; the ticker never outlives the request.
func (h *OrderHandler) ElapsedStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	id := chi.URLParam(r, "id")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ticker := time.NewTicker(elapsedTick)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		elapsed, pending, err := h.orders.PendingElapsed(ctx, id)
		if err != nil || !pending {
			fmt.Fprint(w, "event: done\ndata: {}\n\n")
			flusher.Flush()
			return
		}
		fmt.Fprintf(w, "data: {\"elapsed\":%q}\n\n", elapsed)
		flusher.Flush()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func respondUpstream(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrUpstream):
		respondError(w, http.StatusBadGateway, "storefront unavailable")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
