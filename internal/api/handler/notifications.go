package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/creamcroissant/ovenboard/internal/notification"
	"github.com/creamcroissant/ovenboard/internal/service"
)

// NotificationHandler exposes the ledger to dashboard views.
type NotificationHandler struct {
	notifications service.NotificationService
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(notifications service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns ledger entries under the query filters.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	entries := h.notifications.List(r.Context(), filter)
	respondJSON(w, http.StatusOK, map[string]any{"notifications": entries})
}

// UnreadCount returns the unread badge value for a module.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	module := notification.Module(r.URL.Query().Get("module"))
	count := h.notifications.UnreadCount(r.Context(), module)
	respondJSON(w, http.StatusOK, map[string]any{"unread": count})
}

// Add appends a notification; used by internal tooling and tests.
func (h *NotificationHandler) Add(w http.ResponseWriter, r *http.Request) {
	var draft notification.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(draft.Title) == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	entry := h.notifications.Add(r.Context(), draft)
	respondJSON(w, http.StatusCreated, map[string]any{"notification": entry})
}

// MarkRead flips one entry to read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.notifications.MarkRead(r.Context(), chi.URLParam(r, "id"))
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// MarkAllRead flips every (optionally module-scoped) entry to read.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	module := notification.Module(r.URL.Query().Get("module"))
	h.notifications.MarkAllRead(r.Context(), module)
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Delete removes one entry.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.notifications.Delete(r.Context(), chi.URLParam(r, "id"))
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ClearAll removes every entry.
func (h *NotificationHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	h.notifications.ClearAll(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Stream pushes ledger changes to the view over SSE. Subscription ends
// with the request context, so closed views never leak a listener.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	changes, cancel := h.notifications.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			data, err := json.Marshal(change)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func filterFromQuery(r *http.Request) notification.Filter {
	q := r.URL.Query()
	filter := notification.Filter{
		Module: notification.Module(q.Get("module")),
		Type:   notification.Type(q.Get("type")),
	}
	if raw := q.Get("unread_only"); raw == "1" || strings.EqualFold(raw, "true") {
		filter.UnreadOnly = true
	}
	if raw := q.Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			filter.Limit = v
		}
	}
	return filter
}
