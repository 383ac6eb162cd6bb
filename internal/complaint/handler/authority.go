package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"civiceye/internal/account"
	"civiceye/internal/complaint/models"
	"civiceye/internal/complaint/service"
	"civiceye/internal/complaint/store"
	"civiceye/internal/platform/middleware"
	"civiceye/pkg/platform/httputil"
	platformstrings "civiceye/pkg/platform/strings"
)

func (h *Handler) registerAuthority(r chi.Router, validator middleware.JWTValidator) {
	adminOnly := r.With(
		middleware.RequireAuth(validator, h.logger),
		middleware.RequireRole(h.logger,
			string(account.RoleRailwayAdmin),
			string(account.RoleTrafficAdmin)),
	)

	adminOnly.Get("/api/authority/complaints", h.handleList)
	adminOnly.Get("/api/authority/complaints/{id}", h.handleDetail)
	adminOnly.Patch("/api/authority/complaints/{id}/status", h.handleTransitionByID)
	adminOnly.Put("/api/reports/update-status/{ticketId}", h.handleTransitionByTicket)
	adminOnly.Get("/api/authority/analytics", h.handleAnalytics)
}

// roleScope pins an authority to its jurisdiction. Unknown roles see nothing
// scoped away, but RequireRole keeps them out before this matters.
func roleScope(role string) models.Type {
	switch account.Role(role) {
	case account.RoleRailwayAdmin:
		return models.TypeRailway
	case account.RoleTrafficAdmin:
		return models.TypeTraffic
	}
	return ""
}

// ListResponse is one page of the authority queue.
type ListResponse struct {
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	Complaints []models.AuthorityView `json:"complaints"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := models.ListFilter{
		Type:   roleScope(middleware.GetRole(r.Context())),
		Search: q.Get("search"),
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PageSize, _ = strconv.Atoi(q.Get("limit"))
	for _, raw := range platformstrings.DedupeAndTrim(q["status"]) {
		if status := models.Status(raw); status.Valid() {
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	filter.Normalize()

	views, total, err := h.service.ListForAuthority(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if views == nil {
		views = []models.AuthorityView{}
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{
		Total:      total,
		Page:       filter.Page,
		Complaints: views,
	})
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Detail(r.Context(),
		chi.URLParam(r, "id"),
		roleScope(middleware.GetRole(r.Context())))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleTransitionByID(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, store.Locator{InternalID: chi.URLParam(r, "id")}, "Status updated.")
}

func (h *Handler) handleTransitionByTicket(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, store.Locator{TicketID: chi.URLParam(r, "ticketId")}, "Status updated successfully.")
}

// TransitionResponse acknowledges a status change.
type TransitionResponse struct {
	Message  string        `json:"message"`
	TicketID string        `json:"ticketId"`
	Status   models.Status `json:"status"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, loc store.Locator, message string) {
	req, ok := httputil.DecodeJSON[models.TransitionRequest](w, r, h.logger)
	if !ok {
		return
	}

	c, err := h.service.Transition(r.Context(), loc, *req, service.TransitionMeta{
		ActorID:   middleware.GetUserID(r.Context()),
		RequestID: middleware.GetRequestID(r.Context()),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, TransitionResponse{
		Message:  message,
		TicketID: c.TicketID,
		Status:   c.Status,
	})
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Analytics(r.Context(), roleScope(middleware.GetRole(r.Context())))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}
