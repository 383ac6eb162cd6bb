// Package handler exposes the complaint HTTP surface: the citizen submission
// and listing endpoints, the public tracker, and the authority triage routes.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"civiceye/internal/complaint/models"
	"civiceye/internal/complaint/service"
	"civiceye/internal/platform/device"
	"civiceye/internal/platform/middleware"
	"civiceye/pkg/platform/httputil"
)

// Handler wires complaint endpoints to the service layer.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func NewHandler(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts all complaint routes. Submission accepts guests, so it runs
// under OptionalAuth; the tracker is fully public.
func (h *Handler) Register(r chi.Router, validator middleware.JWTValidator) {
	r.With(middleware.OptionalAuth(validator, h.logger)).
		Post("/api/complaints", h.handleSubmit)
	r.With(middleware.RequireAuth(validator, h.logger)).
		Get("/api/complaints/my", h.handleMine)
	r.Get("/api/complaints/track/{ticketId}", h.handleTrack)

	h.registerAuthority(r, validator)
}

// SubmitResponse acknowledges a submission with the ticket id the citizen
// needs for tracking.
type SubmitResponse struct {
	Message   string           `json:"message"`
	TicketID  string           `json:"ticketId"`
	Complaint models.OwnerView `json:"complaint"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[models.SubmitRequest](w, r, h.logger)
	if !ok {
		return
	}

	c, err := h.service.Submit(r.Context(), *req, service.SubmitMeta{
		SubmitterID:  middleware.GetUserID(r.Context()),
		SubmittedVia: device.Label(r.UserAgent()),
		RequestID:    middleware.GetRequestID(r.Context()),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, SubmitResponse{
		Message:   "Complaint submitted successfully.",
		TicketID:  c.TicketID,
		Complaint: c.ToOwnerView(),
	})
}

// MineResponse lists the caller's complaints.
type MineResponse struct {
	Count      int                `json:"count"`
	Complaints []models.OwnerView `json:"complaints"`
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if views == nil {
		views = []models.OwnerView{}
	}
	httputil.WriteJSON(w, http.StatusOK, MineResponse{Count: len(views), Complaints: views})
}

func (h *Handler) handleTrack(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Track(r.Context(), chi.URLParam(r, "ticketId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}
