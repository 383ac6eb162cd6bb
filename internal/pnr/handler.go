package pnr

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"civiceye/pkg/platform/httputil"
)

// Handler exposes the verification endpoint.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the PNR routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/pnr/verify", h.handleVerify)
}

// VerifyRequest carries the candidate. It is decoded, checked, and discarded;
// the candidate is never logged or persisted.
type VerifyRequest struct {
	PNR string `json:"pnr"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[VerifyRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.service.Verify(r.Context(), req.PNR)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
