package http

import (
	"errors"
	"net/http"

	"github.com/ctgpost/MarketingWebTools/internal/catalog"
	"github.com/ctgpost/MarketingWebTools/internal/domain"
	"github.com/ctgpost/MarketingWebTools/internal/session"
	"go.uber.org/zap"
)

type SessionHandler struct {
	responder
	sessions Sessions
}

func NewSessionHandler(sessions Sessions, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		responder: newResponder(logger),
		sessions:  sessions,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type CartResponse struct {
	Cart   domain.CartView `json:"cart"`
	Totals domain.Totals   `json:"totals"`
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create(r.Context())
	h.respondJSON(w, http.StatusCreated, s.Snapshot())
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	h.respondJSON(w, http.StatusOK, s.Snapshot())
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if err := h.sessions.Delete(r.Context(), s.ID()); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
		h.logger.Error("delete session failed", zap.String("session_id", s.ID()), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	snap := sessionFromContext(r.Context()).Snapshot()
	h.respondJSON(w, http.StatusOK, CartResponse{Cart: snap.Cart, Totals: snap.Checkout.Totals})
}

func (h *SessionHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	var req AddItemRequestDTO
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	if _, err := s.AddItem(req.ProductID); err != nil {
		h.handleProductError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, ActionResponse{Applied: true, Session: s.Snapshot()})
}

func (rs responder) handleProductError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrProductNotFound) {
		rs.respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}
	rs.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
