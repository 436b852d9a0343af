package http

import (
	"errors"
	"net/http"

	"github.com/ctgpost/MarketingWebTools/internal/domain"
	"github.com/ctgpost/MarketingWebTools/internal/session"
	"go.uber.org/zap"
)

// CheckoutHandler exposes the checkout wizard actions. A guarded action that
// does not apply answers 200 with applied=false.
type CheckoutHandler struct {
	responder
}

func NewCheckoutHandler(logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{responder: newResponder(logger)}
}

type ShippingRequestDTO struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Area    string `json:"area"`
}

type PaymentRequestDTO struct {
	Method string `json:"method"`
}

func (h *CheckoutHandler) Open(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*session.Session).OpenCheckout)
}

func (h *CheckoutHandler) Proceed(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*session.Session).Proceed)
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*session.Session).Back)
}

func (h *CheckoutHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*session.Session).CloseCheckout)
}

func (h *CheckoutHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*session.Session).Dismiss)
}

func (h *CheckoutHandler) SetShipping(w http.ResponseWriter, r *http.Request) {
	var req ShippingRequestDTO
	if !h.decodeJSON(w, r, &req) {
		return
	}

	info := domain.ShippingInfo{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		Area:    domain.Area(req.Area),
	}
	h.act(w, r, func(s *session.Session) bool { return s.UpdateShipping(info) })
}

func (h *CheckoutHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequestDTO
	if !h.decodeJSON(w, r, &req) {
		return
	}

	method, err := domain.ParsePaymentMethod(req.Method)
	if errors.Is(err, domain.ErrUnknownPaymentMethod) {
		h.respondErrorDetails(w, http.StatusBadRequest, "invalid_payment_method",
			"payment method must be one of bKash, Nagad, Cash On Delivery", err.Error())
		return
	}
	h.act(w, r, func(s *session.Session) bool { return s.SelectPayment(method) })
}

func (h *CheckoutHandler) act(w http.ResponseWriter, r *http.Request, action func(*session.Session) bool) {
	s := sessionFromContext(r.Context())
	applied := action(s)
	h.respondJSON(w, http.StatusOK, ActionResponse{Applied: applied, Session: s.Snapshot()})
}
