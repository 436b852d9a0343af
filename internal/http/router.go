package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handlers struct {
	Products *ProductHandler
	Sessions *SessionHandler
	Checkout *CheckoutHandler
	Lab      *LabHandler
}

// NewRouter mounts the shop API under /api/v1.
func NewRouter(h Handlers, sessions Sessions, requestTimeout time.Duration, logger *zap.Logger) chi.Router {
	rs := newResponder(logger)
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		rs.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", h.Products.List)
		r.Get("/categories", h.Products.Categories)
		r.Get("/payment-methods", h.Products.PaymentMethods)

		r.Post("/sessions", h.Sessions.Create)
		r.Route("/sessions/{session_id}", func(r chi.Router) {
			r.Use(SessionCtx(sessions, rs.logger))

			r.Get("/", h.Sessions.Get)
			r.Delete("/", h.Sessions.Delete)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Sessions.GetCart)
				r.Post("/items", h.Sessions.AddItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/open", h.Checkout.Open)
				r.Post("/proceed", h.Checkout.Proceed)
				r.Post("/back", h.Checkout.Back)
				r.Post("/close", h.Checkout.Close)
				r.Post("/dismiss", h.Checkout.Dismiss)
				r.Put("/shipping", h.Checkout.SetShipping)
				r.Put("/payment", h.Checkout.SetPayment)
			})

			r.Route("/lab", func(r chi.Router) {
				r.Post("/tip", h.Lab.Tip)
				r.Post("/caption", h.Lab.Caption)
				r.Post("/keywords", h.Lab.Keywords)
			})

			r.Post("/audit", h.Lab.Audit)
		})
	})

	return r
}
