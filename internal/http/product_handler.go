package http

import (
	"net/http"

	"github.com/ctgpost/MarketingWebTools/internal/catalog"
	"github.com/ctgpost/MarketingWebTools/internal/domain"
	"go.uber.org/zap"
)

type Catalog interface {
	Filter(category string) []domain.Product
	Categories() []string
}

type ProductHandler struct {
	responder
	catalog Catalog
}

func NewProductHandler(c Catalog, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{responder: newResponder(logger), catalog: c}
}

type ProductResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Amount   int64  `json:"amount"`
	Image    string `json:"image"`
}

type ProductsResponse struct {
	Category string            `json:"category"`
	Products []ProductResponse `json:"products"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type PaymentMethodsResponse struct {
	PaymentMethods []domain.PaymentMethod `json:"payment_methods"`
}

// List returns the catalog filtered by the optional category query parameter.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = catalog.AllCategories
	}

	filtered := h.catalog.Filter(category)
	products := make([]ProductResponse, len(filtered))
	for i, p := range filtered {
		products[i] = ProductResponse{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Price:    p.Price,
			Amount:   p.Amount(),
			Image:    p.Image,
		}
	}

	h.respondJSON(w, http.StatusOK, &ProductsResponse{Category: category, Products: products})
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, &CategoriesResponse{Categories: h.catalog.Categories()})
}

func (h *ProductHandler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, &PaymentMethodsResponse{PaymentMethods: domain.PaymentMethods()})
}
