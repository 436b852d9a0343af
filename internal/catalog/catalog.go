package catalog

import (
	"context"
	"errors"

	"github.com/ctgpost/MarketingWebTools/internal/domain"
)

// AllCategories selects the whole catalog.
const AllCategories = "All"

var ErrProductNotFound = errors.New("product not found")

// Source supplies the ordered, read-only product list.
type Source interface {
	GetAllProducts(ctx context.Context) ([]domain.Product, error)
}

// Catalog is the product list loaded once at startup.
type Catalog struct {
	products []domain.Product
	byID     map[int64]domain.Product
}

func New(products []domain.Product) *Catalog {
	c := &Catalog{
		products: make([]domain.Product, len(products)),
		byID:     make(map[int64]domain.Product, len(products)),
	}
	copy(c.products, products)
	for _, p := range products {
		c.byID[p.ID] = p
	}
	return c
}

// Load reads the full product list from src.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	products, err := src.GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	return New(products), nil
}

func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Product(id int64) (domain.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

// Filter returns the products in category, keeping catalog order.
func (c *Catalog) Filter(category string) []domain.Product {
	return Filter(c.products, category)
}

// Categories returns "All" followed by each distinct category in catalog order.
func (c *Catalog) Categories() []string {
	return Categories(c.products)
}

func Filter(products []domain.Product, category string) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if category == "" || category == AllCategories || p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func Categories(products []domain.Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := []string{AllCategories}
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
