package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"storefront-service/internal/models"
)

//go:embed products.json
var productData []byte

// Catalog is a read-only product provider backed by static data. Lookups
// return explicit not-found results instead of silent zero values.
type Catalog struct {
	products []models.Product
	byID     map[string]*models.Product
	bySlug   map[string]*models.Product
}

// Load parses the embedded product data.
func Load() (*Catalog, error) {
	var products []models.Product
	if err := json.Unmarshal(productData, &products); err != nil {
		return nil, fmt.Errorf("failed to parse product data: %w", err)
	}

	c := &Catalog{
		products: products,
		byID:     make(map[string]*models.Product, len(products)),
		bySlug:   make(map[string]*models.Product, len(products)),
	}
	for i := range c.products {
		p := &c.products[i]
		c.byID[p.ID] = p
		c.bySlug[p.Slug] = p
	}
	return c, nil
}

// Products returns all products in catalog order.
func (c *Catalog) Products() []models.Product {
	return c.products
}

// ByID retrieves a product by id.
func (c *Catalog) ByID(id string) (*models.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("product not found: %s", id)
	}
	return p, nil
}

// BySlug retrieves a product by slug.
func (c *Catalog) BySlug(slug string) (*models.Product, error) {
	p, ok := c.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("product not found: %s", slug)
	}
	return p, nil
}

// ByCategory returns products in the given category.
func (c *Catalog) ByCategory(category string) []models.Product {
	var out []models.Product
	for _, p := range c.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Bestsellers returns products flagged as bestsellers.
func (c *Catalog) Bestsellers() []models.Product {
	var out []models.Product
	for _, p := range c.products {
		if p.IsBestseller {
			out = append(out, p)
		}
	}
	return out
}

// Search returns products whose name or category contains the query,
// case-insensitive.
func (c *Catalog) Search(query string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []models.Product
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			out = append(out, p)
		}
	}
	return out
}

// Variant resolves a product variant by its weight label.
func Variant(p *models.Product, weight string) (models.Variant, bool) {
	for _, v := range p.Variants {
		if v.Weight == weight {
			return v, true
		}
	}
	return models.Variant{}, false
}
