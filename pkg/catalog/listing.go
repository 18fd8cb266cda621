package catalog

import (
	"strings"

	"github.com/shopa-beauty/storefront-api/pkg/models"
)

const DefaultPerPage = 5

// Search keeps products whose title contains term, ignoring case. An empty
// term keeps everything.
func Search(products []models.Product, term string) []models.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products
	}

	var out []models.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), term) {
			out = append(out, p)
		}
	}
	return out
}

// Paginate slices products into 1-based pages. Pages past the end are empty.
func Paginate(products []models.Product, page, perPage int) models.ProductPage {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	total := len(products)
	result := models.ProductPage{
		Products:    []models.Product{},
		Total:       total,
		Pages:       total / perPage,
		CurrentPage: page,
	}
	if total%perPage != 0 {
		result.Pages++
	}

	if page > result.Pages {
		return result
	}
	start := (page - 1) * perPage
	end := start + min(perPage, total-start)
	result.Products = products[start:end]
	return result
}
