package catalog

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// AllCategories is the sentinel listed before real categories
const AllCategories = "All"

// MaxRelatedProducts bounds the related products shown with a product
const MaxRelatedProducts = 4

// FallbackCategories are served when the catalog cannot be read
var FallbackCategories = []string{"Amigurumi", "Decoração", "Infantil", "Moda"}

// SortCategories sorts names in place using Brazilian Portuguese collation
func SortCategories(names []string) {
	collate.New(language.BrazilianPortuguese, collate.IgnoreCase).SortStrings(names)
}

// CategoryList returns the distinct non-empty categories sorted for display,
// preceded by the AllCategories sentinel.
func CategoryList(categories []string) []string {
	seen := make(map[string]struct{}, len(categories))
	distinct := make([]string, 0, len(categories))
	for _, c := range categories {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		distinct = append(distinct, c)
	}
	SortCategories(distinct)
	return append([]string{AllCategories}, distinct...)
}

// FallbackCategoryList returns the static category list with the sentinel
func FallbackCategoryList() []string {
	fallback := make([]string, len(FallbackCategories))
	copy(fallback, FallbackCategories)
	return CategoryList(fallback)
}

// FilterByCategory returns products in category; AllCategories and the
// empty string match everything.
func FilterByCategory(products []Product, category string) []Product {
	if category == "" || category == AllCategories {
		return products
	}
	result := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			result = append(result, p)
		}
	}
	return result
}

// RelatedProducts returns up to MaxRelatedProducts products sharing the
// category of product, excluding product itself, in candidate order.
func RelatedProducts(product Product, candidates []Product) []Product {
	result := make([]Product, 0, MaxRelatedProducts)
	for _, c := range candidates {
		if len(result) == MaxRelatedProducts {
			break
		}
		if c.ID == product.ID || c.Category != product.Category {
			continue
		}
		result = append(result, c)
	}
	return result
}
