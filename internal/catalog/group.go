package catalog

import "woostore/storefront/internal/domain"

var Uncategorized = domain.CategoryRef{ID: 0, Name: "Uncategorized"}

type Group struct {
	Category domain.CategoryRef
	Products []domain.Product
}

// GroupByCategory groups products by their first category, in order of first appearance.
// Products without a category go to Uncategorized.
func GroupByCategory(products []domain.Product) []Group {
	groups := make([]Group, 0)
	index := make(map[int64]int)

	for _, p := range products {
		category := Uncategorized
		if len(p.Categories) > 0 {
			category = p.Categories[0]
		}

		i, ok := index[category.ID]
		if !ok {
			i = len(groups)
			index[category.ID] = i
			groups = append(groups, Group{Category: category})
		}
		groups[i].Products = append(groups[i].Products, p)
	}
	return groups
}
