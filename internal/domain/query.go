package domain

import "strconv"

const (
	DefaultPerPage           = 12
	MaxPerPage               = 100
	DefaultCategoriesPerPage = 50
)

// ProductQuery selects a page of products. Zero values are omitted from the request.
type ProductQuery struct {
	Page     int
	PerPage  int
	Status   string
	Search   string
	Category string // Category id
	MinPrice string
	MaxPrice string
	OrderBy  string // menu_order, date, price, popularity, rating, title
	Order    string // asc or desc
}

// Params returns the query as WooCommerce REST query parameters
func (q ProductQuery) Params() map[string]string {
	params := map[string]string{}
	if q.Page > 0 {
		params["page"] = strconv.Itoa(q.Page)
	}
	if q.PerPage > 0 {
		params["per_page"] = strconv.Itoa(q.PerPage)
	}
	optional := map[string]string{
		"status":    q.Status,
		"search":    q.Search,
		"category":  q.Category,
		"min_price": q.MinPrice,
		"max_price": q.MaxPrice,
		"orderby":   q.OrderBy,
		"order":     q.Order,
	}
	for k, v := range optional {
		if v != "" {
			params[k] = v
		}
	}
	return params
}

type CategoryQuery struct {
	PerPage   int
	HideEmpty bool
}

func (q CategoryQuery) Params() map[string]string {
	params := map[string]string{
		"hide_empty": strconv.FormatBool(q.HideEmpty),
	}
	if q.PerPage > 0 {
		params["per_page"] = strconv.Itoa(q.PerPage)
	}
	return params
}
