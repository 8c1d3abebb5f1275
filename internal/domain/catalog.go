package domain

// ProductStatusPublish is the only status shown in the storefront
const ProductStatusPublish = "publish"

type Image struct {
	ID  int64  `json:"id,omitempty"`
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// Product is a read-only catalog entry owned by the upstream store
type Product struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug,omitempty"`
	Permalink        string        `json:"permalink"`
	Status           string        `json:"status,omitempty"`
	Price            string        `json:"price"`         // Decimal as string, e.g. "10.00"
	RegularPrice     string        `json:"regular_price"` // Empty when not set upstream
	SalePrice        string        `json:"sale_price"`
	StockStatus      string        `json:"stock_status,omitempty"`
	ShortDescription string        `json:"short_description"`
	Description      string        `json:"description,omitempty"`
	Images           []Image       `json:"images"`
	Categories       []CategoryRef `json:"categories"`
}

// PrimaryImage returns the first image src or an empty string
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].Src
}

// OnSale reports whether a sale price is set and differs from the regular price
func (p Product) OnSale() bool {
	return p.SalePrice != "" && p.SalePrice != p.RegularPrice
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Parent      int64  `json:"parent"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// ProductPage is one page of products with the upstream pagination totals
type ProductPage struct {
	Products      []Product `json:"products"`
	Page          int       `json:"page"`           // Requested page number
	PerPage       int       `json:"per_page"`       // Requested page size
	TotalPages    int       `json:"total_pages"`    // From X-WP-TotalPages, 0 when unknown
	TotalProducts int       `json:"total_products"` // From X-WP-Total
}
