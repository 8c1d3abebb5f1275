package domain

// CartLineItem is one product entry in a cart. Unique by ID within a cart.
type CartLineItem struct {
	ID       int64  `json:"id" binding:"required,gt=0"`
	Name     string `json:"name" binding:"required"`
	Price    string `json:"price" binding:"required,numeric"` // Decimal as string
	Image    string `json:"image"`
	Quantity int    `json:"quantity"`
}

// CartLineItemFromProduct builds a line item for the given product with quantity zero;
// the cart sets the quantity when the item is added.
func CartLineItemFromProduct(p Product) CartLineItem {
	return CartLineItem{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Image: p.PrimaryImage(),
	}
}
