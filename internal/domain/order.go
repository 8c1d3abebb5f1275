package domain

const (
	OrderStatusPending = "pending"
	DefaultCountry     = "ZA"
)

type OrderLineItem struct {
	ProductID int64  `json:"product_id" binding:"required,gt=0"`
	Quantity  int    `json:"quantity" binding:"required,gte=1"`
	Name      string `json:"name,omitempty"`
	Price     string `json:"price,omitempty"`
}

type BillingAddress struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address_1" binding:"required"`
	Address2  string `json:"address_2"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state"`
	Postcode  string `json:"postcode" binding:"required"`
	Country   string `json:"country" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required"`
}

type ShippingAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
}

// ShippingFromBilling copies the shared address fields
func ShippingFromBilling(b BillingAddress) ShippingAddress {
	return ShippingAddress{
		FirstName: b.FirstName,
		LastName:  b.LastName,
		Company:   b.Company,
		Address1:  b.Address1,
		Address2:  b.Address2,
		City:      b.City,
		State:     b.State,
		Postcode:  b.Postcode,
		Country:   b.Country,
	}
}

// OrderDocument is the order-creation body sent once to the upstream store and then discarded
type OrderDocument struct {
	PaymentMethod      PaymentMethod   `json:"payment_method" binding:"required,oneof=cod bacs"`
	PaymentMethodTitle string          `json:"payment_method_title"`
	SetPaid            bool            `json:"set_paid"`
	Status             string          `json:"status,omitempty"`
	CustomerID         int64           `json:"customer_id"`
	LineItems          []OrderLineItem `json:"line_items" binding:"required,min=1,dive"`
	Billing            BillingAddress  `json:"billing"`
	Shipping           ShippingAddress `json:"shipping"`
	CustomerNote       string          `json:"customer_note"`
}

// Order is the subset of the upstream order returned to the caller
type Order struct {
	ID          int64  `json:"id"`
	Number      string `json:"number"`
	OrderKey    string `json:"order_key,omitempty"`
	Status      string `json:"status"`
	Currency    string `json:"currency"`
	Total       string `json:"total"`
	DateCreated string `json:"date_created,omitempty"`
}
