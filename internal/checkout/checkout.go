package checkout

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"woostore/storefront/internal/cart"
	"woostore/storefront/internal/domain"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrEmptyCart is returned before any network call when there is nothing to order
	ErrEmptyCart = errors.New("your cart is empty, add some items before checkout")

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidationError names the first form field that failed validation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Form is what the shopper fills in at checkout
type Form struct {
	Billing       domain.BillingAddress
	Shipping      domain.ShippingAddress
	SameAsBilling bool
	PaymentMethod string
	CustomerNote  string
}

// NewForm returns a form with the storefront defaults
func NewForm() Form {
	return Form{
		Billing:       domain.BillingAddress{Country: domain.DefaultCountry},
		Shipping:      domain.ShippingAddress{Country: domain.DefaultCountry},
		SameAsBilling: true,
		PaymentMethod: domain.PaymentMethodCOD.String(),
	}
}

// Validate checks the required billing fields and the email format
func (f Form) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"first name", f.Billing.FirstName},
		{"last name", f.Billing.LastName},
		{"email", f.Billing.Email},
		{"phone", f.Billing.Phone},
		{"address 1", f.Billing.Address1},
		{"city", f.Billing.City},
		{"postcode", f.Billing.Postcode},
		{"country", f.Billing.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{
				Field:   r.field,
				Message: fmt.Sprintf("please fill in all required fields, missing: %s", r.field),
			}
		}
	}

	if !emailPattern.MatchString(f.Billing.Email) {
		return &ValidationError{Field: "email", Message: "please enter a valid email address"}
	}
	return nil
}

// Compose builds the order document for the given cart items
func Compose(items []domain.CartLineItem, form Form) (*domain.OrderDocument, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	method := domain.ParsePaymentMethod(form.PaymentMethod)
	shipping := form.Shipping
	if form.SameAsBilling {
		shipping = domain.ShippingFromBilling(form.Billing)
	}

	lineItems := make([]domain.OrderLineItem, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, domain.OrderLineItem{
			ProductID: item.ID,
			Quantity:  item.Quantity,
			Name:      item.Name,
			Price:     item.Price,
		})
	}

	return &domain.OrderDocument{
		PaymentMethod:      method,
		PaymentMethodTitle: method.GetTitle(),
		SetPaid:            false,
		Status:             domain.OrderStatusPending,
		CustomerID:         0,
		LineItems:          lineItems,
		Billing:            form.Billing,
		Shipping:           shipping,
		CustomerNote:       form.CustomerNote,
	}, nil
}

// OrderSubmitter sends a composed order to the storefront proxy
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, doc *domain.OrderDocument) (*domain.Order, error)
}

type Checkout struct {
	cart      *cart.Store
	submitter OrderSubmitter
}

func New(store *cart.Store, submitter OrderSubmitter) *Checkout {
	return &Checkout{
		cart:      store,
		submitter: submitter,
	}
}

// PlaceOrder submits the cart. On success the cart is cleared and the upstream order is returned;
// on failure the cart is left untouched so the shopper can try again.
func (c *Checkout) PlaceOrder(ctx context.Context, form Form) (*domain.Order, error) {
	items := c.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	if err := form.Validate(); err != nil {
		return nil, err
	}

	doc, err := Compose(items, form)
	if err != nil {
		return nil, err
	}

	order, err := c.submitter.SubmitOrder(ctx, doc)
	if err != nil {
		log.Errorf("❌ Order submission failed: %v", err)
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	c.cart.ClearCart(ctx)
	log.Infof("✅ Order %d placed, cart cleared", order.ID)
	return order, nil
}
