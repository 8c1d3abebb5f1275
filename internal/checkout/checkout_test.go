package checkout

import (
	"context"
	"errors"
	"testing"

	"woostore/storefront/internal/cart"
	"woostore/storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	calls int
	doc   *domain.OrderDocument
	order *domain.Order
	err   error
}

func (s *fakeSubmitter) SubmitOrder(_ context.Context, doc *domain.OrderDocument) (*domain.Order, error) {
	s.calls++
	s.doc = doc
	return s.order, s.err
}

func validForm() Form {
	f := NewForm()
	f.Billing = domain.BillingAddress{
		FirstName: "Thandi",
		LastName:  "Nkosi",
		Address1:  "12 Long Street",
		City:      "Cape Town",
		Postcode:  "8001",
		Country:   "ZA",
		Email:     "thandi@example.com",
		Phone:     "+27 21 555 0101",
	}
	return f
}

func TestForm_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(f *Form)
		wantField string
	}{
		{"valid", func(f *Form) {}, ""},
		{"missing first name", func(f *Form) { f.Billing.FirstName = " " }, "first name"},
		{"missing phone", func(f *Form) { f.Billing.Phone = "" }, "phone"},
		{"missing postcode", func(f *Form) { f.Billing.Postcode = "" }, "postcode"},
		{"bad email", func(f *Form) { f.Billing.Email = "thandi@example" }, "email"},
		{"email with space", func(f *Form) { f.Billing.Email = "than di@example.com" }, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			err := f.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestCompose(t *testing.T) {
	items := []domain.CartLineItem{{ID: 1, Name: "Chair", Price: "10.00", Quantity: 2}}

	t.Run("same as billing copies address", func(t *testing.T) {
		doc, err := Compose(items, validForm())
		require.NoError(t, err)

		assert.Equal(t, domain.PaymentMethodCOD, doc.PaymentMethod)
		assert.Equal(t, "Cash on Delivery", doc.PaymentMethodTitle)
		assert.Equal(t, "pending", doc.Status)
		assert.False(t, doc.SetPaid)
		assert.Equal(t, "Cape Town", doc.Shipping.City)
		assert.Equal(t, "Thandi", doc.Shipping.FirstName)
		require.Len(t, doc.LineItems, 1)
		assert.Equal(t, domain.OrderLineItem{ProductID: 1, Quantity: 2, Name: "Chair", Price: "10.00"}, doc.LineItems[0])
	})

	t.Run("separate shipping and bank transfer", func(t *testing.T) {
		f := validForm()
		f.SameAsBilling = false
		f.Shipping = domain.ShippingAddress{FirstName: "Sipho", City: "Durban", Country: "ZA"}
		f.PaymentMethod = "card"
		f.CustomerNote = "Leave at the gate"

		doc, err := Compose(items, f)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentMethodBACS, doc.PaymentMethod)
		assert.Equal(t, "Direct Bank Transfer", doc.PaymentMethodTitle)
		assert.Equal(t, "Durban", doc.Shipping.City)
		assert.Equal(t, "Leave at the gate", doc.CustomerNote)
	})

	t.Run("empty cart", func(t *testing.T) {
		_, err := Compose(nil, validForm())
		assert.ErrorIs(t, err, ErrEmptyCart)
	})
}

func TestPlaceOrder_EmptyCartRejectedBeforeNetwork(t *testing.T) {
	ctx := context.Background()
	submitter := &fakeSubmitter{}
	c := New(cart.New(ctx, cart.NewMemoryStorage()), submitter)

	_, err := c.PlaceOrder(ctx, validForm())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, submitter.calls)
}

func TestPlaceOrder_InvalidFormRejectedBeforeNetwork(t *testing.T) {
	ctx := context.Background()
	store := cart.New(ctx, cart.NewMemoryStorage())
	store.AddToCart(ctx, domain.CartLineItem{ID: 1, Name: "Chair", Price: "10.00"})
	submitter := &fakeSubmitter{}

	f := validForm()
	f.Billing.Email = "nope"
	_, err := New(store, submitter).PlaceOrder(ctx, f)

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, 0, submitter.calls)
}

func TestPlaceOrder_SuccessClearsCart(t *testing.T) {
	ctx := context.Background()
	store := cart.New(ctx, cart.NewMemoryStorage())
	store.AddToCart(ctx, domain.CartLineItem{ID: 1, Name: "Chair", Price: "10.00"})
	store.AddToCart(ctx, domain.CartLineItem{ID: 1, Name: "Chair", Price: "10.00"})
	submitter := &fakeSubmitter{order: &domain.Order{ID: 321}}

	order, err := New(store, submitter).PlaceOrder(ctx, validForm())
	require.NoError(t, err)
	assert.Equal(t, int64(321), order.ID)
	assert.True(t, store.IsEmpty())
	assert.Equal(t, 2, submitter.doc.LineItems[0].Quantity)
}

func TestPlaceOrder_FailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	store := cart.New(ctx, cart.NewMemoryStorage())
	store.AddToCart(ctx, domain.CartLineItem{ID: 1, Name: "Chair", Price: "10.00"})
	submitter := &fakeSubmitter{err: errors.New("status 500")}

	_, err := New(store, submitter).PlaceOrder(ctx, validForm())
	assert.Error(t, err)
	assert.Equal(t, 1, store.ItemCount())
}
