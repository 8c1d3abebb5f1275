package domain

type PaymentMethod string

func (p PaymentMethod) String() string {
	return string(p)
}

const (
	PaymentMethodCOD  PaymentMethod = "cod"  // Cash on delivery
	PaymentMethodBACS PaymentMethod = "bacs" // Direct bank transfer
)

var PaymentMethods = []PaymentMethod{
	PaymentMethodCOD,
	PaymentMethodBACS,
}

// ParsePaymentMethod maps a form selection to a payment method. Anything but "cod" is a bank transfer.
func ParsePaymentMethod(s string) PaymentMethod {
	if PaymentMethod(s) == PaymentMethodCOD {
		return PaymentMethodCOD
	}
	return PaymentMethodBACS
}

func (p PaymentMethod) GetTitle() string {
	switch p {
	case PaymentMethodCOD:
		return "Cash on Delivery"
	case PaymentMethodBACS:
		return "Direct Bank Transfer"
	default:
		return "Unknown"
	}
}
