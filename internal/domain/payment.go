package domain

import (
	"errors"
	"fmt"
)

type PaymentMethod string

const (
	PaymentNone           PaymentMethod = ""
	PaymentBkash          PaymentMethod = "bKash"
	PaymentNagad          PaymentMethod = "Nagad"
	PaymentCashOnDelivery PaymentMethod = "Cash On Delivery"
)

var ErrUnknownPaymentMethod = errors.New("unknown payment method")

// PaymentMethods lists the options offered at the payment step, in display order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentBkash, PaymentNagad, PaymentCashOnDelivery}
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentBkash, PaymentNagad, PaymentCashOnDelivery:
		return true
	}
	return false
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !m.Valid() {
		return PaymentNone, fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, s)
	}
	return m, nil
}
