package domain

type CheckoutStep int

const (
	StepReviewCart    CheckoutStep = 1
	StepShippingInfo  CheckoutStep = 2
	StepPaymentMethod CheckoutStep = 3
	StepConfirmation  CheckoutStep = 4
)

// String representation (for logging)
func (s CheckoutStep) String() string {
	switch s {
	case StepReviewCart:
		return "REVIEW_CART"
	case StepShippingInfo:
		return "SHIPPING_INFO"
	case StepPaymentMethod:
		return "PAYMENT_METHOD"
	case StepConfirmation:
		return "CONFIRMATION"
	}
	return "UNKNOWN"
}

func (s CheckoutStep) IsTerminal() bool {
	return s == StepConfirmation
}

// CanTransitionTo checks if transition is allowed, ignoring guards.
func (s CheckoutStep) CanTransitionTo(target CheckoutStep) bool {
	transitions := map[CheckoutStep][]CheckoutStep{
		StepReviewCart:    {StepShippingInfo},
		StepShippingInfo:  {StepPaymentMethod, StepReviewCart},
		StepPaymentMethod: {StepConfirmation, StepShippingInfo},
		StepConfirmation:  {StepReviewCart},
	}

	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}
