package checkout

import (
	"sync"

	"github.com/ctgpost/MarketingWebTools/internal/domain"
)

// Cart is the part of the cart store the machine reads and resets.
type Cart interface {
	Count() int
	Clear()
	Total(area domain.Area) domain.Totals
}

// Machine drives the four-step checkout wizard. Actions whose guard is not
// satisfied leave the state untouched and report false.
type Machine struct {
	mu       sync.Mutex
	cart     Cart
	open     bool
	step     domain.CheckoutStep
	shipping domain.ShippingInfo
	payment  domain.PaymentMethod
}

type State = domain.CheckoutState

func NewMachine(cart Cart) *Machine {
	return &Machine{
		cart:     cart,
		step:     domain.StepReviewCart,
		shipping: domain.NewShippingInfo(),
	}
}

// Open shows the checkout session, resuming at the stored step.
func (m *Machine) Open() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		return false
	}
	m.open = true
	return true
}

func (m *Machine) Proceed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.canProceed() {
		return false
	}
	return m.transition(m.step + 1)
}

func (m *Machine) Back() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.canGoBack() {
		return false
	}
	return m.transition(m.step - 1)
}

// Close completes the order from the confirmation step: the cart is emptied
// and the machine starts over at step 1.
func (m *Machine) Close() bool {
	m.mu.Lock()
	if !m.canClose() {
		m.mu.Unlock()
		return false
	}
	m.reset()
	m.mu.Unlock()

	m.cart.Clear()
	return true
}

// Dismiss hides the session without resetting it, except from the
// confirmation step where it behaves like Close.
func (m *Machine) Dismiss() bool {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return false
	}
	completed := m.step == domain.StepConfirmation
	if completed {
		m.reset()
	} else {
		m.open = false
	}
	m.mu.Unlock()

	if completed {
		m.cart.Clear()
	}
	return true
}

// SetShipping replaces the shipping form while on the shipping step.
// An empty area keeps the current one.
func (m *Machine) SetShipping(info domain.ShippingInfo) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open || m.step != domain.StepShippingInfo {
		return false
	}
	if info.Area == "" {
		info.Area = m.shipping.Area
	}
	m.shipping = info
	return true
}

// SelectPaymentMethod records the choice while on the payment step.
func (m *Machine) SelectPaymentMethod(method domain.PaymentMethod) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open || m.step != domain.StepPaymentMethod || !method.Valid() {
		return false
	}
	m.payment = method
	return true
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return State{
		Open:          m.open,
		Step:          m.step,
		StepName:      m.step.String(),
		Shipping:      m.shipping,
		PaymentMethod: m.payment,
		CanProceed:    m.canProceed(),
		CanGoBack:     m.canGoBack(),
		CanClose:      m.canClose(),
		Totals:        m.cart.Total(m.shipping.Area),
	}
}

// Restore puts the machine back into a previously captured state.
func (m *Machine) Restore(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = s.Open
	m.step = s.Step
	if m.step < domain.StepReviewCart || m.step > domain.StepConfirmation {
		m.step = domain.StepReviewCart
	}
	m.shipping = s.Shipping
	if m.shipping.Area == "" {
		m.shipping.Area = domain.AreaDhaka
	}
	m.payment = s.PaymentMethod
}

func (m *Machine) canProceed() bool {
	if !m.open {
		return false
	}
	switch m.step {
	case domain.StepReviewCart:
		return m.cart.Count() > 0
	case domain.StepShippingInfo:
		return m.shipping.Complete()
	case domain.StepPaymentMethod:
		return m.payment != domain.PaymentNone
	}
	return false
}

func (m *Machine) canGoBack() bool {
	return m.open && (m.step == domain.StepShippingInfo || m.step == domain.StepPaymentMethod)
}

func (m *Machine) canClose() bool {
	return m.open && m.step == domain.StepConfirmation
}

func (m *Machine) transition(target domain.CheckoutStep) bool {
	if !m.step.CanTransitionTo(target) {
		return false
	}
	m.step = target
	return true
}

// reset returns to step 1; the caller clears the cart once the lock is released.
func (m *Machine) reset() {
	m.open = false
	m.step = domain.StepReviewCart
	m.shipping = domain.NewShippingInfo()
	m.payment = domain.PaymentNone
}
