package domain

import "time"

// CheckoutState is a point-in-time view of the checkout wizard.
type CheckoutState struct {
	Open          bool          `json:"open"`
	Step          CheckoutStep  `json:"step"`
	StepName      string        `json:"step_name"`
	Shipping      ShippingInfo  `json:"shipping"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CanProceed    bool          `json:"can_proceed"`
	CanGoBack     bool          `json:"can_go_back"`
	CanClose      bool          `json:"can_close"`
	Totals        Totals        `json:"totals"`
}

type CartView struct {
	Items       []Product `json:"items"`
	Count       int       `json:"count"`
	JustAddedID int64     `json:"just_added_id,omitempty"`
}

// GenerationSlot is the display slot of one content lab tool.
type GenerationSlot struct {
	Subject   string    `json:"subject,omitempty"`
	Text      string    `json:"text"`
	Pending   bool      `json:"pending"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

type AuditSlot struct {
	URL       string    `json:"url,omitempty"`
	Score     int       `json:"score,omitempty"`
	HasScore  bool      `json:"has_score"`
	Pending   bool      `json:"pending"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// SessionSnapshot is everything a client needs to render one session.
type SessionSnapshot struct {
	ID       string         `json:"id"`
	Version  uint64         `json:"version"`
	Cart     CartView       `json:"cart"`
	Checkout CheckoutState  `json:"checkout"`
	Tip      GenerationSlot `json:"tip"`
	Caption  GenerationSlot `json:"caption"`
	Keywords GenerationSlot `json:"keywords"`
	Audit    AuditSlot      `json:"audit"`
	// Time of the last change.
	UpdatedAt time.Time `json:"updated_at"`
}
