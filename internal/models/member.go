package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member is a registered member: gets member prices and may bill orders to
// a monthly tab. Members are created and deactivated by the admin surface;
// the ordering core never creates or deletes them.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string `json:"id"`

	// Name is the member's display name.
	Name string `json:"name"`

	// Email is the login identifier, unique across members.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the member's password.
	// Never serialized.
	PasswordHash string `json:"-"`

	// Phone is an optional contact number.
	Phone string `json:"phone,omitempty"`

	// Active gates login and account billing. Deactivated members keep
	// their history but can no longer order on the tab.
	Active bool `json:"active"`

	CreatedAt time.Time `json:"created_at"`
}

// TabStatus is the payment state of a monthly tab.
type TabStatus string

const (
	TabOpen          TabStatus = "open"
	TabPartiallyPaid TabStatus = "partially_paid"
	TabPaid          TabStatus = "paid"
)

// MemberTab is a member's running balance for one calendar month. Exactly
// one tab exists per (member, month, year); TotalCharged and TotalPaid only
// ever grow. Overpayment is accepted, not rejected.
type MemberTab struct {
	// ID is the unique identifier for the tab (UUID format).
	ID string `json:"id"`

	// MemberID is the owning member.
	MemberID string `json:"member_id"`

	// Month (1-12) and Year identify the billing period.
	Month int `json:"month"`
	Year  int `json:"year"`

	// TotalCharged accumulates account-billed order totals.
	TotalCharged decimal.Decimal `json:"total_charged"`

	// TotalPaid accumulates manually confirmed payments.
	TotalPaid decimal.Decimal `json:"total_paid"`

	Status TabStatus `json:"status"`

	// ClosedAt is set when the tab first transitions into TabPaid.
	ClosedAt *time.Time `json:"closed_at,omitempty"`

	// Notes carries free-text remarks recorded by the admin on payments.
	Notes string `json:"notes,omitempty"`
}

// Balance is the outstanding amount: charged minus paid. Negative when the
// member overpaid.
func (t *MemberTab) Balance() decimal.Decimal {
	return t.TotalCharged.Sub(t.TotalPaid)
}
