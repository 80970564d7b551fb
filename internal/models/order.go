package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod says how an order is settled.
type PaymentMethod string

const (
	// MethodPix is an instant payment: the order carries a generated
	// Pix BR Code payload and waits for the customer to pay.
	MethodPix PaymentMethod = "pix"

	// MethodAccount bills the order to the owning member's monthly tab.
	MethodAccount PaymentMethod = "account"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusAwaitingPayment OrderStatus = "awaiting_payment"
	StatusPaymentDeclared OrderStatus = "payment_declared"
	StatusPreparing       OrderStatus = "preparing"
	StatusReady           OrderStatus = "ready"
	StatusDelivered       OrderStatus = "delivered"
	StatusCancelled       OrderStatus = "cancelled"

	// StatusAccountBilled is the initial status of account-method orders.
	// They skip the payment sub-flow entirely and go straight to the kitchen.
	StatusAccountBilled OrderStatus = "account_billed"
)

// ValidStatus reports whether s is one of the enumerated order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusAwaitingPayment, StatusPaymentDeclared, StatusPreparing,
		StatusReady, StatusDelivered, StatusCancelled, StatusAccountBilled:
		return true
	}
	return false
}

// TerminalStatus reports whether s ends the order lifecycle. Orders in a
// terminal status disappear from the active (kitchen) panel.
func TerminalStatus(s OrderStatus) bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Order is a customer order. Only Status, PixPayload (set once at creation)
// and UpdatedAt ever mutate; the lines and total are immutable snapshots.
type Order struct {
	// ID is the unique identifier for the order (UUID format).
	ID string `json:"id"`

	// SessionID ties the order to the anonymous browser session that
	// placed it, so customers can follow their own orders.
	SessionID string `json:"session_id"`

	// MemberID is the owning member, empty for anonymous orders.
	// Required when PaymentMethod is MethodAccount.
	MemberID string `json:"member_id,omitempty"`

	// TableNumber is the physical table the order was placed from.
	TableNumber int `json:"table_number"`

	// CustomerName is the free-text name given at checkout.
	CustomerName string `json:"customer_name"`

	// Observations carries free-text kitchen notes ("no onions").
	Observations string `json:"observations,omitempty"`

	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        OrderStatus   `json:"status"`

	// Total is the sum of unit price x quantity over the lines,
	// fixed at creation time.
	Total decimal.Decimal `json:"total"`

	// PixPayload is the generated BR Code string for pix orders,
	// empty for account-billed orders.
	PixPayload string `json:"pix_payload,omitempty"`

	Lines []OrderLine `json:"lines"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderLine is one priced line of an order. UnitPrice is snapshotted when
// the order is created and stays fixed regardless of later catalog changes.
type OrderLine struct {
	// ID is the unique identifier for the line (UUID format).
	ID string `json:"id"`

	// ItemID references the catalog item this line was priced from.
	ItemID string `json:"item_id"`

	// ItemName is the item's display name at creation time, denormalized
	// for dashboards and receipts.
	ItemName string `json:"item_name,omitempty"`

	// Quantity is the positive number of units ordered.
	Quantity int `json:"quantity"`

	// UnitPrice is the price snapshot per unit, two fractional digits.
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderFilter narrows order history queries. Zero times mean unbounded;
// From is inclusive, To is exclusive; Customer is matched as a
// case-insensitive substring.
type OrderFilter struct {
	From     time.Time
	To       time.Time
	Customer string
}
