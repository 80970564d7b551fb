package models

import "github.com/shopspring/decimal"

// Category groups menu items for display (e.g., "Drinks", "Mains").
type Category struct {
	// ID is the unique identifier for the category (UUID format).
	ID string `json:"id"`

	// Name is the display name shown on the menu.
	Name string `json:"name"`

	// Position controls the ordering of categories on the menu page.
	Position int `json:"position"`
}

// Item is a single menu entry. Items belong to the catalog, which the
// ordering core treats as read-only: orders snapshot the resolved unit
// price instead of referencing it.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"id"`

	// CategoryID references the category this item is listed under.
	CategoryID string `json:"category_id"`

	// Name is the display name of the item.
	Name string `json:"name"`

	// Description is an optional longer text shown under the name.
	Description string `json:"description,omitempty"`

	// Price is the base unit price, two fractional digits.
	Price decimal.Decimal `json:"price"`

	// MemberPrice is the discounted unit price for members.
	// Nil means the item has no member discount.
	MemberPrice *decimal.Decimal `json:"member_price,omitempty"`

	// ImageURL points at the item photo, if one was uploaded.
	ImageURL string `json:"image_url,omitempty"`

	// Active marks whether the item can currently be ordered.
	Active bool `json:"active"`
}
