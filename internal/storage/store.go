// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-app/comanda/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a guarded write finds the row in a state
// other than the one the caller observed.
var ErrConflict = errors.New("conflict")

// Store defines the persistence operations the services need. The
// abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// GetItemsByIDs fetches catalog items by id. Unknown ids are simply
	// absent from the result; callers decide whether that is an error.
	GetItemsByIDs(ctx context.Context, ids []string) ([]*models.Item, error)

	// ListMenu returns all categories and all active items for display.
	ListMenu(ctx context.Context) ([]*models.Category, []*models.Item, error)

	// CreateOrder persists an order together with all its lines in a
	// single transaction; either everything commits or nothing does.
	// Missing IDs and timestamps are populated.
	CreateOrder(ctx context.Context, order *models.Order) error

	// GetOrder retrieves an order with its lines. Returns ErrNotFound
	// if the order does not exist.
	GetOrder(ctx context.Context, id string) (*models.Order, error)

	// GetOrdersBySession returns a session's orders, newest first.
	GetOrdersBySession(ctx context.Context, sessionID string) ([]*models.Order, error)

	// GetActiveOrders returns orders not yet delivered or cancelled,
	// oldest first (FIFO for the kitchen panel).
	GetActiveOrders(ctx context.Context) ([]*models.Order, error)

	// GetOrderHistory returns orders matching the filter, newest first.
	GetOrderHistory(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error)

	// UpdateOrderStatus moves an order from one status to another and
	// refreshes its updated-at timestamp. The write is guarded on the
	// origin status so concurrent transitions cannot both win: returns
	// ErrNotFound for unknown orders and ErrConflict when the order is
	// no longer in the from status.
	UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus, now time.Time) error

	// GetMember retrieves a member by id. Returns ErrNotFound if absent.
	GetMember(ctx context.Context, id string) (*models.Member, error)

	// GetMemberByEmail retrieves a member by login email.
	GetMemberByEmail(ctx context.Context, email string) (*models.Member, error)

	// ListMembers returns all members ordered by name.
	ListMembers(ctx context.Context) ([]*models.Member, error)

	// CreateMember persists a new member, populating ID and CreatedAt.
	CreateMember(ctx context.Context, member *models.Member) error

	// UpdateMember saves mutable member fields (name, email, phone,
	// password hash, active flag).
	UpdateMember(ctx context.Context, member *models.Member) error

	// ChargeTab atomically adds amount to the member's tab for the
	// month of now, creating the tab if this is the first charge of the
	// period. Concurrent first charges must resolve to one tab row with
	// no lost increments. The tab's status is left untouched.
	ChargeTab(ctx context.Context, memberID string, amount decimal.Decimal, now time.Time) (*models.MemberTab, error)

	// GetTab retrieves a tab by id. Returns ErrNotFound if absent.
	GetTab(ctx context.Context, id string) (*models.MemberTab, error)

	// GetCurrentTab returns the member's tab for the month of now, or
	// ErrNotFound when nothing was charged this period yet.
	GetCurrentTab(ctx context.Context, memberID string, now time.Time) (*models.MemberTab, error)

	// GetTabsByMember returns all of a member's tabs, newest period first.
	GetTabsByMember(ctx context.Context, memberID string) ([]*models.MemberTab, error)

	// RegisterTabPayment atomically adds amount to the tab's paid total,
	// recomputes the status (paid when paid >= charged, else partially
	// paid), stamps ClosedAt on the transition into paid, and appends
	// the note if non-empty. Returns the updated tab.
	RegisterTabPayment(ctx context.Context, tabID string, amount decimal.Decimal, note string, now time.Time) (*models.MemberTab, error)

	// GetOrdersForTab returns a member's account-billed orders for one
	// billing period, newest first.
	GetOrdersForTab(ctx context.Context, memberID string, month, year int) ([]*models.Order, error)

	// Close releases any resources held by the store.
	Close() error
}
