package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-app/comanda/internal/models"
	"github.com/comanda-app/comanda/internal/storage"
)

// TabService maintains the monthly running balance per member: it
// accumulates charges from account-billed orders and reconciles the
// payments an admin confirms by hand.
type TabService struct {
	store storage.Store
	pix   PayloadEncoder
	now   func() time.Time
}

// NewTabService wires a TabService. now may be nil, defaulting to time.Now
// (UTC).
func NewTabService(store storage.Store, pix PayloadEncoder, now func() time.Time) *TabService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &TabService{store: store, pix: pix, now: now}
}

// Charge adds amount to the member's current-month tab, creating the tab on
// first charge of the period. The status is deliberately left alone: it is
// recomputed on the next registered payment.
func (s *TabService) Charge(ctx context.Context, memberID string, amount decimal.Decimal) (*models.MemberTab, error) {
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: charge amount must be positive", ErrValidation)
	}

	tab, err := s.store.ChargeTab(ctx, memberID, amount, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to charge tab: %w", err)
	}

	slog.Info("tab charged",
		"member_id", memberID,
		"tab_id", tab.ID,
		"amount", amount.StringFixed(2),
		"total_charged", tab.TotalCharged.StringFixed(2),
	)
	return tab, nil
}

// RegisterPayment records a manually confirmed payment against a tab and
// recomputes its status: paid when the paid total covers the charges
// (overpayment included), partially paid otherwise.
func (s *TabService) RegisterPayment(ctx context.Context, tabID string, amount decimal.Decimal, note string) (*models.MemberTab, error) {
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}

	tab, err := s.store.RegisterTabPayment(ctx, tabID, amount, note, s.now())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: tab %s", ErrNotFound, tabID)
		}
		return nil, fmt.Errorf("failed to register payment: %w", err)
	}

	slog.Info("tab payment registered",
		"tab_id", tabID,
		"amount", amount.StringFixed(2),
		"status", tab.Status,
		"balance", tab.Balance().StringFixed(2),
	)
	return tab, nil
}

// SettlementPayload builds a Pix payload for a tab's outstanding balance so
// the member can settle by scanning. Fails when nothing is owed.
func (s *TabService) SettlementPayload(ctx context.Context, tabID string) (string, error) {
	tab, err := s.Get(ctx, tabID)
	if err != nil {
		return "", err
	}

	balance := tab.Balance()
	if balance.Sign() <= 0 {
		return "", fmt.Errorf("%w: tab %s has no outstanding balance", ErrAlreadySettled, tabID)
	}
	return s.pix.Encode(balance, tab.ID), nil
}

// Get returns a tab by id.
func (s *TabService) Get(ctx context.Context, tabID string) (*models.MemberTab, error) {
	tab, err := s.store.GetTab(ctx, tabID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: tab %s", ErrNotFound, tabID)
		}
		return nil, err
	}
	return tab, nil
}

// CurrentTab returns the member's tab for the current month. When nothing
// was charged this period yet, a zeroed open tab is returned instead of an
// error, so the member always sees a balance.
func (s *TabService) CurrentTab(ctx context.Context, memberID string) (*models.MemberTab, error) {
	now := s.now()
	tab, err := s.store.GetCurrentTab(ctx, memberID, now)
	if errors.Is(err, storage.ErrNotFound) {
		return &models.MemberTab{
			MemberID:     memberID,
			Month:        int(now.Month()),
			Year:         now.Year(),
			TotalCharged: decimal.Zero,
			TotalPaid:    decimal.Zero,
			Status:       models.TabOpen,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return tab, nil
}

// TabsByMember returns all of a member's tabs, newest period first.
func (s *TabService) TabsByMember(ctx context.Context, memberID string) ([]*models.MemberTab, error) {
	return s.store.GetTabsByMember(ctx, memberID)
}

// OrdersForCurrentTab returns the member's account-billed orders for the
// current billing period, newest first.
func (s *TabService) OrdersForCurrentTab(ctx context.Context, memberID string) ([]*models.Order, error) {
	now := s.now()
	return s.store.GetOrdersForTab(ctx, memberID, int(now.Month()), now.Year())
}
