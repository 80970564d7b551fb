package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/comanda-app/comanda/internal/models"
	"github.com/comanda-app/comanda/internal/pix"
)

func TestTabChargeAndSettle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tab, err := f.tabs.Charge(ctx, f.memberID, dec("30.00"))
	if err != nil {
		t.Fatalf("Charge failed: %v", err)
	}
	if tab.Status != models.TabOpen {
		t.Errorf("Status = %s, want open", tab.Status)
	}
	if !tab.Balance().Equal(dec("30.00")) {
		t.Errorf("Balance = %s, want 30.00", tab.Balance())
	}

	// Partial payment.
	tab, err = f.tabs.RegisterPayment(ctx, tab.ID, dec("10.00"), "cash at counter")
	if err != nil {
		t.Fatalf("RegisterPayment failed: %v", err)
	}
	if tab.Status != models.TabPartiallyPaid {
		t.Errorf("Status = %s, want partially_paid", tab.Status)
	}
	if !strings.Contains(tab.Notes, "cash at counter") {
		t.Errorf("Notes = %q, missing payment note", tab.Notes)
	}

	// Settlement payload covers the remaining balance, with the tab id
	// as the transaction reference.
	payload, err := f.tabs.SettlementPayload(ctx, tab.ID)
	if err != nil {
		t.Fatalf("SettlementPayload failed: %v", err)
	}
	if !strings.Contains(payload, "540520.00") {
		t.Errorf("payload missing balance 20.00: %s", payload)
	}
	if !pix.Verify(payload) {
		t.Errorf("payload CRC invalid: %s", payload)
	}

	// Full payment closes the tab.
	tab, err = f.tabs.RegisterPayment(ctx, tab.ID, dec("20.00"), "")
	if err != nil {
		t.Fatalf("RegisterPayment failed: %v", err)
	}
	if tab.Status != models.TabPaid {
		t.Errorf("Status = %s, want paid", tab.Status)
	}
	if tab.ClosedAt == nil {
		t.Error("ClosedAt not stamped on full payment")
	}

	// Settling an already settled tab fails.
	if _, err := f.tabs.SettlementPayload(ctx, tab.ID); !errors.Is(err, ErrAlreadySettled) {
		t.Errorf("SettlementPayload error = %v, want ErrAlreadySettled", err)
	}
}

func TestTabValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.tabs.Charge(ctx, f.memberID, dec("0")); !errors.Is(err, ErrValidation) {
		t.Errorf("Charge(0) error = %v, want ErrValidation", err)
	}
	if _, err := f.tabs.Charge(ctx, f.memberID, dec("-5.00")); !errors.Is(err, ErrValidation) {
		t.Errorf("Charge(-5) error = %v, want ErrValidation", err)
	}
	if _, err := f.tabs.RegisterPayment(ctx, "whatever", dec("0"), ""); !errors.Is(err, ErrValidation) {
		t.Errorf("RegisterPayment(0) error = %v, want ErrValidation", err)
	}
	if _, err := f.tabs.RegisterPayment(ctx, "missing", dec("5.00"), ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("RegisterPayment(missing tab) error = %v, want ErrNotFound", err)
	}
	if _, err := f.tabs.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCurrentTabSynthesizesEmptyTab(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tab, err := f.tabs.CurrentTab(ctx, f.memberID)
	if err != nil {
		t.Fatalf("CurrentTab failed: %v", err)
	}
	if tab.ID != "" {
		t.Errorf("unexpected persisted tab %q before any charge", tab.ID)
	}
	if !tab.TotalCharged.IsZero() || !tab.TotalPaid.IsZero() {
		t.Errorf("empty tab has totals %s/%s", tab.TotalCharged, tab.TotalPaid)
	}
	if tab.Status != models.TabOpen {
		t.Errorf("Status = %s, want open", tab.Status)
	}
	if tab.Month != 8 || tab.Year != 2026 {
		t.Errorf("tab period = %d/%d, want 8/2026", tab.Month, tab.Year)
	}
}

func TestTabsByMemberAndOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.orders.Create(ctx, CreateOrderRequest{
		SessionID:     "s",
		TableNumber:   3,
		CustomerName:  "Ana",
		MemberID:      f.memberID,
		PaymentMethod: models.MethodAccount,
		Lines:         []CreateOrderLine{{ItemID: f.burgerID, Quantity: 2}},
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tabs, err := f.tabs.TabsByMember(ctx, f.memberID)
	if err != nil {
		t.Fatalf("TabsByMember failed: %v", err)
	}
	if len(tabs) != 1 {
		t.Fatalf("got %d tabs, want 1", len(tabs))
	}
	if !tabs[0].TotalCharged.Equal(dec("8.00")) {
		t.Errorf("TotalCharged = %s, want 8.00", tabs[0].TotalCharged)
	}

	orders, err := f.tabs.OrdersForCurrentTab(ctx, f.memberID)
	if err != nil {
		t.Fatalf("OrdersForCurrentTab failed: %v", err)
	}
	if len(orders) != 1 || orders[0].Status != models.StatusAccountBilled {
		t.Errorf("orders = %d, want one account_billed order", len(orders))
	}
}
