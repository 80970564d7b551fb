package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/comanda-app/comanda/internal/models"
	"github.com/comanda-app/comanda/internal/pricing"
	"github.com/comanda-app/comanda/internal/storage"
)

var ordersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "comanda_orders_created_total",
	Help: "Orders created, by payment method.",
}, []string{"payment_method"})

// Broadcaster publishes dashboard events. Delivery is best-effort and must
// never block or fail the calling operation.
type Broadcaster interface {
	Publish(event string, data any)
}

// PayloadEncoder produces a Pix BR Code string for a charge.
type PayloadEncoder interface {
	Encode(amount decimal.Decimal, txid string) string
}

// PriceResolver picks the unit price for an item given membership status.
type PriceResolver interface {
	Resolve(item *models.Item, isMember bool) (decimal.Decimal, error)
}

// TabCharger is the slice of the tab ledger the order flow needs.
type TabCharger interface {
	Charge(ctx context.Context, memberID string, amount decimal.Decimal) (*models.MemberTab, error)
}

// OrderService creates orders, prices them, drives the status state machine
// and emits lifecycle events.
type OrderService struct {
	store  storage.Store
	prices PriceResolver
	pix    PayloadEncoder
	tabs   TabCharger
	events Broadcaster
	now    func() time.Time
}

// NewOrderService wires an OrderService. now may be nil, defaulting to
// time.Now (UTC).
func NewOrderService(store storage.Store, prices PriceResolver, pix PayloadEncoder, tabs TabCharger, events Broadcaster, now func() time.Time) *OrderService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &OrderService{store: store, prices: prices, pix: pix, tabs: tabs, events: events, now: now}
}

// CreateOrderLine is one requested line of a new order.
type CreateOrderLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// CreateOrderRequest is the payload for creating an order.
type CreateOrderRequest struct {
	SessionID     string               `json:"session_id"`
	TableNumber   int                  `json:"table_number"`
	CustomerName  string               `json:"customer_name"`
	Observations  string               `json:"observations"`
	MemberID      string               `json:"member_id"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Lines         []CreateOrderLine    `json:"items"`
}

// Create validates and prices a new order, persists it atomically with its
// line snapshots, bills-or-encodes depending on the payment method, and
// broadcasts the order_created event.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	if req.PaymentMethod != models.MethodPix && req.PaymentMethod != models.MethodAccount {
		return nil, fmt.Errorf("%w: payment_method must be %q or %q", ErrValidation, models.MethodPix, models.MethodAccount)
	}
	if req.PaymentMethod == models.MethodAccount && req.MemberID == "" {
		return nil, fmt.Errorf("%w: account billing requires a logged-in member", ErrValidation)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrValidation)
	}
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for item %s", ErrValidation, line.ItemID)
		}
	}

	if req.MemberID != "" {
		member, err := s.store.GetMember(ctx, req.MemberID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%w: member %s", ErrNotFound, req.MemberID)
			}
			return nil, err
		}
		if req.PaymentMethod == models.MethodAccount && !member.Active {
			return nil, fmt.Errorf("%w: member account is deactivated", ErrValidation)
		}
	}

	ids := make([]string, len(req.Lines))
	for i, line := range req.Lines {
		ids[i] = line.ItemID
	}
	items, err := s.store.GetItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	isMember := req.MemberID != ""
	total := decimal.Zero
	lines := make([]models.OrderLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		item, ok := byID[line.ItemID]
		if !ok {
			return nil, fmt.Errorf("%w: item %s", ErrNotFound, line.ItemID)
		}
		unit, err := s.prices.Resolve(item, isMember)
		if err != nil {
			if errors.Is(err, pricing.ErrItemUnavailable) {
				return nil, fmt.Errorf("%w: item %q", ErrUnavailable, item.Name)
			}
			return nil, err
		}
		// Half-up rounding happens per line; the sum is exact.
		lineTotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		total = total.Add(lineTotal)
		lines = append(lines, models.OrderLine{
			ItemID:    item.ID,
			ItemName:  item.Name,
			Quantity:  line.Quantity,
			UnitPrice: unit,
		})
	}

	now := s.now()
	order := &models.Order{
		SessionID:     req.SessionID,
		MemberID:      req.MemberID,
		TableNumber:   req.TableNumber,
		CustomerName:  req.CustomerName,
		Observations:  req.Observations,
		PaymentMethod: req.PaymentMethod,
		Total:         total,
		Lines:         lines,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	switch req.PaymentMethod {
	case models.MethodAccount:
		// Account orders skip the payment sub-flow entirely.
		order.Status = models.StatusAccountBilled
	case models.MethodPix:
		order.Status = models.StatusAwaitingPayment
		// The txid is a short-lived reference generated before the
		// order row exists; the encoder strips its hyphens.
		order.PixPayload = s.pix.Encode(total, uuid.New().String())
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		slog.Error("CreateOrder failed", "error", err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if req.PaymentMethod == models.MethodAccount {
		if _, err := s.tabs.Charge(ctx, req.MemberID, total); err != nil {
			slog.Error("tab charge failed", "order_id", order.ID, "member_id", req.MemberID, "error", err)
			return nil, fmt.Errorf("failed to bill member tab: %w", err)
		}
	}

	ordersCreated.WithLabelValues(string(req.PaymentMethod)).Inc()
	slog.Info("order created",
		"order_id", order.ID,
		"table", order.TableNumber,
		"total", order.Total.StringFixed(2),
		"payment_method", order.PaymentMethod,
	)

	s.events.Publish(models.EventOrderCreated, models.OrderEvent{
		OrderID:       order.ID,
		TableNumber:   order.TableNumber,
		CustomerName:  order.CustomerName,
		Total:         order.Total.StringFixed(2),
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
	})

	return order, nil
}

// Get returns an order by id.
func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return nil, err
	}
	return order, nil
}

// GetBySession returns a session's orders, newest first.
func (s *OrderService) GetBySession(ctx context.Context, sessionID string) ([]*models.Order, error) {
	return s.store.GetOrdersBySession(ctx, sessionID)
}

// GetActive returns undelivered, uncancelled orders, oldest first.
func (s *OrderService) GetActive(ctx context.Context) ([]*models.Order, error) {
	return s.store.GetActiveOrders(ctx)
}

// GetHistory returns orders matching the filter, newest first.
func (s *OrderService) GetHistory(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	return s.store.GetOrderHistory(ctx, filter)
}

// DeclarePayment records that the customer says they paid: legal only while
// the order is awaiting payment. Broadcasts payment_declared.
func (s *OrderService) DeclarePayment(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != models.StatusAwaitingPayment {
		return nil, fmt.Errorf("%w: order is %s, not awaiting payment", ErrStateConflict, order.Status)
	}

	if err := s.transition(ctx, order, models.StatusPaymentDeclared); err != nil {
		return nil, err
	}

	s.events.Publish(models.EventPaymentDeclared, models.OrderEvent{
		OrderID:       order.ID,
		TableNumber:   order.TableNumber,
		CustomerName:  order.CustomerName,
		Total:         order.Total.StringFixed(2),
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
	})
	return order, nil
}

// legalTransitions declares the allowed status edges. Cancellation is legal
// from every non-terminal state; delivered and cancelled are terminal.
var legalTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusAwaitingPayment: {models.StatusPaymentDeclared, models.StatusCancelled},
	models.StatusPaymentDeclared: {models.StatusPreparing, models.StatusCancelled},
	models.StatusPreparing:       {models.StatusReady, models.StatusCancelled},
	models.StatusReady:           {models.StatusDelivered, models.StatusCancelled},
	models.StatusAccountBilled:   {models.StatusPreparing, models.StatusCancelled},
	models.StatusDelivered:       nil,
	models.StatusCancelled:       nil,
}

func transitionAllowed(from, to models.OrderStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SetStatus moves an order along the state machine. Targets must be
// enumerated statuses and reachable from the current state; illegal edges
// fail with ErrStateConflict. Broadcasts status_updated on every change.
func (s *OrderService) SetStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(order.Status, status) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", ErrStateConflict, order.Status, status)
	}

	if err := s.transition(ctx, order, status); err != nil {
		return nil, err
	}

	s.events.Publish(models.EventStatusUpdated, models.OrderEvent{
		OrderID:       order.ID,
		TableNumber:   order.TableNumber,
		CustomerName:  order.CustomerName,
		Total:         order.Total.StringFixed(2),
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
	})
	return order, nil
}

func (s *OrderService) transition(ctx context.Context, order *models.Order, status models.OrderStatus) error {
	now := s.now()
	if err := s.store.UpdateOrderStatus(ctx, order.ID, order.Status, status, now); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: order %s", ErrNotFound, order.ID)
		}
		if errors.Is(err, storage.ErrConflict) {
			// Another transition won between our read and the write.
			return fmt.Errorf("%w: order %s changed concurrently", ErrStateConflict, order.ID)
		}
		return err
	}
	slog.Info("order status updated", "order_id", order.ID, "from", order.Status, "to", status)
	order.Status = status
	order.UpdatedAt = now
	return nil
}
