package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comanda-app/comanda/internal/models"
	"github.com/comanda-app/comanda/internal/storage"
)

// CreateOrder persists an order and all of its lines in one transaction.
func (s *SQLiteStore) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var memberID any
	if order.MemberID != "" {
		memberID = order.MemberID
	}
	var payload any
	if order.PixPayload != "" {
		payload = order.PixPayload
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, session_id, member_id, table_number, customer_name, observations, payment_method, status, total_cents, pix_payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.SessionID, memberID, order.TableNumber, order.CustomerName,
		order.Observations, order.PaymentMethod, order.Status, toCents(order.Total),
		payload, order.CreatedAt.Unix(), order.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Lines {
		line := &order.Lines[i]
		if line.ID == "" {
			line.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO order_lines (id, order_id, item_id, quantity, unit_price_cents) VALUES (?, ?, ?, ?, ?)",
			line.ID, order.ID, line.ItemID, line.Quantity, toCents(line.UnitPrice),
		)
		if err != nil {
			return fmt.Errorf("failed to insert order line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetOrder retrieves an order with its lines.
func (s *SQLiteStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.scanOrderRow(s.db.QueryRowContext(ctx,
		selectOrderColumns+" FROM orders WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if err := s.loadLines(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrdersBySession returns a session's orders, newest first.
func (s *SQLiteStore) GetOrdersBySession(ctx context.Context, sessionID string) ([]*models.Order, error) {
	return s.queryOrders(ctx,
		selectOrderColumns+" FROM orders WHERE session_id = ? ORDER BY created_at DESC", sessionID,
	)
}

// GetActiveOrders returns undelivered, uncancelled orders, oldest first.
func (s *SQLiteStore) GetActiveOrders(ctx context.Context) ([]*models.Order, error) {
	return s.queryOrders(ctx,
		selectOrderColumns+" FROM orders WHERE status NOT IN (?, ?) ORDER BY created_at ASC",
		models.StatusDelivered, models.StatusCancelled,
	)
}

// GetOrderHistory returns orders matching the filter, newest first.
func (s *SQLiteStore) GetOrderHistory(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	query := selectOrderColumns + " FROM orders WHERE 1=1"
	var args []any
	if !filter.From.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.From.Unix())
	}
	if !filter.To.IsZero() {
		query += " AND created_at < ?"
		args = append(args, filter.To.Unix())
	}
	if filter.Customer != "" {
		query += " AND lower(customer_name) LIKE ?"
		args = append(args, "%"+strings.ToLower(filter.Customer)+"%")
	}
	query += " ORDER BY created_at DESC"

	return s.queryOrders(ctx, query, args...)
}

// UpdateOrderStatus moves an order from one status to another and bumps
// updated_at. The UPDATE is guarded on the origin status, so a transition
// racing against another one loses with ErrConflict instead of silently
// overwriting the winner.
func (s *SQLiteStore) UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		to, now.Unix(), id, from,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		var current models.OrderStatus
		err := s.db.QueryRowContext(ctx, "SELECT status FROM orders WHERE id = ?", id).Scan(&current)
		if err == sql.ErrNoRows {
			return fmt.Errorf("order %s: %w", id, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check order status: %w", err)
		}
		return fmt.Errorf("order %s is %s, not %s: %w", id, current, from, storage.ErrConflict)
	}
	return nil
}

// GetOrdersForTab returns a member's account-billed orders for one billing
// period, newest first.
func (s *SQLiteStore) GetOrdersForTab(ctx context.Context, memberID string, month, year int) ([]*models.Order, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return s.queryOrders(ctx,
		selectOrderColumns+` FROM orders
		 WHERE member_id = ? AND payment_method = ? AND created_at >= ? AND created_at < ?
		 ORDER BY created_at DESC`,
		memberID, models.MethodAccount, from.Unix(), to.Unix(),
	)
}

const selectOrderColumns = `SELECT id, session_id, member_id, table_number, customer_name, observations, payment_method, status, total_cents, pix_payload, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanOrderRow(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	var memberID, payload sql.NullString
	var totalCents, createdAt, updatedAt int64
	err := row.Scan(&order.ID, &order.SessionID, &memberID, &order.TableNumber,
		&order.CustomerName, &order.Observations, &order.PaymentMethod,
		&order.Status, &totalCents, &payload, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	order.MemberID = memberID.String
	order.PixPayload = payload.String
	order.Total = fromCents(totalCents)
	order.CreatedAt = time.Unix(createdAt, 0).UTC()
	order.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return order, nil
}

func (s *SQLiteStore) queryOrders(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := s.scanOrderRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	if err := s.loadLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// loadLines attaches lines (with denormalized item names) to the orders.
func (s *SQLiteStore) loadLines(ctx context.Context, orders []*models.Order) error {
	for _, order := range orders {
		rows, err := s.db.QueryContext(ctx,
			`SELECT l.id, l.item_id, i.name, l.quantity, l.unit_price_cents
			 FROM order_lines l JOIN items i ON i.id = l.item_id
			 WHERE l.order_id = ?`,
			order.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to query order lines: %w", err)
		}

		for rows.Next() {
			var line models.OrderLine
			var cents int64
			if err := rows.Scan(&line.ID, &line.ItemID, &line.ItemName, &line.Quantity, &cents); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan order line: %w", err)
			}
			line.UnitPrice = fromCents(cents)
			order.Lines = append(order.Lines, line)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("failed to iterate order lines: %w", err)
		}
		rows.Close()
	}
	return nil
}
