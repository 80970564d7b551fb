package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comanda-app/comanda/internal/models"
	"github.com/comanda-app/comanda/internal/storage"
)

// ChargeTab adds amount to the member's tab for the month of now, creating
// the tab first when needed. The insert relies on the UNIQUE(member_id,
// month, year) constraint, so two concurrent first charges of a period race
// to create one row and both increments land on it; the increment itself is
// a single "column = column + ?" update, never a read-modify-write.
func (s *SQLiteStore) ChargeTab(ctx context.Context, memberID string, amount decimal.Decimal, now time.Time) (*models.MemberTab, error) {
	month, year := int(now.Month()), now.Year()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO member_tabs (id, member_id, month, year, status)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (member_id, month, year) DO NOTHING`,
		uuid.New().String(), memberID, month, year, models.TabOpen,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure tab row: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE member_tabs SET total_charged_cents = total_charged_cents + ? WHERE member_id = ? AND month = ? AND year = ?",
		toCents(amount), memberID, month, year,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to charge tab: %w", err)
	}

	tab, err := scanTab(tx.QueryRowContext(ctx,
		selectTabColumns+" FROM member_tabs WHERE member_id = ? AND month = ? AND year = ?",
		memberID, month, year,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to read tab back: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return tab, nil
}

// GetTab retrieves a tab by id.
func (s *SQLiteStore) GetTab(ctx context.Context, id string) (*models.MemberTab, error) {
	tab, err := scanTab(s.db.QueryRowContext(ctx,
		selectTabColumns+" FROM member_tabs WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tab %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tab: %w", err)
	}
	return tab, nil
}

// GetCurrentTab returns the member's tab for the month of now.
func (s *SQLiteStore) GetCurrentTab(ctx context.Context, memberID string, now time.Time) (*models.MemberTab, error) {
	tab, err := scanTab(s.db.QueryRowContext(ctx,
		selectTabColumns+" FROM member_tabs WHERE member_id = ? AND month = ? AND year = ?",
		memberID, int(now.Month()), now.Year(),
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("current tab for member %s: %w", memberID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current tab: %w", err)
	}
	return tab, nil
}

// GetTabsByMember returns all of a member's tabs, newest period first.
func (s *SQLiteStore) GetTabsByMember(ctx context.Context, memberID string) ([]*models.MemberTab, error) {
	rows, err := s.db.QueryContext(ctx,
		selectTabColumns+" FROM member_tabs WHERE member_id = ? ORDER BY year DESC, month DESC",
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tabs: %w", err)
	}
	defer rows.Close()

	var tabs []*models.MemberTab
	for rows.Next() {
		tab, err := scanTab(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tab: %w", err)
		}
		tabs = append(tabs, tab)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tabs: %w", err)
	}
	return tabs, nil
}

// RegisterTabPayment increments the paid total and recomputes the tab's
// status inside one transaction. ClosedAt is stamped only on the transition
// into paid; an already-set ClosedAt is left alone.
func (s *SQLiteStore) RegisterTabPayment(ctx context.Context, tabID string, amount decimal.Decimal, note string, now time.Time) (*models.MemberTab, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE member_tabs SET total_paid_cents = total_paid_cents + ? WHERE id = ?",
		toCents(amount), tabID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add payment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("tab %s: %w", tabID, storage.ErrNotFound)
	}

	tab, err := scanTab(tx.QueryRowContext(ctx,
		selectTabColumns+" FROM member_tabs WHERE id = ?", tabID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to read tab back: %w", err)
	}

	status := models.TabPartiallyPaid
	if tab.TotalPaid.GreaterThanOrEqual(tab.TotalCharged) {
		status = models.TabPaid
	}

	var closedAt any
	if tab.ClosedAt != nil {
		closedAt = tab.ClosedAt.Unix()
	} else if status == models.TabPaid {
		closedAt = now.Unix()
	}

	notes := tab.Notes
	if note != "" {
		if notes != "" {
			notes += "\n"
		}
		notes += note
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE member_tabs SET status = ?, closed_at = ?, notes = ? WHERE id = ?",
		status, closedAt, notes, tabID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update tab status: %w", err)
	}

	tab, err = scanTab(tx.QueryRowContext(ctx,
		selectTabColumns+" FROM member_tabs WHERE id = ?", tabID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to read tab back: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return tab, nil
}

const selectTabColumns = `SELECT id, member_id, month, year, total_charged_cents, total_paid_cents, status, closed_at, notes`

func scanTab(row rowScanner) (*models.MemberTab, error) {
	tab := &models.MemberTab{}
	var chargedCents, paidCents int64
	var closedAt sql.NullInt64
	err := row.Scan(&tab.ID, &tab.MemberID, &tab.Month, &tab.Year,
		&chargedCents, &paidCents, &tab.Status, &closedAt, &tab.Notes)
	if err != nil {
		return nil, err
	}
	tab.TotalCharged = fromCents(chargedCents)
	tab.TotalPaid = fromCents(paidCents)
	if closedAt.Valid {
		t := time.Unix(closedAt.Int64, 0).UTC()
		tab.ClosedAt = &t
	}
	return tab, nil
}
