package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comanda-app/comanda/internal/models"
)

// GetItemsByIDs fetches catalog items by id. Ids not present in the catalog
// are silently missing from the result.
func (s *SQLiteStore) GetItemsByIDs(ctx context.Context, ids []string) ([]*models.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, category_id, name, description, price_cents, member_price_cents, image_url, active FROM items WHERE id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListMenu returns all categories (by position) and all active items.
func (s *SQLiteStore) ListMenu(ctx context.Context) ([]*models.Category, []*models.Item, error) {
	catRows, err := s.db.QueryContext(ctx,
		"SELECT id, name, position FROM categories ORDER BY position, name",
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer catRows.Close()

	var categories []*models.Category
	for catRows.Next() {
		c := &models.Category{}
		if err := catRows.Scan(&c.ID, &c.Name, &c.Position); err != nil {
			return nil, nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := catRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, category_id, name, description, price_cents, member_price_cents, image_url, active FROM items WHERE active = 1 ORDER BY name",
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer itemRows.Close()

	items, err := scanItems(itemRows)
	if err != nil {
		return nil, nil, err
	}
	return categories, items, nil
}

// InsertCategory adds a category to the catalog. Used by the admin surface
// and by demo seeding; not part of the ordering core's Store interface.
func (s *SQLiteStore) InsertCategory(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, position) VALUES (?, ?, ?)",
		c.ID, c.Name, c.Position,
	)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// InsertItem adds an item to the catalog. Used by the admin surface and by
// demo seeding; not part of the ordering core's Store interface.
func (s *SQLiteStore) InsertItem(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	var memberCents *int64
	if item.MemberPrice != nil {
		c := toCents(*item.MemberPrice)
		memberCents = &c
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO items (id, category_id, name, description, price_cents, member_price_cents, image_url, active) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		item.ID, item.CategoryID, item.Name, item.Description, toCents(item.Price), memberCents, item.ImageURL, item.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// SetItemPrices updates an item's base and member price. Exists so price
// changes can be exercised against order snapshots; the ordering core never
// calls it.
func (s *SQLiteStore) SetItemPrices(ctx context.Context, itemID string, price decimal.NullDecimal, memberPrice decimal.NullDecimal) error {
	if price.Valid {
		if _, err := s.db.ExecContext(ctx,
			"UPDATE items SET price_cents = ? WHERE id = ?", toCents(price.Decimal), itemID,
		); err != nil {
			return fmt.Errorf("failed to update item price: %w", err)
		}
	}
	if memberPrice.Valid {
		if _, err := s.db.ExecContext(ctx,
			"UPDATE items SET member_price_cents = ? WHERE id = ?", toCents(memberPrice.Decimal), itemID,
		); err != nil {
			return fmt.Errorf("failed to update item member price: %w", err)
		}
	}
	return nil
}

func scanItems(rows *sql.Rows) ([]*models.Item, error) {
	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		var priceCents int64
		var memberCents sql.NullInt64
		if err := rows.Scan(&item.ID, &item.CategoryID, &item.Name, &item.Description, &priceCents, &memberCents, &item.ImageURL, &item.Active); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Price = fromCents(priceCents)
		if memberCents.Valid {
			mp := fromCents(memberCents.Int64)
			item.MemberPrice = &mp
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}
