package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/shopspring/decimal"

	"github.com/comanda-app/comanda/internal/auth"
	"github.com/comanda-app/comanda/internal/config"
	"github.com/comanda-app/comanda/internal/models"
	"github.com/comanda-app/comanda/internal/notify"
	"github.com/comanda-app/comanda/internal/pix"
	"github.com/comanda-app/comanda/internal/pricing"
	"github.com/comanda-app/comanda/internal/server"
	"github.com/comanda-app/comanda/internal/service"
	"github.com/comanda-app/comanda/internal/storage/sqlite"
	"github.com/comanda-app/comanda/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	if cfg.SeedDemo {
		if err := seedDemo(context.Background(), store); err != nil {
			slog.Error("Failed to seed demo catalog", "error", err)
			os.Exit(1)
		}
	}

	hub := notify.NewHub()
	encoder := pix.NewEncoder(cfg.PixKey, cfg.RestaurantName, cfg.RestaurantCity)
	jwtManager := auth.NewJWTManager(cfg.SecretKey, cfg.TokenDuration)

	tabs := service.NewTabService(store, encoder, nil)
	orders := service.NewOrderService(store, pricing.Resolver{}, encoder, tabs, hub, nil)
	authSvc := service.NewAuthService(store, jwtManager, cfg.AdminPassword)

	srv := server.New(orders, tabs, authSvc, store, hub, jwtManager)

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// seedDemo inserts a small catalog so a fresh install has something to
// order. Skipped when the menu already has items.
func seedDemo(ctx context.Context, store *sqlite.SQLiteStore) error {
	_, items, err := store.ListMenu(ctx)
	if err != nil {
		return err
	}
	if len(items) > 0 {
		return nil
	}

	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	memberPrice := func(s string) *decimal.Decimal {
		d := price(s)
		return &d
	}

	catalog := []struct {
		category models.Category
		items    []models.Item
	}{
		{
			category: models.Category{Name: "Lanches", Position: 1},
			items: []models.Item{
				{Name: "X-Burger", Description: "Pao, hamburguer e queijo", Price: price("18.00"), MemberPrice: memberPrice("15.00"), Active: true},
				{Name: "X-Salada", Description: "Com alface e tomate", Price: price("20.00"), MemberPrice: memberPrice("17.00"), Active: true},
				{Name: "Misto Quente", Price: price("12.00"), Active: true},
			},
		},
		{
			category: models.Category{Name: "Bebidas", Position: 2},
			items: []models.Item{
				{Name: "Refrigerante Lata", Price: price("6.00"), Active: true},
				{Name: "Suco de Laranja", Price: price("9.00"), MemberPrice: memberPrice("7.50"), Active: true},
				{Name: "Agua", Price: price("4.00"), Active: true},
			},
		},
	}

	for _, entry := range catalog {
		cat := entry.category
		if err := store.InsertCategory(ctx, &cat); err != nil {
			return err
		}
		for _, item := range entry.items {
			item.CategoryID = cat.ID
			if err := store.InsertItem(ctx, &item); err != nil {
				return err
			}
		}
	}

	slog.Info("Demo catalog seeded")
	return nil
}
