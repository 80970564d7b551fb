package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-app/comanda/internal/auth"
	"github.com/comanda-app/comanda/internal/models"
	"github.com/comanda-app/comanda/internal/notify"
	"github.com/comanda-app/comanda/internal/pix"
	"github.com/comanda-app/comanda/internal/pricing"
	"github.com/comanda-app/comanda/internal/service"
	"github.com/comanda-app/comanda/internal/storage/sqlite"
)

const testAdminPassword = "super-secret"

type testEnv struct {
	server   *httptest.Server
	store    *sqlite.SQLiteStore
	burgerID string
	memberID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "comanda-http-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	cat := &models.Category{Name: "Snacks"}
	if err := store.InsertCategory(ctx, cat); err != nil {
		t.Fatalf("InsertCategory failed: %v", err)
	}
	burger := &models.Item{CategoryID: cat.ID, Name: "Burger", Price: decimal.RequireFromString("5.00"), Active: true}
	if err := store.InsertItem(ctx, burger); err != nil {
		t.Fatalf("InsertItem failed: %v", err)
	}

	hash, err := auth.HashPassword("member-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	member := &models.Member{Name: "Ana", Email: "ana@example.com", PasswordHash: hash, Active: true}
	if err := store.CreateMember(ctx, member); err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}

	hub := notify.NewHub()
	encoder := pix.NewEncoder("pix@example.com", "Restaurante", "Sao Paulo")
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	tabs := service.NewTabService(store, encoder, nil)
	orders := service.NewOrderService(store, pricing.Resolver{}, encoder, tabs, hub, nil)
	authSvc := service.NewAuthService(store, jwtManager, testAdminPassword)

	ts := httptest.NewServer(New(orders, tabs, authSvc, store, hub, jwtManager).Router())
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, store: store, burgerID: burger.ID, memberID: member.ID}
}

// do sends a JSON request and decodes the JSON response into out (if non-nil).
func (e *testEnv) do(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	if code := e.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": testAdminPassword}, &resp); code != http.StatusOK {
		t.Fatalf("admin login status = %d", code)
	}
	return resp.Token
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	var order models.Order
	code := env.do(t, http.MethodPost, "/api/orders", "", map[string]any{
		"session_id":     "sess-1",
		"table_number":   7,
		"customer_name":  "Carlos",
		"payment_method": "pix",
		"items":          []map[string]any{{"item_id": env.burgerID, "quantity": 2}},
	}, &order)
	if code != http.StatusCreated {
		t.Fatalf("create status = %d", code)
	}
	if !order.Total.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("Total = %s, want 10.00", order.Total)
	}
	if order.PixPayload == "" {
		t.Error("payload missing on pix order")
	}

	// Customer declares payment, no auth needed.
	var declared models.Order
	if code := env.do(t, http.MethodPost, "/api/orders/"+order.ID+"/declare-payment", "", nil, &declared); code != http.StatusOK {
		t.Fatalf("declare status = %d", code)
	}
	if declared.Status != models.StatusPaymentDeclared {
		t.Errorf("Status = %s, want payment_declared", declared.Status)
	}

	// Status changes require an admin token.
	body := map[string]string{"status": "preparing"}
	if code := env.do(t, http.MethodPatch, "/api/orders/"+order.ID+"/status", "", body, nil); code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status change = %d, want 401", code)
	}

	token := env.adminToken(t)
	var updated models.Order
	if code := env.do(t, http.MethodPatch, "/api/orders/"+order.ID+"/status", token, body, &updated); code != http.StatusOK {
		t.Fatalf("status change = %d", code)
	}
	if updated.Status != models.StatusPreparing {
		t.Errorf("Status = %s, want preparing", updated.Status)
	}

	// Illegal jump maps to 409.
	if code := env.do(t, http.MethodPatch, "/api/orders/"+order.ID+"/status", token, map[string]string{"status": "delivered"}, nil); code != http.StatusConflict {
		t.Errorf("illegal transition = %d, want 409", code)
	}
}

func TestUnknownOrderIs404(t *testing.T) {
	env := newTestEnv(t)
	if code := env.do(t, http.MethodGet, "/api/orders/nope", "", nil, nil); code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
}

func TestMenuEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var menu struct {
		Categories []models.Category `json:"categories"`
		Items      []models.Item     `json:"items"`
	}
	if code := env.do(t, http.MethodGet, "/api/menu", "", nil, &menu); code != http.StatusOK {
		t.Fatalf("menu status = %d", code)
	}
	if len(menu.Categories) != 1 || len(menu.Items) != 1 {
		t.Errorf("menu = %d categories, %d items", len(menu.Categories), len(menu.Items))
	}
}

func TestMemberTabFlow(t *testing.T) {
	env := newTestEnv(t)

	var login struct {
		Token  string        `json:"token"`
		Member models.Member `json:"member"`
	}
	code := env.do(t, http.MethodPost, "/api/members/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "member-password",
	}, &login)
	if code != http.StatusOK {
		t.Fatalf("login status = %d", code)
	}
	if login.Member.PasswordHash != "" {
		t.Error("password hash leaked in login response")
	}

	// Wrong password is a 401.
	if code := env.do(t, http.MethodPost, "/api/members/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "wrong",
	}, nil); code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", code)
	}

	// Bill an order to the account.
	var order models.Order
	if code := env.do(t, http.MethodPost, "/api/orders", "", map[string]any{
		"session_id":     "sess-1",
		"table_number":   3,
		"customer_name":  "Ana",
		"member_id":      env.memberID,
		"payment_method": "account",
		"items":          []map[string]any{{"item_id": env.burgerID, "quantity": 3}},
	}, &order); code != http.StatusCreated {
		t.Fatalf("create status = %d", code)
	}

	var tab models.MemberTab
	if code := env.do(t, http.MethodGet, "/api/members/me/tab", login.Token, nil, &tab); code != http.StatusOK {
		t.Fatalf("tab status = %d", code)
	}
	if !tab.TotalCharged.Equal(decimal.RequireFromString("15.00")) {
		t.Errorf("TotalCharged = %s, want 15.00", tab.TotalCharged)
	}

	// Members cannot reach the admin surface.
	if code := env.do(t, http.MethodGet, "/api/admin/members", login.Token, nil, nil); code != http.StatusForbidden {
		t.Errorf("member on admin route = %d, want 403", code)
	}

	// Admin registers a payment and fetches the settlement code.
	adminToken := env.adminToken(t)
	if code := env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/tabs/%s/payment", tab.ID), adminToken, map[string]string{
		"amount": "5.00",
		"note":   "cash",
	}, &tab); code != http.StatusOK {
		t.Fatalf("payment status = %d", code)
	}
	if tab.Status != models.TabPartiallyPaid {
		t.Errorf("Status = %s, want partially_paid", tab.Status)
	}

	var settlement struct {
		Payload string `json:"payload"`
	}
	if code := env.do(t, http.MethodGet, fmt.Sprintf("/api/admin/tabs/%s/settlement-code", tab.ID), adminToken, nil, &settlement); code != http.StatusOK {
		t.Fatalf("settlement status = %d", code)
	}
	if !pix.Verify(settlement.Payload) {
		t.Errorf("settlement payload CRC invalid: %s", settlement.Payload)
	}
}
