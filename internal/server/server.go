// Package server wires the HTTP API: public ordering endpoints, member
// account endpoints, the admin surface and the live event stream.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/comanda-app/comanda/internal/auth"
	"github.com/comanda-app/comanda/internal/middleware"
	"github.com/comanda-app/comanda/internal/notify"
	"github.com/comanda-app/comanda/internal/service"
	"github.com/comanda-app/comanda/internal/storage"
)

// Server holds the handler dependencies.
type Server struct {
	orders *service.OrderService
	tabs   *service.TabService
	auth   *service.AuthService
	store  storage.Store
	hub    *notify.Hub
	jwt    *auth.JWTManager
}

func New(orders *service.OrderService, tabs *service.TabService, authSvc *service.AuthService, store storage.Store, hub *notify.Hub, jwt *auth.JWTManager) *Server {
	return &Server{
		orders: orders,
		tabs:   tabs,
		auth:   authSvc,
		store:  store,
		hub:    hub,
		jwt:    jwt,
	}
}

// Router builds the route tree. Order creation and reads are public
// (customers order from a QR-code session without an account); status
// changes, member management and the tab ledger require a token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(corsMiddleware)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/events", s.handleEvents)
	r.Get("/api/menu", s.handleMenu)

	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", s.handleCreateOrder)
		r.Get("/active", s.handleActiveOrders)
		r.Get("/session/{sessionID}", s.handleOrdersBySession)
		r.Get("/{id}", s.handleGetOrder)
		r.Post("/{id}/declare-payment", s.handleDeclarePayment)

		r.With(middleware.RequireAuth(s.jwt), middleware.RequireRole(auth.RoleAdmin)).
			Get("/history", s.handleOrderHistory)
		r.With(middleware.RequireAuth(s.jwt), middleware.RequireRole(auth.RoleAdmin)).
			Patch("/{id}/status", s.handleSetStatus)
	})

	r.Route("/api/members", func(r chi.Router) {
		r.Post("/login", s.handleMemberLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.jwt), middleware.RequireRole(auth.RoleMember))
			r.Get("/me", s.handleMe)
			r.Get("/me/tab", s.handleMyTab)
			r.Get("/me/tab/orders", s.handleMyTabOrders)
			r.Get("/me/tabs", s.handleMyTabs)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", s.handleAdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.jwt), middleware.RequireRole(auth.RoleAdmin))
			r.Get("/members", s.handleListMembers)
			r.Post("/members", s.handleCreateMember)
			r.Patch("/members/{id}", s.handleUpdateMember)
			r.Get("/members/{id}/tabs", s.handleMemberTabs)
			r.Post("/tabs/{id}/payment", s.handleTabPayment)
			r.Get("/tabs/{id}/settlement-code", s.handleSettlementCode)
		})
	})

	return r
}

// corsMiddleware allows browser access from the menu frontend.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	categories, items, err := s.store.ListMenu(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": categories,
		"items":      items,
	})
}
