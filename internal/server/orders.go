package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-app/comanda/internal/models"
	"github.com/comanda-app/comanda/internal/service"
)

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	order, err := s.orders.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleOrdersBySession(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.GetBySession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleActiveOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.GetActive(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// handleOrderHistory filters by ?from=2026-08-01&to=2026-08-31&customer=ana.
func (s *Server) handleOrderHistory(w http.ResponseWriter, r *http.Request) {
	var filter models.OrderFilter
	filter.Customer = r.URL.Query().Get("customer")

	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, service.ErrValidation)
			return
		}
		filter.From = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, service.ErrValidation)
			return
		}
		// To is exclusive, so the next midnight includes the whole day.
		filter.To = t.AddDate(0, 0, 1)
	}

	orders, err := s.orders.GetHistory(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleDeclarePayment(w http.ResponseWriter, r *http.Request) {
	order, err := s.orders.DeclarePayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	order, err := s.orders.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
