package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/comanda-app/comanda/internal/service"
)

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	token, err := s.auth.AdminLogin(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.auth.ListMembers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var req service.CreateMemberRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	member, err := s.auth.CreateMember(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateMemberRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	member, err := s.auth.UpdateMember(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (s *Server) handleMemberTabs(w http.ResponseWriter, r *http.Request) {
	tabs, err := s.tabs.TabsByMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tabs)
}

// handleTabPayment records a manually confirmed payment against a tab.
func (s *Server) handleTabPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Note   string          `json:"note"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	tab, err := s.tabs.RegisterPayment(r.Context(), chi.URLParam(r, "id"), req.Amount, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tab)
}

// handleSettlementCode returns a copy-paste payload for the tab's
// outstanding balance.
func (s *Server) handleSettlementCode(w http.ResponseWriter, r *http.Request) {
	payload, err := s.tabs.SettlementPayload(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"payload": payload})
}
