package server

import (
	"net/http"

	"github.com/comanda-app/comanda/internal/middleware"
)

func (s *Server) handleMemberLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	token, member, err := s.auth.MemberLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":  token,
		"member": member,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	member, err := s.auth.Member(r.Context(), middleware.GetMemberID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// handleMyTab returns the current month's tab, zeroed if nothing was
// charged yet.
func (s *Server) handleMyTab(w http.ResponseWriter, r *http.Request) {
	tab, err := s.tabs.CurrentTab(r.Context(), middleware.GetMemberID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tab)
}

func (s *Server) handleMyTabOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.tabs.OrdersForCurrentTab(r.Context(), middleware.GetMemberID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleMyTabs(w http.ResponseWriter, r *http.Request) {
	tabs, err := s.tabs.TabsByMember(r.Context(), middleware.GetMemberID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tabs)
}
