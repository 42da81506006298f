package server

import (
	"net/http"

	"github.com/proajob/proajob/internal/types"
)

// handleListUsers returns every account with its role.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsersWithRoles(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if users == nil {
		users = []types.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// handleListRoles returns the fixed role table.
func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.store.ListRoles(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if roles == nil {
		roles = []types.Role{}
	}
	writeJSON(w, http.StatusOK, roles)
}
