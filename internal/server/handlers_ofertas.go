package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/proajob/proajob/internal/db"
	"github.com/proajob/proajob/internal/server/middleware"
	"github.com/proajob/proajob/internal/types"
)

// handleListOfertas lists published offers. Optional query parameters:
// id_area, modalidad and limit (1..500).
func (s *Server) handleListOfertas(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filters db.OfertaFilters

	if v := q.Get("id_area"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			s.fail(w, r, &ErrValidation{Field: "id_area", Message: "must be a positive integer"})
			return
		}
		filters.AreaID = id
	}
	if v := q.Get("modalidad"); v != "" {
		if v != types.ModalidadPresencial && v != types.ModalidadVirtual {
			s.fail(w, r, &ErrValidation{Field: "modalidad", Message: "must be Presencial or Virtual"})
			return
		}
		filters.Modalidad = v
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 500 {
			s.fail(w, r, &ErrValidation{Field: "limit", Message: "must be between 1 and 500"})
			return
		}
		filters.Limit = limit
	}

	ofertas, err := s.store.ListOfertas(r.Context(), filters)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ofertas == nil {
		ofertas = []types.OfertaSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ofertas": ofertas})
}

// handleCreateOferta publishes an offer for the caller's company.
func (s *Server) handleCreateOferta(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.CreateOfertaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}

	empresaID, err := s.store.GetEmpresaIDByUser(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if empresaID == 0 {
		s.fail(w, r, &ErrForbidden{Reason: "the account has no company"})
		return
	}

	if err := s.checkCriterios(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	id, err := s.store.CreateOferta(r.Context(), empresaID, userID, &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id_oferta": id,
		"message":   "La oferta se encuentra publicada",
	})
}

// checkCriterios resolves each submitted criterion against the catalog and
// checks its value against the catalog's options. Names are replaced by the
// catalog's.
func (s *Server) checkCriterios(r *http.Request, req *types.CreateOfertaRequest) error {
	if len(req.Criterios) == 0 {
		return nil
	}
	known, err := s.store.ListCriterios(r.Context())
	if err != nil {
		return err
	}
	byID := make(map[int]types.Criterio, len(known))
	for _, c := range known {
		byID[c.ID] = c
	}

	for i, submitted := range req.Criterios {
		c, ok := byID[submitted.ID]
		if !ok {
			return &ErrValidation{Field: "criterios", Message: "unknown criterion " + strconv.Itoa(submitted.ID)}
		}
		resolved := c.Criterion(submitted.Value, submitted.Priority)
		if err := resolved.Validate(); err != nil {
			return err
		}
		req.Criterios[i] = resolved
	}
	return nil
}
