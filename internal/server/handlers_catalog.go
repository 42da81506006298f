package server

import (
	"encoding/json"
	"net/http"

	"github.com/proajob/proajob/internal/catalog"
	"github.com/proajob/proajob/internal/types"
)

// handleGetCatalog returns every level, field and title.
func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := s.store.GetCatalog(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if cat == nil {
		cat = &catalog.Catalog{}
	}
	if cat.Levels == nil {
		cat.Levels = []string{}
	}
	if cat.Fields == nil {
		cat.Fields = []string{}
	}
	if cat.Titles == nil {
		cat.Titles = []catalog.Title{}
	}
	writeJSON(w, http.StatusOK, cat)
}

// handleListFields returns the fields offered under a level as a bare array.
func (s *Server) handleListFields(w http.ResponseWriter, r *http.Request) {
	fields, err := s.store.ListFields(r.Context(), r.PathValue("nivel"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if fields == nil {
		fields = []string{}
	}
	writeJSON(w, http.StatusOK, fields)
}

// handleListTitles returns the titles under a level and field as a bare array.
func (s *Server) handleListTitles(w http.ResponseWriter, r *http.Request) {
	titles, err := s.store.ListTitles(r.Context(), r.PathValue("nivel"), r.PathValue("campo"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if titles == nil {
		titles = []catalog.Title{}
	}
	writeJSON(w, http.StatusOK, titles)
}

func (s *Server) handleListAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := s.store.ListAreas(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if areas == nil {
		areas = []types.Area{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"areas": areas})
}

func (s *Server) handleListCriterios(w http.ResponseWriter, r *http.Request) {
	criterios, err := s.store.ListCriterios(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if criterios == nil {
		criterios = []types.Criterio{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"criterios": criterios})
}

func (s *Server) handleListIdiomas(w http.ResponseWriter, r *http.Request) {
	idiomas, err := s.store.ListIdiomas(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if idiomas == nil {
		idiomas = []types.Idioma{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"idiomas": idiomas})
}

// handleCreateTitulo registers a title in the catalog.
func (s *Server) handleCreateTitulo(w http.ResponseWriter, r *http.Request) {
	var req types.CreateTituloRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}

	id, err := s.store.UpsertTitle(r.Context(), req.Level, req.Field, req.Title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, catalog.Title{ID: id, Name: req.Title})
}

// handleCreateCriterio registers an evaluation criterion.
func (s *Server) handleCreateCriterio(w http.ResponseWriter, r *http.Request) {
	var req types.CreateCriterioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}

	id, err := s.store.UpsertCriterio(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.Criterio{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Options:     req.Options,
	})
}
