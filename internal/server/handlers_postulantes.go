package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/proajob/proajob/internal/server/middleware"
	"github.com/proajob/proajob/internal/types"
)

// handleGetPostulanteID resolves the applicant record of a user. Applicants
// may only resolve their own; admins may pass any id_usuario.
func (s *Server) handleGetPostulanteID(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r)
	role, _ := middleware.GetRole(r)

	userID := callerID
	if v := r.URL.Query().Get("id_usuario"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			s.fail(w, r, &ErrValidation{Field: "id_usuario", Message: "must be a positive integer"})
			return
		}
		userID = id
	}
	if userID != callerID && role != types.RoleAdmin {
		s.fail(w, r, &ErrForbidden{Reason: "not your account"})
		return
	}

	postulanteID, err := s.store.GetPostulanteIDByUser(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if postulanteID == 0 {
		s.fail(w, r, &ErrNotFound{Resource: "postulante", ID: userID})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"id_postulante": postulanteID})
}

// handleSaveFormacion stores an academic formation with its languages and
// optional experience.
func (s *Server) handleSaveFormacion(w http.ResponseWriter, r *http.Request) {
	var req types.FormacionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.checkPostulanteOwner(r, req.PostulanteID); err != nil {
		s.fail(w, r, err)
		return
	}

	id, err := s.store.SaveFormacion(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id_formacion": id,
		"message":      "Formación registrada",
	})
}

// handleGetPerfil returns the profile of the applicant owned by user {id}.
// Applicants see only their own profile.
func (s *Server) handleGetPerfil(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || userID <= 0 {
		s.fail(w, r, &ErrValidation{Field: "id", Message: "must be a positive integer"})
		return
	}

	callerID, _ := middleware.GetUserID(r)
	role, _ := middleware.GetRole(r)
	if role == types.RolePostulante && userID != callerID {
		s.fail(w, r, &ErrForbidden{Reason: "not your profile"})
		return
	}

	postulanteID, err := s.store.GetPostulanteIDByUser(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if postulanteID == 0 {
		s.fail(w, r, &ErrNotFound{Resource: "perfil", ID: userID})
		return
	}

	perfil, err := s.store.GetPerfil(r.Context(), postulanteID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if perfil == nil {
		s.fail(w, r, &ErrNotFound{Resource: "perfil", ID: userID})
		return
	}
	writeJSON(w, http.StatusOK, perfil)
}

// handleCreateExperiencia adds a work experience to the caller's profile.
func (s *Server) handleCreateExperiencia(w http.ResponseWriter, r *http.Request) {
	var req types.CreateExperienciaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.checkPostulanteOwner(r, req.PostulanteID); err != nil {
		s.fail(w, r, err)
		return
	}

	id, err := s.store.CreateExperiencia(r.Context(), req.PostulanteID, req.Experience(0))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id_formacion_pro": id,
		"message":          "Experiencia registrada",
	})
}

// handleUpdateExperiencia replaces a work experience of the caller.
func (s *Server) handleUpdateExperiencia(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		s.fail(w, r, &ErrValidation{Field: "id", Message: "must be a positive integer"})
		return
	}

	var req types.ExperienciaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}

	postulanteID, err := s.store.ExperienciaOwner(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if postulanteID == 0 {
		s.fail(w, r, &ErrNotFound{Resource: "experiencia", ID: id})
		return
	}
	if err := s.checkPostulanteOwner(r, postulanteID); err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.store.UpdateExperiencia(r.Context(), req.Experience(id)); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id_formacion_pro": id,
		"message":          "Experiencia actualizada",
	})
}

// checkPostulanteOwner fails unless the applicant record exists and belongs
// to the caller.
func (s *Server) checkPostulanteOwner(r *http.Request, postulanteID int) error {
	callerID, err := middleware.GetUserID(r)
	if err != nil {
		return &ErrForbidden{}
	}
	owner, err := s.store.PostulanteOwner(r.Context(), postulanteID)
	if err != nil {
		return err
	}
	if owner == 0 {
		return &ErrNotFound{Resource: "postulante", ID: postulanteID}
	}
	if owner != callerID {
		return &ErrForbidden{Reason: "not your profile"}
	}
	return nil
}
