//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/proajob/proajob/internal/selection"
)

// Study states of an academic formation.
const (
	EstadoCulminado = "Culminado"
	EstadoEnCurso   = "En curso"
)

// FormacionRequest is the body of POST /postulante/forma: one academic
// formation of an applicant, the languages they speak and, optionally, one
// work experience.
type FormacionRequest struct {
	PostulanteID     int                   `json:"id_postulante" validate:"required,gt=0"`
	TituloID         int                   `json:"id_titulo" validate:"required,gt=0"`
	Institucion      string                `json:"institucion" validate:"required,max=255"`
	Estado           string                `json:"estado" validate:"required,oneof=Culminado 'En curso'"`
	FechaIni         string                `json:"fechaini" validate:"required,datetime=2006-01-02"`
	FechaFin         string                `json:"fechafin,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TituloAcreditado bool                  `json:"titulo_acreditado"`
	Idiomas          []selection.Language  `json:"idiomas"`
	Experiencia      *selection.Experience `json:"experiencia,omitempty"`
}

// Validate validates r against the current date.
func (r *FormacionRequest) Validate() error {
	return r.ValidateAt(time.Now())
}

// ValidateAt checks the struct tags, the date ordering relative to now and
// the language list.
func (r *FormacionRequest) ValidateAt(now time.Time) error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.Estado == EstadoCulminado && r.FechaFin == "" {
		return &FieldError{Field: "fechafin", Message: "es obligatoria para estudios culminados"}
	}
	if err := CheckPeriod(r.FechaIni, r.FechaFin, now); err != nil {
		return err
	}
	if _, err := selection.NewList(r.Idiomas...); err != nil {
		return err
	}
	if r.Experiencia != nil {
		exp := *r.Experiencia
		// Stored experiences are keyed by the server; a draft id just has to be set.
		if exp.ID == 0 {
			exp.ID = -1
		}
		if err := exp.Validate(); err != nil {
			return err
		}
		if err := CheckPeriod(exp.Start, exp.End, now); err != nil {
			return err
		}
	}
	return nil
}

// CheckPeriod verifies that start (and end, when set) are valid dates not
// after now and that start is not after end.
func CheckPeriod(start, end string, now time.Time) error {
	ini, err := time.Parse(DateLayout, start)
	if err != nil {
		return &FieldError{Field: "fechaini", Message: "fecha inválida"}
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if ini.After(today) {
		return &FieldError{Field: "fechaini", Message: "no puede estar en el futuro", Kind: ErrFutureDate}
	}
	if end == "" {
		return nil
	}
	fin, err := time.Parse(DateLayout, end)
	if err != nil {
		return &FieldError{Field: "fechafin", Message: "fecha inválida"}
	}
	if fin.After(today) {
		return &FieldError{Field: "fechafin", Message: "no puede estar en el futuro", Kind: ErrFutureDate}
	}
	if ini.After(fin) {
		return &FieldError{Field: "fechaini", Message: "debe ser anterior o igual a la fecha de fin", Kind: ErrPeriodOrder}
	}
	return nil
}

// ExperienciaRequest is the body of PUT /experiencia/{id}.
type ExperienciaRequest struct {
	Empresa     string `json:"empresa" validate:"required,max=255"`
	Puesto      string `json:"puesto" validate:"required,max=255"`
	Area        string `json:"area" validate:"required"`
	FechaIni    string `json:"fechaini" validate:"required,datetime=2006-01-02"`
	FechaFin    string `json:"fechafin" validate:"required,datetime=2006-01-02"`
	Descripcion string `json:"descripcion"`
	Referencia  string `json:"referencia"`
	Contacto    string `json:"contacto"`
}

// Validate validates r against the current date.
func (r *ExperienciaRequest) Validate() error {
	return r.ValidateAt(time.Now())
}

// ValidateAt checks the struct tags and the period relative to now.
func (r *ExperienciaRequest) ValidateAt(now time.Time) error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	return CheckPeriod(r.FechaIni, r.FechaFin, now)
}

// Experience converts r to the selectable item with the given id.
func (r *ExperienciaRequest) Experience(id int) selection.Experience {
	return selection.Experience{
		ID:          id,
		Company:     r.Empresa,
		Position:    r.Puesto,
		Area:        r.Area,
		Start:       r.FechaIni,
		End:         r.FechaFin,
		Description: r.Descripcion,
		Reference:   r.Referencia,
		Contact:     r.Contacto,
	}
}

// NewExperienciaRequest builds the request body that stores e.
func NewExperienciaRequest(e selection.Experience) *ExperienciaRequest {
	return &ExperienciaRequest{
		Empresa:     e.Company,
		Puesto:      e.Position,
		Area:        e.Area,
		FechaIni:    e.Start,
		FechaFin:    e.End,
		Descripcion: e.Description,
		Referencia:  e.Reference,
		Contacto:    e.Contact,
	}
}

// CreateExperienciaRequest is the body of POST /exp.
type CreateExperienciaRequest struct {
	PostulanteID int `json:"id_postulante" validate:"required,gt=0"`
	ExperienciaRequest
}

// Validate validates r against the current date.
func (r *CreateExperienciaRequest) Validate() error {
	return r.ValidateAt(time.Now())
}

// ValidateAt checks the applicant id and the embedded experience.
func (r *CreateExperienciaRequest) ValidateAt(now time.Time) error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	return CheckPeriod(r.FechaIni, r.FechaFin, now)
}

// Perfil is the applicant profile returned by GET /perfil/{id}.
type Perfil struct {
	PostulanteID int                    `json:"id_postulante"`
	UsuarioID    int                    `json:"id_usuario"`
	Nombres      string                 `json:"nombres"`
	Apellidos    string                 `json:"apellidos"`
	Formaciones  []Formacion            `json:"formaciones"`
	Idiomas      []selection.Language   `json:"idiomas"`
	Experiencias []selection.Experience `json:"experiencias"`
}

// Formacion is a stored academic formation.
type Formacion struct {
	ID               int    `json:"id_formacion"`
	TituloID         int    `json:"id_titulo"`
	Titulo           string `json:"titulo"`
	Nivel            string `json:"nivel"`
	Campo            string `json:"campo"`
	Institucion      string `json:"institucion"`
	Estado           string `json:"estado"`
	FechaIni         string `json:"fechaini"`
	FechaFin         string `json:"fechafin,omitempty"`
	TituloAcreditado bool   `json:"titulo_acreditado"`
}
