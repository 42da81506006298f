//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"

	"github.com/proajob/proajob/internal/selection"
)

// Area is a business area an offer belongs to.
type Area struct {
	ID   int    `json:"id_area"`
	Name string `json:"nombre_area"`
}

// Criterio is an entry of the evaluation criteria catalog. Options, when
// present, are the only values an offer may set for it.
type Criterio struct {
	ID          int      `json:"id_criterio"`
	Name        string   `json:"criterio"`
	Description string   `json:"descripcion,omitempty"`
	Options     []string `json:"opciones,omitempty"`
}

// Criterion builds the selectable item for c with the chosen value and priority.
func (c Criterio) Criterion(value string, priority selection.Priority) selection.Criterion {
	return selection.Criterion{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Options:     c.Options,
		Value:       value,
		Priority:    priority,
	}
}

// Idioma is an entry of the language catalog.
type Idioma struct {
	ID   int    `json:"id_idioma"`
	Name string `json:"idioma"`
}

// References bundles the catalogs a form loads before it is shown.
type References struct {
	Areas     []Area     `json:"areas"`
	Criterios []Criterio `json:"criterios"`
	Idiomas   []Idioma   `json:"idiomas"`
}

// CreateTituloRequest registers a degree title under a level and field.
type CreateTituloRequest struct {
	Level string `json:"nivel" validate:"required"`
	Field string `json:"campo" validate:"required"`
	Title string `json:"titulo" validate:"required"`
}

// CreateCriterioRequest registers an evaluation criterion.
type CreateCriterioRequest struct {
	Name        string   `json:"criterio" validate:"required"`
	Description string   `json:"descripcion,omitempty"`
	Options     []string `json:"opciones,omitempty" validate:"omitempty,unique,dive,required"`
}

// Validate validates the CreateTituloRequest using the validator.
func (r *CreateTituloRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the CreateCriterioRequest using the validator.
func (r *CreateCriterioRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
