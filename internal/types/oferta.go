//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/proajob/proajob/internal/selection"
)

// Workload and modality values accepted for an offer.
const (
	CargaTiempoCompleto = "Tiempo Completo"
	CargaTiempoParcial  = "Tiempo Parcial"

	ModalidadPresencial = "Presencial"
	ModalidadVirtual    = "Virtual"
)

// DateLayout is the wire layout of every date field.
const DateLayout = "2006-01-02"

// FieldError reports a request field that passed tag validation but broke a
// rule involving other fields or the current date.
type FieldError struct {
	Field   string
	Message string
	// Kind, when set, is one of the date sentinels below.
	Kind error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

var (
	// ErrFutureDate marks a date after the current day.
	ErrFutureDate = errors.New("Las fechas no pueden ser mayores que el día de hoy")
	// ErrPeriodOrder marks a start date after its end date.
	ErrPeriodOrder = errors.New("La fecha de inicio no puede ser mayor a la fecha de fin")
)

// CreateOfertaRequest is the body of POST /add-oferta.
type CreateOfertaRequest struct {
	Cargo               string                `json:"cargo" validate:"required,max=255"`
	AreaID              int                   `json:"id_area" validate:"required,gt=0"`
	Experiencia         int                   `json:"experiencia" validate:"gte=0"`
	ObjetivoCargo       string                `json:"objetivo_cargo" validate:"required"`
	Sueldo              float64               `json:"sueldo" validate:"gte=0"`
	Funciones           string                `json:"funciones" validate:"required"`
	FechaMaxPos         string                `json:"fecha_max_pos" validate:"required,datetime=2006-01-02"`
	CargaHoraria        string                `json:"carga_horaria" validate:"required,oneof='Tiempo Completo' 'Tiempo Parcial'"`
	Modalidad           string                `json:"modalidad" validate:"required,oneof=Presencial Virtual"`
	DetallesAdicionales string                `json:"detalles_adicionales,omitempty"`
	CorreoContacto      string                `json:"correo_contacto,omitempty" validate:"omitempty,email"`
	NumeroContacto      string                `json:"numero_contacto,omitempty" validate:"omitempty,max=20"`
	MostrarSueldo       bool                  `json:"mostrar_sueldo"`
	MostrarEmpresa      bool                  `json:"mostrar_empresa"`
	Titulos             []selection.Title     `json:"titulos"`
	Criterios           []selection.Criterion `json:"criterios"`
}

// Validate checks the struct tags and then rebuilds the title and criteria
// lists, which rejects duplicates and criteria without a priority.
func (r *CreateOfertaRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if _, err := selection.NewList(r.Titulos...); err != nil {
		return err
	}
	if _, err := selection.NewList(r.Criterios...); err != nil {
		return err
	}
	return nil
}

// OfertaArea is the area projection embedded in an offer summary.
type OfertaArea struct {
	Name string `json:"nombre_area"`
}

// OfertaEmpresa is the company projection embedded in an offer summary.
type OfertaEmpresa struct {
	ID              int    `json:"id_empresa"`
	NombreComercial string `json:"nombre_comercial"`
	Logo            string `json:"logo,omitempty"`
}

// OfertaSummary is an entry of GET /ofertas.
type OfertaSummary struct {
	ID             int           `json:"id_oferta"`
	Estado         string        `json:"estado"`
	Cargo          string        `json:"cargo"`
	Area           OfertaArea    `json:"areas"`
	Empresa        OfertaEmpresa `json:"empresa"`
	FechaPubli     string        `json:"fecha_publi"`
	MostrarEmpresa bool          `json:"mostrar_empresa"`
	Modalidad      string        `json:"modalidad"`
	CargaHoraria   string        `json:"carga_horaria"`
	Experiencia    int           `json:"experiencia"`
}

// Publisher is the company name shown for o, or "Anónima" when the offer
// hides it.
func (o OfertaSummary) Publisher() string {
	if !o.MostrarEmpresa || o.Empresa.NombreComercial == "" {
		return "Anónima"
	}
	return o.Empresa.NombreComercial
}

// FilterOfertas returns the offers whose position contains cargo, ignoring
// case. An empty cargo matches every offer.
func FilterOfertas(ofertas []OfertaSummary, cargo string) []OfertaSummary {
	needle := strings.ToLower(strings.TrimSpace(cargo))
	if needle == "" {
		return ofertas
	}
	var out []OfertaSummary
	for _, o := range ofertas {
		if strings.Contains(strings.ToLower(o.Cargo), needle) {
			out = append(out, o)
		}
	}
	return out
}
