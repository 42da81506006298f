package selection

import (
	"slices"
	"strconv"
	"strings"
)

// Title is a degree title required by an offer or held by an applicant.
type Title struct {
	ID   int    `json:"id"`
	Name string `json:"titulo"`
}

func (t Title) SelectionID() int   { return t.ID }
func (t Title) Category() Category { return CategoryTitle }
func (t Title) Label() string      { return t.Name }

func (t Title) Validate() error {
	if t.ID <= 0 {
		return missing(CategoryTitle, t.ID, "titulo")
	}
	return nil
}

// Priority ranks an evaluation criterion. Zero means unset.
type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

// Priorities lists the valid priorities from most to least important.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "Alta"
	case PriorityMedium:
		return "Media"
	case PriorityLow:
		return "Baja"
	case 0:
		return ""
	default:
		return strconv.Itoa(int(p))
	}
}

// Valid reports whether p is one of Priorities.
func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

// Criterion is an evaluation criterion attached to an offer, with the
// priority and optional value the company chose for it.
//
// Options are the values the criterion accepts. They come from the criterion
// catalog and are not submitted; when present, Value is mandatory and must
// be one of them.
type Criterion struct {
	ID          int      `json:"id_criterio"`
	Name        string   `json:"criterio"`
	Description string   `json:"descripcion,omitempty"`
	Options     []string `json:"-"`
	Value       string   `json:"valor"`
	Priority    Priority `json:"prioridad"`
}

func (c Criterion) SelectionID() int   { return c.ID }
func (c Criterion) Category() Category { return CategoryCriterion }

func (c Criterion) Label() string {
	if c.Value != "" {
		return c.Name + " = " + c.Value
	}
	return c.Name
}

func (c Criterion) Validate() error {
	if c.ID <= 0 {
		return missing(CategoryCriterion, c.ID, "criterio")
	}
	if c.Priority == 0 {
		return missing(CategoryCriterion, c.ID, "prioridad")
	}
	if !c.Priority.Valid() {
		return invalid(CategoryCriterion, c.ID, "prioridad", strconv.Itoa(int(c.Priority)))
	}
	if len(c.Options) > 0 {
		if c.Value == "" {
			return missing(CategoryCriterion, c.ID, "valor")
		}
		if !slices.Contains(c.Options, c.Value) {
			return invalid(CategoryCriterion, c.ID, "valor", c.Value)
		}
	}
	return nil
}

func (c Criterion) Metadata() map[string]string {
	m := map[string]string{"prioridad": c.Priority.String()}
	if c.Value != "" {
		m["valor"] = c.Value
	}
	return m
}

// Language is a language the applicant speaks with self-assessed levels.
type Language struct {
	ID      int    `json:"id_idioma"`
	Name    string `json:"idioma,omitempty"`
	Oral    string `json:"niveloral"`
	Written string `json:"nivelescrito"`
}

// LanguageLevels are the accepted oral and written levels as sent to the
// server. Use LanguageLevelLabel to display them.
var LanguageLevels = []string{"Basico", "Intermedio", "Avanzado", "Nativo"}

// LanguageLevelLabel returns the display text of a language level.
func LanguageLevelLabel(level string) string {
	if level == "Basico" {
		return "Básico"
	}
	return level
}

func (l Language) SelectionID() int   { return l.ID }
func (l Language) Category() Category { return CategoryLanguage }
func (l Language) Label() string      { return l.Name }

func (l Language) Validate() error {
	if l.ID <= 0 {
		return missing(CategoryLanguage, l.ID, "idioma")
	}
	if l.Oral == "" {
		return missing(CategoryLanguage, l.ID, "niveloral")
	}
	if !slices.Contains(LanguageLevels, l.Oral) {
		return invalid(CategoryLanguage, l.ID, "niveloral", l.Oral)
	}
	if l.Written == "" {
		return missing(CategoryLanguage, l.ID, "nivelescrito")
	}
	if !slices.Contains(LanguageLevels, l.Written) {
		return invalid(CategoryLanguage, l.ID, "nivelescrito", l.Written)
	}
	return nil
}

func (l Language) Metadata() map[string]string {
	return map[string]string{"niveloral": l.Oral, "nivelescrito": l.Written}
}

// Experience is a prior job of an applicant. Entries not yet stored on the
// server carry negative draft ids.
type Experience struct {
	ID          int    `json:"id_formacion_pro,omitempty"`
	Company     string `json:"empresa"`
	Position    string `json:"puesto"`
	Area        string `json:"area"`
	Start       string `json:"fechaini"`
	End         string `json:"fechafin"`
	Description string `json:"descripcion"`
	Reference   string `json:"referencia"`
	Contact     string `json:"contacto"`
}

func (e Experience) SelectionID() int   { return e.ID }
func (e Experience) Category() Category { return CategoryExperience }

func (e Experience) Label() string {
	return e.Position + " en " + e.Company
}

// Draft reports whether e has not been stored yet.
func (e Experience) Draft() bool {
	return e.ID < 0
}

func (e Experience) Validate() error {
	if e.ID == 0 {
		return missing(CategoryExperience, e.ID, "id")
	}
	required := []struct{ field, value string }{
		{"empresa", e.Company},
		{"puesto", e.Position},
		{"area", e.Area},
		{"fechaini", e.Start},
		{"fechafin", e.End},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return missing(CategoryExperience, e.ID, r.field)
		}
	}
	return nil
}

func (e Experience) Metadata() map[string]string {
	return map[string]string{
		"empresa":  e.Company,
		"puesto":   e.Position,
		"area":     e.Area,
		"fechaini": e.Start,
		"fechafin": e.End,
	}
}
