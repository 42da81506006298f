// Package seed loads catalog seed files and upserts them into the database.
//
// A seed file is YAML. It is checked against an embedded JSON Schema before
// it is decoded, so a typo in a key fails the load instead of being ignored.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/proajob/proajob/internal/types"
)

//go:embed schema.json
var schemaJSON string

// File is a decoded seed document.
type File struct {
	Areas     []string      `yaml:"areas"`
	Idiomas   []string      `yaml:"idiomas"`
	Criterios []Criterio    `yaml:"criterios"`
	Titulos   []TitleGroup  `yaml:"titulos"`
	Usuarios  []UsuarioSeed `yaml:"usuarios"`
}

// Criterio is a seeded evaluation criterion.
type Criterio struct {
	Name        string   `yaml:"criterio"`
	Description string   `yaml:"descripcion"`
	Options     []string `yaml:"opciones"`
}

// TitleGroup lists the titles of one level and field.
type TitleGroup struct {
	Level  string   `yaml:"nivel"`
	Field  string   `yaml:"campo"`
	Titles []string `yaml:"titulos"`
}

// UsuarioSeed is a demo account. Company roles get an empresa record and
// applicants a postulante record.
type UsuarioSeed struct {
	Name      string `yaml:"nombre"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	Role      string `yaml:"rol"`
	Empresa   string `yaml:"empresa"`
	Nombres   string `yaml:"nombres"`
	Apellidos string `yaml:"apellidos"`
}

// ValidationError lists every schema violation of a seed document.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single violation at a document path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("seed validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Load reads and parses the seed file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse validates data against the seed schema and decodes it.
func Parse(data []byte) (*File, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	if err := validate(doc); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}
	return &f, nil
}

func validate(doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert seed to JSON: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("failed to run seed schema: %w", err)
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}

// Store is the subset of *db.DB that Apply writes through.
type Store interface {
	UpsertArea(ctx context.Context, name string) (int, error)
	UpsertIdioma(ctx context.Context, name string) (int, error)
	UpsertCriterio(ctx context.Context, req *types.CreateCriterioRequest) (int, error)
	UpsertTitle(ctx context.Context, level, field, title string) (int, error)
	UpsertUser(ctx context.Context, name, email, passwordHash, role string) (int, error)
	UpsertEmpresa(ctx context.Context, userID int, nombreComercial, logo string) (int, error)
	UpsertPostulante(ctx context.Context, userID int, nombres, apellidos string) (int, error)
}

// Hasher hashes seeded passwords. *config.PasswordConfig implements it.
type Hasher interface {
	HashPassword(pw string) (string, error)
}

// Result counts the upserted rows per catalog.
type Result struct {
	Areas     int `json:"areas"`
	Idiomas   int `json:"idiomas"`
	Criterios int `json:"criterios"`
	Titulos   int `json:"titulos"`
	Usuarios  int `json:"usuarios"`
}

// Apply upserts every entry of f. Seeding is idempotent: applying the same
// file twice leaves the database unchanged. hasher may be nil when f has no
// users.
func Apply(ctx context.Context, store Store, f *File, hasher Hasher, log logrus.FieldLogger) (*Result, error) {
	res := &Result{}

	for _, name := range f.Areas {
		if _, err := store.UpsertArea(ctx, name); err != nil {
			return res, fmt.Errorf("area %q: %w", name, err)
		}
		res.Areas++
	}
	for _, name := range f.Idiomas {
		if _, err := store.UpsertIdioma(ctx, name); err != nil {
			return res, fmt.Errorf("idioma %q: %w", name, err)
		}
		res.Idiomas++
	}
	for _, c := range f.Criterios {
		req := &types.CreateCriterioRequest{Name: c.Name, Description: c.Description, Options: c.Options}
		if _, err := store.UpsertCriterio(ctx, req); err != nil {
			return res, fmt.Errorf("criterio %q: %w", c.Name, err)
		}
		res.Criterios++
	}
	for _, g := range f.Titulos {
		for _, title := range g.Titles {
			if _, err := store.UpsertTitle(ctx, g.Level, g.Field, title); err != nil {
				return res, fmt.Errorf("titulo %q (%s / %s): %w", title, g.Level, g.Field, err)
			}
			res.Titulos++
		}
	}
	log.WithFields(logrus.Fields{
		"areas":     res.Areas,
		"idiomas":   res.Idiomas,
		"criterios": res.Criterios,
		"titulos":   res.Titulos,
	}).Info("catalogs seeded")

	if len(f.Usuarios) == 0 {
		return res, nil
	}
	if hasher == nil {
		return res, fmt.Errorf("seed has %d users but no password hasher", len(f.Usuarios))
	}
	for _, u := range f.Usuarios {
		if err := applyUser(ctx, store, hasher, u); err != nil {
			return res, fmt.Errorf("usuario %q: %w", u.Email, err)
		}
		res.Usuarios++
		log.WithFields(logrus.Fields{"email": u.Email, "role": u.Role}).Debug("user seeded")
	}
	return res, nil
}

func applyUser(ctx context.Context, store Store, hasher Hasher, u UsuarioSeed) error {
	hash, err := hasher.HashPassword(u.Password)
	if err != nil {
		return err
	}
	id, err := store.UpsertUser(ctx, u.Name, u.Email, hash, u.Role)
	if err != nil {
		return err
	}

	switch u.Role {
	case types.RoleEmpresaOferente, types.RoleEmpresaGestora:
		empresa := u.Empresa
		if empresa == "" {
			empresa = u.Name
		}
		_, err = store.UpsertEmpresa(ctx, id, empresa, "")
	case types.RolePostulante:
		nombres := u.Nombres
		if nombres == "" {
			nombres = u.Name
		}
		_, err = store.UpsertPostulante(ctx, id, nombres, u.Apellidos)
	}
	return err
}
