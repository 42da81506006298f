// Package catalog drives the three dependent education selectors
// (level -> field -> degree title) as explicit state transitions.
//
// Every fetch the resolver asks for is tagged with a generation. A response
// is applied only while its generation is still the pending one for its
// scope, so a slow answer for an abandoned level can never overwrite the
// options of the current one.
package catalog

import (
	"context"
	"fmt"
)

// Title is a degree title as served by the catalog endpoints.
type Title struct {
	ID   int    `json:"id"`
	Name string `json:"titulo"`
}

// Catalog is the unfiltered catalog returned by GET /titulos.
type Catalog struct {
	Levels []string `json:"nivel"`
	Fields []string `json:"campo"`
	Titles []Title  `json:"titulo"`
}

// Selection is the current choice across the three selectors.
type Selection struct {
	Level     string `json:"nivel"`
	Field     string `json:"campo"`
	TitleID   int    `json:"id_titulo"`
	TitleName string `json:"titulo"`
}

// Scope identifies which option list a request or response belongs to.
type Scope int

const (
	ScopeCatalog Scope = iota
	ScopeFields
	ScopeTitles
	scopeCount
)

func (s Scope) String() string {
	switch s {
	case ScopeCatalog:
		return "catalogo"
	case ScopeFields:
		return "campos"
	case ScopeTitles:
		return "titulos"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Request asks the caller to fetch one option list. The event produced for
// it must carry the same Generation.
type Request struct {
	Scope      Scope
	Generation uint64
	Level      string
	Field      string
}

// Fetcher reads the catalog from the server.
type Fetcher interface {
	Catalog(ctx context.Context) (Catalog, error)
	Fields(ctx context.Context, level string) ([]string, error)
	Titles(ctx context.Context, level, field string) ([]Title, error)
}

// State is the resolver state for one form session. The zero value is an
// empty resolver with nothing pending.
type State struct {
	Levels    []string
	Fields    []string
	Titles    []Title
	Selection Selection
	// Notice holds the last fetch or selection problem until dismissed.
	Notice string

	generation uint64
	pending    [scopeCount]uint64
}

// Start returns an empty state together with the request for the
// unfiltered catalog.
func Start() (State, *Request) {
	var s State
	s.generation++
	s.pending[ScopeCatalog] = s.generation
	return s, &Request{Scope: ScopeCatalog, Generation: s.generation}
}

// FieldEnabled reports whether the field selector accepts input.
func (s State) FieldEnabled() bool {
	return s.Selection.Level != ""
}

// TitleEnabled reports whether the title selector accepts input.
func (s State) TitleEnabled() bool {
	return s.Selection.Level != "" && s.Selection.Field != ""
}

// Loading reports whether a request for scope is still outstanding.
func (s State) Loading(scope Scope) bool {
	return scope >= 0 && scope < scopeCount && s.pending[scope] != 0
}

// Selected returns the resolved title, if one is chosen.
func (s State) Selected() (Title, bool) {
	if s.Selection.TitleID == 0 {
		return Title{}, false
	}
	return Title{ID: s.Selection.TitleID, Name: s.Selection.TitleName}, true
}

// Resolve performs req against f and returns the event that reports its
// outcome. It is meant to run off the event loop (for example as a
// bubbletea command).
func Resolve(ctx context.Context, f Fetcher, req Request) Event {
	switch req.Scope {
	case ScopeCatalog:
		c, err := f.Catalog(ctx)
		if err != nil {
			return FetchFailed{Generation: req.Generation, Scope: req.Scope, Err: err}
		}
		return CatalogLoaded{Generation: req.Generation, Catalog: c}
	case ScopeFields:
		fields, err := f.Fields(ctx, req.Level)
		if err != nil {
			return FetchFailed{Generation: req.Generation, Scope: req.Scope, Err: err}
		}
		return FieldsLoaded{Generation: req.Generation, Fields: fields}
	case ScopeTitles:
		titles, err := f.Titles(ctx, req.Level, req.Field)
		if err != nil {
			return FetchFailed{Generation: req.Generation, Scope: req.Scope, Err: err}
		}
		return TitlesLoaded{Generation: req.Generation, Titles: titles}
	default:
		return FetchFailed{Generation: req.Generation, Scope: req.Scope, Err: fmt.Errorf("unknown scope %s", req.Scope)}
	}
}
