package catalog

import "fmt"

// Event is an input to Reduce: a user selection or the outcome of a fetch.
type Event interface {
	isEvent()
}

// LevelSelected is emitted when the user picks an education level.
// An empty Level means the placeholder option was chosen.
type LevelSelected struct{ Level string }

// FieldSelected is emitted when the user picks a field.
type FieldSelected struct{ Field string }

// TitleSelected is emitted when the user picks a title. Zero clears it.
type TitleSelected struct{ TitleID int }

// CatalogLoaded carries the unfiltered catalog.
type CatalogLoaded struct {
	Generation uint64
	Catalog    Catalog
}

// FieldsLoaded carries the fields of a level.
type FieldsLoaded struct {
	Generation uint64
	Fields     []string
}

// TitlesLoaded carries the titles of a (level, field) pair.
type TitlesLoaded struct {
	Generation uint64
	Titles     []Title
}

// FetchFailed reports a failed request.
type FetchFailed struct {
	Generation uint64
	Scope      Scope
	Err        error
}

// NoticeDismissed clears the current notice.
type NoticeDismissed struct{}

func (LevelSelected) isEvent()   {}
func (FieldSelected) isEvent()   {}
func (TitleSelected) isEvent()   {}
func (CatalogLoaded) isEvent()   {}
func (FieldsLoaded) isEvent()    {}
func (TitlesLoaded) isEvent()    {}
func (FetchFailed) isEvent()     {}
func (NoticeDismissed) isEvent() {}

// Reduce applies ev to s and returns the new state plus the fetch the caller
// must perform next, if any. It never mutates the slices of s.
func Reduce(s State, ev Event) (State, *Request) {
	switch ev := ev.(type) {
	case LevelSelected:
		return s.selectLevel(ev.Level)
	case FieldSelected:
		return s.selectField(ev.Field)
	case TitleSelected:
		return s.selectTitle(ev.TitleID), nil

	case CatalogLoaded:
		if !s.accepts(ScopeCatalog, ev.Generation) {
			return s, nil
		}
		s.pending[ScopeCatalog] = 0
		s.Levels = ev.Catalog.Levels
		if s.Selection.Level == "" {
			s.Fields = ev.Catalog.Fields
			s.Titles = ev.Catalog.Titles
		}
		return s, nil

	case FieldsLoaded:
		if !s.accepts(ScopeFields, ev.Generation) {
			return s, nil
		}
		s.pending[ScopeFields] = 0
		s.Fields = ev.Fields
		return s, nil

	case TitlesLoaded:
		if !s.accepts(ScopeTitles, ev.Generation) {
			return s, nil
		}
		s.pending[ScopeTitles] = 0
		s.Titles = ev.Titles
		return s, nil

	case FetchFailed:
		if ev.Scope < 0 || ev.Scope >= scopeCount || !s.accepts(ev.Scope, ev.Generation) {
			return s, nil
		}
		s.pending[ev.Scope] = 0
		s.Notice = fmt.Sprintf("No se pudieron cargar los %s: %v", ev.Scope, ev.Err)
		return s, nil

	case NoticeDismissed:
		s.Notice = ""
		return s, nil
	}
	return s, nil
}

func (s State) accepts(scope Scope, generation uint64) bool {
	return generation != 0 && s.pending[scope] == generation
}

func (s State) selectLevel(level string) (State, *Request) {
	s.generation++
	s.Selection = Selection{Level: level}
	s.Fields = nil
	s.Titles = nil
	s.pending[ScopeTitles] = 0
	if level == "" {
		s.pending[ScopeFields] = 0
		return s, nil
	}
	s.pending[ScopeFields] = s.generation
	return s, &Request{Scope: ScopeFields, Generation: s.generation, Level: level}
}

func (s State) selectField(field string) (State, *Request) {
	if s.Selection.Level == "" {
		return s, nil
	}
	s.generation++
	s.Selection.Field = field
	s.Selection.TitleID = 0
	s.Selection.TitleName = ""
	s.Titles = nil
	if field == "" {
		s.pending[ScopeTitles] = 0
		return s, nil
	}
	s.pending[ScopeTitles] = s.generation
	return s, &Request{
		Scope:      ScopeTitles,
		Generation: s.generation,
		Level:      s.Selection.Level,
		Field:      field,
	}
}

func (s State) selectTitle(id int) State {
	if !s.TitleEnabled() {
		return s
	}
	s.Selection.TitleID = 0
	s.Selection.TitleName = ""
	if id == 0 {
		return s
	}
	for _, t := range s.Titles {
		if t.ID == id {
			s.Selection.TitleID = t.ID
			s.Selection.TitleName = t.Name
			return s
		}
	}
	s.Notice = fmt.Sprintf("El título %d no pertenece a %s / %s", id, s.Selection.Level, s.Selection.Field)
	return s
}
