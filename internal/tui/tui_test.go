package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/proajob/proajob/internal/catalog"
	"github.com/proajob/proajob/internal/client"
	"github.com/proajob/proajob/internal/selection"
	"github.com/proajob/proajob/internal/types"
)

type fakeAPI struct {
	mu sync.Mutex

	levels     []string
	refs       *types.References
	refsErr    error
	submitErr  error
	postulante map[int]int
	perfiles   map[int]*types.Perfil
	listing    []types.OfertaSummary
	listingErr error

	// expErrAfter fails experience writes once that many have succeeded;
	// zero disables the failure.
	expErrAfter int
	expErr      error

	ofertas     []*types.CreateOfertaRequest
	formaciones []*types.FormacionRequest
	created     []*types.CreateExperienciaRequest
	updated     map[int]*types.ExperienciaRequest
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		levels: []string{"Tercer nivel", "Cuarto nivel"},
		refs: &types.References{
			Areas: []types.Area{{ID: 1, Name: "Tecnología"}, {ID: 2, Name: "Salud"}},
			Criterios: []types.Criterio{
				{ID: 1, Name: "Género", Options: []string{"Femenino", "Masculino"}},
				{ID: 2, Name: "Experiencia"},
			},
			Idiomas: []types.Idioma{{ID: 1, Name: "Inglés"}, {ID: 2, Name: "Francés"}},
		},
		postulante: map[int]int{3: 30},
		perfiles:   map[int]*types.Perfil{},
		updated:    map[int]*types.ExperienciaRequest{},
	}
}

func (a *fakeAPI) Catalog(ctx context.Context) (catalog.Catalog, error) {
	return catalog.Catalog{Levels: a.levels}, nil
}

func (a *fakeAPI) Fields(ctx context.Context, level string) ([]string, error) {
	if level == "Tercer nivel" {
		return []string{"Ingeniería", "Salud"}, nil
	}
	return nil, nil
}

func (a *fakeAPI) Titles(ctx context.Context, level, field string) ([]catalog.Title, error) {
	if level == "Tercer nivel" && field == "Ingeniería" {
		return []catalog.Title{{ID: 7, Name: "Ingeniero Civil"}, {ID: 8, Name: "Ingeniero Eléctrico"}}, nil
	}
	return nil, nil
}

func (a *fakeAPI) LoadReferences(ctx context.Context) (*types.References, error) {
	if a.refsErr != nil {
		return nil, a.refsErr
	}
	return a.refs, nil
}

func (a *fakeAPI) CreateOferta(ctx context.Context, req *types.CreateOfertaRequest) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.submitErr != nil {
		return 0, a.submitErr
	}
	a.ofertas = append(a.ofertas, req)
	return 10 + len(a.ofertas), nil
}

func (a *fakeAPI) PostulanteID(ctx context.Context, userID int) (int, error) {
	id, ok := a.postulante[userID]
	if !ok {
		return 0, &client.APIError{Method: http.MethodGet, Path: "/postulanteId/id", Status: http.StatusNotFound, Message: "postulante not found"}
	}
	return id, nil
}

func (a *fakeAPI) SubmitFormacion(ctx context.Context, req *types.FormacionRequest) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.submitErr != nil {
		return 0, a.submitErr
	}
	a.formaciones = append(a.formaciones, req)
	return 20 + len(a.formaciones), nil
}

func (a *fakeAPI) Areas(ctx context.Context) ([]types.Area, error) {
	if a.refsErr != nil {
		return nil, a.refsErr
	}
	return a.refs.Areas, nil
}

func (a *fakeAPI) Perfil(ctx context.Context, userID int) (*types.Perfil, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.perfiles[userID]
	if !ok {
		return nil, &client.APIError{Method: http.MethodGet, Path: "/perfil/id", Status: http.StatusNotFound, Message: "postulante not found"}
	}
	copied := *p
	copied.Experiencias = append([]selection.Experience(nil), p.Experiencias...)
	return &copied, nil
}

// expWriteErr returns expErr once expErrAfter writes have been recorded.
// Callers hold mu.
func (a *fakeAPI) expWriteErr() error {
	if a.expErr != nil && len(a.created)+len(a.updated) >= a.expErrAfter {
		return a.expErr
	}
	return nil
}

func (a *fakeAPI) CreateExperiencia(ctx context.Context, req *types.CreateExperienciaRequest) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.expWriteErr(); err != nil {
		return 0, err
	}
	a.created = append(a.created, req)
	id := 40 + len(a.created)
	for _, p := range a.perfiles {
		if p.PostulanteID == req.PostulanteID {
			p.Experiencias = append(p.Experiencias, req.Experience(id))
		}
	}
	return id, nil
}

func (a *fakeAPI) UpdateExperiencia(ctx context.Context, id int, req *types.ExperienciaRequest) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.expWriteErr(); err != nil {
		return err
	}
	a.updated[id] = req
	for _, p := range a.perfiles {
		for i, e := range p.Experiencias {
			if e.ID == id {
				p.Experiencias[i] = req.Experience(id)
			}
		}
	}
	return nil
}

func (a *fakeAPI) Ofertas(ctx context.Context) ([]types.OfertaSummary, error) {
	if a.listingErr != nil {
		return nil, a.listingErr
	}
	return a.listing, nil
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyDel   = tea.KeyMsg{Type: tea.KeyDelete}
)

func writeTestJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// runCommands executes cmd and feeds every resulting message back into
// model until no command is left.
func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
			return
		default:
			_, c := model.Update(msg)
			queue = append(queue, c)
		}
	}
}

// press sends key to model and runs whatever it triggers.
func press(t *testing.T, model tea.Model, key tea.KeyMsg) {
	t.Helper()
	_, cmd := model.Update(key)
	runCommands(t, model, cmd)
}

// fill focuses the text input key and types text into it. Cursor blink
// commands are dropped.
func fill(model tea.Model, fm *form, key, text string) {
	fm.focusKey(key)
	for _, r := range text {
		model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// pickTitle walks the level, field and title selectors, choosing the first
// option of each after moving the title cursor by titleOffset.
func pickTitle(t *testing.T, model tea.Model, fm *form, titleOffset int) {
	t.Helper()
	fm.focusKey("nivel")
	press(t, model, keyEnter)
	fm.focusKey("campo")
	press(t, model, keyEnter)
	fm.focusKey("titulo")
	for range titleOffset {
		press(t, model, keyRight)
	}
	press(t, model, keyEnter)
}
