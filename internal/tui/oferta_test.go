package tui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proajob/proajob/internal/catalog"
	"github.com/proajob/proajob/internal/client"
	"github.com/proajob/proajob/internal/observability"
	"github.com/proajob/proajob/internal/selection"
	"github.com/proajob/proajob/internal/types"
)

func newTestOfertaForm(t *testing.T, api *fakeAPI) *OfertaForm {
	t.Helper()
	f := NewOfertaForm(context.Background(), api, observability.Discard())
	runCommands(t, f, f.Init())
	return f
}

func fillOfertaBasics(f *OfertaForm) {
	fill(f, &f.form, ofCargo, "Desarrollador Go")
	fill(f, &f.form, ofObjetivo, "Mantener la plataforma")
	fill(f, &f.form, ofFunciones, "Programar")
	fill(f, &f.form, ofFechaMax, "2099-12-31")
	fill(f, &f.form, ofSueldo, "1200,50")
}

func TestOfertaForm_InitLoadsReferences(t *testing.T) {
	f := newTestOfertaForm(t, newFakeAPI())

	assert.Equal(t, []string{"Tercer nivel", "Cuarto nivel"}, f.cascade.level.options)
	assert.Equal(t, []string{"Tecnología", "Salud"}, f.form.pickers[ofArea].options)
	assert.Equal(t, []string{"Género", "Experiencia"}, f.form.pickers[ofCriterio].options)
	// The first criterion has a closed set of values, so its value is picked.
	assert.Equal(t, []string{"Femenino", "Masculino"}, f.form.pickers[ofValorOpcion].options)
	assert.Contains(t, f.form.order, ofValorOpcion)
	assert.NotContains(t, f.form.order, ofValor)
	assert.Nil(t, f.modal)
}

func TestOfertaForm_ReferencesFailure(t *testing.T) {
	api := newFakeAPI()
	api.refsErr = errors.New("connection refused")
	f := newTestOfertaForm(t, api)

	require.NotNil(t, f.modal)
	assert.Contains(t, f.modal.text, "connection refused")

	// Dismissing a failure keeps the form open.
	press(t, f, keyEnter)
	assert.Nil(t, f.modal)
	assert.False(t, f.quitting)
}

func TestOfertaForm_Titles(t *testing.T) {
	f := newTestOfertaForm(t, newFakeAPI())

	pickTitle(t, f, &f.form, 1)
	sel, ok := f.cascade.state.Selected()
	require.True(t, ok)
	assert.Equal(t, 8, sel.ID)
	assert.Equal(t, ofAddTitulo, f.form.focused())

	press(t, f, keyEnter)
	assert.Equal(t, []selection.Title{{ID: 8, Name: "Ingeniero Eléctrico"}}, f.titles.Payload())

	press(t, f, keyEnter)
	require.NotNil(t, f.modal)
	assert.Equal(t, "Este título ya ha sido seleccionado.", f.modal.text)
	press(t, f, keyEnter)
	assert.Equal(t, 1, f.titles.Len())

	// Turning the requirement off drops the chosen titles and hides the selectors.
	f.form.focusKey(ofRequiereTitulo)
	press(t, f, keySpace)
	assert.Zero(t, f.titles.Len())
	assert.NotContains(t, f.form.order, ofNivel)
}

func TestOfertaForm_RemoveTitle(t *testing.T) {
	f := newTestOfertaForm(t, newFakeAPI())
	pickTitle(t, f, &f.form, 0)
	press(t, f, keyEnter)
	require.Equal(t, 1, f.titles.Len())

	f.form.focusKey(ofTitulos)
	press(t, f, keyDel)
	assert.Zero(t, f.titles.Len())
}

func TestOfertaForm_Criterios(t *testing.T) {
	f := newTestOfertaForm(t, newFakeAPI())

	f.form.focusKey(ofAddCriterio)
	press(t, f, keyEnter)
	require.NotNil(t, f.modal)
	assert.Equal(t, "Seleccione un criterio y complete la prioridad antes de agregarlo.", f.modal.text)
	press(t, f, keyEnter)

	f.form.focusKey(ofPrioridad)
	press(t, f, keyRight)
	f.form.focusKey(ofAddCriterio)
	press(t, f, keyEnter)
	require.Nil(t, f.modal)
	require.Equal(t, 1, f.criterios.Len())
	got := f.criterios.Payload()[0]
	assert.Equal(t, "Femenino", got.Value)
	assert.Equal(t, selection.PriorityHigh, got.Priority)
	// The priority is reset after every add.
	assert.Zero(t, f.form.pickers[ofPrioridad].cursor)

	f.form.focusKey(ofPrioridad)
	press(t, f, keyRight)
	f.form.focusKey(ofAddCriterio)
	press(t, f, keyEnter)
	require.NotNil(t, f.modal)
	assert.Equal(t, "Este criterio ya ha sido seleccionado.", f.modal.text)
	press(t, f, keyEnter)

	// A criterion without options takes a free text value.
	f.form.focusKey(ofCriterio)
	press(t, f, keyRight)
	assert.Contains(t, f.form.order, ofValor)
	fill(f, &f.form, ofValor, "3 años")
	f.form.focusKey(ofPrioridad)
	press(t, f, keyRight)
	press(t, f, keyRight)
	f.form.focusKey(ofAddCriterio)
	press(t, f, keyEnter)
	require.Equal(t, 2, f.criterios.Len())
	second := f.criterios.Payload()[1]
	assert.Equal(t, "3 años", second.Value)
	assert.Equal(t, selection.PriorityMedium, second.Priority)
	assert.Empty(t, f.form.value(ofValor))
}

func TestOfertaForm_Submit(t *testing.T) {
	api := newFakeAPI()
	f := newTestOfertaForm(t, api)

	fillOfertaBasics(f)
	pickTitle(t, f, &f.form, 0)
	press(t, f, keyEnter)
	f.form.focusKey(ofPrioridad)
	press(t, f, keyRight)
	f.form.focusKey(ofAddCriterio)
	press(t, f, keyEnter)

	f.form.focusKey(ofSubmit)
	press(t, f, keyEnter)

	require.Len(t, api.ofertas, 1)
	req := api.ofertas[0]
	assert.Equal(t, "Desarrollador Go", req.Cargo)
	assert.Equal(t, 1, req.AreaID)
	assert.InDelta(t, 1200.5, req.Sueldo, 0.001)
	assert.Equal(t, "Tiempo Completo", req.CargaHoraria)
	assert.Equal(t, "Presencial", req.Modalidad)
	assert.True(t, req.MostrarEmpresa)
	assert.Equal(t, []selection.Title{{ID: 7, Name: "Ingeniero Civil"}}, req.Titulos)
	require.Len(t, req.Criterios, 1)

	require.NotNil(t, f.modal)
	assert.True(t, f.modal.ok)
	assert.Equal(t, "¡Publicada!", f.modal.title)
	assert.Equal(t, "La oferta se encuentra publicada", f.modal.text)
	assert.Equal(t, 11, f.OfertaID)
	require.NotNil(t, f.Submitted)
	assert.Same(t, req, f.Submitted)

	// Later edits to the inputs do not leak into the stored request.
	f.form.setText(ofCargo, "")
	assert.Equal(t, "Desarrollador Go", f.Submitted.Cargo)

	_, cmd := f.Update(keyEnter)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestOfertaForm_SubmitRejected(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *OfertaForm, api *fakeAPI)
		want    string
	}{
		{
			name:    "missing cargo",
			prepare: func(f *OfertaForm, api *fakeAPI) { f.form.setText(ofCargo, "") },
			want:    "Complete el campo cargo.",
		},
		{
			name:    "non numeric salary",
			prepare: func(f *OfertaForm, api *fakeAPI) { f.form.setText(ofSueldo, "mucho") },
			want:    "El campo sueldo debe ser un número.",
		},
		{
			name: "server rejection",
			prepare: func(f *OfertaForm, api *fakeAPI) {
				api.submitErr = &client.APIError{Status: http.StatusForbidden, Message: "user has no company"}
			},
			want: "user has no company",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			f := newTestOfertaForm(t, api)
			fillOfertaBasics(f)
			tt.prepare(f, api)

			f.form.focusKey(ofSubmit)
			press(t, f, keyEnter)

			require.NotNil(t, f.modal)
			assert.False(t, f.modal.ok)
			assert.Equal(t, tt.want, f.modal.text)
			assert.Empty(t, api.ofertas)
			assert.Nil(t, f.Submitted)
			assert.Zero(t, f.OfertaID)

			// The inputs survive the failure.
			press(t, f, keyEnter)
			assert.Nil(t, f.modal)
			assert.Equal(t, "Mantener la plataforma", f.form.value(ofObjetivo))
			assert.False(t, f.submitting)
		})
	}
}

func TestOfertaForm_View(t *testing.T) {
	f := newTestOfertaForm(t, newFakeAPI())
	view := f.View()
	assert.Contains(t, view, "Publicar oferta")
	assert.Contains(t, view, "Tecnología")
	assert.Contains(t, view, "seleccione un nivel")

	f.form.focusKey(ofAddCriterio)
	press(t, f, keyEnter)
	assert.Contains(t, f.View(), "Seleccione un criterio")
}

func TestOfertaForm_TabCyclesFocus(t *testing.T) {
	f := newTestOfertaForm(t, newFakeAPI())
	require.Equal(t, ofCargo, f.form.focused())
	press(t, f, keyTab)
	assert.Equal(t, ofArea, f.form.focused())
	press(t, f, tea.KeyMsg{Type: tea.KeyShiftTab})
	press(t, f, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, ofSubmit, f.form.focused())
}

func TestOfertaForm_PendingCursorSurvivesTitlesLoad(t *testing.T) {
	f := newTestOfertaForm(t, newFakeAPI())
	f.form.focusKey(ofNivel)
	press(t, f, keyEnter)
	require.Equal(t, []string{"Ingeniería", "Salud"}, f.cascade.field.options)

	// Confirm the field but hold back the titles fetch.
	f.form.focusKey(ofCampo)
	_, fetchTitles := f.Update(keyEnter)
	require.NotNil(t, fetchTitles)

	// Move the level cursor without confirming it.
	f.form.focusKey(ofNivel)
	press(t, f, keyRight)
	require.Equal(t, 1, f.cascade.level.cursor)

	runCommands(t, f, fetchTitles)

	assert.Equal(t, []string{"Ingeniero Civil", "Ingeniero Eléctrico"}, f.cascade.title.options)
	assert.Equal(t, 1, f.cascade.level.cursor)
	assert.Equal(t, "Cuarto nivel", f.cascade.level.value())
	assert.Equal(t, "Tercer nivel", f.cascade.state.Selection.Level)
}

func TestOfertaForm_MountFetchesCatalogOnce(t *testing.T) {
	var catalogHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /titulos", func(w http.ResponseWriter, r *http.Request) {
		catalogHits.Add(1)
		writeTestJSON(w, catalog.Catalog{Levels: []string{"Tercer nivel"}})
	})
	mux.HandleFunc("GET /areas", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, map[string]any{"areas": []types.Area{{ID: 1, Name: "Tecnología"}}})
	})
	mux.HandleFunc("GET /criterios", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, map[string]any{"criterios": []types.Criterio{{ID: 1, Name: "Género", Options: []string{"Femenino"}}}})
	})
	mux.HandleFunc("GET /idioma", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, map[string]any{"idiomas": []types.Idioma{{ID: 1, Name: "Inglés"}}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	f := NewOfertaForm(context.Background(), client.New(srv.URL, "", nil), observability.Discard())
	runCommands(t, f, f.Init())

	assert.Equal(t, int32(1), catalogHits.Load())
	assert.Equal(t, []string{"Tercer nivel"}, f.cascade.level.options)
	assert.Equal(t, []string{"Tecnología"}, f.form.pickers[ofArea].options)
	assert.Nil(t, f.modal)
}
