package tui

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proajob/proajob/internal/observability"
	"github.com/proajob/proajob/internal/selection"
	"github.com/proajob/proajob/internal/types"
)

func newTestFormacionForm(t *testing.T, api *fakeAPI, userID int) *FormacionForm {
	t.Helper()
	f := NewFormacionForm(context.Background(), api, userID, observability.Discard())
	f.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	runCommands(t, f, f.Init())
	return f
}

func fillFormacionBasics(t *testing.T, f *FormacionForm) {
	t.Helper()
	pickTitle(t, f, &f.form, 0)
	fill(f, &f.form, fmInstitucion, "Universidad Central")
	fill(f, &f.form, fmFechaIni, "2015-03-01")
	fill(f, &f.form, fmFechaFin, "2020-07-30")
}

func TestFormacionForm_Init(t *testing.T) {
	f := newTestFormacionForm(t, newFakeAPI(), 3)
	assert.Equal(t, 30, f.postulanteID)
	assert.Equal(t, []string{"Inglés", "Francés"}, f.form.pickers[fmIdioma].options)
	assert.Nil(t, f.modal)
}

func TestFormacionForm_UnknownApplicant(t *testing.T) {
	f := newTestFormacionForm(t, newFakeAPI(), 99)
	require.NotNil(t, f.modal)
	assert.Contains(t, f.modal.text, "postulante not found")
	press(t, f, keyEnter)

	fillFormacionBasics(t, f)
	f.form.focusKey(fmSubmit)
	press(t, f, keyEnter)
	require.NotNil(t, f.modal)
	assert.Equal(t, "No se encontró el postulante.", f.modal.text)
}

func TestFormacionForm_Languages(t *testing.T) {
	f := newTestFormacionForm(t, newFakeAPI(), 3)

	f.form.focusKey(fmOral)
	press(t, f, keyRight)
	f.form.focusKey(fmAddIdioma)
	press(t, f, keyEnter)
	require.Equal(t, 1, f.langs.Len())
	assert.Equal(t, selection.Language{ID: 1, Name: "Inglés", Oral: "Intermedio", Written: "Basico"}, f.langs.Payload()[0])

	press(t, f, keyEnter)
	require.NotNil(t, f.modal)
	assert.Equal(t, "Este idioma ya ha sido agregado.", f.modal.text)
	press(t, f, keyEnter)

	f.form.focusKey(fmIdioma)
	press(t, f, keyRight)
	f.form.focusKey(fmAddIdioma)
	press(t, f, keyEnter)
	assert.Equal(t, 2, f.langs.Len())

	f.form.focusKey(fmIdiomas)
	press(t, f, keyDel)
	require.Equal(t, 1, f.langs.Len())
	assert.Equal(t, "Francés", f.langs.Payload()[0].Name)
}

func TestFormacionForm_Submit(t *testing.T) {
	api := newFakeAPI()
	f := newTestFormacionForm(t, api, 3)
	fillFormacionBasics(t, f)
	f.form.focusKey(fmAddIdioma)
	press(t, f, keyEnter)

	f.form.focusKey(fmSubmit)
	press(t, f, keyEnter)

	require.Len(t, api.formaciones, 1)
	req := api.formaciones[0]
	assert.Equal(t, 30, req.PostulanteID)
	assert.Equal(t, 7, req.TituloID)
	assert.Equal(t, types.EstadoCulminado, req.Estado)
	assert.Equal(t, "2015-03-01", req.FechaIni)
	assert.Len(t, req.Idiomas, 1)
	assert.Nil(t, req.Experiencia)

	require.NotNil(t, f.modal)
	assert.True(t, f.modal.ok)
	assert.Equal(t, "¡Registro completo!", f.modal.title)
	assert.Equal(t, "Bienvenido a proajob", f.modal.text)
	assert.Equal(t, 21, f.FormacionID)
	assert.Same(t, req, f.Submitted)
	assert.Equal(t, "Ingeniero Civil", f.TitleName())
}

func TestFormacionForm_WithExperience(t *testing.T) {
	api := newFakeAPI()
	f := newTestFormacionForm(t, api, 3)
	fillFormacionBasics(t, f)

	assert.NotContains(t, f.form.order, fmEmpresa)
	f.form.focusKey(fmTieneExperiencia)
	press(t, f, keySpace)
	require.Contains(t, f.form.order, fmEmpresa)

	fill(f, &f.form, fmEmpresa, "Proa")
	fill(f, &f.form, fmPuesto, "Analista")
	fill(f, &f.form, fmArea, "TI")
	fill(f, &f.form, fmExpFechaIni, "2021-01-01")
	fill(f, &f.form, fmExpFechaFin, "2022-01-01")

	f.form.focusKey(fmSubmit)
	press(t, f, keyEnter)

	require.Len(t, api.formaciones, 1)
	exp := api.formaciones[0].Experiencia
	require.NotNil(t, exp)
	assert.Equal(t, "Analista en Proa", exp.Label())
	assert.Equal(t, "2022-01-01", exp.End)
}

func TestFormacionForm_DateRules(t *testing.T) {
	tests := []struct {
		name     string
		ini, fin string
		want     string
	}{
		{"start after end", "2021-01-01", "2020-01-01", "La fecha de inicio no puede ser mayor a la fecha de fin"},
		{"future end", "2021-01-01", "2030-01-01", "Las fechas no pueden ser mayores que el día de hoy"},
		{"future start", "2026-01-01", "2026-02-01", "Las fechas no pueden ser mayores que el día de hoy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			f := newTestFormacionForm(t, api, 3)
			fillFormacionBasics(t, f)
			f.form.setText(fmFechaIni, tt.ini)
			f.form.setText(fmFechaFin, tt.fin)

			f.form.focusKey(fmSubmit)
			press(t, f, keyEnter)

			require.NotNil(t, f.modal)
			assert.Equal(t, tt.want, f.modal.text)
			assert.Empty(t, api.formaciones)
			assert.Nil(t, f.Submitted)
		})
	}
}

func TestFormacionForm_RequiresTitle(t *testing.T) {
	api := newFakeAPI()
	f := newTestFormacionForm(t, api, 3)
	fill(f, &f.form, fmInstitucion, "Universidad Central")

	f.form.focusKey(fmSubmit)
	press(t, f, keyEnter)
	require.NotNil(t, f.modal)
	assert.Equal(t, "Seleccione un título.", f.modal.text)
	assert.Empty(t, api.formaciones)
}

func TestFormacionForm_View(t *testing.T) {
	f := newTestFormacionForm(t, newFakeAPI(), 3)
	pickTitle(t, f, &f.form, 1)
	view := f.View()
	assert.Contains(t, view, "Completar perfil")
	assert.Contains(t, view, "Ingeniero Eléctrico")
	assert.NotContains(t, view, "Empresa")
}
