package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proajob/proajob/internal/observability"
	"github.com/proajob/proajob/internal/types"
)

func listingAPI() *fakeAPI {
	api := newFakeAPI()
	api.listing = []types.OfertaSummary{
		{ID: 1, Cargo: "Desarrollador Go", Area: types.OfertaArea{Name: "Tecnología"}, Modalidad: "Virtual",
			FechaPubli: "2025-05-01", MostrarEmpresa: true, Empresa: types.OfertaEmpresa{NombreComercial: "Acme S.A."}},
		{ID: 2, Cargo: "Enfermera", Area: types.OfertaArea{Name: "Salud"}, Modalidad: "Presencial",
			FechaPubli: "2025-05-02", Empresa: types.OfertaEmpresa{NombreComercial: "Clínica Norte"}},
		{ID: 3, Cargo: "Desarrollador Frontend", Area: types.OfertaArea{Name: "Tecnología"}, Modalidad: "Presencial",
			FechaPubli: "2025-05-03", MostrarEmpresa: true, Empresa: types.OfertaEmpresa{NombreComercial: "Acme S.A."}},
	}
	return api
}

func newTestOfertasList(t *testing.T, api *fakeAPI, cargo string) *OfertasList {
	t.Helper()
	l := NewOfertasList(context.Background(), api, cargo, observability.Discard())
	runCommands(t, l, l.Init())
	return l
}

func visibleIDs(l *OfertasList) []int {
	var ids []int
	for _, o := range l.Visible() {
		ids = append(ids, o.ID)
	}
	return ids
}

func TestOfertasList_Filter(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		typed   string
		want    []int
	}{
		{"no filter", "", "", []int{1, 2, 3}},
		{"initial filter", "desarrollador", "", []int{1, 3}},
		{"typed filter ignores case", "", "ENFER", []int{2}},
		{"no match", "", "piloto", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestOfertasList(t, listingAPI(), tt.initial)
			fill(l, &l.form, olCargo, tt.typed)
			assert.Equal(t, tt.want, visibleIDs(l))
		})
	}
}

func TestOfertasList_CursorFollowsFilter(t *testing.T) {
	l := newTestOfertasList(t, listingAPI(), "")
	press(t, l, tea.KeyMsg{Type: tea.KeyDown})
	press(t, l, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 2, l.cursor)

	// Narrowing the list pulls the cursor back inside it.
	fill(l, &l.form, olCargo, "go")
	assert.Zero(t, l.cursor)

	press(t, l, tea.KeyMsg{Type: tea.KeyUp})
	assert.Zero(t, l.cursor)
}

func TestOfertasList_Choose(t *testing.T) {
	l := newTestOfertasList(t, listingAPI(), "desarrollador")
	press(t, l, tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := l.Update(keyEnter)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	require.NotNil(t, l.Chosen)
	assert.Equal(t, 3, l.Chosen.ID)
}

func TestOfertasList_EnterOnEmptyList(t *testing.T) {
	l := newTestOfertasList(t, listingAPI(), "piloto")
	_, cmd := l.Update(keyEnter)
	assert.Nil(t, cmd)
	assert.Nil(t, l.Chosen)
}

func TestOfertasList_LoadFailure(t *testing.T) {
	api := listingAPI()
	api.listingErr = errors.New("connection refused")
	l := newTestOfertasList(t, api, "")

	require.NotNil(t, l.modal)
	assert.Contains(t, l.modal.text, "connection refused")
	press(t, l, keyEnter)
	assert.Nil(t, l.modal)
	assert.False(t, l.quitting)
	assert.Contains(t, l.View(), "No hay ofertas")
}

func TestOfertasList_View(t *testing.T) {
	l := newTestOfertasList(t, listingAPI(), "")
	view := l.View()
	assert.Contains(t, view, "Ofertas de empleo")
	assert.Contains(t, view, "Desarrollador Go · Acme S.A. · Tecnología · Virtual · publicada 2025-05-01")
	assert.Contains(t, view, "Enfermera · Anónima")
	assert.Contains(t, view, "3 de 3")

	_, cmd := l.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, l.View())
}
