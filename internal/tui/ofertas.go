package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/proajob/proajob/internal/types"
)

// OfertasAPI lists the published offers. *client.Client implements it.
type OfertasAPI interface {
	Ofertas(ctx context.Context) ([]types.OfertaSummary, error)
}

const olCargo = "cargo"

type ofertasMsg struct {
	ofertas []types.OfertaSummary
	err     error
}

// OfertasList shows the published offers, filtered by position as the user
// types.
type OfertasList struct {
	ctx context.Context
	api OfertasAPI
	log logrus.FieldLogger

	form    form
	ofertas []types.OfertaSummary
	cursor  int
	loading bool
	modal   *modal

	// Chosen is the offer picked with enter, if any.
	Chosen   *types.OfertaSummary
	quitting bool
}

// NewOfertasList builds the list with cargo as the initial filter.
func NewOfertasList(ctx context.Context, api OfertasAPI, cargo string, log logrus.FieldLogger) *OfertasList {
	l := &OfertasList{ctx: ctx, api: api, log: log, form: newForm(), loading: true}
	l.form.addText(olCargo, "Buscar por cargo", "Desarrollador", 255)
	l.form.setText(olCargo, cargo)
	l.form.setOrder([]string{olCargo})
	return l
}

// Init loads the offers.
func (l *OfertasList) Init() tea.Cmd {
	ctx, api := l.ctx, l.api
	return func() tea.Msg {
		list, err := api.Ofertas(ctx)
		return ofertasMsg{ofertas: list, err: err}
	}
}

// Visible returns the offers matching the current filter.
func (l *OfertasList) Visible() []types.OfertaSummary {
	return types.FilterOfertas(l.ofertas, l.form.value(olCargo))
}

// Update implements tea.Model.
func (l *OfertasList) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ofertasMsg:
		l.loading = false
		if msg.err != nil {
			l.log.WithError(msg.err).Warn("failed to load offers")
			l.modal = &modal{title: "Oops...", text: "No se pudieron cargar las ofertas: " + errorText(msg.err)}
			return l, nil
		}
		l.ofertas = msg.ofertas
		l.clampCursor()
		return l, nil

	case tea.KeyMsg:
		return l.handleKey(msg)
	}
	return l, nil
}

func (l *OfertasList) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		l.quitting = true
		return l, tea.Quit
	}
	if l.modal != nil {
		switch msg.String() {
		case "enter", "esc", " ":
			l.modal = nil
		}
		return l, nil
	}

	switch msg.String() {
	case "esc":
		l.quitting = true
		return l, tea.Quit
	case "up":
		l.moveCursor(-1)
		return l, nil
	case "down":
		l.moveCursor(1)
		return l, nil
	case "enter":
		visible := l.Visible()
		if len(visible) == 0 {
			return l, nil
		}
		chosen := visible[l.cursor]
		l.Chosen = &chosen
		l.quitting = true
		return l, tea.Quit
	}

	used, cmd := l.form.handleKey(msg)
	if used {
		l.clampCursor()
	}
	return l, cmd
}

func (l *OfertasList) moveCursor(delta int) {
	n := len(l.Visible())
	if n == 0 {
		l.cursor = 0
		return
	}
	l.cursor = ((l.cursor+delta)%n + n) % n
}

// clampCursor keeps the cursor inside the filtered list.
func (l *OfertasList) clampCursor() {
	if n := len(l.Visible()); l.cursor >= n {
		l.cursor = max(n-1, 0)
	}
}

// View implements tea.Model.
func (l *OfertasList) View() string {
	if l.quitting {
		return ""
	}
	if l.modal != nil {
		return l.modal.view()
	}

	rows := []string{
		titleStyle.Render("Ofertas de empleo"),
		l.form.textRow(olCargo),
		"",
	}
	visible := l.Visible()
	switch {
	case l.loading:
		rows = append(rows, disabledStyle.Render("cargando…"))
	case len(visible) == 0:
		rows = append(rows, disabledStyle.Render("No hay ofertas que coincidan con la búsqueda."))
	}
	for i, o := range visible {
		line := fmt.Sprintf("%s · %s · %s · %s · publicada %s",
			o.Cargo, o.Publisher(), o.Area.Name, o.Modalidad, o.FechaPubli)
		if i == l.cursor {
			rows = append(rows, focusStyle.UnsetWidth().Render("▸ "+line))
		} else {
			rows = append(rows, valueStyle.Render("  "+line))
		}
	}
	rows = append(rows, hintStyle.Render(fmt.Sprintf("%d de %d · ↑/↓ mover · enter ver · esc salir", len(visible), len(l.ofertas))))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
