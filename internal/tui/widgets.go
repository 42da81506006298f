// Package tui holds the terminal screens of ProaJob: publishing an offer,
// completing an applicant's academic formation, managing their work
// experience and browsing the published offers.
//
// Every screen follows the bubbletea loop: key presses become messages, Update
// folds them into the model, and every server call runs as a tea.Cmd whose
// result comes back as another message. The degree-title selectors are
// driven by catalog.Reduce, so a late answer for an abandoned level is
// dropped instead of overwriting the current options.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/proajob/proajob/internal/catalog"
	"github.com/proajob/proajob/internal/client"
	"github.com/proajob/proajob/internal/selection"
	"github.com/proajob/proajob/internal/types"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).MarginBottom(1)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801")).MarginTop(1)
	labelStyle    = lipgloss.NewStyle().Width(26).Foreground(lipgloss.Color("#CCCCCC"))
	focusStyle    = lipgloss.NewStyle().Width(26).Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	buttonStyle   = lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("#444444"))
	buttonFocus   = lipgloss.NewStyle().Padding(0, 2).Bold(true).Background(lipgloss.Color("#5B8DEF"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginTop(1)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))
	okModal       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#4CAF50")).Padding(1, 3)
	errModal      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#FF6B6B")).Padding(1, 3)
)

const keyHelp = "tab/↓ siguiente · shift+tab/↑ anterior · ←/→ elegir · enter confirmar · espacio marcar · supr quitar · ctrl+c salir"

// picker is a single-choice selector cycled with the arrow keys. label,
// when set, maps an option to the text shown for it.
type picker struct {
	options []string
	cursor  int
	label   func(string) string
}

func newPicker(options ...string) picker {
	return picker{options: options}
}

// setOptions replaces the options, keeping the cursor on keep when present.
func (p *picker) setOptions(options []string, keep string) {
	p.options = options
	p.cursor = 0
	if i := slices.Index(options, keep); i >= 0 {
		p.cursor = i
	}
}

func (p *picker) move(delta int) {
	n := len(p.options)
	if n == 0 {
		return
	}
	p.cursor = ((p.cursor+delta)%n + n) % n
}

func (p picker) value() string {
	if p.cursor < 0 || p.cursor >= len(p.options) {
		return ""
	}
	return p.options[p.cursor]
}

func (p picker) view(disabled bool, placeholder string) string {
	if disabled || len(p.options) == 0 {
		return disabledStyle.Render(placeholder)
	}
	shown := p.value()
	if p.label != nil {
		shown = p.label(shown)
	}
	return valueStyle.Render(fmt.Sprintf("‹ %s ›", shown)) +
		disabledStyle.Render(fmt.Sprintf("  %d/%d", p.cursor+1, len(p.options)))
}

// modal is a blocking success or failure message.
type modal struct {
	title string
	text  string
	ok    bool
}

func (m modal) view() string {
	style := errModal
	if m.ok {
		style = okModal
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render(m.title),
		m.text,
		"",
		disabledStyle.Render("enter para continuar"),
	))
}

// errorText returns the message shown in a failure modal for err.
func errorText(err error) string {
	var (
		apiErr    *client.APIError
		selErr    *selection.Error
		fieldErr  *types.FieldError
		validErrs validator.ValidationErrors
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.As(err, &selErr):
		return selection.Notice(err)
	case errors.Is(err, types.ErrFutureDate):
		return types.ErrFutureDate.Error()
	case errors.Is(err, types.ErrPeriodOrder):
		return types.ErrPeriodOrder.Error()
	case errors.As(err, &fieldErr):
		return fmt.Sprintf("El campo %s %s.", fieldErr.Field, fieldErr.Message)
	case errors.As(err, &validErrs) && len(validErrs) > 0:
		fe := validErrs[0]
		if fe.Tag() == "required" {
			return fmt.Sprintf("Complete el campo %s.", strings.ToLower(fe.Field()))
		}
		return fmt.Sprintf("El campo %s no es válido.", strings.ToLower(fe.Field()))
	}
	return err.Error()
}

// catalogMsg carries the outcome of a catalog fetch back into Update.
type catalogMsg struct {
	event catalog.Event
}

// cascade binds the level, field and title selectors to a catalog state.
type cascade struct {
	state catalog.State
	api   catalog.Fetcher
	ctx   context.Context
	log   logrus.FieldLogger

	level picker
	field picker
	title picker
}

func newCascade(ctx context.Context, api catalog.Fetcher, log logrus.FieldLogger) (cascade, tea.Cmd) {
	state, req := catalog.Start()
	c := cascade{state: state, api: api, ctx: ctx, log: log}
	return c, c.fetch(req)
}

func (c *cascade) fetch(req *catalog.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	ctx, api, r := c.ctx, c.api, *req
	return func() tea.Msg {
		return catalogMsg{event: catalog.Resolve(ctx, api, r)}
	}
}

// apply reduces ev into the state and returns the follow-up fetch, if any.
func (c *cascade) apply(ev catalog.Event) tea.Cmd {
	if failed, ok := ev.(catalog.FetchFailed); ok {
		c.log.WithError(failed.Err).WithFields(logrus.Fields{
			"scope":      failed.Scope.String(),
			"generation": failed.Generation,
		}).Warn("catalog fetch failed")
	}
	var req *catalog.Request
	c.state, req = catalog.Reduce(c.state, ev)
	c.sync()
	return c.fetch(req)
}

// sync copies the option lists of the state into the pickers. A picker whose
// list is unchanged keeps its cursor, even if the user moved it without
// confirming.
func (c *cascade) sync() {
	sel := c.state.Selection
	syncPicker(&c.level, c.state.Levels, sel.Level)
	syncPicker(&c.field, c.state.Fields, sel.Field)
	names := make([]string, len(c.state.Titles))
	for i, t := range c.state.Titles {
		names[i] = t.Name
	}
	syncPicker(&c.title, names, sel.TitleName)
}

func syncPicker(p *picker, options []string, keep string) {
	if slices.Equal(p.options, options) {
		return
	}
	p.setOptions(options, keep)
}

func (c *cascade) selectLevel() tea.Cmd {
	return c.apply(catalog.LevelSelected{Level: c.level.value()})
}

func (c *cascade) selectField() tea.Cmd {
	if !c.state.FieldEnabled() {
		return nil
	}
	return c.apply(catalog.FieldSelected{Field: c.field.value()})
}

func (c *cascade) selectTitle() tea.Cmd {
	if !c.state.TitleEnabled() || len(c.state.Titles) == 0 {
		return nil
	}
	return c.apply(catalog.TitleSelected{TitleID: c.state.Titles[c.title.cursor].ID})
}

func (c cascade) levelView() string {
	if c.state.Loading(catalog.ScopeCatalog) {
		return disabledStyle.Render("cargando…")
	}
	return c.level.view(false, "sin niveles") + c.chosen(c.state.Selection.Level)
}

func (c cascade) fieldView() string {
	if c.state.Loading(catalog.ScopeFields) {
		return disabledStyle.Render("cargando…")
	}
	return c.field.view(!c.state.FieldEnabled(), "seleccione un nivel") + c.chosen(c.state.Selection.Field)
}

func (c cascade) titleView() string {
	if c.state.Loading(catalog.ScopeTitles) {
		return disabledStyle.Render("cargando…")
	}
	return c.title.view(!c.state.TitleEnabled(), "seleccione un campo") + c.chosen(c.state.Selection.TitleName)
}

func (c cascade) chosen(v string) string {
	if v == "" {
		return ""
	}
	return noticeStyle.Render("  ✓ " + v)
}

// form holds the focus ring and the generic inputs shared by both forms.
type form struct {
	order   []string
	focus   int
	labels  map[string]string
	texts   map[string]*textinput.Model
	pickers map[string]*picker
	toggles map[string]bool
	cursors map[string]int
}

func newForm() form {
	return form{
		labels:  map[string]string{},
		texts:   map[string]*textinput.Model{},
		pickers: map[string]*picker{},
		toggles: map[string]bool{},
		cursors: map[string]int{},
	}
}

func (f *form) addText(key, label, placeholder string, limit int) {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	f.texts[key] = &ti
	f.labels[key] = label
}

func (f *form) addPicker(key, label string, options ...string) {
	p := newPicker(options...)
	f.pickers[key] = &p
	f.labels[key] = label
}

func (f *form) addToggle(key, label string, on bool) {
	f.toggles[key] = on
	f.labels[key] = label
}

func (f form) value(key string) string {
	if ti, ok := f.texts[key]; ok {
		return strings.TrimSpace(ti.Value())
	}
	if p, ok := f.pickers[key]; ok {
		return p.value()
	}
	return ""
}

func (f *form) setText(key, v string) {
	if ti, ok := f.texts[key]; ok {
		ti.SetValue(v)
	}
}

func (f form) focused() string {
	if f.focus < 0 || f.focus >= len(f.order) {
		return ""
	}
	return f.order[f.focus]
}

// setOrder replaces the focus ring, keeping focus on the same key when it
// is still present.
func (f *form) setOrder(order []string) {
	current := f.focused()
	f.order = order
	f.focus = 0
	if i := slices.Index(order, current); i >= 0 {
		f.focus = i
	}
	f.syncFocus()
}

func (f *form) move(delta int) {
	if len(f.order) == 0 {
		return
	}
	f.focus = ((f.focus+delta)%len(f.order) + len(f.order)) % len(f.order)
	f.syncFocus()
}

func (f *form) focusKey(key string) {
	if i := slices.Index(f.order, key); i >= 0 {
		f.focus = i
		f.syncFocus()
	}
}

func (f *form) syncFocus() {
	current := f.focused()
	for key, ti := range f.texts {
		if key == current {
			ti.Focus()
		} else {
			ti.Blur()
		}
	}
}

// handleKey applies the generic behaviour of the focused input: text
// editing, picker cycling and toggling. It reports whether the key was used.
func (f *form) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := f.focused()
	if ti, ok := f.texts[key]; ok {
		switch msg.String() {
		case "up", "down", "tab", "shift+tab", "enter", "esc", "ctrl+c":
			return false, nil
		}
		updated, cmd := ti.Update(msg)
		*ti = updated
		return true, cmd
	}
	if p, ok := f.pickers[key]; ok {
		switch msg.String() {
		case "left", "h":
			p.move(-1)
			return true, nil
		case "right", "l":
			p.move(1)
			return true, nil
		}
		return false, nil
	}
	if on, ok := f.toggles[key]; ok {
		switch msg.String() {
		case " ", "enter":
			f.toggles[key] = !on
			return true, nil
		}
	}
	return false, nil
}

// moveCursor moves the cursor of list key within n entries.
func (f *form) moveCursor(key string, delta, n int) {
	if n == 0 {
		f.cursors[key] = 0
		return
	}
	f.cursors[key] = ((f.cursors[key]+delta)%n + n) % n
}

func (f form) label(key string) string {
	if f.focused() == key {
		return focusStyle.Render("› " + f.labels[key])
	}
	return labelStyle.Render("  " + f.labels[key])
}

func (f form) row(key, content string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, f.label(key), content)
}

func (f form) textRow(key string) string {
	return f.row(key, f.texts[key].View())
}

func (f form) pickerRow(key string) string {
	return f.row(key, f.pickers[key].view(false, "sin opciones"))
}

func (f form) toggleRow(key string) string {
	mark := "[ ]"
	if f.toggles[key] {
		mark = "[x]"
	}
	return f.row(key, valueStyle.Render(mark))
}

func (f form) button(key, text string) string {
	style := buttonStyle
	if f.focused() == key {
		style = buttonFocus
	}
	return style.Render(text)
}

// listRow renders the entries of a selection list with the cursor marked
// when the list has focus.
func (f form) listRow(key string, entries []selection.Entry) string {
	if len(entries) == 0 {
		return f.row(key, disabledStyle.Render("(vacío)"))
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		line := e.Label
		if p := e.Metadata["prioridad"]; p != "" {
			line += " · prioridad " + p
		}
		if o, w := e.Metadata["niveloral"], e.Metadata["nivelescrito"]; o != "" {
			line += fmt.Sprintf(" · oral %s · escrito %s", selection.LanguageLevelLabel(o), selection.LanguageLevelLabel(w))
		}
		if f.focused() == key && f.cursors[key] == i {
			lines[i] = focusStyle.UnsetWidth().Render("▸ " + line)
		} else {
			lines[i] = valueStyle.Render("  " + line)
		}
	}
	return f.row(key, strings.Join(lines, "\n"))
}
