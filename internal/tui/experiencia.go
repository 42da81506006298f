package tui

import (
	"context"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/proajob/proajob/internal/selection"
	"github.com/proajob/proajob/internal/types"
)

// ExperienciaAPI is the server surface used by the experience manager.
// *client.Client implements it.
type ExperienciaAPI interface {
	Areas(ctx context.Context) ([]types.Area, error)
	Perfil(ctx context.Context, userID int) (*types.Perfil, error)
	CreateExperiencia(ctx context.Context, req *types.CreateExperienciaRequest) (int, error)
	UpdateExperiencia(ctx context.Context, id int, req *types.ExperienciaRequest) error
}

const (
	exEmpresa     = "empresa"
	exPuesto      = "puesto"
	exArea        = "area"
	exFechaIni    = "fechaini"
	exFechaFin    = "fechafin"
	exDescripcion = "descripcion"
	exReferencia  = "referencia"
	exContacto    = "contacto"
	exAgregar     = "agregar"
	exLista       = "experiencias"
	exGuardar     = "guardar"
)

var experienciaOrder = []string{
	exEmpresa, exPuesto, exArea, exFechaIni, exFechaFin, exDescripcion, exReferencia, exContacto,
	exAgregar, exLista, exGuardar,
}

type areasMsg struct {
	areas []types.Area
	err   error
}

type perfilMsg struct {
	perfil *types.Perfil
	err    error
}

// experienciasSavedMsg reports which pending entries reached the server,
// in order, and the error that stopped the rest.
type experienciasSavedMsg struct {
	created []int
	updated []int
	err     error
}

// ExperienciaForm lists the work experience of the logged-in applicant and
// lets them add new entries or edit stored ones. New entries get negative
// draft ids until they are saved; edits to stored entries are kept locally
// until then.
type ExperienciaForm struct {
	ctx    context.Context
	api    ExperienciaAPI
	log    logrus.FieldLogger
	userID int
	now    func() time.Time

	form      form
	areas     []types.Area
	exps      selection.List[selection.Experience]
	dirty     map[int]bool
	nextDraft int
	editing   int

	postulanteID int
	notice       string
	modal        *modal
	saving       bool

	// Created and Updated count the entries stored during the session.
	Created  int
	Updated  int
	quitting bool
}

// NewExperienciaForm builds the manager for the applicant owned by userID.
func NewExperienciaForm(ctx context.Context, api ExperienciaAPI, userID int, log logrus.FieldLogger) *ExperienciaForm {
	f := &ExperienciaForm{
		ctx: ctx, api: api, log: log, userID: userID, now: time.Now,
		form: newForm(), dirty: map[int]bool{}, nextDraft: -1,
	}
	f.form.addText(exEmpresa, "Nombre de la empresa", "", 100)
	f.form.addText(exPuesto, "Puesto", "", 100)
	f.form.addPicker(exArea, "Área del puesto")
	f.form.addText(exFechaIni, "Fecha de inicio", "AAAA-MM-DD", 10)
	f.form.addText(exFechaFin, "Fecha de fin", "AAAA-MM-DD", 10)
	f.form.addText(exDescripcion, "Descripción", "", 1000)
	f.form.addText(exReferencia, "Referencia", "", 255)
	f.form.addText(exContacto, "Contacto", "", 255)
	f.form.labels[exLista] = "Experiencias"
	f.form.setOrder(experienciaOrder)
	return f
}

// Init loads the areas and the applicant profile.
func (f *ExperienciaForm) Init() tea.Cmd {
	ctx, api := f.ctx, f.api
	areas := func() tea.Msg {
		list, err := api.Areas(ctx)
		return areasMsg{areas: list, err: err}
	}
	return tea.Batch(areas, f.loadPerfil())
}

func (f *ExperienciaForm) loadPerfil() tea.Cmd {
	ctx, api, userID := f.ctx, f.api, f.userID
	return func() tea.Msg {
		p, err := api.Perfil(ctx, userID)
		return perfilMsg{perfil: p, err: err}
	}
}

// Update implements tea.Model.
func (f *ExperienciaForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case areasMsg:
		if msg.err != nil {
			f.log.WithError(msg.err).Warn("failed to load areas")
			f.modal = &modal{title: "Oops...", text: "No se pudieron cargar las áreas: " + errorText(msg.err)}
			return f, nil
		}
		f.areas = msg.areas
		names := make([]string, len(f.areas))
		for i, a := range f.areas {
			names[i] = a.Name
		}
		f.form.pickers[exArea].setOptions(names, f.form.value(exArea))
		return f, nil

	case perfilMsg:
		if msg.err != nil {
			f.log.WithError(msg.err).WithField("user_id", f.userID).Warn("failed to load profile")
			f.modal = &modal{title: "Oops...", text: "No se pudo cargar el perfil: " + errorText(msg.err)}
			return f, nil
		}
		f.postulanteID = msg.perfil.PostulanteID
		f.merge(msg.perfil.Experiencias)
		return f, nil

	case experienciasSavedMsg:
		return f, f.saved(msg)

	case tea.KeyMsg:
		return f.handleKey(msg)
	}
	return f, nil
}

// merge rebuilds the list from the stored entries, keeping local edits of
// stored entries and every unsaved draft.
func (f *ExperienciaForm) merge(stored []selection.Experience) {
	merged := make([]selection.Experience, 0, len(stored)+f.exps.Len())
	for _, e := range stored {
		if f.dirty[e.ID] {
			if local, ok := f.exps.Get(e.ID); ok {
				e = local
			}
		}
		merged = append(merged, e)
	}
	for _, e := range f.exps.Payload() {
		if e.Draft() {
			merged = append(merged, e)
		}
	}

	var next selection.List[selection.Experience]
	for _, e := range merged {
		var err error
		if next, err = next.Add(e); err != nil {
			f.log.WithError(err).WithField("id", e.ID).Warn("skipping experience")
		}
	}
	f.exps = next
	f.form.moveCursor(exLista, 0, f.exps.Len())
}

func (f *ExperienciaForm) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		f.quitting = true
		return f, tea.Quit
	}
	if f.modal != nil {
		switch msg.String() {
		case "enter", "esc", " ":
			f.modal = nil
		}
		return f, nil
	}

	key := f.form.focused()
	if used, cmd := f.form.handleKey(msg); used {
		return f, cmd
	}

	switch msg.String() {
	case "tab", "down":
		f.form.move(1)
	case "shift+tab", "up":
		f.form.move(-1)
	case "esc":
		f.notice = ""
		if f.editing != 0 {
			f.resetEditor()
		}
	case "left", "right", "h", "l":
		if key == exLista {
			delta := 1
			if s := msg.String(); s == "left" || s == "h" {
				delta = -1
			}
			f.form.moveCursor(key, delta, f.exps.Len())
		}
	case "delete", "backspace", "x":
		if key == exLista {
			f.removeAtCursor()
		}
	case "enter":
		switch key {
		case exLista:
			f.editAtCursor()
		case exAgregar:
			f.commit()
		case exGuardar:
			return f, f.save()
		default:
			f.form.move(1)
		}
	}
	return f, nil
}

func (f *ExperienciaForm) atCursor() (selection.Experience, bool) {
	items := f.exps.Payload()
	i := f.form.cursors[exLista]
	if i < 0 || i >= len(items) {
		return selection.Experience{}, false
	}
	return items[i], true
}

// editAtCursor loads the entry under the list cursor into the editor.
func (f *ExperienciaForm) editAtCursor() {
	e, ok := f.atCursor()
	if !ok {
		return
	}
	f.editing = e.ID
	f.form.setText(exEmpresa, e.Company)
	f.form.setText(exPuesto, e.Position)
	// Stored entries may name an area that is no longer in the catalog.
	area := f.form.pickers[exArea]
	options := area.options
	if e.Area != "" && !slices.Contains(options, e.Area) {
		options = append(slices.Clone(options), e.Area)
	}
	area.setOptions(options, e.Area)
	f.form.setText(exFechaIni, e.Start)
	f.form.setText(exFechaFin, e.End)
	f.form.setText(exDescripcion, e.Description)
	f.form.setText(exReferencia, e.Reference)
	f.form.setText(exContacto, e.Contact)
	f.form.focusKey(exEmpresa)
	f.notice = ""
}

func (f *ExperienciaForm) removeAtCursor() {
	e, ok := f.atCursor()
	if !ok {
		return
	}
	if !e.Draft() {
		f.notice = "Solo se pueden quitar experiencias sin guardar."
		return
	}
	f.exps = f.exps.Remove(e.ID)
	if f.editing == e.ID {
		f.resetEditor()
	}
	f.form.moveCursor(exLista, 0, f.exps.Len())
}

func (f *ExperienciaForm) editorRequest() *types.ExperienciaRequest {
	return &types.ExperienciaRequest{
		Empresa:     f.form.value(exEmpresa),
		Puesto:      f.form.value(exPuesto),
		Area:        f.form.value(exArea),
		FechaIni:    f.form.value(exFechaIni),
		FechaFin:    f.form.value(exFechaFin),
		Descripcion: f.form.value(exDescripcion),
		Referencia:  f.form.value(exReferencia),
		Contacto:    f.form.value(exContacto),
	}
}

// commit adds the editor contents as a new draft, or replaces the entry
// being edited.
func (f *ExperienciaForm) commit() {
	req := f.editorRequest()
	if err := req.ValidateAt(f.now()); err != nil {
		f.modal = &modal{title: "Oops...", text: errorText(err)}
		return
	}

	var (
		exps selection.List[selection.Experience]
		err  error
	)
	if f.editing == 0 {
		exps, err = f.exps.Add(req.Experience(f.nextDraft))
		if err == nil {
			f.nextDraft--
		}
	} else {
		exps, err = f.exps.Replace(req.Experience(f.editing))
		if err == nil && f.editing > 0 {
			f.dirty[f.editing] = true
		}
	}
	if err != nil {
		f.modal = &modal{title: "Oops...", text: selection.Notice(err)}
		return
	}
	f.exps = exps
	f.resetEditor()
}

func (f *ExperienciaForm) resetEditor() {
	f.editing = 0
	for _, key := range []string{exEmpresa, exPuesto, exFechaIni, exFechaFin, exDescripcion, exReferencia, exContacto} {
		f.form.setText(key, "")
	}
	f.form.pickers[exArea].cursor = 0
}

// pending returns the drafts and the edited stored entries, in list order.
func (f *ExperienciaForm) pending() []selection.Experience {
	var out []selection.Experience
	for _, e := range f.exps.Payload() {
		if e.Draft() || f.dirty[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

func (f *ExperienciaForm) save() tea.Cmd {
	if f.saving {
		return nil
	}
	if f.postulanteID == 0 {
		f.modal = &modal{title: "Oops...", text: "No se encontró el postulante."}
		return nil
	}
	pending := f.pending()
	if len(pending) == 0 {
		f.notice = "No hay cambios para guardar."
		return nil
	}

	f.saving = true
	ctx, api, postulanteID := f.ctx, f.api, f.postulanteID
	return func() tea.Msg {
		var res experienciasSavedMsg
		for _, e := range pending {
			req := types.NewExperienciaRequest(e)
			if e.Draft() {
				create := &types.CreateExperienciaRequest{PostulanteID: postulanteID, ExperienciaRequest: *req}
				if _, err := api.CreateExperiencia(ctx, create); err != nil {
					res.err = err
					return res
				}
				res.created = append(res.created, e.ID)
				continue
			}
			if err := api.UpdateExperiencia(ctx, e.ID, req); err != nil {
				res.err = err
				return res
			}
			res.updated = append(res.updated, e.ID)
		}
		return res
	}
}

// saved drops the stored drafts and edits from the local state and reloads
// the profile, so the list shows the server ids.
func (f *ExperienciaForm) saved(msg experienciasSavedMsg) tea.Cmd {
	f.saving = false
	for _, id := range msg.created {
		f.exps = f.exps.Remove(id)
		if f.editing == id {
			f.resetEditor()
		}
	}
	for _, id := range msg.updated {
		delete(f.dirty, id)
	}
	f.Created += len(msg.created)
	f.Updated += len(msg.updated)

	if msg.err != nil {
		f.log.WithError(msg.err).WithFields(logrus.Fields{
			"created": len(msg.created),
			"updated": len(msg.updated),
		}).Warn("failed to save experience")
		f.modal = &modal{title: "Oops...", text: errorText(msg.err)}
	} else {
		f.modal = &modal{title: "¡Guardado!", text: "Tu experiencia profesional fue actualizada", ok: true}
	}
	if len(msg.created)+len(msg.updated) == 0 {
		return nil
	}
	return f.loadPerfil()
}

// View implements tea.Model.
func (f *ExperienciaForm) View() string {
	if f.quitting {
		return ""
	}
	if f.modal != nil {
		return f.modal.view()
	}

	fm := f.form
	heading := "Agregar experiencia"
	button := "Agregar"
	if f.editing != 0 {
		heading = "Editar experiencia"
		button = "Actualizar"
	}

	entries := f.exps.Entries()
	for i, e := range entries {
		switch {
		case e.ID < 0:
			entries[i].Label += " (sin guardar)"
		case f.dirty[e.ID]:
			entries[i].Label += " (modificada)"
		}
		entries[i].Label += " · " + e.Metadata["fechaini"] + " a " + e.Metadata["fechafin"]
	}

	rows := []string{
		titleStyle.Render("Experiencia profesional"),
		fm.listRow(exLista, entries),
		sectionStyle.Render(heading),
	}
	for _, key := range []string{exEmpresa, exPuesto} {
		rows = append(rows, fm.textRow(key))
	}
	rows = append(rows, fm.pickerRow(exArea))
	for _, key := range []string{exFechaIni, exFechaFin, exDescripcion, exReferencia, exContacto} {
		rows = append(rows, fm.textRow(key))
	}
	rows = append(rows,
		"  "+fm.button(exAgregar, button),
		"",
		fm.button(exGuardar, submitLabel(f.saving, "Guardar cambios")),
	)
	if f.notice != "" {
		rows = append(rows, noticeStyle.Render("⚠ "+f.notice))
	}
	rows = append(rows, hintStyle.Render(keyHelp+" · enter en la lista edita · esc cancela la edición"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
