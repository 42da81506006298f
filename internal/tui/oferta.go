package tui

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/proajob/proajob/internal/catalog"
	"github.com/proajob/proajob/internal/selection"
	"github.com/proajob/proajob/internal/types"
)

// OfertaAPI is the server surface used by the offer form. *client.Client
// implements it.
type OfertaAPI interface {
	catalog.Fetcher
	LoadReferences(ctx context.Context) (*types.References, error)
	CreateOferta(ctx context.Context, req *types.CreateOfertaRequest) (int, error)
}

// Focus keys of the offer form.
const (
	ofCargo          = "cargo"
	ofArea           = "area"
	ofExperiencia    = "experiencia"
	ofObjetivo       = "objetivo"
	ofSueldo         = "sueldo"
	ofFunciones      = "funciones"
	ofFechaMax       = "fecha_max"
	ofCarga          = "carga"
	ofModalidad      = "modalidad"
	ofDetalles       = "detalles"
	ofCorreo         = "correo"
	ofNumero         = "numero"
	ofMostrarSueldo  = "mostrar_sueldo"
	ofMostrarEmpresa = "mostrar_empresa"
	ofRequiereTitulo = "requiere_titulo"
	ofNivel          = "nivel"
	ofCampo          = "campo"
	ofTitulo         = "titulo"
	ofAddTitulo      = "add_titulo"
	ofTitulos        = "titulos"
	ofCriterio       = "criterio"
	ofValor          = "valor"
	ofValorOpcion    = "valor_opcion"
	ofPrioridad      = "prioridad"
	ofAddCriterio    = "add_criterio"
	ofCriterios      = "criterios"
	ofSubmit         = "submit"
)

var priorityNames = []string{"", selection.PriorityHigh.String(), selection.PriorityMedium.String(), selection.PriorityLow.String()}

type referencesMsg struct {
	refs *types.References
	err  error
}

type ofertaSubmittedMsg struct {
	id  int
	req *types.CreateOfertaRequest
	err error
}

// OfertaForm publishes a job offer: general data, the degree titles it
// requires and the criteria applicants are ranked by.
type OfertaForm struct {
	ctx context.Context
	api OfertaAPI
	log logrus.FieldLogger

	form      form
	cascade   cascade
	initCmd   tea.Cmd
	refs      *types.References
	titles    selection.List[selection.Title]
	criterios selection.List[selection.Criterion]

	notice     string
	modal      *modal
	submitting bool

	// OfertaID and Submitted are set once the offer is published.
	OfertaID  int
	Submitted *types.CreateOfertaRequest
	quitting  bool
}

// NewOfertaForm builds the form. Nothing is fetched until Init runs.
func NewOfertaForm(ctx context.Context, api OfertaAPI, log logrus.FieldLogger) *OfertaForm {
	f := &OfertaForm{ctx: ctx, api: api, log: log, form: newForm()}

	f.form.addText(ofCargo, "Cargo", "Desarrollador backend", 255)
	f.form.addPicker(ofArea, "Área")
	f.form.addText(ofExperiencia, "Experiencia (años)", "0", 2)
	f.form.addText(ofObjetivo, "Objetivo del cargo", "", 500)
	f.form.addText(ofSueldo, "Sueldo", "0", 10)
	f.form.addText(ofFunciones, "Funciones", "", 1000)
	f.form.addText(ofFechaMax, "Fecha máx. postulación", "AAAA-MM-DD", 10)
	f.form.addPicker(ofCarga, "Carga horaria", types.CargaTiempoCompleto, types.CargaTiempoParcial)
	f.form.addPicker(ofModalidad, "Modalidad", types.ModalidadPresencial, types.ModalidadVirtual)
	f.form.addText(ofDetalles, "Detalles adicionales", "", 1000)
	f.form.addText(ofCorreo, "Correo de contacto", "opcional", 255)
	f.form.addText(ofNumero, "Número de contacto", "opcional", 20)
	f.form.addToggle(ofMostrarSueldo, "Mostrar sueldo", false)
	f.form.addToggle(ofMostrarEmpresa, "Mostrar empresa", true)
	f.form.addToggle(ofRequiereTitulo, "Requiere título", true)
	f.form.labels[ofNivel] = "Nivel"
	f.form.labels[ofCampo] = "Campo amplio"
	f.form.labels[ofTitulo] = "Título"
	f.form.labels[ofTitulos] = "Títulos requeridos"
	f.form.addPicker(ofCriterio, "Criterio")
	f.form.addText(ofValor, "Valor", "opcional", 255)
	f.form.addPicker(ofValorOpcion, "Valor")
	f.form.addPicker(ofPrioridad, "Prioridad", priorityNames...)
	f.form.labels[ofCriterios] = "Criterios"

	f.cascade, f.initCmd = newCascade(ctx, api, log)
	f.refreshOrder()
	return f
}

// Init loads the reference lists and the catalog.
func (f *OfertaForm) Init() tea.Cmd {
	ctx, api := f.ctx, f.api
	load := func() tea.Msg {
		refs, err := api.LoadReferences(ctx)
		return referencesMsg{refs: refs, err: err}
	}
	return tea.Batch(load, f.initCmd)
}

// Update implements tea.Model.
func (f *OfertaForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case catalogMsg:
		return f, f.cascade.apply(msg.event)

	case referencesMsg:
		if msg.err != nil {
			f.log.WithError(msg.err).Warn("failed to load references")
			f.modal = &modal{title: "Oops...", text: "No se pudieron cargar las áreas y criterios: " + msg.err.Error()}
			return f, nil
		}
		f.setReferences(msg.refs)
		return f, nil

	case ofertaSubmittedMsg:
		f.submitting = false
		if msg.err != nil {
			f.log.WithError(msg.err).Warn("failed to publish offer")
			f.modal = &modal{title: "Oops...", text: errorText(msg.err)}
			return f, nil
		}
		f.OfertaID = msg.id
		f.Submitted = msg.req
		f.modal = &modal{title: "¡Publicada!", text: "La oferta se encuentra publicada", ok: true}
		return f, nil

	case tea.KeyMsg:
		return f.handleKey(msg)
	}
	return f, nil
}

func (f *OfertaForm) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		f.quitting = true
		return f, tea.Quit
	}
	if f.modal != nil {
		switch msg.String() {
		case "enter", "esc", " ":
			done := f.modal.ok
			f.modal = nil
			if done {
				f.quitting = true
				return f, tea.Quit
			}
		}
		return f, nil
	}

	key := f.form.focused()
	criterioBefore := f.form.pickers[ofCriterio].cursor
	used, cmd := f.form.handleKey(msg)
	if used {
		switch {
		case key == ofRequiereTitulo && !f.form.toggles[ofRequiereTitulo]:
			f.titles = f.titles.Clear()
		case key == ofCriterio && f.form.pickers[ofCriterio].cursor != criterioBefore:
			f.syncValueOptions()
		}
		f.refreshOrder()
		return f, cmd
	}

	switch msg.String() {
	case "tab", "down":
		f.form.move(1)
	case "shift+tab", "up":
		f.form.move(-1)
	case "esc":
		f.notice = ""
		if f.cascade.state.Notice != "" {
			return f, f.cascade.apply(catalog.NoticeDismissed{})
		}
	case "left", "right", "h", "l":
		delta := 1
		if s := msg.String(); s == "left" || s == "h" {
			delta = -1
		}
		f.moveSelector(key, delta)
	case "delete", "backspace", "x":
		f.removeAtCursor(key)
	case "enter":
		return f, f.activate(key)
	}
	return f, nil
}

func (f *OfertaForm) moveSelector(key string, delta int) {
	switch key {
	case ofNivel:
		f.cascade.level.move(delta)
	case ofCampo:
		f.cascade.field.move(delta)
	case ofTitulo:
		f.cascade.title.move(delta)
	case ofTitulos:
		f.form.moveCursor(key, delta, f.titles.Len())
	case ofCriterios:
		f.form.moveCursor(key, delta, f.criterios.Len())
	}
}

func (f *OfertaForm) activate(key string) tea.Cmd {
	switch key {
	case ofNivel:
		return f.cascade.selectLevel()
	case ofCampo:
		return f.cascade.selectField()
	case ofTitulo:
		cmd := f.cascade.selectTitle()
		f.form.focusKey(ofAddTitulo)
		return cmd
	case ofAddTitulo:
		f.addTitle()
	case ofAddCriterio:
		f.addCriterio()
	case ofSubmit:
		return f.submit()
	default:
		f.form.move(1)
	}
	return nil
}

func (f *OfertaForm) addTitle() {
	t, ok := f.cascade.state.Selected()
	if !ok {
		f.notice = "Seleccione un título antes de agregarlo."
		return
	}
	titles, err := f.titles.Add(selection.Title{ID: t.ID, Name: t.Name})
	if err != nil {
		f.modal = &modal{title: "Oops...", text: selection.Notice(err)}
		return
	}
	f.titles = titles
	f.notice = ""
}

func (f *OfertaForm) currentCriterio() (types.Criterio, bool) {
	if f.refs == nil || len(f.refs.Criterios) == 0 {
		return types.Criterio{}, false
	}
	return f.refs.Criterios[f.form.pickers[ofCriterio].cursor], true
}

func (f *OfertaForm) addCriterio() {
	c, ok := f.currentCriterio()
	priority := selection.Priority(f.form.pickers[ofPrioridad].cursor)
	if !ok {
		f.modal = &modal{title: "Oops...", text: "Seleccione un criterio y complete la prioridad antes de agregarlo."}
		return
	}

	value := f.form.value(ofValor)
	if len(c.Options) > 0 {
		value = f.form.value(ofValorOpcion)
	}
	criterios, err := f.criterios.Add(c.Criterion(value, priority))
	if err != nil {
		f.modal = &modal{title: "Oops...", text: selection.Notice(err)}
		return
	}
	f.criterios = criterios
	f.form.setText(ofValor, "")
	f.form.pickers[ofPrioridad].cursor = 0
	f.notice = ""
}

func (f *OfertaForm) removeAtCursor(key string) {
	switch key {
	case ofTitulos:
		items := f.titles.Payload()
		if i := f.form.cursors[key]; i < len(items) {
			f.titles = f.titles.Remove(items[i].ID)
			f.form.moveCursor(key, 0, f.titles.Len())
		}
	case ofCriterios:
		items := f.criterios.Payload()
		if i := f.form.cursors[key]; i < len(items) {
			f.criterios = f.criterios.Remove(items[i].ID)
			f.form.moveCursor(key, 0, f.criterios.Len())
		}
	}
}

func (f *OfertaForm) setReferences(refs *types.References) {
	f.refs = refs
	areas := make([]string, len(refs.Areas))
	for i, a := range refs.Areas {
		areas[i] = a.Name
	}
	f.form.pickers[ofArea].setOptions(areas, f.form.value(ofArea))

	criterios := make([]string, len(refs.Criterios))
	for i, c := range refs.Criterios {
		criterios[i] = c.Name
	}
	f.form.pickers[ofCriterio].setOptions(criterios, "")
	f.syncValueOptions()
	f.refreshOrder()
}

func (f *OfertaForm) syncValueOptions() {
	c, _ := f.currentCriterio()
	f.form.pickers[ofValorOpcion].setOptions(c.Options, "")
	f.form.setText(ofValor, "")
}

func (f *OfertaForm) refreshOrder() {
	order := []string{
		ofCargo, ofArea, ofExperiencia, ofObjetivo, ofSueldo, ofFunciones, ofFechaMax,
		ofCarga, ofModalidad, ofDetalles, ofCorreo, ofNumero, ofMostrarSueldo, ofMostrarEmpresa,
		ofRequiereTitulo,
	}
	if f.form.toggles[ofRequiereTitulo] {
		order = append(order, ofNivel, ofCampo, ofTitulo, ofAddTitulo, ofTitulos)
	}
	order = append(order, ofCriterio)
	if c, ok := f.currentCriterio(); ok && len(c.Options) > 0 {
		order = append(order, ofValorOpcion)
	} else {
		order = append(order, ofValor)
	}
	order = append(order, ofPrioridad, ofAddCriterio, ofCriterios, ofSubmit)
	f.form.setOrder(order)
}

// Request assembles the request from the current inputs.
func (f *OfertaForm) Request() (*types.CreateOfertaRequest, error) {
	experiencia := 0
	if v := f.form.value(ofExperiencia); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &types.FieldError{Field: "experiencia", Message: "debe ser un número entero"}
		}
		experiencia = n
	}
	sueldo := 0.0
	if v := f.form.value(ofSueldo); v != "" {
		n, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
		if err != nil {
			return nil, &types.FieldError{Field: "sueldo", Message: "debe ser un número"}
		}
		sueldo = n
	}
	areaID := 0
	if f.refs != nil && len(f.refs.Areas) > 0 {
		areaID = f.refs.Areas[f.form.pickers[ofArea].cursor].ID
	}

	req := &types.CreateOfertaRequest{
		Cargo:               f.form.value(ofCargo),
		AreaID:              areaID,
		Experiencia:         experiencia,
		ObjetivoCargo:       f.form.value(ofObjetivo),
		Sueldo:              sueldo,
		Funciones:           f.form.value(ofFunciones),
		FechaMaxPos:         f.form.value(ofFechaMax),
		CargaHoraria:        f.form.value(ofCarga),
		Modalidad:           f.form.value(ofModalidad),
		DetallesAdicionales: f.form.value(ofDetalles),
		CorreoContacto:      f.form.value(ofCorreo),
		NumeroContacto:      f.form.value(ofNumero),
		MostrarSueldo:       f.form.toggles[ofMostrarSueldo],
		MostrarEmpresa:      f.form.toggles[ofMostrarEmpresa],
		Titulos:             f.titles.Payload(),
		Criterios:           f.criterios.Payload(),
	}
	return req, req.Validate()
}

func (f *OfertaForm) submit() tea.Cmd {
	if f.submitting {
		return nil
	}
	req, err := f.Request()
	if err != nil {
		f.modal = &modal{title: "Oops...", text: errorText(err)}
		return nil
	}
	f.submitting = true
	ctx, api := f.ctx, f.api
	return func() tea.Msg {
		id, err := api.CreateOferta(ctx, req)
		return ofertaSubmittedMsg{id: id, req: req, err: err}
	}
}

// View implements tea.Model.
func (f *OfertaForm) View() string {
	if f.quitting {
		return ""
	}
	if f.modal != nil {
		return f.modal.view()
	}

	fm := f.form
	rows := []string{
		titleStyle.Render("Publicar oferta"),
		fm.textRow(ofCargo),
		fm.pickerRow(ofArea),
		fm.textRow(ofExperiencia),
		fm.textRow(ofObjetivo),
		fm.textRow(ofSueldo),
		fm.textRow(ofFunciones),
		fm.textRow(ofFechaMax),
		fm.pickerRow(ofCarga),
		fm.pickerRow(ofModalidad),
		fm.textRow(ofDetalles),
		fm.textRow(ofCorreo),
		fm.textRow(ofNumero),
		fm.toggleRow(ofMostrarSueldo),
		fm.toggleRow(ofMostrarEmpresa),
		sectionStyle.Render("Títulos"),
		fm.toggleRow(ofRequiereTitulo),
	}
	if fm.toggles[ofRequiereTitulo] {
		rows = append(rows,
			fm.row(ofNivel, f.cascade.levelView()),
			fm.row(ofCampo, f.cascade.fieldView()),
			fm.row(ofTitulo, f.cascade.titleView()),
			"  "+fm.button(ofAddTitulo, "Agregar título"),
			fm.listRow(ofTitulos, f.titles.Entries()),
		)
	}
	rows = append(rows, sectionStyle.Render("Criterios de evaluación"), fm.pickerRow(ofCriterio))
	if c, ok := f.currentCriterio(); ok && len(c.Options) > 0 {
		rows = append(rows, fm.pickerRow(ofValorOpcion))
	} else {
		rows = append(rows, fm.textRow(ofValor))
	}
	rows = append(rows,
		fm.row(ofPrioridad, fm.pickers[ofPrioridad].view(false, "")+priorityHint(fm.pickers[ofPrioridad].cursor)),
		"  "+fm.button(ofAddCriterio, "Agregar criterio"),
		fm.listRow(ofCriterios, f.criterios.Entries()),
		"",
		fm.button(ofSubmit, submitLabel(f.submitting, "Publicar")),
	)

	for _, n := range []string{f.cascade.state.Notice, f.notice} {
		if n != "" {
			rows = append(rows, noticeStyle.Render("⚠ "+n))
		}
	}
	rows = append(rows, hintStyle.Render(keyHelp))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func priorityHint(cursor int) string {
	if cursor == 0 {
		return disabledStyle.Render("  (sin prioridad)")
	}
	return ""
}

func submitLabel(busy bool, label string) string {
	if busy {
		return "Enviando…"
	}
	return label
}
