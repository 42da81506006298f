package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/proajob/proajob/internal/catalog"
	"github.com/proajob/proajob/internal/selection"
	"github.com/proajob/proajob/internal/types"
)

// FormacionAPI is the server surface used by the formation form.
// *client.Client implements it.
type FormacionAPI interface {
	catalog.Fetcher
	LoadReferences(ctx context.Context) (*types.References, error)
	PostulanteID(ctx context.Context, userID int) (int, error)
	SubmitFormacion(ctx context.Context, req *types.FormacionRequest) (int, error)
}

const (
	fmNivel            = "nivel"
	fmCampo            = "campo"
	fmTitulo           = "titulo"
	fmInstitucion      = "institucion"
	fmEstado           = "estado"
	fmFechaIni         = "fechaini"
	fmFechaFin         = "fechafin"
	fmAcreditado       = "titulo_acreditado"
	fmIdioma           = "idioma"
	fmOral             = "niveloral"
	fmEscrito          = "nivelescrito"
	fmAddIdioma        = "add_idioma"
	fmIdiomas          = "idiomas"
	fmTieneExperiencia = "tiene_experiencia"
	fmEmpresa          = "empresa"
	fmPuesto           = "puesto"
	fmArea             = "area"
	fmExpFechaIni      = "exp_fechaini"
	fmExpFechaFin      = "exp_fechafin"
	fmDescripcion      = "descripcion"
	fmReferencia       = "referencia"
	fmContacto         = "contacto"
	fmSubmit           = "submit"
)

type postulanteMsg struct {
	id  int
	err error
}

type formacionSubmittedMsg struct {
	id  int
	req *types.FormacionRequest
	err error
}

// FormacionForm registers the academic formation of the logged-in applicant,
// the languages they speak and optionally one previous job.
type FormacionForm struct {
	ctx    context.Context
	api    FormacionAPI
	log    logrus.FieldLogger
	userID int
	now    func() time.Time

	form    form
	cascade cascade
	initCmd tea.Cmd
	idiomas []types.Idioma
	langs   selection.List[selection.Language]

	postulanteID int
	notice       string
	modal        *modal
	submitting   bool

	// FormacionID and Submitted are set once the formation is stored.
	FormacionID int
	Submitted   *types.FormacionRequest
	quitting    bool
}

// NewFormacionForm builds the form for the applicant owned by userID.
func NewFormacionForm(ctx context.Context, api FormacionAPI, userID int, log logrus.FieldLogger) *FormacionForm {
	f := &FormacionForm{ctx: ctx, api: api, log: log, userID: userID, now: time.Now, form: newForm()}

	f.form.labels[fmNivel] = "Nivel"
	f.form.labels[fmCampo] = "Campo amplio"
	f.form.labels[fmTitulo] = "Título"
	f.form.addText(fmInstitucion, "Institución", "Universidad Central", 255)
	f.form.addPicker(fmEstado, "Estado", types.EstadoCulminado, types.EstadoEnCurso)
	f.form.addText(fmFechaIni, "Fecha de inicio", "AAAA-MM-DD", 10)
	f.form.addText(fmFechaFin, "Fecha de fin", "AAAA-MM-DD", 10)
	f.form.addToggle(fmAcreditado, "Título acreditado", false)
	f.form.addPicker(fmIdioma, "Idioma")
	f.form.addPicker(fmOral, "Nivel oral", selection.LanguageLevels...)
	f.form.addPicker(fmEscrito, "Nivel escrito", selection.LanguageLevels...)
	f.form.pickers[fmOral].label = selection.LanguageLevelLabel
	f.form.pickers[fmEscrito].label = selection.LanguageLevelLabel
	f.form.labels[fmIdiomas] = "Idiomas"
	f.form.addToggle(fmTieneExperiencia, "Tiene experiencia", false)
	f.form.addText(fmEmpresa, "Empresa", "", 255)
	f.form.addText(fmPuesto, "Puesto", "", 255)
	f.form.addText(fmArea, "Área", "", 255)
	f.form.addText(fmExpFechaIni, "Inicio", "AAAA-MM-DD", 10)
	f.form.addText(fmExpFechaFin, "Fin", "AAAA-MM-DD", 10)
	f.form.addText(fmDescripcion, "Descripción", "", 1000)
	f.form.addText(fmReferencia, "Referencia", "", 255)
	f.form.addText(fmContacto, "Contacto", "", 255)

	f.cascade, f.initCmd = newCascade(ctx, api, log)
	f.refreshOrder()
	return f
}

// Init resolves the applicant record and loads the catalogs.
func (f *FormacionForm) Init() tea.Cmd {
	ctx, api, userID := f.ctx, f.api, f.userID
	resolve := func() tea.Msg {
		id, err := api.PostulanteID(ctx, userID)
		return postulanteMsg{id: id, err: err}
	}
	load := func() tea.Msg {
		refs, err := api.LoadReferences(ctx)
		return referencesMsg{refs: refs, err: err}
	}
	return tea.Batch(resolve, load, f.initCmd)
}

// Update implements tea.Model.
func (f *FormacionForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case catalogMsg:
		return f, f.cascade.apply(msg.event)

	case postulanteMsg:
		if msg.err != nil {
			f.log.WithError(msg.err).WithField("user_id", f.userID).Warn("failed to resolve applicant")
			f.modal = &modal{title: "Oops...", text: "No se encontró el postulante: " + errorText(msg.err)}
			return f, nil
		}
		f.postulanteID = msg.id
		return f, nil

	case referencesMsg:
		if msg.err != nil {
			f.log.WithError(msg.err).Warn("failed to load references")
			f.modal = &modal{title: "Oops...", text: "No se pudieron cargar los idiomas: " + errorText(msg.err)}
			return f, nil
		}
		f.idiomas = msg.refs.Idiomas
		names := make([]string, len(f.idiomas))
		for i, l := range f.idiomas {
			names[i] = l.Name
		}
		f.form.pickers[fmIdioma].setOptions(names, "")
		return f, nil

	case formacionSubmittedMsg:
		f.submitting = false
		if msg.err != nil {
			f.log.WithError(msg.err).Warn("failed to store formation")
			f.modal = &modal{title: "Oops...", text: errorText(msg.err)}
			return f, nil
		}
		f.FormacionID = msg.id
		f.Submitted = msg.req
		f.modal = &modal{title: "¡Registro completo!", text: "Bienvenido a proajob", ok: true}
		return f, nil

	case tea.KeyMsg:
		return f.handleKey(msg)
	}
	return f, nil
}

func (f *FormacionForm) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
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
	if used, cmd := f.form.handleKey(msg); used {
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
		switch key {
		case fmNivel:
			f.cascade.level.move(delta)
		case fmCampo:
			f.cascade.field.move(delta)
		case fmTitulo:
			f.cascade.title.move(delta)
		case fmIdiomas:
			f.form.moveCursor(key, delta, f.langs.Len())
		}
	case "delete", "backspace", "x":
		if key == fmIdiomas {
			items := f.langs.Payload()
			if i := f.form.cursors[key]; i < len(items) {
				f.langs = f.langs.Remove(items[i].ID)
				f.form.moveCursor(key, 0, f.langs.Len())
			}
		}
	case "enter":
		switch key {
		case fmNivel:
			return f, f.cascade.selectLevel()
		case fmCampo:
			return f, f.cascade.selectField()
		case fmTitulo:
			return f, f.cascade.selectTitle()
		case fmAddIdioma:
			f.addLanguage()
		case fmSubmit:
			return f, f.submit()
		default:
			f.form.move(1)
		}
	}
	return f, nil
}

func (f *FormacionForm) addLanguage() {
	if len(f.idiomas) == 0 {
		f.notice = "No hay idiomas disponibles."
		return
	}
	l := f.idiomas[f.form.pickers[fmIdioma].cursor]
	langs, err := f.langs.Add(selection.Language{
		ID:      l.ID,
		Name:    l.Name,
		Oral:    f.form.value(fmOral),
		Written: f.form.value(fmEscrito),
	})
	if err != nil {
		f.modal = &modal{title: "Oops...", text: selection.Notice(err)}
		return
	}
	f.langs = langs
	f.notice = ""
}

func (f *FormacionForm) refreshOrder() {
	order := []string{
		fmNivel, fmCampo, fmTitulo, fmInstitucion, fmEstado, fmFechaIni, fmFechaFin, fmAcreditado,
		fmIdioma, fmOral, fmEscrito, fmAddIdioma, fmIdiomas, fmTieneExperiencia,
	}
	if f.form.toggles[fmTieneExperiencia] {
		order = append(order, fmEmpresa, fmPuesto, fmArea, fmExpFechaIni, fmExpFechaFin, fmDescripcion, fmReferencia, fmContacto)
	}
	f.form.setOrder(append(order, fmSubmit))
}

// TitleName returns the name of the chosen degree title.
func (f *FormacionForm) TitleName() string {
	return f.cascade.state.Selection.TitleName
}

// Request assembles and validates the request from the current inputs.
func (f *FormacionForm) Request() (*types.FormacionRequest, error) {
	t, _ := f.cascade.state.Selected()
	req := &types.FormacionRequest{
		PostulanteID:     f.postulanteID,
		TituloID:         t.ID,
		Institucion:      f.form.value(fmInstitucion),
		Estado:           f.form.value(fmEstado),
		FechaIni:         f.form.value(fmFechaIni),
		FechaFin:         f.form.value(fmFechaFin),
		TituloAcreditado: f.form.toggles[fmAcreditado],
		Idiomas:          f.langs.Payload(),
	}
	if f.form.toggles[fmTieneExperiencia] {
		req.Experiencia = &selection.Experience{
			Company:     f.form.value(fmEmpresa),
			Position:    f.form.value(fmPuesto),
			Area:        f.form.value(fmArea),
			Start:       f.form.value(fmExpFechaIni),
			End:         f.form.value(fmExpFechaFin),
			Description: f.form.value(fmDescripcion),
			Reference:   f.form.value(fmReferencia),
			Contact:     f.form.value(fmContacto),
		}
	}
	return req, req.ValidateAt(f.now())
}

func (f *FormacionForm) submit() tea.Cmd {
	if f.submitting {
		return nil
	}
	if f.postulanteID == 0 {
		f.modal = &modal{title: "Oops...", text: "No se encontró el postulante."}
		return nil
	}
	if _, ok := f.cascade.state.Selected(); !ok {
		f.modal = &modal{title: "Oops...", text: "Seleccione un título."}
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
		id, err := api.SubmitFormacion(ctx, req)
		return formacionSubmittedMsg{id: id, req: req, err: err}
	}
}

// View implements tea.Model.
func (f *FormacionForm) View() string {
	if f.quitting {
		return ""
	}
	if f.modal != nil {
		return f.modal.view()
	}

	fm := f.form
	rows := []string{
		titleStyle.Render("Completar perfil"),
		sectionStyle.Render("Formación académica"),
		fm.row(fmNivel, f.cascade.levelView()),
		fm.row(fmCampo, f.cascade.fieldView()),
		fm.row(fmTitulo, f.cascade.titleView()),
		fm.textRow(fmInstitucion),
		fm.pickerRow(fmEstado),
		fm.textRow(fmFechaIni),
		fm.textRow(fmFechaFin),
		fm.toggleRow(fmAcreditado),
		sectionStyle.Render("Idiomas"),
		fm.pickerRow(fmIdioma),
		fm.pickerRow(fmOral),
		fm.pickerRow(fmEscrito),
		"  " + fm.button(fmAddIdioma, "Agregar idioma"),
		fm.listRow(fmIdiomas, f.langs.Entries()),
		sectionStyle.Render("Experiencia profesional"),
		fm.toggleRow(fmTieneExperiencia),
	}
	if fm.toggles[fmTieneExperiencia] {
		for _, key := range []string{fmEmpresa, fmPuesto, fmArea, fmExpFechaIni, fmExpFechaFin, fmDescripcion, fmReferencia, fmContacto} {
			rows = append(rows, fm.textRow(key))
		}
	}
	rows = append(rows, "", fm.button(fmSubmit, submitLabel(f.submitting, "Guardar")))

	for _, n := range []string{f.cascade.state.Notice, f.notice} {
		if n != "" {
			rows = append(rows, noticeStyle.Render("⚠ "+n))
		}
	}
	rows = append(rows, hintStyle.Render(keyHelp))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
