// Package observability provides logging setup and formatted summaries for
// the ProaJob command-line tools.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/proajob/proajob/internal/selection"
	"github.com/proajob/proajob/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer writes boxed summaries of submitted forms
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads s to width runes.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		r := []rune(s)
		return string(r[:width-3]) + "..."
	}
	return s + strings.Repeat(" ", width-n)
}

// PrintOferta outputs a summary of a published offer.
func (p *Printer) PrintOferta(id int, req *types.CreateOfertaRequest) {
	if req == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Oferta:     #%d\n", id))
	sb.WriteString(fmt.Sprintf("Cargo:      %s\n", req.Cargo))
	sb.WriteString(fmt.Sprintf("Modalidad:  %s / %s\n", req.Modalidad, req.CargaHoraria))
	sb.WriteString(fmt.Sprintf("Cierre:     %s\n", req.FechaMaxPos))
	if req.MostrarSueldo {
		sb.WriteString(fmt.Sprintf("Sueldo:     %.2f\n", req.Sueldo))
	}

	if len(req.Titulos) > 0 {
		sb.WriteString("\nTítulos requeridos:\n")
		count := min(len(req.Titulos), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", req.Titulos[i].Name))
		}
		if len(req.Titulos) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... y %d más\n", len(req.Titulos)-maxItemsToShow))
		}
	}

	if len(req.Criterios) > 0 {
		sb.WriteString("\nCriterios:\n")
		count := min(len(req.Criterios), maxItemsToShow)
		for i := 0; i < count; i++ {
			c := req.Criterios[i]
			sb.WriteString(fmt.Sprintf("  [%s] %s\n", c.Priority, c.Label()))
		}
		if len(req.Criterios) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... y %d más\n", len(req.Criterios)-maxItemsToShow))
		}
	}

	p.printBox("OFERTA PUBLICADA", sb.String())
}

// PrintFormacion outputs a summary of a stored academic formation.
func (p *Printer) PrintFormacion(id int, title string, req *types.FormacionRequest) {
	if req == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Formación:  #%d\n", id))
	sb.WriteString(fmt.Sprintf("Título:     %s\n", title))
	sb.WriteString(fmt.Sprintf("Institución: %s\n", req.Institucion))
	period := req.FechaIni + " - " + req.FechaFin
	if req.FechaFin == "" {
		period = req.FechaIni + " - " + req.Estado
	}
	sb.WriteString(fmt.Sprintf("Periodo:    %s\n", period))

	if len(req.Idiomas) > 0 {
		sb.WriteString("\nIdiomas:\n")
		for _, l := range req.Idiomas {
			sb.WriteString(fmt.Sprintf("  • %s (oral %s, escrito %s)\n", l.Name, selection.LanguageLevelLabel(l.Oral), selection.LanguageLevelLabel(l.Written)))
		}
	}
	if req.Experiencia != nil {
		sb.WriteString("\nExperiencia:\n")
		sb.WriteString(fmt.Sprintf("  • %s\n", req.Experiencia.Label()))
	}

	p.printBox("FORMACIÓN REGISTRADA", sb.String())
}

// PrintOfertaSummary outputs the listing data of a published offer.
func (p *Printer) PrintOfertaSummary(o types.OfertaSummary) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Oferta:      #%d\n", o.ID))
	sb.WriteString(fmt.Sprintf("Cargo:       %s\n", o.Cargo))
	sb.WriteString(fmt.Sprintf("Empresa:     %s\n", o.Publisher()))
	sb.WriteString(fmt.Sprintf("Área:        %s\n", o.Area.Name))
	sb.WriteString(fmt.Sprintf("Modalidad:   %s / %s\n", o.Modalidad, o.CargaHoraria))
	sb.WriteString(fmt.Sprintf("Experiencia: %d años\n", o.Experiencia))
	sb.WriteString(fmt.Sprintf("Publicada:   %s\n", o.FechaPubli))
	p.printBox("OFERTA", sb.String())
}

// PrintOfertas outputs one line per offer.
func (p *Printer) PrintOfertas(ofertas []types.OfertaSummary) {
	var sb strings.Builder
	for _, o := range ofertas {
		sb.WriteString(fmt.Sprintf("#%-4d %s · %s\n", o.ID, o.Cargo, o.Publisher()))
	}
	if len(ofertas) == 0 {
		sb.WriteString("(nada)\n")
	}
	p.printBox(fmt.Sprintf("OFERTAS (%d)", len(ofertas)), sb.String())
}

// PrintCounts outputs one line per key, sorted by key.
func (p *Printer) PrintCounts(title string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("%-12s %d\n", k+":", counts[k]))
	}
	if len(keys) == 0 {
		sb.WriteString("(nada)\n")
	}
	p.printBox(title, sb.String())
}
