package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/proajob/proajob/internal/observability"
	"github.com/proajob/proajob/internal/tui"
)

var ofertaFlags clientFlags

var ofertaCmd = &cobra.Command{
	Use:   "oferta",
	Short: "Publish a job offer from an interactive form",
	Long:  "Opens a terminal form to publish a job offer with its required degree titles and evaluation criteria. Requires a company account.",
	RunE:  runOferta,
}

func init() {
	ofertaFlags.register(ofertaCmd)
	rootCmd.AddCommand(ofertaCmd)
}

func runOferta(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, &ofertaFlags)
	if err != nil {
		return err
	}
	defer s.close()

	form := tui.NewOfertaForm(ctx, s.api, s.log)
	if _, err := tea.NewProgram(form, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("form failed: %w", err)
	}

	if form.Submitted == nil {
		return nil
	}
	observability.NewPrinter(os.Stdout).PrintOferta(form.OfertaID, form.Submitted)
	return nil
}
