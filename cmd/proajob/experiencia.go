package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/proajob/proajob/internal/observability"
	"github.com/proajob/proajob/internal/tui"
)

var experienciaFlags clientFlags

var experienciaCmd = &cobra.Command{
	Use:   "experiencia",
	Short: "Add or edit an applicant's work experience",
	Long:  "Loads the applicant profile into a terminal form where new experiences can be added and stored ones edited, then saves the changes.",
	RunE:  runExperiencia,
}

func init() {
	experienciaFlags.register(experienciaCmd)
	experienciaCmd.Flags().IntVar(&experienciaFlags.userID, "usuario", 0, "User id of the applicant (default: the logged-in user)")
	rootCmd.AddCommand(experienciaCmd)
}

func runExperiencia(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, &experienciaFlags)
	if err != nil {
		return err
	}
	defer s.close()

	if s.userID == 0 {
		return errors.New("user id is unknown: pass --usuario or log in with --email")
	}

	form := tui.NewExperienciaForm(ctx, s.api, s.userID, s.log)
	if _, err := tea.NewProgram(form, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("form failed: %w", err)
	}

	if form.Created+form.Updated == 0 {
		return nil
	}
	observability.NewPrinter(os.Stdout).PrintCounts("EXPERIENCIA", map[string]int{
		"creadas":      form.Created,
		"actualizadas": form.Updated,
	})
	return nil
}
