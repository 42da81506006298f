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

var formacionFlags clientFlags

var formacionCmd = &cobra.Command{
	Use:   "formacion",
	Short: "Register an applicant's academic formation from an interactive form",
	Long:  "Opens a terminal form to register the degree, languages and optional work experience of an applicant.",
	RunE:  runFormacion,
}

func init() {
	formacionFlags.register(formacionCmd)
	formacionCmd.Flags().IntVar(&formacionFlags.userID, "usuario", 0, "User id of the applicant (default: the logged-in user)")
	rootCmd.AddCommand(formacionCmd)
}

func runFormacion(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, &formacionFlags)
	if err != nil {
		return err
	}
	defer s.close()

	if s.userID == 0 {
		return errors.New("user id is unknown: pass --usuario or log in with --email")
	}

	form := tui.NewFormacionForm(ctx, s.api, s.userID, s.log)
	if _, err := tea.NewProgram(form, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("form failed: %w", err)
	}

	if form.Submitted == nil {
		return nil
	}
	observability.NewPrinter(os.Stdout).PrintFormacion(form.FormacionID, form.TitleName(), form.Submitted)
	return nil
}
