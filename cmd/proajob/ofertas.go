package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/proajob/proajob/internal/observability"
	"github.com/proajob/proajob/internal/tui"
	"github.com/proajob/proajob/internal/types"
)

var (
	ofertasFlags clientFlags
	ofertasCargo string
	ofertasPlain bool
)

var ofertasCmd = &cobra.Command{
	Use:   "ofertas",
	Short: "Browse the published offers",
	Long:  "Lists the published offers, filtered by position. Without --listar the list opens in an interactive view.",
	RunE:  runOfertas,
}

func init() {
	ofertasFlags.register(ofertasCmd)
	ofertasCmd.Flags().StringVar(&ofertasCargo, "cargo", "", "Show only offers whose position contains this text")
	ofertasCmd.Flags().BoolVar(&ofertasPlain, "listar", false, "Print the matching offers and exit")
	rootCmd.AddCommand(ofertasCmd)
}

func runOfertas(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, &ofertasFlags)
	if err != nil {
		return err
	}
	defer s.close()

	printer := observability.NewPrinter(os.Stdout)
	if ofertasPlain {
		list, err := s.api.Ofertas(ctx)
		if err != nil {
			return fmt.Errorf("failed to list offers: %w", err)
		}
		printer.PrintOfertas(types.FilterOfertas(list, ofertasCargo))
		return nil
	}

	view := tui.NewOfertasList(ctx, s.api, ofertasCargo, s.log)
	if _, err := tea.NewProgram(view, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("list failed: %w", err)
	}
	if view.Chosen != nil {
		printer.PrintOfertaSummary(*view.Chosen)
	}
	return nil
}
