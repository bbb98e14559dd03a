package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csviz/csviz/internal/workspace"
)

// Run starts the interactive client and blocks until it exits.
func Run(ws *workspace.Workspace, gw Gateway, version string) error {
	p := tea.NewProgram(NewModel(ws, gw, version), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
