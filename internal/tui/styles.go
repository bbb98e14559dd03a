package tui

import "github.com/charmbracelet/lipgloss"

// theme bundles the lipgloss styles for one palette. The presentation
// layer re-derives it whenever the dark flag flips; nothing else about
// the workspace changes with it.
type theme struct {
	title    lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	hint     lipgloss.Style
	errText  lipgloss.Style
	success  lipgloss.Style
	selected lipgloss.Style
	bar      lipgloss.Style
	panel    lipgloss.Style
	alert    lipgloss.Style
	confirm  lipgloss.Style
	header   lipgloss.Style
}

func newTheme(dark bool) theme {
	if dark {
		return theme{
			title:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
			label:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			value:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
			hint:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
			errText:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
			success:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
			selected: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
			bar:      lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
			panel: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("238")).
				Padding(0, 1),
			alert: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("196")).
				Padding(0, 2),
			confirm: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Padding(0, 2),
			header: lipgloss.NewStyle().
				Background(lipgloss.Color("235")).
				Foreground(lipgloss.Color("252")).
				Padding(0, 1),
		}
	}
	return theme{
		title:    lipgloss.NewStyle().Foreground(lipgloss.Color("26")).Bold(true),
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		value:    lipgloss.NewStyle().Foreground(lipgloss.Color("235")),
		hint:     lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Italic(true),
		errText:  lipgloss.NewStyle().Foreground(lipgloss.Color("124")).Bold(true),
		success:  lipgloss.NewStyle().Foreground(lipgloss.Color("22")),
		selected: lipgloss.NewStyle().Foreground(lipgloss.Color("26")).Bold(true),
		bar:      lipgloss.NewStyle().Foreground(lipgloss.Color("32")),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("250")).
			Padding(0, 1),
		alert: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("124")).
			Padding(0, 2),
		confirm: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("26")).
			Padding(0, 2),
		header: lipgloss.NewStyle().
			Background(lipgloss.Color("254")).
			Foreground(lipgloss.Color("235")).
			Padding(0, 1),
	}
}
