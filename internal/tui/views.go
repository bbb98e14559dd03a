package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/csviz/csviz/internal/workspace"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.screen == screenAuth {
		return m.viewAuth()
	}
	return m.viewDash()
}

// ---------- auth screen ----------

func (m Model) viewAuth() string {
	var b strings.Builder

	b.WriteString(m.th.title.Render("CSV Visualizer") + " " + m.th.hint.Render("v"+m.version) + "\n\n")

	mode := "Login"
	if m.registerMode {
		mode = "Register"
	}

	var form []string
	form = append(form, m.th.label.Render(mode))
	form = append(form, "")
	form = append(form, m.inputs[fieldUsername].View())
	form = append(form, m.inputs[fieldPassword].View())
	if m.registerMode {
		form = append(form, m.inputs[fieldEmail].View())
	}
	if m.authErr != "" {
		form = append(form, "")
		form = append(form, m.th.errText.Render(m.authErr))
	}
	if m.authBusy {
		form = append(form, "")
		form = append(form, m.spinner.View()+m.th.hint.Render(" signing in…"))
	}
	b.WriteString(m.th.panel.Render(strings.Join(form, "\n")))
	b.WriteString("\n\n")

	switchHint := "ctrl+r register"
	if m.registerMode {
		switchHint = "ctrl+r login"
	}
	b.WriteString(m.th.hint.Render("enter submit · tab next field · " + switchHint + " · ctrl+t theme · ctrl+c quit"))
	return b.String()
}

// ---------- dashboard ----------

func (m Model) viewDash() string {
	st := m.ws.Snapshot()

	// Blocking overlays render instead of the dashboard so the failure
	// or pending confirmation cannot be missed.
	if m.alert != "" {
		return m.th.alert.Render(
			m.th.errText.Render("Delete failed")+"\n\n"+
				m.th.value.Render(m.alert)+"\n\n"+
				m.th.hint.Render("enter dismiss")) + "\n"
	}
	if m.confirmDelete {
		return m.th.confirm.Render(
			m.th.title.Render("Delete dataset?")+"\n\n"+
				m.th.value.Render(fmt.Sprintf("%q (id %d) will be removed from the server.", m.deleteName, m.deleteTarget))+"\n\n"+
				m.th.hint.Render("enter confirm · esc cancel")) + "\n"
	}

	var sections []string
	sections = append(sections, m.th.header.Render("CSV Visualizer")+" "+m.th.hint.Render("v"+m.version))
	sections = append(sections, m.viewUpload())

	if st.Active != nil {
		sections = append(sections, m.viewActive(st))
	}
	sections = append(sections, m.viewHistory(st))

	hints := "u upload · ↑/↓ select · enter view · d delete · t(ctrl) theme · l logout · q quit"
	if st.Active != nil {
		hints = "r report · " + hints
	}
	sections = append(sections, m.th.hint.Render(hints))

	return strings.Join(sections, "\n\n") + "\n"
}

func (m Model) viewUpload() string {
	var lines []string
	lines = append(lines, m.th.label.Render("Upload CSV"))
	if m.fileInput.Focused() || m.fileInput.Value() != "" {
		lines = append(lines, m.fileInput.View())
	} else {
		lines = append(lines, m.th.hint.Render("press u, type a .csv or .xlsx path, enter to upload"))
	}
	switch {
	case m.uploading:
		lines = append(lines, m.spinner.View()+m.th.hint.Render(" "+m.uploadStatus))
	case m.uploadFailed:
		lines = append(lines, m.th.errText.Render(m.uploadStatus))
	case m.uploadStatus != "":
		lines = append(lines, m.th.success.Render(m.uploadStatus))
	}
	return m.th.panel.Render(strings.Join(lines, "\n"))
}

func (m Model) viewActive(st workspace.State) string {
	ds := st.Active

	var left []string
	left = append(left, m.th.label.Render("Dataset"))
	left = append(left, m.th.value.Render(ds.Name))
	left = append(left, m.th.label.Render(fmt.Sprintf("%d rows · uploaded %s", ds.RowCount, ds.UploadedAt.Format("2006-01-02 15:04"))))
	if m.reportStatus != "" {
		left = append(left, m.th.success.Render(m.reportStatus))
	}
	if s := renderSummary(ds.Summary, m.th); s != "" {
		left = append(left, "", s)
	}
	panels := []string{m.th.panel.Render(strings.Join(left, "\n"))}

	if st.Chart != nil {
		if chart := renderBarChart(st.Chart, m.th); chart != "" {
			panels = append(panels, m.th.panel.Render(chart))
		}
		if table := renderRowsTable(st.Chart.Rows, m.th, 8); table != "" {
			panels = append(panels, m.th.panel.Render(table))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

func (m Model) viewHistory(st workspace.State) string {
	var lines []string
	lines = append(lines, m.th.label.Render("Upload History"))
	if len(st.History) == 0 {
		lines = append(lines, m.th.hint.Render("no uploads yet"))
	}
	for i, e := range st.History {
		cursor := "  "
		style := m.th.value
		if i == m.historySel {
			cursor = "> "
			style = m.th.selected
		}
		marker := " "
		if st.Active != nil && st.Active.ID == e.ID {
			marker = "*"
		}
		lines = append(lines, cursor+style.Render(fmt.Sprintf("%s%s — %d rows", marker, e.Name, e.RowCount))+
			m.th.hint.Render("  "+e.UploadedAt.Format("2006-01-02 15:04")))
	}
	return m.th.panel.Render(strings.Join(lines, "\n"))
}
