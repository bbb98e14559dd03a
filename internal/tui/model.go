// Package tui is the terminal front end over the workspace state
// machine. Every presentational region is a pure function of the
// workspace snapshot plus its local form buffers; every network
// completion arrives as a typed message and is routed through a
// workspace transition before anything re-renders.
package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csviz/csviz/internal/api"
	"github.com/csviz/csviz/internal/workspace"
)

// ---------- messages for network completions ----------

type authDoneMsg struct {
	token string
	err   error
}

type historyMsg struct {
	entries []api.HistoryEntry
	err     error
}

type uploadDoneMsg struct {
	ds  *api.Dataset
	err error
}

type chartMsg struct {
	id   int64
	data *api.ChartData
	err  error
}

type summaryMsg struct {
	id  int64
	sum *api.Summary
	err error
}

type deleteDoneMsg struct {
	id  int64
	err error
}

type reportDoneMsg struct {
	path string
	err  error
}

// ---------- gateway contract ----------

// Gateway is the slice of the API client the TUI drives. *api.Client
// satisfies it; tests substitute a scriptable fake.
type Gateway interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password, email string) (string, error)
	History(ctx context.Context) ([]api.HistoryEntry, error)
	Upload(ctx context.Context, name string, csv io.Reader) (*api.Dataset, error)
	ChartData(ctx context.Context, id int64) (*api.ChartData, error)
	Summary(ctx context.Context, id int64) (*api.Summary, error)
	Delete(ctx context.Context, id int64) error
	Report(ctx context.Context, id int64) ([]byte, error)
	SetToken(tok string)
}

// ---------- screens ----------

type screen int

const (
	screenAuth screen = iota
	screenDash
)

// auth form field order.
const (
	fieldUsername = iota
	fieldPassword
	fieldEmail
)

// Model is the bubbletea model for the whole client.
type Model struct {
	ws *workspace.Workspace
	gw Gateway

	version string
	screen  screen
	th      theme

	width  int
	height int

	spinner spinner.Model

	// auth form buffers
	inputs       [3]textinput.Model
	focus        int
	registerMode bool
	authErr      string
	authBusy     bool

	// dashboard buffers
	fileInput    textinput.Model
	uploading    bool
	uploadStatus string
	uploadFailed bool
	historySel   int
	reportStatus string

	// delete flow: explicit confirmation before the call, blocking
	// alert on failure.
	confirmDelete bool
	deleteTarget  int64
	deleteName    string
	alert         string

	// id of the chart fetch currently in flight; a second selection of
	// the same id does not issue a redundant request.
	chartInFlight int64

	quitting bool
}

// NewModel builds the initial model over an already-seeded workspace.
// When the workspace restored a token, the model starts on the
// dashboard and the first history refresh doubles as a token check.
func NewModel(ws *workspace.Workspace, gw Gateway, version string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	var inputs [3]textinput.Model
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].CharLimit = 128
	}
	inputs[fieldUsername].Placeholder = "username"
	inputs[fieldUsername].Focus()
	inputs[fieldPassword].Placeholder = "password"
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldEmail].Placeholder = "email (optional)"

	fi := textinput.New()
	fi.Placeholder = "path/to/data.csv"
	fi.CharLimit = 512

	st := ws.Snapshot()
	m := Model{
		ws:        ws,
		gw:        gw,
		version:   version,
		spinner:   sp,
		inputs:    inputs,
		fileInput: fi,
		th:        newTheme(st.Dark),
	}
	if st.Authed {
		m.screen = screenDash
		gw.SetToken(ws.Token())
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.screen == screenDash {
		cmds = append(cmds, m.fetchHistoryCmd())
	}
	return tea.Batch(cmds...)
}

// ---------- commands ----------

func (m Model) loginCmd(username, password string) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		tok, err := gw.Authenticate(context.Background(), username, password)
		return authDoneMsg{token: tok, err: err}
	}
}

func (m Model) registerCmd(username, password, email string) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		tok, err := gw.Register(context.Background(), username, password, email)
		return authDoneMsg{token: tok, err: err}
	}
}

func (m Model) fetchHistoryCmd() tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		entries, err := gw.History(context.Background())
		return historyMsg{entries: entries, err: err}
	}
}

func (m Model) uploadCmd(path string) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		name, data, err := readUpload(path)
		if err != nil {
			return uploadDoneMsg{err: &api.UploadError{Reason: err.Error()}}
		}
		ds, err := gw.Upload(context.Background(), name, bytes.NewReader(data))
		return uploadDoneMsg{ds: ds, err: err}
	}
}

func (m Model) fetchChartCmd(id int64) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		cd, err := gw.ChartData(context.Background(), id)
		return chartMsg{id: id, data: cd, err: err}
	}
}

func (m Model) fetchSummaryCmd(id int64) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		s, err := gw.Summary(context.Background(), id)
		return summaryMsg{id: id, sum: s, err: err}
	}
}

func (m Model) deleteCmd(id int64) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		return deleteDoneMsg{id: id, err: gw.Delete(context.Background(), id)}
	}
}

func (m Model) reportCmd(id int64) tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		pdf, err := gw.Report(context.Background(), id)
		if err != nil {
			return reportDoneMsg{err: err}
		}
		path := fmt.Sprintf("report_%d.pdf", id)
		if err := os.WriteFile(path, pdf, 0o644); err != nil {
			return reportDoneMsg{err: err}
		}
		return reportDoneMsg{path: path}
	}
}

// ---------- update ----------

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.authBusy || m.uploading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case authDoneMsg:
		return m.handleAuthDone(msg)

	case historyMsg:
		if msg.err != nil {
			return m.maybeForceLogout(msg.err)
		}
		m.ws.SetHistory(msg.entries)
		if n := len(msg.entries); m.historySel >= n && n > 0 {
			m.historySel = n - 1
		} else if n == 0 {
			m.historySel = 0
		}
		return m, nil

	case uploadDoneMsg:
		return m.handleUploadDone(msg)

	case chartMsg:
		if m.chartInFlight == msg.id {
			m.chartInFlight = 0
		}
		if msg.err != nil {
			// Chart fetches fail silently; the panel just stays empty.
			return m.maybeForceLogout(msg.err)
		}
		m.ws.ApplyChart(msg.id, msg.data)
		return m, nil

	case summaryMsg:
		if msg.err != nil {
			return m.maybeForceLogout(msg.err)
		}
		m.ws.ApplySummary(msg.id, msg.sum)
		return m, nil

	case deleteDoneMsg:
		if msg.err != nil {
			if mm, cmd, handled := m.forceLogoutIfUnauthorized(msg.err); handled {
				return mm, cmd
			}
			// Destructive action: silent failure would look like success,
			// so this one interrupts.
			m.alert = msg.err.Error()
			return m, nil
		}
		m.ws.DeleteApplied(msg.id)
		return m, m.fetchHistoryCmd()

	case reportDoneMsg:
		if msg.err != nil {
			if mm, cmd, handled := m.forceLogoutIfUnauthorized(msg.err); handled {
				return mm, cmd
			}
			m.reportStatus = ""
			return m, nil
		}
		m.reportStatus = "Saved " + msg.path
		return m, nil
	}

	return m, nil
}

func (m Model) handleAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	m.authBusy = false
	if msg.err != nil {
		switch {
		case errors.Is(msg.err, api.ErrInvalidCredentials):
			m.authErr = "Invalid credentials."
		default:
			var regErr *api.RegistrationError
			if errors.As(msg.err, &regErr) {
				m.authErr = regErr.Reason
			} else {
				m.authErr = "Cannot reach server."
			}
		}
		return m, nil
	}

	if err := m.ws.LoginSucceeded(msg.token); err != nil {
		m.authErr = "Could not save session: " + err.Error()
		return m, nil
	}
	m.gw.SetToken(msg.token)
	m.screen = screenDash
	m.authErr = ""
	m.resetAuthForm()
	m.resetDashboard()
	return m, m.fetchHistoryCmd()
}

func (m Model) handleUploadDone(msg uploadDoneMsg) (tea.Model, tea.Cmd) {
	m.uploading = false
	if msg.err != nil {
		if mm, cmd, handled := m.forceLogoutIfUnauthorized(msg.err); handled {
			return mm, cmd
		}
		m.uploadStatus = msg.err.Error()
		m.uploadFailed = true
		return m, nil
	}
	m.uploadStatus = "Uploaded: " + msg.ds.Name
	m.uploadFailed = false
	m.fileInput.SetValue("")
	m.fileInput.Blur()

	id := m.ws.SetActive(msg.ds)
	m.chartInFlight = id
	// Chart fetch and history refresh are independent; neither blocks
	// the other.
	return m, tea.Batch(m.fetchChartCmd(id), m.fetchHistoryCmd())
}

// forceLogoutIfUnauthorized applies the global unauthorized transition
// when err carries it, reporting whether it did.
func (m Model) forceLogoutIfUnauthorized(err error) (Model, tea.Cmd, bool) {
	if !errors.Is(err, api.ErrUnauthorized) {
		return m, nil, false
	}
	_ = m.ws.HandleUnauthorized()
	m.gw.SetToken("")
	m.screen = screenAuth
	m.authErr = "Session expired. Please log in again."
	m.resetAuthForm()
	m.resetDashboard()
	return m, textinput.Blink, true
}

func (m Model) maybeForceLogout(err error) (tea.Model, tea.Cmd) {
	mm, cmd, _ := m.forceLogoutIfUnauthorized(err)
	return mm, cmd
}

func (m *Model) resetAuthForm() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.focus = fieldUsername
	m.inputs[fieldUsername].Focus()
	m.registerMode = false
	m.authBusy = false
}

func (m *Model) resetDashboard() {
	m.fileInput.SetValue("")
	m.fileInput.Blur()
	m.uploading = false
	m.uploadStatus = ""
	m.uploadFailed = false
	m.historySel = 0
	m.reportStatus = ""
	m.confirmDelete = false
	m.deleteTarget = 0
	m.deleteName = ""
	m.alert = ""
	m.chartInFlight = 0
}

// ---------- key handling ----------

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}
	if msg.String() == "ctrl+t" {
		m.th = newTheme(m.ws.ToggleDark())
		return m, nil
	}
	if m.screen == screenAuth {
		return m.handleAuthKey(msg)
	}
	return m.handleDashKey(msg)
}

func (m Model) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.cycleFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.cycleFocus(-1)
		return m, nil
	case "ctrl+r":
		// Switch login/register; transient form error clears on mode
		// switch, same as on the next submit.
		m.registerMode = !m.registerMode
		m.authErr = ""
		if !m.registerMode && m.focus == fieldEmail {
			m.cycleFocus(1)
		}
		return m, nil
	case "enter":
		return m.submitAuth()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) cycleFocus(dir int) {
	fields := 2
	if m.registerMode {
		fields = 3
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + dir + fields) % fields
	m.inputs[m.focus].Focus()
}

func (m Model) submitAuth() (tea.Model, tea.Cmd) {
	if m.authBusy {
		return m, nil
	}
	username := m.inputs[fieldUsername].Value()
	password := m.inputs[fieldPassword].Value()
	if username == "" || password == "" {
		m.authErr = "Username and password required."
		return m, nil
	}
	m.authErr = ""
	m.authBusy = true
	if m.registerMode {
		return m, tea.Batch(m.spinner.Tick,
			m.registerCmd(username, password, m.inputs[fieldEmail].Value()))
	}
	return m, tea.Batch(m.spinner.Tick, m.loginCmd(username, password))
}

func (m Model) handleDashKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// A failed delete interrupts; nothing else reacts until dismissed.
	if m.alert != "" {
		if key == "enter" || key == "esc" {
			m.alert = ""
		}
		return m, nil
	}

	if m.confirmDelete {
		switch key {
		case "enter", "y":
			m.confirmDelete = false
			return m, m.deleteCmd(m.deleteTarget)
		case "esc", "n":
			m.confirmDelete = false
			m.deleteTarget = 0
			m.deleteName = ""
		}
		return m, nil
	}

	if m.fileInput.Focused() {
		switch key {
		case "enter":
			return m.submitUpload()
		case "esc":
			m.fileInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.fileInput, cmd = m.fileInput.Update(msg)
		return m, cmd
	}

	st := m.ws.Snapshot()
	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "u":
		m.fileInput.Focus()
		m.uploadStatus = ""
		m.uploadFailed = false
		return m, textinput.Blink
	case "up", "k":
		if m.historySel > 0 {
			m.historySel--
		}
		return m, nil
	case "down", "j":
		if m.historySel < len(st.History)-1 {
			m.historySel++
		}
		return m, nil
	case "enter":
		return m.selectHistory(st)
	case "d", "x":
		if m.historySel < len(st.History) {
			e := st.History[m.historySel]
			m.confirmDelete = true
			m.deleteTarget = e.ID
			m.deleteName = e.Name
		}
		return m, nil
	case "r":
		if st.Active != nil {
			m.reportStatus = "Downloading report…"
			return m, m.reportCmd(st.Active.ID)
		}
		return m, nil
	case "l":
		_ = m.ws.Logout()
		m.gw.SetToken("")
		m.screen = screenAuth
		m.authErr = ""
		m.resetAuthForm()
		m.resetDashboard()
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) selectHistory(st workspace.State) (tea.Model, tea.Cmd) {
	if m.historySel >= len(st.History) {
		return m, nil
	}
	e := st.History[m.historySel]
	if m.chartInFlight == e.ID && st.Active != nil && st.Active.ID == e.ID {
		// A fetch for this exact id is already in flight; re-selecting
		// it doesn't need a second request.
		return m, nil
	}
	id := m.ws.ActiveFromHistory(e)
	m.chartInFlight = id
	m.reportStatus = ""
	return m, tea.Batch(m.fetchChartCmd(id), m.fetchSummaryCmd(id))
}

func (m Model) submitUpload() (tea.Model, tea.Cmd) {
	if m.uploading {
		// Busy flag: no duplicate submission while a call is in flight.
		return m, nil
	}
	path := strings.TrimSpace(m.fileInput.Value())
	if path == "" {
		m.uploadStatus = "Select a CSV file."
		m.uploadFailed = true
		return m, nil
	}
	m.uploading = true
	m.uploadStatus = "Uploading…"
	m.uploadFailed = false
	return m, tea.Batch(m.spinner.Tick, m.uploadCmd(path))
}
