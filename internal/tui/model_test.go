package tui

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csviz/csviz/internal/api"
	"github.com/csviz/csviz/internal/workspace"
)

// memRing is an in-memory Keyring.
type memRing struct {
	values map[string]string
}

func newMemRing() *memRing { return &memRing{values: map[string]string{}} }

func (r *memRing) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r *memRing) Set(key, value string) error {
	r.values[key] = value
	return nil
}

func (r *memRing) Remove(key string) error {
	delete(r.values, key)
	return nil
}

// fakeGateway scripts gateway responses and records calls in order.
type fakeGateway struct {
	token      string
	authErr    error
	history    []api.HistoryEntry
	historyErr error
	uploadDS   *api.Dataset
	uploadErr  error
	charts     map[int64]*api.ChartData
	chartErr   error
	summaries  map[int64]*api.Summary
	deleteErr  error
	report     []byte
	reportErr  error

	installed string
	calls     []string
}

func (g *fakeGateway) Authenticate(_ context.Context, _, _ string) (string, error) {
	g.calls = append(g.calls, "auth")
	return g.token, g.authErr
}

func (g *fakeGateway) Register(_ context.Context, _, _, _ string) (string, error) {
	g.calls = append(g.calls, "register")
	return g.token, g.authErr
}

func (g *fakeGateway) History(context.Context) ([]api.HistoryEntry, error) {
	g.calls = append(g.calls, "history")
	return g.history, g.historyErr
}

func (g *fakeGateway) Upload(_ context.Context, name string, _ io.Reader) (*api.Dataset, error) {
	g.calls = append(g.calls, "upload "+name)
	return g.uploadDS, g.uploadErr
}

func (g *fakeGateway) ChartData(_ context.Context, id int64) (*api.ChartData, error) {
	g.calls = append(g.calls, "chart")
	if g.chartErr != nil {
		return nil, g.chartErr
	}
	return g.charts[id], nil
}

func (g *fakeGateway) Summary(_ context.Context, id int64) (*api.Summary, error) {
	g.calls = append(g.calls, "summary")
	return g.summaries[id], nil
}

func (g *fakeGateway) Delete(_ context.Context, id int64) error {
	g.calls = append(g.calls, "delete")
	return g.deleteErr
}

func (g *fakeGateway) Report(_ context.Context, id int64) ([]byte, error) {
	g.calls = append(g.calls, "report")
	return g.report, g.reportErr
}

func (g *fakeGateway) SetToken(tok string) { g.installed = tok }

// drain executes a command tree and returns its messages, flattening
// batches, so tests can deliver completions in any order they choose.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// pick returns the first message of type T from msgs.
func pick[T tea.Msg](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, msg := range msgs {
		if m, ok := msg.(T); ok {
			return m
		}
	}
	var zero T
	t.Fatalf("no %T among %d messages", zero, len(msgs))
	return zero
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return mm, cmd
}

func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+t":
		msg = tea.KeyMsg{Type: tea.KeyCtrlT}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	return update(t, m, msg)
}

func newTestModel(gw *fakeGateway) Model {
	return NewModel(workspace.New(newMemRing()), gw, "test")
}

func loggedInModel(t *testing.T, gw *fakeGateway) Model {
	t.Helper()
	m := newTestModel(gw)
	m, _ = update(t, m, authDoneMsg{token: "T1"})
	return m
}

func TestLoginSuccessEntersDashboard(t *testing.T) {
	gw := &fakeGateway{token: "T1"}
	m := newTestModel(gw)
	if m.screen != screenAuth {
		t.Fatal("fresh model should start on auth screen")
	}

	m.inputs[fieldUsername].SetValue("alice")
	m.inputs[fieldPassword].SetValue("secret")
	m, cmd := press(t, m, "enter")
	if !m.authBusy {
		t.Error("submit should mark auth busy")
	}

	done := pick[authDoneMsg](t, drain(cmd))
	if done.token != "T1" || done.err != nil {
		t.Fatalf("authDoneMsg = %+v", done)
	}

	m, cmd = update(t, m, done)
	if m.screen != screenDash {
		t.Error("success should switch to dashboard")
	}
	if gw.installed != "T1" {
		t.Errorf("gateway token = %q", gw.installed)
	}
	if !m.ws.Snapshot().Authed {
		t.Error("workspace should be authenticated")
	}
	// The dashboard entry refreshes history.
	pick[historyMsg](t, drain(cmd))
}

func TestLoginFailureStaysOnAuthScreen(t *testing.T) {
	gw := &fakeGateway{authErr: api.ErrInvalidCredentials}
	m := newTestModel(gw)

	m, _ = update(t, m, authDoneMsg{err: api.ErrInvalidCredentials})
	if m.screen != screenAuth {
		t.Error("failed login must not leave the auth screen")
	}
	if m.authErr != "Invalid credentials." {
		t.Errorf("authErr = %q", m.authErr)
	}
	if m.ws.Snapshot().Authed {
		t.Error("workspace must stay logged out")
	}
}

func TestRegisterFailureShowsServerReason(t *testing.T) {
	gw := &fakeGateway{}
	m := newTestModel(gw)

	m, _ = update(t, m, authDoneMsg{err: &api.RegistrationError{Reason: "Username already taken."}})
	if m.authErr != "Username already taken." {
		t.Errorf("authErr = %q", m.authErr)
	}
}

func TestEmptyCredentialsRejectedLocally(t *testing.T) {
	gw := &fakeGateway{}
	m := newTestModel(gw)

	m, cmd := press(t, m, "enter")
	if cmd != nil {
		t.Error("empty form must not issue a network call")
	}
	if m.authErr != "Username and password required." {
		t.Errorf("authErr = %q", m.authErr)
	}
	if len(gw.calls) != 0 {
		t.Errorf("gateway called: %v", gw.calls)
	}
}

func TestUploadSuccessActivatesAndFetches(t *testing.T) {
	ds := &api.Dataset{ID: 7, Name: "equip.csv", RowCount: 4}
	gw := &fakeGateway{
		charts:  map[int64]*api.ChartData{7: {Labels: []string{"Pump"}, Counts: []int{2}}},
		history: []api.HistoryEntry{{ID: 7, Name: "equip.csv"}},
	}
	m := loggedInModel(t, gw)

	m, cmd := update(t, m, uploadDoneMsg{ds: ds})
	st := m.ws.Snapshot()
	if st.Active == nil || st.Active.ID != 7 {
		t.Fatalf("active = %+v", st.Active)
	}
	if st.Chart != nil {
		t.Error("chart must be empty until its fetch lands")
	}
	if m.chartInFlight != 7 {
		t.Errorf("chartInFlight = %d", m.chartInFlight)
	}

	msgs := drain(cmd)
	m, _ = update(t, m, pick[chartMsg](t, msgs))
	m, _ = update(t, m, pick[historyMsg](t, msgs))

	st = m.ws.Snapshot()
	if st.Chart == nil || st.Chart.Labels[0] != "Pump" {
		t.Errorf("chart = %+v", st.Chart)
	}
	if len(st.History) != 1 {
		t.Errorf("history = %+v", st.History)
	}
}

func TestStaleChartCompletionDropped(t *testing.T) {
	gw := &fakeGateway{
		charts: map[int64]*api.ChartData{
			7: {Labels: []string{"old"}, Counts: []int{1}},
			3: {Labels: []string{"new"}, Counts: []int{1}},
		},
		summaries: map[int64]*api.Summary{3: {TotalCount: 2}},
	}
	m := loggedInModel(t, gw)

	// Upload activates dataset 7; its chart fetch stays in flight.
	m, staleCmd := update(t, m, uploadDoneMsg{ds: &api.Dataset{ID: 7, Name: "a.csv"}})

	// The user selects dataset 3 from history before 7's chart lands.
	m.ws.SetHistory([]api.HistoryEntry{{ID: 3, Name: "b.csv"}})
	m.historySel = 0
	m, freshCmd := press(t, m, "enter")

	// 7's chart arrives late: it must be ignored.
	m, _ = update(t, m, pick[chartMsg](t, drain(staleCmd)))
	if st := m.ws.Snapshot(); st.Chart != nil {
		t.Fatalf("stale chart applied: %+v", st.Chart)
	}

	// 3's chart arrives and takes effect.
	m, _ = update(t, m, pick[chartMsg](t, drain(freshCmd)))
	st := m.ws.Snapshot()
	if st.Chart == nil || st.Chart.Labels[0] != "new" {
		t.Errorf("chart = %+v", st.Chart)
	}
	if st.Active == nil || st.Active.ID != 3 {
		t.Errorf("active = %+v", st.Active)
	}
}

func TestHistorySelectionFetchesSummaryToo(t *testing.T) {
	gw := &fakeGateway{
		charts:    map[int64]*api.ChartData{3: {Labels: []string{"Fan"}, Counts: []int{1}}},
		summaries: map[int64]*api.Summary{3: {TotalCount: 9}},
	}
	m := loggedInModel(t, gw)
	m.ws.SetHistory([]api.HistoryEntry{{ID: 3, Name: "b.csv", RowCount: 9}})

	m, cmd := press(t, m, "enter")
	msgs := drain(cmd)
	m, _ = update(t, m, pick[summaryMsg](t, msgs))

	st := m.ws.Snapshot()
	if st.Active == nil || st.Active.Summary.TotalCount != 9 {
		t.Errorf("summary not applied: %+v", st.Active)
	}
}

func TestReselectingInFlightIdSkipsFetch(t *testing.T) {
	gw := &fakeGateway{}
	m := loggedInModel(t, gw)
	m.ws.SetHistory([]api.HistoryEntry{{ID: 3, Name: "b.csv"}})

	m, first := press(t, m, "enter")
	if first == nil {
		t.Fatal("first selection should fetch")
	}
	m, second := press(t, m, "enter")
	if second != nil {
		t.Error("re-selecting the in-flight id should not fetch again")
	}
}

func TestUnauthorizedCompletionForcesLogout(t *testing.T) {
	gw := &fakeGateway{}
	m := loggedInModel(t, gw)

	m, _ = update(t, m, historyMsg{err: api.ErrUnauthorized})
	if m.screen != screenAuth {
		t.Error("token rejection must return to the auth screen")
	}
	if m.authErr != "Session expired. Please log in again." {
		t.Errorf("authErr = %q", m.authErr)
	}
	if m.ws.Snapshot().Authed {
		t.Error("workspace must be logged out")
	}
	if gw.installed != "" {
		t.Errorf("gateway token not cleared: %q", gw.installed)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	gw := &fakeGateway{}
	m := loggedInModel(t, gw)
	m.ws.SetHistory([]api.HistoryEntry{{ID: 4, Name: "c.csv"}})

	m, _ = press(t, m, "d")
	if !m.confirmDelete || m.deleteTarget != 4 {
		t.Fatalf("confirm state = %v target = %d", m.confirmDelete, m.deleteTarget)
	}

	// Declining leaves everything alone.
	m, _ = press(t, m, "esc")
	if m.confirmDelete || m.deleteTarget != 0 {
		t.Error("decline should reset the confirm state")
	}
	if len(gw.calls) != 0 {
		t.Errorf("gateway called on decline: %v", gw.calls)
	}

	// Confirming issues the delete and, on success, refreshes history.
	m, _ = press(t, m, "d")
	m, cmd := press(t, m, "enter")
	m, cmd = update(t, m, pick[deleteDoneMsg](t, drain(cmd)))
	if len(m.ws.Snapshot().History) != 0 {
		t.Error("deleted entry still in history")
	}
	pick[historyMsg](t, drain(cmd))
}

func TestDeleteFailureRaisesAlert(t *testing.T) {
	gw := &fakeGateway{}
	m := loggedInModel(t, gw)

	m, _ = update(t, m, deleteDoneMsg{id: 4, err: &api.DeleteError{ID: 4, Reason: "Not found."}})
	if m.alert == "" {
		t.Fatal("failed delete must raise an alert")
	}

	// The alert blocks other dashboard keys until dismissed.
	m, _ = press(t, m, "u")
	if m.fileInput.Focused() {
		t.Error("alert should swallow dashboard keys")
	}
	m, _ = press(t, m, "enter")
	if m.alert != "" {
		t.Error("enter should dismiss the alert")
	}
}

func TestUploadFailureShowsReasonInline(t *testing.T) {
	gw := &fakeGateway{}
	m := loggedInModel(t, gw)

	m, _ = update(t, m, uploadDoneMsg{err: &api.UploadError{Reason: "Bad CSV: parse error"}})
	if !m.uploadFailed || !strings.Contains(m.uploadStatus, "Bad CSV") {
		t.Errorf("uploadFailed=%v status=%q", m.uploadFailed, m.uploadStatus)
	}
	if m.alert != "" {
		t.Error("upload failure is inline, not an alert")
	}
}

func TestLogoutKeyClearsSession(t *testing.T) {
	gw := &fakeGateway{}
	m := loggedInModel(t, gw)
	m.ws.SetHistory([]api.HistoryEntry{{ID: 1, Name: "a.csv"}})

	m, _ = press(t, m, "l")
	if m.screen != screenAuth {
		t.Error("logout should return to the auth screen")
	}
	st := m.ws.Snapshot()
	if st.Authed || st.Active != nil || len(st.History) != 0 {
		t.Errorf("workspace not cleared: %+v", st)
	}
	if gw.installed != "" {
		t.Errorf("gateway token not cleared: %q", gw.installed)
	}
}

func TestThemeToggleSurvivesScreens(t *testing.T) {
	gw := &fakeGateway{}
	m := loggedInModel(t, gw)

	if m.ws.Snapshot().Dark {
		t.Fatal("expected light start")
	}
	m, _ = press(t, m, "ctrl+t")
	if !m.ws.Snapshot().Dark {
		t.Error("ctrl+t should switch to dark")
	}

	m, _ = update(t, m, historyMsg{err: api.ErrUnauthorized})
	if !m.ws.Snapshot().Dark {
		t.Error("forced logout must not reset the theme")
	}
}
