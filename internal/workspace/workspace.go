// Package workspace owns the client-side state machine: auth status,
// the active dataset, its chart data, and the upload history. All
// mutation goes through the transition methods here; presentation code
// reads snapshots and never writes fields directly. Network calls stay
// outside the package — callers run them and feed completions back in,
// so completion order is the caller's problem and staleness is handled
// by the id guard in ApplyChart/ApplySummary.
package workspace

import "github.com/csviz/csviz/internal/api"

// Keyring is the persistence contract the workspace needs: the opaque
// auth token and the theme flag, surviving restarts.
type Keyring interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// Key names in the Keyring.
const (
	tokenKey    = "auth_token"
	darkModeKey = "dark_mode"
)

// State is the authoritative in-memory model. Active and Chart being
// nil means "nothing to render", not an error.
type State struct {
	Authed  bool
	Active  *api.Dataset
	Chart   *api.ChartData
	History []api.HistoryEntry
	Dark    bool
}

// Workspace applies the transition rules over a State and notifies
// observers after each completed transition.
type Workspace struct {
	ring  Keyring
	state State

	// chartTarget tags the dataset id whose chart fetch is still
	// relevant. A completion for any other id is dropped, which is the
	// system's only cancellation mechanism: logical, not physical.
	chartTarget int64

	observers []func(State)
}

// New seeds the machine from the keyring. A previously persisted token
// enters Authenticated optimistically; if it has expired, the first
// authorized call will come back Unauthorized and force a logout.
func New(ring Keyring) *Workspace {
	w := &Workspace{ring: ring}
	if tok, ok := ring.Get(tokenKey); ok && tok != "" {
		w.state.Authed = true
	}
	if v, ok := ring.Get(darkModeKey); ok && v == "true" {
		w.state.Dark = true
	}
	return w
}

// Subscribe registers an observer called after every completed
// transition, never mid-transition.
func (w *Workspace) Subscribe(fn func(State)) {
	w.observers = append(w.observers, fn)
}

func (w *Workspace) notify() {
	for _, fn := range w.observers {
		fn(w.state)
	}
}

// Snapshot returns a copy of the current state. The pointers inside are
// shared read-only caches of server data; callers must not mutate them.
func (w *Workspace) Snapshot() State { return w.state }

// Token returns the persisted auth token, or "" when logged out.
func (w *Workspace) Token() string {
	tok, _ := w.ring.Get(tokenKey)
	return tok
}

// LoginSucceeded persists the token and enters Authenticated with every
// workspace field empty. RegisterSucceeded is the identical transition.
func (w *Workspace) LoginSucceeded(token string) error {
	if err := w.ring.Set(tokenKey, token); err != nil {
		return err
	}
	w.state = State{Authed: true, Dark: w.state.Dark}
	w.chartTarget = 0
	w.notify()
	return nil
}

// Logout clears the persisted token and discards all workspace fields,
// so nothing stale carries over into the next session. The theme flag
// is orthogonal and survives.
func (w *Workspace) Logout() error {
	err := w.ring.Remove(tokenKey)
	w.state = State{Dark: w.state.Dark}
	w.chartTarget = 0
	w.notify()
	return err
}

// HandleUnauthorized is the forced-logout transition raised when any
// authorized call reports a rejected token. Same effect as Logout.
func (w *Workspace) HandleUnauthorized() error { return w.Logout() }

// SetActive makes ds the active dataset and invalidates its chart data.
// This is the entry point of both the upload-succeeded and
// history-selected transitions; the returned id is the one the caller
// must fetch chart data for.
func (w *Workspace) SetActive(ds *api.Dataset) int64 {
	w.state.Active = ds
	w.state.Chart = nil
	w.chartTarget = ds.ID
	w.notify()
	return ds.ID
}

// ActiveFromHistory builds the active dataset from a history entry.
// The summary arrives later via ApplySummary; until then it renders
// empty. History itself is not altered.
func (w *Workspace) ActiveFromHistory(e api.HistoryEntry) int64 {
	return w.SetActive(&api.Dataset{
		ID:         e.ID,
		Name:       e.Name,
		RowCount:   e.RowCount,
		UploadedAt: e.UploadedAt,
	})
}

// ApplyChart installs chart data if id still matches the active
// dataset. A late response for a dataset the user has navigated away
// from reports false and changes nothing.
func (w *Workspace) ApplyChart(id int64, cd *api.ChartData) bool {
	if !w.state.Authed || w.state.Active == nil || w.state.Active.ID != id || w.chartTarget != id {
		return false
	}
	w.state.Chart = cd
	w.notify()
	return true
}

// ApplySummary fills in the active dataset's summary, guarded by the
// same id check as ApplyChart.
func (w *Workspace) ApplySummary(id int64, s *api.Summary) bool {
	if !w.state.Authed || w.state.Active == nil || w.state.Active.ID != id {
		return false
	}
	ds := *w.state.Active
	ds.Summary = *s
	w.state.Active = &ds
	w.notify()
	return true
}

// SetHistory replaces the history list. Refreshes are best-effort: on
// fetch failure the caller simply never calls this.
func (w *Workspace) SetHistory(entries []api.HistoryEntry) {
	if !w.state.Authed {
		return
	}
	w.state.History = entries
	w.notify()
}

// DeleteApplied records a confirmed, successful deletion. Deleting the
// active dataset clears both it and its chart data in this same
// transition; the entry also drops out of the local history list until
// the follow-up refresh lands.
func (w *Workspace) DeleteApplied(id int64) {
	if w.state.Active != nil && w.state.Active.ID == id {
		w.state.Active = nil
		w.state.Chart = nil
		w.chartTarget = 0
	}
	kept := w.state.History[:0]
	for _, e := range w.state.History {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	w.state.History = kept
	w.notify()
}

// ToggleDark flips the theme flag, persists it, and returns the new
// value. Orthogonal to auth state.
func (w *Workspace) ToggleDark() bool {
	w.state.Dark = !w.state.Dark
	v := "false"
	if w.state.Dark {
		v = "true"
	}
	_ = w.ring.Set(darkModeKey, v)
	w.notify()
	return w.state.Dark
}
