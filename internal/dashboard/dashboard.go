package dashboard

import "github.com/Skotchmaster/product_dashboard/internal/models"

// PendingDelete is the record staged for deletion while the confirmation
// prompt is open.
type PendingDelete struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type State struct {
	ActiveTab     models.Tab     `json:"active_tab"`
	PendingDelete *PendingDelete `json:"pending_delete,omitempty"`
}

func Initial() State {
	return State{ActiveTab: models.TabPublished}
}

type Event interface {
	apply(State) State
}

type SelectTab struct {
	Tab models.Tab
}

func (e SelectTab) apply(s State) State {
	if tab, ok := models.ParseTab(string(e.Tab)); ok {
		s.ActiveTab = tab
	}
	return s
}

// DeleteRequested replaces any previously staged record.
type DeleteRequested struct {
	ID   int64
	Name string
}

func (e DeleteRequested) apply(s State) State {
	s.PendingDelete = &PendingDelete{ID: e.ID, Name: e.Name}
	return s
}

// DeleteConfirmed is raised after the catalog removed the staged record.
type DeleteConfirmed struct{}

func (DeleteConfirmed) apply(s State) State {
	s.PendingDelete = nil
	return s
}

type DeleteCancelled struct{}

func (DeleteCancelled) apply(s State) State {
	s.PendingDelete = nil
	return s
}

func Reduce(s State, ev Event) State {
	if s.ActiveTab == "" {
		s.ActiveTab = models.TabPublished
	}
	if ev == nil {
		return s
	}
	return ev.apply(s)
}

// Staged returns the id waiting for confirmation.
func (s State) Staged() (int64, bool) {
	if s.PendingDelete == nil {
		return 0, false
	}
	return s.PendingDelete.ID, true
}
