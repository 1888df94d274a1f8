package httpserver

import (
	"github.com/Skotchmaster/product_dashboard/internal/dashboard"
	"github.com/Skotchmaster/product_dashboard/internal/models"
	"github.com/Skotchmaster/product_dashboard/internal/service"
	"github.com/Skotchmaster/product_dashboard/internal/session"
	"github.com/Skotchmaster/product_dashboard/pkg/tokens"
)

// The session cookie claims are the only place UI state lives between
// requests. These helpers map them to and from the reducer states.

func flowFromClaims(cl *tokens.SessionClaims) service.Flow {
	return service.Flow{
		State:    session.State{Step: session.ParseStep(cl.Step), Identifier: cl.Identifier},
		CodeHash: cl.CodeHash,
	}
}

func applyFlow(cl *tokens.SessionClaims, f service.Flow) {
	cl.Step = string(f.State.Step)
	cl.Identifier = f.State.Identifier
	cl.CodeHash = f.CodeHash
}

func viewFromClaims(cl *tokens.SessionClaims) dashboard.State {
	st := dashboard.Initial()
	if tab, ok := models.ParseTab(cl.Tab); ok {
		st.ActiveTab = tab
	}
	if cl.PendingDeleteID != nil {
		st.PendingDelete = &dashboard.PendingDelete{ID: *cl.PendingDeleteID, Name: cl.PendingDeleteName}
	}
	return st
}

func applyView(cl *tokens.SessionClaims, st dashboard.State) {
	cl.Tab = string(st.ActiveTab)
	cl.PendingDeleteID, cl.PendingDeleteName = nil, ""
	if st.PendingDelete != nil {
		id := st.PendingDelete.ID
		cl.PendingDeleteID = &id
		cl.PendingDeleteName = st.PendingDelete.Name
	}
}
