// Package session holds the login -> code -> dashboard flow as plain state
// and a reducer over it.
package session

import "strings"

type Step string

const (
	StepLogin     Step = "LOGIN"
	StepOTP       Step = "OTP"
	StepDashboard Step = "DASHBOARD"
)

func ParseStep(s string) Step {
	switch Step(strings.ToUpper(strings.TrimSpace(s))) {
	case StepOTP:
		return StepOTP
	case StepDashboard:
		return StepDashboard
	default:
		return StepLogin
	}
}

// State is never persisted. A fresh browser session starts at Initial.
type State struct {
	Step       Step   `json:"step"`
	Identifier string `json:"identifier"`
}

func Initial() State {
	return State{Step: StepLogin}
}

func (s State) Authenticated() bool { return s.Step == StepDashboard }

type Event interface {
	// Accepts reports whether the event applies in the given step.
	Accepts(Step) bool
	apply(State) State
}

// LoginSucceeded is raised once the login form has captured an identifier.
type LoginSucceeded struct {
	Identifier string
}

func (LoginSucceeded) Accepts(s Step) bool { return s == StepLogin }

func (e LoginSucceeded) apply(s State) State {
	s.Identifier = e.Identifier
	s.Step = StepOTP
	return s
}

// CodeVerified moves to the dashboard. Whether Code is right is decided
// before the event is raised.
type CodeVerified struct {
	Code string
}

func (CodeVerified) Accepts(s Step) bool { return s == StepOTP }

func (CodeVerified) apply(s State) State {
	s.Step = StepDashboard
	return s
}

type ResendRequested struct{}

func (ResendRequested) Accepts(s Step) bool { return s == StepOTP }

func (ResendRequested) apply(s State) State { return s }

// Reduce returns the state after ev. Events that do not apply to the
// current step leave the state as it was.
func Reduce(s State, ev Event) State {
	if ev == nil || !ev.Accepts(s.Step) {
		return s
	}
	return ev.apply(s)
}
