package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/product_dashboard/internal/session"
	"github.com/Skotchmaster/product_dashboard/pkg/events"
	"github.com/Skotchmaster/product_dashboard/pkg/logging"
)

// Flow is the session state together with what the verifier issued for it.
type Flow struct {
	State    session.State
	CodeHash string
}

type SessionService struct {
	Verifier CodeVerifier
	Events   events.Publisher
}

func (s *SessionService) Login(ctx context.Context, f Flow, identifier string) (Flow, error) {
	l := logging.FromContext(ctx).With("svc", "session.login")

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return f, fmt.Errorf("%w: identifier is required", ErrValidation)
	}
	ev := session.LoginSucceeded{Identifier: identifier}
	if !ev.Accepts(f.State.Step) {
		return f, fmt.Errorf("%w: login from %s", ErrWrongStep, f.State.Step)
	}

	issued, err := s.verifier().Issue(ctx, identifier)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot issue code", "error", err)
		return f, err
	}

	next := Flow{State: session.Reduce(f.State, ev), CodeHash: issued}
	s.publish(ctx, events.LoginCompleted, identifier)
	l.Info("login_success", "identifier", identifier)
	return next, nil
}

func (s *SessionService) Verify(ctx context.Context, f Flow, code string) (Flow, error) {
	l := logging.FromContext(ctx).With("svc", "session.verify")

	ev := session.CodeVerified{Code: code}
	if !ev.Accepts(f.State.Step) {
		return f, fmt.Errorf("%w: verify from %s", ErrWrongStep, f.State.Step)
	}

	ok, err := s.verifier().Verify(ctx, f.CodeHash, code)
	if err != nil {
		return f, err
	}
	if !ok {
		l.Warn("verify_error", "status", 401, "reason", "code mismatch", "identifier", f.State.Identifier)
		return f, ErrInvalidCode
	}

	next := Flow{State: session.Reduce(f.State, ev)}
	s.publish(ctx, events.CodeVerified, f.State.Identifier)
	l.Info("verify_success", "identifier", f.State.Identifier)
	return next, nil
}

// Resend keeps the step. In strict mode a fresh code replaces the old one.
func (s *SessionService) Resend(ctx context.Context, f Flow) (Flow, error) {
	l := logging.FromContext(ctx).With("svc", "session.resend")

	ev := session.ResendRequested{}
	if !ev.Accepts(f.State.Step) {
		return f, fmt.Errorf("%w: resend from %s", ErrWrongStep, f.State.Step)
	}

	issued, err := s.verifier().Issue(ctx, f.State.Identifier)
	if err != nil {
		l.Error("resend_error", "status", 500, "reason", "cannot issue code", "error", err)
		return f, err
	}

	next := Flow{State: session.Reduce(f.State, ev), CodeHash: issued}
	s.publish(ctx, events.OTPResendRequested, f.State.Identifier)
	l.Info("resend_requested", "identifier", f.State.Identifier)
	return next, nil
}

func (s *SessionService) verifier() CodeVerifier {
	if s.Verifier == nil {
		return MockVerifier{}
	}
	return s.Verifier
}

func (s *SessionService) publish(ctx context.Context, typ, identifier string) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishEvent(ctx, events.TopicSession, identifier, events.NewSessionEvent(typ, identifier)); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", events.TopicSession, "type", typ, "error", err)
	}
}
