package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/product_dashboard/internal/session"
	"github.com/Skotchmaster/product_dashboard/pkg/events"
)

func newTestSessionService(v CodeVerifier) (*SessionService, *events.Recorder) {
	rec := &events.Recorder{}
	return &SessionService{Verifier: v, Events: rec}, rec
}

func TestSessionService_MockFlow(t *testing.T) {
	t.Parallel()

	svc, rec := newTestSessionService(MockVerifier{})
	ctx := context.Background()

	f, err := svc.Login(ctx, Flow{State: session.Initial()}, "  a@b.co ")
	require.NoError(t, err)
	assert.Equal(t, session.State{Step: session.StepOTP, Identifier: "a@b.co"}, f.State)
	assert.Empty(t, f.CodeHash)

	f, err = svc.Resend(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, session.StepOTP, f.State.Step)

	f, err = svc.Verify(ctx, f, "anything")
	require.NoError(t, err)
	assert.Equal(t, session.State{Step: session.StepDashboard, Identifier: "a@b.co"}, f.State)

	msgs := rec.Messages()
	require.Len(t, msgs, 3)
	types := make([]string, len(msgs))
	for i, m := range msgs {
		assert.Equal(t, events.TopicSession, m.Topic)
		assert.Equal(t, "a@b.co", m.Key)
		types[i] = m.Event.(events.SessionEvent).Type
	}
	assert.Equal(t, []string{events.LoginCompleted, events.OTPResendRequested, events.CodeVerified}, types)
}

func TestSessionService_Login_EmptyIdentifier(t *testing.T) {
	t.Parallel()

	svc, rec := newTestSessionService(MockVerifier{})
	start := Flow{State: session.Initial()}

	for _, id := range []string{"", "   "} {
		f, err := svc.Login(context.Background(), start, id)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, start, f)
	}
	assert.Empty(t, rec.Messages())
}

func TestSessionService_WrongStep(t *testing.T) {
	t.Parallel()

	svc, _ := newTestSessionService(MockVerifier{})
	ctx := context.Background()
	login := Flow{State: session.Initial()}
	otp := Flow{State: session.State{Step: session.StepOTP, Identifier: "x"}}
	dash := Flow{State: session.State{Step: session.StepDashboard, Identifier: "x"}}

	tests := []struct {
		name string
		run  func() (Flow, error)
		want Flow
	}{
		{"verify before login", func() (Flow, error) { return svc.Verify(ctx, login, "1") }, login},
		{"resend before login", func() (Flow, error) { return svc.Resend(ctx, login) }, login},
		{"login during otp", func() (Flow, error) { return svc.Login(ctx, otp, "y") }, otp},
		{"login on dashboard", func() (Flow, error) { return svc.Login(ctx, dash, "y") }, dash},
		{"resend on dashboard", func() (Flow, error) { return svc.Resend(ctx, dash) }, dash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.run()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrWrongStep)
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestSessionService_StrictCode(t *testing.T) {
	t.Parallel()

	codes := []string{"123456", "654321"}
	next := 0
	v := IssuedCodeVerifier{Generate: func() (string, error) {
		c := codes[next]
		next++
		return c, nil
	}}
	svc, _ := newTestSessionService(v)
	ctx := context.Background()

	f, err := svc.Login(ctx, Flow{State: session.Initial()}, "a@b.co")
	require.NoError(t, err)
	require.NotEmpty(t, f.CodeHash)
	assert.NotContains(t, f.CodeHash, "123456")

	_, err = svc.Verify(ctx, f, "000000")
	require.ErrorIs(t, err, ErrInvalidCode)

	f, err = svc.Resend(ctx, f)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, f, "123456")
	require.ErrorIs(t, err, ErrInvalidCode, "resend replaces the first code")

	f, err = svc.Verify(ctx, f, "654321")
	require.NoError(t, err)
	assert.Equal(t, session.StepDashboard, f.State.Step)
	assert.Empty(t, f.CodeHash)
}

func TestSessionService_IssueFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("no entropy")
	svc, rec := newTestSessionService(IssuedCodeVerifier{Generate: func() (string, error) { return "", boom }})
	start := Flow{State: session.Initial()}

	f, err := svc.Login(context.Background(), start, "a@b.co")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, start, f)
	assert.Empty(t, rec.Messages())
}

func TestRandomCode(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		c, err := RandomCode()
		require.NoError(t, err)
		assert.Len(t, c, CodeLength)
		for _, r := range c {
			assert.True(t, r >= '0' && r <= '9', "code %q", c)
		}
	}
}
