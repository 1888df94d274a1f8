package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_dashboard/internal/service"
	"github.com/Skotchmaster/product_dashboard/internal/transport"
	"github.com/Skotchmaster/product_dashboard/pkg/logging"
	authmw "github.com/Skotchmaster/product_dashboard/pkg/middleware/auth"
)

type SessionHTTP struct {
	Svc      *service.SessionService
	Sessions *authmw.SessionManager
}

type sessionResponse struct {
	Step       string `json:"step"`
	Identifier string `json:"identifier,omitempty"`
}

func (h *SessionHTTP) GetSession(c echo.Context) error {
	f := flowFromClaims(h.Sessions.Load(c))
	return c.JSON(http.StatusOK, sessionResponse{Step: string(f.State.Step), Identifier: f.State.Identifier})
}

func (h *SessionHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	claims := h.Sessions.Load(c)
	next, err := h.Svc.Login(ctx, flowFromClaims(claims), req.Identifier)
	if err != nil {
		return sessionError(l, "login_error", err)
	}
	return h.commit(c, l, "login_error", next, http.StatusOK)
}

func (h *SessionHTTP) VerifyCode(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.verify")

	var req transport.VerifyRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("verify_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	next, err := h.Svc.Verify(ctx, flowFromClaims(h.Sessions.Load(c)), req.Code)
	if err != nil {
		return sessionError(l, "verify_error", err)
	}
	return h.commit(c, l, "verify_error", next, http.StatusOK)
}

func (h *SessionHTTP) ResendCode(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.resend")

	next, err := h.Svc.Resend(ctx, flowFromClaims(h.Sessions.Load(c)))
	if err != nil {
		return sessionError(l, "resend_error", err)
	}
	return h.commit(c, l, "resend_error", next, http.StatusAccepted)
}

// Reset drops the cookie, which is what a page reload did to the flow.
func (h *SessionHTTP) Reset(c echo.Context) error {
	h.Sessions.Clear(c)
	logging.FromContext(c.Request().Context()).Info("session_reset")
	return c.NoContent(http.StatusNoContent)
}

func (h *SessionHTTP) commit(c echo.Context, l *slog.Logger, event string, next service.Flow, status int) error {
	claims := h.Sessions.Load(c)
	applyFlow(claims, next)
	if err := h.Sessions.Save(c, claims); err != nil {
		l.Error(event, "status", 500, "reason", "cannot sign session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot sign session")
	}
	return c.JSON(status, sessionResponse{Step: string(next.State.Step), Identifier: next.State.Identifier})
}

func sessionError(l *slog.Logger, event string, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "reason", "identifier is required", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "identifier is required")
	case errors.Is(err, service.ErrWrongStep):
		l.Warn(event, "status", 409, "reason", "wrong step", "error", err)
		return echo.NewHTTPError(http.StatusConflict, "action is not allowed in the current step")
	case errors.Is(err, service.ErrInvalidCode):
		l.Warn(event, "status", 401, "reason", "invalid code")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid code")
	default:
		l.Error(event, "status", 500, "reason", "internal error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
