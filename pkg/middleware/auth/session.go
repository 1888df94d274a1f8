package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_dashboard/pkg/logging"
	"github.com/Skotchmaster/product_dashboard/pkg/tokens"
)

const (
	SessionCookie = "dashboardSession"
	claimsKey     = "session_claims"
)

// SessionManager keeps per-browser state in a signed cookie. A missing,
// expired or tampered cookie reads as a fresh session.
type SessionManager struct {
	Secret []byte
	TTL    time.Duration
	Secure bool
	// InitialStep is the step of a fresh session.
	InitialStep string
	Now         func() time.Time
}

func NewSessionManager(secret []byte, ttl time.Duration, secure bool, initialStep string) *SessionManager {
	return &SessionManager{
		Secret:      secret,
		TTL:         ttl,
		Secure:      secure,
		InitialStep: initialStep,
		Now:         time.Now,
	}
}

// Load returns the claims for this request. Claims already placed in the
// context by RequireStep win over the cookie.
func (m *SessionManager) Load(c echo.Context) *tokens.SessionClaims {
	if claims, ok := c.Get(claimsKey).(*tokens.SessionClaims); ok && claims != nil {
		return claims
	}

	claims := m.read(c)
	c.Set(claimsKey, claims)
	return claims
}

func (m *SessionManager) read(c echo.Context) *tokens.SessionClaims {
	ck, err := c.Cookie(SessionCookie)
	if err != nil || ck.Value == "" {
		return m.fresh()
	}

	claims, err := tokens.SessionClaimsFromToken(ck.Value, m.Secret)
	if err != nil {
		l := logging.FromContext(c.Request().Context())
		if errors.Is(err, jwt.ErrTokenExpired) {
			l.Info("session_expired")
		} else {
			l.Warn("session_invalid", "error", err)
		}
		c.SetCookie(tokens.DeleteCookie(SessionCookie, "/", m.Secure))
		return m.fresh()
	}
	return claims
}

func (m *SessionManager) fresh() *tokens.SessionClaims {
	return &tokens.SessionClaims{Step: m.InitialStep}
}

// Save signs claims with a new expiry and sets the cookie.
func (m *SessionManager) Save(c echo.Context, claims *tokens.SessionClaims) error {
	exp := m.now().Add(m.TTL)
	signed, err := tokens.SignSession(*claims, m.Secret, exp)
	if err != nil {
		return err
	}
	c.SetCookie(tokens.CreateCookie(SessionCookie, signed, "/", exp, m.Secure))
	c.Set(claimsKey, claims)
	return nil
}

func (m *SessionManager) Clear(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(SessionCookie, "/", m.Secure))
	c.Set(claimsKey, m.fresh())
}

// RequireStep rejects requests whose session is not at step. Sessions past
// half of their lifetime get a renewed cookie.
func (m *SessionManager) RequireStep(step string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := m.Load(c)
			if claims.Step != step {
				return echo.NewHTTPError(http.StatusUnauthorized, "login required")
			}

			if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Sub(m.now()) < m.TTL/2 {
				if err := m.Save(c, claims); err != nil {
					logging.FromContext(c.Request().Context()).Warn("session_renew_error", "error", err)
				}
			}
			return next(c)
		}
	}
}

func (m *SessionManager) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}
