package csrf

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const ContextKey = "csrf"

type Config struct {
	Disabled bool

	CookieName string
	HeaderName string
	FormField  string

	CookiePath string
	Domain     string
	Secure     bool
	SameSite   http.SameSite
	MaxAge     time.Duration

	// AllowCrossOrigin turns off the Origin/Referer check on unsafe methods.
	AllowCrossOrigin bool

	SkipPaths []string
}

func DefaultConfig() Config {
	return Config{
		CookieName: "XSRF-TOKEN",
		HeaderName: "X-CSRF-Token",
		FormField:  "csrf_token",
		CookiePath: "/",
		SameSite:   http.SameSiteLaxMode,
		MaxAge:     24 * time.Hour,
	}
}

// Middleware wraps echo's double-submit cookie CSRF middleware. Safe methods
// get the token echoed in the response header; unsafe methods must send it
// back in the header or form field and come from the same origin unless
// AllowCrossOrigin is set.
func Middleware(cfg Config) echo.MiddlewareFunc {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.FormField == "" {
		cfg.FormField = def.FormField
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = def.CookiePath
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = def.SameSite
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}

	skip := map[string]struct{}{}
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}
	skipper := func(c echo.Context) bool {
		if cfg.Disabled {
			return true
		}
		_, ok := skip[c.Request().URL.Path]
		return ok
	}

	inner := echomw.CSRFWithConfig(echomw.CSRFConfig{
		Skipper:        skipper,
		TokenLookup:    "header:" + cfg.HeaderName + ",form:" + cfg.FormField,
		ContextKey:     ContextKey,
		CookieName:     cfg.CookieName,
		CookieDomain:   cfg.Domain,
		CookiePath:     cfg.CookiePath,
		CookieMaxAge:   int(cfg.MaxAge.Seconds()),
		CookieSecure:   cfg.Secure,
		CookieHTTPOnly: false,
		CookieSameSite: cfg.SameSite,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		guarded := inner(func(c echo.Context) error {
			if token, ok := c.Get(ContextKey).(string); ok && isSafe(c.Request().Method) {
				c.Response().Header().Set(cfg.HeaderName, token)
			}
			return next(c)
		})

		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}
			req := c.Request()
			if !cfg.AllowCrossOrigin && !isSafe(req.Method) && !sameOrigin(req) {
				return echo.NewHTTPError(http.StatusForbidden, "invalid origin")
			}
			return guarded(c)
		}
	}
}

func isSafe(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		ref := r.Header.Get("Referer")
		if ref == "" {
			return false
		}
		origin = ref
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, schemeOf(r)) && strings.EqualFold(u.Host, r.Host)
}

func schemeOf(r *http.Request) string {
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		return p
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
