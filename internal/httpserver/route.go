package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_dashboard/internal/session"
	authmw "github.com/Skotchmaster/product_dashboard/pkg/middleware/auth"
	"github.com/Skotchmaster/product_dashboard/pkg/middleware/csrf"
)

type Deps struct {
	SessionHandler *SessionHTTP
	ProductHandler *ProductHTTP
	Sessions       *authmw.SessionManager
	CSRF           csrf.Config
	// Ready reports whether the backing storage is reachable.
	Ready func() error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api/v1")

	sess := api.Group("/session")
	sess.GET("", d.SessionHandler.GetSession)
	sess.POST("/login", d.SessionHandler.Login)
	sess.POST("/otp/verify", d.SessionHandler.VerifyCode)
	sess.POST("/otp/resend", d.SessionHandler.ResendCode)
	sess.DELETE("", d.SessionHandler.Reset)

	dash := api.Group("/dashboard",
		d.Sessions.RequireStep(string(session.StepDashboard)),
		csrf.Middleware(d.CSRF),
	)
	dash.GET("/products", d.ProductHandler.GetProducts)
	dash.GET("/products/search", d.ProductHandler.SearchProducts)
	dash.PUT("/tab", d.ProductHandler.SelectTab)
	dash.POST("/products", d.ProductHandler.CreateProduct)
	dash.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	dash.POST("/products/:id/toggle-publish", d.ProductHandler.TogglePublish)
	dash.POST("/products/:id/delete", d.ProductHandler.RequestDelete)
	dash.POST("/delete/confirm", d.ProductHandler.ConfirmDelete)
	dash.POST("/delete/cancel", d.ProductHandler.CancelDelete)
}
