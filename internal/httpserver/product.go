package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_dashboard/internal/dashboard"
	"github.com/Skotchmaster/product_dashboard/internal/models"
	"github.com/Skotchmaster/product_dashboard/internal/service"
	"github.com/Skotchmaster/product_dashboard/internal/transport"
	"github.com/Skotchmaster/product_dashboard/internal/util"
	"github.com/Skotchmaster/product_dashboard/pkg/logging"
	authmw "github.com/Skotchmaster/product_dashboard/pkg/middleware/auth"
)

type ProductHTTP struct {
	Svc      *service.CatalogService
	Sessions *authmw.SessionManager
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	view := viewFromClaims(h.Sessions.Load(c))
	tab := view.ActiveTab
	if raw := c.QueryParam("tab"); raw != "" {
		t, ok := models.ParseTab(raw)
		if !ok {
			l.Warn("get_products_error", "status", 400, "reason", "unknown tab", "tab", raw)
			return echo.NewHTTPError(http.StatusBadRequest, "unknown tab")
		}
		tab = t
	}

	items := h.Svc.List(tab)
	total := len(items)
	meta := map[string]any{
		"tab":   tab,
		"total": total,
	}

	if c.QueryParam("page") != "" || c.QueryParam("size") != "" {
		page := util.ParseIntDefault(c.QueryParam("page"), 1)
		size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
		offset, limit := util.Calculate(page, size)
		start, end := util.Window(total, offset, limit)
		items = items[start:end]

		if page < 1 {
			page = 1
		}
		meta["page"] = page
		meta["size"] = limit
		meta["total_pages"] = (total + limit - 1) / limit
		meta["has_prev"] = page > 1
		meta["has_next"] = offset+limit < total
	}
	if total == 0 {
		meta["empty_state"] = dashboard.EmptyStateFor(tab)
	}

	l.Info("get_products_success", "tab", tab, "total", total)
	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": meta,
	})
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	q := c.QueryParam("q")
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, items, err := h.Svc.SearchProducts(ctx, q, from, limit)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("search_error", "status", 400, "reason", "empty query")
			return echo.NewHTTPError(http.StatusBadRequest, "query is required")
		}
		l.Error("search_error", "status", 500, "reason", "search failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	l.Info("search_success", "total", total)
	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"query": q,
			"total": total,
			"size":  limit,
		},
	})
}

func (h *ProductHTTP) SelectTab(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dashboard.select_tab")

	var req transport.SelectTabRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("select_tab_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	tab, ok := models.ParseTab(req.Tab)
	if !ok {
		l.Warn("select_tab_error", "status", 400, "reason", "unknown tab", "tab", req.Tab)
		return echo.NewHTTPError(http.StatusBadRequest, "unknown tab")
	}

	view, err := h.updateView(c, l, dashboard.SelectTab{Tab: tab})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	tab := viewFromClaims(h.Sessions.Load(c)).ActiveTab
	created, err := h.Svc.CreateProduct(ctx, req, tab)
	if err != nil {
		l.Error("product_create_error", "status", 500, "reason", "cannot save catalog", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save catalog")
	}

	l.Info("create_product_success", "id", created.ID)
	return c.JSON(http.StatusCreated, created)
}

func (h *ProductHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "patch_product")

	id, err := parseID(c)
	if err != nil {
		l.Warn("product_patch_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_patch_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	prod, found, err := h.Svc.PatchProduct(ctx, req, id)
	if err != nil {
		l.Error("product_patch_error", "status", 500, "reason", "cannot save catalog", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save catalog")
	}
	if !found {
		l.Info("patch_product_noop", "id", id)
		return c.NoContent(http.StatusNoContent)
	}

	l.Info("patch_product_success", "id", id)
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHTTP) TogglePublish(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "toggle_publish")

	id, err := parseID(c)
	if err != nil {
		l.Warn("toggle_publish_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	prod, found, err := h.Svc.TogglePublish(ctx, id)
	if err != nil {
		l.Error("toggle_publish_error", "status", 500, "reason", "cannot save catalog", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save catalog")
	}
	if !found {
		l.Info("toggle_publish_noop", "id", id)
		return c.NoContent(http.StatusNoContent)
	}

	l.Info("toggle_publish_success", "id", id, "is_published", prod.IsPublished)
	return c.JSON(http.StatusOK, prod)
}

// RequestDelete stages a record. Nothing is removed until ConfirmDelete.
func (h *ProductHTTP) RequestDelete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "request_delete")

	id, err := parseID(c)
	if err != nil {
		l.Warn("request_delete_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	prod, ok := h.Svc.Get(id)
	if !ok {
		l.Info("request_delete_noop", "id", id)
		return c.NoContent(http.StatusNoContent)
	}

	view, err := h.updateView(c, l, dashboard.DeleteRequested{ID: prod.ID, Name: prod.Name})
	if err != nil {
		return err
	}
	l.Info("request_delete_success", "id", id)
	return c.JSON(http.StatusOK, map[string]any{"pending_delete": view.PendingDelete})
}

func (h *ProductHTTP) ConfirmDelete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "confirm_delete")

	id, staged := viewFromClaims(h.Sessions.Load(c)).Staged()
	if !staged {
		l.Info("confirm_delete_noop")
		return c.NoContent(http.StatusNoContent)
	}

	if _, err := h.Svc.DeleteProduct(ctx, id); err != nil {
		l.Error("product_delete_error", "status", 500, "reason", "cannot save catalog", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save catalog")
	}
	if _, err := h.updateView(c, l, dashboard.DeleteConfirmed{}); err != nil {
		return err
	}

	l.Info("delete_product_success", "id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHTTP) CancelDelete(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cancel_delete")

	if _, err := h.updateView(c, l, dashboard.DeleteCancelled{}); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHTTP) updateView(c echo.Context, l *slog.Logger, ev dashboard.Event) (dashboard.State, error) {
	claims := h.Sessions.Load(c)
	view := dashboard.Reduce(viewFromClaims(claims), ev)
	applyView(claims, view)
	if err := h.Sessions.Save(c, claims); err != nil {
		l.Error("session_save_error", "status", 500, "reason", "cannot sign session", "error", err)
		return view, echo.NewHTTPError(http.StatusInternalServerError, "cannot sign session")
	}
	return view, nil
}

func parseID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
