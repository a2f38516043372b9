package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mauv0809/sales-dashboard/internal/models"
	"github.com/mauv0809/sales-dashboard/internal/report"
)

// OrderStore is the local copy of the orders table.
type OrderStore interface {
	UpsertOrders(ctx context.Context, orders []models.Order) (int, error)
	CountOrders(ctx context.Context) (int, error)
}

// AdminHandler handles cache and mirror maintenance endpoints.
type AdminHandler struct {
	reports  *report.Service
	upstream report.OrderSource
	store    OrderStore
}

// NewAdminHandler creates an admin handler. upstream and store may be nil,
// which disables the mirror endpoints.
func NewAdminHandler(reports *report.Service, upstream report.OrderSource, store OrderStore) *AdminHandler {
	return &AdminHandler{
		reports:  reports,
		upstream: upstream,
		store:    store,
	}
}

// CanMirror reports whether orders can be copied into the local store.
func (h *AdminHandler) CanMirror() bool {
	return h.upstream != nil && h.store != nil
}

// RefreshCache handles POST /admin/cache/refresh
// Drops cached orders so the next request reloads them. Form posts from
// the dashboard are redirected back to it.
func (h *AdminHandler) RefreshCache(c echo.Context) error {
	if err := h.reports.Refresh(c.Request().Context()); err != nil {
		log.Printf("Error refreshing cache: %v", err)
		return c.JSON(http.StatusInternalServerError, APIResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to refresh cache: %v", err),
		})
	}

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationForm) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.JSON(http.StatusOK, APIResponse{Success: true, Message: "Cache refreshed"})
}

// MirrorOrders handles POST /admin/ingest/orders
// Copies the orders processed in a date range from the upstream source
// into the local store.
// Query params:
// - start, end: YYYY-MM-DD (default: first of the month to today)
func (h *AdminHandler) MirrorOrders(c echo.Context) error {
	ctx := c.Request().Context()
	start := time.Now()

	loc := h.reports.Location()
	rng, err := report.ParseDayRange(c.QueryParam("start"), c.QueryParam("end"), report.MonthToDate(h.reports.Now(), loc), loc)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Success: false, Message: err.Error()})
	}
	log.Printf("Starting order mirror for %s..%s", rng.StartDate(), rng.EndDate())

	orders, err := h.upstream.FetchOrders(ctx, rng.From(), rng.To())
	if err != nil {
		log.Printf("Error fetching orders: %v", err)
		return c.JSON(http.StatusInternalServerError, APIResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to fetch orders: %v", err),
		})
	}

	count, err := h.store.UpsertOrders(ctx, orders)
	if err != nil {
		log.Printf("Error upserting orders: %v", err)
		return c.JSON(http.StatusInternalServerError, APIResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to upsert orders: %v", err),
		})
	}

	elapsed := time.Since(start)
	log.Printf("Order mirror complete: %d orders in %v", count, elapsed)

	return c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: fmt.Sprintf("Successfully mirrored %d orders", count),
		Count:   count,
		Elapsed: elapsed.String(),
	})
}

// MirrorStatus handles GET /admin/ingest/status
func (h *AdminHandler) MirrorStatus(c echo.Context) error {
	count, err := h.store.CountOrders(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, APIResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to count orders: %v", err),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"orders": count,
	})
}
