package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mauv0809/sales-dashboard/internal/format"
	"github.com/mauv0809/sales-dashboard/internal/products"
	"github.com/mauv0809/sales-dashboard/internal/report"
)

// APIResponse is the JSON envelope of the API and admin endpoints.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   int    `json:"count,omitempty"`
	Elapsed string `json:"elapsed,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// TopProductsResponse pairs the raw ranking with display-ready rows.
type TopProductsResponse struct {
	*report.TopProducts
	Rows []format.ProductRow `json:"rows"`
}

// Overview handles GET /api/overview
// @Summary Sales overview
// @Description KPIs, channel breakdowns and daily trends for a date range
// @Tags reports
// @Produce json
// @Param start query string false "YYYY-MM-DD, default first of the month"
// @Param end query string false "YYYY-MM-DD, default today"
// @Success 200 {object} APIResponse
// @Router /api/overview [get]
func (h *Handler) Overview(c echo.Context) error {
	loc := h.reports.Location()
	rng, err := report.ParseDayRange(c.QueryParam("start"), c.QueryParam("end"), report.MonthToDate(h.reports.Now(), loc), loc)
	if err != nil {
		return fail(c, err)
	}

	ov, err := h.reports.Overview(c.Request().Context(), rng)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, APIResponse{Success: true, Count: ov.Orders, Data: ov})
}

// TopProducts handles GET /api/products/top
// @Summary Top products
// @Description Products ranked by revenue. An explicit start/end wins over period.
// @Tags reports
// @Produce json
// @Param period query string false "month (default) or year"
// @Param start query string false "YYYY-MM-DD"
// @Param end query string false "YYYY-MM-DD"
// @Param top query int false "1..100"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /api/products/top [get]
func (h *Handler) TopProducts(c echo.Context) error {
	loc := h.reports.Location()
	now := h.reports.Now()

	rng, err := report.PeriodRange(c.QueryParam("period"), now, loc)
	if err != nil {
		return fail(c, err)
	}
	if c.QueryParam("start") != "" || c.QueryParam("end") != "" {
		if rng, err = report.ParseDayRange(c.QueryParam("start"), c.QueryParam("end"), rng, loc); err != nil {
			return fail(c, err)
		}
	}

	topN, err := h.topN(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Success: false, Message: err.Error()})
	}

	tp, err := h.reports.TopProducts(c.Request().Context(), rng, topN)
	if errors.Is(err, report.ErrNoLines) {
		return c.JSON(http.StatusOK, APIResponse{
			Success: false,
			Message: "No line items could be extracted from the orders in range",
			Data:    TopProductsResponse{TopProducts: tp, Rows: []format.ProductRow{}},
		})
	}
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Count:   len(tp.Products),
		Data:    TopProductsResponse{TopProducts: tp, Rows: format.ProductRows(tp.Products)},
	})
}

// fail maps invalid input to 400 and everything else to 500.
func fail(c echo.Context, err error) error {
	if errors.Is(err, products.ErrInvalidArgument) {
		return c.JSON(http.StatusBadRequest, APIResponse{Success: false, Message: err.Error()})
	}
	log.Printf("Error serving %s: %v", c.Path(), err)
	return c.JSON(http.StatusInternalServerError, APIResponse{Success: false, Message: err.Error()})
}
