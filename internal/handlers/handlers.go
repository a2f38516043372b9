package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/mauv0809/sales-dashboard/internal/report"
	"github.com/mauv0809/sales-dashboard/internal/views"
)

// MaxTopN bounds the ranking size a request may ask for.
const MaxTopN = 100

type Handler struct {
	reports     *report.Service
	defaultTopN int
}

func New(reports *report.Service, defaultTopN int) *Handler {
	return &Handler{reports: reports, defaultTopN: defaultTopN}
}

// Render writes a templ component as an HTML response.
func Render(c echo.Context, status int, t templ.Component) error {
	var buf bytes.Buffer
	if err := t.Render(c.Request().Context(), &buf); err != nil {
		return err
	}
	return c.HTMLBlob(status, buf.Bytes())
}

// Health returns application health status
// @Summary Health check
// @Description Returns the health status of the application
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Index renders the dashboard. Query params:
// - start, end: YYYY-MM-DD (default: first of the month to today)
// - period: month or year, for the top products table
// - top: number of products (default from config)
func (h *Handler) Index(c echo.Context) error {
	ctx := c.Request().Context()
	loc := h.reports.Location()
	now := h.reports.Now()

	rng, err := report.ParseDayRange(c.QueryParam("start"), c.QueryParam("end"), report.MonthToDate(now, loc), loc)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	period := c.QueryParam("period")
	if period == "" {
		period = report.PeriodMonth
	}
	topN, err := h.topN(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	d := views.Dashboard{
		Start:     rng.StartDate(),
		End:       rng.EndDate(),
		Period:    period,
		TopN:      topN,
		Timezone:  loc.String(),
		UpdatedAt: now.Format("2006-01-02 15:04:05"),
	}

	ov, err := h.reports.Overview(ctx, rng)
	if err != nil {
		log.Printf("Error building overview: %v", err)
		d.OverviewError = "Error al cargar las órdenes: " + err.Error()
	}
	d.Overview = ov

	// The products table covers the chosen period within the loaded range.
	periodRange, err := report.PeriodRange(period, now, loc)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	productsRange, ok := intersect(rng, periodRange)
	if !ok {
		d.ProductsNotice = "No hay datos para el período seleccionado"
		return Render(c, http.StatusOK, views.Index(d))
	}

	tp, err := h.reports.TopProducts(ctx, productsRange, topN)
	switch {
	case errors.Is(err, report.ErrNoLines):
		d.ProductsNotice = "No se pudieron extraer productos de las órdenes. Verifica que la columna 'line_items' contenga datos válidos."
	case err != nil:
		log.Printf("Error ranking products: %v", err)
		d.ProductsNotice = "Error al procesar productos: " + err.Error()
	case len(tp.Products) == 0:
		d.ProductsNotice = "No hay datos para el período seleccionado"
	default:
		d.Products = tp
	}

	return Render(c, http.StatusOK, views.Index(d))
}

// topN reads the "top" query param, defaulting to the configured size.
func (h *Handler) topN(c echo.Context) (int, error) {
	raw := c.QueryParam("top")
	if raw == "" {
		return h.defaultTopN, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > MaxTopN {
		return 0, errors.New("top must be an integer between 1 and 100")
	}
	return n, nil
}

// intersect returns the overlap of two day ranges.
func intersect(a, b report.Range) (report.Range, bool) {
	start, end := a.Start, a.End
	if b.Start.After(start) {
		start = b.Start
	}
	if b.End.Before(end) {
		end = b.End
	}
	if end.Before(start) {
		return report.Range{}, false
	}
	return report.Range{Start: start, End: end}, true
}
