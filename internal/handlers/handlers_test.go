package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mauv0809/sales-dashboard/internal/cache"
	"github.com/mauv0809/sales-dashboard/internal/models"
	"github.com/mauv0809/sales-dashboard/internal/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	orders []models.Order
	err    error
	calls  int
}

func (f *fakeSource) FetchOrders(context.Context, time.Time, time.Time) ([]models.Order, error) {
	f.calls++
	return f.orders, f.err
}

type fakeStore struct {
	upserted []models.Order
	err      error
}

func (f *fakeStore) UpsertOrders(_ context.Context, orders []models.Order) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.upserted = append(f.upserted, orders...)
	return len(orders), nil
}

func (f *fakeStore) CountOrders(context.Context) (int, error) { return len(f.upserted), f.err }

func newService(t *testing.T, src report.OrderSource) *report.Service {
	t.Helper()
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)
	return report.NewService(src, cache.NewMemory(), time.Minute, loc, nil)
}

// todaysOrders are dated today in the report zone so the default ranges see them.
func todaysOrders(s *report.Service) []models.Order {
	today := s.Now().Format(time.DateOnly)
	return []models.Order{
		{
			ID: "1", Date: today, Channel: "Shopify", TotalPrice: decimal.NewFromInt(50),
			LineItems: `[{"sku":"A1","name":"Widget","quantity":2,"price":"20.00"},{"sku":"B2","name":"Gadget","quantity":1,"price":"10.00"}]`,
		},
		{
			ID: "2", Date: today, Channel: "Amazon", TotalPrice: decimal.NewFromInt(5),
			LineItems: nil,
		},
	}
}

func serve(h echo.HandlerFunc, method, target string, body string, contentType string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		e.HTTPErrorHandler(err, e.NewContext(req, rec))
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	h := New(newService(t, &fakeSource{}), 20)
	rec := serve(h.Health, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTopProducts(t *testing.T) {
	src := &fakeSource{}
	s := newService(t, src)
	src.orders = todaysOrders(s)
	h := New(s, 20)

	rec := serve(h.TopProducts, http.MethodGet, "/api/products/top?top=1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, float64(1), out["count"])

	data := out["data"].(map[string]any)
	assert.Equal(t, float64(2), data["orders"])
	assert.Equal(t, float64(1), data["skipped_orders"])
	rows := data["rows"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "A1", row["sku"])
	assert.Equal(t, "$40.00", row["revenue"])
	assert.Equal(t, "80.0%", row["percentage"])
}

func TestTopProducts_BadInput(t *testing.T) {
	h := New(newService(t, &fakeSource{}), 20)

	for _, target := range []string{
		"/api/products/top?top=0",
		"/api/products/top?top=101",
		"/api/products/top?top=ten",
		"/api/products/top?period=week",
		"/api/products/top?start=2026-10-05&end=2026-10-01",
	} {
		rec := serve(h.TopProducts, http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, false, decode(t, rec)["success"], target)
	}
}

func TestTopProducts_NoLines(t *testing.T) {
	src := &fakeSource{}
	s := newService(t, src)
	src.orders = todaysOrders(s)[1:]
	h := New(s, 20)

	rec := serve(h.TopProducts, http.MethodGet, "/api/products/top", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, false, out["success"])
	assert.Contains(t, out["message"], "No line items")
}

func TestTopProducts_SourceError(t *testing.T) {
	h := New(newService(t, &fakeSource{err: errors.New("connection refused")}), 20)

	rec := serve(h.TopProducts, http.MethodGet, "/api/products/top", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "connection refused")
}

func TestOverview(t *testing.T) {
	src := &fakeSource{}
	s := newService(t, src)
	src.orders = todaysOrders(s)
	h := New(s, 20)

	rec := serve(h.Overview, http.MethodGet, "/api/overview", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, float64(2), out["count"])

	data := out["data"].(map[string]any)
	today := data["today"].(map[string]any)
	assert.Equal(t, float64(2), today["order_count"])
}

func TestIndex(t *testing.T) {
	src := &fakeSource{}
	s := newService(t, src)
	src.orders = todaysOrders(s)
	h := New(s, 20)

	rec := serve(h.Index, http.MethodGet, "/?period=year&top=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "Dashboard de Ventas")
	assert.Contains(t, body, "<td>A1</td>")
	assert.Contains(t, body, `value="year" checked`)
	assert.Contains(t, body, "1 órdenes con productos ilegibles")
}

func TestIndex_BadTop(t *testing.T) {
	h := New(newService(t, &fakeSource{}), 20)
	rec := serve(h.Index, http.MethodGet, "/?top=500", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIndex_SourceError(t *testing.T) {
	h := New(newService(t, &fakeSource{err: errors.New("boom")}), 20)
	rec := serve(h.Index, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error al cargar las órdenes")
}

func TestRefreshCache(t *testing.T) {
	src := &fakeSource{}
	s := newService(t, src)
	src.orders = todaysOrders(s)
	h := New(s, 20)
	admin := NewAdminHandler(s, nil, nil)
	assert.False(t, admin.CanMirror())

	serve(h.Overview, http.MethodGet, "/api/overview", "", "")
	serve(h.Overview, http.MethodGet, "/api/overview", "", "")
	assert.Equal(t, 1, src.calls)

	rec := serve(admin.RefreshCache, http.MethodPost, "/admin/cache/refresh", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])

	serve(h.Overview, http.MethodGet, "/api/overview", "", "")
	assert.Equal(t, 2, src.calls)

	rec = serve(admin.RefreshCache, http.MethodPost, "/admin/cache/refresh", "", echo.MIMEApplicationForm)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestMirrorOrders(t *testing.T) {
	src := &fakeSource{}
	s := newService(t, src)
	upstream := &fakeSource{orders: todaysOrders(s)}
	store := &fakeStore{}
	admin := NewAdminHandler(s, upstream, store)
	require.True(t, admin.CanMirror())

	rec := serve(admin.MirrorOrders, http.MethodPost, "/admin/ingest/orders", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["count"])
	assert.Len(t, store.upserted, 2)

	rec = serve(admin.MirrorStatus, http.MethodGet, "/admin/ingest/status", "", "")
	assert.JSONEq(t, `{"orders":2}`, rec.Body.String())

	rec = serve(admin.MirrorOrders, http.MethodPost, "/admin/ingest/orders?start=bad", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	store.err = errors.New("disk full")
	rec = serve(admin.MirrorOrders, http.MethodPost, "/admin/ingest/orders", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
