package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mexicoCity(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)
	return loc
}

func testClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	opts = append([]Option{WithRateLimit(1000), WithBackoff(time.Millisecond)}, opts...)
	return NewClient(srv.URL, "secret", "orders_final", mexicoCity(t), opts...)
}

func TestFetchOrders_QueryAndNormalization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/orders_final", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "0-999", r.Header.Get("Range"))
		assert.Equal(t, []string{"gte.2026-10-01T06:00:00Z", "lte.2026-10-02T05:59:59Z"}, r.URL.Query()["processed_at"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"id": 5512345678901, "processed_at": "2026-10-02T03:15:00", "channel_tags": " Amazon ", "total_price": "250.50",
			 "line_items": [{"sku": "X1", "price": "125.25", "quantity": 2}]},
			{"id": "B", "processed_at": "2026-10-01T12:00:00", "channel_tags": null, "total_price": 99.9, "line_items": "[]"},
			{"id": "C", "processed_at": null}
		]`)
	}))
	defer srv.Close()

	loc := mexicoCity(t)
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, loc)
	to := time.Date(2026, 10, 1, 23, 59, 59, 0, loc)

	orders, err := testClient(t, srv).FetchOrders(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "5512345678901", orders[0].ID)
	assert.Equal(t, "2026-10-01", orders[0].Date) // 03:15 UTC is the previous evening in Mexico City
	assert.Equal(t, "Amazon", orders[0].Channel)
	assert.Equal(t, "250.5", orders[0].TotalPrice.String())
	assert.IsType(t, []any{}, orders[0].LineItems)

	assert.Equal(t, DefaultChannel, orders[1].Channel)
	assert.Equal(t, "[]", orders[1].LineItems)
}

func TestFetchRows_Paginates(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		switch r.Header.Get("Range") {
		case "0-1":
			fmt.Fprint(w, `[{"id":"1"},{"id":"2"}]`)
		case "2-3":
			fmt.Fprint(w, `[{"id":"3"}]`)
		default:
			t.Errorf("unexpected range %q", r.Header.Get("Range"))
		}
	}))
	defer srv.Close()

	rows, err := testClient(t, srv, WithPageSize(2)).FetchRows(context.Background(), Range{From: time.Now(), To: time.Now()})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestFetchRows_RangeNotSatisfiableEndsPaging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Range") == "0-1" {
			fmt.Fprint(w, `[{"id":"1"},{"id":"2"}]`)
			return
		}
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
	}))
	defer srv.Close()

	rows, err := testClient(t, srv, WithPageSize(2)).FetchRows(context.Background(), Range{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestFetchRows_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `[{"id":"1"}]`)
	}))
	defer srv.Close()

	rows, err := testClient(t, srv).FetchRows(context.Background(), Range{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestFetchRows_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"message":"relation does not exist"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(t, srv).FetchRows(context.Background(), Range{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "404"))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetchRows_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(t, srv).FetchRows(context.Background(), Range{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all retries failed")
	assert.EqualValues(t, maxAttempts, atomic.LoadInt32(&calls))
}

func TestFetchRows_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(t, srv).FetchRows(ctx, Range{})
	assert.ErrorIs(t, err, context.Canceled)
}
