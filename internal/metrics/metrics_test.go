package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/team-logo-scraper/internal/crawler"
	"github.com/JakeFAU/team-logo-scraper/internal/progress"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	return m, reg
}

func TestNewRejectsNilRegistry(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.ErrorIs(t, err, ErrNilRegistry)
}

func TestNewDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	require.Error(t, err)
}

type stubFetcher struct {
	result crawler.FetchResult
}

func (s stubFetcher) Fetch(context.Context, string) crawler.FetchResult {
	return s.result
}

func TestInstrumentFetcher(t *testing.T) {
	t.Parallel()

	m, _ := newTestMetrics(t)
	ok := InstrumentFetcher(stubFetcher{result: crawler.Succeeded("u", 200, []byte("x"), time.Millisecond)}, m)
	missing := InstrumentFetcher(stubFetcher{result: crawler.NotFound("u", 404, nil, time.Millisecond)}, m)

	res := ok.Fetch(context.Background(), "u")
	assert.Equal(t, crawler.FetchSucceeded, res.Status)
	ok.Fetch(context.Background(), "u")
	missing.Fetch(context.Background(), "u")

	assert.InDelta(t, 2, testutil.ToFloat64(m.fetchesTotal.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.fetchesTotal.WithLabelValues("not_found")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.fetchDuration))
}

func TestInstrumentFetcherNilMetrics(t *testing.T) {
	t.Parallel()

	inner := stubFetcher{}
	assert.Equal(t, crawler.Fetcher(inner), InstrumentFetcher(inner, nil))
}

type stubCheckpointer struct {
	err error
}

func (s stubCheckpointer) Save(context.Context, []crawler.Record) error {
	return s.err
}

func TestInstrumentCheckpointer(t *testing.T) {
	t.Parallel()

	m, _ := newTestMetrics(t)
	records := []crawler.Record{{TeamID: "1"}, {TeamID: "2"}}

	require.NoError(t, InstrumentCheckpointer(stubCheckpointer{}, m).Save(context.Background(), records))
	boom := errors.New("disk full")
	err := InstrumentCheckpointer(stubCheckpointer{err: boom}, m).Save(context.Background(), records)
	require.ErrorIs(t, err, boom)

	assert.InDelta(t, 1, testutil.ToFloat64(m.checkpointsTotal.WithLabelValues("ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.checkpointsTotal.WithLabelValues("error")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.storedRecords), 0)
}

func TestProgressSink(t *testing.T) {
	t.Parallel()

	m, _ := newTestMetrics(t)
	var sink progress.Sink = m
	sink.Update(progress.Snapshot{Completed: 4, Total: 10, Found: 2, Requests: 4})
	require.NoError(t, sink.Close())

	assert.InDelta(t, 2, testutil.ToFloat64(m.teamsFound), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(m.requestsIssued), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(m.candidatesCompleted), 0)
	assert.InDelta(t, 10, testutil.ToFloat64(m.candidatesTotal), 0)
}

func TestMiddlewareAndHandler(t *testing.T) {
	t.Parallel()

	m, reg := newTestMetrics(t)
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/test", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", Handler(reg))

	ts := httptest.NewServer(r)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	resp, err = http.Get(ts.URL + "/missing")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.InDelta(t, 1, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "404")), 0)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer func() {
		if errInner := resp.Body.Close(); errInner != nil {
			t.Log(errInner)
		}
	}()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "teamlogos_http_requests_total"))
}
