package collyfetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/team-logo-scraper/internal/crawler"
)

func TestFetchSuccessSendsBrowserHeaders(t *testing.T) {
	t.Parallel()

	headers := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<h1 class="wf-title">Sentinels</h1>`))
	}))
	t.Cleanup(srv.Close)

	f := New(Config{Timeout: time.Second})
	res := f.Fetch(context.Background(), srv.URL+"/team/2")

	require.Equal(t, crawler.FetchSucceeded, res.Status)
	body, ok := res.Body()
	require.True(t, ok)
	assert.Contains(t, string(body), "Sentinels")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	got := <-headers
	assert.Equal(t, DefaultUserAgent, got.Get("User-Agent"))
	assert.Equal(t, DefaultAccept, got.Get("Accept"))
	assert.Equal(t, DefaultAcceptLanguage, got.Get("Accept-Language"))
}

func TestFetchNonOKStatusIsNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/team/404" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	f := New(Config{Timeout: time.Second})

	res := f.Fetch(context.Background(), srv.URL+"/team/404")
	assert.Equal(t, crawler.FetchNotFound, res.Status)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Error(t, res.Err)
	_, ok := res.Body()
	assert.False(t, ok)

	res = f.Fetch(context.Background(), srv.URL+"/team/202")
	assert.Equal(t, crawler.FetchNotFound, res.Status)
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
}

func TestFetchTransportErrorIsAbsorbed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	f := New(Config{Timeout: time.Second})
	res := f.Fetch(context.Background(), addr+"/team/1")

	assert.Equal(t, crawler.FetchTransportError, res.Status)
	assert.Error(t, res.Err)
	_, ok := res.Body()
	assert.False(t, ok)
}

func TestFetchTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	f := New(Config{Timeout: 50 * time.Millisecond})
	res := f.Fetch(context.Background(), srv.URL+"/team/1")
	assert.Equal(t, crawler.FetchTransportError, res.Status)
}

func TestFetchCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := New(Config{}).Fetch(ctx, "http://127.0.0.1:1/team/1")
	assert.Equal(t, crawler.FetchTransportError, res.Status)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestFetchConcurrentUse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	t.Cleanup(srv.Close)

	f := New(Config{Timeout: time.Second})
	results := make(chan crawler.FetchResult, 5)
	for i := 0; i < 5; i++ {
		go func() {
			results <- f.Fetch(context.Background(), srv.URL+"/team/7")
		}()
	}
	for i := 0; i < 5; i++ {
		res := <-results
		body, ok := res.Body()
		require.True(t, ok)
		assert.Equal(t, "/team/7", string(body))
	}
}

func TestConfigureCollectorHooks(t *testing.T) {
	t.Parallel()

	f := New(Config{Headers: http.Header{"X-Trace": {"yes"}}})
	var out outcome

	hooks := &stubHooks{}
	f.configureCollectorHooks(hooks, &out)
	require.NotNil(t, hooks.onRequest)
	require.NotNil(t, hooks.onResponse)
	require.NotNil(t, hooks.onError)

	collyReq := &colly.Request{Headers: &http.Header{}}
	hooks.onRequest(collyReq)
	assert.Equal(t, "yes", collyReq.Headers.Get("X-Trace"))

	hooks.onResponse(&colly.Response{
		StatusCode: http.StatusOK,
		Body:       []byte("body"),
		Request:    &colly.Request{URL: mustParseURL(t, "https://www.vlr.gg/team/1")},
	})
	res := out.result("https://www.vlr.gg/team/1", nil, time.Millisecond)
	body, ok := res.Body()
	require.True(t, ok)
	assert.Equal(t, "body", string(body))

	hooks.onError(&colly.Response{StatusCode: http.StatusForbidden}, errors.New("Forbidden"))
	res = out.result("https://www.vlr.gg/team/1", nil, time.Millisecond)
	assert.Equal(t, crawler.FetchNotFound, res.Status)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestOutcomeWithoutResponse(t *testing.T) {
	t.Parallel()

	res := outcome{}.result("https://www.vlr.gg/team/1", nil, 0)
	assert.Equal(t, crawler.FetchTransportError, res.Status)

	res = outcome{}.result("https://www.vlr.gg/team/1", errors.New("dial tcp: refused"), 0)
	assert.Equal(t, crawler.FetchTransportError, res.Status)
	assert.Contains(t, res.Err.Error(), "refused")
}

func TestCopyHeadersHandlesNilRequestHeaders(t *testing.T) {
	t.Parallel()

	f := New(Config{})
	assert.NotPanics(t, func() {
		f.copyHeaders(&colly.Request{})
	})
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse url %q: %v", raw, err)
	}
	return u
}

type stubHooks struct {
	onRequest  colly.RequestCallback
	onResponse colly.ResponseCallback
	onError    colly.ErrorCallback
}

func (s *stubHooks) OnRequest(cb colly.RequestCallback) {
	s.onRequest = cb
}

func (s *stubHooks) OnResponse(cb colly.ResponseCallback) {
	s.onResponse = cb
}

func (s *stubHooks) OnError(cb colly.ErrorCallback) {
	s.onError = cb
}
