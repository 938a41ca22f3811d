// Package collyfetcher implements crawler.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/team-logo-scraper/internal/crawler"
)

const defaultTimeout = 10 * time.Second

// Browser-like defaults sent with every team page request.
const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	DefaultAcceptLanguage = "en-US,en;q=0.5"
	DefaultConnection     = "keep-alive"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	// Headers are added to every request in addition to the User-Agent.
	Headers http.Header
	Timeout time.Duration
}

// DefaultHeaders returns the Accept, Accept-Language and Connection headers
// of a desktop browser.
func DefaultHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", DefaultAccept)
	h.Set("Accept-Language", DefaultAcceptLanguage)
	h.Set("Connection", DefaultConnection)
	return h
}

// Fetcher implements crawler.Fetcher using the Colly collector. It is safe
// for concurrent use: each Fetch runs on its own clone of the base collector.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// outcome accumulates what the collector callbacks observed for one visit.
type outcome struct {
	statusCode int
	body       []byte
	responded  bool
	err        error
}

// New builds a Fetcher. The timeout and transport are fixed on the shared
// backend here because clones share it.
func New(cfg Config) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Headers == nil {
		cfg.Headers = DefaultHeaders()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	c := colly.NewCollector(colly.Async(false))
	c.UserAgent = cfg.UserAgent
	c.AllowURLRevisit = true
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())
	c.SetRequestTimeout(cfg.Timeout)

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Fetch executes a single HTTP GET. Every failure is folded into the result.
func (f *Fetcher) Fetch(ctx context.Context, url string) crawler.FetchResult {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return crawler.TransportFailed(url, fmt.Errorf("colly fetch canceled: %w", err), 0)
	}

	var out outcome
	collector := f.baseCollector.Clone()
	collector.Context = ctx
	f.configureCollectorHooks(collector, &out)

	visitErr := collector.Visit(url)
	return out.result(url, visitErr, time.Since(start))
}

func (f *Fetcher) configureCollectorHooks(hooks collectorHooks, out *outcome) {
	hooks.OnRequest(func(r *colly.Request) {
		f.copyHeaders(r)
	})

	hooks.OnResponse(func(r *colly.Response) {
		out.statusCode = r.StatusCode
		out.body = append([]byte(nil), r.Body...)
		out.responded = true
	})

	hooks.OnError(func(r *colly.Response, err error) {
		out.err = err
		if r != nil {
			out.statusCode = r.StatusCode
		}
	})
}

func (f *Fetcher) copyHeaders(r *colly.Request) {
	if f.cfg.Headers == nil || r.Headers == nil {
		return
	}
	for key, values := range f.cfg.Headers {
		r.Headers.Del(key)
		for _, v := range values {
			r.Headers.Add(key, v)
		}
	}
}

func (o outcome) result(url string, visitErr error, dur time.Duration) crawler.FetchResult {
	cause := o.err
	if cause == nil {
		cause = visitErr
	}
	switch {
	case o.statusCode != 0 && o.statusCode != http.StatusOK:
		if cause == nil {
			cause = fmt.Errorf("unexpected status %d", o.statusCode)
		}
		return crawler.NotFound(url, o.statusCode, cause, dur)
	case cause != nil:
		return crawler.TransportFailed(url, fmt.Errorf("colly visit failed: %w", cause), dur)
	case !o.responded:
		return crawler.TransportFailed(url, errors.New("colly visit produced no response"), dur)
	default:
		return crawler.Succeeded(url, o.statusCode, o.body, dur)
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
