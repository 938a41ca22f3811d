// Package extractor pulls the team name and logo URL out of a vlr.gg team
// page using goquery selectors.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/team-logo-scraper/internal/crawler"
)

// DefaultBaseURL is the origin used to absolutize root-relative logo paths.
const DefaultBaseURL = "https://www.vlr.gg"

const (
	headingSelector       = "h1.wf-title"
	logoContainerSelector = "div.wf-avatar, div.team-header-logo"
	teamPathMarker        = "/team/"
)

// Extraction failures. Callers treat all of them as "no team here".
var (
	ErrNotTeamPage = errors.New("page has no team heading")
	ErrNoLogo      = errors.New("page has no team logo")
	ErrNoTeamID    = errors.New("source url has no team id")
)

// Extractor implements crawler.Extractor for vlr.gg team pages.
type Extractor struct {
	baseURL string
}

// New returns an Extractor that resolves relative logo paths against
// baseURL. An empty baseURL falls back to DefaultBaseURL.
func New(baseURL string) *Extractor {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Extractor{baseURL: baseURL}
}

// Extract parses body and builds the team record for sourceURL.
func (e *Extractor) Extract(body []byte, sourceURL string) (crawler.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return crawler.Record{}, fmt.Errorf("parse html: %w", err)
	}

	heading := doc.Find(headingSelector).First()
	if heading.Length() == 0 {
		return crawler.Record{}, ErrNotTeamPage
	}
	name := strings.TrimSpace(heading.Text())

	container := doc.Find(logoContainerSelector).First()
	if container.Length() == 0 {
		return crawler.Record{}, ErrNoLogo
	}
	src, ok := container.Find("img").First().Attr("src")
	if !ok {
		return crawler.Record{}, ErrNoLogo
	}

	teamID, ok := TeamIDFromURL(sourceURL)
	if !ok {
		return crawler.Record{}, fmt.Errorf("%w: %s", ErrNoTeamID, sourceURL)
	}

	return crawler.Record{
		TeamID:   teamID,
		TeamName: name,
		LogoURL:  e.NormalizeLogoURL(src),
	}, nil
}

// NormalizeLogoURL makes src absolute: protocol-relative URLs get https,
// paths get the base origin, absolute URLs are returned unchanged.
func (e *Extractor) NormalizeLogoURL(src string) string {
	switch {
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	case hasScheme(src):
		return src
	case strings.HasPrefix(src, "/"):
		return e.baseURL + src
	default:
		return e.baseURL + "/" + src
	}
}

// TeamIDFromURL returns the path segment that follows /team/.
func TeamIDFromURL(raw string) (string, bool) {
	idx := strings.Index(raw, teamPathMarker)
	if idx < 0 {
		return "", false
	}
	rest := raw[idx+len(teamPathMarker):]
	if cut := strings.IndexAny(rest, "/?#"); cut >= 0 {
		rest = rest[:cut]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}

// hasScheme reports whether raw starts with an RFC 3986 scheme followed by
// ':'. The rest of the URL is not validated, so stray '%' escapes are kept.
func hasScheme(raw string) bool {
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9', c == '+', c == '-', c == '.':
			if i == 0 {
				return false
			}
		case c == ':':
			return i > 0
		default:
			return false
		}
	}
	return false
}
