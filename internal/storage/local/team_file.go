package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/JakeFAU/team-logo-scraper/internal/crawler"
	"github.com/JakeFAU/team-logo-scraper/internal/store"
)

// TeamFile is the JSON array of records that is both the resume input and the
// scrape output. Every Save truncates and rewrites the whole file.
type TeamFile struct {
	path string
}

// NewTeamFile returns a TeamFile bound to path.
func NewTeamFile(path string) (*TeamFile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("output file path is required")
	}
	return &TeamFile{path: path}, nil
}

// Path returns the file location.
func (f *TeamFile) Path() string {
	return f.path
}

// ErrNotArray is returned by Load when the file holds JSON that is not an
// array of records, such as null.
var ErrNotArray = errors.New("snapshot is not a json array")

// Load reads previously discovered teams. A missing file yields an empty
// collection; unreadable or malformed content is returned as an error.
func (f *TeamFile) Load(ctx context.Context) (*store.Teams, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context canceled: %w", err)
	}
	// #nosec G304 -- the path comes from operator configuration.
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return store.NewTeams(), nil
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	var records []crawler.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	if records == nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, ErrNotArray)
	}
	return store.FromRecords(records), nil
}

// Save overwrites the file with records.
func (f *TeamFile) Save(ctx context.Context, records []crawler.Record) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	payload, err := Encode(records)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create dir for %s: %w", f.path, err)
		}
	}
	// #nosec G306 -- the snapshot is a shareable artifact.
	if err := os.WriteFile(f.path, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}

// Encode renders records the way the snapshot file stores them: a JSON array
// indented by two spaces with non-ASCII and HTML characters left unescaped.
func Encode(records []crawler.Record) ([]byte, error) {
	if records == nil {
		records = []crawler.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("marshal records: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
