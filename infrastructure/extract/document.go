// Package extract reads event records that were already extracted from
// published result pages and stored as JSON or YAML documents.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-scrutineer/internal/domain"
	"github.com/ahrav/go-scrutineer/internal/ports"
)

// DefaultMaxDocumentSize bounds the size of a single source document.
const DefaultMaxDocumentSize = 32 << 20

var extensions = []string{".json", ".yaml", ".yml"}

// DocumentExtractor implements ports.Extractor for event documents on disk.
// Decoding is strict: unknown fields are errors, so a renamed key in a
// producer cannot silently drop data.
type DocumentExtractor struct {
	maxSize int64
}

// Option customizes a DocumentExtractor.
type Option func(*DocumentExtractor)

// WithMaxDocumentSize overrides DefaultMaxDocumentSize.
func WithMaxDocumentSize(n int64) Option {
	return func(e *DocumentExtractor) { e.maxSize = n }
}

// NewDocumentExtractor creates an extractor.
func NewDocumentExtractor(opts ...Option) *DocumentExtractor {
	e := &DocumentExtractor{maxSize: DefaultMaxDocumentSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Supports reports whether the extractor reads files with this path's extension.
func Supports(path string) bool {
	return slices.Contains(extensions, strings.ToLower(filepath.Ext(path)))
}

// Extract implements ports.Extractor.
func (e *DocumentExtractor) Extract(ctx context.Context, source string) (*domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !Supports(source) {
		return nil, ports.NewExtractError(source, ports.ErrUnsupportedFormat)
	}

	path := filepath.Clean(source)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ports.NewExtractError(source, ports.ErrNotFound)
	}
	if err != nil {
		return nil, ports.NewExtractError(source, err)
	}
	if info.Size() > e.maxSize {
		return nil, ports.NewExtractError(source,
			fmt.Errorf("%w: %d bytes exceeds limit of %d", ports.ErrMalformedSource, info.Size(), e.maxSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ports.NewExtractError(source, err)
	}

	event, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, ports.NewExtractError(source, err)
	}
	if event.Name == "" {
		event.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := event.Validate(); err != nil {
		return nil, ports.NewExtractError(source, fmt.Errorf("%w: %w", ports.ErrMalformedSource, err))
	}
	return event, nil
}

// List implements ports.Extractor. It walks dir recursively and returns
// every supported document in lexical order.
func (e *DocumentExtractor) List(ctx context.Context, dir string) ([]string, error) {
	root := filepath.Clean(dir)
	var sources []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if Supports(path) {
			sources = append(sources, path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ports.NewExtractError(dir, ports.ErrNotFound)
	}
	if err != nil {
		return nil, ports.NewExtractError(dir, err)
	}
	slices.Sort(sources)
	return sources, nil
}

// Decode parses an event document. ext selects the format (".json",
// ".yaml" or ".yml") and the result is normalized: competitions inherit the
// event's date, organizer and hosting club when they carry none, a
// competition without dances gets its style's default set, and rounds are
// numbered in document order.
func Decode(data []byte, ext string) (*domain.Event, error) {
	var event domain.Event
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&event); err != nil {
			return nil, fmt.Errorf("%w: JSON decode failed: %w", ports.ErrMalformedSource, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&event); err != nil {
			return nil, fmt.Errorf("%w: YAML decode failed: %w", ports.ErrMalformedSource, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ports.ErrUnsupportedFormat, ext)
	}
	normalize(&event)
	return &event, nil
}

// Encode renders event in the document format selected by ext. Decode
// reads the result back.
func Encode(event *domain.Event, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return json.MarshalIndent(event, "", "  ")
	case ".yaml", ".yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(event); err != nil {
			return nil, fmt.Errorf("YAML encode failed: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ports.ErrUnsupportedFormat, ext)
	}
}

func normalize(event *domain.Event) {
	for i := range event.Competitions {
		c := &event.Competitions[i]
		if c.Date == nil && event.Date != nil {
			d := *event.Date
			c.Date = &d
		}
		if c.Organizer == nil {
			c.Organizer = event.Organizer
		}
		if c.HostingClub == nil {
			c.HostingClub = event.HostingClub
		}
		if len(c.Dances) == 0 {
			c.Dances = c.Style.DefaultDances()
		}
		domain.SortDances(c.Dances)
		for j := range c.Rounds {
			c.Rounds[j].Order = j
		}
	}
}

var _ ports.Extractor = (*DocumentExtractor)(nil)
