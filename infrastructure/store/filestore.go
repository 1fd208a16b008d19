// Package store persists verified competitions on the local filesystem.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-scrutineer/internal/domain"
	"github.com/ahrav/go-scrutineer/internal/ports"
)

// Format is the on-disk encoding of a stored competition.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Valid reports whether f is a supported format.
func (f Format) Valid() bool { return f == FormatJSON || f == FormatYAML }

const (
	// DefaultQuarantineDir is the directory below the root that receives
	// rejected competitions.
	DefaultQuarantineDir = "_quarantine"

	manifestFile = "manifest.json"
	maxNameLen   = 64
)

// ErrInvalidFormat is returned for an unsupported Format.
var ErrInvalidFormat = errors.New("invalid store format")

// FileStore implements ports.Store on a directory tree:
//
//	<root>/<Event>_<Year>/<AgeGroup>_<Level>_<Style>.<format>
//	<root>/_quarantine/<Event>_<Year>/<AgeGroup>_<Level>_<Style>.<format>
//	<root>/_quarantine/<Event>_<Year>/<AgeGroup>_<Level>_<Style>.verdict.json
//
// It also maintains <root>/manifest.json, mapping each event name to its
// directory. Every file is written atomically.
type FileStore struct {
	root       string
	quarantine string
	format     Format

	// mu serializes manifest updates.
	mu sync.Mutex
}

// Option customizes a FileStore.
type Option func(*FileStore)

// WithFormat selects the encoding of competition files.
func WithFormat(f Format) Option { return func(s *FileStore) { s.format = f } }

// WithQuarantineDir places rejected competitions in dir instead of
// <root>/_quarantine.
func WithQuarantineDir(dir string) Option { return func(s *FileStore) { s.quarantine = dir } }

// NewFileStore creates the root directory if needed and returns a store.
func NewFileStore(root string, opts ...Option) (*FileStore, error) {
	s := &FileStore{
		root:       filepath.Clean(root),
		quarantine: filepath.Join(filepath.Clean(root), DefaultQuarantineDir),
		format:     FormatJSON,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.format.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, s.format)
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, ports.NewStoreError(s.root, "NewFileStore", err)
	}
	return s, nil
}

// Root returns the directory accepted competitions are written below.
func (s *FileStore) Root() string { return s.root }

// Save implements ports.Store.
func (s *FileStore) Save(ctx context.Context, event *domain.Event, c *domain.Competition) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := EventDir(event, c)
	path := filepath.Join(s.root, dir, CompetitionFile(c, s.format))

	data, err := s.encode(c)
	if err != nil {
		return "", ports.NewStoreError(path, "Save", err)
	}
	if err := writeAtomic(path, data); err != nil {
		return "", ports.NewStoreError(path, "Save", err)
	}
	if err := s.updateManifest(event.Name, dir); err != nil {
		return "", ports.NewStoreError(filepath.Join(s.root, manifestFile), "Save", err)
	}
	return path, nil
}

// Quarantine implements ports.Store. The verdict is written next to the
// competition as JSON.
func (s *FileStore) Quarantine(
	ctx context.Context,
	event *domain.Event,
	c *domain.Competition,
	v domain.Verdict,
) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(s.quarantine, EventDir(event, c))
	path := filepath.Join(dir, CompetitionFile(c, s.format))

	data, err := s.encode(c)
	if err != nil {
		return "", ports.NewStoreError(path, "Quarantine", err)
	}
	if err := writeAtomic(path, data); err != nil {
		return "", ports.NewStoreError(path, "Quarantine", err)
	}

	verdictPath := filepath.Join(dir, SanitizeName(c.Key())+".verdict.json")
	verdict, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", ports.NewStoreError(verdictPath, "Quarantine", err)
	}
	if err := writeAtomic(verdictPath, verdict); err != nil {
		return "", ports.NewStoreError(verdictPath, "Quarantine", err)
	}
	return path, nil
}

// Load reads a competition file written by Save or Quarantine. The format
// follows the file extension.
func Load(path string) (*domain.Competition, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ports.NewStoreError(path, "Load", ports.ErrNotFound)
	}
	if err != nil {
		return nil, ports.NewStoreError(path, "Load", err)
	}

	var c domain.Competition
	switch filepath.Ext(path) {
	case ".json":
		err = json.Unmarshal(data, &c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &c)
	default:
		err = fmt.Errorf("%w: %s", ErrInvalidFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, ports.NewStoreError(path, "Load", err)
	}
	return &c, nil
}

// Manifest returns the event name to directory mapping.
func (s *FileStore) Manifest() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readManifest()
}

func (s *FileStore) encode(c *domain.Competition) ([]byte, error) {
	if s.format == FormatYAML {
		return yaml.Marshal(c)
	}
	return json.MarshalIndent(c, "", "  ")
}

func (s *FileStore) readManifest() (map[string]string, error) {
	manifest := make(map[string]string)
	data, err := os.ReadFile(filepath.Join(s.root, manifestFile))
	if errors.Is(err, fs.ErrNotExist) {
		return manifest, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("corrupt manifest: %w", err)
	}
	return manifest, nil
}

func (s *FileStore) updateManifest(event, dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	manifest, err := s.readManifest()
	if err != nil {
		return err
	}
	if manifest[event] == dir {
		return nil
	}
	manifest[event] = dir
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.root, manifestFile), data)
}

// EventDir names the directory of an event: the sanitized event name and
// the year of the competition (falling back to the event's date), or
// "unknown" when neither is dated.
func EventDir(event *domain.Event, c *domain.Competition) string {
	year := "unknown"
	switch {
	case c.Date != nil:
		year = strconv.Itoa(c.Date.Year())
	case event.Date != nil:
		year = strconv.Itoa(event.Date.Year())
	}
	return SanitizeName(event.Name) + "_" + year
}

// CompetitionFile names the file of a competition within its event directory.
func CompetitionFile(c *domain.Competition, f Format) string {
	return SanitizeName(c.Key()) + "." + string(f)
}

// SanitizeName keeps letters, digits and '-', replaces every other rune
// with '_' and truncates the result to 64 bytes on a rune boundary.
func SanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	size := 0
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' {
			r = '_'
		}
		n := utf8.RuneLen(r)
		if size+n > maxNameLen {
			break
		}
		size += n
		out = append(out, r)
	}
	return string(out)
}

// writeAtomic writes data to a temporary file in the target directory and
// renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

var _ ports.Store = (*FileStore)(nil)
