package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	domain "github.com/oshokin/release-manifest/internal/domain/manifest"
)

// DefaultFilePermissions is used for the published manifest, which is meant to be world-readable.
const DefaultFilePermissions = 0o644

// Repository defines persistence operations for the manifest.
type Repository interface {
	Load(ctx context.Context) (domain.Manifest, error)
	Save(ctx context.Context, m domain.Manifest) error
}

// FileRepository stores the manifest as a JSON document on disk.
type FileRepository struct {
	// path is the filesystem location of the manifest.
	path string
}

// ErrNotFound is returned when the manifest file does not exist.
var ErrNotFound = errors.New("manifest not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the manifest location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the manifest from disk.
func (r *FileRepository) Load(_ context.Context) (domain.Manifest, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read manifest file: %w", err)
	}

	return Decode(contents)
}

// Save overwrites the manifest file in place. The write is not atomic:
// a failure part way through can leave a truncated file behind.
func (r *FileRepository) Save(_ context.Context, m domain.Manifest) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}

	if err = os.WriteFile(r.path, data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write manifest file: %w", err)
	}

	return nil
}

// Encode renders the manifest with two-space indentation and sorted keys.
// Non-ASCII and HTML characters are written as-is.
func Encode(m domain.Manifest) ([]byte, error) {
	if m == nil {
		m = domain.Manifest{}
	}

	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(normalize(m)); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	// Encoder terminates the document with a newline; the published file has none.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode parses a manifest document.
func Decode(data []byte) (domain.Manifest, error) {
	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	return normalize(m), nil
}

// normalize replaces nil file lists so they encode as [] rather than null.
func normalize(m domain.Manifest) domain.Manifest {
	for i := range m {
		if m[i].Files == nil {
			m[i].Files = []domain.File{}
		}
	}

	return m
}
