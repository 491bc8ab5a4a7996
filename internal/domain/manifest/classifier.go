package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIncludePatterns keeps only archives.
//
//nolint:gochecknoglobals // Read-only defaults shared with config.
var DefaultIncludePatterns = []string{"*.tar.gz", "*.zip"}

// DefaultExcludePatterns drops assets of the project's former name, which do not work.
//
//nolint:gochecknoglobals // Read-only defaults shared with config.
var DefaultExcludePatterns = []string{"pyo3-pack-*"}

// ErrInvalidPattern is returned for a malformed include/exclude glob.
var ErrInvalidPattern = errors.New("invalid asset pattern")

// platformMarkers are checked in order; the first substring found wins.
//
//nolint:gochecknoglobals // Lookup table.
var platformMarkers = []struct {
	marker   string
	platform Platform
}{
	{"darwin", PlatformDarwin},
	{"linux", PlatformLinux},
	{"windows", PlatformWin32},
}

// archMarkers are checked in order. An entry with onlyOn set is honoured
// only for that platform: "i686" is ambiguous outside Windows builds.
//
//nolint:gochecknoglobals // Lookup table.
var archMarkers = []struct {
	marker string
	arch   Arch
	onlyOn Platform
}{
	{"x86_64", ArchX64, ""},
	{"aarch64", ArchARM64, ""},
	{"i686", ArchX86, PlatformWin32},
}

// Classifier turns upstream assets into manifest Files.
// Assets that do not pass the filename filters or carry no recognized
// platform/arch markers are dropped, never reported as errors.
type Classifier struct {
	include []string
	exclude []string
}

// NewClassifier validates the glob patterns and returns a Classifier.
// An empty include list accepts every filename.
func NewClassifier(include, exclude []string) (*Classifier, error) {
	for _, pattern := range append(append([]string(nil), include...), exclude...) {
		if err := ValidatePattern(pattern); err != nil {
			return nil, err
		}
	}

	return &Classifier{
		include: append([]string(nil), include...),
		exclude: append([]string(nil), exclude...),
	}, nil
}

// NewDefaultClassifier returns a Classifier with the default archive filters.
func NewDefaultClassifier() *Classifier {
	return &Classifier{
		include: append([]string(nil), DefaultIncludePatterns...),
		exclude: append([]string(nil), DefaultExcludePatterns...),
	}
}

// ValidatePattern reports whether pattern is a usable asset glob.
func ValidatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" || !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("%q: %w", pattern, ErrInvalidPattern)
	}

	return nil
}

// Accepts reports whether filename passes the include and exclude filters.
func (c *Classifier) Accepts(filename string) bool {
	if len(c.include) > 0 && !matchAny(c.include, filename) {
		return false
	}

	return !matchAny(c.exclude, filename)
}

// Classify builds a File for the asset, or reports false if it is dropped.
func (c *Classifier) Classify(asset UpstreamAsset) (File, bool) {
	if !c.Accepts(asset.Name) {
		return File{}, false
	}

	platform, ok := DetectPlatform(asset.Name)
	if !ok {
		return File{}, false
	}

	arch, ok := DetectArch(asset.Name, platform)
	if !ok {
		return File{}, false
	}

	return File{
		Arch:        arch,
		DownloadURL: asset.DownloadURL,
		Filename:    asset.Name,
		Platform:    platform,
	}, true
}

// DetectPlatform finds the platform marker in filename.
func DetectPlatform(filename string) (Platform, bool) {
	for _, m := range platformMarkers {
		if strings.Contains(filename, m.marker) {
			return m.platform, true
		}
	}

	return "", false
}

// DetectArch finds the architecture marker in filename for the given platform.
func DetectArch(filename string, platform Platform) (Arch, bool) {
	for _, m := range archMarkers {
		if !strings.Contains(filename, m.marker) {
			continue
		}

		if m.onlyOn != "" && m.onlyOn != platform {
			// The first arch marker decides; an ambiguous one drops the asset.
			return "", false
		}

		return m.arch, true
	}

	return "", false
}

// matchAny reports whether name matches one of the patterns.
// Patterns are validated up front, so Match errors cannot occur here.
func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}

	return false
}
