package inspector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/rodaine/table"

	domain "github.com/oshokin/release-manifest/internal/domain/manifest"
	"github.com/oshokin/release-manifest/internal/logger"
	repository "github.com/oshokin/release-manifest/internal/repository/manifest"
)

// LatestVersion selects the newest stable release in Resolve.
const LatestVersion = "latest"

var (
	// ErrVersionNotFound is returned when the manifest has no such release.
	ErrVersionNotFound = errors.New("version not found in manifest")
	// ErrNoMatchingFile is returned when a release has no file for the platform and arch.
	ErrNoMatchingFile = errors.New("no file for platform")
	// ErrUnsupportedPlatform is returned for a GOOS/GOARCH without a manifest counterpart.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// goosPlatforms maps runtime.GOOS values to manifest platforms.
//
//nolint:gochecknoglobals // Static lookup table.
var goosPlatforms = map[string]domain.Platform{
	"darwin":  domain.PlatformDarwin,
	"linux":   domain.PlatformLinux,
	"windows": domain.PlatformWin32,
}

// goarchArchs maps runtime.GOARCH values to manifest architectures.
//
//nolint:gochecknoglobals // Static lookup table.
var goarchArchs = map[string]domain.Arch{
	"amd64": domain.ArchX64,
	"arm64": domain.ArchARM64,
	"386":   domain.ArchX86,
}

// ResolveOptions select a file from a manifest.
type ResolveOptions struct {
	// ManifestPath is the manifest to read.
	ManifestPath string
	// Version is a release version or LatestVersion.
	Version string
	// Platform is a manifest platform or a GOOS value; empty means the host.
	Platform string
	// Arch is a manifest arch or a GOARCH value; empty means the host.
	Arch string
}

// Summarize prints one table row per release of the manifest at path.
func Summarize(ctx context.Context, path string, w io.Writer) error {
	ctx = logger.WithName(ctx, "inspector")

	m, err := repository.NewFileRepository(path).Load(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	logger.DebugKV(ctx, "Loaded manifest", "path", path, "releases", len(m))

	tbl := table.New("Version", "Stable", "Files", "Platforms").WithWriter(w)

	for _, release := range m {
		tbl.AddRow(
			release.Version,
			strconv.FormatBool(release.Stable),
			len(release.Files),
			strings.Join(release.Platforms(), ", "),
		)
	}

	tbl.Print()

	return nil
}

// Resolve finds the file of a release for a platform and architecture.
func Resolve(ctx context.Context, opts *ResolveOptions) (domain.File, error) {
	ctx = logger.WithName(ctx, "inspector")

	platform, arch, err := resolveTarget(opts.Platform, opts.Arch)
	if err != nil {
		return domain.File{}, err
	}

	m, err := repository.NewFileRepository(opts.ManifestPath).Load(ctx)
	if err != nil {
		return domain.File{}, fmt.Errorf("load %s: %w", opts.ManifestPath, err)
	}

	release, err := findRelease(m, opts.Version)
	if err != nil {
		return domain.File{}, err
	}

	logger.DebugKV(ctx, "Selected release", "version", release.Version, "platform", platform, "arch", arch)

	file, ok := release.FileFor(platform, arch)
	if !ok {
		return domain.File{}, fmt.Errorf("%s %s/%s: %w", release.Version, platform, arch, ErrNoMatchingFile)
	}

	return file, nil
}

// Validate checks the manifest file at path against the schema.
func Validate(ctx context.Context, path string) ([]repository.ValidationError, error) {
	ctx = logger.WithName(ctx, "inspector")

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	violations, err := repository.ValidateBytes(data)
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Validated manifest", "path", path, "violations", len(violations))

	return violations, nil
}

// HostTarget returns the manifest platform and arch of the running binary.
func HostTarget() (domain.Platform, domain.Arch, error) {
	return resolveTarget(runtime.GOOS, runtime.GOARCH)
}

// resolveTarget accepts either manifest names or Go names, defaulting to the host.
func resolveTarget(platformName, archName string) (domain.Platform, domain.Arch, error) {
	if platformName == "" {
		platformName = runtime.GOOS
	}

	if archName == "" {
		archName = runtime.GOARCH
	}

	platform, ok := lookupPlatform(platformName)
	if !ok {
		return "", "", fmt.Errorf("platform %q: %w", platformName, ErrUnsupportedPlatform)
	}

	arch, ok := lookupArch(archName)
	if !ok {
		return "", "", fmt.Errorf("arch %q: %w", archName, ErrUnsupportedPlatform)
	}

	return platform, arch, nil
}

func lookupPlatform(name string) (domain.Platform, bool) {
	for _, p := range domain.Platforms() {
		if string(p) == name {
			return p, true
		}
	}

	p, ok := goosPlatforms[name]

	return p, ok
}

func lookupArch(name string) (domain.Arch, bool) {
	for _, a := range domain.Archs() {
		if string(a) == name {
			return a, true
		}
	}

	a, ok := goarchArchs[name]

	return a, ok
}

// findRelease picks the requested version, treating "" like LatestVersion.
func findRelease(m domain.Manifest, version string) (domain.Release, error) {
	if version == "" || version == LatestVersion {
		release, ok := m.Latest()
		if !ok {
			return domain.Release{}, fmt.Errorf("no stable release: %w", ErrVersionNotFound)
		}

		return release, nil
	}

	release, ok := m.Find(version)
	if !ok {
		return domain.Release{}, fmt.Errorf("%s: %w", version, ErrVersionNotFound)
	}

	return release, nil
}
