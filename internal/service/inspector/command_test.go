package inspector

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/release-manifest/internal/domain/manifest"
	repository "github.com/oshokin/release-manifest/internal/repository/manifest"
)

func writeManifest(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "versions-manifest.json")
	m := domain.Manifest{
		{
			Version: "1.1.0-beta.1",
			Files: []domain.File{
				{Platform: domain.PlatformLinux, Arch: domain.ArchX64, Filename: "beta-linux.tar.gz", DownloadURL: "https://example.com/beta"},
			},
		},
		{
			Version: "1.0.0",
			Stable:  true,
			Files: []domain.File{
				{Platform: domain.PlatformDarwin, Arch: domain.ArchARM64, Filename: "d.tar.gz", DownloadURL: "https://example.com/d"},
				{Platform: domain.PlatformLinux, Arch: domain.ArchX64, Filename: "l.tar.gz", DownloadURL: "https://example.com/l"},
				{Platform: domain.PlatformWin32, Arch: domain.ArchX86, Filename: "w.zip", DownloadURL: "https://example.com/w"},
			},
		},
	}

	require.NoError(t, repository.NewFileRepository(path).Save(context.Background(), m))

	return path
}

// TestSummarize prints a row per release.
func TestSummarize(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	require.NoError(t, Summarize(context.Background(), writeManifest(t), &out))

	text := out.String()
	require.Contains(t, text, "Version")
	require.Contains(t, text, "1.1.0-beta.1")
	require.Contains(t, text, "darwin/arm64, linux/x64, win32/x86")
}

// TestSummarize_Missing reports a missing manifest.
func TestSummarize_Missing(t *testing.T) {
	t.Parallel()

	err := Summarize(context.Background(), filepath.Join(t.TempDir(), "none.json"), &bytes.Buffer{})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

// TestResolve covers latest, explicit versions and Go-style platform names.
func TestResolve(t *testing.T) {
	t.Parallel()

	path := writeManifest(t)
	ctx := context.Background()

	file, err := Resolve(ctx, &ResolveOptions{ManifestPath: path, Version: LatestVersion, Platform: "linux", Arch: "x64"})
	require.NoError(t, err)
	require.Equal(t, "https://example.com/l", file.DownloadURL)

	file, err = Resolve(ctx, &ResolveOptions{ManifestPath: path, Version: "v1.0.0", Platform: "windows", Arch: "386"})
	require.NoError(t, err)
	require.Equal(t, "w.zip", file.Filename)

	file, err = Resolve(ctx, &ResolveOptions{ManifestPath: path, Version: "1.1.0-beta.1", Platform: "linux", Arch: "amd64"})
	require.NoError(t, err)
	require.Equal(t, "beta-linux.tar.gz", file.Filename)

	_, err = Resolve(ctx, &ResolveOptions{ManifestPath: path, Version: "9.9.9", Platform: "linux", Arch: "x64"})
	require.ErrorIs(t, err, ErrVersionNotFound)

	_, err = Resolve(ctx, &ResolveOptions{ManifestPath: path, Platform: "darwin", Arch: "x64"})
	require.ErrorIs(t, err, ErrNoMatchingFile)

	_, err = Resolve(ctx, &ResolveOptions{ManifestPath: path, Platform: "plan9", Arch: "x64"})
	require.ErrorIs(t, err, ErrUnsupportedPlatform)

	_, err = Resolve(ctx, &ResolveOptions{ManifestPath: path, Platform: "linux", Arch: "riscv64"})
	require.ErrorIs(t, err, ErrUnsupportedPlatform)
}

// TestHostTarget maps the running platform when it is a supported one.
func TestHostTarget(t *testing.T) {
	t.Parallel()

	platform, arch, err := HostTarget()
	if _, ok := goosPlatforms[runtime.GOOS]; !ok {
		require.ErrorIs(t, err, ErrUnsupportedPlatform)
		return
	}

	if _, ok := goarchArchs[runtime.GOARCH]; !ok {
		require.ErrorIs(t, err, ErrUnsupportedPlatform)
		return
	}

	require.NoError(t, err)
	require.Equal(t, goosPlatforms[runtime.GOOS], platform)
	require.Equal(t, goarchArchs[runtime.GOARCH], arch)
}

// TestValidate reports schema violations in a file.
func TestValidate(t *testing.T) {
	t.Parallel()

	violations, err := Validate(context.Background(), writeManifest(t))
	require.NoError(t, err)
	require.Empty(t, violations)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"version": "1", "stable": "yes", "release_url": "", "files": []}]`), 0o600))

	violations, err = Validate(context.Background(), bad)
	require.NoError(t, err)
	require.Len(t, violations, 1)

	_, err = Validate(context.Background(), filepath.Join(t.TempDir(), "none.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
