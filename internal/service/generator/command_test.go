package generator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/release-manifest/internal/config"
	domain "github.com/oshokin/release-manifest/internal/domain/manifest"
	repository "github.com/oshokin/release-manifest/internal/repository/manifest"
)

// fakeFetcher serves pre-built pages and records the requested page numbers.
type fakeFetcher struct {
	pages    [][]domain.UpstreamRelease
	requests []int
	perPage  []int
	err      error
	errPage  int
}

func (f *fakeFetcher) FetchPage(_ context.Context, page, perPage int) ([]domain.UpstreamRelease, error) {
	f.requests = append(f.requests, page)
	f.perPage = append(f.perPage, perPage)

	if f.err != nil && page == f.errPage {
		return nil, f.err
	}

	if page > len(f.pages) {
		return nil, nil
	}

	return f.pages[page-1], nil
}

func makePage(start, count int, withFiles bool) []domain.UpstreamRelease {
	page := make([]domain.UpstreamRelease, 0, count)

	for i := 0; i < count; i++ {
		tag := fmt.Sprintf("v0.%d.0", start+i)
		release := domain.UpstreamRelease{
			TagName: tag,
			HTMLURL: "https://github.com/PyO3/maturin/releases/tag/" + tag,
			Assets:  []domain.UpstreamAsset{},
		}

		if withFiles {
			release.Assets = append(release.Assets, domain.UpstreamAsset{
				Name:        "maturin-x86_64-unknown-linux-musl.tar.gz",
				DownloadURL: "https://example.com/" + tag,
			})
		}

		page = append(page, release)
	}

	return page
}

// TestCollect_StopsOnShortPage issues exactly three requests for pages of 50, 50 and 10.
func TestCollect_StopsOnShortPage(t *testing.T) {
	t.Parallel()

	const perPage = 50

	fetcher := &fakeFetcher{
		pages: [][]domain.UpstreamRelease{
			makePage(0, perPage, true),
			makePage(perPage, perPage, false),
			makePage(2*perPage, 10, true),
		},
	}

	all, err := Collect(context.Background(), fetcher, domain.NewDefaultClassifier(), perPage)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, fetcher.requests)
	require.Equal(t, []int{perPage, perPage, perPage}, fetcher.perPage)
	require.Len(t, all, 2*perPage+10)

	// Fetch order is preserved.
	require.Equal(t, "0.0.0", all[0].Version)
	require.Equal(t, "0.109.0", all[len(all)-1].Version)

	require.Len(t, all.DropEmpty(), perPage+10)
}

// TestCollect_EmptyLastPage stops when a full page is followed by an empty one.
func TestCollect_EmptyLastPage(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{pages: [][]domain.UpstreamRelease{makePage(0, 2, true)}}

	all, err := Collect(context.Background(), fetcher, domain.NewDefaultClassifier(), 2)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, fetcher.requests)
	require.Len(t, all, 2)
}

// TestCollect_PropagatesError aborts on the first failing page without retrying.
func TestCollect_PropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	fetcher := &fakeFetcher{
		pages:   [][]domain.UpstreamRelease{makePage(0, 2, true), makePage(2, 2, true)},
		err:     boom,
		errPage: 2,
	}

	all, err := Collect(context.Background(), fetcher, domain.NewDefaultClassifier(), 2)
	require.ErrorIs(t, err, boom)
	require.Nil(t, all)
	require.Equal(t, []int{1, 2}, fetcher.requests)
}

// TestRun_WritesManifest drops empty releases by default and writes the rest.
func TestRun_WritesManifest(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "versions-manifest.json")

	cfg := config.Default()
	cfg.Output = output
	cfg.PerPage = 3
	require.NoError(t, config.Validate(cfg))

	fetcher := &fakeFetcher{pages: [][]domain.UpstreamRelease{
		{
			makePage(0, 1, true)[0],
			makePage(1, 1, false)[0],
		},
	}}

	require.NoError(t, Run(context.Background(), &Options{Config: cfg, Fetcher: fetcher}))
	require.Equal(t, []int{1}, fetcher.requests)

	m, err := repository.NewFileRepository(output).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, m, 1)
	require.Equal(t, "0.0.0", m[0].Version)
	require.True(t, m[0].Stable)
	require.Equal(t, []domain.File{{
		Arch:        domain.ArchX64,
		DownloadURL: "https://example.com/v0.0.0",
		Filename:    "maturin-x86_64-unknown-linux-musl.tar.gz",
		Platform:    domain.PlatformLinux,
	}}, m[0].Files)
}

// TestRun_KeepEmpty keeps releases without files when configured.
func TestRun_KeepEmpty(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "versions-manifest.json")

	cfg := config.Default()
	cfg.Output = output
	cfg.KeepEmpty = true
	require.NoError(t, config.Validate(cfg))

	fetcher := &fakeFetcher{pages: [][]domain.UpstreamRelease{makePage(0, 2, false)}}

	require.NoError(t, Run(context.Background(), &Options{Config: cfg, Fetcher: fetcher}))

	m, err := repository.NewFileRepository(output).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, m, 2)
	require.Empty(t, m[0].Files)
	require.NotNil(t, m[0].Files)
}

// TestRun_RequiresConfig rejects missing options.
func TestRun_RequiresConfig(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Run(context.Background(), nil), errConfigRequired)
	require.ErrorIs(t, Run(context.Background(), &Options{}), errConfigRequired)
}
