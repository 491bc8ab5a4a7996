package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/release-manifest/internal/api/releases"
	"github.com/oshokin/release-manifest/internal/config"
	domain "github.com/oshokin/release-manifest/internal/domain/manifest"
	"github.com/oshokin/release-manifest/internal/logger"
	repository "github.com/oshokin/release-manifest/internal/repository/manifest"
)

// maxPages caps pagination in case the API never returns a short page.
const maxPages = 10_000

var (
	// errConfigRequired is returned when Run is called without a configuration.
	errConfigRequired = errors.New("configuration is required")
	// errTooManyPages is returned when pagination does not terminate within maxPages.
	errTooManyPages = errors.New("release listing did not end")
)

// Options contains inputs for the generator entry point.
type Options struct {
	// Config holds the validated run settings.
	Config *config.Config
	// Fetcher overrides the GitHub client, mostly for tests.
	Fetcher releases.Fetcher
}

// generator runs a single fetch, classify and write pass.
// It is unexported; callers use Run.
type generator struct {
	// cfg holds the run settings.
	cfg *config.Config
	// fetcher returns pages of upstream releases.
	fetcher releases.Fetcher
	// classifier turns upstream releases into manifest entries.
	classifier *domain.Classifier
	// repo writes the manifest.
	repo repository.Repository
}

// Run fetches every release page, builds the manifest and writes it to the configured output.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "generator")

	gen, err := newGenerator(opts)
	if err != nil {
		return fmt.Errorf("initialize generator: %w", err)
	}

	ctx = logger.WithKV(ctx, "repository", gen.cfg.Repository)

	if err = gen.Run(ctx); err != nil {
		return fmt.Errorf("generate manifest: %w", err)
	}

	logger.Info(ctx, "Manifest generated successfully")

	return nil
}

// newGenerator wires the fetcher, classifier and repository from opts.
func newGenerator(opts *Options) (*generator, error) {
	if opts == nil || opts.Config == nil {
		return nil, errConfigRequired
	}

	cfg := opts.Config

	classifier, err := domain.NewClassifier(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, err
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher, err = releases.NewClient(&releases.Options{
			Repository: cfg.Repository,
			Token:      cfg.Token,
			BaseURL:    cfg.BaseURL,
			Timeout:    cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
	}

	return &generator{
		cfg:        cfg,
		fetcher:    fetcher,
		classifier: classifier,
		repo:       repository.NewFileRepository(cfg.Output),
	}, nil
}

// Run collects, filters, validates and saves the manifest.
func (g *generator) Run(ctx context.Context) error {
	logger.InfoKV(ctx, "Listing releases", "per_page", g.cfg.PerPage)

	all, err := Collect(ctx, g.fetcher, g.classifier, g.cfg.PerPage)
	if err != nil {
		return err
	}

	total := len(all)

	if !g.cfg.KeepEmpty {
		all = all.DropEmpty()
		logger.InfoKV(ctx, "Dropped releases without matching files", "dropped", total-len(all))
	}

	violations, err := repository.Validate(all)
	if err != nil {
		return err
	}

	if err = repository.AsError(violations); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Saving manifest", "path", g.cfg.Output, "releases", len(all))

	if err = g.repo.Save(ctx, all); err != nil {
		return err
	}

	return nil
}

// Collect requests pages starting at 1 and stops after the first page holding
// fewer than perPage releases. Releases keep the order the API returned them in.
func Collect(
	ctx context.Context,
	fetcher releases.Fetcher,
	classifier *domain.Classifier,
	perPage int,
) (domain.Manifest, error) {
	all := make(domain.Manifest, 0, perPage)

	for page := 1; page <= maxPages; page++ {
		upstream, err := fetcher.FetchPage(ctx, page, perPage)
		if err != nil {
			return nil, err
		}

		for _, release := range upstream {
			all = append(all, classifier.BuildRelease(release))
		}

		logger.DebugKV(ctx, "Fetched releases page", "page", page, "releases", len(upstream))

		if len(upstream) < perPage {
			return all, nil
		}
	}

	return nil, fmt.Errorf("%d pages: %w", maxPages, errTooManyPages)
}
