// Package version exposes build metadata for release-manifest.
//
// Version, Commit and BuildTime are injected with -ldflags "-X ..." and
// default to placeholder values for local builds.
package version
