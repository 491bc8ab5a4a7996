// Package inspector reads a generated manifest back.
//
// It prints a per-release summary table, resolves the download for a
// platform the way an installer would, and validates files against the
// manifest schema.
package inspector
