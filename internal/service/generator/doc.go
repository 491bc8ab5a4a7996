// Package generator produces the versions manifest.
//
// It pages through the release listing until a short page arrives, turns
// every release into a manifest entry, drops entries without usable files
// and overwrites the output file with the result.
package generator
