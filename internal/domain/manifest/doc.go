// Package manifest contains the core types of the versions manifest.
//
// It defines Release and File (the published records), the upstream input
// shapes they are built from, and the rules that turn one into the other:
// asset classification by filename, version normalization and ordering.
package manifest
