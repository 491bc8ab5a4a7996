// Package manifest persists the versions manifest.
//
// FileRepository writes the document as indented JSON with sorted keys and
// reads it back. Validate checks documents against an embedded JSON schema.
package manifest
