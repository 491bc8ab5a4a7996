// Package releases fetches release listings from the GitHub REST API.
//
// Client wraps go-github, requests one page at a time and converts each
// release into the manifest's upstream types, failing on missing fields.
package releases
