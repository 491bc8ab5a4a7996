// Package config defines the settings of a manifest generation run and
// provides helpers to load, validate and save them.
//
// Values are layered: defaults, an optional YAML file, environment variables
// (REPOSITORY, GITHUB_TOKEN, OUTPUT, GITHUB_API_URL, LOG_LEVEL) and finally
// command-line flags.
package config
