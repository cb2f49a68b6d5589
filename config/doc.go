// Package config turns untyped crawl settings from command-line flags and
// an optional YAML file into a validated, immutable Crawl value.
package config
