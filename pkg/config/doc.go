// Package config loads client configuration from YAML files.
//
// All fields have working defaults; an absent file or empty document
// yields the default configuration. Command-line flags in the cmd
// binaries override file values.
package config
