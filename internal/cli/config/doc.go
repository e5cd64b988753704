// Package config provides the rudis-cli configuration file.
//
// The file lives at ~/.rudis/cli.yaml and holds connection defaults.
// Command-line flags and RUDIS_* environment variables override it.
package config
