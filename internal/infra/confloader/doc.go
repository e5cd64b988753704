// Package confloader loads configuration for rudis.
//
// It wraps koanf and reads, in increasing priority:
//
//  1. Default values (the target struct as passed in)
//  2. A YAML configuration file
//  3. Environment variables (RUDIS_ prefix)
//  4. Explicit overrides such as command-line flags (Set, LoadMap)
//
// Watcher reports changes to the configuration file so callers can
// re-read it at runtime.
package confloader
