// Package output formats rudis-cli results.
//
// Supported formats:
//
//   - text: redis-cli style (quoted values, (nil), (integer) n)
//   - json: indented JSON
//   - yaml: YAML documents
package output
