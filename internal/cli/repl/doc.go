// Package repl provides the interactive mode of rudis-cli.
//
// Each input line is split into words, honoring single and double
// quotes, and handed to an Executor. Lines are kept in a history file
// at ~/.rudis/history.
package repl
