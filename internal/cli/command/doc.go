// Package command defines the rudis-cli commands.
//
// Commands are built with urfave/cli/v2. Each one-shot command opens a
// connection, runs one request and prints the reply in the selected
// output format. Running rudis-cli without a command, or with the repl
// command, starts interactive mode on a single connection.
package command
