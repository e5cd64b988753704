// Package main provides the entry point for rudis-cli.
//
// Usage:
//
//	rudis-cli [--host H] [--port N] [--output text|json|yaml] COMMAND
//	rudis-cli set --expires 60s hello world
//	rudis-cli get hello
//	rudis-cli subscribe news
//
// Without a command, rudis-cli starts interactive mode.
package main
