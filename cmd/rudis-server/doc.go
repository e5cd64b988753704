// Package main provides the entry point for rudis-server.
//
// rudis-server is an in-memory key/value store with key expiry and
// publish/subscribe messaging, speaking the Redis wire protocol.
//
// Usage:
//
//	rudis-server [--config FILE] [--port N] [--log-level LEVEL]
//
// Configuration is read from the optional YAML file, then RUDIS_*
// environment variables, then flags. The log level is re-applied when
// the file changes. SIGINT or SIGTERM stops accepting connections and
// waits for open connections to finish.
package main
