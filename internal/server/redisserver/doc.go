// Package redisserver implements the rudis Redis-protocol server.
//
// The server speaks RESP2 (see pkg/frame) and supports:
//   - GET key
//   - SET key value [EX seconds | PX milliseconds]
//   - PUBLISH channel message
//   - SUBSCRIBE channel [channel ...] and, once subscribed, UNSUBSCRIBE
//
// Connection lifecycle:
//   - An admission gate bounds concurrent connections (default 256).
//     The listener takes a slot before accepting; the handler returns it
//     when it exits, whatever the exit path.
//   - Transient accept errors are retried with exponential backoff from
//     1s, doubling, and become fatal past 32s.
//   - Shutdown is broadcast to every handler; Run returns only after all
//     handlers have exited.
package redisserver
