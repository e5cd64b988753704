// Package shutdown provides graceful shutdown for rudis.
//
// This package handles process termination and drain coordination:
//
//   - Signal handling (SIGINT, SIGTERM) as a cancellable context
//   - Timeout-bounded cleanup hooks
//   - Notifier: one-shot broadcast seen by every subscribed Signal
//   - Drain: tokens held by in-flight work; Wait returns once all are released
//
// Usage:
//
//	ctx, cancel := shutdown.WithSignals(context.Background())
//	defer cancel()
//	<-ctx.Done() // Wait for shutdown signal
package shutdown
