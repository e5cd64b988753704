package memory

import (
	"fmt"
	"time"
)

// purgeTask removes expired keys until shutdown. It sleeps until the
// next deadline, or until Set reports an earlier one, and re-evaluates
// on every wake-up regardless of the cause.
func (s *Store) purgeTask() {
	defer close(s.done)

	for !s.isShutdown() {
		when, ok := s.purgeExpired()
		if !ok {
			<-s.wake
			continue
		}

		timer := time.NewTimer(time.Until(when))
		select {
		case <-timer.C:
		case <-s.wake:
		}
		timer.Stop()
	}

	s.logger.Debug("purge background task shut down")
}

// purgeExpired deletes every key whose deadline has passed and returns
// the deadline of the next key still pending, if any.
func (s *Store) purgeExpired() (time.Time, bool) {
	s.mu.Lock()

	if s.shutdown {
		s.mu.Unlock()
		return time.Time{}, false
	}

	now := time.Now()
	removed := 0
	var next time.Time
	pending := false

	for {
		exp, ok := s.expirations.Min()
		if !ok {
			break
		}
		if exp.at.After(now) {
			next, pending = exp.at, true
			break
		}

		s.expirations.DeleteMin()
		e, ok := s.entries[exp.key]
		if !ok || e.id != exp.id {
			s.mu.Unlock()
			panic(fmt.Sprintf("memory: expiration record for key %q id %d has no matching entry", exp.key, exp.id))
		}
		delete(s.entries, exp.key)
		removed++
	}

	s.mu.Unlock()

	if removed > 0 {
		s.metrics.AddExpired(removed)
		s.logger.Debug("purged expired keys", "removed", removed)
	}
	return next, pending
}

func (s *Store) isShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

// shutdownPurgeTask flags shutdown and wakes the task so it exits rather
// than sleeping on a deadline that may never come.
func (s *Store) shutdownPurgeTask() {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	s.notify()
}
