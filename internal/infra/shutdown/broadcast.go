package shutdown

import "sync"

// Notifier broadcasts a single payload-less shutdown event. Closing it
// releases every current and future Signal.
type Notifier struct {
	ch   chan struct{}
	once sync.Once
}

// NewNotifier creates an open notifier.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{})}
}

// Subscribe returns a Signal tied to this notifier.
func (n *Notifier) Subscribe() *Signal {
	return &Signal{done: n.ch}
}

// Close broadcasts shutdown. Extra calls are no-ops.
func (n *Notifier) Close() {
	n.once.Do(func() {
		close(n.ch)
	})
}

// Signal is one listener's view of a Notifier. A Signal is owned by a
// single goroutine.
type Signal struct {
	done     <-chan struct{}
	shutdown bool
}

// Done returns a channel closed on shutdown, for use in select.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// IsShutdown reports whether shutdown has been observed.
func (s *Signal) IsShutdown() bool {
	if s.shutdown {
		return true
	}
	select {
	case <-s.done:
		s.shutdown = true
	default:
	}
	return s.shutdown
}

// Recv blocks until shutdown is broadcast.
func (s *Signal) Recv() {
	if s.shutdown {
		return
	}
	<-s.done
	s.shutdown = true
}
