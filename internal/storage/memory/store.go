package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/yndnr/rudis-go/internal/telemetry/logger"
	"github.com/yndnr/rudis-go/internal/telemetry/metric"
)

// DefaultSubscriberBuffer is the queue depth of each subscription.
const DefaultSubscriberBuffer = 1024

// btreeDegree is the B-tree node degree for the expiration index.
const btreeDegree = 32

// entry is one stored value. Only the Store ever holds one.
type entry struct {
	id        uint64
	data      []byte
	expiresAt time.Time // zero means no expiration
}

// expiration is a record in the expiration index. Records sort by time
// and then by id, so two keys can share an instant.
type expiration struct {
	at  time.Time
	id  uint64
	key string
}

func expirationLess(a, b expiration) bool {
	if a.at.Equal(b.at) {
		return a.id < b.id
	}
	return a.at.Before(b.at)
}

// Store is the shared key-value state. It is safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	entries     map[string]*entry
	expirations *btree.BTreeG[expiration]
	pubSub      map[string]map[*Subscription]struct{}
	nextID      uint64
	shutdown    bool

	// wake holds at most one pending wake-up for the purge task.
	wake chan struct{}
	// done is closed when the purge task returns.
	done chan struct{}

	strictExpiry     bool
	subscriberBuffer int
	metrics          *metric.Registry
	logger           logger.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithStrictExpiry makes Get treat keys past their deadline as absent
// even before the purge task has removed them.
func WithStrictExpiry(strict bool) Option {
	return func(s *Store) {
		s.strictExpiry = strict
	}
}

// WithSubscriberBuffer sets the per-subscription queue depth.
func WithSubscriberBuffer(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.subscriberBuffer = n
		}
	}
}

// WithMetrics attaches a metrics registry.
func WithMetrics(m *metric.Registry) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// newStore builds a Store without starting its purge task.
func newStore(opts ...Option) *Store {
	s := &Store{
		entries:          make(map[string]*entry),
		expirations:      btree.NewG(btreeDegree, expirationLess),
		pubSub:           make(map[string]map[*Subscription]struct{}),
		wake:             make(chan struct{}, 1),
		done:             make(chan struct{}),
		subscriberBuffer: DefaultSubscriberBuffer,
		logger:           logger.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get returns a copy of the value stored at key.
//
// Unless strict expiry is enabled, a key whose deadline has passed stays
// visible until the purge task removes it.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.strictExpiry && !e.expiresAt.IsZero() && !e.expiresAt.After(time.Now()) {
		return nil, false
	}

	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, true
}

// Set stores value at key, replacing any previous value and expiration.
// A ttl of zero or less stores the key without expiration.
func (s *Store) Set(key string, value []byte, ttl time.Duration) {
	data := make([]byte, len(value))
	copy(data, value)

	s.mu.Lock()

	id := s.nextID
	s.nextID++

	notify := false
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)

		// Only wake the purge task when this key becomes the next one
		// to expire.
		next, ok := s.nextExpirationLocked()
		notify = !ok || next.After(expiresAt)

		s.expirations.ReplaceOrInsert(expiration{at: expiresAt, id: id, key: key})
	}

	prev, had := s.entries[key]
	s.entries[key] = &entry{id: id, data: data, expiresAt: expiresAt}

	if had && !prev.expiresAt.IsZero() {
		if _, ok := s.expirations.Delete(expiration{at: prev.expiresAt, id: prev.id}); !ok {
			s.mu.Unlock()
			panic(fmt.Sprintf("memory: no expiration record for key %q id %d", key, prev.id))
		}
	}

	s.mu.Unlock()

	if notify {
		s.notify()
	}
}

// Stats returns a snapshot of store sizes.
func (s *Store) Stats() metric.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return metric.Stats{
		Keys:           len(s.entries),
		Expirations:    s.expirations.Len(),
		PubSubChannels: len(s.pubSub),
	}
}

func (s *Store) nextExpirationLocked() (time.Time, bool) {
	exp, ok := s.expirations.Min()
	if !ok {
		return time.Time{}, false
	}
	return exp.at, true
}

// notify leaves a wake-up for the purge task. A wake-up that is already
// pending absorbs this one.
func (s *Store) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Guard owns a Store and its purge task. Closing the guard stops the
// task; the Store itself stays readable.
type Guard struct {
	store *Store
	once  sync.Once
}

// NewGuard creates a Store and starts its purge task.
func NewGuard(opts ...Option) *Guard {
	s := newStore(opts...)
	go s.purgeTask()
	return &Guard{store: s}
}

// Store returns the shared store handle.
func (g *Guard) Store() *Store {
	return g.store
}

// Close signals the purge task to exit and waits for it.
func (g *Guard) Close() {
	g.once.Do(func() {
		g.store.shutdownPurgeTask()
		<-g.store.done
	})
}
