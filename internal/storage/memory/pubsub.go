package memory

import (
	"sync"
	"sync/atomic"
)

// Message is one published payload as seen by a subscriber.
// Payload is shared between all receivers and must not be modified.
type Message struct {
	Channel string
	Payload []byte
}

// Subscription receives the messages published to one channel.
type Subscription struct {
	store   *Store
	channel string
	ch      chan Message
	dropped atomic.Uint64
	once    sync.Once
}

// C returns the delivery channel. It is closed by Close.
func (sub *Subscription) C() <-chan Message {
	return sub.ch
}

// Channel returns the channel name.
func (sub *Subscription) Channel() string {
	return sub.channel
}

// Dropped returns how many messages were discarded because the
// subscription queue was full.
func (sub *Subscription) Dropped() uint64 {
	return sub.dropped.Load()
}

// Close deregisters the subscription. Channels left without subscribers
// are removed from the registry.
func (sub *Subscription) Close() {
	sub.once.Do(func() {
		s := sub.store
		s.mu.Lock()
		defer s.mu.Unlock()

		if subs, ok := s.pubSub[sub.channel]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(s.pubSub, sub.channel)
			}
		}
		// Publishers only send under s.mu, so closing here is safe.
		close(sub.ch)
	})
}

// Subscribe registers a new subscription on channel.
func (s *Store) Subscribe(channel string) *Subscription {
	sub := &Subscription{
		store:   s,
		channel: channel,
		ch:      make(chan Message, s.subscriberBuffer),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	subs, ok := s.pubSub[channel]
	if !ok {
		subs = make(map[*Subscription]struct{})
		s.pubSub[channel] = subs
	}
	subs[sub] = struct{}{}

	return sub
}

// Publish fans payload out to every current subscriber of channel and
// returns the number of subscribers. Publishing to a channel nobody
// listens on is a no-op that returns zero.
//
// Delivery never blocks: a subscriber whose queue is full misses the
// message.
func (s *Store) Publish(channel string, payload []byte) int {
	data := make([]byte, len(payload))
	copy(data, payload)
	msg := Message{Channel: channel, Payload: data}

	s.mu.Lock()
	subs := s.pubSub[channel]
	receivers := len(subs)
	delivered, dropped := 0, 0
	for sub := range subs {
		select {
		case sub.ch <- msg:
			delivered++
		default:
			sub.dropped.Add(1)
			dropped++
		}
	}
	s.mu.Unlock()

	s.metrics.AddPublished(delivered)
	s.metrics.AddDropped(dropped)
	return receivers
}

// Subscribers returns the number of subscribers on channel.
func (s *Store) Subscribers(channel string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pubSub[channel])
}
