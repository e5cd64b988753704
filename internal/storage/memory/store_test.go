package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/rudis-go/internal/telemetry/metric"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func newTestGuard(t *testing.T, opts ...Option) *Store {
	t.Helper()
	g := NewGuard(opts...)
	t.Cleanup(g.Close)
	return g.Store()
}

func TestStore_GetMissing(t *testing.T) {
	s := newTestGuard(t)

	if v, ok := s.Get("missing"); ok || v != nil {
		t.Errorf("Get(missing) = %q, %v; want nil, false", v, ok)
	}
}

func TestStore_SetGet(t *testing.T) {
	s := newTestGuard(t)

	s.Set("hello", []byte("world"), 0)

	v, ok := s.Get("hello")
	if !ok || string(v) != "world" {
		t.Fatalf("Get(hello) = %q, %v; want world, true", v, ok)
	}
}

func TestStore_ValuesAreCopied(t *testing.T) {
	s := newTestGuard(t)

	in := []byte("abc")
	s.Set("k", in, 0)
	in[0] = 'X'

	out, _ := s.Get("k")
	if string(out) != "abc" {
		t.Errorf("stored value changed with caller slice: %q", out)
	}
	out[1] = 'Y'
	again, _ := s.Get("k")
	if string(again) != "abc" {
		t.Errorf("stored value changed with returned slice: %q", again)
	}
}

func TestStore_Overwrite(t *testing.T) {
	s := newTestGuard(t)

	s.Set("k", []byte("v1"), 0)
	s.Set("k", []byte("v2"), 0)

	v, _ := s.Get("k")
	if string(v) != "v2" {
		t.Errorf("Get(k) = %q, want v2", v)
	}
	if st := s.Stats(); st.Keys != 1 {
		t.Errorf("Stats().Keys = %d, want 1", st.Keys)
	}
}

func TestStore_TTLExpires(t *testing.T) {
	reg := metric.NewRegistry()
	s := newTestGuard(t, WithMetrics(reg))

	s.Set("k", []byte("v"), 50*time.Millisecond)

	if v, ok := s.Get("k"); !ok || string(v) != "v" {
		t.Fatalf("Get(k) before ttl = %q, %v", v, ok)
	}

	gone := waitFor(t, 2*time.Second, func() bool {
		_, ok := s.Get("k")
		return !ok
	})
	if !gone {
		t.Fatal("key was not evicted after ttl")
	}
	if st := s.Stats(); st.Expirations != 0 || st.Keys != 0 {
		t.Errorf("Stats() = %+v, want empty", st)
	}
	if got := testutil.ToFloat64(reg.KeysExpired); got != 1 {
		t.Errorf("keys_expired_total = %v, want 1", got)
	}
}

func TestStore_OverwriteRetiresExpiration(t *testing.T) {
	s := newTestGuard(t)

	s.Set("k", []byte("v1"), 50*time.Millisecond)
	s.Set("k", []byte("v2"), 0)

	if st := s.Stats(); st.Expirations != 0 {
		t.Fatalf("Stats().Expirations = %d, want 0", st.Expirations)
	}

	time.Sleep(150 * time.Millisecond)

	v, ok := s.Get("k")
	if !ok || string(v) != "v2" {
		t.Errorf("Get(k) = %q, %v; want v2, true", v, ok)
	}
}

func TestStore_OverwriteWithLaterTTL(t *testing.T) {
	s := newTestGuard(t)

	s.Set("k", []byte("v1"), 30*time.Millisecond)
	s.Set("k", []byte("v2"), time.Hour)

	time.Sleep(100 * time.Millisecond)

	if v, ok := s.Get("k"); !ok || string(v) != "v2" {
		t.Errorf("Get(k) = %q, %v; want v2, true", v, ok)
	}
	if st := s.Stats(); st.Expirations != 1 {
		t.Errorf("Stats().Expirations = %d, want 1", st.Expirations)
	}
}

func TestStore_EarlierExpirationWakesTask(t *testing.T) {
	s := newTestGuard(t)

	// The task goes to sleep on the hour-long deadline first.
	s.Set("late", []byte("v"), time.Hour)
	time.Sleep(20 * time.Millisecond)
	s.Set("soon", []byte("v"), 30*time.Millisecond)

	gone := waitFor(t, 2*time.Second, func() bool {
		_, ok := s.Get("soon")
		return !ok
	})
	if !gone {
		t.Fatal("earlier expiration did not wake the purge task")
	}
	if _, ok := s.Get("late"); !ok {
		t.Error("late key should still be present")
	}
}

func TestStore_SameInstantDifferentKeys(t *testing.T) {
	s := newStore()

	at := time.Now().Add(-time.Millisecond)
	s.mu.Lock()
	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("k%d", i)
		id := s.nextID
		s.nextID++
		s.entries[key] = &entry{id: id, data: []byte("v"), expiresAt: at}
		s.expirations.ReplaceOrInsert(expiration{at: at, id: id, key: key})
	}
	s.mu.Unlock()

	if st := s.Stats(); st.Expirations != 3 {
		t.Fatalf("Stats().Expirations = %d, want 3", st.Expirations)
	}

	if _, pending := s.purgeExpired(); pending {
		t.Error("purgeExpired() reported a pending deadline")
	}
	if st := s.Stats(); st.Keys != 0 || st.Expirations != 0 {
		t.Errorf("Stats() = %+v, want empty", st)
	}
}

func TestStore_StaleReadUntilPurge(t *testing.T) {
	s := newStore()

	s.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := s.Get("k"); !ok {
		t.Fatal("expired key should stay visible until purged")
	}

	s.purgeExpired()

	if _, ok := s.Get("k"); ok {
		t.Error("key should be absent after purge")
	}
}

func TestStore_StrictExpiry(t *testing.T) {
	s := newStore(WithStrictExpiry(true))

	s.Set("k", []byte("v"), 10*time.Millisecond)
	if _, ok := s.Get("k"); !ok {
		t.Fatal("key should be visible before its deadline")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := s.Get("k"); ok {
		t.Error("strict expiry should hide the key before purge")
	}
}

func TestStore_PurgeReturnsNextDeadline(t *testing.T) {
	s := newStore()

	s.Set("a", []byte("v"), time.Hour)
	s.Set("b", []byte("v"), time.Minute)

	next, ok := s.purgeExpired()
	if !ok {
		t.Fatal("purgeExpired() should report the next deadline")
	}
	if until := time.Until(next); until > time.Minute || until < 50*time.Second {
		t.Errorf("next deadline in %v, want about 1m", until)
	}
}

func TestStore_SetWakeOnlyForEarlier(t *testing.T) {
	s := newStore()

	s.Set("a", []byte("v"), time.Minute)
	<-s.wake // first expiration always wakes

	s.Set("b", []byte("v"), time.Hour)
	s.Set("c", []byte("v"), 0)
	select {
	case <-s.wake:
		t.Fatal("later or absent ttl should not wake the task")
	default:
	}

	s.Set("d", []byte("v"), time.Second)
	select {
	case <-s.wake:
	default:
		t.Fatal("earlier ttl should wake the task")
	}
}

func TestGuard_CloseStopsTask(t *testing.T) {
	g := NewGuard()
	g.Store().Set("k", []byte("v"), time.Hour)

	done := make(chan struct{})
	go func() {
		g.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() did not stop the purge task")
	}

	// Second close is a no-op.
	g.Close()

	if !g.Store().isShutdown() {
		t.Error("store should report shutdown")
	}
}

func TestStore_Concurrent(t *testing.T) {
	s := newTestGuard(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("k%d", j%10)
				ttl := time.Duration(0)
				if j%3 == 0 {
					ttl = time.Duration(1+j%5) * time.Millisecond
				}
				s.Set(key, []byte("v"), ttl)
				s.Get(key)
			}
		}(i)
	}
	wg.Wait()

	ok := waitFor(t, 2*time.Second, func() bool {
		st := s.Stats()
		return st.Expirations <= st.Keys
	})
	if !ok {
		t.Errorf("Stats() = %+v, expirations must not exceed keys", s.Stats())
	}
}
