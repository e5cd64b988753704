package benchmark

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/yndnr/rudis-go/internal/server/redisserver"
	"github.com/yndnr/rudis-go/internal/storage/memory"
	"github.com/yndnr/rudis-go/internal/telemetry/logger"
)

// KeyCounts defines the store sizes for benchmarking.
var KeyCounts = []int{10000, 100000, 500000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 10000, 100000}

var benchValue = []byte("0123456789abcdef0123456789abcdef")

func benchKey(i int) string {
	return "key:" + strconv.Itoa(i)
}

// prefillStore stores count keys, each expiring after ttl (0 = never).
func prefillStore(store *memory.Store, count int, ttl time.Duration) {
	for i := 0; i < count; i++ {
		store.Set(benchKey(i), benchValue, ttl)
	}
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs a benchmark function with various store sizes.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}

// startServer runs a server on an ephemeral port until the benchmark ends.
func startServer(b *testing.B) string {
	b.Helper()

	cfg := redisserver.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"

	guard := memory.NewGuard()
	srv := redisserver.New(cfg, guard.Store(), redisserver.WithLogger(logger.Nop()))
	ln, err := srv.Listen()
	if err != nil {
		b.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, ln) }()

	b.Cleanup(func() {
		cancel()
		<-done
		guard.Close()
	})
	return ln.Addr().String()
}
