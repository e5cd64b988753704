package benchmark

import (
	"context"
	"testing"

	"github.com/yndnr/rudis-go/pkg/client"
)

// BenchmarkServerSetGet benchmarks a SET and GET round trip over TCP.
func BenchmarkServerSetGet(b *testing.B) {
	addr := startServer(b)
	ctx := context.Background()

	cl, err := client.Connect(ctx, addr)
	if err != nil {
		b.Fatalf("Connect() error = %v", err)
	}
	defer cl.Close()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		key := benchKey(i % 1000)
		if err := cl.Set(ctx, key, benchValue); err != nil {
			b.Fatalf("Set() error = %v", err)
		}
		if _, _, err := cl.Get(ctx, key); err != nil {
			b.Fatalf("Get() error = %v", err)
		}
	}
}

// BenchmarkServerGet_Parallel benchmarks GET with one connection per goroutine.
func BenchmarkServerGet_Parallel(b *testing.B) {
	addr := startServer(b)
	ctx := context.Background()

	seed, err := client.Connect(ctx, addr)
	if err != nil {
		b.Fatalf("Connect() error = %v", err)
	}
	for i := range 1000 {
		if err := seed.Set(ctx, benchKey(i), benchValue); err != nil {
			b.Fatalf("Set() error = %v", err)
		}
	}
	seed.Close()

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		cl, err := client.Connect(ctx, addr)
		if err != nil {
			b.Errorf("Connect() error = %v", err)
			return
		}
		defer cl.Close()

		i := 0
		for pb.Next() {
			if _, _, err := cl.Get(ctx, benchKey(i%1000)); err != nil {
				b.Errorf("Get() error = %v", err)
				return
			}
			i++
		}
	})
}
