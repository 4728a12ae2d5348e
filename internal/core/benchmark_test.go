package core

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"github.com/JonMunkholm/crossfilter/internal/facet"
	"github.com/JonMunkholm/crossfilter/internal/ingest"
)

// ============================================================================
// Session Benchmarks
// ============================================================================

func benchSession(b *testing.B, n, indexThreshold int) *Session {
	b.Helper()
	ds := ingest.GenerateSample(n, facet.DefaultSchema())
	s := NewSession("bench", ds, "sample", indexThreshold, NewMetrics(nil))
	if err := s.SetFilter("mod4", []int{1, 3}); err != nil {
		b.Fatal(err)
	}
	if err := s.SetFilter("mod5", []int{0, 2}); err != nil {
		b.Fatal(err)
	}
	return s
}

// BenchmarkSessionResult_Scan measures a full recompute on the scan engine.
func BenchmarkSessionResult_Scan(b *testing.B) {
	s := benchSession(b, 100_000, 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Result()
	}
}

// BenchmarkSessionResult_Index measures the same recompute on the bitmap index.
func BenchmarkSessionResult_Index(b *testing.B) {
	s := benchSession(b, 100_000, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Result()
	}
}

// BenchmarkSessionToggle measures one checkbox click: mutate, then re-read.
func BenchmarkSessionToggle(b *testing.B) {
	s := benchSession(b, 100_000, 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.ToggleValue("mod6", i%6); err != nil {
			b.Fatal(err)
		}
		s.Page(1, DefaultPageSize)
	}
}

// BenchmarkSessionResultParallel measures concurrent readers of one session.
func BenchmarkSessionResultParallel(b *testing.B) {
	s := benchSession(b, 50_000, 0)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			s.Options("")
		}
	})
}

// ============================================================================
// View Benchmarks
// ============================================================================

func BenchmarkPaginate(b *testing.B) {
	rows := sampleRows(100_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Paginate(rows, i%1000+1, DefaultPageSize)
	}
}

func BenchmarkSearchOptions(b *testing.B) {
	options := make([]int, 1000)
	for i := range options {
		options[i] = i
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SearchOptions(options, "7")
	}
}

// ============================================================================
// Load Benchmarks
// ============================================================================

// BenchmarkServiceLoad measures a full CSV load through the limiter.
func BenchmarkServiceLoad(b *testing.B) {
	var buf bytes.Buffer
	buf.WriteString("number,mod3,mod4,mod5,mod6\n")
	for i := 1; i <= 10_000; i++ {
		n := strconv.Itoa(i)
		buf.WriteString(n + "," + strconv.Itoa(i%3) + "," + strconv.Itoa(i%4) + "," + strconv.Itoa(i%5) + "," + strconv.Itoa(i%6) + "\n")
	}
	data := buf.Bytes()

	svc := NewService(Options{SampleSize: 10}, nil, nil)
	ctx := context.Background()
	sess := svc.NewSession(ctx)

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Load(ctx, sess.ID(), "bench.csv", bytes.NewReader(data), int64(len(data))); err != nil {
			b.Fatal(err)
		}
	}
}
