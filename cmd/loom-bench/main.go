// Command loom-bench is a benchmark and stress test for the loom engine.
// It builds a large synthetic buffer and measures the cost of common
// operations, to sanity-check that edit and query costs stay near the
// O(log N) the data structures are designed for as buffer size grows.
package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/loomtext/loom"
)

const (
	bufferSize     = 64 << 20 // 64 MB
	smallEditSize  = 16
	markerCount    = 10000
	randomOpsCount = 20000
)

// BenchResult formats one benchmark's outcome the way a throughput report
// should read: duration, op count, and a derived ops/sec when applicable.
type BenchResult struct {
	Name     string
	Duration time.Duration
	Ops      int
}

func (r BenchResult) String() string {
	if r.Ops > 0 {
		opsPerSec := float64(r.Ops) / r.Duration.Seconds()
		return fmt.Sprintf("%-40s %12v  (%d ops, %.0f ops/sec)", r.Name, r.Duration.Round(time.Millisecond), r.Ops, opsPerSec)
	}
	return fmt.Sprintf("%-40s %12v", r.Name, r.Duration.Round(time.Millisecond))
}

func main() {
	fmt.Println("loom Benchmark and Stress Test")
	fmt.Println("===============================")
	fmt.Printf("Buffer size: %d MB\n", bufferSize/(1024*1024))
	fmt.Printf("Go version: %s\n", runtime.Version())
	fmt.Printf("GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
	fmt.Println()

	var results []BenchResult

	fmt.Println("Generating synthetic buffer content...")
	content, genResult := generateContent(bufferSize)
	results = append(results, genResult)
	fmt.Println(genResult)
	fmt.Println()

	engine := loom.New()
	defer engine.Close()

	runBench := func(name string, fn func() BenchResult) {
		fmt.Printf("  %-40s ", name+"...")
		result := fn()
		fmt.Printf("%v\n", result.Duration.Round(time.Millisecond))
		results = append(results, result)
	}

	buf := engine.OpenBuffer("bench", content)

	runBench("random point inserts", func() BenchResult {
		start := time.Now()
		for i := 0; i < randomOpsCount; i++ {
			at := int64(i) % buf.Len()
			at = int64(i*2654435761) % buf.Len()
			if at < 0 {
				at = -at
			}
			_ = buf.Insert(at, make([]byte, smallEditSize))
		}
		return BenchResult{Name: "random point inserts", Duration: time.Since(start), Ops: randomOpsCount}
	})

	runBench("scattered marker insertion", func() BenchResult {
		start := time.Now()
		for i := 0; i < markerCount; i++ {
			at := int64(i*2654435761) % buf.Len()
			if at < 0 {
				at = -at
			}
			buf.AddMarker(loom.Marker{Start: at, End: at, Payload: loom.PositionPayload{}})
		}
		return BenchResult{Name: "scattered marker insertion", Duration: time.Since(start), Ops: markerCount}
	})

	runBench("edit under many markers", func() BenchResult {
		start := time.Now()
		for i := 0; i < 1000; i++ {
			at := buf.Len() / 2
			_ = buf.Insert(at, []byte("x"))
		}
		return BenchResult{Name: "edit under many markers", Duration: time.Since(start), Ops: 1000}
	})

	runBench("line lookups", func() BenchResult {
		start := time.Now()
		for i := 0; i < 5000; i++ {
			_, _, _ = buf.ByteToLine(int64(i*2654435761) % buf.Len())
		}
		return BenchResult{Name: "line lookups", Duration: time.Since(start), Ops: 5000}
	})

	fmt.Println()
	fmt.Println("Summary")
	fmt.Println("-------")
	for _, r := range results {
		fmt.Println(r)
	}
}

func generateContent(size int) ([]byte, BenchResult) {
	start := time.Now()
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		fmt.Printf("Failed to generate content: %v\n", err)
		os.Exit(1)
	}
	// Sprinkle newlines so line indexing has something to do.
	for i := 79; i < len(buf); i += 80 {
		buf[i] = '\n'
	}
	return buf, BenchResult{Name: "generate content", Duration: time.Since(start)}
}
