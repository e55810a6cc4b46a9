// Package main provides a performance benchmarking tool for the LegacyLens CLI.
// It measures ingest and analysis times across corpora of legacy code,
// running each corpus several times against an in-memory store and a SQLite
// store. The first SQLite run analyzes every file (cold); later runs only
// find duplicates (warm). Results are written as CSV.
//
// Prerequisites:
// - legacylens binary installed and available in PATH
// - Corpus directories under the base directory: perl, tibco, pentaho
//
// Usage: go run benchmark/main.go [corpus-base-dir]
//
//	corpus-base-dir: Directory containing one folder per technology
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the timings for one corpus.
type BenchmarkResult struct {
	Corpus     string
	Files      int
	MemoryTime string
	ColdTime   string
	WarmTime   string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	CorpusBase string
	Timeout    time.Duration
	Workers    int
	MemoryRuns int
	StoreRuns  int
	Corpora    []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [corpus-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		CorpusBase: os.Args[1],
		Timeout:    5 * time.Minute,
		Workers:    8,
		MemoryRuns: 3,
		StoreRuns:  4,
		Corpora:    []string{"perl", "tibco", "pentaho"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the binary and corpus directories exist.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("legacylens"); err != nil {
		return fmt.Errorf("legacylens binary not found in PATH")
	}
	for _, corpus := range config.Corpora {
		path := filepath.Join(config.CorpusBase, corpus)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("corpus %s not found at %s", corpus, path)
		}
	}
	return nil
}

// countFiles returns the number of regular files below dir.
func countFiles(dir string) int {
	n := 0
	_ = filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err == nil && d.Type().IsRegular() {
			n++
		}
		return nil
	})
	return n
}

// runBenchmarks executes the suite for every corpus.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d corpora, %v timeout, %d workers, memory: %d runs, store: %d runs\n",
		len(config.Corpora), config.Timeout, config.Workers, config.MemoryRuns, config.StoreRuns)

	for _, corpus := range config.Corpora {
		path := filepath.Join(config.CorpusBase, corpus)
		fmt.Printf("Benchmarking %s\n", corpus)
		results = append(results, runBenchmarkSuite(config, corpus, path))
	}
	return results
}

// runBenchmarkSuite runs the in-memory and SQLite phases for one corpus.
func runBenchmarkSuite(config BenchmarkConfig, corpus, path string) BenchmarkResult {
	// Phase 1: every run starts from an empty in-memory store
	memTimes := runBenchmark(config, path, map[string]string{
		"LEGACYLENS_DB_BACKEND": "none",
		"LEGACYLENS_CONTENT_FS": "mem",
	}, config.MemoryRuns)

	// Phase 2: one SQLite store shared by every run
	storeDir, err := os.MkdirTemp("", "legacylens-benchmark-*")
	if err != nil {
		fmt.Printf("  Warning: failed to create store dir: %v\n", err)
		return BenchmarkResult{Corpus: corpus, MemoryTime: average(memTimes), ColdTime: "ERROR", WarmTime: "ERROR"}
	}
	defer func() { _ = os.RemoveAll(storeDir) }()

	storeTimes := runBenchmark(config, path, map[string]string{
		"LEGACYLENS_DB_BACKEND":  "sqlite",
		"LEGACYLENS_DB_CONNECT":  filepath.Join(storeDir, "legacylens.db"),
		"LEGACYLENS_CONTENT_DIR": filepath.Join(storeDir, "content"),
	}, config.StoreRuns)

	result := BenchmarkResult{
		Corpus:     corpus,
		Files:      countFiles(path),
		MemoryTime: average(memTimes),
		ColdTime:   "TIMEOUT",
		WarmTime:   "TIMEOUT",
	}
	if len(storeTimes) > 0 {
		result.ColdTime = fmt.Sprintf("%.3fs", storeTimes[0])
		result.WarmTime = average(storeTimes[1:])
	}

	fmt.Printf("  Memory average: %s, Cold time: %s, Warm average: %s\n", result.MemoryTime, result.ColdTime, result.WarmTime)
	return result
}

// average formats the mean of times, or TIMEOUT when there are none.
func average(times []float64) string {
	if len(times) == 0 {
		return "TIMEOUT"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// runBenchmark ingests and analyzes path numRuns times and returns the
// duration of every successful run.
func runBenchmark(config BenchmarkConfig, path string, env map[string]string, numRuns int) []float64 {
	args := []string{"ingest", path, "--analyze", "--workers", fmt.Sprint(config.Workers), "--color", "no"}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("legacylens", args...)
		cmd.Env = os.Environ()
		for k, v := range env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}
	return times
}

// isSuccess checks if command output indicates successful completion.
func isSuccess(output []byte) bool {
	return strings.Contains(string(output), "Ingested ")
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/legacylens_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"corpus", "files", "memory_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write([]string{r.Corpus, fmt.Sprint(r.Files), r.MemoryTime, r.ColdTime, r.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, r := range results {
		fmt.Printf("  %-8s (%4d files): Memory: %s, Cold: %s, Warm: %s\n", r.Corpus, r.Files, r.MemoryTime, r.ColdTime, r.WarmTime)
	}
}
