// README: Smoke and load runner against a live tripmate API; prints PASS/FAIL per check.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"tripmate/internal/config"
)

// Config holds the bench settings. Storage addresses come from the same
// environment the API reads; the rest are flags.
type Config struct {
	BaseURL     string
	AuthToken   string
	DSN         string
	RedisAddr   string
	Timeout     time.Duration
	Concurrency int
	Duration    time.Duration
}

func main() {
	app, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	cfg := Config{DSN: app.DB.DSN, RedisAddr: app.Redis.Addr}
	flag.StringVar(&cfg.BaseURL, "base-url", "http://localhost:8080", "API base URL")
	flag.StringVar(&cfg.AuthToken, "token", os.Getenv("TRIPMATE_BENCH_TOKEN"), "Bearer token sent with API calls")
	flag.DurationVar(&cfg.Timeout, "timeout", 2*time.Minute, "Total timeout")
	flag.IntVar(&cfg.Concurrency, "concurrency", 10, "Parallel turns for ordering and load checks")
	flag.DurationVar(&cfg.Duration, "duration", 10*time.Second, "Duration of the load check")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	counts := map[string]int{}
	for _, res := range NewRunner(cfg).RunAll(ctx) {
		counts[res.Status]++
	}
	fmt.Printf("\nPASS=%d FAIL=%d SKIP=%d\n", counts[statusPass], counts[statusFail], counts[statusSkip])
	if counts[statusFail] > 0 {
		os.Exit(1)
	}
}
