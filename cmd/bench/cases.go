// README: Bench checks: environment, conversation flow, per-conversation ordering, load.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"tripmate/internal/modules/session"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 60 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	return []TestCase{
		{Name: "Env: Postgres connect", Run: checkPostgres},
		{Name: "Env: Redis connect", Run: checkRedis},
		{Name: "Env: tables exist", Run: checkTables},
		{Name: "API: health", Run: checkHealth},
		{Name: "Flow: create, chat, preferences", Run: checkConversationFlow},
		{Name: "Flow: itinerary prompt needs destination", Run: checkDestinationRequired},
		{Name: "Flow: reset clears preferences", Run: checkReset},
		{Name: "Concurrency: one conversation keeps every turn", Run: checkOrdering},
		{Name: "Perf: preference reads", Run: perfPreferences},
	}
}

func checkPostgres(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: statusSkip, Note: "dsn not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.db.Ping(ctx); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return Result{Status: statusPass}
}

func checkRedis(ctx context.Context, r *Runner) Result {
	if r.redis == nil {
		return Result{Status: statusSkip, Note: "redis not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return Result{Status: statusPass}
}

func checkTables(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: statusSkip, Note: "dsn not configured"}
	}
	for _, table := range []string{"ai_usage", "itineraries"} {
		var exists bool
		err := r.db.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
			table,
		).Scan(&exists)
		if err != nil {
			return Result{Status: statusFail, Note: err.Error()}
		}
		if !exists {
			return Result{Status: statusFail, Note: "missing table: " + table}
		}
	}
	return Result{Status: statusPass}
}

func checkHealth(ctx context.Context, r *Runner) Result {
	start := time.Now()
	status, _, err := r.call(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	if status != http.StatusOK {
		return Result{Status: statusFail, Note: fmt.Sprintf("status=%d", status)}
	}
	return Result{Status: statusPass, Latency: time.Since(start)}
}

func checkConversationFlow(ctx context.Context, r *Runner) Result {
	start := time.Now()
	id, err := r.createConversation(ctx)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	status, _, err := r.call(ctx, http.MethodPost, "/api/conversations/"+id+"/messages",
		map[string]string{"message": "I want to visit goa for 5 days with a budget of ₹50000, love beach and food"})
	if err != nil || status != http.StatusOK {
		return Result{Status: statusFail, Note: fmt.Sprintf("message status=%d err=%v", status, err)}
	}

	var prefs struct {
		Preferences struct {
			Destination string   `json:"destination"`
			Duration    int      `json:"duration"`
			Interests   []string `json:"interests"`
		} `json:"preferences"`
	}
	status, body, err := r.call(ctx, http.MethodGet, "/api/conversations/"+id+"/preferences", nil)
	if err != nil || status != http.StatusOK {
		return Result{Status: statusFail, Note: fmt.Sprintf("preferences status=%d err=%v", status, err)}
	}
	if err := json.Unmarshal(body, &prefs); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	if prefs.Preferences.Destination != "goa" || prefs.Preferences.Duration != 5 {
		return Result{Status: statusFail, Note: fmt.Sprintf("unexpected preferences %+v", prefs.Preferences)}
	}
	return Result{Status: statusPass, Latency: time.Since(start)}
}

func checkDestinationRequired(ctx context.Context, r *Runner) Result {
	id, err := r.createConversation(ctx)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	status, _, err := r.call(ctx, http.MethodGet, "/api/conversations/"+id+"/itinerary/prompt", nil)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	if status != http.StatusUnprocessableEntity {
		return Result{Status: statusFail, Note: fmt.Sprintf("status=%d", status)}
	}
	return Result{Status: statusPass}
}

func checkReset(ctx context.Context, r *Runner) Result {
	id, err := r.createConversation(ctx)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	if status, _, err := r.call(ctx, http.MethodPost, "/api/conversations/"+id+"/messages",
		map[string]string{"message": "trip to paris"}); err != nil || status != http.StatusOK {
		return Result{Status: statusFail, Note: fmt.Sprintf("message status=%d err=%v", status, err)}
	}
	if status, _, err := r.call(ctx, http.MethodDelete, "/api/conversations/"+id, nil); err != nil || status != http.StatusOK {
		return Result{Status: statusFail, Note: fmt.Sprintf("reset status=%d err=%v", status, err)}
	}
	status, _, err := r.call(ctx, http.MethodGet, "/api/conversations/"+id+"/itinerary/prompt", nil)
	if err != nil || status != http.StatusUnprocessableEntity {
		return Result{Status: statusFail, Note: fmt.Sprintf("after reset status=%d err=%v", status, err)}
	}
	return Result{Status: statusPass}
}

func checkOrdering(ctx context.Context, r *Runner) Result {
	id, err := r.createConversation(ctx)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, _ = r.call(ctx, http.MethodPost, "/api/conversations/"+id+"/messages",
				map[string]string{"message": fmt.Sprintf("message %d", i)})
		}(i)
	}
	wg.Wait()

	var hist struct {
		History []session.Turn `json:"history"`
	}
	status, body, err := r.call(ctx, http.MethodGet, "/api/conversations/"+id+"/history", nil)
	if err != nil || status != http.StatusOK {
		return Result{Status: statusFail, Note: fmt.Sprintf("history status=%d err=%v", status, err)}
	}
	if err := json.Unmarshal(body, &hist); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	if len(hist.History) != r.cfg.Concurrency {
		return Result{Status: statusFail, Note: fmt.Sprintf("turns=%d want=%d", len(hist.History), r.cfg.Concurrency)}
	}
	return Result{Status: statusPass, Latency: time.Since(start)}
}

func perfPreferences(ctx context.Context, r *Runner) Result {
	id, err := r.createConversation(ctx)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	path := "/api/conversations/" + id + "/preferences"

	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				status, _, err := r.call(ctx, http.MethodGet, path, nil)
				mu.Lock()
				if err != nil || status != http.StatusOK {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func (r *Runner) createConversation(ctx context.Context) (string, error) {
	status, body, err := r.call(ctx, http.MethodPost, "/api/conversations", nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("create conversation: status=%d", status)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (r *Runner) call(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.AuthToken)
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	return resp.StatusCode, b, err
}
