package health

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-presupuesto/internal/common"
)

const defaultProbeTimeout = 500 * time.Millisecond

var ready atomic.Bool

func init() {
	ready.Store(true)
}

// SetReady toggles readiness; the API flips it off when shutdown begins.
func SetReady(v bool) {
	ready.Store(v)
}

// Probe is one named readiness dependency.
type Probe struct {
	Name    string
	Timeout time.Duration
	Check   func(ctx context.Context) error
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PostgresProbe pings the pool.
func PostgresProbe(db Pinger, timeout time.Duration) Probe {
	return Probe{Name: "postgres", Timeout: timeout, Check: func(ctx context.Context) error {
		if db == nil {
			return errors.New("not configured")
		}
		return db.Ping(ctx)
	}}
}

// RedisProbe pings the cache/queue Redis.
func RedisProbe(client *redis.Client, timeout time.Duration) Probe {
	return Probe{Name: "redis", Timeout: timeout, Check: func(ctx context.Context) error {
		if client == nil {
			return errors.New("not configured")
		}
		return client.Ping(ctx).Err()
	}}
}

// Report is the readiness response body.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler exposes the liveness and readiness endpoints.
type Handler struct {
	Probes []Probe
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready runs every probe concurrently and answers 503 when any fails or the
// server is draining.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !ready.Load() {
		common.JSON(w, http.StatusServiceUnavailable, Report{Status: "shutting_down"})
		return
	}
	if len(h.Probes) == 0 {
		common.JSON(w, http.StatusServiceUnavailable, Report{Status: "no_probes"})
		return
	}

	report := Report{Status: "ok", Checks: make(map[string]string, len(h.Probes))}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, p := range h.Probes {
		wg.Add(1)
		go func(p Probe) {
			defer wg.Done()
			result := "ok"
			if err := runProbe(r.Context(), p); err != nil {
				result = err.Error()
			}
			mu.Lock()
			report.Checks[p.Name] = result
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	code := http.StatusOK
	for _, result := range report.Checks {
		if result != "ok" {
			report.Status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}
	common.JSON(w, code, report)
}

func runProbe(ctx context.Context, p Probe) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if p.Check == nil {
		return errors.New("no check")
	}
	return p.Check(ctx)
}
