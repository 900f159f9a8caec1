package common

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	idemKeyPrefix = "presupuesto:idem:"
	idemPending   = "pending"
	idemDonePfx   = "done:"
)

// Idem provides an Idempotency-Key middleware backed by Redis. A key is claimed per
// user, method, path and header value. Requests that end in a 5xx or panic release
// the claim so the client can retry.
type Idem struct {
	R   *redis.Client
	TTL time.Duration
}

func idemKey(r *http.Request, key string) string {
	userID, _ := UserID(r.Context())
	return idemKeyPrefix + Sha256Hex(userID, r.Method, r.URL.Path, key)
}

// Middleware enforces idempotency semantics for write endpoints.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		key := idemKey(r, header)
		claimed, err := i.R.SetNX(ctx, key, idemPending, i.ttl()).Result()
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("idempotency_claim_failed")
			JSONError(w, http.StatusInternalServerError, "INTERNAL", "idempotency store error", nil)
			return
		}
		if !claimed {
			i.replay(w, r, key)
			return
		}

		rec := &idemRecorder{ResponseWriter: w, status: http.StatusOK}
		completed := false
		defer func() {
			bg := context.WithoutCancel(ctx)
			if !completed || rec.status >= http.StatusInternalServerError {
				_ = i.R.Del(bg, key).Err()
				return
			}
			_ = i.R.Set(bg, key, idemDonePfx+strconv.Itoa(rec.status), i.ttl()).Err()
		}()
		next.ServeHTTP(rec, r)
		completed = true
	})
}

func (i Idem) replay(w http.ResponseWriter, r *http.Request, key string) {
	state, err := i.R.Get(r.Context(), key).Result()
	if err != nil && err != redis.Nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("idempotency_lookup_failed")
	}
	if status, ok := strings.CutPrefix(state, idemDonePfx); ok {
		code, _ := strconv.Atoi(status)
		JSONError(w, http.StatusConflict, "IDEMPOTENT_REPLAY", "duplicate request", map[string]int{"originalStatus": code})
		return
	}
	JSONError(w, http.StatusConflict, "IDEMPOTENT_REPLAY", "request with this key is still in progress", nil)
}

func (i Idem) ttl() time.Duration {
	if i.TTL <= 0 {
		return 24 * time.Hour
	}
	return i.TTL
}

type idemRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (r *idemRecorder) WriteHeader(code int) {
	if !r.wrote {
		r.status = code
		r.wrote = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *idemRecorder) Write(p []byte) (int, error) {
	r.wrote = true
	return r.ResponseWriter.Write(p)
}
