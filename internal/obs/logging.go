package obs

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/backend-presupuesto/internal/common"
)

// NewLogger builds a stdout zerolog logger. format "console" (or "text") selects the
// human readable writer; anything else logs JSON.
func NewLogger(format, level string) zerolog.Logger {
	return newLogger(os.Stdout, format, level)
}

func newLogger(w io.Writer, format, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "console", "text":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// RequestLogger writes one structured line per request. Probe routes under /health
// log at debug level.
type RequestLogger struct {
	Logger zerolog.Logger
}

// Middleware implements chi middleware for structured request logs.
func (l RequestLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, fields := WithFields(r.Context())
		ctx = l.Logger.WithContext(ctx)
		rec := newStatusRecorder(w)
		start := time.Now()
		r = r.WithContext(ctx)
		next.ServeHTTP(rec, r)

		evt := l.event(r.URL.Path, rec.status)
		if evt == nil {
			return
		}
		evt = evt.
			Str("method", r.Method).
			Str("route", routeOf(r, r.URL.Path)).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Int64("bytes", rec.bytes).
			Str("request_id", middleware.GetReqID(ctx)).
			Str("client_ip", common.ClientIP(r))
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			evt = evt.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
		}
		if user, ok := common.UserID(ctx); ok && user != "" {
			evt = evt.Str("user_id", user)
		}
		if role := common.Role(ctx); role != "" {
			evt = evt.Str("role", role)
		}
		if ua := r.UserAgent(); ua != "" {
			evt = evt.Str("user_agent", ua)
		}
		fields.Each(func(k, v string) {
			evt = evt.Str(k, v)
		})
		evt.Msg("http_request")
	})
}

func (l RequestLogger) event(path string, status int) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return l.Logger.Error()
	case status >= http.StatusBadRequest:
		return l.Logger.Warn()
	case strings.HasPrefix(path, "/health"):
		return l.Logger.Debug()
	default:
		return l.Logger.Info()
	}
}
