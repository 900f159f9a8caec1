package obs

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

type routePatternKey struct{}

type fieldsKey struct{}

// Fields is a request-scoped bag of log and span attributes that handlers fill in
// after routing (budget id, pricing mode, seller).
type Fields struct {
	mu     sync.Mutex
	keys   []string
	values map[string]string
}

// WithRoutePattern stores the matched router pattern on the context.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, routePatternKey{}, pattern)
}

// RoutePatternFromContext extracts the route pattern from context if present.
func RoutePatternFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(routePatternKey{}).(string)
	return v
}

// WithFields attaches an empty Fields bag unless one is already present.
func WithFields(ctx context.Context) (context.Context, *Fields) {
	if f := fieldsFrom(ctx); f != nil {
		return ctx, f
	}
	f := &Fields{values: map[string]string{}}
	return context.WithValue(ctx, fieldsKey{}, f), f
}

// Annotate records key=value on the request's Fields bag. It is a no-op when the
// request was not wrapped by RequestLogger.
func Annotate(ctx context.Context, key, value string) {
	f := fieldsFrom(ctx)
	if f == nil || key == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Each visits the annotations in insertion order.
func (f *Fields) Each(fn func(key, value string)) {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range f.keys {
		fn(k, f.values[k])
	}
}

func fieldsFrom(ctx context.Context) *Fields {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(fieldsKey{}).(*Fields)
	return f
}

// routeOf resolves the route label for r: the stored pattern, then chi's live
// pattern, then fallback.
func routeOf(r *http.Request, fallback string) string {
	if route := RoutePatternFromContext(r.Context()); route != "" {
		return route
	}
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if route := rc.RoutePattern(); route != "" {
			return route
		}
	}
	return fallback
}
