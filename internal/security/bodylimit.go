package security

import (
	"errors"
	"net/http"
	"strings"

	"github.com/noah-isme/backend-presupuesto/internal/common"
)

// BodyLimit enforces a maximum request payload size. Multipart uploads use
// UploadMax when it is set.
type BodyLimit struct {
	Max       int64
	UploadMax int64
}

// Middleware rejects requests exceeding the configured limit with HTTP 413.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := b.limitFor(r)
		if limit <= 0 || r.Body == nil || r.Body == http.NoBody {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > limit {
			common.JSONError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request entity too large", nil)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}

func (b BodyLimit) limitFor(r *http.Request) int64 {
	if b.UploadMax > 0 && strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return b.UploadMax
	}
	return b.Max
}

// IsTooLarge reports whether err was produced by a body exceeding the limit.
func IsTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
