package middleware

import (
	"net/http"
	"os"
	"strconv"
)

// MaxBodyMiddleware caps the request body size. Prize image uploads go
// through multipart, so the default leaves room for them (8 MiB), overridable
// via MAX_BODY_BYTES.
func MaxBodyMiddleware(next http.Handler) http.Handler {
	max := int64(8 << 20)
	if s := os.Getenv("MAX_BODY_BYTES"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil && v > 0 {
			max = v
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, max)
		next.ServeHTTP(w, r)
	})
}
