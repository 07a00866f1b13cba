package middleware

import (
	"mime"
	"net/http"

	"github.com/go-chi/render"

	apierrors "tabclean/internal/errors"
)

// DefaultMaxBodyBytes bounds JSON request bodies
const DefaultMaxBodyBytes = 1 << 20

// ContentTypeJSON rejects request bodies that are not JSON. Bodiless
// methods pass through.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead ||
			r.Method == http.MethodDelete || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			problem := apierrors.NewProblemDetails(
				http.StatusUnsupportedMediaType,
				apierrors.TypeUnsupported,
				"Unsupported Media Type",
				apierrors.ErrUnsupportedMedia.Message,
				r.URL.Path,
			).WithExtension("content_type", r.Header.Get("Content-Type"))
			render.Render(w, r, problem)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// MaxBodySize caps the request body at n bytes
func MaxBodySize(n int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}
