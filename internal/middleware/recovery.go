package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"stockcount-api/pkg/apierror"
)

// Recovery turns a panic into a generic 500 JSON error and logs the stack.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("PANIC: %s %s (request %s): %v\n%s", r.Method, r.URL.Path, GetRequestID(r.Context()), err, debug.Stack())

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write(apierror.InternalError("internal server error").ToJSON())
			}
		}()

		next.ServeHTTP(w, r)
	})
}
