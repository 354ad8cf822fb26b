package middleware

import (
	"encoding/json"
	"net/http"

	"golang.org/x/sync/semaphore"
)

// ConcurrencyLimit caps in-flight requests on LLM-bound routes. A request
// waits for a slot until its context ends, then gets 503.
func ConcurrencyLimit(n int64) func(http.Handler) http.Handler {
	if n <= 0 {
		n = 1
	}
	sem := semaphore.NewWeighted(n)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sem.Acquire(r.Context(), 1); err != nil {
				writeError(w, http.StatusServiceUnavailable, "service at capacity")
				return
			}
			defer sem.Release(1)

			incLLMInFlight()
			defer decLLMInFlight()

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
