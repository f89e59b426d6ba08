// AngelaMos | 2026
// concurrency.go

package middleware

import (
	"net/http"

	"golang.org/x/sync/semaphore"

	"github.com/apptnu/portal/internal/core"
)

// ConcurrencyLimit caps the number of requests served at once to protect
// the database pool. Waiting requests give up when their context ends.
func ConcurrencyLimit(limit int64) func(http.Handler) http.Handler {
	sem := semaphore.NewWeighted(limit)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sem.Acquire(r.Context(), 1); err != nil {
				core.JSON(w, http.StatusServiceUnavailable, map[string]any{
					"success": false,
					"error": core.ErrorBody{
						Code:    "SERVER_BUSY",
						Message: "server busy, retry later",
					},
				})
				return
			}
			defer sem.Release(1)

			next.ServeHTTP(w, r)
		})
	}
}
