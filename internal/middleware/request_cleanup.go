package middleware

import (
	"io"
	"net/http"
)

// maxDrainBytes caps how much of an unread body we consume before closing.
const maxDrainBytes = 256 << 10

// DrainAndCloseRequest drains (up to maxDrainBytes) and closes the request body
// once the handler is done, so the connection can be reused.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body == nil {
				return
			}
			_, _ = io.CopyN(io.Discard, r.Body, maxDrainBytes)
			_ = r.Body.Close()
		})
	}
}
