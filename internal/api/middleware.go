package api

import (
	"net/http"

	"github.com/fiap/signup-service/pkg/correlation"
)

// RequestID propagates the inbound X-Request-ID header verbatim, or mints a
// fresh id when the header is absent. The id is stored on the request
// context for the rest of the call chain and echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := correlation.Ensure(r.Header.Get(correlation.Header))
		w.Header().Set(correlation.Header, id)
		next.ServeHTTP(w, r.WithContext(correlation.WithContext(r.Context(), id)))
	})
}
