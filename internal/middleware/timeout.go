package middleware

import (
	"net/http"
	"time"
)

// Timeout caps request handling time for the /api subtree. The canned body
// keeps the usual response envelope since TimeoutHandler writes it raw.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := `{"success":false,"error":{"code":"REQUEST_TIMEOUT","message":"request timed out"}}`

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
