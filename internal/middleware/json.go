package middleware

import (
	"encoding/json"
	"net/http"
)

// jsonEncode writes an APIResponse envelope from the middleware that rejects
// requests before they reach a handler (auth, rate limit, recovery).
func jsonEncode(w http.ResponseWriter, value any) error {
	return json.NewEncoder(w).Encode(value)
}
