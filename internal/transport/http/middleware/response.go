package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError replies with a JSON error body. The handler package's
// envelope helpers are out of reach here (handler imports middleware), so
// the middleware carries its own small encoder.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
