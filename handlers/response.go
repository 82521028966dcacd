package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	errNoClaims        = errors.New("no claims in request context")
	errAlreadyReviewed = errors.New("access request already reviewed")
)

// Every endpoint answers with the same envelope: {"success": true, "data":
// ...} or {"success": false, "error": "..."} plus optional extras.

func writeData(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}

// writeErrorExtra is writeError with additional payload fields, used where
// the client needs more than the message (e.g. geofence distance).
func writeErrorExtra(w http.ResponseWriter, code int, msg string, extra map[string]interface{}) {
	body := map[string]interface{}{
		"success": false,
		"error":   msg,
	}
	for k, v := range extra {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
