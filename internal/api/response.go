package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorFallbackBody is what clients get when a response value refuses to marshal.
// A raw literal, so the failure path cannot itself fail to encode.
const errorFallbackBody = `{"status":"error","message":"Internal server error"}`

// writeJSONResponse marshals v before touching the ResponseWriter, so an encoding
// failure can still downgrade the status code to 500.
func writeJSONResponse(w http.ResponseWriter, statusCode int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("Server.writeJSONResponse: response not serializable", "error", err, "status", statusCode)
		statusCode = http.StatusInternalServerError
		body = []byte(errorFallbackBody)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		slog.Warn("Server.writeJSONResponse: write to client failed", "error", err)
	}
}
