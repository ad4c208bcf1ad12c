package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON пишет JSON ответ; тело заканчивается переводом строки, как у json.Encoder
func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}
