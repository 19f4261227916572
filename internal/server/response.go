package server

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"tradingview-telegram-relay/internal/types"
	"tradingview-telegram-relay/lib/translation"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

func writeOK(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, types.Response{
		Status:  statusOK,
		Message: translation.Translate(message),
	})
}

func writeHealth(w http.ResponseWriter, message, uptime string) {
	writeJSON(w, http.StatusOK, types.Response{
		Status:  statusOK,
		Message: translation.Translate(message),
		Uptime:  uptime,
	})
}

// writeError replies with an error body; details carry the underlying reason.
func writeError(w http.ResponseWriter, code int, message, details string) {
	writeJSON(w, code, types.Response{
		Status:  statusError,
		Message: translation.Translate(message),
		Details: details,
	})
}

func writeJSON(w http.ResponseWriter, code int, body types.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to write response")
	}
}
