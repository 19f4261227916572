package server

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"tradingview-telegram-relay/internal/alert"
	"tradingview-telegram-relay/lib/helpers"
)

// handleWebhook receives an alert, formats it and forwards it to Telegram.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	log.Debugf("Received webhook request from %s", r.RemoteAddr)

	if !isJSON(r.Header.Get("Content-Type")) {
		log.Warn("Request does not contain JSON data")
		writeError(w, http.StatusBadRequest, "Content-Type must be application/json", "")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warnf("Request body exceeds %s", helpers.FormatBytes(tooLarge.Limit))
			writeError(w, http.StatusBadRequest, "Request body too large", "limit is "+helpers.FormatBytes(tooLarge.Limit))
			return
		}
		log.WithError(err).Warn("Could not read request body")
		writeError(w, http.StatusBadRequest, "Could not read request body", err.Error())
		return
	}

	payload, err := alert.DecodePayload(body)
	if errors.Is(err, alert.ErrEmptyPayload) {
		log.Warn("No JSON data received in request")
		writeError(w, http.StatusBadRequest, "No JSON data received", "")
		return
	}
	if err != nil {
		log.WithError(err).Warn("Request contains invalid JSON")
		writeError(w, http.StatusBadRequest, "Invalid JSON payload", errors.Cause(err).Error())
		return
	}

	log.WithField("fields", len(payload)).Info("Processing TradingView alert")
	if log.IsLevelEnabled(log.DebugLevel) {
		log.Debugf("Alert payload: %s", spew.Sdump(map[string]any(payload)))
	}

	result := s.sender.Send(s.formatter.Format(payload))
	if !result.OK() {
		log.Errorf("Failed to forward alert to Telegram: %s", result.Reason)
		writeError(w, http.StatusInternalServerError, "Failed to forward alert to Telegram", result.Reason)
		return
	}

	log.Info("Alert successfully forwarded to Telegram")
	writeOK(w, "Alert forwarded successfully")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, "TradingView webhook service is running", helpers.FormatUptime(s.started, s.now()))
}

// handleTest sends a fixed message to check the Telegram integration.
func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	result := s.sender.Send(testMessage)
	if !result.OK() {
		log.Errorf("Failed to send test message: %s", result.Reason)
		writeError(w, http.StatusInternalServerError, "Failed to send test message", result.Reason)
		return
	}
	writeOK(w, "Test message sent successfully")
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Endpoint not found", "")
}

// allow rejects requests whose method is not listed.
func allow(h http.HandlerFunc, methods ...string) http.Handler {
	allowed := strings.Join(methods, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, m := range methods {
			if r.Method == m {
				h(w, r)
				return
			}
		}
		w.Header().Set("Allow", allowed)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
	})
}

// isJSON accepts application/json and structured suffixes such as application/vnd.api+json.
func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}
