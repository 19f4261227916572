package server

import (
	"net/http"
	"time"

	"tradingview-telegram-relay/internal/alert"
	"tradingview-telegram-relay/internal/telegram"
)

const (
	routeWebhook = "/"
	routeHealth  = "/health"
	routeTest    = "/test"
	routeOther   = "other"

	testMessage = "🧪 Test message from TradingView webhook service"
)

// Sender delivers a finished message text.
type Sender interface {
	Send(text string) telegram.Result
}

// Recorder counts finished requests.
type Recorder interface {
	ObserveRequest(path string, code int)
}

// Options are the collaborators of a Server.
type Options struct {
	Formatter    *alert.Formatter
	Sender       Sender
	Recorder     Recorder
	MaxBodyBytes int64
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server is the HTTP surface of the relay. It holds no mutable state.
type Server struct {
	formatter    *alert.Formatter
	sender       Sender
	recorder     Recorder
	maxBodyBytes int64
	now          func() time.Time
	started      time.Time
}

func New(o Options) *Server {
	now := o.Now
	if now == nil {
		now = time.Now
	}
	maxBody := o.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &Server{
		formatter:    o.Formatter,
		sender:       o.Sender,
		recorder:     o.Recorder,
		maxBodyBytes: maxBody,
		now:          now,
		started:      now(),
	}
}

// Handler returns the routed handler with logging and panic recovery applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/{$}", allow(s.handleWebhook, http.MethodPost))
	mux.Handle(routeHealth, allow(s.handleHealth, http.MethodGet, http.MethodHead))
	mux.Handle(routeTest, allow(s.handleTest, http.MethodPost))
	mux.HandleFunc("/", handleNotFound)

	return s.logRequests(recoverer(mux))
}

// HTTPServer wraps Handler in an http.Server. writeTimeout must leave room for
// the outbound Telegram call.
func (s *Server) HTTPServer(addr string, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
}

func routeLabel(path string) string {
	switch path {
	case routeWebhook, routeHealth, routeTest:
		return path
	}
	return routeOther
}
