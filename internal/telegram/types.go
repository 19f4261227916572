package telegram

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Config configuration of the notifier
type Config struct {
	Token       string
	Recipient   string
	APIEndpoint string
	Timeout     time.Duration
	Debug       bool
}

// Outcome classifies a delivery attempt.
type Outcome int

const (
	Delivered Outcome = iota
	NetworkFailure
	RemoteFailure
	UnexpectedFailure
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case NetworkFailure:
		return "network_error"
	case RemoteFailure:
		return "api_error"
	case UnexpectedFailure:
		return "unexpected_error"
	}
	return "unknown"
}

// Result of a single send. Response is set only when the message was delivered,
// Reason and Err only when it was not.
type Result struct {
	Outcome  Outcome
	Response *tgbotapi.APIResponse
	Reason   string
	Err      error
}

func (r Result) OK() bool {
	return r.Outcome == Delivered
}

// Observer is told about every finished send.
type Observer interface {
	ObserveDelivery(outcome string, elapsed time.Duration)
}
