package telegram

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"tradingview-telegram-relay/lib/helpers"
)

// Notifier delivers messages to one fixed Telegram chat.
type Notifier struct {
	bot       *tgbotapi.BotAPI
	recipient string
	observer  Observer
}

// NewNotifier creates a notifier bound to c.Recipient. It does not contact the
// Bot API; call Verify for that. A nil client means a fresh http.Client.
func NewNotifier(c Config, client *http.Client) (*Notifier, error) {
	if c.Token == "" {
		return nil, errors.New("telegram bot token is required")
	}
	if c.Recipient == "" {
		return nil, errors.New("telegram recipient is required")
	}

	httpClient := &http.Client{}
	if client != nil {
		*httpClient = *client
	}
	if c.Timeout > 0 {
		httpClient.Timeout = c.Timeout
	}

	endpoint := c.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot := &tgbotapi.BotAPI{
		Token:  c.Token,
		Debug:  c.Debug,
		Buffer: 100,
		Client: statusClient{client: httpClient},
	}
	bot.SetAPIEndpoint(endpoint)

	return &Notifier{
		bot:       bot,
		recipient: c.Recipient,
	}, nil
}

// WithObserver attaches o to the notifier and returns it.
func (n *Notifier) WithObserver(o Observer) *Notifier {
	n.observer = o
	return n
}

// Verify checks the token with getMe and returns the bot account.
func (n *Notifier) Verify() (tgbotapi.User, error) {
	user, err := n.bot.GetMe()
	if err != nil {
		return tgbotapi.User{}, errors.Wrap(err, "could not verify telegram bot token")
	}
	n.bot.Self = user
	return user, nil
}

// Send makes a single delivery attempt and classifies the outcome. It never
// panics; failures are reported through the returned Result.
func (n *Notifier) Send(text string) (result Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			log.Errorf("Recovered from panic while sending message: %v\nStack trace: %s", r, bytes.TrimRight(stackBuf[:stackSize], "\x00"))
			result = unexpected(errors.Errorf("panic: %v", r))
		}
		n.record(result, time.Since(start))
	}()

	log.WithField("chat", n.recipient).Debugf("Sending Telegram message: %s", helpers.Truncate(text, 80))

	resp, err := n.bot.Request(n.message(text))
	if err != nil {
		return classify(err)
	}
	return Result{Outcome: Delivered, Response: resp}
}

func (n *Notifier) message(text string) tgbotapi.MessageConfig {
	var msg tgbotapi.MessageConfig
	if chatID, err := strconv.ParseInt(n.recipient, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(chatID, text)
	} else {
		msg = tgbotapi.NewMessageToChannel(n.recipient, text)
	}
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}

func (n *Notifier) record(r Result, elapsed time.Duration) {
	entry := log.WithFields(log.Fields{
		"chat":    n.recipient,
		"outcome": r.Outcome.String(),
		"elapsed": elapsed.Round(time.Millisecond).String(),
	})
	if r.OK() {
		entry.Info("Message sent successfully to Telegram")
	} else {
		entry.WithError(r.Err).Errorf("Failed to send Telegram message: %s", r.Reason)
	}

	if n.observer != nil {
		n.observer.ObserveDelivery(r.Outcome.String(), elapsed)
	}
}

func classify(err error) Result {
	var (
		apiErr *APIError
		botErr *tgbotapi.Error
		netErr net.Error
	)

	switch {
	case errors.As(err, &apiErr):
		return remote(apiErr.StatusCode, err)
	case errors.As(err, &botErr):
		return remote(botErr.Code, err)
	case errors.As(err, &netErr):
		return Result{
			Outcome: NetworkFailure,
			Reason:  fmt.Sprintf("Network error: %v", err),
			Err:     err,
		}
	default:
		return unexpected(err)
	}
}

func remote(status int, err error) Result {
	return Result{
		Outcome: RemoteFailure,
		Reason:  fmt.Sprintf("Telegram API error: %d", status),
		Err:     err,
	}
}

func unexpected(err error) Result {
	return Result{
		Outcome: UnexpectedFailure,
		Reason:  fmt.Sprintf("Unexpected error: %v", err),
		Err:     err,
	}
}
