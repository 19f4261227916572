package alert

import (
	"strings"

	"tradingview-telegram-relay/lib/translation"
)

// FormatterConfig is the fixed text the formatter wraps around every alert.
type FormatterConfig struct {
	Prefix         string
	DefaultMessage string
}

// Formatter turns alert payloads into Telegram message text.
type Formatter struct {
	config FormatterConfig
}

type detail struct {
	key   string
	icon  string
	label string
}

// details are appended in this order, each on its own line.
var details = []detail{
	{key: "symbol", icon: "📊", label: "Symbol"},
	{key: "price", icon: "💰", label: "Price"},
	{key: "time", icon: "🕐", label: "Time"},
}

func NewFormatter(c FormatterConfig) *Formatter {
	return &Formatter{config: c}
}

// Format builds the message text. It never fails: a nil or empty payload
// produces the prefix followed by the default message.
func (f *Formatter) Format(p Payload) string {
	var b strings.Builder
	b.WriteString(f.config.Prefix)
	b.WriteString(p.TextOr("message", f.config.DefaultMessage))

	for _, d := range details {
		v, ok := p.Text(d.key)
		if !ok {
			continue
		}
		b.WriteString("\n")
		b.WriteString(d.icon)
		b.WriteString(" ")
		b.WriteString(translation.Translate(d.label))
		b.WriteString(": ")
		b.WriteString(v)
	}

	return b.String()
}
