// Package notify turns alert records into subscriber-facing SMS messages.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/k-devoe/riverWatch/internal/types"
)

// SMSTransport is the slice of the SMS provider this package needs.
type SMSTransport interface {
	SendSMS(ctx context.Context, to, body string) error
}

// messageHeader opens every alert message.
const messageHeader = "Still N Fork Alert: \n"

// alertTimeLayout formats the forecast instant in the subscriber's zone,
// e.g. "Tuesday 12-20 04:00 PM".
const alertTimeLayout = "Monday 01-02 03:04 PM"

// SMSNotifier formats alert records and dispatches them over an SMSTransport.
// It implements types.Notifier.
type SMSNotifier struct {
	transport SMSTransport
	graphURL  string
	logger    *slog.Logger
}

// NewSMSNotifier creates an SMSNotifier. graphURL is appended to each message
// so subscribers can jump straight to the gauge graph.
func NewSMSNotifier(transport SMSTransport, graphURL string, logger *slog.Logger) *SMSNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMSNotifier{transport: transport, graphURL: graphURL, logger: logger}
}

// FormatMessage renders the SMS body for a batch of alerts. Timestamps are
// shown in the user's configured zone.
func (n *SMSNotifier) FormatMessage(user types.User, alerts []types.AlertRecord) string {
	loc := user.Location()

	var b strings.Builder
	b.WriteString(messageHeader)
	for _, alert := range alerts {
		fmt.Fprintf(&b, "%s %sft\n%s\n",
			alert.Kind.Label(),
			strconv.FormatFloat(alert.Height, 'f', -1, 64),
			alert.Timestamp.In(loc).Format(alertTimeLayout),
		)
	}
	b.WriteString(n.graphURL)
	return b.String()
}

// Send formats and dispatches one SMS covering all of the user's alerts.
// An empty batch is a no-op.
func (n *SMSNotifier) Send(ctx context.Context, user types.User, alerts []types.AlertRecord) error {
	if len(alerts) == 0 {
		return nil
	}

	body := n.FormatMessage(user, alerts)
	if err := n.transport.SendSMS(ctx, user.PhoneNumber, body); err != nil {
		return fmt.Errorf("sending alert sms to user %s: %w", user.ID, err)
	}

	n.logger.InfoContext(ctx, "alert sms dispatched",
		"user_id", user.ID,
		"alerts", len(alerts),
	)
	return nil
}
