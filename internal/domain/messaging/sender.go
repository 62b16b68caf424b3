package messaging

import (
	"context"

	"payment_reminder_bot/internal/domain/settings"
)

// Sender delivers one text message to one recipient through the messaging gateway.
// Errors are *DeliveryError values.
type Sender interface {
	Send(ctx context.Context, s settings.Settings, recipient string, text string) error
}
