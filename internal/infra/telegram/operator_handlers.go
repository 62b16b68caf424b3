package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"payment_reminder_bot/internal/app"
	"payment_reminder_bot/internal/domain/customer"
	"payment_reminder_bot/internal/domain/obligation"
	"payment_reminder_bot/internal/domain/reminder"
	"payment_reminder_bot/internal/domain/settings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// ReminderOperations is the part of app.ReminderService the bot drives.
type ReminderOperations interface {
	ListEligible(ctx context.Context) ([]obligation.Obligation, error)
	ListCustomers(ctx context.Context) ([]*customer.Customer, error)
	PreviewMessage(ctx context.Context, obligationID string) (reminder.Target, string, error)
	SendReminder(ctx context.Context, obligationID, text string) (reminder.Target, error)
	SendToCustomer(ctx context.Context, customerID, number, text string) error
	StartBulk(ctx context.Context) (string, error)
	CancelBulk() (string, error)
	Running() (string, time.Time, bool)
	LastResult() (reminder.BatchResult, bool)
	LoadSettings(ctx context.Context) (settings.Settings, error)
	UpdateSetting(ctx context.Context, key, value string) (settings.Settings, error)
	TestGateway(ctx context.Context, recipient string) error
}

const unauthorizedReply = "Error: you are not allowed to use this command."

var (
	bulkMenu      = &telebot.ReplyMarkup{}
	btnBulkStart  = bulkMenu.Data("Start sending", "bulk_start")
	btnBulkAbort  = bulkMenu.Data("Do not send", "bulk_abort")
	runningMenu   = &telebot.ReplyMarkup{}
	btnBulkCancel = runningMenu.Data("Stop batch", "bulk_cancel")
)

func init() {
	bulkMenu.Inline(bulkMenu.Row(btnBulkStart, btnBulkAbort))
	runningMenu.Inline(runningMenu.Row(btnBulkCancel))
}

// operatorOnly rejects senders that are not configured operators.
func operatorOnly(isOperator func(int64) bool, logger *logrus.Entry, command string, next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		handlerLogger := logger.WithFields(logrus.Fields{
			"handler":   command,
			"sender_id": c.Sender().ID,
		})
		if !isOperator(c.Sender().ID) {
			handlerLogger.Warn("Unauthorized access attempt")
			if c.Callback() != nil {
				return c.Respond(&telebot.CallbackResponse{Text: unauthorizedReply})
			}
			return c.Send(unauthorizedReply)
		}
		handlerLogger.Info("Command received")
		return next(c)
	}
}

// RegisterOperatorHandlers registers the reminder commands. ctx bounds every
// operation started from the bot, including background batches.
func RegisterOperatorHandlers(ctx context.Context, b *telebot.Bot, ops ReminderOperations, isOperator func(int64) bool, baseLogger *logrus.Entry) {
	handle := func(command string, h telebot.HandlerFunc) {
		b.Handle(command, operatorOnly(isOperator, baseLogger, command, h))
	}

	handle("/eligible", func(c telebot.Context) error {
		obs, err := ops.ListEligible(ctx)
		if err != nil {
			baseLogger.WithError(err).Error("Failed to list eligible reminders")
			return c.Send(describeError(err))
		}
		return c.Send(formatObligations(obs))
	})

	handle("/customers", func(c telebot.Context) error {
		customers, err := ops.ListCustomers(ctx)
		if err != nil {
			baseLogger.WithError(err).Error("Failed to list customers")
			return c.Send(describeError(err))
		}
		return c.Send(formatCustomers(customers))
	})

	handle("/preview", func(c telebot.Context) error {
		id, _ := splitFirst(c.Message().Payload)
		if id == "" {
			return c.Send("Usage: /preview <installment or debt id>")
		}
		target, text, err := ops.PreviewMessage(ctx, id)
		if err != nil {
			return c.Send(describeError(err))
		}
		return c.Send(fmt.Sprintf("To %s (%s):\n\n%s", target.Obligation.CustomerName, target.Recipient, text))
	})

	handle("/remind", func(c telebot.Context) error {
		id, text := splitFirst(c.Message().Payload)
		if id == "" {
			return c.Send("Usage: /remind <installment or debt id> [custom message text]")
		}
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/remind", "obligation_id": id})
		target, err := ops.SendReminder(ctx, id, text)
		if err != nil {
			logCtx.WithError(err).Warn("Single reminder failed")
			return c.Send(describeError(err))
		}
		logCtx.Info("Single reminder sent")
		return c.Send(fmt.Sprintf("Reminder sent to %s (%s).", target.Obligation.CustomerName, target.Recipient))
	})

	handle("/send", func(c telebot.Context) error {
		who, text := splitFirst(c.Message().Payload)
		if who == "" || text == "" {
			return c.Send("Usage: /send <customer id or phone number> <message text>")
		}
		var err error
		if looksLikePhone(who) {
			err = ops.SendToCustomer(ctx, "", who, text)
		} else {
			err = ops.SendToCustomer(ctx, who, "", text)
		}
		if err != nil {
			baseLogger.WithError(err).WithField("handler", "/send").Warn("Free-form message failed")
			return c.Send(describeError(err))
		}
		return c.Send("Message sent.")
	})

	handle("/remind_all", func(c telebot.Context) error {
		if id, _, running := ops.Running(); running {
			return c.Send(fmt.Sprintf("Batch %s is already running. Use /status or /cancel.", shortBatchID(id)))
		}
		obs, err := ops.ListEligible(ctx)
		if err != nil {
			return c.Send(describeError(err))
		}
		withPhone := 0
		for _, ob := range obs {
			if ob.CustomerPhone != "" {
				withPhone++
			}
		}
		if withPhone == 0 {
			return c.Send("There are no reminders to send right now.")
		}
		return c.Send(fmt.Sprintf("%d reminders will be sent one at a time. Send them now?", withPhone), bulkMenu)
	})

	b.Handle(&btnBulkStart, operatorOnly(isOperator, baseLogger, "bulk_start", func(c telebot.Context) error {
		id, err := ops.StartBulk(ctx)
		if err != nil {
			baseLogger.WithError(err).Warn("Bulk reminder run did not start")
			_ = c.Respond(&telebot.CallbackResponse{Text: "Not started"})
			return c.Edit(describeError(err))
		}
		baseLogger.WithFields(logrus.Fields{"batch_id": id, "sender_id": c.Sender().ID}).Info("Bulk reminder run started")
		_ = c.Respond(&telebot.CallbackResponse{Text: "Started"})
		return c.Edit(fmt.Sprintf("Batch %s started. A summary will be sent when it finishes.", shortBatchID(id)), runningMenu)
	}))

	b.Handle(&btnBulkAbort, operatorOnly(isOperator, baseLogger, "bulk_abort", func(c telebot.Context) error {
		_ = c.Respond()
		return c.Edit("Bulk reminders not sent.")
	}))

	cancelBatch := func(c telebot.Context) error {
		id, err := ops.CancelBulk()
		if err != nil {
			if c.Callback() != nil {
				return c.Respond(&telebot.CallbackResponse{Text: describeError(err)})
			}
			return c.Send(describeError(err))
		}
		baseLogger.WithFields(logrus.Fields{"batch_id": id, "sender_id": c.Sender().ID}).Info("Bulk reminder run cancelled by operator")
		reply := fmt.Sprintf("Stopping batch %s. The message in flight will finish first.", shortBatchID(id))
		if c.Callback() != nil {
			_ = c.Respond(&telebot.CallbackResponse{Text: "Stopping"})
			return c.Edit(reply)
		}
		return c.Send(reply)
	}
	handle("/cancel", cancelBatch)
	b.Handle(&btnBulkCancel, operatorOnly(isOperator, baseLogger, "bulk_cancel", cancelBatch))

	handle("/status", func(c telebot.Context) error {
		var sb strings.Builder
		if id, started, running := ops.Running(); running {
			fmt.Fprintf(&sb, "Batch %s running since %s.", shortBatchID(id), started.Format("15:04:05"))
		} else {
			sb.WriteString("No batch is running.")
		}
		if last, ok := ops.LastResult(); ok {
			sb.WriteString("\n\nLast batch:\n")
			sb.WriteString(app.FormatBatchSummary(last))
		}
		return c.Send(sb.String())
	})

	handle("/settings", func(c telebot.Context) error {
		s, err := ops.LoadSettings(ctx)
		if err != nil {
			baseLogger.WithError(err).Error("Failed to load settings")
			return c.Send(describeError(err))
		}
		return c.Send(formatSettings(s))
	})

	handle("/set", func(c telebot.Context) error {
		key, value := splitFirst(c.Message().Payload)
		if key == "" {
			return c.Send("Usage: /set <key> <value>\nKeys: " + strings.Join(settings.Keys, ", "))
		}
		s, err := ops.UpdateSetting(ctx, key, value)
		if err != nil {
			baseLogger.WithError(err).WithField("key", key).Warn("Failed to update setting")
			return c.Send(describeError(err))
		}
		baseLogger.WithFields(logrus.Fields{"key": key, "sender_id": c.Sender().ID}).Info("Setting updated")
		return c.Send("Saved.\n\n" + formatSettings(s))
	})

	handle("/test_gateway", func(c telebot.Context) error {
		recipient := strings.TrimSpace(c.Message().Payload)
		if recipient == "" {
			return c.Send("Usage: /test_gateway <phone number>")
		}
		if err := ops.TestGateway(ctx, recipient); err != nil {
			baseLogger.WithError(err).Warn("Gateway test failed")
			return c.Send("Gateway test failed. " + describeError(err))
		}
		return c.Send("Gateway test message sent.")
	})
}

func shortBatchID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
