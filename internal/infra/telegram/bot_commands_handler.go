package telegram

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterBotCommands registers /start and /help.
func RegisterBotCommands(b *telebot.Bot, isOperator func(int64) bool, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if isOperator(senderID) {
			return c.Send(fmt.Sprintf("Hello %s! The payment reminder bot is ready. Use /help for the list of commands.", c.Sender().FirstName))
		}
		logCtx.Info("User is not an operator")
		return c.Send("This bot sends payment reminders for the shop. It only accepts commands from operators.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if !isOperator(senderID) {
			return c.Send("No commands are available to you.")
		}
		return c.Send(helpText(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}

func helpText() string {
	var helpText strings.Builder
	helpText.WriteString("Operator commands:\n\n")
	helpText.WriteString("`/eligible`\n - List installments and debts due for a reminder.\n\n")
	helpText.WriteString("`/preview <id>`\n - Show the reminder text for one installment or debt.\n\n")
	helpText.WriteString("`/remind <id> [text]`\n - Send one reminder, optionally with your own text.\n\n")
	helpText.WriteString("`/remind_all`\n - Send every eligible reminder, one at a time.\n\n")
	helpText.WriteString("`/cancel`\n - Stop the running batch before its next message.\n\n")
	helpText.WriteString("`/status`\n - Show the running batch and the last result.\n\n")
	helpText.WriteString("`/customers`\n - List customers.\n\n")
	helpText.WriteString("`/send <customer id | phone> <text>`\n - Send a free-form message.\n\n")
	helpText.WriteString("`/settings`\n - Show the gateway settings.\n\n")
	helpText.WriteString("`/set <key> <value>`\n - Change one setting.\n\n")
	helpText.WriteString("`/test_gateway <phone>`\n - Send a test message with the current settings.\n\n")
	helpText.WriteString("`/help`\n - Show this message.")
	return helpText.String()
}
