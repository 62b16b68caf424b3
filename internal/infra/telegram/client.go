package telegram

import (
	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the domain telegram Client with gopkg.in/telebot.v3.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends text to a private chat with an operator.
func (tba *TelebotAdapter) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{DisableWebPagePreview: true}
	}
	_, err := tba.bot.Send(&telebot.User{ID: chatID}, text, options)
	return err
}
