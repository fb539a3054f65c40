package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier wraps the Telegram API for outbound messages. It satisfies the
// notifier interfaces of the matchmaking service, the sweeper and the admin
// handlers.
type Notifier struct {
	api *tgbotapi.BotAPI
}

func NewNotifier(api *tgbotapi.BotAPI) *Notifier {
	return &Notifier{api: api}
}

func (n *Notifier) SendText(userID int64, text string) error {
	_, err := n.api.Send(tgbotapi.NewMessage(userID, text))
	return err
}

func (n *Notifier) SendTextWithURLButton(userID int64, text, label, url string) error {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(label, url)),
	)
	_, err := n.api.Send(msg)
	return err
}

func (n *Notifier) SendPhotoWithURLButton(userID int64, fileID, caption, label, url string) error {
	photo := tgbotapi.NewPhoto(userID, tgbotapi.FileID(fileID))
	photo.Caption = caption
	photo.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(label, url)),
	)
	_, err := n.api.Send(photo)
	return err
}
