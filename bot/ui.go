package bot

import (
	"context"
	"html"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"menu-telegram/app"
	"menu-telegram/lang"
)

const maxMessageLen = 4096

// Sender is the part of *tgbotapi.BotAPI the bot uses to talk to chats.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type shownCard struct {
	messageID int
	text      string
	buttons   string
}

// chatUI keeps one Telegram message per card and edits it in place.
type chatUI struct {
	sender Sender
	chatID int64
	log    *zap.Logger

	mu    sync.Mutex
	cards map[string]shownCard
}

func newChatUI(sender Sender, chatID int64, logger *zap.Logger) *chatUI {
	return &chatUI{
		sender: sender,
		chatID: chatID,
		log:    logger,
		cards:  make(map[string]shownCard),
	}
}

// cardMarkup converts card buttons to an inline keyboard; nil when there are none.
func cardMarkup(buttons [][]app.CardButton) *tgbotapi.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var btns []tgbotapi.InlineKeyboardButton
		for _, btn := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Action))
		}
		rows = append(rows, btns)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func buttonsKey(buttons [][]app.CardButton) string {
	var b strings.Builder
	for _, row := range buttons {
		for _, btn := range row {
			b.WriteString(btn.Text)
			b.WriteByte(0)
			b.WriteString(btn.Action)
			b.WriteByte(1)
		}
		b.WriteByte(2)
	}
	return b.String()
}

func truncate(text string) string {
	r := []rune(text)
	if len(r) <= maxMessageLen {
		return text
	}
	return string(r[:maxMessageLen-1]) + "…"
}

func (u *chatUI) Render(ctx context.Context, screen app.Screen) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, card := range screen.Cards {
		if card.Hidden {
			u.removeCard(card.Key)
			continue
		}
		u.upsertCard(card)
	}
	return nil
}

func (u *chatUI) removeCard(key string) {
	shown, ok := u.cards[key]
	if !ok {
		return
	}
	delete(u.cards, key)
	if _, err := u.sender.Request(tgbotapi.NewDeleteMessage(u.chatID, shown.messageID)); err != nil {
		u.log.Debug("delete card", zap.String("card", key), zap.Error(err))
	}
}

// upsertCard edits the card's message if we have one, otherwise sends a new
// one. A "not found" edit falls back to a new message; "not modified" is ignored.
func (u *chatUI) upsertCard(card app.Card) {
	text := truncate(card.Text)
	buttons := buttonsKey(card.Buttons)
	shown, ok := u.cards[card.Key]
	if ok && shown.text == text && shown.buttons == buttons {
		return
	}
	if ok {
		edit := tgbotapi.NewEditMessageText(u.chatID, shown.messageID, text)
		if kb := cardMarkup(card.Buttons); kb != nil {
			edit.ReplyMarkup = kb
		} else {
			emptyKb := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
			edit.ReplyMarkup = &emptyKb
		}
		_, err := u.sender.Send(edit)
		switch {
		case err == nil:
			u.cards[card.Key] = shownCard{messageID: shown.messageID, text: text, buttons: buttons}
			return
		case strings.Contains(err.Error(), "not modified"):
			u.cards[card.Key] = shownCard{messageID: shown.messageID, text: text, buttons: buttons}
			return
		case !strings.Contains(err.Error(), "not found"):
			u.log.Warn("edit card", zap.String("card", card.Key), zap.Error(err))
			return
		}
	}
	msg := tgbotapi.NewMessage(u.chatID, text)
	if kb := cardMarkup(card.Buttons); kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, err := u.sender.Send(msg)
	if err != nil {
		u.log.Warn("send card", zap.String("card", card.Key), zap.Error(err))
		return
	}
	u.cards[card.Key] = shownCard{messageID: sent.MessageID, text: text, buttons: buttons}
}

// Notify sends the notice text unchanged. Errors are set in bold instead of
// being prefixed, so the chat shows exactly the server's message.
func (u *chatUI) Notify(ctx context.Context, n app.Notice) error {
	msg := tgbotapi.NewMessage(u.chatID, truncate(n.Text))
	if n.Level == app.LevelError {
		msg.Text = "<b>" + html.EscapeString(msg.Text) + "</b>"
		msg.ParseMode = tgbotapi.ModeHTML
	}
	_, err := u.sender.Send(msg)
	return err
}

func (u *chatUI) Confirm(ctx context.Context, c app.Confirmation) error {
	msg := tgbotapi.NewMessage(u.chatID, c.Prompt)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(lang.T(lang.En, "confirm_yes"), app.Action(app.Decision{ID: c.ID, Accepted: true})),
		tgbotapi.NewInlineKeyboardButtonData(lang.T(lang.En, "confirm_no"), app.Action(app.Decision{ID: c.ID})),
	))
	_, err := u.sender.Send(msg)
	return err
}
