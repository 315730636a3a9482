package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"menu-telegram/app"
	"menu-telegram/config"
	"menu-telegram/lang"
	"menu-telegram/services"
)

// Bot routes Telegram updates to one app.Session per chat.
type Bot struct {
	api     *tgbotapi.BotAPI
	sender  Sender
	client  app.API
	tokens  services.TokenStore
	opts    app.Options
	webhook string
	log     *zap.Logger

	// base outlives individual updates; sessions run under it.
	base   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[int64]*app.Session
	wg       sync.WaitGroup
}

func New(cfg *config.Config, client app.API, tokens services.TokenStore, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	b := newBot(api, client, tokens, app.Options{
		PollInterval: cfg.API.PollInterval,
		Logger:       logger.Named("session"),
	}, logger)
	b.api = api
	b.webhook = cfg.Telegram.WebhookURL
	b.log.Info("authorized", zap.String("bot", api.Self.UserName))
	return b, nil
}

func newBot(sender Sender, client app.API, tokens services.TokenStore, opts app.Options, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	base, cancel := context.WithCancel(context.Background())
	return &Bot{
		sender:   sender,
		client:   client,
		tokens:   tokens,
		opts:     opts,
		log:      logger.Named("bot"),
		base:     base,
		cancel:   cancel,
		sessions: make(map[int64]*app.Session),
	}
}

func (b *Bot) setBotCommands() error {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Show everything"},
		tgbotapi.BotCommand{Command: "menu", Description: "Reload the menu"},
		tgbotapi.BotCommand{Command: "login", Description: "Sign in: /login <email> <password>"},
		tgbotapi.BotCommand{Command: "register", Description: "Sign up: /register <email> <password>"},
		tgbotapi.BotCommand{Command: "order", Description: "Place the order: /order <name>"},
		tgbotapi.BotCommand{Command: "qty", Description: "Set quantity: /qty <n>"},
		tgbotapi.BotCommand{Command: "cancel", Description: "Close the dialog or cancel editing"},
		tgbotapi.BotCommand{Command: "logout", Description: "Sign out"},
		tgbotapi.BotCommand{Command: "master", Description: "Enable master mode"},
	)
	_, err := b.sender.Request(cfg)
	return err
}

// Run receives updates until ctx is done. With a webhook URL configured it
// only registers the webhook; updates then arrive through HandleUpdate.
func (b *Bot) Run(ctx context.Context) error {
	defer b.Close()

	if err := b.setBotCommands(); err != nil {
		b.log.Warn("set bot commands", zap.Error(err))
	}

	if b.webhook != "" {
		wh, err := tgbotapi.NewWebhook(b.webhook)
		if err != nil {
			return fmt.Errorf("webhook url: %w", err)
		}
		if _, err := b.sender.Request(wh); err != nil {
			return fmt.Errorf("set webhook: %w", err)
		}
		b.log.Info("webhook registered")
		<-ctx.Done()
		return nil
	}

	if b.api == nil {
		<-ctx.Done()
		return nil
	}
	if _, err := b.sender.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.log.Warn("delete webhook", zap.Error(err))
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	b.log.Info("long polling started")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// post queues events on the chat's session, starting it with Init on first
// use. It never blocks: false means the chat's inbox is full. A leading Init
// is skipped for a new session since starting one already queues Init.
// Callers hold no locks; b.mu serializes posts against idle removal.
func (b *Bot) post(chatID int64, events ...app.Event) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok {
		s = b.startSession(chatID)
	}
	for _, ev := range events {
		if _, isInit := ev.(app.Init); isInit && !ok {
			continue
		}
		if !s.TryPost(ev) {
			return false
		}
	}
	return true
}

// startSession must be called with b.mu held.
func (b *Bot) startSession(chatID int64) *app.Session {
	ui := newChatUI(b.sender, chatID, b.log.With(zap.Int64("chat_id", chatID)))
	s := app.NewSession(chatID, b.client, b.tokens, ui, b.opts)
	b.sessions[chatID] = s
	s.TryPost(app.Init{})
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.runSession(chatID, s)
	}()
	return s
}

// runSession runs s until the bot closes or the chat goes idle. An idle
// session with nothing queued is stopped and forgotten; the next message
// from the chat starts a fresh one.
func (b *Bot) runSession(chatID int64, s *app.Session) {
	for {
		if err := s.Run(b.base); !errors.Is(err, app.ErrIdle) {
			return
		}
		b.mu.Lock()
		if s.Pending() > 0 {
			b.mu.Unlock()
			continue
		}
		delete(b.sessions, chatID)
		b.mu.Unlock()
		s.Close()
		b.log.Debug("idle session dropped", zap.Int64("chat_id", chatID))
		return
	}
}

// HandleUpdate dispatches one update without waiting on the chat's session.
// It is safe for concurrent use.
func (b *Bot) HandleUpdate(_ context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil && update.Message.Chat != nil:
		b.handleMessage(update.Message)
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	cmd := parseCommand(msg.Text)
	if cmd.secret {
		b.deleteMessage(chatID, msg.MessageID)
	}
	if cmd.reply != "" {
		b.send(chatID, lang.T(lang.En, cmd.reply))
		return
	}
	if !b.post(chatID, cmd.events...) {
		b.busy(chatID)
	}
}

func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	b.AnswerCallbackQuery(cq.ID, "")
	if cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	ev, err := app.ParseAction(cq.Data)
	if err != nil {
		b.log.Debug("bad callback data", zap.String("data", cq.Data), zap.Error(err))
		return
	}
	if _, ok := ev.(app.Decision); ok {
		b.deleteMessage(chatID, cq.Message.MessageID)
	}
	if !b.post(chatID, ev) {
		b.busy(chatID)
	}
}

// busy tells the chat its previous requests are still being handled.
func (b *Bot) busy(chatID int64) {
	b.log.Warn("chat inbox full, update dropped", zap.Int64("chat_id", chatID))
	b.send(chatID, lang.T(lang.En, "busy"))
}

// AnswerCallbackQuery stops the client's button spinner.
func (b *Bot) AnswerCallbackQuery(callbackQueryID, text string) {
	if _, err := b.sender.Request(tgbotapi.NewCallback(callbackQueryID, text)); err != nil {
		b.log.Debug("answer callback", zap.Error(err))
	}
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("send error", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.sender.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.log.Debug("delete message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// Close stops every session and waits for them to exit.
func (b *Bot) Close() {
	b.cancel()
	b.wg.Wait()
}

// Sessions reports how many chats have a live session.
func (b *Bot) Sessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}
