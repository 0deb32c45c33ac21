package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"ai-nutricare/internal/config"
	"ai-nutricare/internal/dashboard"
	"ai-nutricare/internal/gateway"
	"ai-nutricare/internal/intake"
	"ai-nutricare/internal/metrics"
	"ai-nutricare/internal/report"
	"ai-nutricare/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// IdentityStore returns the identity manager of one chat.
type IdentityStore func(chatID int64) *session.Manager

// Bot is the chat front end over the analysis dashboard.
type Bot struct {
	api        *tgbotapi.BotAPI
	cfg        *config.Config
	analyzer   gateway.Analyzer
	exporter   *report.Exporter
	identities IdentityStore
	logger     *zap.Logger
	httpClient *http.Client

	mu    sync.Mutex
	chats map[int64]*chat
}

// chat is the per-conversation dashboard. Its lock serialises analyses so a
// second upload waits for the first.
type chat struct {
	mu   sync.Mutex
	dash *dashboard.Dashboard
}

// NewBot authorizes against the Bot API. With a webhook URL configured the
// webhook is registered; otherwise Poll is used to long polling.
func NewBot(cfg *config.Config, analyzer gateway.Analyzer, exporter *report.Exporter, identities IdentityStore, logger *zap.Logger) (*Bot, error) {
	if err := cfg.RequireTelegram(); err != nil {
		return nil, err
	}
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	if webhookURL := cfg.Telegram.WebhookURL; webhookURL != "" {
		wh, err := tgbotapi.NewWebhook(webhookURL)
		if err != nil {
			return nil, fmt.Errorf("failed to build webhook for %s: %w", webhookURL, err)
		}
		resp, err := api.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
		}
		logger.Info("webhook set", zap.String("description", resp.Description))
	}

	return &Bot{
		api:        api,
		cfg:        cfg,
		analyzer:   analyzer,
		exporter:   exporter,
		identities: identities,
		logger:     logger,
		httpClient: &http.Client{},
		chats:      make(map[int64]*chat),
	}, nil
}

// RegisterHandlers mounts the webhook and health endpoints on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", b.handleHealth)
}

// Poll consumes updates by long polling until ctx is done. It is used when
// no webhook URL is configured.
func (b *Bot) Poll(ctx context.Context) {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.logger.Warn("failed to delete webhook", zap.Error(err))
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := metrics.GetSysHealth(filepath.Dir(b.cfg.DatabasePath))
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		b.logger.Warn("failed to encode health", zap.Error(err))
	}
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.logger.Warn("error parsing update", zap.Error(err))
		return
	}
	b.dispatch(context.Background(), *update)
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if !b.cfg.IsAllowed(update.CallbackQuery.From.ID) {
			return
		}
		go b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil:
		from := update.Message.From
		if from == nil || !b.cfg.IsAllowed(from.ID) {
			if from != nil {
				b.logger.Warn("unauthorized access attempt", zap.Int64("user_id", from.ID), zap.String("username", from.UserName))
			}
			return
		}
		go b.processMessage(ctx, update.Message)
	}
}

func (b *Bot) chatFor(chatID int64) *chat {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.chats[chatID]
	if !ok {
		c = &chat{dash: dashboard.New(b.cfg.Preferences())}
		b.chats[chatID] = c
	}
	return c
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Document != nil {
		b.handleDocument(ctx, msg)
		return
	}

	if !msg.IsCommand() {
		b.reply(msg.Chat.ID, "Send a lab report PDF, or use /manual glucose=95 creatinine=1.0 urea=15 sodium=140 potassium=4.0 cholesterol=180")
		return
	}

	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		b.reply(msg.Chat.ID, helpText)
	case "diet":
		b.handleDiet(msg.Chat.ID, args)
	case "region":
		b.handleRegion(msg.Chat.ID, args)
	case "manual":
		b.handleManual(ctx, msg.Chat.ID, args)
	case "login", "signin":
		b.handleSignIn(ctx, msg.Chat.ID, args)
	case "signup":
		b.handleSignUp(ctx, msg.Chat.ID, args)
	case "logout":
		if err := b.identities(msg.Chat.ID).SignOut(ctx); err != nil {
			b.logger.Error("sign out failed", zap.Error(err))
			b.reply(msg.Chat.ID, "❌ Could not sign out.")
			return
		}
		b.reply(msg.Chat.ID, "👋 Signed out.")
	case "whoami":
		id, err := b.identities(msg.Chat.ID).Current(ctx)
		if err != nil {
			b.logger.Error("identity lookup failed", zap.Error(err))
		}
		b.reply(msg.Chat.ID, formatIdentity(id))
	case "health":
		b.reply(msg.Chat.ID, formatHealth(metrics.GetSysHealth(filepath.Dir(b.cfg.DatabasePath))))
	default:
		b.reply(msg.Chat.ID, "Unknown command. Try /help.")
	}
}

func (b *Bot) handleDiet(chatID int64, args string) {
	c := b.chatFor(chatID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if args == "" {
		c.dash.Prefs.CycleDiet()
	} else {
		d, err := intake.ParseDietType(args)
		if err != nil {
			b.reply(chatID, formatError(err.Error()))
			return
		}
		c.dash.Prefs.DietType = d
	}
	b.reply(chatID, formatPreferences(c.dash.Prefs.DietaryPreferences))
}

func (b *Bot) handleRegion(chatID int64, args string) {
	c := b.chatFor(chatID)
	c.mu.Lock()
	defer c.mu.Unlock()
	r, err := intake.ParseRegion(args)
	if err != nil {
		b.reply(chatID, formatError(err.Error()))
		return
	}
	c.dash.Prefs.Region = r
	b.reply(chatID, formatPreferences(c.dash.Prefs.DietaryPreferences))
}

func (b *Bot) handleSignIn(ctx context.Context, chatID int64, args string) {
	id, err := b.identities(chatID).SignIn(ctx, args)
	if err != nil {
		b.reply(chatID, "Usage: /login you@example.com")
		return
	}
	b.reply(chatID, formatIdentity(id))
}

func (b *Bot) handleSignUp(ctx context.Context, chatID int64, args string) {
	name, email := splitSignUp(args)
	id, err := b.identities(chatID).SignUp(ctx, name, email)
	if err != nil {
		b.reply(chatID, "Usage: /signup Full Name you@example.com")
		return
	}
	b.reply(chatID, formatIdentity(id))
}

// splitSignUp takes the last word as the email and the rest as the name.
func splitSignUp(args string) (string, string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return "", ""
	}
	return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
}

func (b *Bot) handleManual(ctx context.Context, chatID int64, args string) {
	c := b.chatFor(chatID)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dash.Mode = dashboard.ModeManual
	c.dash.Form.Reset()
	if err := intake.ParseAssignments(c.dash.Form, args); err != nil {
		b.reply(chatID, formatError(err.Error()))
		return
	}
	b.analyze(ctx, chatID, c)
}

func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	data, err := b.download(ctx, msg.Document.FileID)
	if err != nil {
		b.logger.Error("failed to download document", zap.Error(err))
		b.reply(chatID, "❌ Could not download the file.")
		return
	}

	c := b.chatFor(chatID)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dash.Mode = dashboard.ModeDocument
	if !c.dash.SelectDocument(msg.Document.FileName, data) {
		b.reply(chatID, formatError(c.dash.Err()))
		return
	}
	b.analyze(ctx, chatID, c)
}

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download error: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// analyze runs the dashboard submit with a placeholder message that is
// edited once the service answers. Caller holds c.mu.
func (b *Bot) analyze(ctx context.Context, chatID int64, c *chat) {
	placeholder := tgbotapi.NewMessage(chatID, "🔬 *Analyzing...*\n(Sending your data to the clinical engine)")
	placeholder.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(placeholder)
	if err != nil {
		b.logger.Error("failed to send initial reply", zap.Error(err))
		return
	}

	if !c.dash.Submit(ctx, b.analyzer) {
		b.edit(chatID, sent.MessageID, formatError(c.dash.Err()), nil)
		return
	}
	if msg := c.dash.Err(); msg != "" {
		b.edit(chatID, sent.MessageID, fmt.Sprintf("❌ *Analysis failed:*\n```\n%s\n```", strings.ReplaceAll(msg, "`", "'")), nil)
		return
	}

	resp := c.dash.Result()
	b.edit(chatID, sent.MessageID, formatResultMarkdown(resp), nil)

	kb := dayKeyboard(c.dash.Days.Current())
	dayMsg := tgbotapi.NewMessage(chatID, formatDayMarkdown(c.dash.CurrentDay(), c.dash.Days.Current()))
	dayMsg.ParseMode = tgbotapi.ModeMarkdown
	dayMsg.ReplyMarkup = kb
	if _, err := b.api.Send(dayMsg); err != nil {
		b.logger.Error("failed to send day view", zap.Error(err))
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Answer first to stop the client spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Warn("failed to answer callback", zap.Error(err))
	}
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	c := b.chatFor(chatID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dash.Result() == nil {
		b.reply(chatID, "No analysis yet. Send a lab report first.")
		return
	}

	action, arg, _ := strings.Cut(query.Data, "|")
	switch action {
	case "day":
		if arg == "next" {
			c.dash.Days.Next()
		} else {
			c.dash.Days.Prev()
		}
		kb := dayKeyboard(c.dash.Days.Current())
		b.edit(chatID, query.Message.MessageID, formatDayMarkdown(c.dash.CurrentDay(), c.dash.Days.Current()), &kb)
	case "pdf":
		b.sendReport(ctx, chatID, c)
	}
}

func (b *Bot) sendReport(ctx context.Context, chatID int64, c *chat) {
	who, err := b.identities(chatID).Current(ctx)
	if err != nil {
		b.logger.Warn("identity lookup failed", zap.Error(err))
	}
	data, err := b.exporter.Bytes(c.dash.Result(), who)
	if err != nil {
		b.logger.Error("failed to render report", zap.Error(err))
		b.reply(chatID, "❌ Could not build the report.")
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: b.exporter.Filename(), Bytes: data})
	doc.Caption = "📄 Your clinical analysis & 7-day diet plan"
	if _, err := b.api.Send(doc); err != nil {
		b.logger.Error("failed to send report", zap.Error(err))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("failed to send message", zap.Error(err))
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = kb
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("failed to edit message", zap.Error(err))
	}
}
