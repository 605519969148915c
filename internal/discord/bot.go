// Package discord provides the Discord chat layer for SpencerBot. It owns
// the discordgo.Session lifecycle, routes channel messages to the exercise
// engine, and renders engine output as embeds.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/spencerchil/spencerbot/internal/config"
	"github.com/spencerchil/spencerbot/internal/drill"
)

// syncCommand triggers an AnkiWeb sync from any channel in the guild.
const syncCommand = "!sync"

// TurnHandler processes one user message for an exercise channel.
type TurnHandler interface {
	HandleTurn(ctx context.Context, userID string, kind drill.Kind, text string, sink drill.Sink) error
}

var _ TurnHandler = (*drill.Engine)(nil)

// Syncer pushes the local flashcard collection to its remote account.
type Syncer interface {
	Sync(ctx context.Context) error
}

// Bot owns the Discord gateway connection and routes guild messages to
// the exercise engine by channel ID.
type Bot struct {
	session   *discordgo.Session
	engine    TurnHandler
	syncer    Syncer
	routes    map[string]drill.Kind
	guildID   string
	log       *slog.Logger
	closeOnce sync.Once
}

// Option configures a Bot.
type Option func(*Bot)

// WithSyncer enables the !sync command, backed by the given Syncer.
func WithSyncer(s Syncer) Option {
	return func(b *Bot) { b.syncer = s }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(b *Bot) { b.log = log }
}

// New creates a Bot and registers the message handler. The gateway
// connection is opened by Run.
func New(cfg config.DiscordConfig, engine TurnHandler, opts ...Option) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	b := &Bot{
		session: session,
		engine:  engine,
		routes:  cfg.KindChannels(),
		guildID: cfg.GuildID,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if u := s.State.User; u != nil && m.Author != nil && m.Author.ID == u.ID {
			return
		}
		b.handleMessage(context.Background(), s, m.Message)
	})

	return b, nil
}

// Session returns the underlying discordgo session.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Run opens the gateway connection and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord: open session: %w", err)
	}
	b.log.Info("discord bot connected", "guild_id", b.guildID, "channels", len(b.routes))
	<-ctx.Done()
	return ctx.Err()
}

// Close disconnects from Discord.
func (b *Bot) Close() error {
	var closeErr error
	b.closeOnce.Do(func() {
		if err := b.session.Close(); err != nil {
			closeErr = fmt.Errorf("discord: close session: %w", err)
		}
		b.log.Info("discord bot closed")
	})
	return closeErr
}

// handleMessage is the outermost boundary for one inbound message. A panic
// anywhere below is logged and turned into a generic error panel so the
// gateway loop keeps running.
func (b *Bot) handleMessage(ctx context.Context, send messageSender, m *discordgo.Message) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	// Single-guild restriction. DMs have an empty GuildID and are dropped too.
	if m.GuildID != b.guildID {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.log.Error("panic in message handler", "channel_id", m.ChannelID, "panic", r)
			b.sendErrorPanel(ctx, send, m.ChannelID)
		}
	}()

	text := strings.TrimSpace(m.Content)
	if strings.EqualFold(text, syncCommand) {
		b.handleSync(ctx, send, m)
		return
	}

	kind, ok := b.routes[m.ChannelID]
	if !ok {
		return
	}

	sink := &channelSink{send: send, channelID: m.ChannelID}
	if err := b.engine.HandleTurn(ctx, m.Author.ID, kind, text, sink); err != nil {
		b.log.Error("turn failed", "user_id", m.Author.ID, "kind", kind, "err", err)
	}
}

func (b *Bot) handleSync(ctx context.Context, send messageSender, m *discordgo.Message) {
	if b.syncer == nil {
		b.sendText(ctx, send, m.ChannelID, "⚠️ AnkiWeb sync is not configured.")
		return
	}

	b.log.Info("syncing collection to AnkiWeb", "user_id", m.Author.ID)
	b.sendText(ctx, send, m.ChannelID, "⏳ Syncing... Make sure Anki is closed.")

	if err := b.syncer.Sync(ctx); err != nil {
		b.log.Error("AnkiWeb sync failed", "user_id", m.Author.ID, "err", err)
		b.sendText(ctx, send, m.ChannelID, "❌ "+err.Error())
		return
	}
	b.sendText(ctx, send, m.ChannelID, "✅ Collection synced to AnkiWeb.")
}

func (b *Bot) sendText(ctx context.Context, send messageSender, channelID, content string) {
	_, err := send.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{Content: content}, discordgo.WithContext(ctx))
	if err != nil {
		b.log.Warn("failed to send message", "channel_id", channelID, "err", err)
	}
}

func (b *Bot) sendErrorPanel(ctx context.Context, send messageSender, channelID string) {
	data := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{Embed(drill.Message{
		Title: "❌ Error",
		Body:  "Something went wrong. Check the bot logs.",
		Color: drill.ColorError,
	})}}
	if _, err := send.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx)); err != nil {
		b.log.Warn("failed to send error panel", "channel_id", channelID, "err", err)
	}
}
