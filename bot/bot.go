package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/magbay/LAN-Chat/client"
	"github.com/magbay/LAN-Chat/domain/chat"
)

// ErrServerClosed is returned when the server ends the connection cleanly.
var ErrServerClosed = errors.New("server closed the connection")

// Bot is an AI participant. It answers when its name comes up, or at random
// with ResponseProbability, and now and then drops a short info message.
type Bot struct {
	cfg       Config
	nickname  string
	completer Completer
	logger    *slog.Logger

	roll func() float64
	pick func(n int) int
}

// New creates a bot. Without cfg.Nickname it picks a random one.
func New(cfg Config, completer Completer, logger *slog.Logger) *Bot {
	nickname := cfg.Nickname
	if nickname == "" {
		nickname = chat.RandomNickname()
	}
	return &Bot{
		cfg:       cfg,
		nickname:  nickname,
		completer: completer,
		logger:    logger,
		roll:      rand.Float64,
		pick:      rand.IntN,
	}
}

// Nickname returns the name the bot joins with.
func (b *Bot) Nickname() string {
	return b.nickname
}

// Run keeps the bot in the room until ctx is cancelled, reconnecting after
// ReconnectWait whenever the connection drops or cannot be made.
func (b *Bot) Run(ctx context.Context) error {
	for {
		err := b.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		b.logger.Warn("Connection lost", "error", err, "retryIn", b.cfg.ReconnectWait)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(b.cfg.ReconnectWait):
		}
	}
}

func (b *Bot) session(ctx context.Context) error {
	conn, err := client.Dial(ctx, b.cfg.ServerURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Join(b.nickname); err != nil {
		return fmt.Errorf("join: %w", err)
	}
	b.logger.Info("Joined chat", "nickname", b.nickname, "server", b.cfg.ServerURL)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-conn.Events():
			if !ok {
				if err := conn.Err(); err != nil {
					return err
				}
				return ErrServerClosed
			}
			msg, isMessage := ev.(client.MessageEvent)
			if !isMessage {
				continue
			}
			for _, text := range b.respond(ctx, msg.Message) {
				if err := conn.Send(text); err != nil {
					return err
				}
			}
		}
	}
}

// respond returns what the bot says in answer to msg, possibly nothing.
func (b *Bot) respond(ctx context.Context, msg chat.Message) []string {
	if ignored(msg, b.nickname) {
		return nil
	}

	var out []string
	if Mentioned(msg.Text, b.nickname, b.cfg.FullName) || b.roll() < b.cfg.ResponseProbability {
		b.logger.Info("Replying", "to", msg.Nickname)
		reply, err := b.completer.Complete(ctx, Prompt(msg.Text))
		if err != nil {
			b.logger.Warn("Completion failed", "error", err)
		} else {
			out = append(out, reply)
		}
	}
	if b.roll() < b.cfg.InfoProbability {
		out = append(out, infoMessages[b.pick(len(infoMessages))])
	}
	return out
}
