package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/magbay/LAN-Chat/bot"
)

const checkPrompt = "Hello, are you there?"

// NewBotCommand creates the command that runs the AI participant.
func NewBotCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		nickname string
		check    bool
	)

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run an AI participant in the room",
		Long: `Run an AI participant backed by an OpenAI-compatible endpoint
(Ollama or LM Studio).

The bot answers when its nickname, a part of it, or its full name is mentioned,
and otherwise at random with AI_RESPONSE_PROBABILITY. It reconnects when the
server goes away. Endpoint settings come from AI_* environment variables;
AI_SERVER_URL is used unless --server is given.

With --check it sends one prompt to the model, prints the reply and exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bot.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.ServerURL == "" || cmd.Flags().Changed("server") {
				cfg.ServerURL = rootOpts.Server
			}
			if nickname != "" {
				cfg.Nickname = nickname
			}

			completer := bot.NewOpenAICompleter(cfg)
			if check {
				return checkModel(cmd.Context(), completer, cmd.OutOrStdout())
			}

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			b := bot.New(cfg, completer, logger)
			logger.Info("Starting bot", "nickname", b.Nickname(), "apiType", cfg.APIType,
				"apiURL", cfg.APIURL, "model", cfg.Model, "server", cfg.ServerURL)
			return b.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&nickname, "nick", "n", "", "nickname to join with (default random)")
	cmd.Flags().BoolVar(&check, "check", false, "ask the model once and exit")
	return cmd
}

func checkModel(ctx context.Context, completer bot.Completer, out io.Writer) error {
	reply, err := completer.Complete(ctx, checkPrompt)
	if err != nil {
		return fmt.Errorf("model check failed: %w", err)
	}
	fmt.Fprintln(out, reply)
	return nil
}
