// Package cli implements the lanchat command line client.
package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
)

// DefaultServer is used when neither --server nor LANCHAT_SERVER is set.
const DefaultServer = "http://localhost:3000"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server string
	Format string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the lanchat CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "lanchat",
		Short: "LAN Chat client",
		Long:  "Join the local network chat room, share images, inspect who is online or run an AI participant.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.Server, "server", "s", defaultServer(), "chat server base URL (env LANCHAT_SERVER)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewChatCommand(opts))
	cmd.AddCommand(NewNickCommand(opts))
	cmd.AddCommand(NewUploadCommand(opts))
	cmd.AddCommand(NewRosterCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewBotCommand(opts))

	return cmd
}

func defaultServer() string {
	if s := os.Getenv("LANCHAT_SERVER"); s != "" {
		return s
	}
	return DefaultServer
}
