package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/magbay/LAN-Chat/client"
)

// NewNickCommand creates the nick command.
func NewNickCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "nick",
		Short: "Print a random nickname from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nick, err := client.NewHTTPClient(rootOpts.Server).RandomNickname(cmd.Context())
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), rootOpts.Format, map[string]string{"nickname": nick}, nick)
		},
	}
}

// NewUploadCommand creates the upload command.
func NewUploadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <image>",
		Short: "Upload an image and print the URL to share",
		Long: `Upload a png, jpg, jpeg, gif or webp image.

The printed URL can be pasted into a chat message; clients show it inline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			url, err := client.NewHTTPClient(rootOpts.Server).Upload(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), rootOpts.Format, map[string]string{"url": url}, url)
		},
	}
}

// NewRosterCommand creates the roster command.
func NewRosterCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "roster",
		Short: "Show who is in the room",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := client.NewHTTPClient(rootOpts.Server).Roster(cmd.Context())
			if err != nil {
				return err
			}
			text := fmt.Sprintf("%d online", roster.Count)
			if roster.Count > 0 {
				text += ": " + strings.Join(roster.Nicknames, ", ")
			}
			return output(cmd.OutOrStdout(), rootOpts.Format, roster, text)
		},
	}
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show room statistics since the server started",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := client.NewHTTPClient(rootOpts.Server).Stats(cmd.Context())
			if err != nil {
				return err
			}
			text := fmt.Sprintf("messages=%v joins=%v leaves=%v peak=%v online=%v",
				stats["messages"], stats["joins"], stats["leaves"], stats["peak_peers"], stats["current_peers"])
			return output(cmd.OutOrStdout(), rootOpts.Format, stats, text)
		},
	}
}

// output writes v as indented JSON or text as a plain line.
func output(w io.Writer, format string, v any, text string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
