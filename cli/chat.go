package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/magbay/LAN-Chat/client"
)

const quitCommand = "/quit"

// NewChatCommand creates the interactive chat command.
func NewChatCommand(rootOpts *RootOptions) *cobra.Command {
	var nickname string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Join the room and chat from the terminal",
		Long: `Join the room and chat from the terminal.

Every line read from stdin is sent as a message. Type /quit to leave.
Without --nick the server picks a random nickname.

With --format json each received message is printed as one JSON object per
line with its classified spans; roster and typing changes are not printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), rootOpts, nickname, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&nickname, "nick", "n", "", "nickname to join with")
	return cmd
}

func runChat(ctx context.Context, opts *RootOptions, nickname string, in io.Reader, out, errOut io.Writer) error {
	if nickname == "" {
		nick, err := client.NewHTTPClient(opts.Server).RandomNickname(ctx)
		if err != nil {
			return fmt.Errorf("pick nickname: %w", err)
		}
		nickname = nick
	}

	conn, err := client.Dial(ctx, opts.Server)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Join(nickname); err != nil {
		return fmt.Errorf("join: %w", err)
	}
	fmt.Fprintf(errOut, "Joined as %s. Type %s to leave.\n", nickname, quitCommand)

	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		renderEvents(conn.Events(), client.NewView(nickname), opts.Format, out)
	}()

	stop := make(chan struct{})
	defer close(stop)
	lines := readLines(in, stop)

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close()
			<-rendered
			return nil
		case <-rendered:
			if err := conn.Err(); err != nil {
				return fmt.Errorf("connection lost: %w", err)
			}
			return nil
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == quitCommand {
				_ = conn.Close()
				<-rendered
				return nil
			}
			if err := conn.Send(line); err != nil {
				return err
			}
		}
	}
}

// readLines delivers lines from in until it is exhausted or stop is closed.
// A reader blocked inside Read is only released by closing in itself.
func readLines(in io.Reader, stop <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case <-stop:
				return
			default:
			}
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
	}()
	return lines
}

// renderEvents applies events to view and prints what changed.
func renderEvents(events <-chan client.Event, view *client.View, format string, out io.Writer) {
	status := ""
	enc := json.NewEncoder(out)
	for ev := range events {
		view.Apply(ev)
		switch ev.(type) {
		case client.MessageEvent:
			entry := view.Entries[len(view.Entries)-1]
			if format == "json" {
				_ = enc.Encode(entry)
				continue
			}
			fmt.Fprintln(out, client.RenderText(entry))
		case client.RosterEvent, client.TypingEvent:
			if format == "json" {
				continue
			}
			if s := view.StatusLine(); s != status {
				status = s
				fmt.Fprintln(out, "-- "+s)
			}
		}
	}
}
