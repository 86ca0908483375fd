// Package chatcmder provides the chat command for talking to a parley server.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/parley/pkg/chat"
	"github.com/papercomputeco/parley/pkg/chatclient"
	"github.com/papercomputeco/parley/pkg/cliui"
	"github.com/papercomputeco/parley/pkg/config"
	"github.com/papercomputeco/parley/pkg/credentials"
	"github.com/papercomputeco/parley/pkg/logger"
)

type chatCommander struct {
	target    string
	configDir string
	message   string
	markdown  bool
	debug     bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
}

const chatLongDesc string = `Chat with a parley server.

Replies stream in as they are produced. Chart requests come back as a
graph, summarized below the reply text. Log in first with "parley login";
the stored token for the target server is sent with every message.

Without --message an interactive session starts. Type /exit or press
Ctrl+D to quit.

Examples:
  parley chat
  parley chat --message "plot a bar chart of weekly signups"
  parley chat --target http://chat.internal:3001 --markdown`

const chatShortDesc string = "Chat with a parley server"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagTarget})
			cmder.target = strings.TrimRight(v.GetString("client.target"), "/")

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)
	cmd.Flags().StringVarP(&cmder.message, "message", "m", "", "Send a single message and exit")
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", false, "Render each finished reply as markdown instead of streaming it")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
		logger.WithWriter(c.errOut),
		logger.WithComponent("chat"),
	)

	client, username, err := c.newClient()
	if err != nil {
		return err
	}

	if c.message != "" {
		_, err := c.converse(ctx, client, c.message)
		return err
	}

	fmt.Fprintf(c.out, "\n  %s %s %s\n",
		cliui.KeyStyle.Render("Server:"),
		cliui.NameStyle.Render(c.target),
		cliui.DimStyle.Render("as "+username),
	)
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, cliui.UserStyle.Render("you> "))
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		// A failed reply is shown inline; the session continues.
		if _, err := c.converse(ctx, client, input); err != nil {
			c.logger.Debug("reply failed", "error", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	fmt.Fprintln(c.out)
	return scanner.Err()
}

func (c *chatCommander) newClient() (*chatclient.Client, string, error) {
	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return nil, "", fmt.Errorf("loading credentials: %w", err)
	}

	sc, ok, err := mgr.GetToken(c.target)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", fmt.Errorf("not logged in to %s: run \"parley login\" first", c.target)
	}

	client := chatclient.New(
		chatclient.NewHTTPTransport(c.target),
		mgr.Source(c.target),
		chatclient.WithLogger(c.logger),
	)
	return client, sc.Username, nil
}

// converse sends text and renders the reply. The returned error is the
// stream failure, if any, after it has been shown.
func (c *chatCommander) converse(ctx context.Context, client *chatclient.Client, text string) (chat.Message, error) {
	fmt.Fprintf(c.out, "%s\n", cliui.AssistantStyle.Render("parley>"))

	r := newRenderer(c.out)

	var (
		m      chat.Message
		result chatclient.Result
	)
	if c.markdown {
		_ = cliui.Step(c.out, "Waiting for reply", func() error {
			m, result = client.Converse(ctx, text, nil)
			return result.Err()
		})
		c.printMarkdown(m)
	} else {
		m, result = client.Converse(ctx, text, r.update)
	}

	r.finish(m)
	fmt.Fprintln(c.out)

	if !result.Success {
		return m, errors.New(result.Error)
	}
	return m, nil
}

func (c *chatCommander) printMarkdown(m chat.Message) {
	if m.Error || m.Text == "" {
		return
	}

	rendered, err := cliui.RenderMarkdown(m.Text)
	if err != nil {
		c.logger.Debug("markdown rendering failed", "error", err)
	}
	fmt.Fprint(c.out, rendered)
}
