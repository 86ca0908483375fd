// Package historycmder provides the history command that lists the
// exchanges a parley server recorded for the logged in user.
package historycmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/parley/pkg/chat"
	"github.com/papercomputeco/parley/pkg/chatclient"
	"github.com/papercomputeco/parley/pkg/cliui"
	"github.com/papercomputeco/parley/pkg/config"
	"github.com/papercomputeco/parley/pkg/credentials"
	"github.com/papercomputeco/parley/pkg/transcript"
	"github.com/papercomputeco/parley/pkg/utils"
)

const previewLen = 60

type historyCommander struct {
	target    string
	configDir string
	asJSON    bool

	out io.Writer
}

const historyLongDesc string = `List your recorded exchanges, most recent first.

Every completed reply is recorded by the server. Use --json for the raw
transcript list.

Examples:
  parley history
  parley history --json`

const historyShortDesc string = "List your recorded exchanges"

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
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
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print the transcript list as JSON")

	return cmd
}

func (c *historyCommander) run(ctx context.Context) error {
	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	client := chatclient.New(chatclient.NewHTTPTransport(c.target), mgr.Source(c.target))

	list, err := client.Transcripts(ctx)
	if err != nil {
		return fmt.Errorf("listing transcripts: %w", err)
	}

	if c.asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	c.print(list)
	return nil
}

func (c *historyCommander) print(list *transcript.List) {
	if list.Count == 0 {
		fmt.Fprintf(c.out, "\n  %s No exchanges recorded yet.\n\n", cliui.DimStyle.Render("●"))
		return
	}

	fmt.Fprintf(c.out, "\n  %s %s\n\n",
		cliui.HeaderStyle.Render("History"),
		cliui.DimStyle.Render(fmt.Sprintf("(%d exchanges)", list.Count)),
	)

	for _, ex := range list.Exchanges {
		reply := ex.Message()

		mark := cliui.SuccessMark
		if reply.Error {
			mark = cliui.FailMark
		}

		kind := string(reply.ContentType)
		if reply.ContentType == chat.ContentGraph {
			kind += ":" + reply.GraphType
		}

		fmt.Fprintf(c.out, "  %s %s %s\n",
			mark,
			cliui.DimStyle.Render(ex.CreatedAt.Local().Format(time.DateTime)),
			cliui.KeyStyle.Render("["+kind+"]"),
		)
		fmt.Fprintf(c.out, "    %s %s\n",
			cliui.UserStyle.Render("you>"),
			utils.Truncate(utils.FirstLine(ex.Prompt), previewLen),
		)
		fmt.Fprintf(c.out, "    %s %s\n\n",
			cliui.AssistantStyle.Render("parley>"),
			utils.Truncate(lastLine(reply.DisplayText()), previewLen),
		)
	}
}

// lastLine is the final non-empty line of a reply, which carries the outcome.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return lines[len(lines)-1]
}
