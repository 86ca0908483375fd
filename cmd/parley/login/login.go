// Package logincmder provides the login and logout commands that manage the
// token a parley server issues.
package logincmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/papercomputeco/parley/pkg/chatclient"
	"github.com/papercomputeco/parley/pkg/cliui"
	"github.com/papercomputeco/parley/pkg/config"
	"github.com/papercomputeco/parley/pkg/credentials"
)

type loginCommander struct {
	target    string
	configDir string

	in  io.Reader
	out io.Writer
}

const loginLongDesc string = `Log in to a parley server.

The username is taken from the argument or prompted for. The password is
read with hidden input on a terminal, or from the next line of stdin when
input is piped. The issued token is stored in credentials.toml in the
.parley/ directory, keyed by server URL.

Examples:
  parley login admin
  parley login --target http://chat.internal:3001
  printf 'demo\n' | parley login demo`

const loginShortDesc string = "Log in to a parley server"

func NewLoginCmd() *cobra.Command {
	cmder := &loginCommander{}

	cmd := &cobra.Command{
		Use:     "login [username]",
		Short:   loginShortDesc,
		Long:    loginLongDesc,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: cmder.resolveTarget,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()

			var username string
			if len(args) == 1 {
				username = args[0]
			}
			return cmder.runLogin(cmd, username)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)

	return cmd
}

const logoutLongDesc string = `Log out of a parley server.

Removes the stored token for the target server.

Examples:
  parley logout
  parley logout --target http://chat.internal:3001`

const logoutShortDesc string = "Log out of a parley server"

func NewLogoutCmd() *cobra.Command {
	cmder := &loginCommander{}

	cmd := &cobra.Command{
		Use:     "logout",
		Short:   logoutShortDesc,
		Long:    logoutLongDesc,
		Args:    cobra.NoArgs,
		PreRunE: cmder.resolveTarget,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			return cmder.runLogout()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)

	return cmd
}

// resolveTarget applies flag > env > config file > default to --target.
func (c *loginCommander) resolveTarget(cmd *cobra.Command, _ []string) error {
	c.configDir, _ = cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagTarget})
	c.target = targetOf(v)

	return nil
}

func targetOf(v *viper.Viper) string {
	return strings.TrimRight(v.GetString("client.target"), "/")
}

func (c *loginCommander) runLogin(cmd *cobra.Command, username string) error {
	reader := bufio.NewReader(c.in)

	username = strings.TrimSpace(username)
	if username == "" {
		fmt.Fprint(c.out, "Username: ")
		line, err := readLine(reader)
		if err != nil {
			return fmt.Errorf("reading username: %w", err)
		}
		username = strings.TrimSpace(line)
	}

	password, err := c.readPassword(reader)
	if err != nil {
		return err
	}

	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	client := chatclient.New(chatclient.NewHTTPTransport(c.target), nil)

	var issued string
	err = cliui.Step(c.out, "Logging in to "+c.target, func() error {
		resp, err := client.Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}
		issued = resp.User.Username
		return mgr.SetToken(c.target, resp.User.Username, resp.Token)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Logged in as %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(issued),
		cliui.DimStyle.Render("("+mgr.GetTarget()+")"),
	)

	return nil
}

// readPassword reads hidden input when stdin is a terminal and the next line
// otherwise.
func (c *loginCommander) readPassword(reader *bufio.Reader) (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.out, "Password: ")
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out) // newline after hidden input
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(pw), nil
	}

	line, err := readLine(reader)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return line, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("no input received on stdin")
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *loginCommander) runLogout() error {
	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	_, ok, err := mgr.GetToken(c.target)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(c.out, "\n  %s Not logged in to %s\n\n", cliui.DimStyle.Render("●"), c.target)
		return nil
	}

	if err := mgr.RemoveToken(c.target); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Logged out of %s\n\n", cliui.SuccessMark, cliui.NameStyle.Render(c.target))
	return nil
}
