// Package parleycmder
package parleycmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/parley/cmd/parley/chat"
	configcmder "github.com/papercomputeco/parley/cmd/parley/config"
	historycmder "github.com/papercomputeco/parley/cmd/parley/history"
	initcmder "github.com/papercomputeco/parley/cmd/parley/init"
	logincmder "github.com/papercomputeco/parley/cmd/parley/login"
	servecmder "github.com/papercomputeco/parley/cmd/parley/serve"
	versioncmder "github.com/papercomputeco/parley/cmd/version"
)

const parleyLongDesc string = `Parley is a streaming chat server and terminal client.

Run the server and talk to it using:
  parley init            Create a local .parley/ directory
  parley serve           Run the chat server
  parley login           Log in and store a token
  parley chat            Chat with the server
  parley history         List your recorded exchanges`

const parleyShortDesc string = "Parley - streaming chat"

func NewParleyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "parley",
		Short:        parleyShortDesc,
		Long:         parleyLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .parley/ config directory")

	// Add subcommands
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(logincmder.NewLoginCmd())
	cmd.AddCommand(logincmder.NewLogoutCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
