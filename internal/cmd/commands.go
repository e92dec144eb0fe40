package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/cwa-tools/cwa-inventory/internal/cmd/base"
	"github.com/cwa-tools/cwa-inventory/internal/cmd/commands/inventory"
	"github.com/cwa-tools/cwa-inventory/internal/cmd/commands/version"
)

// Commands is the mapping of all available commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := &base.Command{
		Log: log,
		UI:  ui,
	}

	Commands = map[string]cli.CommandFactory{
		"call": func() (cli.Command, error) {
			return &inventory.CallCommand{Command: b}, nil
		},
		"tools": func() (cli.Command, error) {
			return &inventory.ToolsCommand{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
