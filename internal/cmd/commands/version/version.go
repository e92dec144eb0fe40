package version

import (
	"github.com/cwa-tools/cwa-inventory/internal/cmd/base"
	"github.com/cwa-tools/cwa-inventory/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return `Usage: cwa-inventory version`
}

func (c *Command) Run(args []string) int {
	c.UI.Output("cwa-inventory " + version.String())
	return 0
}
