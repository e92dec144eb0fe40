package inventory

import (
	"fmt"
	"strings"

	"github.com/cwa-tools/cwa-inventory/internal/cmd/base"
	"github.com/cwa-tools/cwa-inventory/internal/tools"
)

type ToolsCommand struct {
	*base.Command
}

func (c *ToolsCommand) Synopsis() string {
	return "List the inventory tools"
}

func (c *ToolsCommand) Help() string {
	return `Usage: cwa-inventory tools

  This command lists every tool accepted by "cwa-inventory call" together
  with its parameters.`
}

func (c *ToolsCommand) Run(args []string) int {
	if len(args) > 0 {
		c.UI.Error("tools takes no arguments")
		return 1
	}

	for _, t := range tools.Definitions() {
		c.UI.Output(fmt.Sprintf("%-24s %s", t.Name, t.Description))
		c.UI.Output(fmt.Sprintf("%-24s params: %s", "", strings.Join(t.Params, ", ")))
	}
	return 0
}
