package main

import (
	"os"

	"github.com/cwa-tools/cwa-inventory/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
