package main

import (
	"os"

	"github.com/sofmeright/netrig/src/cli/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
