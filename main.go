package main

import (
	"os"

	"github.com/algopapi/RL-implementations/commands"
)

// main trains an agent as configured on the command line
func main() {
	rootCommand := commands.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
