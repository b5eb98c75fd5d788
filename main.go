package main

import (
	"os"

	"github.com/agenticgokit/fsk/cmd"
	"github.com/agenticgokit/fsk/internal/utils"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(utils.ExitCode(err))
	}
}
