package main

import (
	"context"
	"os"

	"reikningar/internal/buildinfo"
	"reikningar/internal/commands"
)

func main() {
	cmd := commands.NewWorkerCommand()
	cmd.Use = "reikningar-worker"
	cmd.Version = buildinfo.String()
	cmd.SilenceUsage = true
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
