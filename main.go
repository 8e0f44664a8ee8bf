package main

import (
	"os"

	"github.com/fmuoria/interview-invite-agent/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
