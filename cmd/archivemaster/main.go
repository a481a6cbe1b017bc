package main

import (
	"os"

	"github.com/archivemaster/archivemaster/pkg/cmd"
	"github.com/archivemaster/archivemaster/pkg/log"
)

func main() {
	if err := cmd.GetRootCommand().Execute(); err != nil {
		log.Error(err)
		os.Exit(cmd.ExitCode(err))
	}
}
