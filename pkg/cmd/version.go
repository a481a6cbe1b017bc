package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archivemaster/archivemaster/pkg/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information for archivemaster",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Version:  ", version.Version)
		fmt.Println("GitCommit:", version.Commit)
	},
}
