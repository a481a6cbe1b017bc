package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/archivemaster/archivemaster/pkg/log"
	"github.com/archivemaster/archivemaster/pkg/types"
	"github.com/archivemaster/archivemaster/pkg/util"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&util.TempDir, "tmp-dir", util.TempDir, "Override the default tmp directory")
	rootCmd.PersistentFlags().BoolVarP(&log.Verbose, "verbose", "v", false, "Enable verbose logging")
}

var rootCmd = &cobra.Command{
	Use:   "archivemaster",
	Short: "archivemaster merges heterogeneous archives into one",
	Long: `
The archivemaster command combines the contents of multiple ZIP, RAR, and TAR
archives into a single unified output archive, preserving directory structure
and file metadata.
`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
	SilenceErrors:     true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Debugf("Using tmp dir %q\n", util.TempDir)
	},
}

// GetRootCommand returns the root archivemaster command
func GetRootCommand() *cobra.Command { return rootCmd }

// Exit codes reported at the CLI boundary.
const (
	// ExitInvalidJob means the job description was rejected.
	ExitInvalidJob = 1
	// ExitPartialInput means the merge completed but skipped inputs.
	ExitPartialInput = 2
	// ExitCancelled means the user cancelled the merge.
	ExitCancelled = 3
	// ExitInternal covers everything else.
	ExitInternal = 4
)

// ErrPartialInput signals a merge that completed with one or more inputs
// skipped as unreadable.
var ErrPartialInput = errors.New("merge completed with skipped inputs")

// ExitCode maps an error returned from Execute to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, types.ErrInvalidJob):
		return ExitInvalidJob
	case errors.Is(err, ErrPartialInput):
		return ExitPartialInput
	case errors.Is(err, types.ErrCancelled):
		return ExitCancelled
	}
	return ExitInternal
}
