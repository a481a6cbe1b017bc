package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/archivemaster/archivemaster/pkg/format"
	"github.com/archivemaster/archivemaster/pkg/log"
	"github.com/archivemaster/archivemaster/pkg/reader"
	"github.com/archivemaster/archivemaster/pkg/util"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect ARCHIVE",
	Short: "List the contents of the given archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := format.Detect(args[0])
		if err != nil {
			return err
		}
		rdr, err := reader.Open(args[0])
		if err != nil {
			return err
		}
		defer rdr.Close()

		fmt.Println()
		fmt.Println("FORMAT:", kind)
		fmt.Println()
		fmt.Println("CONTENTS:")
		fmt.Println()

		var count uint64
		var total int64
		for {
			entry, err := rdr.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			switch {
			case entry.IsDir:
				fmt.Println("    ", entry.Path+"/")
			case entry.IsSymlink:
				fmt.Println("    ", entry.Path, "->", entry.LinkTarget)
			default:
				fmt.Println("    ", entry.Path, "\t", util.ByteCountSI(entry.Size))
				total += entry.Size
			}
			count++
		}
		for _, w := range rdr.Warnings() {
			log.Warning(w.Error())
		}

		fmt.Println()
		fmt.Println("ENTRIES:   ", count)
		fmt.Println("TOTAL SIZE:", util.ByteCountSI(total))
		fmt.Println()
		return nil
	},
}
