package cmd

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/archivemaster/archivemaster/pkg/log"
	"github.com/archivemaster/archivemaster/pkg/merge"
	"github.com/archivemaster/archivemaster/pkg/types"
	"github.com/archivemaster/archivemaster/pkg/util"
)

var (
	mergeOutput      string
	mergeFormat      string
	mergeCompression string
	mergeLevel       int
	mergeJobFile     string
	mergeNoProgress  bool
)

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "The file to write the combined archive to")
	mergeCmd.Flags().StringVarP(&mergeFormat, "format", "f", string(types.FormatZip), "Output format (zip, tar, tar.gz, tar.bz2)")
	mergeCmd.Flags().StringVarP(&mergeCompression, "compression", "c", "", "Compression type (deflate, gzip, bzip2), defaults from the format")
	mergeCmd.Flags().IntVarP(&mergeLevel, "level", "l", types.DefaultCompressionLevel, "Compression level (1-9)")
	mergeCmd.Flags().StringVarP(&mergeJobFile, "job", "j", "", "Read the job description from a YAML file instead of flags")
	mergeCmd.Flags().BoolVar(&mergeNoProgress, "no-progress", false, "Disable the progress bar")

	rootCmd.AddCommand(mergeCmd)
}

var mergeCmd = &cobra.Command{
	Use:   "merge ARCHIVES...",
	Short: "Merge the given archives into a single output archive",
	RunE:  runMerge,
}

func runMerge(cmd *cobra.Command, args []string) error {
	job, err := buildJob(args)
	if err != nil {
		return err
	}
	for _, input := range job.Inputs {
		if _, err := os.Stat(input); err != nil {
			return fmt.Errorf("%w: input does not exist: %s", types.ErrInvalidJob, input)
		}
	}

	sink := newCLISink(!mergeNoProgress)
	handle := merge.New().Submit(job, sink)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		if _, ok := <-sigCh; ok {
			log.Warning("Interrupt received, cancelling merge")
			handle.Cancel()
		}
	}()

	summary, err := handle.Wait()
	signal.Stop(sigCh)
	close(sigCh)
	if err != nil {
		return err
	}

	log.Info("Merge complete")
	log.Infof("  Output:   %s\n", summary.OutputPath)
	log.Infof("  Entries:  %d\n", summary.EntriesWritten)
	log.Infof("  Size:     %s\n", util.ByteCountSI(summary.OutputSize))
	log.Infof("  SHA256:   %s\n", summary.SHA256)
	log.Infof("  Level:    %d\n", summary.EffectiveLevel)
	log.Infof("  Elapsed:  %s\n", summary.Elapsed.Round(timeRounding))
	if summary.Warnings > 0 {
		log.Warningf("%d warning(s) were reported during the merge\n", summary.Warnings)
	}
	if sink.inputSkips() > 0 {
		return ErrPartialInput
	}
	return nil
}

func buildJob(args []string) (*types.ArchiveJob, error) {
	job := &types.ArchiveJob{}
	if mergeJobFile != "" {
		data, err := ioutil.ReadFile(mergeJobFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidJob, err)
		}
		if err := yaml.Unmarshal(data, job); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidJob, err)
		}
	}
	job.Inputs = append(job.Inputs, args...)
	if mergeOutput != "" {
		job.Output = mergeOutput
	}
	if job.Format == "" || mergeJobFile == "" {
		job.Format = types.OutputFormat(mergeFormat)
	}
	if mergeCompression != "" {
		job.Compression = types.CompressionType(mergeCompression)
	}
	if job.Level == 0 {
		job.Level = mergeLevel
	}
	return job, nil
}
