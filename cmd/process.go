// =============================================================================
// DXF to XML Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts every DXF file in
// the configured input directory.
//
// COMMAND USAGE:
//   dxf2xml process [flags]
//
// FLAGS:
//   --dry-run     : List the files that would be converted
//   --archive     : Move converted inputs to input_archive_dir
//   --report      : text, yaml or json
//
// PROCESSING PIPELINE:
//   1. Prepare the output and archive directories
//   2. Discover .dxf files in the input directory
//   3. Convert files concurrently (at most max_concurrency at a time)
//   4. Print a report and write a summary log
//
// =============================================================================

package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/nrnickolov/dxf2xml/internal/config"
	"github.com/nrnickolov/dxf2xml/internal/converter"
	"github.com/nrnickolov/dxf2xml/internal/report"
	"github.com/nrnickolov/dxf2xml/pkg/utils"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun lists the inputs without converting them.
var dryRun bool

// archiveFlag overrides archive_processed.
var archiveFlag bool

// processReportFlag selects the report format.
var processReportFlag string

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert every DXF file in the input directory",
	Long: `The process command scans input_dir for .dxf files and converts each one
into output_dir, named by output_name_format.

Files are converted concurrently. A failure in one file does not stop the
others unless stop_on_error is set. A summary log is written to output_dir.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *appConfig
		if cmd.Flags().Changed("archive") {
			cfg.ArchiveProcessed = archiveFlag
		}
		return runProcess(cmd, &cfg)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the files that would be converted")
	processCmd.Flags().BoolVar(&archiveFlag, "archive", false, "Move converted inputs to input_archive_dir")
	processCmd.Flags().StringVar(&processReportFlag, "report", "text", "Report format: text, yaml or json")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(cmd *cobra.Command, cfg *config.Config) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	format, err := report.ParseFormat(processReportFlag)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 1: PREPARE DIRECTORIES
	// =========================================================================

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir)
	fm.UseTimestampSubdirs = cfg.ArchiveTimestampSubdirs
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	inputFiles, err := fm.DiscoverInputFiles()
	if err != nil {
		return err
	}

	if len(inputFiles) == 0 {
		logger.Info("No DXF files found in %s", cfg.InputDir)
		return nil
	}

	logger.Info("Found %d file(s) to convert", len(inputFiles))

	if dryRun {
		for _, file := range inputFiles {
			fmt.Fprintf(out, "%s -> %s\n", file, fm.OutputPathFor(file, cfg.OutputNameFormat))
		}
		return nil
	}

	// =========================================================================
	// STEP 3: CONVERT FILES CONCURRENTLY
	// =========================================================================

	results := convertAll(inputFiles, fm, cfg)

	// =========================================================================
	// STEP 4: REPORT
	// =========================================================================

	printer := &report.Printer{Format: format, Writer: out}
	if err := printer.Print(results); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}

	summary := summarize(results, startTime)
	summaryPath, err := utils.WriteSummaryLog(summary, cfg.OutputDir)
	if err != nil {
		logger.Warn("Failed to write summary log: %v", err)
	} else {
		logger.Info("Summary written to %s", summaryPath)
	}

	logger.Info("Converted %d of %d file(s) in %s",
		summary.SuccessfulFiles, summary.TotalFiles, time.Since(startTime))

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// convertAll converts the files with at most cfg.MaxConcurrency running at
// once. Results are returned in input order. With StopOnError, files not yet
// started when a failure is seen are skipped.
func convertAll(inputFiles []string, fm *utils.FileManager, cfg *config.Config) []converter.Result {
	results := make([]converter.Result, len(inputFiles))
	sem := make(chan struct{}, cfg.MaxConcurrency)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed bool
	)

	for i, file := range inputFiles {
		sem <- struct{}{}

		mu.Lock()
		stop := failed && cfg.StopOnError
		mu.Unlock()
		if stop {
			<-sem
			results[i] = converter.Result{
				FilePath: file,
				Error:    fmt.Errorf("skipped after an earlier failure"),
			}
			continue
		}

		wg.Add(1)
		go func(i int, file string) {
			defer wg.Done()
			defer func() { <-sem }()

			opts := []converter.Option{
				converter.WithOutputPath(fm.OutputPathFor(file, cfg.OutputNameFormat)),
				converter.WithOptions(converter.OptionsFromConfig(cfg.Conversion)),
				converter.WithErrorLog(cfg.WriteErrorLogs),
				converter.WithLogger(logger),
			}
			if cfg.ArchiveProcessed {
				opts = append(opts, converter.WithArchive(fm))
			}

			result := converter.New(file, opts...).Run()
			results[i] = result

			if !result.Success {
				mu.Lock()
				failed = true
				mu.Unlock()
			}
		}(i, file)
	}

	wg.Wait()
	return results
}

// summarize builds the summary log contents from the results.
func summarize(results []converter.Result, startTime time.Time) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{
		RunID:      utils.NewRunID(),
		StartTime:  startTime,
		EndTime:    time.Now(),
		TotalFiles: len(results),
	}

	for _, r := range results {
		if !r.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    r.FilePath,
				ErrorMessage: r.Error.Error(),
			})
			continue
		}

		summary.SuccessfulFiles++
		summary.TotalPairs += r.Stats.Pairs
		summary.TotalWrappers += r.Stats.Wrappers
		summary.Diagnostics += r.Stats.Diagnostics
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   r.FilePath,
			OutputFile:  r.OutputFile,
			ArchivePath: r.ArchivePath,
			Pairs:       r.Stats.Pairs,
			Wrappers:    r.Stats.Wrappers,
			Diagnostics: r.Stats.Diagnostics,
			ProcessTime: r.Stats.ProcessingTime,
		})
	}

	return summary
}
