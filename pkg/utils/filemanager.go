// =============================================================================
// DXF to XML Converter - File Manager Utility
// =============================================================================
//
// This module provides the file handling around a conversion:
//   - Output path resolution (drawing.dxf -> drawing.xml)
//   - Input discovery for batch mode
//   - Output file naming and writing
//   - Archival of converted inputs
//   - Batch summary log
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrOutputIsInput is returned when the resolved output path would overwrite the input.
var ErrOutputIsInput = errors.New("output path is the input path")

// =============================================================================
// OUTPUT PATHS
// =============================================================================

// DefaultOutputPath derives the output path from the input path by replacing
// a trailing ".dxf" with ".xml". Any other path is returned unchanged.
func DefaultOutputPath(inputPath string) string {
	if strings.HasSuffix(inputPath, ".dxf") {
		return strings.TrimSuffix(inputPath, ".dxf") + ".xml"
	}
	return inputPath
}

// ResolveOutputPath returns outputPath, or the default derived from inputPath
// when outputPath is empty. It refuses a result that names the input file.
func ResolveOutputPath(inputPath, outputPath string) (string, error) {
	if outputPath == "" {
		outputPath = DefaultOutputPath(inputPath)
	}
	if filepath.Clean(outputPath) == filepath.Clean(inputPath) {
		return "", fmt.Errorf("%w: %s (pass an explicit output path)", ErrOutputIsInput, inputPath)
	}
	return outputPath, nil
}

// WriteOutputFile writes data to path, creating parent directories.
func WriteOutputFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// GenerateOutputFileName generates a file name from a format string.
//
// PLACEHOLDERS:
//   {uuid}      - a random UUID
//   {timestamp} - current time (YYYYMMDD_HHMMSS)
//   {date}      - current date (YYYYMMDD)
//   {<key>}     - any entry of params, e.g. {name}
//
// EXAMPLE:
//   format: "{name}_{uuid}.xml"
//   params: {"name": "floorplan"}
//   output: "floorplan_a1b2c3d4-e5f6-7890-abcd-ef1234567890.xml"
//
// The result always ends in ".xml".
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".xml") {
		result += ".xml"
	}

	return result
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles the directories used by batch conversion.
type FileManager struct {
	// InputDir is scanned for .dxf files.
	InputDir string

	// OutputDir receives the generated XML files.
	OutputDir string

	// InputArchiveDir receives converted inputs.
	InputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: input_archive/2024/01/15/drawing.dxf
	UseTimestampSubdirs bool
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
	}
}

// EnsureDirectories creates the output and archive directories.
// The input directory must already exist.
func (fm *FileManager) EnsureDirectories() error {
	info, err := os.Stat(fm.InputDir)
	if err != nil {
		return fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input directory %s is not a directory", fm.InputDir)
	}

	for _, dir := range []string{fm.OutputDir, fm.InputArchiveDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// DiscoverInputFiles lists the .dxf files (any letter case) directly inside
// the input directory, sorted by name.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".dxf") {
			files = append(files, filepath.Join(fm.InputDir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

// OutputPathFor returns the batch output path for an input file.
func (fm *FileManager) OutputPathFor(inputPath, nameFormat string) string {
	name := GenerateOutputFileName(nameFormat, map[string]string{"name": BaseName(inputPath)})
	return filepath.Join(fm.OutputDir, name)
}

// ArchiveInputFile moves an input file to the archive directory and returns
// its new path.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	archivePath := fm.getArchivePath(fm.InputArchiveDir, filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// getArchivePath constructs the archive path for a file.
func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := time.Now()
		archiveDir = filepath.Join(archiveDir,
			now.Format("2006"), now.Format("01"), now.Format("02"))
	}

	archivePath := filepath.Join(archiveDir, fileName)

	// Never overwrite an earlier archive of the same name.
	if FileExists(archivePath) {
		ext := filepath.Ext(fileName)
		stem := strings.TrimSuffix(fileName, ext)
		archivePath = filepath.Join(archiveDir,
			fmt.Sprintf("%s_%s%s", stem, uuid.New().String()[:8], ext))
	}

	return archivePath
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a batch run.
type ProcessingSummary struct {
	RunID           string
	StartTime       time.Time
	EndTime         time.Time
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	TotalPairs      int
	TotalWrappers   int
	Diagnostics     int
	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo contains information about a converted file.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFile  string
	ArchivePath string
	Pairs       int
	Wrappers    int
	Diagnostics int
	ProcessTime time.Duration
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// NewRunID returns an identifier for a batch run.
func NewRunID() string {
	return uuid.New().String()
}

// WriteSummaryLog writes a batch summary to outputDir and returns its path.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	timestamp := summary.StartTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("processing_summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "DXF to XML Converter - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:    %d\n"+
		"  Successful:     %d\n"+
		"  Failed:         %d\n"+
		"  Total Pairs:    %d\n"+
		"  Total Wrappers: %d\n"+
		"  Diagnostics:    %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalPairs,
		summary.TotalWrappers,
		summary.Diagnostics)

	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Successful Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
			fmt.Fprintf(writer, "  Output:       %s\n", pf.OutputFile)
			if pf.ArchivePath != "" {
				fmt.Fprintf(writer, "  Archived:     %s\n", pf.ArchivePath)
			}
			fmt.Fprintf(writer, "  Pairs:        %d\n", pf.Pairs)
			fmt.Fprintf(writer, "  Diagnostics:  %d\n", pf.Diagnostics)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
