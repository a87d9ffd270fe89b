package utils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultOutputPath(t *testing.T) {
	cases := map[string]string{
		"drawing.dxf":        "drawing.xml",
		"dir/plan.v2.dxf":    "dir/plan.v2.xml",
		"drawing.DXF":        "drawing.DXF",
		"drawing.txt":        "drawing.txt",
		"dxf":                "dxf",
		"archive.dxf.backup": "archive.dxf.backup",
	}
	for in, want := range cases {
		if got := DefaultOutputPath(in); got != want {
			t.Fatalf("DefaultOutputPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveOutputPath(t *testing.T) {
	got, err := ResolveOutputPath("drawing.dxf", "")
	if err != nil || got != "drawing.xml" {
		t.Fatalf("unexpected result %q, %v", got, err)
	}

	got, err = ResolveOutputPath("drawing.txt", "out.xml")
	if err != nil || got != "out.xml" {
		t.Fatalf("unexpected result %q, %v", got, err)
	}

	if _, err := ResolveOutputPath("drawing.txt", ""); !errors.Is(err, ErrOutputIsInput) {
		t.Fatalf("expected ErrOutputIsInput, got %v", err)
	}
	if _, err := ResolveOutputPath("a/drawing.dxf", "a/./drawing.dxf"); !errors.Is(err, ErrOutputIsInput) {
		t.Fatalf("expected ErrOutputIsInput for an equivalent path, got %v", err)
	}
}

func TestWriteOutputFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "out.xml")
	if err := WriteOutputFile(path, []byte("<xml></xml>")); err != nil {
		t.Fatalf("WriteOutputFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "<xml></xml>" {
		t.Fatalf("unexpected file contents %q, %v", data, err)
	}
}

func TestGenerateOutputFileName(t *testing.T) {
	if got := GenerateOutputFileName("{name}.xml", map[string]string{"name": "plan"}); got != "plan.xml" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := GenerateOutputFileName("{name}", map[string]string{"name": "plan"}); got != "plan.xml" {
		t.Fatalf("expected .xml suffix, got %q", got)
	}

	got := GenerateOutputFileName("{name}_{uuid}.xml", map[string]string{"name": "plan"})
	if !strings.HasPrefix(got, "plan_") || len(got) != len("plan_")+36+len(".xml") {
		t.Fatalf("unexpected uuid name %q", got)
	}

	got = GenerateOutputFileName("{date}.xml", nil)
	if got != time.Now().Format("20060102")+".xml" {
		t.Fatalf("unexpected date name %q", got)
	}
}

func TestDiscoverInputFiles(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(filepath.Join(root, "in"), filepath.Join(root, "out"), filepath.Join(root, "archive"))

	if err := fm.EnsureDirectories(); err == nil {
		t.Fatalf("expected error for a missing input directory")
	}

	if err := os.MkdirAll(filepath.Join(fm.InputDir, "sub.dxf"), 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b.dxf", "a.DXF", "notes.txt", "c.dxf.bak"} {
		if err := os.WriteFile(filepath.Join(fm.InputDir, name), []byte("0\nEOF\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if err := fm.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if !FileExists(fm.OutputDir) || !FileExists(fm.InputArchiveDir) {
		t.Fatalf("expected output and archive directories to be created")
	}

	files, err := fm.DiscoverInputFiles()
	if err != nil {
		t.Fatalf("DiscoverInputFiles failed: %v", err)
	}
	want := []string{filepath.Join(fm.InputDir, "a.DXF"), filepath.Join(fm.InputDir, "b.dxf")}
	if len(files) != len(want) || files[0] != want[0] || files[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, files)
	}

	if got := fm.OutputPathFor(files[0], "{name}.xml"); got != filepath.Join(fm.OutputDir, "a.xml") {
		t.Fatalf("unexpected output path %s", got)
	}
}

func TestArchiveInputFileAvoidsCollisions(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(root, filepath.Join(root, "out"), filepath.Join(root, "archive"))

	var archived []string
	for i := 0; i < 2; i++ {
		input := filepath.Join(root, "drawing.dxf")
		if err := os.WriteFile(input, []byte("0\nEOF\n"), 0644); err != nil {
			t.Fatal(err)
		}
		path, err := fm.ArchiveInputFile(input)
		if err != nil {
			t.Fatalf("ArchiveInputFile failed: %v", err)
		}
		if FileExists(input) {
			t.Fatalf("input was not moved")
		}
		archived = append(archived, path)
	}

	if archived[0] != filepath.Join(fm.InputArchiveDir, "drawing.dxf") {
		t.Fatalf("unexpected first archive path %s", archived[0])
	}
	if archived[1] == archived[0] || !strings.HasPrefix(filepath.Base(archived[1]), "drawing_") {
		t.Fatalf("second archive must get a unique name, got %s", archived[1])
	}
}

func TestArchiveInputFileTimestampSubdirs(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(root, filepath.Join(root, "out"), filepath.Join(root, "archive"))
	fm.UseTimestampSubdirs = true

	input := filepath.Join(root, "drawing.dxf")
	if err := os.WriteFile(input, []byte("0\nEOF\n"), 0644); err != nil {
		t.Fatal(err)
	}
	path, err := fm.ArchiveInputFile(input)
	if err != nil {
		t.Fatalf("ArchiveInputFile failed: %v", err)
	}

	// Allow the date to roll over between the archive and the check.
	var want []string
	for _, day := range []time.Time{time.Now(), time.Now().AddDate(0, 0, -1)} {
		want = append(want, filepath.Join(fm.InputArchiveDir,
			day.Format("2006"), day.Format("01"), day.Format("02"), "drawing.dxf"))
	}
	if path != want[0] && path != want[1] {
		t.Fatalf("expected %s, got %s", want[0], path)
	}
	if !FileExists(path) {
		t.Fatalf("archived file missing at %s", path)
	}
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	summary := ProcessingSummary{
		RunID:           NewRunID(),
		StartTime:       start,
		EndTime:         start.Add(2 * time.Second),
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		TotalPairs:      6,
		ProcessedFiles:  []ProcessedFileInfo{{InputFile: "a.dxf", OutputFile: "a.xml", Pairs: 6}},
		FailedFilesList: []FailedFileInfo{{InputFile: "b.dxf", ErrorMessage: "boom"}},
	}

	path, err := WriteSummaryLog(summary, dir)
	if err != nil {
		t.Fatalf("WriteSummaryLog failed: %v", err)
	}
	if filepath.Base(path) != "processing_summary_20240115_103000.txt" {
		t.Fatalf("unexpected summary path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read summary: %v", err)
	}
	text := string(data)
	for _, want := range []string{summary.RunID, "Total Files:    2", "Total Pairs:    6", "Input:        a.dxf", "Error: boom"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in summary:\n%s", want, text)
		}
	}
}
