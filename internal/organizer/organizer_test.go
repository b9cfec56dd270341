package organizer

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/mrsinham/dicomsort/internal/dicom/synth"
)

func TestRun_SingleSeriesSuccess(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "sorted")
	files := writeSeries(t, src, "alice/scan", synth.SeriesSpec{SeriesUID: "1.7", SeriesNumber: "7", Description: "T2 FLAIR*", Images: 4})

	summary, err := Run(quietOptions(src, dst))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(summary.Patients) != 1 {
		t.Fatalf("got %d patients, want 1", len(summary.Patients))
	}

	p := summary.Patients[0]
	if p.Index != 1 || p.Name != "alice" || p.FileCount != 4 || p.SeriesCount != 1 || p.Status != StatusSuccess {
		t.Errorf("unexpected row: %+v", p)
	}

	entries, err := os.ReadDir(filepath.Join(dst, "alice"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "007-T2_FLAIR" {
		t.Fatalf("expected a single 007-T2_FLAIR folder, got %v", entries)
	}
	for _, f := range files {
		assertSameBytes(t, f, filepath.Join(dst, "alice", "007-T2_FLAIR", filepath.Base(f)))
	}
}

func TestRun_SymlinkedPatient(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	elsewhere := t.TempDir()
	files := writeSeries(t, elsewhere, "zoe/scan", synth.SeriesSpec{SeriesUID: "1.3", SeriesNumber: "3", Description: "T1", Images: 2})
	if err := os.Symlink(filepath.Join(elsewhere, "zoe"), filepath.Join(src, "zoe")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	summary, err := Run(quietOptions(src, dst))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	p := summary.Patients[0]
	if p.Name != "zoe" || p.FileCount != 2 || p.SeriesCount != 1 || p.Status != StatusSuccess {
		t.Errorf("unexpected row: %+v", p)
	}
	for _, f := range files {
		assertSameBytes(t, f, filepath.Join(dst, "zoe", "003-T1", filepath.Base(f)))
	}
}

func TestRun_NoDICOMFiles(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "bob", "notes"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "bob", "notes", "report.pdf"), []byte("%PDF"), 0644); err != nil {
		t.Fatal(err)
	}
	writeCorrupt(t, filepath.Join(src, "bob", "broken.dcm"))

	summary, err := Run(quietOptions(src, dst))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	p := summary.Patients[0]
	if p.Status != StatusNoFiles || p.FileCount != 0 || p.SeriesCount != 0 {
		t.Errorf("unexpected row: %+v", p)
	}
	if _, err := os.Stat(filepath.Join(dst, "bob")); !os.IsNotExist(err) {
		t.Errorf("destination folder should not be created, stat err = %v", err)
	}
}

func TestRun_CorruptFileAmongValid(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeSeries(t, src, "carol", synth.SeriesSpec{SeriesUID: "1.1", SeriesNumber: "3", Description: "DWI", Images: 3})
	writeCorrupt(t, filepath.Join(src, "carol", "ZZZ_broken.dcm"))

	summary, err := Run(quietOptions(src, dst))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	p := summary.Patients[0]
	if p.Status != StatusSuccess || p.FileCount != 3 || p.SeriesCount != 1 {
		t.Errorf("unexpected row: %+v", p)
	}
	if len(p.Skipped) != 1 {
		t.Errorf("Skipped = %v, want one entry", p.Skipped)
	}

	got := listFiles(t, dst)
	sort.Strings(got)
	want := []string{
		filepath.Join("carol", "003-DWI", "IMG0001.dcm"),
		filepath.Join("carol", "003-DWI", "IMG0002.dcm"),
		filepath.Join("carol", "003-DWI", "IMG0003.dcm"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("target tree = %v, want %v", got, want)
	}
}

func TestRun_CaseInsensitiveExtension(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeSeries(t, src, "upper", synth.SeriesSpec{SeriesUID: "1.1", SeriesNumber: "1", Description: "T1", Images: 1, FilePattern: "IMG%03d.DCM"})
	writeSeries(t, src, "lower", synth.SeriesSpec{SeriesUID: "1.1", SeriesNumber: "1", Description: "T1", Images: 1, FilePattern: "img%03d.dcm"})

	summary, err := Run(quietOptions(src, dst))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, p := range summary.Patients {
		if p.FileCount != 1 || p.SeriesCount != 1 || p.Status != StatusSuccess {
			t.Errorf("%s: unexpected row: %+v", p.Name, p)
		}
	}
	if _, err := os.Stat(filepath.Join(dst, "upper", "001-T1", "IMG001.DCM")); err != nil {
		t.Errorf("upper-case file not copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "lower", "001-T1", "img001.dcm")); err != nil {
		t.Errorf("lower-case file not copied: %v", err)
	}
}

func TestRun_Idempotent(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeSeries(t, src, "dave/a", synth.SeriesSpec{SeriesUID: "1.1", SeriesNumber: "1", Description: "T1", Images: 2})
	writeSeries(t, src, "dave/b", synth.SeriesSpec{SeriesUID: "1.2", SeriesNumber: "2", Description: "T2", Images: 2})

	first, err := Run(quietOptions(src, dst))
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	copied, skipped, _ := first.Totals()
	if copied != 4 || skipped != 0 {
		t.Fatalf("first run copied %d, skipped %d; want 4 and 0", copied, skipped)
	}
	before := listFiles(t, dst)

	sentinel := filepath.Join(dst, "dave", "001-T1", "IMG0001.dcm")
	if err := os.WriteFile(sentinel, []byte("sentinel"), 0644); err != nil {
		t.Fatal(err)
	}

	second, err := Run(quietOptions(src, dst))
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	copied, skipped, n := second.Totals()
	if copied != 0 || skipped != 4 || n != 0 {
		t.Errorf("second run copied %d (%d bytes), skipped %d; want 0, 0 and 4", copied, n, skipped)
	}
	if second.Patients[0].Status != StatusSuccess {
		t.Errorf("second run status = %s, want success", second.Patients[0].Status)
	}

	if after := listFiles(t, dst); !reflect.DeepEqual(before, after) {
		t.Errorf("target tree changed: before %v, after %v", before, after)
	}
	got, err := os.ReadFile(sentinel)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "sentinel" {
		t.Errorf("existing file was overwritten: %q", got)
	}
}

func TestRun_PartialError(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeSeries(t, src, "erin/a", synth.SeriesSpec{SeriesUID: "1.1", SeriesNumber: "1", Description: "T1", Images: 2})
	writeSeries(t, src, "erin/b", synth.SeriesSpec{SeriesUID: "1.2", SeriesNumber: "2", Description: "T2", Images: 2})

	// A plain file where the first series folder should go
	if err := os.MkdirAll(filepath.Join(dst, "erin"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dst, "erin", "001-T1"), []byte("blocker"), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	summary, err := Run(Options{SourceRoot: src, TargetRoot: dst, Out: &out})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	p := summary.Patients[0]
	if p.Status != StatusPartialError {
		t.Fatalf("Status = %s, want partial-error", p.Status)
	}
	if p.FileCount != 4 || p.SeriesCount != 2 {
		t.Errorf("unexpected counts: %+v", p)
	}
	if p.Series[0].Err == nil || p.Series[1].Err != nil {
		t.Errorf("expected only the first series to fail: %+v", p.Series)
	}
	if _, err := os.Stat(filepath.Join(dst, "erin", "002-T2", "IMG0002.dcm")); err != nil {
		t.Errorf("second series should still be copied: %v", err)
	}
	if !strings.Contains(out.String(), "error: series processing failed 1.1 - ") {
		t.Errorf("inline series error missing from output:\n%s", out.String())
	}
}

func TestRun_ProcessingFailedContinues(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeSeries(t, src, "frank", synth.SeriesSpec{SeriesUID: "1.1", SeriesNumber: "1", Images: 1})
	writeSeries(t, src, "grace", synth.SeriesSpec{SeriesUID: "2.1", SeriesNumber: "1", Images: 1})

	// A plain file where frank's patient folder should go
	if err := os.WriteFile(filepath.Join(dst, "frank"), []byte("blocker"), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	summary, err := Run(Options{SourceRoot: src, TargetRoot: dst, Out: &out})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(summary.Patients) != 2 {
		t.Fatalf("got %d patients, want 2", len(summary.Patients))
	}

	frank, grace := summary.Patients[0], summary.Patients[1]
	if frank.Status != StatusFailed || frank.Err == nil {
		t.Errorf("frank: Status = %s, Err = %v; want processing-failed", frank.Status, frank.Err)
	}
	if frank.FileCount != 1 || frank.SeriesCount != 1 {
		t.Errorf("frank: counts should be kept on failure: %+v", frank)
	}
	if grace.Status != StatusSuccess {
		t.Errorf("grace: Status = %s, want success", grace.Status)
	}
	if !strings.Contains(out.String(), "[1/2] Processing: frank ... failed! error: ") {
		t.Errorf("failure line missing from output:\n%s", out.String())
	}
}

func TestRun_FolderCollisionMerges(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeSeries(t, src, "heidi/a", synth.SeriesSpec{SeriesUID: "1.1", SeriesNumber: "5", Description: "Ax T1", Images: 2, FilePattern: "A%03d.dcm"})
	writeSeries(t, src, "heidi/b", synth.SeriesSpec{SeriesUID: "1.2", SeriesNumber: "5", Description: "Ax T1", Images: 2, FilePattern: "B%03d.dcm"})

	summary, err := Run(quietOptions(src, dst))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	p := summary.Patients[0]
	if p.Status != StatusSuccess || p.SeriesCount != 2 {
		t.Errorf("unexpected row: %+v", p)
	}
	want := []Collision{{Folder: "005-Ax_T1", UIDs: []string{"1.1", "1.2"}}}
	if !reflect.DeepEqual(p.Collisions, want) {
		t.Errorf("Collisions = %+v, want %+v", p.Collisions, want)
	}

	entries, err := os.ReadDir(filepath.Join(dst, "heidi", "005-Ax_T1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Errorf("merged folder holds %d files, want 4", len(entries))
	}
}

func TestRun_ProgressOutput(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeSeries(t, src, "ivan", synth.SeriesSpec{SeriesUID: "1.1", SeriesNumber: "1", Images: 1})
	if err := os.MkdirAll(filepath.Join(src, "judy"), 0755); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if _, err := Run(Options{SourceRoot: src, TargetRoot: dst, Out: &out}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, line := range []string{
		"Found 2 patient folders, processing one by one...",
		"[1/2] Processing: ivan ... done",
		"[2/2] Processing: judy ... skipped (no files)",
	} {
		if !strings.Contains(out.String(), line) {
			t.Errorf("output missing %q:\n%s", line, out.String())
		}
	}
}

func TestRun_QuietSuppressesOutput(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeSeries(t, src, "ken", synth.SeriesSpec{SeriesUID: "1.1", Images: 1})

	var out bytes.Buffer
	if _, err := Run(Options{SourceRoot: src, TargetRoot: dst, Out: &out, Quiet: true}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestRun_FatalErrors(t *testing.T) {
	t.Run("missing_source", func(t *testing.T) {
		if _, err := Run(quietOptions(filepath.Join(t.TempDir(), "absent"), t.TempDir())); err == nil {
			t.Error("expected error for a missing source root")
		}
	})

	t.Run("target_is_file", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(target, nil, 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Run(quietOptions(t.TempDir(), target)); err == nil {
			t.Error("expected error when the target root cannot be created")
		}
	})
}
