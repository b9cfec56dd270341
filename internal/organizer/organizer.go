// Package organizer copies per-patient DICOM trees into a
// <target>/<patient>/<NNN>-<description>/ layout.
//
// Unreadable files are skipped. A series that cannot be copied marks its patient
// partial-error; a patient whose tree cannot be walked, or whose folder cannot be
// created, is marked processing-failed. Only failing to prepare the target root
// or to list the source root stops a run.
package organizer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mrsinham/dicomsort/internal/dicom"
	"github.com/mrsinham/dicomsort/internal/logging"
)

// Status is the terminal state of a patient
type Status string

const (
	StatusSuccess      Status = "success"
	StatusNoFiles      Status = "no-dcm-files"
	StatusPartialError Status = "partial-error"
	StatusFailed       Status = "processing-failed"
)

// Options configures a run
type Options struct {
	SourceRoot string
	TargetRoot string
	Extensions []string // Case-insensitive file suffixes (default: .dcm)

	// Output control
	Out    io.Writer    // Progress lines (default: stdout)
	Quiet  bool         // Suppress progress lines
	Logger *slog.Logger // Diagnostics (default: discard)
}

func (o Options) withDefaults() Options {
	if len(o.Extensions) == 0 {
		o.Extensions = dicom.DefaultExtensions
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Quiet {
		o.Out = io.Discard
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// Collision records distinct series that landed in the same folder
type Collision struct {
	Folder string
	UIDs   []string
}

// PatientResult is one summary row plus the detail behind it
type PatientResult struct {
	Index       int
	Name        string
	FileCount   int
	SeriesCount int
	Status      Status
	Err         error // Set when Status is processing-failed

	Series     []SeriesResult
	Skipped    []FileOutcome
	Collisions []Collision
}

// Summary holds one row per patient, in processing order
type Summary struct {
	SourceRoot string
	TargetRoot string
	Patients   []PatientResult
}

// Totals sums copy counters over every series of every patient
func (s *Summary) Totals() (copied, skippedExisting int, bytes int64) {
	for _, p := range s.Patients {
		for _, sr := range p.Series {
			copied += sr.Copied
			skippedExisting += sr.SkippedExisting
			bytes += sr.BytesCopied
		}
	}
	return copied, skippedExisting, bytes
}

// Run processes every patient folder under the source root, one at a time
func Run(opts Options) (*Summary, error) {
	opts = opts.withDefaults()

	if err := os.MkdirAll(opts.TargetRoot, 0755); err != nil {
		return nil, fmt.Errorf("create target root: %w", err)
	}

	patients, err := DiscoverPatients(opts.SourceRoot)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(opts.Out, "Found %d patient folders, processing one by one...\n\n", len(patients))
	opts.Logger.Info("run started", "source", opts.SourceRoot, "target", opts.TargetRoot, "patients", len(patients))

	summary := &Summary{
		SourceRoot: opts.SourceRoot,
		TargetRoot: opts.TargetRoot,
		Patients:   make([]PatientResult, 0, len(patients)),
	}
	for i, name := range patients {
		summary.Patients = append(summary.Patients, ProcessPatient(i+1, len(patients), name, opts))
	}
	return summary, nil
}

// ProcessPatient scans one patient folder and copies its series into the target root
func ProcessPatient(index, total int, name string, opts Options) PatientResult {
	opts = opts.withDefaults()
	logger := opts.Logger.With("patient", name)

	src := filepath.Join(opts.SourceRoot, name)
	dst := filepath.Join(opts.TargetRoot, name)

	fmt.Fprintf(opts.Out, "[%d/%d] Processing: %s ... ", index, total, name)

	res := PatientResult{Index: index, Name: name, Status: StatusSuccess}

	scan, err := ScanPatient(src, opts.Extensions, logger)
	if scan != nil {
		res.FileCount = scan.FileCount
		res.SeriesCount = scan.Groups.Len()
		res.Skipped = scan.Skipped
	}
	if err != nil {
		return res.fail(opts.Out, logger, err)
	}

	if res.FileCount == 0 {
		res.Status = StatusNoFiles
		fmt.Fprintln(opts.Out, "skipped (no files)")
		return res
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return res.fail(opts.Out, logger, fmt.Errorf("create patient directory: %w", err))
	}

	folders := make(map[string][]string)
	var folderOrder []string
	scan.Groups.Each(func(uid string, files []string) {
		sr := CopySeries(uid, files, dst, logger)
		res.Series = append(res.Series, sr)

		if sr.Err != nil {
			fmt.Fprintf(opts.Out, "\n    error: series processing failed %s - %v\n", uid, sr.Err)
			logger.Error("series processing failed", "series_uid", uid, "error", sr.Err)
			res.Status = StatusPartialError
			return
		}

		prev, seen := folders[sr.Folder]
		if !seen {
			folderOrder = append(folderOrder, sr.Folder)
		} else {
			logger.Warn("distinct series share a folder, merging", "folder", sr.Folder, "series_uid", uid, "previous", prev)
		}
		folders[sr.Folder] = append(prev, uid)
	})

	for _, folder := range folderOrder {
		if uids := folders[folder]; len(uids) > 1 {
			res.Collisions = append(res.Collisions, Collision{Folder: folder, UIDs: uids})
		}
	}

	fmt.Fprintln(opts.Out, "done")
	logger.Info("patient processed", "files", res.FileCount, "series", res.SeriesCount, "status", res.Status)
	return res
}

func (r PatientResult) fail(out io.Writer, logger *slog.Logger, err error) PatientResult {
	r.Status = StatusFailed
	r.Err = err
	fmt.Fprintf(out, "failed! error: %v\n", err)
	logger.Error("patient processing failed", "error", err)
	return r
}
