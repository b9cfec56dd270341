package organizer

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/mrsinham/dicomsort/internal/dicom"
)

// FileOutcome records why a candidate file did not join a series group
type FileOutcome struct {
	Path   string
	Reason string
}

// ScanResult is what a patient scan produced
type ScanResult struct {
	Groups    *SeriesGroups
	FileCount int
	Skipped   []FileOutcome
}

// ScanPatient walks dir recursively, header-parses every file with a DICOM extension
// and groups the readable ones by series instance UID.
// Unreadable files and files without a series UID are skipped and recorded.
// A symlinked dir is resolved first; links below it are not followed.
// Only a failure to walk the tree is returned as an error
func ScanPatient(dir string, exts []string, logger *slog.Logger) (*ScanResult, error) {
	res := &ScanResult{Groups: NewSeriesGroups()}

	root, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return res, fmt.Errorf("scan %s: %w", dir, err)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !dicom.HasDICOMExtension(d.Name(), exts) {
			return nil
		}

		h, err := dicom.ReadSeriesHeader(path)
		if err != nil {
			res.skip(logger, path, err.Error())
			return nil
		}
		if h.SeriesInstanceUID == "" {
			res.skip(logger, path, "no SeriesInstanceUID")
			return nil
		}

		res.Groups.Add(h.SeriesInstanceUID, path)
		res.FileCount++
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("scan %s: %w", dir, err)
	}
	return res, nil
}

func (r *ScanResult) skip(logger *slog.Logger, path, reason string) {
	r.Skipped = append(r.Skipped, FileOutcome{Path: path, Reason: reason})
	logger.Debug("skipping file", "path", path, "reason", reason)
}
