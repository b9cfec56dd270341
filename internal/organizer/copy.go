package organizer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mrsinham/dicomsort/internal/dicom"
	"github.com/mrsinham/dicomsort/internal/fileutil"
)

// SeriesResult is the outcome of materializing one series group
type SeriesResult struct {
	UID             string
	Folder          string
	Files           int
	Copied          int
	SkippedExisting int
	BytesCopied     int64
	Err             error
}

// CopySeries creates the series folder under patientDst, named after the header of
// the first file, and copies every file that is not already there.
// The first error stops the series and is stored in the result
func CopySeries(uid string, files []string, patientDst string, logger *slog.Logger) SeriesResult {
	res := SeriesResult{UID: uid, Files: len(files)}
	if len(files) == 0 {
		return res
	}

	h, err := dicom.ReadSeriesHeader(files[0])
	if err != nil {
		res.Err = fmt.Errorf("read series header: %w", err)
		return res
	}
	res.Folder = h.FolderName()

	seriesDir := filepath.Join(patientDst, res.Folder)
	if err := os.MkdirAll(seriesDir, 0755); err != nil {
		res.Err = fmt.Errorf("create series directory: %w", err)
		return res
	}

	for _, src := range files {
		dst := filepath.Join(seriesDir, filepath.Base(src))

		exists, err := fileutil.Exists(dst)
		if err != nil {
			res.Err = fmt.Errorf("check %s: %w", dst, err)
			return res
		}
		if exists {
			res.SkippedExisting++
			logger.Debug("destination exists, skipping", "path", dst)
			continue
		}

		n, err := fileutil.CopyFilePreserve(src, dst)
		if err != nil {
			res.Err = fmt.Errorf("copy %s: %w", src, err)
			return res
		}
		res.Copied++
		res.BytesCopied += n
	}
	return res
}
