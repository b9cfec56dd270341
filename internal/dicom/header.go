// Package dicom reads the few header fields used to place DICOM files.
package dicom

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mrsinham/dicomsort/internal/util"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// DefaultExtensions is the set of file suffixes treated as DICOM files
var DefaultExtensions = []string{".dcm"}

// SeriesHeader holds the few header fields needed to place a file
type SeriesHeader struct {
	SeriesInstanceUID string
	SeriesNumber      string
	SeriesDescription string

	// Presence flags; an absent tag falls back to a default folder name part
	HasSeriesNumber      bool
	HasSeriesDescription bool
}

// FolderName returns the destination folder name for the series this header belongs to
func (h SeriesHeader) FolderName() string {
	var number, description *string
	if h.HasSeriesNumber {
		number = &h.SeriesNumber
	}
	if h.HasSeriesDescription {
		description = &h.SeriesDescription
	}
	return util.SeriesFolderName(number, description)
}

// ReadSeriesHeader reads the dataset up to the series tags, never touching pixel data
func ReadSeriesHeader(path string) (SeriesHeader, error) {
	ds, err := readLeadingElements(path, tag.SeriesNumber)
	if err != nil {
		return SeriesHeader{}, fmt.Errorf("parse %s: %w", path, err)
	}

	var h SeriesHeader
	h.SeriesInstanceUID, _ = stringValue(&ds, tag.SeriesInstanceUID)
	h.SeriesNumber, h.HasSeriesNumber = stringValue(&ds, tag.SeriesNumber)
	h.SeriesNumber = normalizeIntegerString(h.SeriesNumber)
	h.SeriesDescription, h.HasSeriesDescription = stringValue(&ds, tag.SeriesDescription)
	return h, nil
}

// readLeadingElements parses elements in file order and stops at the first one past last.
// A bad preamble or file meta group is an error, as is a dataset cut short before last
func readLeadingElements(path string, last tag.Tag) (dicom.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return dicom.Dataset{}, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return dicom.Dataset{}, err
	}

	p, err := dicom.NewParser(f, info.Size(), nil, dicom.SkipPixelData())
	if err != nil {
		return dicom.Dataset{}, err
	}

	var elements []*dicom.Element
	for {
		elem, err := p.Next()
		if errors.Is(err, dicom.ErrorEndOfDICOM) {
			break
		}
		if err != nil {
			return dicom.Dataset{}, err
		}
		if tagAfter(elem.Tag, last) {
			break
		}
		elements = append(elements, elem)
	}
	return dicom.Dataset{Elements: elements}, nil
}

func tagAfter(a, b tag.Tag) bool {
	if a.Group != b.Group {
		return a.Group > b.Group
	}
	return a.Element > b.Element
}

// HasDICOMExtension reports whether name ends with one of exts, ignoring case
func HasDICOMExtension(name string, exts []string) bool {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// stringValue returns the first value of a tag as a string and whether the tag is present.
// Values are trimmed of DICOM padding
func stringValue(ds *dicom.Dataset, t tag.Tag) (string, bool) {
	elem, err := ds.FindElementByTag(t)
	if err != nil {
		return "", false
	}
	if elem.Value == nil {
		return "", true
	}

	switch v := elem.Value.GetValue().(type) {
	case []string:
		if len(v) > 0 {
			return strings.TrimRight(v[0], " \x00"), true
		}
	case []int:
		if len(v) > 0 {
			return strconv.Itoa(v[0]), true
		}
	case []int64:
		if len(v) > 0 {
			return strconv.FormatInt(v[0], 10), true
		}
	case nil:
	default:
		return strings.TrimRight(fmt.Sprintf("%v", v), " \x00"), true
	}
	return "", true
}

// normalizeIntegerString renders an IS value the way it reads as a number ("  07" -> "7").
// Values that are not integers are returned trimmed but otherwise untouched
func normalizeIntegerString(s string) string {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(n)
	}
	return s
}
