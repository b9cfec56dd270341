package organizer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrsinham/dicomsort/internal/dicom/synth"
)

// writeSeries writes a synthetic series under root/rel and returns the file paths
func writeSeries(t *testing.T, root, rel string, spec synth.SeriesSpec) []string {
	t.Helper()
	if spec.PatientName == "" {
		spec.PatientName = "TEST^PATIENT"
	}
	paths, err := synth.WriteSeries(filepath.Join(root, rel), spec)
	if err != nil {
		t.Fatalf("write series %s: %v", rel, err)
	}
	return paths
}

func writeCorrupt(t *testing.T, path string) {
	t.Helper()
	if err := synth.WriteCorrupt(path); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
}

// listFiles returns every regular file under root, relative to root
func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(root, path)
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return files
}

func assertSameBytes(t *testing.T, a, b string) {
	t.Helper()
	da, err := os.ReadFile(a)
	if err != nil {
		t.Fatalf("read %s: %v", a, err)
	}
	db, err := os.ReadFile(b)
	if err != nil {
		t.Fatalf("read %s: %v", b, err)
	}
	if !bytes.Equal(da, db) {
		t.Errorf("%s and %s differ", a, b)
	}
}

func quietOptions(src, dst string) Options {
	return Options{SourceRoot: src, TargetRoot: dst, Quiet: true}
}
