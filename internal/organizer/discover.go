package organizer

import (
	"fmt"
	"os"
	"path/filepath"
)

// DiscoverPatients returns the names of the directories directly under root, sorted by name.
// Failing to read root is fatal to a run
func DiscoverPatients(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list patient folders in %s: %w", root, err)
	}

	var patients []string
	for _, entry := range entries {
		if entry.IsDir() {
			patients = append(patients, entry.Name())
			continue
		}
		// Follow symlinks to directories, as a plain stat would
		if entry.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(root, entry.Name())); err == nil && info.IsDir() {
				patients = append(patients, entry.Name())
			}
		}
	}
	return patients, nil
}
