package romloader

import (
	"archive/zip"
	"fmt"
	"path/filepath"
)

func walkZIP(path string, extensions []string, fn entryFunc) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isGameFile(f.Name, extensions) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to open %s in archive: %w", f.Name, err)
		}
		defer rc.Close()
		return fn(filepath.Base(f.Name), rc)
	}

	return ErrNoGameFile
}
