package romloader

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// walkGzip handles both tar.gz archives and single gzip-compressed files.
func walkGzip(path string, extensions []string, fn entryFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open gzip: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gr.Close()

	lowerPath := strings.ToLower(path)
	if strings.HasSuffix(lowerPath, ".tar.gz") || strings.HasSuffix(lowerPath, ".tgz") {
		return walkTar(gr, extensions, fn)
	}

	// Plain .gz: the decompressed content is the game, named after the
	// archive without its .gz suffix.
	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		name = name[:len(name)-3]
	}
	return fn(name, gr)
}

func walkTar(r io.Reader, extensions []string, fn entryFunc) error {
	tr := tar.NewReader(r)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}

		if header.Typeflag != tar.TypeReg || !isGameFile(header.Name, extensions) {
			continue
		}
		return fn(filepath.Base(header.Name), tr)
	}

	return ErrNoGameFile
}
