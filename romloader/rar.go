package romloader

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/nwaples/rardecode/v2"
)

func walkRAR(path string, extensions []string, fn entryFunc) error {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open rar: %w", err)
	}
	defer r.Close()

	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read rar entry: %w", err)
		}

		if header.IsDir || !isGameFile(header.Name, extensions) {
			continue
		}
		return fn(filepath.Base(header.Name), r)
	}

	return ErrNoGameFile
}
