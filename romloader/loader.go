// Package romloader reads game files for clients, extracting them from
// compressed archives (ZIP, 7z, gzip, tar.gz, RAR) when the client cannot
// read archives itself.
package romloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// DefaultMaxSize bounds extracted content. Disc images need far more room
// than cartridge dumps.
const DefaultMaxSize = 1 << 30

var (
	ErrNoGameFile        = errors.New("no game file found in archive")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFileTooLarge      = errors.New("file exceeds maximum size limit")
)

type formatType int

const (
	formatUnknown formatType = iota
	formatRaw
	formatZIP
	format7z
	formatGzip
	formatRAR
)

func (f formatType) isArchive() bool {
	return f == formatZIP || f == format7z || f == formatGzip || f == formatRAR
}

// entryFunc receives the first archive entry matching the extensions.
type entryFunc func(name string, r io.Reader) error

// Loader reads game files up to MaxSize bytes.
type Loader struct {
	MaxSize int64
}

var defaultLoader = Loader{MaxSize: DefaultMaxSize}

// Load reads a game file with the default size limit.
func Load(path string, extensions []string) ([]byte, string, error) {
	return defaultLoader.Load(path, extensions)
}

// ExtractToDir extracts a game file with the default size limit.
func ExtractToDir(path string, extensions []string, dir string) (string, error) {
	return defaultLoader.ExtractToDir(path, extensions, dir)
}

// IsArchive reports whether path holds a supported archive.
func IsArchive(path string) (bool, error) {
	format, err := probe(path, nil)
	if err != nil {
		return false, err
	}
	return format.isArchive(), nil
}

// Load reads a game from a file path. Archives are detected by magic
// bytes and the first file matching one of the given extensions is
// extracted. Raw files must carry one of the extensions.
//
// Returns the data, the filename (basename only, useful for display),
// and any error.
func (l Loader) Load(path string, extensions []string) ([]byte, string, error) {
	format, err := probe(path, extensions)
	if err != nil {
		return nil, "", err
	}

	if format == formatRaw {
		f, err := os.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()
		data, err := l.limitedRead(f)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read game: %w", err)
		}
		return data, filepath.Base(path), nil
	}

	var data []byte
	var name string
	err = walk(path, format, extensions, func(entry string, r io.Reader) error {
		var err error
		data, err = l.limitedRead(r)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", entry, err)
		}
		name = entry
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return data, name, nil
}

// ExtractToDir makes a game readable by clients without archive support.
// Files already carrying one of the extensions are returned unchanged, so
// clients that take archives as their game format still receive them.
// Otherwise the first matching archive entry is written into dir and its
// path returned.
func (l Loader) ExtractToDir(path string, extensions []string, dir string) (string, error) {
	if isGameFile(path, extensions) {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("failed to open file: %w", err)
		}
		return path, nil
	}

	format, err := probe(path, extensions)
	if err != nil {
		return "", err
	}
	if format == formatRaw {
		return path, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	var out string
	err = walk(path, format, extensions, func(entry string, r io.Reader) error {
		if entry == "" || entry == "." || entry == ".." {
			return fmt.Errorf("%w: invalid entry name %q", ErrNoGameFile, entry)
		}
		target := filepath.Join(dir, entry)
		if err := l.writeFile(target, r); err != nil {
			return fmt.Errorf("failed to extract %s: %w", entry, err)
		}
		out = target
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// writeFile copies r to path through a temporary file so a size overrun
// never leaves a truncated game behind.
func (l Loader) writeFile(path string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(r, l.MaxSize+1))
	if err == nil && n > l.MaxSize {
		err = ErrFileTooLarge
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// probe opens path and detects its format.
func probe(path string, extensions []string) (formatType, error) {
	f, err := os.Open(path)
	if err != nil {
		return formatUnknown, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return formatUnknown, fmt.Errorf("failed to read file header: %w", err)
	}

	format := detectFormat(header[:n], path, extensions)
	if format == formatUnknown && extensions != nil {
		return formatUnknown, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return format, nil
}

func walk(path string, format formatType, extensions []string, fn entryFunc) error {
	switch format {
	case formatZIP:
		return walkZIP(path, extensions, fn)
	case format7z:
		return walk7z(path, extensions, fn)
	case formatGzip:
		return walkGzip(path, extensions, fn)
	case formatRAR:
		return walkRAR(path, extensions, fn)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// detectFormat determines the file format based on magic bytes and extension.
// The extensions parameter lists valid game file extensions (e.g. []string{".sfc"}).
func detectFormat(header []byte, path string, extensions []string) formatType {
	ext := strings.ToLower(filepath.Ext(path))

	// Magic bytes first, they are more reliable
	if bytes.HasPrefix(header, magicZIP) || bytes.HasPrefix(header, magicZIPEnd) {
		return formatZIP
	}
	if bytes.HasPrefix(header, magicRAR) {
		return formatRAR
	}
	if bytes.HasPrefix(header, magic7z) {
		return format7z
	}
	if bytes.HasPrefix(header, magicGzip) {
		return formatGzip
	}

	// A matching game extension wins over an archive extension on a file
	// that carries no archive magic.
	if isGameFile(path, extensions) {
		return formatRaw
	}

	switch ext {
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	}

	return formatUnknown
}

// isGameFile checks if a filename has one of the given extensions (case-insensitive)
func isGameFile(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// limitedRead reads from r up to MaxSize bytes, returning an error if exceeded
func (l Loader) limitedRead(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.MaxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.MaxSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
