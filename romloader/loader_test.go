package romloader

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// testExtensions is a common set of game extensions used across tests
var testExtensions = []string{".sfc"}

func createTestFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

// createTestZipFile creates a .zip file holding the given entries in order
func createTestZipFile(t *testing.T, entries map[string][]byte, order ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.zip")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, name := range order {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file in zip: %v", err)
		}
		if _, err := fw.Write(entries[name]); err != nil {
			t.Fatalf("Failed to write to zip: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return path
}

func createTestGzipFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Failed to write to gzip: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close gzip: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func createTestTarGzFile(t *testing.T, entryName string, data []byte) string {
	t.Helper()
	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	if err := tw.WriteHeader(&tar.Header{Name: "docs/", Typeflag: tar.TypeDir, Mode: 0755}); err != nil {
		t.Fatal(err)
	}
	if err := tw.WriteHeader(&tar.Header{Name: entryName, Typeflag: tar.TypeReg, Mode: 0644, Size: int64(len(data))}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return createTestGzipFile(t, "game.tar.gz", tarBuf.Bytes())
}

func TestLoad_Raw(t *testing.T) {
	testData := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	path := createTestFile(t, "test.sfc", testData)

	data, name, err := Load(path, testExtensions)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(data, testData) {
		t.Errorf("Data mismatch: expected %v, got %v", testData, data)
	}
	if name != "test.sfc" {
		t.Errorf("Name mismatch: expected test.sfc, got %s", name)
	}
}

func TestLoad_ExtensionCaseInsensitive(t *testing.T) {
	path := createTestFile(t, "GAME.SFC", []byte{1})
	if _, _, err := Load(path, []string{".sfc"}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
}

func TestLoad_ZipPicksFirstMatch(t *testing.T) {
	path := createTestZipFile(t, map[string][]byte{
		"readme.txt":       []byte("hello"),
		"roms/game.sfc":    {0xAA, 0xBB},
		"roms/another.sfc": {0xCC},
	}, "readme.txt", "roms/game.sfc", "roms/another.sfc")

	data, name, err := Load(path, testExtensions)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(data, []byte{0xAA, 0xBB}) {
		t.Errorf("got %v", data)
	}
	if name != "game.sfc" {
		t.Errorf("got name %s, want game.sfc", name)
	}
}

func TestLoad_Gzip(t *testing.T) {
	testData := []byte{0x11, 0x22, 0x33}
	path := createTestGzipFile(t, "test.sfc.gz", testData)

	data, name, err := Load(path, testExtensions)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(data, testData) {
		t.Errorf("got %v, want %v", data, testData)
	}
	if name != "test.sfc" {
		t.Errorf("got name %s, want test.sfc", name)
	}
}

func TestLoad_TarGz(t *testing.T) {
	testData := []byte{0x44, 0x55}
	path := createTestTarGzFile(t, "docs/game.sfc", testData)

	data, name, err := Load(path, testExtensions)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(data, testData) || name != "game.sfc" {
		t.Errorf("got %v %s", data, name)
	}
}

func TestLoad_Errors(t *testing.T) {
	noMatch := createTestZipFile(t, map[string][]byte{"readme.txt": []byte("x")}, "readme.txt")
	unknown := createTestFile(t, "notes.txt", []byte("plain text"))

	tests := []struct {
		name string
		path string
		want error
	}{
		{"no game in archive", noMatch, ErrNoGameFile},
		{"unknown extension", unknown, ErrUnsupportedFormat},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Load(tc.path, testExtensions)
			if !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}

	if _, _, err := Load("/nonexistent/game.sfc", testExtensions); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_FileTooLarge(t *testing.T) {
	l := Loader{MaxSize: 4}
	path := createTestFile(t, "big.sfc", make([]byte, 5))
	if _, _, err := l.Load(path, testExtensions); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("got %v, want ErrFileTooLarge", err)
	}

	zipped := createTestZipFile(t, map[string][]byte{"big.sfc": make([]byte, 5)}, "big.sfc")
	if _, _, err := l.Load(zipped, testExtensions); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("got %v, want ErrFileTooLarge", err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		path   string
		want   formatType
	}{
		{"zip magic", magicZIP, "game.bin", formatZIP},
		{"empty zip magic", magicZIPEnd, "game.bin", formatZIP},
		{"7z magic", magic7z, "game.bin", format7z},
		{"gzip magic", magicGzip, "game.bin", formatGzip},
		{"rar magic", magicRAR, "game.bin", formatRAR},
		{"zip extension", nil, "game.zip", formatZIP},
		{"7z extension", nil, "game.7z", format7z},
		{"tgz extension", nil, "game.tgz", formatGzip},
		{"rar extension", nil, "game.RAR", formatRAR},
		{"game extension", []byte{0, 1, 2, 3}, "game.sfc", formatRaw},
		{"unknown", []byte{0, 1, 2, 3}, "game.txt", formatUnknown},
		{"partial rar magic", []byte{0x52, 0x61}, "game.sfc", formatRaw},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectFormat(tc.header, tc.path, testExtensions); got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestIsArchive(t *testing.T) {
	zipped := createTestZipFile(t, map[string][]byte{"a.sfc": {1}}, "a.sfc")
	raw := createTestFile(t, "a.sfc", []byte{1, 2, 3})
	gz := createTestGzipFile(t, "a.sfc.gz", []byte{1})

	tests := []struct {
		path string
		want bool
	}{
		{zipped, true},
		{raw, false},
		{gz, true},
	}
	for _, tc := range tests {
		got, err := IsArchive(tc.path)
		if err != nil {
			t.Fatalf("IsArchive(%s): %v", tc.path, err)
		}
		if got != tc.want {
			t.Errorf("IsArchive(%s) = %v, want %v", filepath.Base(tc.path), got, tc.want)
		}
	}

	if _, err := IsArchive("/nonexistent.zip"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExtractToDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "extracted")
	testData := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	zipped := createTestZipFile(t, map[string][]byte{"sub/game.sfc": testData}, "sub/game.sfc")

	out, err := ExtractToDir(zipped, testExtensions, dir)
	if err != nil {
		t.Fatalf("ExtractToDir failed: %v", err)
	}
	if out != filepath.Join(dir, "game.sfc") {
		t.Errorf("got %s, want game.sfc under dir", out)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, testData) {
		t.Errorf("got %v, want %v", data, testData)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}
}

func TestExtractToDir_RawUnchanged(t *testing.T) {
	raw := createTestFile(t, "game.sfc", []byte{1})
	out, err := ExtractToDir(raw, testExtensions, t.TempDir())
	if err != nil {
		t.Fatalf("ExtractToDir failed: %v", err)
	}
	if out != raw {
		t.Errorf("got %s, want %s", out, raw)
	}
}

func TestExtractToDir_ArchiveAsGameFormat(t *testing.T) {
	zipped := createTestZipFile(t, map[string][]byte{"rom.bin": {1}}, "rom.bin")
	out, err := ExtractToDir(zipped, []string{".zip"}, t.TempDir())
	if err != nil {
		t.Fatalf("ExtractToDir failed: %v", err)
	}
	if out != zipped {
		t.Errorf("archive declared as game format should pass through, got %s", out)
	}
}

func TestExtractToDir_TooLargeLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	l := Loader{MaxSize: 2}
	zipped := createTestZipFile(t, map[string][]byte{"game.sfc": {1, 2, 3}}, "game.sfc")

	if _, err := l.ExtractToDir(zipped, testExtensions, dir); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("got %v, want ErrFileTooLarge", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected empty dir, found %d entries", len(entries))
	}
}

func TestCorruptArchives(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"corrupt.7z", append(append([]byte{}, magic7z...), 0, 4, 0xFF, 0xFF)},
		{"corrupt.rar", append(append([]byte{}, magicRAR...), 0x1A, 0x07, 0x00, 0xFF)},
		{"empty.7z", nil},
		{"fake.rar", []byte("not a rar file")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := createTestFile(t, tc.name, tc.data)
			if _, _, err := Load(path, testExtensions); err == nil {
				t.Error("expected error for corrupt archive")
			}
		})
	}
}
