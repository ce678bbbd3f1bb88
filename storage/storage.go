package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

var appName string

// Init sets the application data directory name. Must be called before
// any storage operations.
func Init(dataDirName string) {
	appName = dataDirName
}

const (
	configFile     = "config.json"
	savestatesFile = "savestates.json"
	profileDir     = "profiles"
	systemDir      = "system"
	savesDir       = "saves"
	contentDir     = "content"
	extractDir     = "extracted"
)

// GetBaseDir returns the base directory for application data.
// The directory name is set by Init(). Example paths:
// - macOS: ~/Library/Application Support/<appName>
// - Linux: ~/.local/share/<appName>
// - Windows: %APPDATA%/<appName>
func GetBaseDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, "Library", "Application Support", appName)
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		baseDir = filepath.Join(appData, appName)
	default:
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome != "" {
			baseDir = filepath.Join(dataHome, appName)
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			baseDir = filepath.Join(home, ".local", "share", appName)
		}
	}

	return baseDir, nil
}

// Dirs holds the resolved directories handed to game clients.
type Dirs struct {
	Profile string
	System  string
	Saves   string
	Content string
	Extract string
}

// ResolveDirs fills every directory the config leaves empty with its
// default location under the base directory.
func ResolveDirs(cfg DirectoriesConfig) (Dirs, error) {
	baseDir, err := GetBaseDir()
	if err != nil {
		return Dirs{}, err
	}

	pick := func(configured, fallback string) string {
		if configured != "" {
			return configured
		}
		return filepath.Join(baseDir, fallback)
	}

	return Dirs{
		Profile: pick(cfg.Profile, profileDir),
		System:  pick(cfg.System, systemDir),
		Saves:   pick(cfg.Saves, savesDir),
		Content: pick(cfg.Content, contentDir),
		Extract: filepath.Join(baseDir, extractDir),
	}, nil
}

// EnsureDirectories creates the base directory and every resolved directory
func EnsureDirectories(dirs Dirs) error {
	baseDir, err := GetBaseDir()
	if err != nil {
		return err
	}

	for _, dir := range []string{baseDir, dirs.Profile, dirs.System, dirs.Saves, dirs.Content, dirs.Extract} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetConfigPath returns the full path to config.json
func GetConfigPath() (string, error) {
	baseDir, err := GetBaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, configFile), nil
}

// GetSavestatesPath returns the full path to the savestate database
func GetSavestatesPath() (string, error) {
	baseDir, err := GetBaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, savestatesFile), nil
}

// GetClientProfileDir returns the profile directory of a single game client
func GetClientProfileDir(dirs Dirs, clientID string) string {
	return filepath.Join(dirs.Profile, clientID)
}

// AtomicWriteFile writes data to path atomically by writing a temporary
// file in the same directory and renaming it over the target.
func AtomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Rename temp file to target (atomic on most filesystems)
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// AtomicWriteJSON writes data to a JSON file atomically.
func AtomicWriteJSON(path string, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return AtomicWriteFile(path, jsonData)
}

// ReadJSON reads and unmarshals a JSON file
func ReadJSON(path string, data interface{}) error {
	jsonData, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(jsonData, data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}
