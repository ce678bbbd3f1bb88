// Package gameclient drives one loaded game client: it owns the library,
// its ports and its playback, and routes the client's callbacks into the
// host's audio, video and input systems.
package gameclient

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// ErrInvalidDescriptor is returned when a descriptor is missing required keys.
var ErrInvalidDescriptor = errors.New("invalid game client descriptor")

// Dependency is an addon a client needs at creation time. Its path is
// handed to the client as a proxy library.
type Dependency struct {
	ID       string
	Optional bool
}

// Descriptor is the metadata shipped next to a game client library.
//
//	[client]
//	id       = game.client.example
//	name     = Example
//	version  = 1.2.0
//	author   = someone
//	library  = example.so
//	provider = example.org
//
//	[capabilities]
//	supports_vfs       = false
//	supports_game_loop = true
//	supports_standalone = false
//	supports_keyboard  = false
//	extensions         = .sms|.gg
//
//	[dependencies]
//	game.shader.presets = optional
type Descriptor struct {
	ID       string
	Name     string
	Version  string
	Author   string
	Library  string // absolute path of the shared library
	Provider string

	SupportsVFS        bool
	SupportsGameLoop   bool
	SupportsStandalone bool
	SupportsKeyboard   bool
	Extensions         []string

	Dependencies []Dependency
}

// LoadDescriptor reads a descriptor file. A relative library path is
// resolved against the descriptor's directory.
func LoadDescriptor(path string) (*Descriptor, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:         true,
		IgnoreInlineComment: true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}
	return parseDescriptor(f, filepath.Dir(path))
}

// ParseDescriptor reads a descriptor from memory. Relative library paths
// are resolved against baseDir.
func ParseDescriptor(data []byte, baseDir string) (*Descriptor, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:         true,
		IgnoreInlineComment: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse descriptor: %w", err)
	}
	return parseDescriptor(f, baseDir)
}

func parseDescriptor(f *ini.File, baseDir string) (*Descriptor, error) {
	client := f.Section("client")
	caps := f.Section("capabilities")

	d := &Descriptor{
		ID:       strings.TrimSpace(client.Key("id").String()),
		Name:     strings.TrimSpace(client.Key("name").String()),
		Version:  strings.TrimSpace(client.Key("version").String()),
		Author:   strings.TrimSpace(client.Key("author").String()),
		Library:  strings.TrimSpace(client.Key("library").String()),
		Provider: strings.TrimSpace(client.Key("provider").String()),

		SupportsVFS:        caps.Key("supports_vfs").MustBool(false),
		SupportsGameLoop:   caps.Key("supports_game_loop").MustBool(false),
		SupportsStandalone: caps.Key("supports_standalone").MustBool(false),
		SupportsKeyboard:   caps.Key("supports_keyboard").MustBool(false),
		Extensions:         NormalizeExtensions(caps.Key("extensions").String()),
	}

	if d.ID == "" {
		return nil, fmt.Errorf("%w: missing client id", ErrInvalidDescriptor)
	}
	if d.Library == "" {
		return nil, fmt.Errorf("%w: %s has no library", ErrInvalidDescriptor, d.ID)
	}
	if d.Name == "" {
		d.Name = d.ID
	}
	if !filepath.IsAbs(d.Library) {
		d.Library = filepath.Join(baseDir, d.Library)
	}

	if f.HasSection("dependencies") {
		for _, key := range f.Section("dependencies").Keys() {
			switch strings.ToLower(strings.TrimSpace(key.String())) {
			case "", "required":
				d.Dependencies = append(d.Dependencies, Dependency{ID: key.Name()})
			case "optional":
				d.Dependencies = append(d.Dependencies, Dependency{ID: key.Name(), Optional: true})
			default:
				return nil, fmt.Errorf("%w: dependency %s has unknown kind %q", ErrInvalidDescriptor, key.Name(), key.String())
			}
		}
	}

	return d, nil
}

// NormalizeExtensions splits a "|" or "," separated list into lowercase
// extensions with a leading dot, sorted and without duplicates.
func NormalizeExtensions(list string) []string {
	seen := make(map[string]bool)
	var exts []string
	for _, e := range strings.FieldsFunc(list, func(r rune) bool { return r == '|' || r == ',' }) {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || e == "." {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if !seen[e] {
			seen[e] = true
			exts = append(exts, e)
		}
	}
	sort.Strings(exts)
	return exts
}

// SupportsExtension reports whether path has one of the client's
// extensions. "*" in the extension list accepts everything.
func (d *Descriptor) SupportsExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range d.Extensions {
		if e == ".*" || e == ext {
			return true
		}
	}
	return false
}
