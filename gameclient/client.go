package gameclient

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/user-none/gamebridge/abi"
	gameapi "github.com/user-none/gamebridge/api"
	"github.com/user-none/gamebridge/host"
	"github.com/user-none/gamebridge/input"
	"github.com/user-none/gamebridge/playback"
	"github.com/user-none/gamebridge/savestate"
	"github.com/user-none/gamebridge/storage"
)

var (
	ErrNotInitialized      = errors.New("game client is not initialized")
	ErrAlreadyInitialized  = errors.New("game client is already initialized")
	ErrLoadFailed          = errors.New("failed to load game client library")
	ErrIncompatibleVersion = errors.New("incompatible game API version")
	ErrCapabilityMismatch  = errors.New("game client capabilities do not match its descriptor")
	ErrCreateFailed        = errors.New("game client refused creation")
	ErrMissingDependency   = errors.New("required dependency is not installed")
	ErrNilCallback         = errors.New("audio and video sinks are required")
	ErrNoGame              = errors.New("game client needs a game file")
	ErrLoadGame            = errors.New("game client failed to load the game")
	ErrInvalidTiming       = errors.New("game reported invalid timing")
	ErrNotPlaying          = errors.New("no game is playing")
	ErrNoSavestates        = errors.New("savestates are not available")
)

// AddonKind tags what an installed addon provides.
type AddonKind int

const (
	KindUnknown AddonKind = iota
	KindGameClient
)

// Addon is the common view of installed addons.
type Addon interface {
	ID() string
	Kind() AddonKind
}

// AsGameClient returns a as a game client if it is one.
func AsGameClient(a Addon) (*GameClient, bool) {
	if a == nil || a.Kind() != KindGameClient {
		return nil, false
	}
	c, ok := a.(*GameClient)
	return c, ok && c != nil
}

// GameClient is one game client library and the game it is playing.
//
// Every library call is made with mu held. Callbacks from the library run
// on the calling goroutine while mu is held, so they only take stateMu.
// fileMu serializes OpenFile, CloseFile and Reset and is never taken by
// the loop goroutine, which lets CloseFile join the loop before it
// unloads the game.
type GameClient struct {
	desc     *Descriptor
	services *host.Services
	store    *savestate.Store

	fileMu sync.Mutex
	pb     playback.Playback
	saves  *savestate.Manager

	mu              sync.Mutex
	lib             gameapi.Library
	props           gameapi.Properties
	missingOptional []string
	playing         atomic.Bool
	session         atomic.Uint64
	gamePath        string
	avInfo          gameapi.SystemAVInfo
	region          gameapi.Region
	timing          Timing
	inputRate       host.InputRateHandle

	stateMu  sync.Mutex
	ports    []*input.Port
	keyboard *input.Keyboard
	streams  streams
}

// New creates an uninitialized client. store may be nil, which disables
// savestates.
func New(desc *Descriptor, services *host.Services, store *savestate.Store) *GameClient {
	if services == nil {
		services = &host.Services{}
	}
	return &GameClient{
		desc:     desc,
		services: services,
		store:    store,
	}
}

// ID implements Addon.
func (c *GameClient) ID() string { return c.desc.ID }

// Kind implements Addon.
func (c *GameClient) Kind() AddonKind { return KindGameClient }

// Descriptor returns the client's metadata.
func (c *GameClient) Descriptor() *Descriptor { return c.desc }

// Properties returns the property block handed to the library.
func (c *GameClient) Properties() gameapi.Properties {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.props
}

// MissingDependencies lists optional dependencies that were not found.
func (c *GameClient) MissingDependencies() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.missingOptional...)
}

// Initialize loads the library and creates the client. Nothing is left
// loaded when it fails.
func (c *GameClient) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lib != nil {
		return ErrAlreadyInitialized
	}

	dirs := c.services.Dirs
	profile := storage.GetClientProfileDir(dirs, c.desc.ID)
	saves := filepath.Join(dirs.Saves, c.desc.ID)
	for _, dir := range []string{profile, saves} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("GameClient: %s: failed to create %s: %v", c.desc.ID, dir, err)
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	proxies, missing, err := c.resolveDependencies()
	if err != nil {
		log.Printf("GameClient: %s: %v", c.desc.ID, err)
		return err
	}
	c.missingOptional = missing

	props := gameapi.Properties{
		LibraryPath:      c.desc.Library,
		ProxyDLLPaths:    proxies,
		SystemDirectory:  dirs.System,
		ContentDirectory: dirs.Content,
		SaveDirectory:    saves,
		ProfileDirectory: profile,
	}

	load := c.services.Loader
	if load == nil {
		load = abi.Open
	}
	lib, err := load(c.desc.Library)
	if err != nil {
		log.Printf("GameClient: %s (author %s): failed to load %s: %v", c.desc.ID, c.desc.Author, c.desc.Library, err)
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	if err := c.validate(lib); err != nil {
		log.Printf("GameClient: %s (author %s): %v", c.desc.ID, c.desc.Author, err)
		c.closeLibrary(lib)
		return err
	}

	cb := &callbacks{c: c}
	rc := gameapi.ErrorNone
	if !c.guard("Create", func() { rc = lib.Create(cb, &props) }) {
		c.closeLibrary(lib)
		return ErrCreateFailed
	}
	if rc != gameapi.ErrorNone {
		c.logError("Create", rc)
		c.closeLibrary(lib)
		return fmt.Errorf("%w: %w", ErrCreateFailed, rc)
	}

	c.lib = lib
	c.props = props
	log.Printf("GameClient: initialized %s %s", c.desc.ID, c.desc.Version)
	return nil
}

// validate checks the library's API version and that the capabilities
// it reports match the descriptor.
func (c *GameClient) validate(lib gameapi.Library) error {
	var version, minVersion string
	var vfs, standalone, gameLoop, keyboard bool
	ok := c.guard("capabilities", func() {
		version = lib.APIVersion()
		minVersion = lib.MinAPIVersion()
		vfs = lib.SupportsVFS()
		standalone = lib.SupportsStandalone()
		gameLoop = lib.RequiresGameLoop()
		keyboard = lib.SupportsKeyboard()
	})
	if !ok {
		return ErrLoadFailed
	}

	if !gameapi.VersionCompatible(version, minVersion) {
		return fmt.Errorf("%w: client API %s (min %s), host API %s (min %s)",
			ErrIncompatibleVersion, version, minVersion, gameapi.APIVersion, gameapi.MinAPIVersion)
	}

	var mismatched []string
	check := func(name string, declared, reported bool) {
		if declared != reported {
			mismatched = append(mismatched, fmt.Sprintf("%s (descriptor %t, library %t)", name, declared, reported))
		}
	}
	check("supports_vfs", c.desc.SupportsVFS, vfs)
	check("supports_standalone", c.desc.SupportsStandalone, standalone)
	check("supports_game_loop", c.desc.SupportsGameLoop, gameLoop)
	check("supports_keyboard", c.desc.SupportsKeyboard, keyboard)
	if len(mismatched) > 0 {
		return fmt.Errorf("%w: %v", ErrCapabilityMismatch, mismatched)
	}
	return nil
}

func (c *GameClient) resolveDependencies() (proxies, missing []string, err error) {
	for _, dep := range c.desc.Dependencies {
		var info host.AddonInfo
		found := false
		if c.services.Addons != nil {
			info, found = c.services.Addons.Lookup(dep.ID)
		}
		if !found || !info.Enabled {
			if dep.Optional {
				log.Printf("GameClient: Warning: %s: optional dependency %s is not installed", c.desc.ID, dep.ID)
				missing = append(missing, dep.ID)
				continue
			}
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingDependency, dep.ID)
		}
		if info.Path != "" {
			proxies = append(proxies, info.Path)
		}
	}
	return proxies, missing, nil
}

func (c *GameClient) closeLibrary(lib gameapi.Library) {
	if err := lib.Close(); err != nil {
		log.Printf("GameClient: %s: failed to unload library: %v", c.desc.ID, err)
	}
}

// Destroy closes any open game and unloads the library.
func (c *GameClient) Destroy() {
	c.CloseFile()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lib == nil {
		return
	}
	c.guard("Destroy", c.lib.Destroy)
	c.closeLibrary(c.lib)
	c.lib = nil
	c.props = gameapi.Properties{}
}

// Initialized reports whether the library is loaded.
func (c *GameClient) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lib != nil
}
