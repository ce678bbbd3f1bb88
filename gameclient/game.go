package gameclient

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	gameapi "github.com/user-none/gamebridge/api"
	"github.com/user-none/gamebridge/host"
	"github.com/user-none/gamebridge/input"
	"github.com/user-none/gamebridge/memstream"
	"github.com/user-none/gamebridge/playback"
	"github.com/user-none/gamebridge/romloader"
	"github.com/user-none/gamebridge/savestate"
)

// OpenFile loads a game and starts playing it. An empty path starts a
// standalone client. Any game already playing is closed first.
func (c *GameClient) OpenFile(path string, audio host.AudioSink, video host.VideoSink) error {
	if audio == nil || video == nil {
		return ErrNilCallback
	}

	c.fileMu.Lock()
	defer c.fileMu.Unlock()

	c.closeFile()

	if err := c.openGame(path, audio, video); err != nil {
		c.notifyMissingDependencies(err)
		return err
	}

	c.pb = c.createPlayback()
	if c.store != nil {
		c.saves = savestate.NewManager(c.store, c.services.Dirs.Saves, c.desc.ID, c.savestateKey(path))
	}
	c.pb.Start()
	return nil
}

func (c *GameClient) openGame(path string, audio host.AudioSink, video host.VideoSink) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lib == nil {
		return ErrNotInitialized
	}

	c.session.Add(1)
	c.setSinks(audio, video)

	if err := c.loadGame(path); err != nil {
		c.clearSinks()
		return err
	}

	var info gameapi.SystemAVInfo
	if !c.check("GetGameInfo", func() gameapi.Error { return c.lib.GetGameInfo(&info) }) {
		c.unloadGame()
		return fmt.Errorf("%w: no game info", ErrLoadGame)
	}

	timing, err := NegotiateTiming(info.Timing, c.services.SampleRates(), c.services.AudioConfig())
	if err != nil {
		log.Printf("GameClient: %s: %v", c.desc.ID, err)
		c.unloadGame()
		return err
	}

	var region gameapi.Region
	c.guard("GetRegion", func() { region = c.lib.GetRegion() })

	c.avInfo = info
	c.timing = timing
	c.region = region
	c.gamePath = path
	c.playing.Store(true)

	if !c.activateAudio(timing.HostSampleRate) {
		c.unloadGame()
		return fmt.Errorf("%w: audio sink rejected %d Hz", ErrUnsupportedSampleRate, timing.HostSampleRate)
	}

	c.inputRate = c.services.AcquireInputRate(timing.FrameRate())
	if c.desc.SupportsKeyboard && c.services.Keyboard != nil {
		c.stateMu.Lock()
		c.keyboard = input.NewKeyboard(c)
		c.stateMu.Unlock()
		c.services.Keyboard.EnableKeyboard(c)
	}

	log.Printf("GameClient: %s: playing %q at %.3f fps, %d Hz (multiplier %.4f)",
		c.desc.ID, path, timing.FrameRate(), timing.HostSampleRate, timing.Multiplier)
	return nil
}

// loadGame hands the game to the library. mu must be held.
func (c *GameClient) loadGame(path string) error {
	if path == "" {
		if !c.desc.SupportsStandalone {
			return ErrNoGame
		}
		if !c.check("LoadStandalone", c.lib.LoadStandalone) {
			return ErrLoadGame
		}
		return nil
	}

	gamePath := path
	if !c.desc.SupportsVFS {
		local, err := romloader.ExtractToDir(path, c.desc.Extensions, c.extractDir())
		if err != nil {
			log.Printf("GameClient: %s: failed to prepare %s: %v", c.desc.ID, path, err)
			return fmt.Errorf("%w: %w", ErrLoadGame, err)
		}
		gamePath = local
	}

	if !c.check("LoadGame", func() gameapi.Error { return c.lib.LoadGame(gamePath) }) {
		return ErrLoadGame
	}
	return nil
}

func (c *GameClient) extractDir() string {
	dir := c.services.Dirs.Extract
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "gamebridge")
	}
	return filepath.Join(dir, c.desc.ID)
}

// savestateKey names the game for savestates. Standalone clients have no
// game path and use their id.
func (c *GameClient) savestateKey(path string) string {
	if path == "" {
		return c.desc.ID
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// createPlayback picks the playback for the loaded game. Clients that run
// their own loop get no transport; clients that can't serialize, or a
// disabled rewind, get a basic one.
func (c *GameClient) createPlayback() playback.Playback {
	if !c.desc.SupportsGameLoop {
		return playback.NewDummy()
	}

	c.mu.Lock()
	fps := c.timing.FrameRate()
	c.mu.Unlock()

	rewind := c.services.RewindConfig()
	if !rewind.Enabled || rewind.BufferSeconds <= 0 || c.SerializeSize() <= 0 {
		return playback.NewBasic(c, fps)
	}
	return playback.NewReversible(c, fps, float64(rewind.BufferSeconds), memstream.Kind(rewind.Stream))
}

func (c *GameClient) notifyMissingDependencies(cause error) {
	for _, id := range c.MissingDependencies() {
		c.services.Notify("Missing add-on",
			fmt.Sprintf("%s could not start the game (%v). The optional add-on %s is not installed.", c.desc.Name, cause, id))
	}
}

// CloseFile stops the playback and unloads the game. It does nothing when
// no game is playing.
func (c *GameClient) CloseFile() {
	c.fileMu.Lock()
	defer c.fileMu.Unlock()
	c.closeFile()
}

// closeSession closes the game if session is still the one playing.
func (c *GameClient) closeSession(session uint64) {
	c.fileMu.Lock()
	defer c.fileMu.Unlock()
	if c.session.Load() != session {
		log.Printf("GameClient: %s: ignoring close request for a finished session", c.desc.ID)
		return
	}
	c.closeFile()
}

// closeFile requires fileMu. The playback is closed before mu is taken so
// a frame waiting on mu can finish and the loop can exit.
func (c *GameClient) closeFile() {
	if c.pb != nil {
		c.pb.Close()
		c.pb = nil
	}
	c.saves = nil

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing.Load() {
		return
	}
	c.unloadGame()
	log.Printf("GameClient: %s: closed %q", c.desc.ID, c.gamePath)
	c.gamePath = ""
}

// unloadGame reverses a load. mu must be held.
func (c *GameClient) unloadGame() {
	c.check("UnloadGame", c.lib.UnloadGame)
	c.playing.Store(false)

	c.clearPorts()

	c.stateMu.Lock()
	kb := c.keyboard
	c.keyboard = nil
	c.stateMu.Unlock()
	if kb != nil && c.services.Keyboard != nil {
		c.services.Keyboard.DisableKeyboard(c)
	}

	if c.inputRate != nil {
		c.inputRate.Release()
		c.inputRate = nil
	}

	c.closeStreams()
	c.clearSinks()
	c.timing = Timing{}
	c.avInfo = gameapi.SystemAVInfo{}
}

// IsPlaying reports whether a game is loaded.
func (c *GameClient) IsPlaying() bool {
	return c.playing.Load()
}

// Playback returns the transport of the running game, or nil.
func (c *GameClient) Playback() playback.Playback {
	c.fileMu.Lock()
	defer c.fileMu.Unlock()
	return c.pb
}

// Timing returns the negotiated timing of the running game.
func (c *GameClient) Timing() Timing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timing
}

// AVInfo returns the geometry and timing the game reported.
func (c *GameClient) AVInfo() gameapi.SystemAVInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.avInfo
}

// Region returns the video region of the running game.
func (c *GameClient) Region() gameapi.Region {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.region
}

// RunFrame runs one frame. It returns false when no game is playing or
// the library failed.
func (c *GameClient) RunFrame() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing.Load() {
		return false
	}
	return c.check("RunFrame", c.lib.RunFrame)
}

// Reset restarts the game. The playback is rebuilt so no rewind history
// from before the reset survives.
func (c *GameClient) Reset() error {
	c.fileMu.Lock()
	defer c.fileMu.Unlock()

	if !c.playing.Load() {
		return ErrNotPlaying
	}

	if c.pb != nil {
		c.pb.Close()
		c.pb = nil
	}

	c.mu.Lock()
	ok := c.check("Reset", c.lib.Reset)
	c.mu.Unlock()

	c.pb = c.createPlayback()
	c.pb.Start()

	if !ok {
		return fmt.Errorf("%w: reset", ErrLoadGame)
	}
	return nil
}

type frameRateSetter interface {
	SetFrameRate(fps float64)
}

// SetFrameRateCorrection turns frame rate correction on or off for the
// running game. With it off the game runs at its own rate and its audio
// plays at the negotiated host rate.
func (c *GameClient) SetFrameRateCorrection(enabled bool) error {
	c.fileMu.Lock()
	defer c.fileMu.Unlock()

	c.mu.Lock()
	if !c.playing.Load() {
		c.mu.Unlock()
		return ErrNotPlaying
	}
	multiplier := 1.0
	if enabled && c.timing.SampleRate > 0 && c.timing.HostSampleRate > 0 {
		multiplier = float64(c.timing.HostSampleRate) / c.timing.SampleRate
	}
	changed := multiplier != c.timing.Multiplier
	c.timing.Multiplier = multiplier
	fps := c.timing.FrameRate()
	if changed && c.inputRate != nil {
		c.inputRate.Release()
		c.inputRate = c.services.AcquireInputRate(fps)
	}
	c.mu.Unlock()

	if !changed {
		return nil
	}
	if s, ok := c.pb.(frameRateSetter); ok {
		s.SetFrameRate(fps)
	}
	log.Printf("GameClient: %s: frame rate %.3f fps (multiplier %.4f)", c.desc.ID, fps, multiplier)
	return nil
}
