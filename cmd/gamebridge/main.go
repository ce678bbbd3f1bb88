// Command gamebridge loads a game client, plays a game headless for a
// while and records its audio.
//
//	gamebridge -client client.ini -game game.sms -seconds 10 -wav out.wav
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/user-none/gamebridge/abi"
	"github.com/user-none/gamebridge/gameclient"
	"github.com/user-none/gamebridge/host"
	"github.com/user-none/gamebridge/host/notify"
	"github.com/user-none/gamebridge/host/otoaudio"
	"github.com/user-none/gamebridge/host/wavsink"
	"github.com/user-none/gamebridge/savestate"
	"github.com/user-none/gamebridge/storage"
)

func main() {
	clientPath := flag.String("client", "", "game client descriptor (.ini)")
	gamePath := flag.String("game", "", "game file; empty starts a standalone client")
	seconds := flag.Float64("seconds", 10, "seconds to play")
	wavPath := flag.String("wav", "", "record audio to this WAV file instead of playing it")
	volume := flag.Float64("volume", 1.0, "playback volume when not recording")
	configPath := flag.String("config", "", "config file (default: config.json in the data directory)")
	saveSlot := flag.Int("savestate", -1, "save a state into this slot before closing")
	dialogs := flag.Bool("dialogs", false, "show errors in native dialogs")
	flag.Parse()

	if *clientPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*clientPath, *gamePath, *seconds, *wavPath, *volume, *configPath, *saveSlot, *dialogs); err != nil {
		log.Fatalf("gamebridge: %v", err)
	}
}

func run(clientPath, gamePath string, seconds float64, wavPath string, volume float64, configPath string, saveSlot int, dialogs bool) error {
	storage.Init("gamebridge")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	dirs, err := storage.ResolveDirs(cfg.Directories)
	if err != nil {
		return err
	}
	if err := storage.EnsureDirectories(dirs); err != nil {
		return err
	}

	statesPath, err := storage.GetSavestatesPath()
	if err != nil {
		return err
	}
	store, err := savestate.OpenStore(statesPath)
	if err != nil {
		return err
	}

	desc, err := gameclient.LoadDescriptor(clientPath)
	if err != nil {
		return err
	}

	var notifier host.Notifier = notify.Log{}
	if dialogs {
		notifier = notify.Dialog{AppName: "gamebridge"}
	}

	services := &host.Services{
		Focus:    host.AlwaysFocused{},
		Notifier: notifier,
		Loader:   abi.Open,
		Config:   cfg,
		Dirs:     dirs,
	}

	client := gameclient.New(desc, services, store)
	if err := client.Initialize(); err != nil {
		return err
	}
	defer client.Destroy()

	var audio host.AudioSink
	var wav *wavsink.Sink
	if wavPath != "" {
		wav = wavsink.New(wavPath)
		audio = wav
	} else {
		audio = otoaudio.New(volume)
	}
	video := &frameCounter{}

	if err := client.OpenFile(gamePath, audio, video); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	timer := time.NewTimer(time.Duration(seconds * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		log.Printf("gamebridge: interrupted")
	case <-timer.C:
	}

	if saveSlot >= 0 {
		meta, err := client.SaveState(saveSlot, fmt.Sprintf("gamebridge %s", time.Now().Format(time.DateTime)))
		if err != nil {
			log.Printf("gamebridge: Warning: failed to save state: %v", err)
		} else {
			log.Printf("gamebridge: saved %s", meta.StateFile)
		}
	}

	pb := client.Playback()
	playTime := uint64(0)
	if pb != nil {
		playTime = pb.GetTimeMs()
	}
	client.CloseFile()

	log.Printf("gamebridge: %d video frames, %d ms recorded", video.Frames(), playTime)
	if wav != nil {
		if err := wav.Err(); err != nil {
			return fmt.Errorf("failed to write %s: %w", wavPath, err)
		}
		log.Printf("gamebridge: wrote %d audio frames to %s", wav.Frames(), wavPath)
	}
	return nil
}

func loadConfig(path string) (*storage.Config, error) {
	var cfg *storage.Config
	var err error
	if path != "" {
		cfg, err = storage.LoadConfig(path)
	} else {
		cfg, err = storage.LoadDefaultConfig()
	}
	if err != nil {
		return nil, err
	}
	for _, problem := range storage.ValidateConfig(cfg) {
		log.Printf("gamebridge: Warning: config: %s", problem)
	}
	return storage.CorrectConfig(cfg), nil
}

// frameCounter is a VideoSink with no display.
type frameCounter struct {
	mu     sync.Mutex
	frames int
}

func (f *frameCounter) OpenVideo(info host.VideoStreamInfo) error {
	log.Printf("gamebridge: video %dx%d %s, rotation %d", info.Width, info.Height, info.Format, info.Rotation)
	return nil
}

func (f *frameCounter) VideoFrame([]byte, int, int, host.PixelFormat) {
	f.mu.Lock()
	f.frames++
	f.mu.Unlock()
}

func (f *frameCounter) CloseVideo() {}

func (f *frameCounter) Frames() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}
