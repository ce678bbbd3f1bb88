package savestate

import (
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/user-none/gamebridge/storage"
)

// GameKey identifies a game by the CRC32 of its path.
func GameKey(gamePath string) string {
	return fmt.Sprintf("crc-%08x", crc32.ChecksumIEEE([]byte(gamePath)))
}

// Manager stores savestates of one game played with one client.
type Manager struct {
	store    *Store
	dir      string
	clientID string
	gamePath string
	gameKey  string
}

// NewManager creates a manager writing blobs under
// savesDir/<clientID>/<gameKey>.
func NewManager(store *Store, savesDir, clientID, gamePath string) *Manager {
	key := GameKey(gamePath)
	return &Manager{
		store:    store,
		dir:      filepath.Join(savesDir, clientID, key),
		clientID: clientID,
		gamePath: gamePath,
		gameKey:  key,
	}
}

// GameKey returns the key of the managed game.
func (m *Manager) GameKey() string {
	return m.gameKey
}

func (m *Manager) statePath(slot int) string {
	return filepath.Join(m.dir, fmt.Sprintf("slot-%d.state", slot))
}

func (m *Manager) thumbPath(slot int) string {
	return filepath.Join(m.dir, fmt.Sprintf("slot-%d.png", slot))
}

// Save writes state into slot, replacing what was there. thumb may be nil.
func (m *Manager) Save(slot int, label string, state []byte, thumb image.Image, playTimeMs uint64) (Meta, error) {
	if slot < 0 {
		return Meta{}, fmt.Errorf("invalid slot %d", slot)
	}
	if len(state) == 0 {
		return Meta{}, fmt.Errorf("empty savestate")
	}

	meta := Meta{
		ClientID:  m.clientID,
		GameKey:   m.gameKey,
		GamePath:  m.gamePath,
		Slot:      slot,
		Label:     label,
		Created:   time.Now().Unix(),
		Size:      len(state),
		StateFile: m.statePath(slot),
		PlayTime:  playTimeMs,
	}

	if err := storage.AtomicWriteFile(meta.StateFile, state); err != nil {
		return Meta{}, fmt.Errorf("failed to write state file: %w", err)
	}

	if thumb != nil {
		data, err := EncodePNG(Thumbnail(thumb, ThumbnailWidth, ThumbnailHeight))
		if err == nil {
			err = storage.AtomicWriteFile(m.thumbPath(slot), data)
		}
		if err != nil {
			// The state is still usable without a thumbnail.
			log.Printf("savestate: thumbnail for slot %d: %v", slot, err)
		} else {
			meta.Thumbnail = m.thumbPath(slot)
		}
	}

	if err := m.store.Put(meta); err != nil {
		return Meta{}, err
	}
	return meta, nil
}

// Load returns the state stored in slot.
func (m *Manager) Load(slot int) ([]byte, Meta, error) {
	meta, err := m.store.Get(m.clientID, m.gameKey, slot)
	if err != nil {
		return nil, Meta{}, err
	}
	state, err := os.ReadFile(meta.StateFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, Meta{}, fmt.Errorf("%w: state file for slot %d missing", ErrNotFound, slot)
	}
	if err != nil {
		return nil, Meta{}, fmt.Errorf("failed to read state file: %w", err)
	}
	return state, meta, nil
}

// Delete removes the state in slot with its files.
func (m *Manager) Delete(slot int) error {
	meta, err := m.store.Get(m.clientID, m.gameKey, slot)
	if err != nil {
		return err
	}
	for _, p := range []string{meta.StateFile, meta.Thumbnail} {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return m.store.Delete(m.clientID, m.gameKey, slot)
}

// List returns every savestate of the game ordered by slot.
func (m *Manager) List() []Meta {
	return m.store.List(m.clientID, m.gameKey)
}
