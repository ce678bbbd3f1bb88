// Package savestate keeps savestate blobs on disk and their metadata in a
// single JSON document keyed by client id, game key and slot.
package savestate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/user-none/gamebridge/storage"
)

// ErrNotFound is returned for slots without a savestate.
var ErrNotFound = errors.New("savestate not found")

// Meta describes one savestate.
type Meta struct {
	ClientID  string `json:"clientId"`
	GameKey   string `json:"gameKey"`
	GamePath  string `json:"gamePath"`
	Slot      int    `json:"slot"`
	Label     string `json:"label,omitempty"`
	Created   int64  `json:"created"` // unix seconds
	Size      int    `json:"size"`
	StateFile string `json:"stateFile"`
	Thumbnail string `json:"thumbnail,omitempty"`
	PlayTime  uint64 `json:"playTimeMs,omitempty"`
}

// Store is the metadata database. It is safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	doc  []byte
}

// OpenStore loads the database at path, starting empty if it doesn't exist.
func OpenStore(path string) (*Store, error) {
	doc, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		doc = []byte("{}")
	} else if err != nil {
		return nil, fmt.Errorf("failed to read savestate database: %w", err)
	} else if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("savestate database %s is not valid JSON", path)
	}
	return &Store{path: path, doc: doc}, nil
}

// escapeKey escapes gjson/sjson path syntax in a single key.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func slotKey(slot int) string {
	return fmt.Sprintf("slot-%d", slot)
}

func gamePath(clientID, gameKey string) string {
	return "clients." + escapeKey(clientID) + "." + escapeKey(gameKey)
}

func metaPath(clientID, gameKey string, slot int) string {
	return gamePath(clientID, gameKey) + "." + slotKey(slot)
}

// Put inserts or replaces the metadata of a slot and persists the database.
func (s *Store) Put(m Meta) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal savestate metadata: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := sjson.SetRawBytes(s.doc, metaPath(m.ClientID, m.GameKey, m.Slot), raw)
	if err != nil {
		return fmt.Errorf("failed to update savestate database: %w", err)
	}
	return s.commit(doc)
}

// Get returns the metadata of a slot.
func (s *Store) Get(clientID, gameKey string, slot int) (Meta, error) {
	s.mu.Lock()
	res := gjson.GetBytes(s.doc, metaPath(clientID, gameKey, slot))
	s.mu.Unlock()

	if !res.Exists() {
		return Meta{}, ErrNotFound
	}
	var m Meta
	if err := json.Unmarshal([]byte(res.Raw), &m); err != nil {
		return Meta{}, fmt.Errorf("corrupt savestate metadata: %w", err)
	}
	return m, nil
}

// Delete removes the metadata of a slot.
func (s *Store) Delete(clientID, gameKey string, slot int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := metaPath(clientID, gameKey, slot)
	if !gjson.GetBytes(s.doc, path).Exists() {
		return ErrNotFound
	}
	doc, err := sjson.DeleteBytes(s.doc, path)
	if err != nil {
		return fmt.Errorf("failed to update savestate database: %w", err)
	}
	return s.commit(doc)
}

// List returns every savestate of a game ordered by slot.
func (s *Store) List(clientID, gameKey string) []Meta {
	s.mu.Lock()
	res := gjson.GetBytes(s.doc, gamePath(clientID, gameKey))
	s.mu.Unlock()

	var out []Meta
	res.ForEach(func(_, v gjson.Result) bool {
		var m Meta
		if json.Unmarshal([]byte(v.Raw), &m) == nil {
			out = append(out, m)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}

// commit writes doc to disk and adopts it. Caller holds mu.
func (s *Store) commit(doc []byte) error {
	if err := storage.AtomicWriteFile(s.path, doc); err != nil {
		return err
	}
	s.doc = doc
	return nil
}
