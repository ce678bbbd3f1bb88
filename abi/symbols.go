// Package abi binds game client shared libraries through purego. A client
// exports a fixed set of C functions; the host hands it a table of C
// callbacks that dispatch back into Go by instance handle.
package abi

import (
	"errors"
	"fmt"
	"strings"
)

// Exported client symbols.
const (
	symAPIVersion             = "game_api_version"
	symMinAPIVersion          = "game_min_api_version"
	symCreate                 = "game_create"
	symDestroy                = "game_destroy"
	symSupportsVFS            = "game_supports_vfs"
	symSupportsStandalone     = "game_supports_standalone"
	symRequiresGameLoop       = "game_requires_game_loop"
	symSupportsKeyboard       = "game_supports_keyboard"
	symLoadGame               = "game_load_game"
	symLoadStandalone         = "game_load_standalone"
	symUnloadGame             = "game_unload_game"
	symGetGameInfo            = "game_get_game_info"
	symGetRegion              = "game_get_region"
	symRunFrame               = "game_run_frame"
	symReset                  = "game_reset"
	symHardwareContextReset   = "game_hw_context_reset"
	symHardwareContextDestroy = "game_hw_context_destroy"
	symUpdatePort             = "game_update_port"
	symInputEvent             = "game_input_event"
	symSerializeSize          = "game_serialize_size"
	symSerialize              = "game_serialize"
	symDeserialize            = "game_deserialize"
	symCheatReset             = "game_cheat_reset"
	symSetCheat               = "game_set_cheat"
)

// RequiredSymbols lists every symbol a client library must export.
var RequiredSymbols = []string{
	symAPIVersion,
	symMinAPIVersion,
	symCreate,
	symDestroy,
	symSupportsVFS,
	symSupportsStandalone,
	symRequiresGameLoop,
	symSupportsKeyboard,
	symLoadGame,
	symLoadStandalone,
	symUnloadGame,
	symGetGameInfo,
	symGetRegion,
	symRunFrame,
	symReset,
	symHardwareContextReset,
	symHardwareContextDestroy,
	symUpdatePort,
	symInputEvent,
	symSerializeSize,
	symSerialize,
	symDeserialize,
	symCheatReset,
	symSetCheat,
}

// ErrNullSymbol is returned by resolvers for symbols that resolve to NULL.
var ErrNullSymbol = errors.New("symbol resolved to NULL")

// Resolver looks up exported symbols by exact name.
type Resolver interface {
	Lookup(name string) (uintptr, error)
}

// MissingSymbolsError names every required symbol a library lacks.
type MissingSymbolsError struct {
	Symbols []string
}

func (e *MissingSymbolsError) Error() string {
	return fmt.Sprintf("abi: missing required symbols: %s", strings.Join(e.Symbols, ", "))
}

// SymbolTable maps symbol names to addresses.
type SymbolTable map[string]uintptr

// Resolve looks up every required symbol. Either all resolve or a
// *MissingSymbolsError is returned and no table.
func Resolve(r Resolver) (SymbolTable, error) {
	table := make(SymbolTable, len(RequiredSymbols))
	var missing []string

	for _, name := range RequiredSymbols {
		addr, err := r.Lookup(name)
		if err != nil || addr == 0 {
			missing = append(missing, name)
			continue
		}
		table[name] = addr
	}

	if len(missing) > 0 {
		return nil, &MissingSymbolsError{Symbols: missing}
	}
	return table, nil
}
