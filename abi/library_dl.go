//go:build darwin || freebsd || linux || netbsd

package abi

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// Library is a dynamically loaded shared object.
type Library struct {
	path   string
	handle uintptr
}

// Dlopen loads the shared object at path.
func Dlopen(path string) (*Library, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("abi: failed to load %s: %w", path, err)
	}
	return &Library{path: path, handle: h}, nil
}

// Lookup returns the address of an exported symbol.
func (l *Library) Lookup(name string) (uintptr, error) {
	addr, err := purego.Dlsym(l.handle, name)
	if err != nil {
		return 0, err
	}
	if addr == 0 {
		return 0, ErrNullSymbol
	}
	return addr, nil
}

// Close unloads the library.
func (l *Library) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	return err
}

// Path returns the path the library was loaded from.
func (l *Library) Path() string {
	return l.path
}
