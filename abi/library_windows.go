//go:build windows

package abi

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Library is a dynamically loaded DLL.
type Library struct {
	path   string
	handle windows.Handle
}

// Dlopen loads the DLL at path.
func Dlopen(path string) (*Library, error) {
	h, err := windows.LoadLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("abi: failed to load %s: %w", path, err)
	}
	return &Library{path: path, handle: h}, nil
}

// Lookup returns the address of an exported symbol.
func (l *Library) Lookup(name string) (uintptr, error) {
	addr, err := windows.GetProcAddress(l.handle, name)
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
	err := windows.FreeLibrary(l.handle)
	l.handle = 0
	return err
}

// Path returns the path the library was loaded from.
func (l *Library) Path() string {
	return l.path
}
