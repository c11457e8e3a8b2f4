// Package environ composes the environment that injects libmcount into a
// traced program through the dynamic linker.
package environ

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// LibrarySearchPathVar is the dynamic linker search path variable.
	LibrarySearchPathVar = "LD_LIBRARY_PATH"
	// PreloadVar is the dynamic linker preload list variable.
	PreloadVar = "LD_PRELOAD"
	// ListEventVar asks libmcount to print its event sources and exit.
	ListEventVar = "UFTRACE_LIST_EVENT"

	// ShimName is the tracing shim library.
	ShimName = "libmcount.so"

	// MaxValueLen bounds every composed value.
	MaxValueLen = 4096
)

// ErrValueTooLong is returned when a composed value exceeds MaxValueLen.
var ErrValueTooLong = errors.New("environment value too long")

// LookupFunc reads a variable, reporting whether it is set. os.LookupEnv fits.
type LookupFunc func(key string) (string, bool)

// LibrarySearchPath returns the search path that lets the dynamic linker find
// libmcount: the override directory, then installPath, then existing.
func LibrarySearchPath(libPath, installPath, existing string) (string, error) {
	var parts []string
	if libPath != "" {
		parts = append(parts, filepath.Join(libPath, "libmcount"))
	}
	parts = append(parts, installPath, existing)
	return join(LibrarySearchPathVar, parts...)
}

// PreloadList returns the preload list with the shim library in front of
// existing.
func PreloadList(libPath, existing string) (string, error) {
	shim := ShimName
	if libPath != "" {
		shim = filepath.Join(libPath, "libmcount", ShimName)
	}
	return join(PreloadVar, shim, existing)
}

func join(key string, parts ...string) (string, error) {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(':')
		}
		b.WriteString(p)
	}
	if b.Len() > MaxValueLen {
		return "", fmt.Errorf("%s: %w (%d > %d bytes)", key, ErrValueTooLong, b.Len(), MaxValueLen)
	}
	return b.String(), nil
}

// Overlay is a set of variables to apply over an inherited environment.
type Overlay map[string]string

// Compose builds the overlay injecting libmcount, keeping any value lookup
// reports for the linker variables behind the new entries.
func Compose(libPath, installPath string, lookup LookupFunc) (Overlay, error) {
	oldLibPath, _ := lookup(LibrarySearchPathVar)
	oldPreload, _ := lookup(PreloadVar)

	searchPath, err := LibrarySearchPath(libPath, installPath, oldLibPath)
	if err != nil {
		return nil, err
	}
	preload, err := PreloadList(libPath, oldPreload)
	if err != nil {
		return nil, err
	}

	return Overlay{
		LibrarySearchPathVar: searchPath,
		PreloadVar:           preload,
	}, nil
}

// With returns a copy of o with key set to value.
func (o Overlay) With(key, value string) Overlay {
	out := make(Overlay, len(o)+1)
	for k, v := range o {
		out[k] = v
	}
	out[key] = value
	return out
}

// Apply returns environ with the overlay applied. Overridden entries are
// dropped and the overlay entries appended in key order; environ itself is
// left untouched.
func (o Overlay) Apply(environ []string) []string {
	out := make([]string, 0, len(environ)+len(o))
	for _, kv := range environ {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := o[key]; ok {
			continue
		}
		out = append(out, kv)
	}

	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+o[k])
	}
	return out
}

// Lookup returns a LookupFunc over an environ slice. The last entry for a
// key wins, matching exec.Cmd.
func Lookup(environ []string) LookupFunc {
	return func(key string) (string, bool) {
		val, found := "", false
		for _, kv := range environ {
			k, v, ok := strings.Cut(kv, "=")
			if ok && k == key {
				val, found = v, true
			}
		}
		return val, found
	}
}
