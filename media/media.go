// Package media locates sample media (textures, fonts, shaders) on disk.
//
// A Finder probes a fixed list of roots and subdirectories, walking up a
// few parent directories from each root, so the samples run from the
// repository, from a build directory or from an installed layout alike.
package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gogpu/samples"
)

// ErrNotFound is returned when no search location holds the file.
var ErrNotFound = errors.New("media: file not found")

// DefaultSubdirs are probed under every root, after the root itself.
var DefaultSubdirs = []string{
	"Media/Textures",
	"Media/Fonts",
	"Media/Shaders",
	"Media",
	"Assets",
}

// DefaultMaxAscent is how many parent directories are tried above a root.
const DefaultMaxAscent = 3

// Finder resolves media names to file paths.
type Finder struct {
	roots     []string
	subdirs   []string
	maxAscent int
}

// Option configures a Finder.
type Option func(*Finder)

// WithRoots puts dirs in front of the default roots.
func WithRoots(dirs ...string) Option {
	return func(f *Finder) {
		f.roots = append(append([]string(nil), dirs...), f.roots...)
	}
}

// WithSubdirs replaces DefaultSubdirs.
func WithSubdirs(dirs ...string) Option {
	return func(f *Finder) { f.subdirs = dirs }
}

// WithMaxAscent sets how many parent directories are tried.
func WithMaxAscent(n int) Option {
	return func(f *Finder) {
		if n >= 0 {
			f.maxAscent = n
		}
	}
}

// WithoutDefaultRoots drops the working and executable directories from
// the search list. Tests use it to keep lookups hermetic.
func WithoutDefaultRoots() Option {
	return func(f *Finder) { f.roots = nil }
}

// NewFinder returns a finder searching the working directory and the
// executable's directory.
func NewFinder(opts ...Option) *Finder {
	f := &Finder{
		subdirs:   DefaultSubdirs,
		maxAscent: DefaultMaxAscent,
	}
	if wd, err := os.Getwd(); err == nil {
		f.roots = append(f.roots, wd)
	}
	if exe, err := os.Executable(); err == nil {
		f.roots = append(f.roots, filepath.Dir(exe))
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Candidates returns every path Find would probe for name, in order.
func (f *Finder) Candidates(name string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, root := range f.roots {
		dir := root
		for up := 0; up <= f.maxAscent; up++ {
			add(filepath.Join(dir, name))
			for _, sub := range f.subdirs {
				add(filepath.Join(dir, sub, name))
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	return out
}

// Find returns the first existing regular file for name. Absolute names
// are checked as is.
func (f *Finder) Find(name string) (string, error) {
	if filepath.IsAbs(name) {
		if isFile(name) {
			return name, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	candidates := f.Candidates(name)
	for _, p := range candidates {
		if isFile(p) {
			samples.Logger().Debug("media: resolved", "name", name, "path", p)
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s (%d locations searched)", ErrNotFound, name, len(candidates))
}

// ReadData finds name and returns its contents.
func (f *Finder) ReadData(name string) ([]byte, error) {
	p, err := f.Find(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("media: read %s: %w", p, err)
	}
	return data, nil
}

func isFile(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}
