package input

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gpucontext"
)

// ErrUnknownKey is returned by KeyByName for names it does not know.
var ErrUnknownKey = errors.New("input: unknown key")

var keyNames = func() map[string]gpucontext.Key {
	m := map[string]gpucontext.Key{
		"escape":    gpucontext.KeyEscape,
		"tab":       gpucontext.KeyTab,
		"backspace": gpucontext.KeyBackspace,
		"enter":     gpucontext.KeyEnter,
		"space":     gpucontext.KeySpace,
		"left":      gpucontext.KeyLeft,
		"right":     gpucontext.KeyRight,
		"up":        gpucontext.KeyUp,
		"down":      gpucontext.KeyDown,
	}
	for i := range 26 {
		m[string(rune('a'+i))] = gpucontext.KeyA + gpucontext.Key(i)
	}
	for i := range 10 {
		m[string(rune('0'+i))] = gpucontext.Key0 + gpucontext.Key(i)
	}
	for i := range 12 {
		m[fmt.Sprintf("f%d", i+1)] = gpucontext.KeyF1 + gpucontext.Key(i)
	}
	return m
}()

// KeyByName resolves a key name such as "escape", "left", "a", "7" or
// "f3". Names are case-insensitive.
func KeyByName(name string) (gpucontext.Key, error) {
	if k, ok := keyNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return gpucontext.KeyUnknown, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}
