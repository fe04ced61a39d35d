package input

import (
	"sync"

	"github.com/gogpu/gpucontext"
)

const keyWords = 4

// keySet is a fixed bit set of keys. Keys past its range are ignored.
type keySet [keyWords]uint64

func (s *keySet) set(k gpucontext.Key) {
	if i := int(k) / 64; i < keyWords {
		s[i] |= 1 << (uint(k) % 64)
	}
}

func (s *keySet) clear(k gpucontext.Key) {
	if i := int(k) / 64; i < keyWords {
		s[i] &^= 1 << (uint(k) % 64)
	}
}

func (s keySet) has(k gpucontext.Key) bool {
	i := int(k) / 64
	return i < keyWords && s[i]&(1<<(uint(k)%64)) != 0
}

// KeyboardState is an immutable keyboard snapshot.
type KeyboardState struct {
	down     keySet
	pressed  keySet
	released keySet
}

// IsKeyDown reports whether k was down when the snapshot was taken.
func (s KeyboardState) IsKeyDown(k gpucontext.Key) bool { return s.down.has(k) }

// WasPressed reports whether k went down at least once since the
// previous snapshot, even if it was released again before this one.
func (s KeyboardState) WasPressed(k gpucontext.Key) bool { return s.pressed.has(k) }

// WasReleased reports whether k went up since the previous snapshot.
func (s KeyboardState) WasReleased(k gpucontext.Key) bool { return s.released.has(k) }

// Keyboard accumulates key events between snapshots.
//
// Events may arrive on the platform thread while snapshots are taken on
// the render thread, so the state is guarded.
type Keyboard struct {
	mu       sync.Mutex
	down     keySet
	pressed  keySet
	released keySet
}

// NewKeyboard returns a keyboard with no keys down.
func NewKeyboard() *Keyboard {
	return &Keyboard{}
}

// Attach subscribes to key events from src.
func (k *Keyboard) Attach(src gpucontext.EventSource) {
	if src == nil {
		return
	}
	src.OnKeyPress(func(key gpucontext.Key, _ gpucontext.Modifiers) { k.Press(key) })
	src.OnKeyRelease(func(key gpucontext.Key, _ gpucontext.Modifiers) { k.Release(key) })
}

// Press records key going down. Auto-repeat presses of a key that is
// already down are not new presses.
func (k *Keyboard) Press(key gpucontext.Key) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.down.has(key) {
		return
	}
	k.down.set(key)
	k.pressed.set(key)
}

// Release records key going up.
func (k *Keyboard) Release(key gpucontext.Key) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.down.has(key) {
		return
	}
	k.down.clear(key)
	k.released.set(key)
}

// IsKeyDown reports the live level of key without consuming edges.
func (k *Keyboard) IsKeyDown(key gpucontext.Key) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.down.has(key)
}

// Snapshot returns the current state and clears the accumulated edges.
func (k *Keyboard) Snapshot() KeyboardState {
	k.mu.Lock()
	defer k.mu.Unlock()
	s := KeyboardState{down: k.down, pressed: k.pressed, released: k.released}
	k.pressed = keySet{}
	k.released = keySet{}
	return s
}

// Reset drops every key. Hosts call it when the window loses focus since
// releases are not delivered to an inactive window.
func (k *Keyboard) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.down = keySet{}
	k.pressed = keySet{}
	k.released = keySet{}
}
