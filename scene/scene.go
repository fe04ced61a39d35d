// Package scene tracks the device-dependent GPU objects of a sample.
//
// Every object is created through a Set, which records a comparable
// Descriptor for it and destroys everything in reverse creation order on
// Release. A Set belongs to one device generation: after a device loss the
// old set is released and a new one is built against the new device.
package scene

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/samples"
)

// ErrReleased is returned when a released set is used.
var ErrReleased = errors.New("scene: resources released")

// Kind classifies a scene resource.
type Kind uint8

// Resource kinds.
const (
	KindShader Kind = iota + 1
	KindBindGroupLayout
	KindPipelineLayout
	KindPipeline
	KindVertexBuffer
	KindIndexBuffer
	KindUniformBuffer
	KindSampler
	KindTexture
	KindTextureView
	KindBindGroup
)

var kindNames = map[Kind]string{
	KindShader:          "Shader",
	KindBindGroupLayout: "BindGroupLayout",
	KindPipelineLayout:  "PipelineLayout",
	KindPipeline:        "Pipeline",
	KindVertexBuffer:    "VertexBuffer",
	KindIndexBuffer:     "IndexBuffer",
	KindUniformBuffer:   "UniformBuffer",
	KindSampler:         "Sampler",
	KindTexture:         "Texture",
	KindTextureView:     "TextureView",
	KindBindGroup:       "BindGroup",
}

// String returns the kind name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Descriptor describes a resource's configuration. Two sets built the same
// way have equal descriptor lists.
type Descriptor struct {
	Kind   Kind
	Label  string
	Format gputypes.TextureFormat
	// Size is the byte size of buffers and shader code.
	Size uint64
	// Width and Height are texture dimensions.
	Width, Height uint32
	// Count is the number of bindings, attributes or entries.
	Count int
	// Detail carries kind-specific state such as sampler filtering.
	Detail string
}

type entry struct {
	desc    Descriptor
	destroy func(hal.Device)
}

// Set owns the resources created for one device generation.
type Set struct {
	device     hal.Device
	generation uint64
	entries    []entry
	released   bool
}

// NewSet returns an empty set bound to device.
func NewSet(device hal.Device, generation uint64) *Set {
	return &Set{device: device, generation: generation}
}

// Device returns the device the set creates against.
func (s *Set) Device() hal.Device { return s.device }

// Generation returns the device generation the set was built for.
func (s *Set) Generation() uint64 { return s.generation }

// Len returns the number of live resources.
func (s *Set) Len() int { return len(s.entries) }

// Released reports whether Release was called.
func (s *Set) Released() bool { return s.released }

// Descriptors returns a copy of the descriptors in creation order.
func (s *Set) Descriptors() []Descriptor {
	out := make([]Descriptor, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.desc
	}
	return out
}

// Count returns how many resources of kind k the set holds.
func (s *Set) Count(k Kind) int {
	n := 0
	for _, e := range s.entries {
		if e.desc.Kind == k {
			n++
		}
	}
	return n
}

// Add records an externally created resource. destroy runs on Release.
func (s *Set) Add(d Descriptor, destroy func(hal.Device)) error {
	if s.released {
		return ErrReleased
	}
	s.add(d, destroy)
	return nil
}

// add records a resource created after check succeeded.
func (s *Set) add(d Descriptor, destroy func(hal.Device)) {
	s.entries = append(s.entries, entry{desc: d, destroy: destroy})
}

// Release destroys every resource in reverse creation order. It is safe
// to call more than once.
func (s *Set) Release() {
	if s.released {
		return
	}
	for i := len(s.entries) - 1; i >= 0; i-- {
		if e := s.entries[i]; e.destroy != nil && s.device != nil {
			e.destroy(s.device)
		}
	}
	samples.Logger().Debug("scene: released", "resources", len(s.entries), "generation", s.generation)
	s.entries = nil
	s.released = true
}

// ReleaseMatching destroys the resources match selects, in reverse
// creation order, and keeps the rest. It returns how many were destroyed.
// Samples use it to drop their window-size dependent subset.
func (s *Set) ReleaseMatching(match func(Descriptor) bool) int {
	if s.released {
		return 0
	}
	kept := s.entries[:0:0]
	removed := 0
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if match(e.desc) {
			if e.destroy != nil && s.device != nil {
				e.destroy(s.device)
			}
			removed++
		}
	}
	for _, e := range s.entries {
		if !match(e.desc) {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return removed
}

func (s *Set) check() error {
	if s.released {
		return ErrReleased
	}
	if s.device == nil {
		return fmt.Errorf("scene: nil device")
	}
	return nil
}
