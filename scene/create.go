package scene

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Shader creates a shader module from WGSL and its SPIR-V compilation.
func (s *Set) Shader(label, wgsl string, spirv []uint32) (hal.ShaderModule, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	m, err := s.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: wgsl, SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("scene: shader %s: %w", label, err)
	}
	s.add(Descriptor{Kind: KindShader, Label: label, Size: uint64(len(spirv) * 4)},
		func(d hal.Device) { d.DestroyShaderModule(m) })
	return m, nil
}

// BindGroupLayout creates a bind group layout.
func (s *Set) BindGroupLayout(desc *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	l, err := s.device.CreateBindGroupLayout(desc)
	if err != nil {
		return nil, fmt.Errorf("scene: bind group layout %s: %w", desc.Label, err)
	}
	s.add(Descriptor{Kind: KindBindGroupLayout, Label: desc.Label, Count: len(desc.Entries), Detail: layoutDetail(desc.Entries)},
		func(d hal.Device) { d.DestroyBindGroupLayout(l) })
	return l, nil
}

func layoutDetail(entries []gputypes.BindGroupLayoutEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		kind := "?"
		switch {
		case e.Buffer != nil:
			kind = "buffer"
		case e.Sampler != nil:
			kind = "sampler"
		case e.Texture != nil:
			kind = "texture"
		case e.StorageTexture != nil:
			kind = "storage"
		}
		parts = append(parts, fmt.Sprintf("%d:%s", e.Binding, kind))
	}
	return strings.Join(parts, ",")
}

// PipelineLayout creates a pipeline layout.
func (s *Set) PipelineLayout(desc *hal.PipelineLayoutDescriptor) (hal.PipelineLayout, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	l, err := s.device.CreatePipelineLayout(desc)
	if err != nil {
		return nil, fmt.Errorf("scene: pipeline layout %s: %w", desc.Label, err)
	}
	s.add(Descriptor{Kind: KindPipelineLayout, Label: desc.Label, Count: len(desc.BindGroupLayouts)},
		func(d hal.Device) { d.DestroyPipelineLayout(l) })
	return l, nil
}

// RenderPipeline creates a render pipeline. The descriptor records the
// first color target format and the vertex attribute count.
func (s *Set) RenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	p, err := s.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("scene: render pipeline %s: %w", desc.Label, err)
	}
	d := Descriptor{Kind: KindPipeline, Label: desc.Label}
	for _, b := range desc.Vertex.Buffers {
		d.Count += len(b.Attributes)
	}
	if desc.Fragment != nil && len(desc.Fragment.Targets) > 0 {
		d.Format = desc.Fragment.Targets[0].Format
	}
	if desc.DepthStencil != nil {
		d.Detail = "depth:" + desc.DepthStencil.Format.String()
	}
	s.add(d, func(dev hal.Device) { dev.DestroyRenderPipeline(p) })
	return p, nil
}

// Buffer creates a buffer and, when data is non-empty, uploads it through
// queue. kind must be one of the buffer kinds.
func (s *Set) Buffer(kind Kind, queue hal.Queue, desc *hal.BufferDescriptor, data []byte) (hal.Buffer, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	b, err := s.device.CreateBuffer(desc)
	if err != nil {
		return nil, fmt.Errorf("scene: buffer %s: %w", desc.Label, err)
	}
	if len(data) > 0 {
		if err := queue.WriteBuffer(b, 0, data); err != nil {
			s.device.DestroyBuffer(b)
			return nil, fmt.Errorf("scene: upload buffer %s: %w", desc.Label, err)
		}
	}
	s.add(Descriptor{Kind: kind, Label: desc.Label, Size: desc.Size},
		func(d hal.Device) { d.DestroyBuffer(b) })
	return b, nil
}

// Sampler creates a sampler.
func (s *Set) Sampler(desc *hal.SamplerDescriptor) (hal.Sampler, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	smp, err := s.device.CreateSampler(desc)
	if err != nil {
		return nil, fmt.Errorf("scene: sampler %s: %w", desc.Label, err)
	}
	detail := fmt.Sprintf("min=%s mag=%s mip=%s u=%s v=%s w=%s",
		desc.MinFilter, desc.MagFilter, desc.MipmapFilter,
		desc.AddressModeU, desc.AddressModeV, desc.AddressModeW)
	s.add(Descriptor{Kind: KindSampler, Label: desc.Label, Detail: detail},
		func(d hal.Device) { d.DestroySampler(smp) })
	return smp, nil
}

// Texture creates a texture and its default 2D view.
func (s *Set) Texture(desc *hal.TextureDescriptor) (hal.Texture, hal.TextureView, error) {
	if err := s.check(); err != nil {
		return nil, nil, err
	}
	tex, err := s.device.CreateTexture(desc)
	if err != nil {
		return nil, nil, fmt.Errorf("scene: texture %s: %w", desc.Label, err)
	}
	s.add(Descriptor{
		Kind:   KindTexture,
		Label:  desc.Label,
		Format: desc.Format,
		Width:  desc.Size.Width,
		Height: desc.Size.Height,
		Count:  int(desc.MipLevelCount),
	}, func(d hal.Device) { d.DestroyTexture(tex) })

	view, err := s.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         desc.Label + "_view",
		Format:        desc.Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: desc.MipLevelCount,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scene: texture view %s: %w", desc.Label, err)
	}
	s.add(Descriptor{Kind: KindTextureView, Label: desc.Label + "_view", Format: desc.Format},
		func(d hal.Device) { d.DestroyTextureView(view) })
	return tex, view, nil
}

// BindGroup creates a bind group.
func (s *Set) BindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	g, err := s.device.CreateBindGroup(desc)
	if err != nil {
		return nil, fmt.Errorf("scene: bind group %s: %w", desc.Label, err)
	}
	s.add(Descriptor{Kind: KindBindGroup, Label: desc.Label, Count: len(desc.Entries)},
		func(d hal.Device) { d.DestroyBindGroup(g) })
	return g, nil
}
