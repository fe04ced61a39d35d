package quad

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/samples/imageload"
	"github.com/gogpu/samples/media"
	"github.com/gogpu/samples/scene"
)

// TextureFormat is the format textures are uploaded in.
const TextureFormat = gputypes.TextureFormatBGRA8UnormSrgb

// ErrTextureSize is returned when Update gets an image of another size.
var ErrTextureSize = errors.New("quad: texture size mismatch")

// Config selects the render target formats a Renderer draws into.
type Config struct {
	// ColorFormat is the back buffer format.
	ColorFormat gputypes.TextureFormat
	// DepthFormat is the depth buffer format, or TextureFormatUndefined
	// when the pass has no depth attachment.
	DepthFormat gputypes.TextureFormat
	// ShaderSource overrides the embedded WGSL when non-empty.
	ShaderSource string
}

// Renderer owns the pipeline objects shared by every quad texture. All
// of them live in the scene set passed to NewRenderer.
type Renderer struct {
	layout   hal.BindGroupLayout
	pipeline hal.RenderPipeline
	vertices hal.Buffer
	indices  hal.Buffer
	sampler  hal.Sampler
}

// LoadShaderSource returns the WGSL found by f under ShaderName, or the
// embedded source when no override exists.
func LoadShaderSource(f *media.Finder) (string, error) {
	data, err := f.ReadData(ShaderName)
	if errors.Is(err, media.ErrNotFound) {
		return shaderSource, nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NewRenderer creates the shader, layouts, pipeline, quad buffers and
// sampler in set.
func NewRenderer(set *scene.Set, queue hal.Queue, cfg Config) (*Renderer, error) {
	src := cfg.ShaderSource
	if src == "" {
		src = shaderSource
	}
	spirv, err := CompileShader(src)
	if err != nil {
		return nil, err
	}
	shader, err := set.Shader("quad_shader", src, spirv)
	if err != nil {
		return nil, err
	}

	// Bind group layout:
	//   Binding 0: quad texture (texture_2d, fragment)
	//   Binding 1: sampler (fragment)
	layout, err := set.BindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "quad_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	pipeLayout, err := set.PipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "quad_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{layout},
	})
	if err != nil {
		return nil, err
	}

	desc := &hal.RenderPipelineDescriptor{
		Label:  "quad_pipeline",
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    VertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    cfg.ColorFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	if cfg.DepthFormat != gputypes.TextureFormatUndefined {
		desc.DepthStencil = &hal.DepthStencilState{
			Format:            cfg.DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionLess,
			StencilReadMask:   0xFFFFFFFF,
			StencilWriteMask:  0xFFFFFFFF,
		}
	}
	pipeline, err := set.RenderPipeline(desc)
	if err != nil {
		return nil, err
	}

	vb := VertexBytes()
	vertices, err := set.Buffer(scene.KindVertexBuffer, queue, &hal.BufferDescriptor{
		Label: "quad_vertices",
		Size:  uint64(len(vb)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	}, vb)
	if err != nil {
		return nil, err
	}

	ib := IndexBytes()
	indices, err := set.Buffer(scene.KindIndexBuffer, queue, &hal.BufferDescriptor{
		Label: "quad_indices",
		Size:  uint64(len(ib)),
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	}, ib)
	if err != nil {
		return nil, err
	}

	sampler, err := set.Sampler(&hal.SamplerDescriptor{
		Label:        "quad_sampler",
		AddressModeU: gputypes.AddressModeRepeat,
		AddressModeV: gputypes.AddressModeRepeat,
		AddressModeW: gputypes.AddressModeRepeat,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
		LodMaxClamp:  math.MaxFloat32,
		Compare:      gputypes.CompareFunctionNever,
		Anisotropy:   1,
	})
	if err != nil {
		return nil, err
	}

	return &Renderer{
		layout:   layout,
		pipeline: pipeline,
		vertices: vertices,
		indices:  indices,
		sampler:  sampler,
	}, nil
}

// Texture is an uploaded image with the bind group that samples it.
type Texture struct {
	texture       hal.Texture
	view          hal.TextureView
	bindGroup     hal.BindGroup
	width, height int
}

// NewTexture uploads img into set and binds it with r's sampler.
func NewTexture(set *scene.Set, queue hal.Queue, r *Renderer, img *imageload.Image, label string) (*Texture, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("quad: texture %s: %w", label, imageload.ErrEmpty)
	}
	tex, view, err := set.Texture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(img.Width), Height: uint32(img.Height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        TextureFormat,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	t := &Texture{texture: tex, view: view, width: img.Width, height: img.Height}
	if err := t.Update(queue, img); err != nil {
		return nil, err
	}

	t.bindGroup, err = set.BindGroup(&hal.BindGroupDescriptor{
		Label:  label + "_bind_group",
		Layout: r.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: r.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Update replaces the texture contents with img, which must have the
// texture's size.
func (t *Texture) Update(queue hal.Queue, img *imageload.Image) error {
	if img.Width != t.width || img.Height != t.height {
		return fmt.Errorf("%w: %dx%d into %dx%d", ErrTextureSize, img.Width, img.Height, t.width, t.height)
	}
	err := queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.texture, Aspect: gputypes.TextureAspectAll},
		img.Pix,
		&hal.ImageDataLayout{BytesPerRow: uint32(img.Stride), RowsPerImage: uint32(img.Height)},
		&hal.Extent3D{Width: uint32(img.Width), Height: uint32(img.Height), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("quad: upload texture: %w", err)
	}
	return nil
}

// Size returns the texture dimensions.
func (t *Texture) Size() (width, height int) { return t.width, t.height }

// Draw records the quad textured with tex into pass.
func (r *Renderer) Draw(pass hal.RenderPassEncoder, tex *Texture) {
	pass.SetPipeline(r.pipeline)
	pass.SetBindGroup(0, tex.bindGroup, nil)
	pass.SetVertexBuffer(0, r.vertices, 0)
	pass.SetIndexBuffer(r.indices, gputypes.IndexFormatUint16, 0)
	pass.DrawIndexed(IndexCount, 1, 0, 0, 0)
}
