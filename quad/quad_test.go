package quad

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/samples/imageload"
	"github.com/gogpu/samples/media"
	"github.com/gogpu/samples/scene"
)

func openNoop(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	inst, err := noop.API{}.CreateInstance(&hal.InstanceDescriptor{})
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	open, err := inst.EnumerateAdapters(nil)[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(open.Device.Destroy)
	return open.Device, open.Queue
}

func testImage(w, h int) *imageload.Image {
	return &imageload.Image{Width: w, Height: h, Stride: w * 4, Pix: make([]byte, w*h*4), Source: "NRGBA"}
}

// recordingPass records the draw calls of one pass.
type recordingPass struct {
	hal.RenderPassEncoder
	calls       []string
	indexFormat gputypes.IndexFormat
	indexCount  uint32
}

func (p *recordingPass) SetPipeline(hal.RenderPipeline) { p.calls = append(p.calls, "pipeline") }

func (p *recordingPass) SetBindGroup(uint32, hal.BindGroup, []uint32) {
	p.calls = append(p.calls, "bind")
}

func (p *recordingPass) SetVertexBuffer(uint32, hal.Buffer, uint64) {
	p.calls = append(p.calls, "vertex")
}

func (p *recordingPass) SetIndexBuffer(_ hal.Buffer, f gputypes.IndexFormat, _ uint64) {
	p.calls = append(p.calls, "index")
	p.indexFormat = f
}

func (p *recordingPass) DrawIndexed(count, _, _ uint32, _ int32, _ uint32) {
	p.calls = append(p.calls, "draw")
	p.indexCount = count
}

func TestQuadData(t *testing.T) {
	v := Vertices()
	if v[0].Position != [4]float32{-0.5, -0.5, 0.5, 1} || v[0].TexCoord != [2]float32{0, 1} {
		t.Errorf("vertex 0 = %+v", v[0])
	}
	if v[2].Position != [4]float32{0.5, 0.5, 0.5, 1} || v[2].TexCoord != [2]float32{1, 0} {
		t.Errorf("vertex 2 = %+v", v[2])
	}
	if got := Indices(); got != [IndexCount]uint16{3, 1, 0, 2, 1, 3} {
		t.Errorf("indices = %v", got)
	}

	v[0].Position[0] = 9
	if Vertices()[0].Position[0] != -0.5 {
		t.Error("Vertices returned shared storage")
	}
}

func TestVertexBytes(t *testing.T) {
	b := VertexBytes()
	if len(b) != 4*VertexStride {
		t.Fatalf("len = %d, want %d", len(b), 4*VertexStride)
	}
	// Vertex 1 texcoord.u sits at offset 24+16.
	u := math.Float32frombits(binary.LittleEndian.Uint32(b[VertexStride+16:]))
	if u != 1 {
		t.Errorf("vertex 1 u = %v, want 1", u)
	}
	z := math.Float32frombits(binary.LittleEndian.Uint32(b[3*VertexStride+8:]))
	if z != 0.5 {
		t.Errorf("vertex 3 z = %v, want 0.5", z)
	}
}

func TestIndexBytes(t *testing.T) {
	b := IndexBytes()
	if len(b) != 12 {
		t.Fatalf("len = %d, want 12", len(b))
	}
	if binary.LittleEndian.Uint16(b[0:]) != 3 || binary.LittleEndian.Uint16(b[10:]) != 3 {
		t.Errorf("bytes = %v", b)
	}
}

func TestVertexLayout(t *testing.T) {
	l := VertexLayout()
	if len(l) != 1 || l[0].ArrayStride != VertexStride {
		t.Fatalf("layout = %+v", l)
	}
	attrs := l[0].Attributes
	if len(attrs) != 2 {
		t.Fatalf("attributes = %d", len(attrs))
	}
	if attrs[0].Format != gputypes.VertexFormatFloat32x4 || attrs[0].Offset != 0 {
		t.Errorf("position attribute = %+v", attrs[0])
	}
	if attrs[1].Format != gputypes.VertexFormatFloat32x2 || attrs[1].Offset != 16 || attrs[1].ShaderLocation != 1 {
		t.Errorf("texcoord attribute = %+v", attrs[1])
	}
}

func TestShaderSourceContent(t *testing.T) {
	src := ShaderSource()
	for _, want := range []string{
		"@vertex",
		"@fragment",
		"vs_main",
		"fs_main",
		"texture_2d<f32>",
		"@group(0) @binding(0)",
		"@group(0) @binding(1)",
		"textureSample",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("shader missing %q", want)
		}
	}
}

func TestCompileShader(t *testing.T) {
	words, err := CompileShader(ShaderSource())
	if err != nil {
		t.Fatalf("CompileShader: %v", err)
	}
	if len(words) == 0 {
		t.Fatal("empty SPIR-V")
	}
	const spirvMagic = 0x07230203
	if words[0] != spirvMagic {
		t.Errorf("magic = %#x, want %#x", words[0], spirvMagic)
	}
}

func TestCompileShaderInvalid(t *testing.T) {
	if _, err := CompileShader("fn broken( {"); err == nil {
		t.Error("expected error for invalid WGSL")
	}
}

func TestLoadShaderSource(t *testing.T) {
	dir := t.TempDir()
	f := media.NewFinder(media.WithoutDefaultRoots(), media.WithRoots(dir), media.WithMaxAscent(0))

	src, err := LoadShaderSource(f)
	if err != nil {
		t.Fatalf("LoadShaderSource: %v", err)
	}
	if src != ShaderSource() {
		t.Error("expected embedded shader without override")
	}

	override := "// override\n" + ShaderSource()
	if err := os.WriteFile(filepath.Join(dir, ShaderName), []byte(override), 0o600); err != nil {
		t.Fatal(err)
	}
	src, err = LoadShaderSource(f)
	if err != nil {
		t.Fatalf("LoadShaderSource: %v", err)
	}
	if src != override {
		t.Error("override not used")
	}
}

func TestNewRenderer(t *testing.T) {
	tests := []struct {
		name      string
		depth     gputypes.TextureFormat
		wantDepth string
	}{
		{"depth", gputypes.TextureFormatDepth32Float, "depth:" + gputypes.TextureFormatDepth32Float.String()},
		{"no depth", gputypes.TextureFormatUndefined, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, q := openNoop(t)
			set := scene.NewSet(dev, 1)
			_, err := NewRenderer(set, q, Config{
				ColorFormat: gputypes.TextureFormatBGRA8UnormSrgb,
				DepthFormat: tt.depth,
			})
			if err != nil {
				t.Fatalf("NewRenderer: %v", err)
			}

			wantKinds := []scene.Kind{
				scene.KindShader,
				scene.KindBindGroupLayout,
				scene.KindPipelineLayout,
				scene.KindPipeline,
				scene.KindVertexBuffer,
				scene.KindIndexBuffer,
				scene.KindSampler,
			}
			descs := set.Descriptors()
			if len(descs) != len(wantKinds) {
				t.Fatalf("descriptors = %d, want %d", len(descs), len(wantKinds))
			}
			for i, k := range wantKinds {
				if descs[i].Kind != k {
					t.Errorf("descriptor %d kind = %v, want %v", i, descs[i].Kind, k)
				}
			}
			pipe := descs[3]
			if pipe.Format != gputypes.TextureFormatBGRA8UnormSrgb || pipe.Count != 2 || pipe.Detail != tt.wantDepth {
				t.Errorf("pipeline descriptor = %+v", pipe)
			}
			if descs[4].Size != 4*VertexStride || descs[5].Size != 12 {
				t.Errorf("buffer sizes = %d/%d", descs[4].Size, descs[5].Size)
			}
		})
	}
}

func TestNewRendererBadShader(t *testing.T) {
	dev, q := openNoop(t)
	set := scene.NewSet(dev, 1)
	if _, err := NewRenderer(set, q, Config{ShaderSource: "not wgsl"}); err == nil {
		t.Fatal("expected compile error")
	}
	if set.Len() != 0 {
		t.Errorf("set holds %d resources after failure", set.Len())
	}
}

func TestTextureAndDraw(t *testing.T) {
	dev, q := openNoop(t)
	set := scene.NewSet(dev, 1)
	r, err := NewRenderer(set, q, Config{ColorFormat: gputypes.TextureFormatBGRA8UnormSrgb})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	tex, err := NewTexture(set, q, r, testImage(8, 4), "sea")
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	if w, h := tex.Size(); w != 8 || h != 4 {
		t.Errorf("Size = %dx%d", w, h)
	}
	if set.Count(scene.KindTexture) != 1 || set.Count(scene.KindTextureView) != 1 || set.Count(scene.KindBindGroup) != 1 {
		t.Errorf("texture resources missing: %+v", set.Descriptors())
	}

	pass := &recordingPass{}
	r.Draw(pass, tex)
	want := "pipeline,bind,vertex,index,draw"
	if got := strings.Join(pass.calls, ","); got != want {
		t.Errorf("calls = %s, want %s", got, want)
	}
	if pass.indexCount != IndexCount || pass.indexFormat != gputypes.IndexFormatUint16 {
		t.Errorf("draw = %d indices, format %v", pass.indexCount, pass.indexFormat)
	}
}

func TestTextureErrors(t *testing.T) {
	dev, q := openNoop(t)
	set := scene.NewSet(dev, 1)
	r, err := NewRenderer(set, q, Config{ColorFormat: gputypes.TextureFormatBGRA8UnormSrgb})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	if _, err := NewTexture(set, q, r, &imageload.Image{}, "empty"); !errors.Is(err, imageload.ErrEmpty) {
		t.Errorf("empty image error = %v", err)
	}

	tex, err := NewTexture(set, q, r, testImage(4, 4), "panel")
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	if err := tex.Update(q, testImage(4, 4)); err != nil {
		t.Errorf("Update same size: %v", err)
	}
	if err := tex.Update(q, testImage(5, 4)); !errors.Is(err, ErrTextureSize) {
		t.Errorf("Update other size = %v, want ErrTextureSize", err)
	}
}
