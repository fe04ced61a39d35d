// Package quad draws a textured quad: fixed vertex and index data, the
// shader that samples one texture, and the pipeline objects around it.
package quad

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
)

// Embedded quad shader source.
//
//go:embed shaders/quad.wgsl
var shaderSource string

// ShaderName is the media file name that overrides the embedded shader.
const ShaderName = "quad.wgsl"

// Vertex is one quad corner: clip-space position and texture coordinate.
type Vertex struct {
	Position [4]float32
	TexCoord [2]float32
}

// VertexStride is the byte size of a Vertex in the vertex buffer.
// Layout per vertex:
//
//	position (vec4<f32>) = 16 bytes (location 0)
//	texcoord (vec2<f32>) = 8 bytes  (location 1)
const VertexStride = 24

// IndexCount is the number of indices drawn per quad.
const IndexCount = 6

var vertices = [4]Vertex{
	{Position: [4]float32{-0.5, -0.5, 0.5, 1.0}, TexCoord: [2]float32{0, 1}},
	{Position: [4]float32{0.5, -0.5, 0.5, 1.0}, TexCoord: [2]float32{1, 1}},
	{Position: [4]float32{0.5, 0.5, 0.5, 1.0}, TexCoord: [2]float32{1, 0}},
	{Position: [4]float32{-0.5, 0.5, 0.5, 1.0}, TexCoord: [2]float32{0, 0}},
}

var indices = [IndexCount]uint16{
	3, 1, 0,
	2, 1, 3,
}

// Vertices returns a copy of the quad's corners.
func Vertices() [4]Vertex { return vertices }

// Indices returns a copy of the quad's triangle list indices.
func Indices() [IndexCount]uint16 { return indices }

// ShaderSource returns the embedded WGSL.
func ShaderSource() string { return shaderSource }

// VertexBytes returns the vertex data little-endian encoded.
func VertexBytes() []byte {
	buf := make([]byte, 0, len(vertices)*VertexStride)
	for _, v := range vertices {
		for _, f := range v.Position {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
		for _, f := range v.TexCoord {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	return buf
}

// IndexBytes returns the index data little-endian encoded, padded to a
// multiple of four bytes for buffer writes.
func IndexBytes() []byte {
	buf := make([]byte, 0, (len(indices)*2+3)&^3)
	for _, i := range indices {
		buf = binary.LittleEndian.AppendUint16(buf, i)
	}
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

// VertexLayout describes Vertex to the pipeline.
func VertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 16, ShaderLocation: 1}, // texcoord
			},
		},
	}
}

// CompileShader compiles WGSL to SPIR-V words.
func CompileShader(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("quad: compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("quad: compile shader: SPIR-V length %d not word aligned", len(spirvBytes))
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}
