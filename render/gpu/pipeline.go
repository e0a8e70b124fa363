package gpu

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/quillui/quill"
)

//go:embed shaders/quill.wgsl
var shaderSource string

// uniformSize is viewport (vec2<f32>) plus padding to 16 bytes.
const uniformSize = 16

// pipelineKit holds the GPU objects shared by both engines: the shader,
// layouts, sampler, a white placeholder texture for untextured batches,
// and one render pipeline per target format.
type pipelineKit struct {
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	sampler    hal.Sampler

	whiteTex  hal.Texture
	whiteView hal.TextureView

	pipelines map[gputypes.TextureFormat]hal.RenderPipeline
}

func newPipelineKit(res *Resources) (*pipelineKit, error) {
	k := &pipelineKit{pipelines: make(map[gputypes.TextureFormat]hal.RenderPipeline)}
	device := res.Device

	shader, err := createShader(device, "quill_shader", shaderSource)
	if err != nil {
		return nil, err
	}
	k.shader = shader

	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "quill_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    3,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    4,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		k.destroy(device)
		return nil, fmt.Errorf("gpu: create bind group layout: %w", err)
	}
	k.bindLayout = bindLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "quill_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		k.destroy(device)
		return nil, fmt.Errorf("gpu: create pipeline layout: %w", err)
	}
	k.pipeLayout = pipeLayout

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "quill_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		k.destroy(device)
		return nil, fmt.Errorf("gpu: create sampler: %w", err)
	}
	k.sampler = sampler

	if err := k.createWhiteTexture(res); err != nil {
		k.destroy(device)
		return nil, err
	}
	return k, nil
}

// createShader compiles WGSL to SPIR-V via naga, falling back to raw
// WGSL when the compiler cannot handle the source.
func createShader(device hal.Device, label, source string) (hal.ShaderModule, error) {
	spirvBytes, err := naga.Compile(source)
	if err == nil {
		spirv := make([]uint32, len(spirvBytes)/4)
		for i := range spirv {
			spirv[i] = uint32(spirvBytes[i*4]) |
				uint32(spirvBytes[i*4+1])<<8 |
				uint32(spirvBytes[i*4+2])<<16 |
				uint32(spirvBytes[i*4+3])<<24
		}
		return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  label,
			Source: hal.ShaderSource{SPIRV: spirv},
		})
	}
	quill.Logger().Debug("gpu: naga compile failed, passing wgsl source",
		slog.String("error", err.Error()))
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: source},
	})
}

// createWhiteTexture makes the 1x1 RGBA texture bound to the image slot
// when a batch has no texture.
func (k *pipelineKit) createWhiteTexture(res *Resources) error {
	tex, err := res.Device.CreateTexture(&hal.TextureDescriptor{
		Label: "quill_white",
		Size: hal.Extent3D{
			Width:              1,
			Height:             1,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create white texture: %w", err)
	}
	view, err := res.Device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "quill_white_view",
	})
	if err != nil {
		res.Device.DestroyTexture(tex)
		return fmt.Errorf("gpu: create white view: %w", err)
	}
	res.Queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: 0, Y: 0, Z: 0},
			Aspect:   gputypes.TextureAspectAll,
		},
		[]byte{0xFF, 0xFF, 0xFF, 0xFF},
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: 4, RowsPerImage: 1},
		&hal.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
	)
	k.whiteTex = tex
	k.whiteView = view
	return nil
}

// pipelineFor returns the multisampled render pipeline targeting the
// given format, creating and caching it on first use.
func (k *pipelineKit) pipelineFor(device hal.Device, format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	if p, ok := k.pipelines[format]; ok {
		return p, nil
	}
	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "quill_pipeline",
		Layout: k.pipeLayout,
		Vertex: hal.VertexState{
			Module:     k.shader,
			EntryPoint: "vs_main",
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     k.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create render pipeline: %w", err)
	}
	k.pipelines[format] = pipeline
	return pipeline, nil
}

func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: vertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},   // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},   // uv
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},  // shape params
				{Format: gputypes.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3},  // kind, param, grad_kind, blur
				{Format: gputypes.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 4},  // color0
				{Format: gputypes.VertexFormatFloat32x4, Offset: 64, ShaderLocation: 5},  // color1
				{Format: gputypes.VertexFormatFloat32x4, Offset: 80, ShaderLocation: 6},  // gradient geometry
				{Format: gputypes.VertexFormatFloat32x4, Offset: 96, ShaderLocation: 7},  // scissor rect
				{Format: gputypes.VertexFormatFloat32x4, Offset: 112, ShaderLocation: 8}, // scissor corner radii
			},
		},
	}
}

// bindGroupFor creates the per-draw bind group. tex may be nil for
// untextured batches.
func (k *pipelineKit) bindGroupFor(device hal.Device, uniformBuf hal.Buffer, glyphView, maskView, tex hal.TextureView) (hal.BindGroup, error) {
	if tex == nil {
		tex = k.whiteView
	}
	return device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "quill_bind",
		Layout: k.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: uniformSize}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: glyphView.NativeHandle()}},
			{Binding: 2, Resource: gputypes.TextureViewBinding{TextureView: maskView.NativeHandle()}},
			{Binding: 3, Resource: gputypes.TextureViewBinding{TextureView: tex.NativeHandle()}},
			{Binding: 4, Resource: gputypes.SamplerBinding{Sampler: k.sampler.NativeHandle()}},
		},
	})
}

func (k *pipelineKit) destroy(device hal.Device) {
	for format, p := range k.pipelines {
		device.DestroyRenderPipeline(p)
		delete(k.pipelines, format)
	}
	if k.whiteView != nil {
		device.DestroyTextureView(k.whiteView)
		k.whiteView = nil
	}
	if k.whiteTex != nil {
		device.DestroyTexture(k.whiteTex)
		k.whiteTex = nil
	}
	if k.sampler != nil {
		device.DestroySampler(k.sampler)
		k.sampler = nil
	}
	if k.pipeLayout != nil {
		device.DestroyPipelineLayout(k.pipeLayout)
		k.pipeLayout = nil
	}
	if k.bindLayout != nil {
		device.DestroyBindGroupLayout(k.bindLayout)
		k.bindLayout = nil
	}
	if k.shader != nil {
		device.DestroyShaderModule(k.shader)
		k.shader = nil
	}
}
