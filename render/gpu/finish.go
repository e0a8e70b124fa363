package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/quillui/quill"
)

// fenceTimeout bounds the wait for frame completion.
const fenceTimeout = 5 * time.Second

// makeUniform builds the 16-byte uniform block: viewport size plus
// padding.
func makeUniform(w, h uint32) []byte {
	buf := make([]byte, uniformSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(float32(w)))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(float32(h)))
	return buf
}

// createBuffer creates a GPU buffer and uploads data.
func createBuffer(res *Resources, label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := res.Device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create %s: %w", label, err)
	}
	res.Queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// frameBuffers is the transient per-frame GPU state shared by the
// surface and capture paths.
type frameBuffers struct {
	uniform    hal.Buffer
	vertices   hal.Buffer
	batches    []drawBatch
	bindGroups []hal.BindGroup
}

func (fb *frameBuffers) destroy(device hal.Device) {
	for _, bg := range fb.bindGroups {
		device.DestroyBindGroup(bg)
	}
	fb.bindGroups = nil
	if fb.vertices != nil {
		device.DestroyBuffer(fb.vertices)
		fb.vertices = nil
	}
	if fb.uniform != nil {
		device.DestroyBuffer(fb.uniform)
		fb.uniform = nil
	}
}

// prepareFrame uploads the uniform and vertex data for an engine.
func (r *Renderer) prepareFrame(e *engine) (*frameBuffers, error) {
	fb := &frameBuffers{}
	uniform, err := createBuffer(r.res, "quill_uniform",
		makeUniform(e.targets.width, e.targets.height),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	fb.uniform = uniform

	vertexData, batches := e.buildFrame()
	if len(vertexData) > 0 {
		vertices, err := createBuffer(r.res, "quill_vertices", vertexData,
			gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
		if err != nil {
			fb.destroy(r.res.Device)
			return nil, err
		}
		fb.vertices = vertices
		fb.batches = batches
	}
	return fb, nil
}

// recordScene encodes the scene pass into the engine's MSAA target.
func (r *Renderer) recordScene(encoder hal.CommandEncoder, e *engine, pipeline hal.RenderPipeline, fb *frameBuffers) error {
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "quill_scene",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       e.targets.msaaView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
	})
	if fb.vertices != nil {
		rp.SetPipeline(pipeline)
		rp.SetVertexBuffer(0, fb.vertices, 0)
		for _, batch := range fb.batches {
			bg, err := r.kit.bindGroupFor(r.res.Device, fb.uniform,
				r.glyphAtlas.view, r.maskAtlas.view, batch.tex)
			if err != nil {
				rp.End()
				return fmt.Errorf("gpu: create bind group: %w", err)
			}
			fb.bindGroups = append(fb.bindGroups, bg)
			rp.SetBindGroup(0, bg, nil)
			rp.Draw(batch.vertexCount, 1, batch.firstVertex, 0)
		}
	}
	rp.End()
	return nil
}

// recordResolve encodes the resolve pass: load the finished MSAA
// content, resolve it into the target and drop the samples.
func recordResolve(encoder hal.CommandEncoder, e *engine, target hal.TextureView) {
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "quill_resolve",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:          e.targets.msaaView,
				ResolveTarget: target,
				LoadOp:        gputypes.LoadOpLoad,
				StoreOp:       gputypes.StoreOpDiscard,
			},
		},
	})
	rp.End()
}

// submitAndWait submits the command buffer and blocks on its fence.
func (r *Renderer) submitAndWait(cmdBuf hal.CommandBuffer) error {
	device := r.res.Device
	fence, err := device.CreateFence()
	if err != nil {
		return fmt.Errorf("gpu: create fence: %w", err)
	}
	defer device.DestroyFence(fence)

	if err := r.res.Queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	signaled, err := device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("gpu: wait for fence: %w", err)
	}
	if !signaled {
		return fmt.Errorf("gpu: fence timed out after %v", fenceTimeout)
	}
	return nil
}

// finishSurface renders the current scene and presents it.
func (r *Renderer) finishSurface(e *engine, callback quill.FrameCallback) error {
	if r.surface == nil {
		return ErrNoSurface
	}
	device := r.res.Device
	w, h := r.targetDims(e)
	format := r.surface.Format()
	if err := e.targets.ensure(device, w, h, format, false); err != nil {
		return err
	}
	pipeline, err := r.kit.pipelineFor(device, format)
	if err != nil {
		return err
	}

	frame, err := r.surface.Acquire()
	if err != nil {
		return fmt.Errorf("gpu: acquire frame: %w", err)
	}
	if frame == nil {
		quill.Logger().Debug("gpu: no frame available, skipping")
		return nil
	}

	fb, err := r.prepareFrame(e)
	if err != nil {
		return err
	}
	defer fb.destroy(device)

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "quill_frame"})
	if err != nil {
		return fmt.Errorf("gpu: create encoder: %w", err)
	}
	if err := encoder.BeginEncoding("quill_frame"); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}

	if err := r.recordScene(encoder, e, pipeline, fb); err != nil {
		encoder.DiscardEncoding()
		return err
	}

	if callback != nil {
		ctx := callback(quill.FrameContext{
			Encoder:    encoder,
			Frame:      frame,
			MSAAView:   e.targets.msaaView,
			TargetView: frame.View(),
		})
		if enc, ok := ctx.Encoder.(hal.CommandEncoder); ok && enc != nil {
			encoder = enc
		}
	}

	recordResolve(encoder, e, frame.View())

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	if err := r.submitAndWait(cmdBuf); err != nil {
		return err
	}
	frame.Present()
	return nil
}
