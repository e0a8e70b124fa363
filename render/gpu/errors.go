package gpu

import "errors"

var (
	// ErrNoBackend is returned when no usable GPU backend is registered.
	ErrNoBackend = errors.New("gpu: vulkan backend not available")

	// ErrNoAdapter is returned when adapter enumeration comes back empty.
	ErrNoAdapter = errors.New("gpu: no adapters found")

	// ErrCPUAdapterOnly is returned when every enumerated adapter is a
	// software implementation. Construction fails so the caller can fall
	// back to the software renderer instead of paying for a fake GPU.
	ErrCPUAdapterOnly = errors.New("gpu: only cpu adapter found")

	// ErrNoSurface is returned by Finish when no surface was configured
	// and the renderer is not in capture mode.
	ErrNoSurface = errors.New("gpu: renderer has no surface")

	// ErrAtlasFull is returned when an alpha atlas cannot fit a mask.
	ErrAtlasFull = errors.New("gpu: alpha atlas is full")
)
