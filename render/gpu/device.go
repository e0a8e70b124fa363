package gpu

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/quillui/quill"
)

// Resources bundles the HAL handles shared by every engine owned by a
// renderer. The device and queue either come from an embedding
// application or are opened here; ownsDevice records which, so Release
// only destroys what this package created.
type Resources struct {
	Device hal.Device
	Queue  hal.Queue

	instance    hal.Instance
	adapterName string
	ownsDevice  bool
}

// AdapterName returns the name of the selected adapter, or "" when the
// device was supplied externally.
func (r *Resources) AdapterName() string { return r.adapterName }

// openDevice enumerates Vulkan adapters and opens the best real GPU.
// Software adapters are rejected outright: a llvmpipe-style device is
// slower than the CPU backend and hides the absence of hardware.
func openDevice() (*Resources, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, ErrNoBackend
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		for i := range adapters {
			if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
				selected = &adapters[i]
				break
			}
		}
	}
	if selected == nil {
		instance.Destroy()
		return nil, ErrCPUAdapterOnly
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open adapter %q: %w", selected.Info.Name, err)
	}

	quill.Logger().Debug("gpu: device opened",
		slog.String("adapter", selected.Info.Name))

	return &Resources{
		Device:      openDev.Device,
		Queue:       openDev.Queue,
		instance:    instance,
		adapterName: selected.Info.Name,
		ownsDevice:  true,
	}, nil
}

// resourcesFromProvider extracts HAL handles from an embedding
// application's device provider, typically a gpucontext.DeviceProvider
// that also implements gpucontext.HalProvider. Providers from other
// stacks work too as long as they expose the same HalDevice() any and
// HalQueue() any accessors returning hal.Device and hal.Queue.
func resourcesFromProvider(provider any) (*Resources, error) {
	hp, ok := provider.(gpucontext.HalProvider)
	if !ok {
		return nil, fmt.Errorf("gpu: provider %T does not expose HAL handles", provider)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}
	return &Resources{Device: device, Queue: queue}, nil
}

// release destroys the device and instance if this package opened them.
func (r *Resources) release() {
	if !r.ownsDevice {
		return
	}
	if r.Device != nil {
		r.Device.Destroy()
		r.Device = nil
		r.Queue = nil
	}
	if r.instance != nil {
		r.instance.Destroy()
		r.instance = nil
	}
}
