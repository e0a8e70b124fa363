package gpu

import (
	"image"
	"testing"
)

func newTestAtlas(t *testing.T, size int) *alphaAtlas {
	t.Helper()
	device, _, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)

	atlas, err := newAlphaAtlas(device, "test_atlas", size)
	if err != nil {
		t.Fatalf("newAlphaAtlas: %v", err)
	}
	t.Cleanup(func() { atlas.destroy(device) })
	return atlas
}

func TestAtlasAllocateOnShelf(t *testing.T) {
	atlas := newTestAtlas(t, 64)

	a, ok := atlas.allocate(10, 10)
	if !ok {
		t.Fatal("first allocation failed")
	}
	if a.x != 0 || a.y != 0 {
		t.Errorf("first region at (%d,%d), want origin", a.x, a.y)
	}

	// Same height packs onto the same shelf with padding between.
	b, ok := atlas.allocate(10, 10)
	if !ok {
		t.Fatal("second allocation failed")
	}
	if b.y != 0 {
		t.Errorf("second region y = %d, want same shelf", b.y)
	}
	if b.x <= a.x+a.width-1 {
		t.Errorf("second region x = %d overlaps first ending at %d", b.x, a.x+a.width)
	}
}

func TestAtlasNewShelfForTallRegion(t *testing.T) {
	atlas := newTestAtlas(t, 64)

	atlas.allocate(10, 10)
	tall, ok := atlas.allocate(10, 30)
	if !ok {
		t.Fatal("tall allocation failed")
	}
	if tall.y == 0 {
		t.Error("taller region should open a new shelf")
	}
}

func TestAtlasFull(t *testing.T) {
	atlas := newTestAtlas(t, 32)

	if _, ok := atlas.allocate(40, 8); ok {
		t.Error("region wider than the atlas should fail")
	}

	// Fill the atlas with full-width shelves until it runs out.
	allocs := 0
	for {
		if _, ok := atlas.allocate(30, 10); !ok {
			break
		}
		allocs++
		if allocs > 10 {
			t.Fatal("atlas never reported full")
		}
	}
	if allocs == 0 {
		t.Fatal("no allocations succeeded")
	}

	// reset reclaims the space.
	atlas.reset()
	if _, ok := atlas.allocate(30, 10); !ok {
		t.Error("allocation after reset failed")
	}
}

func TestAtlasRejectsDegenerate(t *testing.T) {
	atlas := newTestAtlas(t, 64)
	if _, ok := atlas.allocate(0, 5); ok {
		t.Error("zero width should fail")
	}
	if _, ok := atlas.allocate(5, -1); ok {
		t.Error("negative height should fail")
	}
}

func TestAtlasUV(t *testing.T) {
	atlas := newTestAtlas(t, 64)

	region := atlasRegion{x: 16, y: 32, width: 16, height: 8}
	u0, v0, u1, v1 := atlas.uv(region)
	if u0 != 0.25 || v0 != 0.5 || u1 != 0.5 || v1 != 0.625 {
		t.Errorf("uv = (%v,%v,%v,%v), want (0.25,0.5,0.5,0.625)", u0, v0, u1, v1)
	}
}

func TestAtlasRegionValid(t *testing.T) {
	if (atlasRegion{}).valid() {
		t.Error("zero region should be invalid")
	}
	if !(atlasRegion{width: 1, height: 1}).valid() {
		t.Error("1x1 region should be valid")
	}
}

func TestAtlasUpload(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	atlas, err := newAlphaAtlas(device, "test_atlas", 64)
	if err != nil {
		t.Fatalf("newAlphaAtlas: %v", err)
	}
	defer atlas.destroy(device)

	region, ok := atlas.allocate(8, 8)
	if !ok {
		t.Fatal("allocate failed")
	}

	mask := image.NewAlpha(image.Rect(0, 0, 8, 8))
	for i := range mask.Pix {
		mask.Pix[i] = 0xFF
	}
	// Must not panic against the noop queue.
	atlas.upload(queue, region, mask)
}
