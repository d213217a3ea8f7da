package geometry

import (
	"image"
	"testing"
)

func TestNewBoxOrdersCoordinates(t *testing.T) {
	b := NewBox(10, 20, 0, 5)
	if b.MinX != 0 || b.MinY != 5 || b.MaxX != 10 || b.MaxY != 20 {
		t.Fatalf("unexpected box: %+v", b)
	}
}

func TestBoundingBox(t *testing.T) {
	pts := []Point{{X: 3, Y: 7}, {X: -1, Y: 2}, {X: 5, Y: 4}}
	b := BoundingBox(pts)
	if b.MinX != -1 || b.MinY != 2 || b.MaxX != 5 || b.MaxY != 7 {
		t.Fatalf("unexpected bounding box: %+v", b)
	}
	if got := BoundingBox(nil); got != (Box{}) {
		t.Fatalf("expected zero box for empty input, got %+v", got)
	}
}

func TestIoUIdentity(t *testing.T) {
	b := NewBox(0, 0, 10, 10)
	if got := IoU(b, b); got != 1.0 {
		t.Fatalf("IoU(box, box) = %v, want 1.0", got)
	}
}

func TestIoUDisjoint(t *testing.T) {
	a := NewBox(0, 0, 10, 10)
	b := NewBox(20, 20, 30, 30)
	if got := IoU(a, b); got != 0.0 {
		t.Fatalf("IoU of disjoint boxes = %v, want 0.0", got)
	}
}

func TestIoUSymmetric(t *testing.T) {
	a := NewBox(0, 0, 10, 10)
	b := NewBox(5, 5, 15, 15)
	if IoU(a, b) != IoU(b, a) {
		t.Fatalf("IoU is not symmetric: %v vs %v", IoU(a, b), IoU(b, a))
	}
	if IoU(a, b) <= 0 || IoU(a, b) >= 1 {
		t.Fatalf("partial overlap should be in (0,1), got %v", IoU(a, b))
	}
}

func TestIoUDegenerateBox(t *testing.T) {
	a := NewBox(0, 0, 10, 10)
	degenerate := NewBox(5, 5, 5, 5)
	if got := IoU(a, degenerate); got != 0.0 {
		t.Fatalf("IoU with zero-area box = %v, want 0.0", got)
	}
	if got := IoU(degenerate, degenerate); got != 0.0 {
		t.Fatalf("IoU of two zero-area boxes = %v, want 0.0", got)
	}
}

func TestBoxToRectClamps(t *testing.T) {
	b := NewBox(-5, -5, 120, 40)
	r := b.ToRect(image.Rect(0, 0, 100, 30))
	if r != image.Rect(0, 0, 100, 30) {
		t.Fatalf("unexpected clamped rect: %v", r)
	}
}
