package mask

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/CliffortMC08/pearlite-analyser/pkg/models"
)

var testPaint = color.NRGBA{R: 220, G: 50, B: 50, A: 178}

func newTestBuffer(t *testing.T, width, height int) *Buffer {
	t.Helper()
	b, err := NewBuffer(width, height, testPaint, 2, 50)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	return b
}

func countMarked(b *Buffer) int {
	img := b.Image()
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			n++
		}
	}
	return n
}

func TestNewBuffer_Validation(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		minR, maxR    int
		wantErr       bool
	}{
		{"valid", 100, 100, 2, 50, false},
		{"zero width", 0, 100, 2, 50, true},
		{"negative height", 100, -1, 2, 50, true},
		{"max below min", 100, 100, 10, 5, true},
		{"zero min radius", 100, 100, 0, 50, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuffer(tt.width, tt.height, testPaint, tt.minR, tt.maxR)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewBuffer error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuffer_StartsUnmarked(t *testing.T) {
	b := newTestBuffer(t, 50, 50)
	if n := countMarked(b); n != 0 {
		t.Errorf("Expected empty buffer, got %d marked pixels", n)
	}
}

func TestBuffer_BrushStampsPaintColor(t *testing.T) {
	b := newTestBuffer(t, 50, 50)

	err := b.Apply(models.Stroke{
		Tool:   models.ToolBrush,
		Radius: 5,
		Points: []models.Point{{X: 25, Y: 25}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	center := b.Image().NRGBAAt(25, 25)
	if center != testPaint {
		t.Errorf("Expected paint colour at stroke centre, got %+v", center)
	}
	// A point outside the disc stays clear
	if got := b.Image().NRGBAAt(25, 31); got.A != 0 {
		t.Errorf("Expected pixel outside brush radius untouched, got %+v", got)
	}
	if countMarked(b) == 0 {
		t.Error("Expected brush stroke to mark pixels")
	}
}

func TestBuffer_SegmentConnectsPoints(t *testing.T) {
	b := newTestBuffer(t, 60, 20)

	err := b.Apply(models.Stroke{
		Tool:   models.ToolBrush,
		Radius: 3,
		Points: []models.Point{{X: 5, Y: 10}, {X: 55, Y: 10}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// Every point along the segment line must be covered
	for x := 5; x <= 55; x++ {
		if b.Image().NRGBAAt(x, 10).A == 0 {
			t.Fatalf("Gap in stroke at x=%d", x)
		}
	}
}

func TestBuffer_EraserRestoresPrePaintState(t *testing.T) {
	b := newTestBuffer(t, 40, 40)

	stroke := models.Stroke{
		Tool:   models.ToolBrush,
		Radius: 8,
		Points: []models.Point{{X: 10, Y: 10}, {X: 30, Y: 30}},
	}
	if err := b.Apply(stroke); err != nil {
		t.Fatalf("Apply brush failed: %v", err)
	}
	if countMarked(b) == 0 {
		t.Fatal("Expected marked pixels after painting")
	}

	erase := stroke
	erase.Tool = models.ToolEraser
	if err := b.Apply(erase); err != nil {
		t.Fatalf("Apply eraser failed: %v", err)
	}

	if n := countMarked(b); n != 0 {
		t.Errorf("Expected eraser over same region to fully clear, %d pixels remain", n)
	}
}

func TestBuffer_Deterministic(t *testing.T) {
	strokes := []models.Stroke{
		{Tool: models.ToolBrush, Radius: 6, Points: []models.Point{{X: 5, Y: 5}, {X: 40, Y: 20}}},
		{Tool: models.ToolEraser, Radius: 4, Points: []models.Point{{X: 20, Y: 12}}},
		{Tool: models.ToolBrush, Radius: 10, Points: []models.Point{{X: 30, Y: 30}}},
	}

	first := newTestBuffer(t, 50, 50)
	second := newTestBuffer(t, 50, 50)
	for _, s := range strokes {
		if err := first.Apply(s); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if err := second.Apply(s); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
	}

	if !bytes.Equal(first.Image().Pix, second.Image().Pix) {
		t.Error("Same stroke list produced different masks")
	}
}

func TestBuffer_RadiusClamping(t *testing.T) {
	b := newTestBuffer(t, 200, 200)

	// Radius above the maximum is clamped to it
	err := b.Apply(models.Stroke{
		Tool:   models.ToolBrush,
		Radius: 500,
		Points: []models.Point{{X: 100, Y: 100}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if b.Image().NRGBAAt(100, 151).A != 0 {
		t.Error("Expected stroke clamped to max radius 50")
	}
	if b.Image().NRGBAAt(100, 149).A == 0 {
		t.Error("Expected pixel within max radius marked")
	}
}

func TestBuffer_StrokesClippedAtEdges(t *testing.T) {
	b := newTestBuffer(t, 20, 20)

	// Stamping near the corner must not panic and must stay in bounds
	err := b.Apply(models.Stroke{
		Tool:   models.ToolBrush,
		Radius: 10,
		Points: []models.Point{{X: 0, Y: 0}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if b.Image().NRGBAAt(0, 0).A == 0 {
		t.Error("Expected corner pixel marked")
	}
}

func TestBuffer_InvalidStrokes(t *testing.T) {
	b := newTestBuffer(t, 20, 20)

	if err := b.Apply(models.Stroke{Tool: "spray", Radius: 3, Points: []models.Point{{X: 1, Y: 1}}}); err == nil {
		t.Error("Expected error for unknown tool")
	}
	if err := b.Apply(models.Stroke{Tool: models.ToolBrush, Radius: 3}); err == nil {
		t.Error("Expected error for stroke without points")
	}
}

func TestBuffer_Clear(t *testing.T) {
	b := newTestBuffer(t, 30, 30)
	if err := b.Apply(models.Stroke{
		Tool:   models.ToolBrush,
		Radius: 10,
		Points: []models.Point{{X: 15, Y: 15}},
	}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	b.Clear()
	if n := countMarked(b); n != 0 {
		t.Errorf("Expected cleared buffer, got %d marked pixels", n)
	}
}
