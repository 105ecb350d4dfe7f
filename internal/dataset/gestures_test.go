package dataset

import "testing"

func TestNewGesturesBuiltins(t *testing.T) {
	g := NewGestures()
	names := g.Names()
	want := []string{"right", "left", "up", "down"}
	if len(names) != len(want) {
		t.Fatalf("names %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names %v want %v", names, want)
		}
	}
	inputs := g.Inputs()
	if len(inputs[0]) != FeatureCount || g.InputCount() != 24 {
		t.Fatalf("feature width %d", len(inputs[0]))
	}
	for i := 0; i < FeatureCount; i += 2 {
		if inputs[3][i] != 0 || inputs[3][i+1] != -1 {
			t.Fatalf("down vector %v", inputs[3])
		}
	}
	if SmoothTargetLength != 13 {
		t.Fatalf("SmoothTargetLength %d", SmoothTargetLength)
	}
}

func TestTargetsAreOneHot(t *testing.T) {
	g := NewGestures()
	if err := g.AddGesture("circle", make([]float64, FeatureCount)); err != nil {
		t.Fatalf("AddGesture: %v", err)
	}
	targets := g.Targets()
	if len(targets) != 5 || g.OutputCount() != 5 {
		t.Fatalf("got %d targets", len(targets))
	}
	for i, row := range targets {
		if len(row) != 5 {
			t.Fatalf("row %d width %d", i, len(row))
		}
		for j, v := range row {
			if (i == j && v != 1) || (i != j && v != 0) {
				t.Fatalf("targets[%d] = %v", i, row)
			}
		}
	}
}

func TestAddGestureValidation(t *testing.T) {
	g := NewGestures()
	if err := g.AddGesture("short", []float64{1, 0}); err == nil {
		t.Fatal("expected error for wrong width")
	}
	if err := g.AddGesture("a;b", make([]float64, FeatureCount)); err == nil {
		t.Fatal("expected error for ';' in name")
	}
	if g.Len() != 4 {
		t.Fatalf("rejected gestures were added: %d", g.Len())
	}
}

func TestAddGestureCopiesVector(t *testing.T) {
	g := NewGestures()
	v := make([]float64, FeatureCount)
	if err := g.AddGesture("zig", v); err != nil {
		t.Fatalf("AddGesture: %v", err)
	}
	v[0] = 7
	if g.Inputs()[4][0] != 0 {
		t.Fatal("dataset aliases the caller's vector")
	}
	g.Inputs()[4][1] = 9
	if g.Inputs()[4][1] != 0 {
		t.Fatal("Inputs exposes internal storage")
	}
}

func TestRenameAll(t *testing.T) {
	g := NewGestures()
	if err := g.RenameAll([]string{"a", "b", "c", "d"}); err != nil {
		t.Fatalf("RenameAll: %v", err)
	}
	if g.Names()[2] != "c" {
		t.Fatalf("names %v", g.Names())
	}
	if err := g.RenameAll([]string{"x"}); err == nil {
		t.Fatal("expected error for short name list")
	}
	if g.Names()[0] != "a" {
		t.Fatal("failed rename modified names")
	}
}
