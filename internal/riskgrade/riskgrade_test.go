package riskgrade

import (
	"errors"
	"math"
	"testing"
)

func TestClassify_Table(t *testing.T) {
	tests := []struct {
		pd        float64
		grade     string
		provision float64
	}{
		{0.0, "AA", 0.0},
		{0.005, "AA", 0.0},
		{0.01, "AA", 0.0},
		{0.02, "A", 0.5},
		{0.05, "B", 1.0},
		{0.10, "B", 1.0},
		{0.30, "C", 3.0},
		{0.30000001, "D", 10.0},
		{0.45, "D", 10.0},
		{0.70, "E", 30.0},
		{0.85, "F", 50.0},
		{0.99, "G", 70.0},
		{0.995, "H", 100.0},
		{1.0, "H", 100.0},
	}
	for _, tt := range tests {
		g := Classify(tt.pd)
		if g.Grade != tt.grade {
			t.Errorf("Classify(%v): expected %s, got %s", tt.pd, tt.grade, g.Grade)
		}
		if g.ProvisionPct != tt.provision {
			t.Errorf("Classify(%v): expected provision %v, got %v", tt.pd, tt.provision, g.ProvisionPct)
		}
	}
}

func TestClassify_Total(t *testing.T) {
	for _, pd := range []float64{-0.5, 1.5, math.Inf(1), math.NaN()} {
		g := Classify(pd)
		if g.Grade == "" {
			t.Errorf("Classify(%v) returned no grade", pd)
		}
	}
	if g := Classify(-0.5); g.Grade != "AA" {
		t.Errorf("negative pd: expected AA, got %s", g.Grade)
	}
	if g := Classify(math.NaN()); g.Grade != "H" {
		t.Errorf("NaN pd: expected H, got %s", g.Grade)
	}
}

func TestClassify_Monotonic(t *testing.T) {
	prev := Classify(0)
	for pd := 0.0; pd <= 1.0; pd += 0.001 {
		g := Classify(pd)
		if g.Rank < prev.Rank {
			t.Fatalf("grade improved from %s to %s at pd=%v", prev.Grade, g.Grade, pd)
		}
		if g.ProvisionPct < prev.ProvisionPct {
			t.Fatalf("provision decreased at pd=%v", pd)
		}
		prev = g
	}
}

func TestGrades(t *testing.T) {
	gs := Grades()
	want := []string{"AA", "A", "B", "C", "D", "E", "F", "G", "H"}
	if len(gs) != len(want) {
		t.Fatalf("expected %d grades, got %d", len(want), len(gs))
	}
	for i, g := range gs {
		if g.Grade != want[i] || g.Rank != i {
			t.Errorf("position %d: expected %s/%d, got %s/%d", i, want[i], i, g.Grade, g.Rank)
		}
	}
}

func TestParse(t *testing.T) {
	g, err := Parse(" aa ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.Grade != "AA" || g.Rank != 0 {
		t.Errorf("expected AA rank 0, got %s rank %d", g.Grade, g.Rank)
	}
	if _, err := Parse("Z"); !errors.Is(err, ErrUnknownGrade) {
		t.Errorf("expected ErrUnknownGrade, got %v", err)
	}
}

func TestWorse(t *testing.T) {
	if !Worse(Classify(0.5), Classify(0.05)) {
		t.Error("D should be worse than B")
	}
	if Worse(Classify(0.05), Classify(0.05)) {
		t.Error("a grade is not worse than itself")
	}
}

func TestDashboardBand(t *testing.T) {
	tests := map[float64]string{
		0.05:       BandLowRisk,
		0.10:       BandLowRisk,
		0.2:        BandModerateRisk,
		0.30:       BandModerateRisk,
		0.30000001: BandHighRisk,
		0.9:        BandHighRisk,
	}
	for pd, want := range tests {
		if got := DashboardBand(pd); got != want {
			t.Errorf("DashboardBand(%v) = %q, want %q", pd, got, want)
		}
	}
}
