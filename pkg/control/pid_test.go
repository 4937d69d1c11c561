package control

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func TestPID_Proportional(t *testing.T) {
	p := NewPID(2, 0, 0)
	if got := p.Update(10, 4, 0.01); math.Abs(got-12) > tolerance {
		t.Errorf("P-only output = %v; want 12", got)
	}
}

func TestPID_IntegralAccumulates(t *testing.T) {
	p := NewPID(0, 1, 0)
	for i := 0; i < 100; i++ {
		p.Update(1, 0, 0.01)
	}
	if got := p.Integral(); math.Abs(got-1) > 1e-6 {
		t.Errorf("Integral after 1s of unit error = %v; want 1", got)
	}
}

func TestPID_AntiWindup(t *testing.T) {
	tests := []struct {
		name     string
		setpoint float64
		want     float64
	}{
		{"Positive saturation", 1000, DefaultIntegralMax},
		{"Negative saturation", -1000, DefaultIntegralMin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPID(0, 1, 0)
			for i := 0; i < 1000; i++ {
				p.Update(tt.setpoint, 0, 0.01)
				if p.Integral() > p.IntegralMax || p.Integral() < p.IntegralMin {
					t.Fatalf("integral %v escaped [%v, %v] at step %d", p.Integral(), p.IntegralMin, p.IntegralMax, i)
				}
			}
			if p.Integral() != tt.want {
				t.Errorf("Integral = %v; want %v", p.Integral(), tt.want)
			}
		})
	}
}

func TestPID_Derivative(t *testing.T) {
	p := NewPID(0, 0, 1)
	// First step: error jumps from 0 to 1 in 0.1s.
	if got := p.Update(1, 0, 0.1); math.Abs(got-10) > tolerance {
		t.Errorf("first derivative output = %v; want 10", got)
	}
	// Constant error: no derivative contribution.
	if got := p.Update(1, 0, 0.1); math.Abs(got) > tolerance {
		t.Errorf("steady derivative output = %v; want 0", got)
	}
}

func TestPID_ZeroDeltaTime(t *testing.T) {
	p := NewPID(1, 1, 1)
	got := p.Update(1, 0, 0)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("Update with dt=0 returned %v", got)
	}
	if math.Abs(got-1) > tolerance {
		t.Errorf("Update with dt=0 = %v; want proportional term only (1)", got)
	}
}

func TestPID_Reset(t *testing.T) {
	p := NewPID(1, 1, 1)
	for i := 0; i < 10; i++ {
		p.Update(5, 0, 0.01)
	}
	p.Reset()
	if p.Integral() != 0 {
		t.Errorf("Integral after Reset = %v; want 0", p.Integral())
	}
	// After reset the derivative is computed against a zero previous error again.
	fresh := NewPID(1, 1, 1)
	if got, want := p.Update(5, 0, 0.01), fresh.Update(5, 0, 0.01); math.Abs(got-want) > tolerance {
		t.Errorf("output after Reset = %v; want %v", got, want)
	}
}

func TestPID_SetIntegralLimits(t *testing.T) {
	p := NewPID(0, 1, 0)
	for i := 0; i < 100; i++ {
		p.Update(10, 0, 0.1)
	}
	p.SetIntegralLimits(5, -5)
	if p.IntegralMin != -5 || p.IntegralMax != 5 {
		t.Errorf("limits = [%v, %v]; want [-5, 5]", p.IntegralMin, p.IntegralMax)
	}
	if p.Integral() != 5 {
		t.Errorf("Integral after tightening = %v; want 5", p.Integral())
	}
}

func TestPID_SetGains(t *testing.T) {
	p := NewPID(1, 0, 0)
	p.SetGains(3, 0, 0)
	if got := p.Update(1, 0, 0.01); math.Abs(got-3) > tolerance {
		t.Errorf("output with new gains = %v; want 3", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		x, lo, hi, want float64
	}{
		{-2, -1, 1, -1},
		{0.5, -1, 1, 0.5},
		{7, -1, 1, 1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.x, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v; want %v", tt.x, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func BenchmarkPID_Update(b *testing.B) {
	p := NewPID(8, 0.1, 3)
	for i := 0; i < b.N; i++ {
		p.Update(10, float64(i%20), 0.01)
	}
}
