package simulation

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fleet.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if got := cfg.NumRows * cfg.NumCols; got != 15 {
		t.Errorf("default fleet size = %d; want 15", got)
	}
	if cfg.SampleInterval() != 100*time.Millisecond {
		t.Errorf("SampleInterval() = %v", cfg.SampleInterval())
	}
}

func TestSpawnPositions(t *testing.T) {
	cfg := DefaultConfig()
	pos := cfg.SpawnPositions()
	if len(pos) != 15 {
		t.Fatalf("len(SpawnPositions()) = %d; want 15", len(pos))
	}

	var sumX, sumY float64
	for _, p := range pos {
		if p.Z != 0 {
			t.Errorf("spawn %s is not on the ground", p)
		}
		sumX += p.X
		sumY += p.Y
	}
	if math.Abs(sumX) > 1e-9 || math.Abs(sumY) > 1e-9 {
		t.Errorf("grid is not centered: sum (%v, %v)", sumX, sumY)
	}

	if math.Abs(pos[0].X+2*cfg.SpacingX) > 1e-9 || math.Abs(pos[0].Y+cfg.SpacingY) > 1e-9 {
		t.Errorf("first spawn = %s; want (%v, %v, 0)", pos[0], -2*cfg.SpacingX, -cfg.SpacingY)
	}

	minSpacing := math.Min(cfg.SpacingX, cfg.SpacingY)
	for i := range pos {
		for j := i + 1; j < len(pos); j++ {
			if d := pos[i].DistanceTo(pos[j]); d < minSpacing-1e-9 {
				t.Errorf("spawns %d and %d are %.3f m apart", i, j, d)
			}
		}
	}
}

func TestConfig_Params(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IdleSeconds = 1.5
	cfg.OrbitSeconds = 30
	cfg.TickMillis = 20
	cfg.FinishAfterOrbit = true

	p := cfg.Params()
	if p.IdleDuration != 1500*time.Millisecond || p.OrbitDuration != 30*time.Second {
		t.Errorf("durations = %v / %v", p.IdleDuration, p.OrbitDuration)
	}
	if p.TickInterval != 20*time.Millisecond {
		t.Errorf("TickInterval = %v", p.TickInterval)
	}
	if !p.FinishAfterOrbit || p.SphereCenter != cfg.SphereCenter || p.OrbitGains != cfg.OrbitGains {
		t.Errorf("params %+v do not mirror config", p)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("Overlay on defaults", func(t *testing.T) {
		path := writeConfig(t, `{
			"numRows": 2,
			"numCols": 4,
			"sphereCenter": {"x": 5, "y": 0, "z": 40},
			"orbitSeconds": 5,
			"finishAfterOrbit": true
		}`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.NumRows != 2 || cfg.NumCols != 4 || cfg.SphereCenter.Z != 40 || !cfg.FinishAfterOrbit {
			t.Errorf("file values not applied: %+v", cfg)
		}
		if cfg.SpacingX != DefaultConfig().SpacingX || cfg.Mass != DefaultConfig().Mass {
			t.Errorf("absent keys should keep their defaults: %+v", cfg)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"Malformed JSON", `{"numRows": `},
		{"Unknown key", `{"numRows": 2, "turbo": true}`},
		{"Schema minimum", `{"numRows": 0}`},
		{"Wrong type", `{"mass": "heavy"}`},
		{"Partial sphere center", `{"sphereCenter": {"x": 1}}`},
		{"Spacing below collision distance", `{"spacingX": 0.1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.body)); err == nil {
				t.Errorf("LoadConfig(%s) succeeded; want error", tt.body)
			}
		})
	}

	t.Run("Missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Error("LoadConfig on a missing file succeeded")
		}
	})
}
