package simulation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/uav"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed config.schema.json
var configSchema string

const configSchemaURL = "config.schema.json"

var ErrNoAgents = errors.New("fleet needs at least one agent")

type Config struct {
	// Spawn grid on the ground, centered on the origin
	NumRows  int     `json:"numRows"`
	NumCols  int     `json:"numCols"`
	SpacingX float64 `json:"spacingX"` // meters between columns
	SpacingY float64 `json:"spacingY"` // meters between rows

	// Mission geometry
	SphereCenter geometry.Vector3D `json:"sphereCenter"`
	SphereRadius float64           `json:"sphereRadius"`

	// Vehicle
	Mass     float64 `json:"mass"`
	MaxForce float64 `json:"maxForce"`

	// Timing
	IdleSeconds      float64 `json:"idleSeconds"`
	OrbitSeconds     float64 `json:"orbitSeconds"`
	TickMillis       int     `json:"tickMillis"`
	FinishAfterOrbit bool    `json:"finishAfterOrbit"`

	// Collisions
	BoundingRadius     float64 `json:"boundingRadius"`
	CollisionClearance float64 `json:"collisionClearance"`

	OrbitGains uav.Gains `json:"orbitGains"`

	// Monitoring
	SampleMillis    int     `json:"sampleMillis"`
	ProximityRadius float64 `json:"proximityRadius"` // pairs closer than this are reported
	TelemetryAddr   string  `json:"telemetryAddr"`

	// Viewer
	WorldWidth     float64 `json:"worldWidth"`
	WorldHeight    float64 `json:"worldHeight"`
	PixelsPerMeter float64 `json:"pixelsPerMeter"`
}

// DefaultConfig is fifteen vehicles on a football field, 25 yards apart,
// flying the reference mission.
func DefaultConfig() *Config {
	p := uav.DefaultParams()
	return &Config{
		NumRows:            3,
		NumCols:            5,
		SpacingX:           22.86,
		SpacingY:           24.38,
		SphereCenter:       p.SphereCenter,
		SphereRadius:       p.SphereRadius,
		Mass:               p.Mass,
		MaxForce:           p.MaxForce,
		IdleSeconds:        p.IdleDuration.Seconds(),
		OrbitSeconds:       p.OrbitDuration.Seconds(),
		TickMillis:         int(p.TickInterval / time.Millisecond),
		BoundingRadius:     p.BoundingRadius,
		CollisionClearance: p.CollisionClearance,
		OrbitGains:         p.OrbitGains,
		SampleMillis:       100,
		ProximityRadius:    2.0,
		TelemetryAddr:      ":8080",
		WorldWidth:         1200,
		WorldHeight:        700,
		PixelsPerMeter:     5,
	}
}

// LoadConfig reads a JSON file, validates it against the embedded schema and
// overlays it on DefaultConfig, so a file only needs the keys it changes.
func LoadConfig(configFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.CompileString(configSchemaURL, configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Validate
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal into Struct
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks what the schema cannot express, then the physics itself.
func (c *Config) Validate() error {
	if c.NumRows*c.NumCols <= 0 {
		return fmt.Errorf("%w: grid is %dx%d", ErrNoAgents, c.NumRows, c.NumCols)
	}
	if c.SampleMillis <= 0 {
		return fmt.Errorf("sample period must be positive, got %dms", c.SampleMillis)
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("invalid vehicle parameters: %w", err)
	}
	if c.NumRows*c.NumCols > 1 && min(c.SpacingX, c.SpacingY) <= c.Params().TriggerDistance() {
		return fmt.Errorf("grid spacing %.2fx%.2f must exceed the collision distance %.2f",
			c.SpacingX, c.SpacingY, c.Params().TriggerDistance())
	}
	return nil
}

// Params converts the configuration into per-agent mission parameters.
func (c *Config) Params() uav.Params {
	return uav.Params{
		Mass:               c.Mass,
		MaxForce:           c.MaxForce,
		SphereCenter:       c.SphereCenter,
		SphereRadius:       c.SphereRadius,
		IdleDuration:       seconds(c.IdleSeconds),
		OrbitDuration:      seconds(c.OrbitSeconds),
		TickInterval:       time.Duration(c.TickMillis) * time.Millisecond,
		BoundingRadius:     c.BoundingRadius,
		CollisionClearance: c.CollisionClearance,
		FinishAfterOrbit:   c.FinishAfterOrbit,
		OrbitGains:         c.OrbitGains,
	}
}

// SampleInterval is the monitor sampling period.
func (c *Config) SampleInterval() time.Duration {
	return time.Duration(c.SampleMillis) * time.Millisecond
}

// SpawnPositions lays the fleet out row by row on the ground plane, centered on the origin.
func (c *Config) SpawnPositions() []geometry.Vector3D {
	positions := make([]geometry.Vector3D, 0, c.NumRows*c.NumCols)
	x0 := -float64(c.NumCols-1) * c.SpacingX / 2
	y0 := -float64(c.NumRows-1) * c.SpacingY / 2
	for row := 0; row < c.NumRows; row++ {
		for col := 0; col < c.NumCols; col++ {
			positions = append(positions, geometry.Vector3D{
				X: x0 + float64(col)*c.SpacingX,
				Y: y0 + float64(row)*c.SpacingY,
			})
		}
	}
	return positions
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
