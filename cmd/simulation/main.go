package main

import (
	"context"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/internal/mission"
	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/viewer"
	golog "github.com/tochemey/goakt/v3/log"
)

func main() {
	ctx := context.Background()
	l := golog.DefaultLogger

	cfg, err := mission.LoadEnv(l)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	m, err := mission.New(ctx, cfg, l)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := m.Close(5 * time.Second); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	m.ServeTelemetry()
	m.Fleet.Start()

	ebiten.SetWindowSize(int(cfg.WorldWidth), int(cfg.WorldHeight))
	ebiten.SetWindowTitle("UAV fleet: ascent and orbit")

	game := viewer.NewGame(ctx, cfg, m.Monitor, m.SnapshotCh)
	if err := ebiten.RunGame(game); err != nil {
		log.Print(err)
	}
}
