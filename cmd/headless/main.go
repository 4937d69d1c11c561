package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/internal/mission"
	golog "github.com/tochemey/goakt/v3/log"
)

func main() {
	limit := flag.Duration("timeout", 0, "give up after this long (0 waits for every orbit)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *limit)
		defer cancel()
	}

	l := golog.DefaultLogger
	cfg, err := mission.LoadEnv(l)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	m, err := mission.New(context.Background(), cfg, l)
	if err != nil {
		log.Fatal(err)
	}

	m.ServeTelemetry()
	go func() {
		if err := m.Monitor.Run(ctx); err != nil {
			l.Errorf("monitor: %v", err)
		}
	}()
	m.Fleet.Start()

	start := time.Now()
	waitErr := m.Fleet.WaitForOrbits(ctx, 500*time.Millisecond)

	_ = m.Monitor.Sample(context.Background())
	if summary, err := m.Monitor.Summary(context.Background(), time.Second); err == nil {
		l.Infof("final frame: %v", summary.AsMap())
	}
	if err := m.Close(5 * time.Second); err != nil {
		l.Errorf("shutdown: %v", err)
	}

	if waitErr != nil {
		log.Fatalf("mission interrupted after %s: %v", time.Since(start).Round(time.Second), waitErr)
	}
	l.Infof("✅ every agent completed its orbit in %s, %d collisions resolved",
		time.Since(start).Round(time.Second), m.Fleet.CollisionCount())
}
