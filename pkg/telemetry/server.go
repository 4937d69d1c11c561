// Package telemetry exposes the fleet monitor over HTTP: JSON endpoints for the
// latest frame and a websocket stream of frames.
package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/simulation"
	golog "github.com/tochemey/goakt/v3/log"
)

// Source is whatever holds the latest fleet frame. *simulation.Monitor is one.
type Source interface {
	Latest() *simulation.FleetSnapshot
}

type Server struct {
	app      *fiber.App
	source   Source
	logger   golog.Logger
	interval time.Duration
	started  time.Time

	clients atomic.Int32
}

// NewServer builds the routes. interval paces the websocket stream.
func NewServer(source Source, interval time.Duration, l golog.Logger) *Server {
	if l == nil {
		l = golog.DiscardLogger
	}
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	s := &Server{
		app:      fiber.New(fiber.Config{DisableStartupMessage: true}),
		source:   source,
		logger:   l,
		interval: interval,
		started:  time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(logger.New())

	api := s.app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/fleet", s.handleFleet)
	api.Get("/agents/:name", s.handleAgent)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws/fleet", websocket.New(s.streamFleet))
}

// App is the underlying fiber app, mostly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Clients is the number of open websocket streams.
func (s *Server) Clients() int { return int(s.clients.Load()) }

// Listen blocks serving addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Infof("🚀 Telemetry listening on %s", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	snap := s.source.Latest()
	body := fiber.Map{
		"status":  "OK",
		"clients": s.Clients(),
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"time":    time.Now().Format(time.RFC3339),
	}
	if snap != nil {
		body["runId"] = snap.RunID
		body["sequence"] = snap.Sequence
	}
	return c.JSON(body)
}

func (s *Server) handleFleet(c *fiber.Ctx) error {
	snap := s.source.Latest()
	if snap == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "no fleet sample yet")
	}
	return c.JSON(snap)
}

func (s *Server) handleAgent(c *fiber.Ctx) error {
	snap := s.source.Latest()
	if snap == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "no fleet sample yet")
	}
	name := c.Params("name")
	for _, a := range snap.Agents {
		if a.Name == name {
			return c.JSON(a)
		}
	}
	return fiber.NewError(fiber.StatusNotFound, "unknown agent "+name)
}

// streamFleet pushes every new frame to the client until the write fails.
func (s *Server) streamFleet(conn *websocket.Conn) {
	s.clients.Add(1)
	defer s.clients.Add(-1)
	s.logger.Infof("Telemetry client connected: %s", conn.RemoteAddr())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var lastSeq uint64
	for range ticker.C {
		snap := s.source.Latest()
		var err error
		if snap == nil || snap.Sequence == lastSeq {
			// nothing new, ping so a vanished client is noticed
			err = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.interval))
		} else {
			lastSeq = snap.Sequence
			err = conn.WriteJSON(snap)
		}
		if err != nil {
			s.logger.Debugf("Telemetry client %s gone: %v", conn.RemoteAddr(), err)
			return
		}
	}
}
