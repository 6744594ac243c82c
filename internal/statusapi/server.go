// Package statusapi exposes the engine's observable state as local JSON
// endpoints for tooling that cannot link this module directly. It is a
// diagnostic surface only: no HTML, no interactive console.
package statusapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Snapshot is the JSON projection of observable robot state served by
// /status. The telemetry publisher does not use it; it publishes one
// small payload per topic.
type Snapshot struct {
	Team            int     `json:"team"`
	Voltage         float64 `json:"voltage"`
	CodePresent     bool    `json:"codePresent"`
	ControlMode     string  `json:"controlMode"`
	AllianceStation string  `json:"allianceStation"`
	LibVersion      string  `json:"libVersion"`
	PCMVersion      string  `json:"pcmVersion"`
	PDPVersion      string  `json:"pdpVersion"`
	Connected       bool    `json:"connected"`
	Timestamp       string  `json:"timestamp"`
}

// SnapshotSource supplies the current Telemetry Snapshot on demand.
type SnapshotSource func() Snapshot

// Server wraps an echo instance serving the status endpoints.
type Server struct {
	echo   *echo.Echo
	source SnapshotSource
	now    func() time.Time
}

// New builds a Server that reads state from source on every request.
func New(source SnapshotSource) *Server {
	s := &Server{
		echo:   echo.New(),
		source: source,
		now:    time.Now,
	}
	s.echo.HideBanner = true
	s.echo.GET("/status", s.handleStatus)
	s.echo.GET("/healthz", s.handleHealthz)
	return s
}

// Start serves on addr, blocking until the server stops or errors. Start
// errors are the caller's to log; they are never fatal to the engine.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the HTTP server immediately, closing any active
// connections rather than waiting for in-flight requests.
func (s *Server) Shutdown() error {
	return s.echo.Close()
}

func (s *Server) handleStatus(c echo.Context) error {
	snapshot := s.source()
	snapshot.Timestamp = s.now().UTC().Format(time.RFC3339)
	return c.JSON(http.StatusOK, snapshot)
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
