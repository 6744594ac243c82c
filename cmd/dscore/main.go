package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/frc-ds/ds-core/internal/config"
	"github.com/frc-ds/ds-core/internal/engine"
	"github.com/frc-ds/ds-core/internal/network"
	"github.com/frc-ds/ds-core/internal/statusapi"
	"github.com/frc-ds/ds-core/internal/telemetry"
)

const (
	VERSION  = "1.0.0-go"
	TickRate = 20 * time.Millisecond
)

var (
	HEADER1 = "Driver station communication core for FIRST Robotics Competition robots."
	HEADER2 = "Not affiliated with or endorsed by FIRST."
)

// Station wires the Protocol Engine to its optional observers: the
// Status API and the Telemetry Bridge. It owns the caller-driven tick
// loop the engine's concurrency model requires.
type Station struct {
	cfg       *config.Config
	engine    *engine.Engine
	publisher *telemetry.Publisher
	status    *statusapi.Server

	mu      sync.RWMutex
	running bool
}

// NewStation builds an Engine from cfg and attaches its optional
// components. The engine itself functions identically whether or not
// the telemetry and status components are wired.
func NewStation(cfg *config.Config, brokerURL, statusAddr string) (*Station, error) {
	eng := engine.New(engine.Config{
		Team:              int(cfg.GetTeam()),
		RobotAddress:      cfg.GetRobotAddress(),
		RadioAddress:      cfg.GetRadioAddress(),
		CustomSocketCount: int(cfg.GetCustomSocketCount()),
		AddressList:       network.GenerateAddressList(cfg.GetStaticAddresses()),
		Ports:             cfg.Ports(),
		SocketTypes:       cfg.SocketTypes(),
	})

	s := &Station{
		cfg:       cfg,
		engine:    eng,
		publisher: telemetry.NewPublisher(brokerURL, int(cfg.GetTeam())),
	}

	eng.OnVoltageChanged = s.publisher.PublishVoltage
	eng.OnCodeChanged = s.publisher.PublishCode
	eng.OnControlModeChanged = s.publisher.PublishMode

	eng.OnFMSPacket(func(data []byte) {
		log.Printf("fms: received %d-byte datagram", len(data))
	})
	eng.OnRadioPacket(func(data []byte) {
		log.Printf("radio: received %d-byte datagram", len(data))
	})

	if statusAddr != "" {
		s.status = statusapi.New(s.snapshot)
	}

	return s, nil
}

func (s *Station) snapshot() statusapi.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return statusapi.Snapshot{
		Team:            int(s.cfg.GetTeam()),
		Voltage:         s.engine.Voltage(),
		CodePresent:     s.engine.CodePresent(),
		ControlMode:     s.engine.ControlModeEcho().String(),
		AllianceStation: s.engine.Alliance().String(),
		LibVersion:      s.engine.LibVersion(),
		PCMVersion:      s.engine.PCMVersion(),
		PDPVersion:      s.engine.PDPVersion(),
		Connected:       s.engine.State() == engine.Connected,
	}
}

// Run opens the socket pool, starts the optional Status API, and drives
// the engine's tick loop until ctx is cancelled.
func (s *Station) Run(ctx context.Context, statusAddr string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("station already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.engine.Open(); err != nil {
		return fmt.Errorf("failed to open socket pool: %v", err)
	}
	defer s.engine.Close()

	if s.status != nil && statusAddr != "" {
		go func() {
			if err := s.status.Start(statusAddr); err != nil {
				log.Printf("statusapi: server stopped: %v", err)
			}
		}()
		defer s.status.Shutdown()
	}

	log.Printf("dscore v%s starting for team %d", VERSION, s.cfg.GetTeam())
	log.Printf("robot: %s  radio: %s", s.engine.RobotAddress(), s.engine.RadioAddress())

	ticker := time.NewTicker(TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("dscore stopping")
			return nil
		case <-ticker.C:
			s.mu.Lock()
			s.engine.Tick()
			s.mu.Unlock()
		}
	}
}

func getDefaultConfig() string {
	if v := os.Getenv("DS_CONFIG"); v != "" {
		return v
	}
	return "dscore.ini"
}

func main() {
	var (
		configFile = flag.String("config", getDefaultConfig(), "Configuration file path")
		addresses  = flag.String("addresses", "", "Optional YAML static address list, overrides the INI list")
		broker     = flag.String("mqtt-broker", "", "Optional MQTT broker URL for the telemetry bridge")
		statusAddr = flag.String("status-addr", "", "Optional listen address for the status API, e.g. :8080")
		showVer    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVer {
		fmt.Printf("dscore v%s\n", VERSION)
		fmt.Println(HEADER1)
		fmt.Println(HEADER2)
		return
	}

	if flag.NArg() > 0 {
		*configFile = flag.Arg(0)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("dscore v%s starting with config: %s", VERSION, *configFile)

	cfg := config.NewConfig(*configFile)
	if err := cfg.Load(); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.ApplyEnvOverrides()

	if *addresses != "" {
		if err := cfg.LoadStaticAddressesYAML(*addresses); err != nil {
			log.Printf("config: %v", err)
		}
	}

	station, err := NewStation(cfg, *broker, *statusAddr)
	if err != nil {
		log.Fatalf("failed to create station: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("received signal %v, shutting down...", sig)
		cancel()
	}()

	if err := station.Run(ctx, *statusAddr); err != nil {
		log.Fatalf("station error: %v", err)
	}

	log.Printf("dscore stopped")
}
