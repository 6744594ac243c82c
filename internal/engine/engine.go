// Package engine implements the driver-station protocol state machine:
// it owns a network.SocketPool, assembles and sends the FRC-2015 client
// packet on every Tick, parses inbound robot telemetry, and exposes
// observable state through a small callback registry.
package engine

import (
	"context"
	"fmt"
	"net"

	"github.com/frc-ds/ds-core/internal/network"
	"github.com/frc-ds/ds-core/internal/protocol"
	"github.com/frc-ds/ds-core/internal/versionprobe"
)

// ConnectionState mirrors the two-state lifecycle in the component
// design: Disconnected until the first valid inbound robot packet after
// a reset, Connected thereafter.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connected
)

// Config bundles everything the engine needs to construct its socket
// pool and derive default addresses.
type Config struct {
	Team              int
	RobotAddress      string // explicit override; empty derives roboRIO-<team>.local
	RadioAddress      string // explicit override; empty derives 10.TE.AM.1
	CustomSocketCount int
	AddressList       []string
	Ports             network.Ports
	SocketTypes       network.SocketTypes
}

// Engine is the single state-owning task described by the concurrency
// model: all mutation happens inside Tick or Clock-triggered callbacks,
// never concurrently with itself.
type Engine struct {
	cfg   Config
	pool  *network.SocketPool
	probe *versionprobe.Prober

	ping     uint16
	state    ConnectionState
	mode     protocol.ControlMode
	alliance protocol.AllianceStation
	status   protocol.RobotStatusRequest
	joystick []protocol.JoystickSnapshot

	voltage     float64
	codePresent bool
	controlEcho protocol.ControlMode

	libVersion string
	pcmVersion string
	pdpVersion string

	probeCancel context.CancelFunc
	probeResult chan versionprobe.Result

	OnVoltageChanged     func(float64)
	OnCodeChanged        func(bool)
	OnControlModeChanged func(protocol.ControlMode)
	OnLibVersionChanged  func(string)
	OnPCMVersionChanged  func(string)
	OnPDPVersionChanged  func(string)
}

// New builds an Engine and its socket pool. Call Open before the first
// Tick.
func New(cfg Config) *Engine {
	e := &Engine{
		cfg:      cfg,
		alliance: protocol.AllianceRed1,
		pool: network.NewSocketPool(cfg.Ports, cfg.SocketTypes, cfg.AddressList, cfg.CustomSocketCount,
			deriveRobotAddress(cfg), deriveRadioAddress(cfg)),
		probe:       versionprobe.New(),
		probeResult: make(chan versionprobe.Result, 1),
	}
	e.pool.OnRobotPacket = e.handleRobotPacket
	return e
}

// deriveRobotAddress returns cfg's override, or the derived default
// roboRIO-<team>.local when unset.
func deriveRobotAddress(cfg Config) string {
	if cfg.RobotAddress != "" {
		return cfg.RobotAddress
	}
	return fmt.Sprintf("roboRIO-%d.local", cfg.Team)
}

// deriveRadioAddress returns cfg's override, or the derived default
// 10.TE.AM.1 when unset, where TE/AM are the team number's high/low
// octets.
func deriveRadioAddress(cfg Config) string {
	if cfg.RadioAddress != "" {
		return cfg.RadioAddress
	}
	te := cfg.Team / 100
	am := cfg.Team % 100
	return fmt.Sprintf("10.%d.%d.1", te, am)
}

// OnFMSPacket registers the observer fired for each inbound FMS datagram.
func (e *Engine) OnFMSPacket(fn func([]byte)) { e.pool.OnFMSPacket = fn }

// OnRadioPacket registers the observer fired for each inbound radio
// datagram.
func (e *Engine) OnRadioPacket(fn func([]byte)) { e.pool.OnRadioPacket = fn }

func (e *Engine) Open() error {
	return e.pool.Open()
}

func (e *Engine) Close() {
	if e.probeCancel != nil {
		e.probeCancel()
	}
	e.pool.Close()
}

// SetTeam updates the team number used to derive default addresses.
func (e *Engine) SetTeam(team int) { e.cfg.Team = team }

// SetRobotAddress overrides the derived robot hostname; empty reverts
// to the derived default.
func (e *Engine) SetRobotAddress(addr string) { e.cfg.RobotAddress = addr }

// SetRadioAddress overrides the derived radio address.
func (e *Engine) SetRadioAddress(addr string) { e.cfg.RadioAddress = addr }

// SetControlMode sets the outbound control mode for subsequent ticks.
func (e *Engine) SetControlMode(m protocol.ControlMode) { e.mode = m }

// SetAlliance sets the outbound alliance station code.
func (e *Engine) SetAlliance(a protocol.AllianceStation) { e.alliance = a }

// AttachJoystick replaces the joystick snapshots sent on subsequent
// ticks while in TeleOperated mode.
func (e *Engine) AttachJoystick(snapshots []protocol.JoystickSnapshot) {
	e.joystick = snapshots
}

// Reboot latches the RebootRobot status byte until Reset is called, per
// the level-triggered latch decided for the open robot-status question.
func (e *Engine) Reboot() { e.status = protocol.StatusRebootRobot }

// RestartCode latches the RestartCode status byte.
func (e *Engine) RestartCode() { e.status = protocol.StatusRestartCode }

// Reset returns the engine to Disconnected, clears all observed state
// and cancels any in-flight version probe.
func (e *Engine) Reset() {
	if e.probeCancel != nil {
		e.probeCancel()
		e.probeCancel = nil
	}
	e.pool.ResetAdoption()
	e.state = Disconnected
	e.mode = protocol.ControlDisabled
	e.status = protocol.StatusNormal
	e.voltage = 0
	e.codePresent = false
	e.controlEcho = protocol.ControlDisabled
	e.libVersion = ""
	e.pcmVersion = ""
	e.pdpVersion = ""
}

// Ping returns the last transmitted ping index.
func (e *Engine) Ping() uint16 { return e.ping }

// State reports the current connection state.
func (e *Engine) State() ConnectionState { return e.state }

// Voltage returns the last observed robot voltage.
func (e *Engine) Voltage() float64 { return e.voltage }

// CodePresent reports whether robot code was present on the last packet.
func (e *Engine) CodePresent() bool { return e.codePresent }

// ControlModeEcho returns the last control mode echoed back by the robot.
func (e *Engine) ControlModeEcho() protocol.ControlMode { return e.controlEcho }

// Alliance returns the alliance station currently set for outbound packets.
func (e *Engine) Alliance() protocol.AllianceStation { return e.alliance }

// LibVersion returns the last on-robot library version observed, or "" if
// the Version Probe has not yet completed in this connected episode.
func (e *Engine) LibVersion() string { return e.libVersion }

// PCMVersion returns the last Pneumatics Control Module firmware version.
func (e *Engine) PCMVersion() string { return e.pcmVersion }

// PDPVersion returns the last Power Distribution module firmware version.
func (e *Engine) PDPVersion() string { return e.pdpVersion }

// RobotAddress returns the caller-set override, or the derived default
// roboRIO-<team>.local when unset.
func (e *Engine) RobotAddress() string {
	return deriveRobotAddress(e.cfg)
}

// RadioAddress returns the caller-set override, or the derived default
// 10.TE.AM.1 when unset, where TE/AM are the team number's high/low
// octets.
func (e *Engine) RadioAddress() string {
	return deriveRadioAddress(e.cfg)
}

// Tick builds and sends one client packet (FMS, then robot, then
// radio), clocks the socket pool to drain inbound datagrams, and fires
// the Version Probe on the Disconnected -> Connected edge.
func (e *Engine) Tick() {
	e.ping = protocol.NextPing(e.ping)
	packet := protocol.ClientPacket(e.ping, e.mode, e.status, e.alliance, e.joystick)

	e.pool.SendToFMS(packet)
	e.pool.SendToRobot(packet)
	e.pool.SendToRadio(packet)

	e.pool.Clock()
	e.drainVersionProbe()
}

// drainVersionProbe applies a completed Version Probe result on the
// engine's own thread, keeping state mutation single-writer even though
// the fetch itself ran on a background goroutine.
func (e *Engine) drainVersionProbe() {
	select {
	case result := <-e.probeResult:
		e.applyVersionProbeResult(result)
	default:
	}
}

func (e *Engine) applyVersionProbeResult(result versionprobe.Result) {
	if result.LibVersion != "" {
		e.libVersion = result.LibVersion
		if e.OnLibVersionChanged != nil {
			e.OnLibVersionChanged(result.LibVersion)
		}
	}
	if result.PCMVersion != "" {
		e.pcmVersion = result.PCMVersion
		if e.OnPCMVersionChanged != nil {
			e.OnPCMVersionChanged(result.PCMVersion)
		}
	}
	if result.PDPVersion != "" {
		e.pdpVersion = result.PDPVersion
		if e.OnPDPVersionChanged != nil {
			e.OnPDPVersionChanged(result.PDPVersion)
		}
	}
}

func (e *Engine) handleRobotPacket(from *net.UDPAddr, data []byte) {
	wasDisconnected := e.state == Disconnected

	pkt, ok := protocol.ParseRobotPacket(data)
	if !ok {
		return
	}

	e.state = Connected

	e.voltage = pkt.Voltage
	if e.OnVoltageChanged != nil {
		e.OnVoltageChanged(e.voltage)
	}

	if pkt.CodePresent != e.codePresent {
		e.codePresent = pkt.CodePresent
		if e.OnCodeChanged != nil {
			e.OnCodeChanged(e.codePresent)
		}
	}

	if pkt.ControlEcho != e.controlEcho {
		e.controlEcho = pkt.ControlEcho
		if e.OnControlModeChanged != nil {
			e.OnControlModeChanged(e.controlEcho)
		}
	}

	if wasDisconnected && from != nil {
		e.startVersionProbe(from.IP.String())
	}
}

func (e *Engine) startVersionProbe(host string) {
	ctx, cancel := context.WithCancel(context.Background())
	e.probeCancel = cancel

	go func() {
		result := e.probe.Fetch(ctx, host)
		if ctx.Err() != nil {
			return
		}
		select {
		case e.probeResult <- result:
		case <-ctx.Done():
		}
	}()
}
