package engine

import (
	"net"
	"testing"
	"time"

	"github.com/frc-ds/ds-core/internal/network"
	"github.com/frc-ds/ds-core/internal/protocol"
)

func TestEngine_DefaultAddressDerivation(t *testing.T) {
	e := New(Config{Team: 1234})

	if got := e.RobotAddress(); got != "roboRIO-1234.local" {
		t.Errorf("RobotAddress() = %q, want roboRIO-1234.local", got)
	}
	if got := e.RadioAddress(); got != "10.12.34.1" {
		t.Errorf("RadioAddress() = %q, want 10.12.34.1", got)
	}
}

func TestEngine_AddressOverride(t *testing.T) {
	e := New(Config{Team: 1234})
	e.SetRobotAddress("10.0.0.5")
	e.SetRadioAddress("10.0.0.6")

	if got := e.RobotAddress(); got != "10.0.0.5" {
		t.Errorf("RobotAddress() override = %q, want 10.0.0.5", got)
	}
	if got := e.RadioAddress(); got != "10.0.0.6" {
		t.Errorf("RadioAddress() override = %q, want 10.0.0.6", got)
	}
}

func TestEngine_PingMonotonic(t *testing.T) {
	ping := uint16(0)
	seen := make([]uint16, 0, 5)
	for i := 0; i < 5; i++ {
		ping = protocol.NextPing(ping)
		seen = append(seen, ping)
	}

	want := []uint16{1, 2, 3, 4, 5}
	for i, w := range want {
		if seen[i] != w {
			t.Errorf("ping[%d] = %d, want %d", i, seen[i], w)
		}
	}
}

func TestEngine_PingWrapsAtBoundary(t *testing.T) {
	ping := uint16(protocol.PingWrap - 1)
	ping = protocol.NextPing(ping)
	if ping != 0 {
		t.Errorf("NextPing(PingWrap-1) = %d, want 0", ping)
	}
}

func TestEngine_RebootLatchesUntilReset(t *testing.T) {
	e := New(Config{Team: 1234})
	e.Reboot()

	packet := protocol.ClientPacket(1, e.mode, e.status, e.alliance, nil)
	if packet[4] != byte(protocol.StatusRebootRobot) {
		t.Fatalf("packet[4] = %d, want StatusRebootRobot", packet[4])
	}

	// A second tick's worth of packet building still carries the latch.
	packet2 := protocol.ClientPacket(2, e.mode, e.status, e.alliance, nil)
	if packet2[4] != byte(protocol.StatusRebootRobot) {
		t.Fatalf("status did not remain latched across builds")
	}

	e.Reset()
	packet3 := protocol.ClientPacket(3, e.mode, e.status, e.alliance, nil)
	if packet3[4] != byte(protocol.StatusNormal) {
		t.Fatalf("packet[4] after Reset() = %d, want StatusNormal", packet3[4])
	}
}

func TestEngine_InvalidControlModeSubstitutesDisabled(t *testing.T) {
	packet := protocol.ClientPacket(1, protocol.ControlMode(200), protocol.StatusNormal, protocol.AllianceRed1, nil)
	if packet[3] != byte(protocol.ControlDisabled) {
		t.Errorf("packet[3] = %d, want ControlDisabled", packet[3])
	}
}

func TestEngine_TeleopJoystickPacketTail(t *testing.T) {
	joystick := protocol.JoystickSnapshot{
		Axes:    []float64{0.5, -0.5},
		Buttons: []bool{true, false, true},
		Hats:    nil,
	}

	packet := protocol.ClientPacket(1, protocol.ControlTeleOperated, protocol.StatusNormal, protocol.AllianceRed1, []protocol.JoystickSnapshot{joystick})

	tail := packet[6:]
	want := []byte{0x08, 0x0c, 0x02, 0x3F, 0xC0, 0x03, 0x05, 0x00}
	if len(tail) != len(want) {
		t.Fatalf("tail length = %d, want %d (%v)", len(tail), len(want), tail)
	}
	for i := range want {
		if tail[i] != want[i] {
			t.Errorf("tail[%d] = 0x%02X, want 0x%02X", i, tail[i], want[i])
		}
	}
}

// TestEngine_TickAdoptsRobotAndTriggersVersionProbe drives a real
// loopback UDP datagram through Tick()/Clock() rather than calling
// handleRobotPacket directly, so the Disconnected -> Connected edge and
// its Version Probe trigger are exercised through the actual network
// path a running station uses.
func TestEngine_TickAdoptsRobotAndTriggersVersionProbe(t *testing.T) {
	e := New(Config{
		Team:  1234,
		Ports: network.Ports{RobotIn: 19410, RobotOut: 19411},
	})
	if err := e.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer e.Close()

	if e.State() != Disconnected {
		t.Fatal("engine should start Disconnected")
	}

	conn, err := net.DialUDP("udp4", nil, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 19410})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	packet := make([]byte, 8)
	packet[0] = 12 // voltage major
	packet[1] = 34 // voltage minor
	packet[3] = 1  // robot status: code present
	if _, err := conn.Write(packet); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && e.State() == Disconnected {
		e.Tick()
	}

	if e.State() != Connected {
		t.Fatal("Tick() should have transitioned Disconnected -> Connected from the real inbound datagram")
	}
	if e.Voltage() != 12.34 {
		t.Errorf("Voltage() = %v, want 12.34", e.Voltage())
	}
	if !e.CodePresent() {
		t.Error("CodePresent() = false, want true")
	}
	if e.probeCancel == nil {
		t.Error("the Disconnected -> Connected edge should have triggered the Version Probe")
	}
}
