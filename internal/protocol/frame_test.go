package protocol

import "testing"

func TestNextPing_MonotonicAndWraps(t *testing.T) {
	ping := uint16(0)
	for i := 1; i <= 5; i++ {
		ping = NextPing(ping)
		if ping != uint16(i) {
			t.Fatalf("ping after %d calls = %d, want %d", i, ping, i)
		}
	}

	ping = PingWrap - 1
	ping = NextPing(ping)
	if ping != 0 {
		t.Fatalf("NextPing(PingWrap-1) = %d, want 0", ping)
	}
}

func TestClientPacket_PrefixShape(t *testing.T) {
	packet := ClientPacket(1, ControlDisabled, StatusNormal, AllianceRed1, nil)
	if packet[2] != GeneralHeader {
		t.Errorf("packet[2] = 0x%02X, want GeneralHeader", packet[2])
	}
	if len(packet) != 6 {
		t.Errorf("len(packet) = %d, want 6 for non-teleop mode", len(packet))
	}

	teleop := ClientPacket(1, ControlTeleOperated, StatusNormal, AllianceRed1, nil)
	if len(teleop) != 6 {
		t.Errorf("len(teleop, no joysticks) = %d, want 6", len(teleop))
	}
}

func TestClientPacket_PingEncodedBigEndian(t *testing.T) {
	packet := ClientPacket(0x0102, ControlDisabled, StatusNormal, AllianceRed1, nil)
	if packet[0] != 0x01 || packet[1] != 0x02 {
		t.Errorf("ping bytes = [0x%02X 0x%02X], want [0x01 0x02]", packet[0], packet[1])
	}
}

func TestClientPacket_InvalidEnumsSubstituted(t *testing.T) {
	packet := ClientPacket(1, ControlMode(99), StatusNormal, AllianceStation(99), nil)
	if packet[3] != byte(ControlDisabled) {
		t.Errorf("packet[3] = %d, want ControlDisabled", packet[3])
	}
	if packet[5] != byte(AllianceRed1) {
		t.Errorf("packet[5] = %d, want AllianceRed1", packet[5])
	}
}

func TestSectionSize_MatchesEmittedPrefix(t *testing.T) {
	tests := []JoystickSnapshot{
		{Axes: []float64{0.5, -0.5}, Buttons: []bool{true, false, true}, Hats: nil},
		{Axes: []float64{1, -1, 0}, Buttons: make([]bool, 9), Hats: []int{45, -1}},
		{},
	}

	for _, j := range tests {
		packet := ClientPacket(1, ControlTeleOperated, StatusNormal, AllianceRed1, []JoystickSnapshot{j})
		tail := packet[6:]
		if int(tail[0]) != SectionSize(j) {
			t.Errorf("size prefix = %d, want SectionSize() = %d", tail[0], SectionSize(j))
		}
		if len(tail) != SectionSize(j) {
			t.Errorf("tail length = %d, want %d", len(tail), SectionSize(j))
		}
	}
}

func TestJoystickEncoding_ExactByteVector(t *testing.T) {
	joystick := JoystickSnapshot{
		Axes:    []float64{0.5, -0.5},
		Buttons: []bool{true, false, true},
	}

	packet := ClientPacket(1, ControlTeleOperated, StatusNormal, AllianceRed1, []JoystickSnapshot{joystick})
	tail := packet[6:]

	want := []byte{0x08, joystickSectionHeader, 0x02, 0x3F, 0xC0, 0x03, 0x05, 0x00}
	if len(tail) != len(want) {
		t.Fatalf("tail = %v, want %v", tail, want)
	}
	for i := range want {
		if tail[i] != want[i] {
			t.Errorf("tail[%d] = 0x%02X, want 0x%02X", i, tail[i], want[i])
		}
	}
}

func TestParseRobotPacket_ShortPacketIgnored(t *testing.T) {
	_, ok := ParseRobotPacket([]byte{1, 2, 3})
	if ok {
		t.Error("ParseRobotPacket on short packet should return ok=false")
	}
}

func TestParseRobotPacket_VoltageDecoding(t *testing.T) {
	data := make([]byte, minRobotPacketLength)
	data[voltageMajorOffset] = 12
	data[voltageMinorOffset] = 34

	pkt, ok := ParseRobotPacket(data)
	if !ok {
		t.Fatal("ParseRobotPacket should succeed on minimum-length packet")
	}
	if pkt.Voltage != 12.34 {
		t.Errorf("Voltage = %v, want 12.34", pkt.Voltage)
	}
}

func TestParseRobotPacket_CodePresentEdge(t *testing.T) {
	data := make([]byte, minRobotPacketLength)
	data[robotStatusOffset] = noProgramStatus
	pkt, ok := ParseRobotPacket(data)
	if !ok || pkt.CodePresent {
		t.Error("CodePresent should be false when status byte is the no-program sentinel")
	}

	data[robotStatusOffset] = 0x01
	pkt, ok = ParseRobotPacket(data)
	if !ok || !pkt.CodePresent {
		t.Error("CodePresent should be true for a non-sentinel status byte")
	}
}
