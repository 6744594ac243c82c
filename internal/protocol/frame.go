package protocol

import "log"

// ClientPacket assembles the outbound control packet sent to the robot.
// ping is the pre-incremented index the caller is responsible for wrapping
// at PingWrap; ClientPacket does not mutate caller state.
func ClientPacket(ping uint16, mode ControlMode, status RobotStatusRequest, alliance AllianceStation, joysticks []JoystickSnapshot) []byte {
	if !mode.Valid() {
		log.Printf("protocol: invalid control mode %d, substituting Disabled", mode)
		mode = ControlDisabled
	}
	if !alliance.Valid() {
		log.Printf("protocol: invalid alliance station %d, substituting Red1", alliance)
		alliance = AllianceRed1
	}

	packet := make([]byte, 6, 6+64)
	packet[0] = byte(ping >> 8)
	packet[1] = byte(ping)
	packet[2] = GeneralHeader
	packet[3] = byte(mode)
	packet[4] = byte(status)
	packet[5] = byte(alliance)

	if mode == ControlTeleOperated {
		for _, j := range joysticks {
			packet = appendJoystick(packet, j)
		}
	}

	return packet
}

// NextPing advances the monotonic ping counter, wrapping to 0 at PingWrap.
func NextPing(current uint16) uint16 {
	next := current + 1
	if next >= PingWrap {
		return 0
	}
	return next
}

// RobotPacket is the decoded form of an inbound telemetry datagram.
type RobotPacket struct {
	Voltage     float64
	CodePresent bool
	ControlEcho ControlMode
}

// ParseRobotPacket decodes an inbound robot telemetry datagram. Packets
// shorter than the minimum length are ignored without error, per the
// core's never-throw error policy.
func ParseRobotPacket(data []byte) (RobotPacket, bool) {
	if len(data) < minRobotPacketLength {
		return RobotPacket{}, false
	}

	major := data[voltageMajorOffset]
	minor := data[voltageMinorOffset]

	return RobotPacket{
		Voltage:     float64(major) + float64(minor)/100.0,
		CodePresent: data[robotStatusOffset] != noProgramStatus,
		ControlEcho: ControlMode(data[controlEchoOffset]),
	}, true
}
