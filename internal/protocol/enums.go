package protocol

// FRC 2015 control/telemetry protocol constants equivalent to DS_Protocol2015.h.

const (
	GeneralHeader = 0x01 // fixed sentinel byte at client packet offset 2

	DefaultRobotPort = 1110 // client -> robot
	DefaultClientPort = 1150 // robot -> client
	DisabledPort      = 0    // sentinel disabling a send direction

	PingWrap = 0xFFFF // ping index resets to 0 at this value

	minRobotPacketLength = 8
	voltageMajorOffset   = 0
	voltageMinorOffset   = 1
	robotStatusOffset    = 3
	controlEchoOffset    = 4
	noProgramStatus      = 0x00
)

// ControlMode mirrors the DS control mode byte sent to the robot.
type ControlMode uint8

const (
	ControlDisabled ControlMode = iota
	ControlTeleOperated
	ControlAutonomous
	ControlTest
	ControlEmergencyStop
)

func (m ControlMode) Valid() bool {
	return m <= ControlEmergencyStop
}

func (m ControlMode) String() string {
	switch m {
	case ControlDisabled:
		return "Disabled"
	case ControlTeleOperated:
		return "TeleOperated"
	case ControlAutonomous:
		return "Autonomous"
	case ControlTest:
		return "Test"
	case ControlEmergencyStop:
		return "EmergencyStop"
	default:
		return "Unknown"
	}
}

// AllianceStation mirrors the six match-position codes.
type AllianceStation uint8

const (
	AllianceRed1 AllianceStation = iota
	AllianceRed2
	AllianceRed3
	AllianceBlue1
	AllianceBlue2
	AllianceBlue3
)

func (a AllianceStation) Valid() bool {
	return a <= AllianceBlue3
}

func (a AllianceStation) String() string {
	switch a {
	case AllianceRed1:
		return "Red1"
	case AllianceRed2:
		return "Red2"
	case AllianceRed3:
		return "Red3"
	case AllianceBlue1:
		return "Blue1"
	case AllianceBlue2:
		return "Blue2"
	case AllianceBlue3:
		return "Blue3"
	default:
		return "Unknown"
	}
}

// RobotStatusRequest mirrors the caller-set status byte.
type RobotStatusRequest uint8

const (
	StatusNormal RobotStatusRequest = iota
	StatusRebootRobot
	StatusRestartCode
)
