package network

import (
	"fmt"
	"log"
	"net"
)

// Ports bundles the six independently configurable send/receive ports.
// DisabledPort on any of them drops sends to that direction silently.
type Ports struct {
	FMSIn, FMSOut     int
	RadioIn, RadioOut int
	RobotIn, RobotOut int
}

// SocketTypes selects UDP or TCP per named direction, per the closed
// two-case variance the component design calls out.
type SocketTypes struct {
	FMS, Radio, Robot SocketType
}

// SocketPool owns the named communication endpoints and the parallel
// probe fan-out used to locate the robot before its address is known.
//
// Probe receivers are collapsed into a single shared listener bound to
// RobotIn: any candidate the pool sends to will have its reply land on
// that same local port regardless of which probe slot addressed it, so
// one receiver serves every probe slot without needing N sockets bound
// to the same port (which Go's net package does not expose without
// SO_REUSEPORT plumbing the original's per-slot receivers relied on).
// Sends still fan out individually across the address list.
type SocketPool struct {
	fmsReceiver endpoint
	fmsSender   endpoint

	radioReceiver endpoint
	radioSender   endpoint

	robotReceiver endpoint
	robotSender   endpoint
	robotType     SocketType

	addressList []string
	iterator    int
	socketCount int

	fmsAddr   *net.UDPAddr
	radioAddr *net.UDPAddr
	robotAddr *net.UDPAddr

	ports Ports

	OnFMSPacket   func([]byte)
	OnRadioPacket func([]byte)
	OnRobotPacket func(*net.UDPAddr, []byte)
}

// NewSocketPool builds a pool with the given ports, socket types and
// initial address list. robotHost and radioHost are the robot's and
// radio's default addresses (derived from team number, or a caller
// override). A TCP sender for either dials that host immediately on
// Open(); the radio's UDP sender also resolves radioHost immediately
// since, unlike the robot, its address never needs discovery. FMS has
// no fixed host: its address is learned the same way the robot's is,
// adopted from the source of the first inbound FMS datagram, so its
// TCP sender dials lazily and SendToFMS is a no-op until one arrives.
// Call Open before Clock/Send*.
func NewSocketPool(ports Ports, types SocketTypes, addressList []string, customSocketCount int, robotHost, radioHost string) *SocketPool {
	p := &SocketPool{
		ports:       ports,
		addressList: addressList,
		socketCount: SocketCount(customSocketCount, len(addressList)),
		robotType:   types.Robot,
	}

	p.fmsReceiver = newReceiver(types.FMS, "fms-in", ports.FMSIn)
	p.fmsSender = newSender(types.FMS, "fms-out", "", ports.FMSOut)

	p.radioReceiver = newReceiver(types.Radio, "radio-in", ports.RadioIn)
	p.radioSender = newSender(types.Radio, "radio-out", radioHost, ports.RadioOut)

	p.robotReceiver = newReceiver(types.Robot, "robot-in", ports.RobotIn)
	p.robotSender = newSender(types.Robot, "robot-out", robotHost, ports.RobotOut)

	if radioHost != "" && ports.RadioOut != DisabledPort {
		addr, err := ParseUDPAddr(radioHost, ports.RadioOut)
		if err != nil {
			log.Printf("network: radio-out: could not resolve %s: %v", radioHost, err)
		} else {
			p.radioAddr = addr
		}
	}

	return p
}

// newReceiver binds a listener to the given local "in" port. A TCP
// receiver listens for the peer's inbound connection; it never dials.
func newReceiver(t SocketType, role string, port int) endpoint {
	if port == DisabledPort {
		return nil
	}
	if t == SocketTCP {
		return newTCPListener(role, port)
	}
	return newUDPEndpointServer(role, port)
}

// newSender builds a sender for the given "out" direction. A TCP sender
// dials host:port immediately if host is known, else dials lazily
// against the destination its first write() call supplies, per the
// "explicit destination" preserved behavior.
func newSender(t SocketType, role, host string, port int) endpoint {
	if t == SocketTCP {
		return newTCPSender(role, host, port)
	}
	return newUDPEndpointServer(role, 0)
}

func (p *SocketPool) endpoints() []endpoint {
	return []endpoint{p.fmsReceiver, p.fmsSender, p.radioReceiver, p.radioSender, p.robotReceiver, p.robotSender}
}

// Open binds every configured endpoint. Receivers for disabled "in" ports
// are left nil and every operation against them is a silent no-op;
// senders are always built and opened, and sends to a disabled "out"
// port are dropped silently by sendTo.
func (p *SocketPool) Open() error {
	for _, ep := range p.endpoints() {
		if ep == nil {
			continue
		}
		if err := ep.open(); err != nil {
			return err
		}
	}
	return nil
}

// Close tears down every owned endpoint.
func (p *SocketPool) Close() {
	for _, ep := range p.endpoints() {
		if ep != nil {
			ep.close()
		}
	}
}

// SetAddressList rebuilds the probe pool atomically: the iterator resets
// and socketCount is recomputed from the new list length.
func (p *SocketPool) SetAddressList(list []string, customSocketCount int) {
	p.addressList = list
	p.iterator = 0
	p.socketCount = SocketCount(customSocketCount, len(list))
}

// ResetAdoption clears the adopted robot address, returning the pool to
// parallel-probe fan-out.
func (p *SocketPool) ResetAdoption() {
	p.robotAddr = nil
}

// KnownRobotAddress reports the adopted address, or nil if unadopted.
func (p *SocketPool) KnownRobotAddress() *net.UDPAddr {
	return p.robotAddr
}

// KnownFMSAddress reports the adopted FMS address, or nil if no FMS
// datagram has arrived yet.
func (p *SocketPool) KnownFMSAddress() *net.UDPAddr {
	return p.fmsAddr
}

// SendToFMS sends to the adopted FMS address; a no-op until one has
// arrived, since FMS's address is learned from its own traffic rather
// than configured up front.
func (p *SocketPool) SendToFMS(data []byte) {
	if p.fmsAddr == nil {
		return
	}
	sendTo(p.fmsSender, data, p.fmsAddr, p.ports.FMSOut)
}

// SendToRadio sends to the radio's configured address, resolved once
// at construction; a no-op if that resolution failed or the direction
// is disabled.
func (p *SocketPool) SendToRadio(data []byte) {
	if p.radioAddr == nil {
		return
	}
	sendTo(p.radioSender, data, p.radioAddr, p.ports.RadioOut)
}

// SendToRobot dispatches to the known unicast address if adopted,
// otherwise fans out across the probe pool and rotates the cursor.
func (p *SocketPool) SendToRobot(data []byte) {
	if p.robotAddr != nil {
		p.SendToRobotKnown(data)
		return
	}
	p.SendToRobotFanout(data)
}

func (p *SocketPool) SendToRobotKnown(data []byte) {
	if p.robotAddr == nil {
		return
	}
	sendTo(p.robotSender, data, p.robotAddr, p.ports.RobotOut)
}

// SendToRobotFanout addresses socketCount candidates starting at the
// current iterator, then rotates. It is a no-op in TCP mode, which has
// exactly one connected socket rather than many probe slots.
func (p *SocketPool) SendToRobotFanout(data []byte) {
	if p.ports.RobotOut == DisabledPort || p.robotType == SocketTCP {
		return
	}

	for i := 0; i < p.socketCount; i++ {
		idx := p.iterator + i
		if idx >= len(p.addressList) {
			break
		}
		addr, err := ParseUDPAddr(p.addressList[idx], p.ports.RobotOut)
		if err != nil {
			continue
		}
		sendTo(p.robotSender, data, addr, p.ports.RobotOut)
	}

	p.rotate()
}

func (p *SocketPool) rotate() {
	if p.iterator+p.socketCount < len(p.addressList) {
		p.iterator += p.socketCount
	} else {
		p.iterator = 0
	}
}

func sendTo(ep endpoint, data []byte, addr *net.UDPAddr, port int) {
	if ep == nil || port == DisabledPort {
		return
	}
	if err := ep.write(data, addr); err != nil {
		log.Printf("network: send failed: %v", err)
	}
}

// Clock drains every owned receiver once with a non-blocking poll and
// fires the matching observer for each datagram found. FMS and robot
// datagrams trigger address adoption on their respective empty-address
// edge before the observer runs.
func (p *SocketPool) Clock() {
	buf := make([]byte, 2048)

	drain(p.fmsReceiver, buf, func(n int, from *net.UDPAddr) {
		if p.fmsAddr == nil && from != nil {
			p.fmsAddr = from
		}
		if p.OnFMSPacket != nil {
			p.OnFMSPacket(append([]byte(nil), buf[:n]...))
		}
	})

	drain(p.radioReceiver, buf, func(n int, _ *net.UDPAddr) {
		if p.OnRadioPacket != nil {
			p.OnRadioPacket(append([]byte(nil), buf[:n]...))
		}
	})

	drain(p.robotReceiver, buf, func(n int, from *net.UDPAddr) {
		if p.robotAddr == nil && from != nil {
			p.robotAddr = from
		}
		if p.OnRobotPacket != nil {
			p.OnRobotPacket(from, append([]byte(nil), buf[:n]...))
		}
	})
}

func drain(ep endpoint, buf []byte, onPacket func(n int, from *net.UDPAddr)) {
	if ep == nil {
		return
	}
	for {
		n, from, err := ep.read(buf)
		if err != nil {
			log.Printf("network: read error: %v", err)
			return
		}
		if n <= 0 {
			return
		}
		onPacket(n, from)
	}
}

// String renders the pool's probe position for diagnostics.
func (p *SocketPool) String() string {
	return fmt.Sprintf("SocketPool[iterator=%d/%d socketCount=%d robotAddr=%v]",
		p.iterator, len(p.addressList), p.socketCount, p.robotAddr)
}
