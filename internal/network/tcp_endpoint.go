package network

import (
	"log"
	"net"
	"time"
)

// tcpEndpoint adapts a TCP connection to the endpoint interface. TCP
// carries no datagram boundaries, so every write is framed with a
// 2-byte length prefix and reads are reassembled through a
// tcpFrameBuffer.
//
// A receiver-role endpoint (the robot/FMS/radio "in" direction) listens
// on its configured port and accepts the peer's inbound connection — it
// never dials out. A sender-role endpoint dials its destination: the
// robot and radio senders know their peer's default address as soon as
// they are constructed (derived from team number or caller override)
// and dial it immediately on open(), matching "changing robot type to
// TCP establishes a connection to the robot address/port immediately";
// the FMS sender has no such default and dials lazily against whatever
// destination its first write() call supplies.
type tcpEndpoint struct {
	role      string
	listening bool
	dialAddr  *net.TCPAddr // preset peer for an eager sender dial or listen port; nil for a lazy sender

	listener *net.TCPListener
	conn     *net.TCPConn

	inbound *tcpFrameBuffer
	scratch []byte
}

// newTCPListener builds a receiver-role endpoint that listens on port
// for the peer's incoming connection.
func newTCPListener(role string, port int) *tcpEndpoint {
	return &tcpEndpoint{
		role:      role,
		listening: true,
		dialAddr:  &net.TCPAddr{Port: port},
		inbound:   newTCPFrameBuffer(64*1024, role),
		scratch:   make([]byte, 4096),
	}
}

// newTCPSender builds a sender-role endpoint. If host is non-empty and
// resolvable, open() dials it eagerly; otherwise the endpoint dials
// lazily against whatever destination its first write() call supplies.
func newTCPSender(role, host string, port int) *tcpEndpoint {
	e := &tcpEndpoint{
		role:    role,
		inbound: newTCPFrameBuffer(64*1024, role),
		scratch: make([]byte, 4096),
	}

	if host != "" && port != DisabledPort {
		ip, err := Lookup(host)
		if err != nil {
			log.Printf("network: %s: could not resolve %s, will dial lazily on first send: %v", role, host, err)
			return e
		}
		e.dialAddr = &net.TCPAddr{IP: ip, Port: port}
	}

	return e
}

func (e *tcpEndpoint) open() error {
	if e.listening {
		if e.dialAddr.Port == DisabledPort {
			return nil
		}
		listener, err := net.ListenTCP("tcp4", e.dialAddr)
		if err != nil {
			log.Printf("network: %s: error listening: %v", e.role, err)
			return err
		}
		e.listener = listener
		log.Printf("network: %s: listening on %s", e.role, listener.Addr())
		return nil
	}

	if e.dialAddr == nil {
		return nil
	}

	conn, err := net.DialTCP("tcp4", nil, e.dialAddr)
	if err != nil {
		log.Printf("network: %s: could not connect to %s immediately, will retry on next send: %v", e.role, e.dialAddr, err)
		return nil
	}
	e.conn = conn
	log.Printf("network: %s: connected to %s", e.role, conn.RemoteAddr())
	return nil
}

func (e *tcpEndpoint) read(buf []byte) (int, *net.UDPAddr, error) {
	if e.listening {
		if e.listener == nil {
			return 0, nil, nil
		}
		if e.conn == nil {
			e.listener.SetDeadline(time.Now().Add(time.Millisecond))
			conn, err := e.listener.AcceptTCP()
			if err != nil {
				return 0, nil, nil
			}
			e.conn = conn
			log.Printf("network: %s: accepted connection from %s", e.role, conn.RemoteAddr())
		}
	}

	if e.conn == nil {
		return 0, nil, nil
	}

	remote := e.conn.RemoteAddr()

	e.conn.SetReadDeadline(time.Now().Add(time.Millisecond))
	for {
		n, err := e.conn.Read(e.scratch)
		if n > 0 {
			e.inbound.add(e.scratch[:n])
		}
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				break
			}
			e.conn.Close()
			e.conn = nil
			if n == 0 {
				return 0, nil, nil
			}
			break
		}
	}

	length, ok := e.inbound.nextFrame(buf)
	if !ok {
		return 0, nil, nil
	}

	return length, udpAddrFromTCP(remote), nil
}

func (e *tcpEndpoint) write(buf []byte, to *net.UDPAddr) error {
	if e.conn == nil {
		if to == nil {
			return nil
		}
		conn, err := net.DialTCP("tcp4", nil, &net.TCPAddr{IP: to.IP, Port: to.Port})
		if err != nil {
			return err
		}
		e.conn = conn
		log.Printf("network: %s: connected to %s", e.role, conn.RemoteAddr())
	} else if to != nil && !tcpPeerMatches(e.conn.RemoteAddr(), to) {
		e.conn.Close()
		conn, err := net.DialTCP("tcp4", nil, &net.TCPAddr{IP: to.IP, Port: to.Port})
		if err != nil {
			e.conn = nil
			return err
		}
		e.conn = conn
		log.Printf("network: %s: redialed to %s", e.role, conn.RemoteAddr())
	}

	framed := make([]byte, 0, len(buf)+2)
	framed = append(framed, byte(len(buf)>>8), byte(len(buf)))
	framed = append(framed, buf...)

	if _, err := e.conn.Write(framed); err != nil {
		e.conn.Close()
		e.conn = nil
		return err
	}
	return nil
}

func (e *tcpEndpoint) close() {
	if e.conn != nil {
		e.conn.Close()
		e.conn = nil
	}
	if e.listener != nil {
		e.listener.Close()
		e.listener = nil
	}
}

func udpAddrFromTCP(addr net.Addr) *net.UDPAddr {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return nil
	}
	return &net.UDPAddr{IP: tcpAddr.IP, Port: tcpAddr.Port}
}

func tcpPeerMatches(addr net.Addr, to *net.UDPAddr) bool {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return false
	}
	return tcpAddr.IP.Equal(to.IP) && tcpAddr.Port == to.Port
}
