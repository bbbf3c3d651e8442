package statsd

/*

Copyright (c) 2017 Andrey Smirnov

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.

*/

import (
	"net"
	"sync"

	"github.com/pkg/errors"
)

// Kind is the transport type
type Kind int

// Transport kinds
const (
	KindUDP Kind = iota
	KindTCP
	KindUnix
)

// Stream is true for connection-oriented transports, which have
// no packet size limit
func (k Kind) Stream() bool {
	return k != KindUDP
}

func (k Kind) String() string {
	switch k {
	case KindUDP:
		return "udp"
	case KindTCP:
		return "tcp"
	case KindUnix:
		return "unix"
	default:
		return "unknown"
	}
}

// Transport delivers packets to statsd server
//
// Send is called with one packet: a single line or several lines joined
// with '\n'. Datagram transports send the packet as is, stream transports
// terminate it with '\n'. Send should be safe for concurrent use.
type Transport interface {
	Kind() Kind
	Send(data []byte) error
	Close() error
}

// Connector is implemented by transports which establish connection
//
// Connect is idempotent.
type Connector interface {
	Connect() error
}

// UDPTransport sends each packet as a single UDP datagram
type UDPTransport struct {
	addr string

	mu   sync.RWMutex
	conn net.Conn
}

// NewUDPTransport resolves addr ("host:port") and creates UDP socket
func NewUDPTransport(addr string, ipv6 bool) (*UDPTransport, error) {
	network := "udp4"
	if ipv6 {
		network = "udp6"
	}

	udpAddr, err := net.ResolveUDPAddr(network, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "statsd: error resolving %q", addr)
	}

	conn, err := net.DialUDP(network, nil, udpAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "statsd: error connecting to %q", addr)
	}

	return &UDPTransport{addr: addr, conn: conn}, nil
}

// Kind implements Transport
func (t *UDPTransport) Kind() Kind {
	return KindUDP
}

// Send implements Transport
func (t *UDPTransport) Send(data []byte) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.conn == nil {
		return ErrClosed
	}

	_, err := t.conn.Write(data)

	return errors.Wrap(err, "statsd: error writing to socket")
}

// Close implements Transport
func (t *UDPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return nil
	}

	err := t.conn.Close()
	t.conn = nil

	return err
}
