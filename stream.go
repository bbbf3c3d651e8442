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
	"time"

	"github.com/pkg/errors"
)

// StreamTransport delivers packets over TCP or Unix stream socket
//
// Connection is established lazily on first Send. Each packet is written
// with a trailing '\n'. When write fails, transport reconnects and resends
// the packet once, the second failure is returned.
type StreamTransport struct {
	kind    Kind
	network string
	addr    string
	timeout time.Duration

	mu   sync.Mutex
	conn net.Conn
}

// NewTCPTransport creates transport for TCP address ("host:port")
//
// Timeout bounds connect and each write, zero means no timeout.
func NewTCPTransport(addr string, ipv6 bool, timeout time.Duration) *StreamTransport {
	network := "tcp4"
	if ipv6 {
		network = "tcp6"
	}

	return &StreamTransport{
		kind:    KindTCP,
		network: network,
		addr:    addr,
		timeout: timeout,
	}
}

// NewUnixTransport creates transport for Unix stream socket at path
func NewUnixTransport(path string, timeout time.Duration) *StreamTransport {
	return &StreamTransport{
		kind:    KindUnix,
		network: "unix",
		addr:    path,
		timeout: timeout,
	}
}

// Kind implements Transport
func (t *StreamTransport) Kind() Kind {
	return t.kind
}

// Connect establishes connection unless already connected
func (t *StreamTransport) Connect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.connect()
}

// Reconnect drops current connection and connects again
func (t *StreamTransport) Reconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.close()

	return t.connect()
}

// Send implements Transport
func (t *StreamTransport) Send(data []byte) error {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, data...)
	buf = append(buf, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.connect(); err != nil {
		return err
	}

	if err := t.write(buf); err == nil {
		return nil
	}

	t.close()

	if err := t.connect(); err != nil {
		return err
	}

	if err := t.write(buf); err != nil {
		t.close()
		return err
	}

	return nil
}

// Close implements Transport
func (t *StreamTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.close()
}

func (t *StreamTransport) connect() error {
	if t.conn != nil {
		return nil
	}

	conn, err := net.DialTimeout(t.network, t.addr, t.timeout)
	if err != nil {
		return errors.Wrapf(err, "statsd: error connecting to %s %q", t.kind, t.addr)
	}

	t.conn = conn

	return nil
}

func (t *StreamTransport) write(buf []byte) error {
	if t.timeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
			return errors.Wrap(err, "statsd: error setting deadline")
		}
	}

	_, err := t.conn.Write(buf)

	return errors.Wrap(err, "statsd: error writing to socket")
}

func (t *StreamTransport) close() error {
	if t.conn == nil {
		return nil
	}

	err := t.conn.Close()
	t.conn = nil

	return err
}
