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
	"strconv"
	"time"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// Statter is the metric API shared by Client and Pipeline
type Statter interface {
	Incr(stat string, count int64, opts ...MetricOption) error
	FIncr(stat string, count float64, opts ...MetricOption) error
	Decr(stat string, count int64, opts ...MetricOption) error
	FDecr(stat string, count float64, opts ...MetricOption) error
	Gauge(stat string, value int64, opts ...MetricOption) error
	GaugeDelta(stat string, value int64, opts ...MetricOption) error
	FGauge(stat string, value float64, opts ...MetricOption) error
	FGaugeDelta(stat string, value float64, opts ...MetricOption) error
	Timing(stat string, delta float64, opts ...MetricOption) error
	PrecisionTiming(stat string, delta time.Duration, opts ...MetricOption) error
	SetAdd(stat string, value string, opts ...MetricOption) error
	Timer(stat string, opts ...MetricOption) *Timer
	Time(stat string, fn func() error, opts ...MetricOption) error
	Pipeline() *Pipeline
	Batch(fn func(p *Pipeline) error) error
}

var (
	_ Statter = (*Client)(nil)
	_ Statter = (*Pipeline)(nil)
)

// sink receives encoded lines: Client sends them, Pipeline buffers them
type sink interface {
	after(data string) error
}

// statter implements metric methods on top of a sink
type statter struct {
	options *ClientOptions
	prefix  string
	out     sink
}

func (s *statter) send(stat string, value []byte, opts []MetricOption) error {
	e := newEvent(opts)

	line, err := s.prepare(stat, value, &e)
	if err != nil || line == "" {
		return err
	}

	return s.out.after(line)
}

// Incr increments a counter metric
//
// Often used to note a particular event
func (s *statter) Incr(stat string, count int64, opts ...MetricOption) error {
	value := strconv.AppendInt(make([]byte, 0, 24), count, 10)
	return s.send(stat, append(value, "|c"...), opts)
}

// FIncr increments a counter metric by a floating point value
func (s *statter) FIncr(stat string, count float64, opts ...MetricOption) error {
	value := strconv.AppendFloat(make([]byte, 0, 24), count, 'f', -1, 64)
	return s.send(stat, append(value, "|c"...), opts)
}

// Decr decrements a counter metric
//
// Often used to note a particular event
func (s *statter) Decr(stat string, count int64, opts ...MetricOption) error {
	return s.Incr(stat, -count, opts...)
}

// FDecr decrements a counter metric by a floating point value
func (s *statter) FDecr(stat string, count float64, opts ...MetricOption) error {
	return s.FIncr(stat, -count, opts...)
}

// Timing tracks a duration event, the time delta must be given in milliseconds
func (s *statter) Timing(stat string, delta float64, opts ...MetricOption) error {
	value := strconv.AppendFloat(make([]byte, 0, 24), delta, 'f', 6, 64)
	return s.send(stat, append(value, "|ms"...), opts)
}

// PrecisionTiming track a duration event, the time delta has to be a duration
func (s *statter) PrecisionTiming(stat string, delta time.Duration, opts ...MetricOption) error {
	return s.Timing(stat, float64(delta)/float64(time.Millisecond), opts...)
}

// Gauge sets or updates constant value for the interval
//
// Gauges are a constant data type. They are not subject to averaging,
// and they don’t change unless you change them. That is, once you set a gauge value,
// it will be a flat line on the graph until you change it again. Due to the
// underlying protocol, you can't explicitly set a gauge to a negative number without
// first setting it to zero, so negative value is sent as a pair of lines
// which always end up in the same packet.
func (s *statter) Gauge(stat string, value int64, opts ...MetricOption) error {
	buf := strconv.AppendInt(make([]byte, 0, 24), value, 10)
	buf = append(buf, "|g"...)

	if value < 0 {
		return s.resetGauge(stat, buf, opts)
	}

	return s.send(stat, buf, opts)
}

// GaugeDelta sends a change for a gauge
func (s *statter) GaugeDelta(stat string, value int64, opts ...MetricOption) error {
	buf := make([]byte, 0, 24)

	// Gauge Deltas are always sent with a leading '+' or '-'. The '-' takes care of itself but the '+' must added by hand
	if value >= 0 {
		buf = append(buf, '+')
	}

	buf = strconv.AppendInt(buf, value, 10)

	return s.send(stat, append(buf, "|g"...), opts)
}

// FGauge sends a floating point value for a gauge
func (s *statter) FGauge(stat string, value float64, opts ...MetricOption) error {
	buf := strconv.AppendFloat(make([]byte, 0, 24), value, 'f', -1, 64)
	buf = append(buf, "|g"...)

	if value < 0 {
		return s.resetGauge(stat, buf, opts)
	}

	return s.send(stat, buf, opts)
}

// FGaugeDelta sends a floating point change for a gauge
func (s *statter) FGaugeDelta(stat string, value float64, opts ...MetricOption) error {
	buf := make([]byte, 0, 24)

	if value >= 0 {
		buf = append(buf, '+')
	}

	buf = strconv.AppendFloat(buf, value, 'f', -1, 64)

	return s.send(stat, append(buf, "|g"...), opts)
}

// resetGauge sends "0|g" followed by the negative value as a single entry
//
// Pair is never split between packets, even when it exceeds MaxPacketSize.
// Sampling is decided once for the pair, lines themselves carry no rate.
func (s *statter) resetGauge(stat string, value []byte, opts []MetricOption) error {
	e := newEvent(opts)

	if s.options.TagFormat == nil && s.hasTags(&e) {
		return ErrTagsNotSupported
	}

	if !s.sampled(e.rate) {
		return nil
	}

	e.rate = 1

	return s.out.after(s.encode(stat, []byte("0|g"), &e) + "\n" + s.encode(stat, value, &e))
}

// SetAdd adds unique element to a set
func (s *statter) SetAdd(stat string, value string, opts ...MetricOption) error {
	buf := make([]byte, 0, len(value)+2)
	buf = append(buf, value...)

	return s.send(stat, append(buf, "|s"...), opts)
}

// Client implements statsd client
type Client struct {
	statter

	transport Transport
	clone     bool
}

// NewClient creates new statsd client sending metrics via transport
//
// Client settings could be controlled via functions of type Option
func NewClient(transport Transport, options ...Option) *Client {
	opts := defaultOptions()

	for _, option := range options {
		option(&opts)
	}

	return newClient(transport, &opts)
}

func newClient(transport Transport, opts *ClientOptions) *Client {
	if opts.SendQueueCapacity > 0 {
		transport = newAsyncTransport(transport, opts)
	}

	c := &Client{transport: transport}
	c.statter = statter{options: opts, prefix: opts.MetricPrefix, out: c}

	return c
}

// Dial creates a client for the network ("udp", "tcp" or "unix") and address
//
// UDP address is resolved immediately, stream transports connect on first send.
func Dial(network, addr string, options ...Option) (*Client, error) {
	opts := defaultOptions()

	for _, option := range options {
		option(&opts)
	}

	var (
		transport Transport
		err       error
	)

	switch network {
	case "udp":
		transport, err = NewUDPTransport(addr, opts.IPv6)
	case "tcp":
		transport = NewTCPTransport(addr, opts.IPv6, opts.Timeout)
	case "unix":
		transport = NewUnixTransport(addr, opts.Timeout)
	default:
		err = errors.Errorf("statsd: unsupported network %q", network)
	}

	if err != nil {
		return nil, err
	}

	return newClient(transport, &opts), nil
}

// after sends data to the transport
//
// Transport errors are logged and swallowed, only queue overflow
// (when not dropping) is returned to the caller.
func (c *Client) after(data string) error {
	err := c.transport.Send([]byte(data))
	if err == nil {
		return nil
	}

	if errors.Cause(err) == ErrSendQueueFull {
		return err
	}

	level.Warn(c.options.Logger).Log("msg", "error sending metrics", "err", err)

	return nil
}

// Pipeline returns new pipeline bound to the client
//
// Pipeline inherits prefix and packet size of the client. Non-positive
// MaxPacketSize falls back to DefaultMaxPacketSize for datagram transports.
func (c *Client) Pipeline() *Pipeline {
	size := c.options.MaxPacketSize
	if c.transport.Kind().Stream() {
		size = 0
	} else if size <= 0 {
		size = DefaultMaxPacketSize
	}

	return newPipeline(c, c.options, c.prefix, size)
}

// Batch runs fn with a fresh pipeline and sends it on every exit path
func (c *Client) Batch(fn func(p *Pipeline) error) error {
	return c.Pipeline().Batch(fn)
}

// CloneWithPrefix returns a clone of the original client with different metricPrefix.
//
// Clone shares transport with the original client, closing the clone is a no-op.
func (c *Client) CloneWithPrefix(prefix string) *Client {
	clone := &Client{transport: c.transport, clone: true}
	clone.statter = statter{options: c.options, prefix: prefix, out: clone}

	return clone
}

// CloneWithPrefixExtension returns a clone of the original client with prefix extended
// with the specified string (joined with '.').
func (c *Client) CloneWithPrefixExtension(extension string) *Client {
	if c.prefix == "" {
		return c.CloneWithPrefix(extension)
	}

	return c.CloneWithPrefix(c.prefix + "." + extension)
}

// GetLostPackets returns number of packets lost during client lifecycle
//
// Packets are only counted as lost with background delivery enabled.
func (c *Client) GetLostPackets() int64 {
	if lost, ok := c.transport.(interface{ LostPackets() int64 }); ok {
		return lost.LostPackets()
	}

	return 0
}

// Close stops the client and closes the transport
func (c *Client) Close() error {
	if c.clone {
		return nil
	}

	return c.transport.Close()
}
