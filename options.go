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
	"math/rand"
	"os"
	"time"

	"github.com/go-kit/log"
)

// Default settings
const (
	DefaultMaxPacketSize     = 512
	DefaultSendQueueCapacity = 0
	DefaultSendLoopCount     = 1
	DefaultReportInterval    = time.Minute
	DefaultPort              = 8125
)

// ClientOptions are statsd client settings
type ClientOptions struct {
	// MetricPrefix is prepended to every metric name, joined with '.'
	//
	// Default is empty (no prefix)
	MetricPrefix string

	// MaxPacketSize is the packing threshold for datagram pipelines.
	// Lines are never split, so a single line longer than MaxPacketSize
	// is still sent in its own packet.
	//
	// Has no effect on stream transports (TCP, Unix).
	//
	// Default is 512
	MaxPacketSize int

	// TagFormat controls how tags are rendered. nil disables tags:
	// any metric call carrying tags fails with ErrTagsNotSupported.
	//
	// Default is TagFormatDatadog
	TagFormat *TagFormat

	// DefaultTags are attached to every metric, before per-call tags
	DefaultTags []Tag

	// Logger receives transport errors and lost packet reports
	//
	// Default logs logfmt to os.Stderr
	Logger log.Logger

	// RandomSource returns uniformly distributed values in [0, 1),
	// it drives sampling for rates below 1
	//
	// Default is math/rand.Float64
	RandomSource func() float64

	// IPv6 forces IPv6 address resolution for UDP and TCP transports
	IPv6 bool

	// Timeout bounds connect and write calls of stream transports,
	// zero means no timeout
	Timeout time.Duration

	// SendQueueCapacity enables background delivery: packets are queued
	// up to this capacity and sent by SendLoopCount goroutines.
	//
	// Default is 0 (packets are sent by the calling goroutine)
	SendQueueCapacity int

	// SendLoopCount is the number of background send loops
	//
	// Default is 1
	SendLoopCount int

	// DropOnOverflow controls what happens when send queue is full:
	// packet is dropped and counted as lost (true) or ErrSendQueueFull
	// is returned to the caller (false)
	//
	// Default is true
	DropOnOverflow bool

	// ReportInterval is the period lost packets are reported with,
	// zero disables reporting
	//
	// Default is 1 minute
	ReportInterval time.Duration
}

// Option is type for option transport
type Option func(c *ClientOptions)

func defaultOptions() ClientOptions {
	return ClientOptions{
		MaxPacketSize:     DefaultMaxPacketSize,
		TagFormat:         TagFormatDatadog,
		Logger:            log.With(log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr)), "ts", log.DefaultTimestampUTC, "component", "statsd"),
		RandomSource:      rand.Float64,
		SendQueueCapacity: DefaultSendQueueCapacity,
		SendLoopCount:     DefaultSendLoopCount,
		DropOnOverflow:    true,
		ReportInterval:    DefaultReportInterval,
	}
}

// MetricPrefix is prepended to every metric name, separated with '.'
func MetricPrefix(prefix string) Option {
	return func(c *ClientOptions) {
		c.MetricPrefix = prefix
	}
}

// MaxPacketSize control maximum datagram size built by pipelines
//
// Default is 512 bytes
func MaxPacketSize(packetSize int) Option {
	return func(c *ClientOptions) {
		c.MaxPacketSize = packetSize
	}
}

// TagStyle controls formatting of tags
//
// Passing nil makes tagged metric calls fail with ErrTagsNotSupported.
func TagStyle(style *TagFormat) Option {
	return func(c *ClientOptions) {
		c.TagFormat = style
	}
}

// DefaultTags defines a list of tags to be applied to every metric
func DefaultTags(tags ...Tag) Option {
	return func(c *ClientOptions) {
		c.DefaultTags = tags
	}
}

// Logger is used by the client to report errors and lost packets
func Logger(logger log.Logger) Option {
	return func(c *ClientOptions) {
		c.Logger = logger
	}
}

// RandomSource replaces the random generator used for sampling
func RandomSource(source func() float64) Option {
	return func(c *ClientOptions) {
		c.RandomSource = source
	}
}

// IPv6 forces resolution of UDP and TCP addresses to IPv6
func IPv6(ipv6 bool) Option {
	return func(c *ClientOptions) {
		c.IPv6 = ipv6
	}
}

// Timeout bounds connect and write calls of stream transports
func Timeout(timeout time.Duration) Option {
	return func(c *ClientOptions) {
		c.Timeout = timeout
	}
}

// SendQueueCapacity enables background delivery with the queue
// of specified capacity
func SendQueueCapacity(capacity int) Option {
	return func(c *ClientOptions) {
		c.SendQueueCapacity = capacity
	}
}

// SendLoopCount controls number of goroutines sending queued packets
func SendLoopCount(threads int) Option {
	return func(c *ClientOptions) {
		c.SendLoopCount = threads
	}
}

// DropOnOverflow controls overflow policy of the send queue
func DropOnOverflow(drop bool) Option {
	return func(c *ClientOptions) {
		c.DropOnOverflow = drop
	}
}

// ReportInterval instructs client to report number of packets lost
// each interval via Logger
func ReportInterval(interval time.Duration) Option {
	return func(c *ClientOptions) {
		c.ReportInterval = interval
	}
}
