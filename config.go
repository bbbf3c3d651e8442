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
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Config describes client created from the environment or flags
type Config struct {
	// Protocol is one of "udp", "tcp", "unix"
	Protocol   string
	Host       string
	Port       int
	SocketPath string
	Prefix     string
	MaxUDPSize int
	IPv6       bool
	Timeout    time.Duration
	// Telegraf switches tags into the name (TagFormatTelegraf)
	Telegraf bool
	// QueueSize enables background delivery when positive
	QueueSize int
	// NoFail drops packets when the queue is full instead of failing
	NoFail bool
}

// DefaultConfig returns config of UDP client sending to localhost:8125
func DefaultConfig() Config {
	return Config{
		Protocol:   "udp",
		Host:       "localhost",
		Port:       DefaultPort,
		MaxUDPSize: DefaultMaxPacketSize,
		NoFail:     true,
	}
}

// ConfigFromEnv builds config from STATSD_* environment variables
//
// Recognized variables: STATSD_PROTOCOL, STATSD_HOST, STATSD_PORT,
// STATSD_SOCKET_PATH, STATSD_PREFIX, STATSD_MAXUDPSIZE, STATSD_IPV6,
// STATSD_TIMEOUT (duration, e.g. "500ms"), STATSD_TELEGRAF,
// STATSD_QUEUE_SIZE and STATSD_NO_FAIL.
func ConfigFromEnv() (Config, error) {
	return configFromLookup(os.LookupEnv)
}

func configFromLookup(lookup func(key string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()

	var err error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && err == nil {
			*dst, err = strconv.Atoi(v)
			err = errors.Wrapf(err, "statsd: invalid %s", key)
		}
	}

	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && err == nil {
			*dst, err = strconv.ParseBool(v)
			err = errors.Wrapf(err, "statsd: invalid %s", key)
		}
	}

	str("STATSD_PROTOCOL", &cfg.Protocol)
	str("STATSD_HOST", &cfg.Host)
	integer("STATSD_PORT", &cfg.Port)
	str("STATSD_SOCKET_PATH", &cfg.SocketPath)
	str("STATSD_PREFIX", &cfg.Prefix)
	integer("STATSD_MAXUDPSIZE", &cfg.MaxUDPSize)
	boolean("STATSD_IPV6", &cfg.IPv6)
	boolean("STATSD_TELEGRAF", &cfg.Telegraf)
	integer("STATSD_QUEUE_SIZE", &cfg.QueueSize)
	boolean("STATSD_NO_FAIL", &cfg.NoFail)

	if v, ok := lookup("STATSD_TIMEOUT"); ok && err == nil {
		cfg.Timeout, err = time.ParseDuration(v)
		err = errors.Wrap(err, "statsd: invalid STATSD_TIMEOUT")
	}

	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Addr returns the address to dial: socket path for "unix", host:port otherwise
func (cfg Config) Addr() string {
	if cfg.Protocol == "unix" {
		return cfg.SocketPath
	}

	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}

// Options converts config into client options
func (cfg Config) Options() []Option {
	options := []Option{
		MetricPrefix(cfg.Prefix),
		MaxPacketSize(cfg.MaxUDPSize),
		IPv6(cfg.IPv6),
		Timeout(cfg.Timeout),
		SendQueueCapacity(cfg.QueueSize),
		DropOnOverflow(cfg.NoFail),
	}

	if cfg.Telegraf {
		options = append(options, TagStyle(TagFormatTelegraf))
	}

	return options
}

// NewClient creates client described by config, extra options are applied last
func (cfg Config) NewClient(options ...Option) (*Client, error) {
	return Dial(cfg.Protocol, cfg.Addr(), append(cfg.Options(), options...)...)
}

var (
	defaultOnce   sync.Once
	defaultClient *Client
	defaultErr    error
)

// Default returns process-wide client configured from the environment
//
// Client is created on first call.
func Default() (*Client, error) {
	defaultOnce.Do(func() {
		var cfg Config

		cfg, defaultErr = ConfigFromEnv()
		if defaultErr != nil {
			return
		}

		defaultClient, defaultErr = cfg.NewClient()
	})

	return defaultClient, defaultErr
}
