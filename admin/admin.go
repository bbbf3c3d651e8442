// Package admin implements client of the statsd management interface.
//
// The interface accepts commands over TCP (port 8126 by default):
// "stats", "counters", "timers", "gauges" list values tracked by the server,
// "delcounters", "deltimers", "delgauges" remove stats.
package admin

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
	"bufio"
	"context"
	"net"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// DefaultAddr is the default address of statsd management interface
const DefaultAddr = "localhost:8126"

// Stat types accepted by List
const (
	TypeStats    = "stats"
	TypeCounters = "counters"
	TypeTimers   = "timers"
	TypeGauges   = "gauges"
)

// ErrUnknownType is returned by List for unsupported stat type
var ErrUnknownType = errors.New("admin: unknown stat type")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to statsd management interface
//
// Every call opens a new TCP connection.
type Client struct {
	addr   string
	dialer net.Dialer
}

// Option configures Client
type Option func(c *Client)

// DialTimeout bounds connection establishment
func DialTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.dialer.Timeout = timeout
	}
}

// NewClient creates client for management interface at addr ("host:port")
func NewClient(addr string, options ...Option) *Client {
	if addr == "" {
		addr = DefaultAddr
	}

	c := &Client{addr: addr}

	for _, option := range options {
		option(c)
	}

	return c
}

// List returns stat:value pairs the server is tracking
//
// statType is one of TypeStats, TypeCounters, TypeTimers, TypeGauges.
// Values of "stats" are returned as strings, others as decoded JSON.
func (c *Client) List(ctx context.Context, statType string) (map[string]interface{}, error) {
	switch statType {
	case TypeStats, TypeCounters, TypeTimers, TypeGauges:
	default:
		return nil, errors.Wrapf(ErrUnknownType, "%q", statType)
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close() //nolint: errcheck

	if _, err = conn.Write([]byte(statType + "\n")); err != nil {
		return nil, errors.Wrap(err, "admin: error writing command")
	}

	var txt strings.Builder

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "END" {
			break
		}

		txt.WriteString(strings.ReplaceAll(line, "'", "\""))
		txt.WriteByte('\n')
	}

	if err = scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "admin: error reading response")
	}

	return parseList(txt.String())
}

func parseList(txt string) (map[string]interface{}, error) {
	data := map[string]interface{}{}

	if strings.HasPrefix(txt, "{") {
		if err := json.UnmarshalFromString(txt, &data); err != nil {
			return nil, errors.Wrap(err, "admin: error decoding response")
		}

		return data, nil
	}

	for _, line := range strings.Split(txt, "\n") {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		data[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}

	return data, nil
}

// DelCounters deletes counters from statsd
//
// If statsd receives more data for a deleted counter, it will be recreated.
func (c *Client) DelCounters(ctx context.Context, counters ...string) error {
	return c.command(ctx, "delcounters", counters)
}

// DelTimers deletes timers from statsd
func (c *Client) DelTimers(ctx context.Context, timers ...string) error {
	return c.command(ctx, "deltimers", timers)
}

// DelGauges deletes gauges from statsd
func (c *Client) DelGauges(ctx context.Context, gauges ...string) error {
	return c.command(ctx, "delgauges", gauges)
}

func (c *Client) command(ctx context.Context, cmd string, args []string) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}

	_, err = conn.Write([]byte(cmd + " " + strings.Join(args, " ") + "\n"))
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "admin: error writing command")
	}

	return conn.Close()
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, errors.Wrapf(err, "admin: error connecting to %q", c.addr)
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err = conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, errors.Wrap(err, "admin: error setting deadline")
		}
	}

	return conn, nil
}
