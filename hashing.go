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
	"bytes"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/multierr"
)

// DefaultHashReplicas is the number of virtual nodes per destination on the HashRing
const DefaultHashReplicas = 64

// Selector picks destination index for the stat name
type Selector interface {
	Select(stat string) int
}

// HashRing is a consistent hashing Selector
//
// Adding or removing destination moves only stats owned by that destination.
type HashRing struct {
	points []uint64
	owners []int
}

// NewHashRing builds ring over nodes, each node gets replicas virtual nodes
func NewHashRing(nodes []string, replicas int) *HashRing {
	if replicas < 1 {
		replicas = DefaultHashReplicas
	}

	type point struct {
		hash  uint64
		owner int
	}

	points := make([]point, 0, len(nodes)*replicas)

	for owner, node := range nodes {
		for i := 0; i < replicas; i++ {
			points = append(points, point{hash: xxhash.Sum64String(node + "#" + strconv.Itoa(i)), owner: owner})
		}
	}

	sort.Slice(points, func(i, j int) bool { return points[i].hash < points[j].hash })

	r := &HashRing{
		points: make([]uint64, len(points)),
		owners: make([]int, len(points)),
	}

	for i, p := range points {
		r.points[i] = p.hash
		r.owners[i] = p.owner
	}

	return r
}

// Select implements Selector
func (r *HashRing) Select(stat string) int {
	if len(r.points) == 0 {
		return 0
	}

	hash := xxhash.Sum64String(stat)

	i := sort.Search(len(r.points), func(i int) bool { return r.points[i] >= hash })
	if i == len(r.points) {
		i = 0
	}

	return r.owners[i]
}

// HashingTransport shards stats across several transports
//
// Each packet is split into lines, lines are grouped by destination picked
// by the selector from the stat name and every group is sent as one packet.
// Line order within a destination is preserved.
type HashingTransport struct {
	selector   Selector
	transports []Transport
}

// NewHashingTransport creates sharding transport
func NewHashingTransport(selector Selector, transports ...Transport) *HashingTransport {
	return &HashingTransport{selector: selector, transports: transports}
}

// Kind implements Transport
func (t *HashingTransport) Kind() Kind {
	if len(t.transports) == 0 {
		return KindUDP
	}

	return t.transports[0].Kind()
}

// Send implements Transport
func (t *HashingTransport) Send(data []byte) error {
	switch len(t.transports) {
	case 0:
		return ErrClosed
	case 1:
		return t.transports[0].Send(data)
	}

	groups := make([][]byte, len(t.transports))

	for len(data) > 0 {
		line := data

		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			data = nil
		}

		idx := t.index(statName(line))
		if len(groups[idx]) > 0 {
			groups[idx] = append(groups[idx], '\n')
		}

		groups[idx] = append(groups[idx], line...)
	}

	var errs error

	for i, group := range groups {
		if len(group) > 0 {
			errs = multierr.Append(errs, t.transports[i].Send(group))
		}
	}

	return errs
}

// Close implements Transport
func (t *HashingTransport) Close() error {
	var errs error

	for _, transport := range t.transports {
		errs = multierr.Append(errs, transport.Close())
	}

	return errs
}

func (t *HashingTransport) index(stat string) int {
	n := len(t.transports)

	return (t.selector.Select(stat)%n + n) % n
}

// statName extracts metric name (with prefix) from the line
func statName(line []byte) string {
	if i := bytes.IndexAny(line, ":,;"); i >= 0 {
		return string(line[:i])
	}

	return string(line)
}

// NewHashingClient creates client sharding stats over UDP addresses
// with consistent hashing of stat names
func NewHashingClient(addrs []string, options ...Option) (*Client, error) {
	opts := defaultOptions()

	for _, option := range options {
		option(&opts)
	}

	transports := make([]Transport, 0, len(addrs))

	for _, addr := range addrs {
		transport, err := NewUDPTransport(addr, opts.IPv6)
		if err != nil {
			for _, t := range transports {
				_ = t.Close()
			}

			return nil, err
		}

		transports = append(transports, transport)
	}

	return newClient(NewHashingTransport(NewHashRing(addrs, DefaultHashReplicas), transports...), &opts), nil
}
