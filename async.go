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
	"sync"
	"time"

	"github.com/go-kit/log"
	"go.uber.org/atomic"
)

// asyncTransport hands packets over to background send loops
//
// Each packet is queued as a whole, so batches are never interleaved.
type asyncTransport struct {
	next           Transport
	logger         log.Logger
	dropOnOverflow bool
	reportInterval time.Duration

	bufPool   bufPool
	sendQueue chan []byte

	closeLock sync.RWMutex
	closed    bool

	shutdown   chan struct{}
	shutdownWg sync.WaitGroup

	lostPacketsPeriod, lostPacketsOverall atomic.Int64
}

func newAsyncTransport(next Transport, opts *ClientOptions) *asyncTransport {
	t := &asyncTransport{
		next:           next,
		logger:         opts.Logger,
		dropOnOverflow: opts.DropOnOverflow,
		reportInterval: opts.ReportInterval,
		bufPool:        make(bufPool, opts.SendQueueCapacity),
		sendQueue:      make(chan []byte, opts.SendQueueCapacity),
		shutdown:       make(chan struct{}),
	}

	sendLoops := opts.SendLoopCount
	if sendLoops < 1 {
		sendLoops = 1
	}

	for i := 0; i < sendLoops; i++ {
		t.shutdownWg.Add(1)
		go t.sendLoop()
	}

	if t.reportInterval > 0 {
		t.shutdownWg.Add(1)
		go t.reportLoop()
	}

	return t
}

func (t *asyncTransport) Kind() Kind {
	return t.next.Kind()
}

// Send queues a copy of data, it never blocks
func (t *asyncTransport) Send(data []byte) error {
	t.closeLock.RLock()
	defer t.closeLock.RUnlock()

	if t.closed {
		return ErrClosed
	}

	buf := t.bufPool.get(data)

	select {
	case t.sendQueue <- buf:
		return nil
	default:
		// queue is full, we lost some data
		t.bufPool.put(buf)
		t.lostPacketsPeriod.Inc()
		t.lostPacketsOverall.Inc()
	}

	if t.dropOnOverflow {
		return nil
	}

	return ErrSendQueueFull
}

// Close delivers queued packets, stops send loops and closes wrapped transport
func (t *asyncTransport) Close() error {
	t.closeLock.Lock()
	if t.closed {
		t.closeLock.Unlock()
		return nil
	}

	t.closed = true
	close(t.sendQueue)
	close(t.shutdown)
	t.closeLock.Unlock()

	t.shutdownWg.Wait()

	return t.next.Close()
}

// LostPackets returns number of packets dropped on queue overflow
func (t *asyncTransport) LostPackets() int64 {
	return t.lostPacketsOverall.Load()
}
