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
	"time"

	"github.com/go-kit/log/level"
)

// sendLoop delivers queued packets until the queue is closed
func (t *asyncTransport) sendLoop() {
	defer t.shutdownWg.Done()

	for buf := range t.sendQueue {
		if err := t.next.Send(buf); err != nil {
			level.Warn(t.logger).Log("msg", "error sending metrics", "err", err)
		}

		// return buffer to the pool
		t.bufPool.put(buf)
	}
}

// reportLoop reports periodically number of packets lost
func (t *asyncTransport) reportLoop() {
	defer t.shutdownWg.Done()

	reportTicker := time.NewTicker(t.reportInterval)
	defer reportTicker.Stop()

	for {
		select {
		case <-t.shutdown:
			return
		case <-reportTicker.C:
			lostPeriod := t.lostPacketsPeriod.Swap(0)
			if lostPeriod > 0 {
				level.Warn(t.logger).Log("msg", "packets lost (overflow)", "count", lostPeriod)
			}
		}
	}
}
