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
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingTransport holds every Send until release is closed
type blockingTransport struct {
	mockTransport

	started chan struct{}
	release chan struct{}
}

func newBlockingTransport() *blockingTransport {
	return &blockingTransport{
		started: make(chan struct{}, 100),
		release: make(chan struct{}),
	}
}

func (b *blockingTransport) Send(data []byte) error {
	b.started <- struct{}{}
	<-b.release

	return b.mockTransport.Send(data)
}

// syncBuffer is a goroutine-safe log sink
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buf.String()
}

func TestAsyncDelivery(t *testing.T) {
	client, transport := newMockClient(KindUDP, SendQueueCapacity(10), SendLoopCount(2))

	for i := 0; i < 5; i++ {
		require.NoError(t, client.Incr("foo", 1))
	}

	require.NoError(t, client.Close())

	assert.Equal(t, []string{"foo:1|c", "foo:1|c", "foo:1|c", "foo:1|c", "foo:1|c"}, transport.Packets())
	assert.True(t, transport.closed)
	assert.EqualValues(t, 0, client.GetLostPackets())
}

func TestAsyncBatchAtomic(t *testing.T) {
	client, transport := newMockClient(KindUDP, SendQueueCapacity(10), SendLoopCount(4))

	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 10; j++ {
				assert.NoError(t, client.Gauge("foo", -1))
			}
		}()
	}

	wg.Wait()
	require.NoError(t, client.Close())

	packets := transport.Packets()
	assert.Len(t, packets, 40-int(client.GetLostPackets()))

	for _, packet := range packets {
		assert.Equal(t, "foo:0|g\nfoo:-1|g", packet)
	}
}

func TestAsyncDropOnOverflow(t *testing.T) {
	transport := newBlockingTransport()
	client := NewClient(transport, Logger(nopLogger), SendQueueCapacity(1), ReportInterval(0))

	require.NoError(t, client.Incr("foo", 1))
	<-transport.started

	// send loop is busy, queue holds one packet
	require.NoError(t, client.Incr("foo", 2))
	require.NoError(t, client.Incr("foo", 3))
	require.NoError(t, client.Incr("foo", 4))

	assert.EqualValues(t, 2, client.GetLostPackets())

	close(transport.release)
	require.NoError(t, client.Close())

	assert.Equal(t, []string{"foo:1|c", "foo:2|c"}, transport.Packets())
}

func TestAsyncQueueFull(t *testing.T) {
	transport := newBlockingTransport()
	client := NewClient(transport, Logger(nopLogger), SendQueueCapacity(1), DropOnOverflow(false), ReportInterval(0))

	require.NoError(t, client.Incr("foo", 1))
	<-transport.started

	require.NoError(t, client.Incr("foo", 2))
	assert.Equal(t, ErrSendQueueFull, client.Incr("foo", 3))

	err := client.Batch(func(p *Pipeline) error {
		return p.Incr("foo", 4)
	})
	assert.Equal(t, ErrSendQueueFull, err)

	assert.EqualValues(t, 2, client.GetLostPackets())

	close(transport.release)
	require.NoError(t, client.Close())
}

func TestAsyncClosed(t *testing.T) {
	client, transport := newMockClient(KindUDP, SendQueueCapacity(10))

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	assert.NoError(t, client.Incr("foo", 1))
	assert.Empty(t, transport.Packets())
}

func TestAsyncReportLostPackets(t *testing.T) {
	var out syncBuffer

	transport := newBlockingTransport()
	client := NewClient(transport,
		Logger(log.NewLogfmtLogger(&out)),
		SendQueueCapacity(1),
		ReportInterval(10*time.Millisecond),
	)

	require.NoError(t, client.Incr("foo", 1))
	<-transport.started

	require.NoError(t, client.Incr("foo", 2))
	require.NoError(t, client.Incr("foo", 3))

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), `level=warn msg="packets lost (overflow)" count=1`)
	}, time.Second, 5*time.Millisecond)

	close(transport.release)
	require.NoError(t, client.Close())
}
