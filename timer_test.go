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
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var timingRe = regexp.MustCompile(`^foo:(\d+\.\d{6})\|ms$`)

func parseTiming(t *testing.T, line string) float64 {
	t.Helper()

	m := timingRe.FindStringSubmatch(line)
	require.NotNil(t, m, "unexpected line %q", line)

	ms, err := strconv.ParseFloat(m[1], 64)
	require.NoError(t, err)

	return ms
}

func TestTimerStartStop(t *testing.T) {
	client, transport := newMockClient(KindUDP)

	timer := client.Timer("foo").Start()
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, timer.Stop())

	packets := transport.Packets()
	require.Len(t, packets, 1)
	assert.GreaterOrEqual(t, parseTiming(t, packets[0]), 5.0)

	elapsed, err := timer.Elapsed()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 5.0)

	assert.Equal(t, ErrAlreadySent, timer.Send())
	assert.Len(t, transport.Packets(), 1)
}

func TestTimerErrors(t *testing.T) {
	client, transport := newMockClient(KindUDP)

	timer := client.Timer("foo")

	assert.Equal(t, ErrTimerNotStarted, timer.Stop())
	assert.Equal(t, ErrTimerNotStarted, timer.Measure())
	assert.Equal(t, ErrNoData, timer.Send())

	_, err := timer.Elapsed()
	assert.Equal(t, ErrNoData, err)

	timer.Start()
	assert.Equal(t, ErrNoData, timer.Send())

	_, err = timer.Elapsed()
	assert.Equal(t, ErrNoData, err)

	assert.Empty(t, transport.Packets())
}

func TestTimerMeasureThenSend(t *testing.T) {
	client, transport := newMockClient(KindUDP)

	timer := client.Timer("foo").Start()
	require.NoError(t, timer.Measure())
	assert.Empty(t, transport.Packets())

	elapsed, err := timer.Elapsed()
	require.NoError(t, err)

	require.NoError(t, timer.Send())

	packets := transport.Packets()
	require.Len(t, packets, 1)
	assert.InDelta(t, elapsed, parseTiming(t, packets[0]), 0.000001)
}

func TestTimerRestart(t *testing.T) {
	client, transport := newMockClient(KindUDP)

	timer := client.Timer("foo").Start()
	require.NoError(t, timer.Stop())

	timer.Start()
	require.NoError(t, timer.Stop())

	assert.Len(t, transport.Packets(), 2)
}

func TestTimerOptions(t *testing.T) {
	client, transport := newMockClient(KindUDP, fixedRandom(0.1))

	require.NoError(t, client.Timer("foo", SampleRate(0.5), StringTag("k", "v")).Start().Stop())

	packets := transport.Packets()
	require.Len(t, packets, 1)
	assert.Regexp(t, `^foo:\d+\.\d{6}\|ms\|@0\.5\|#k:v$`, packets[0])
}

func TestTime(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("Success", func(t *testing.T) {
		client, transport := newMockClient(KindUDP)

		called := false
		require.NoError(t, client.Time("foo", func() error {
			called = true
			return nil
		}))

		assert.True(t, called)
		assert.Len(t, transport.Packets(), 1)
	})

	t.Run("Error", func(t *testing.T) {
		client, transport := newMockClient(KindUDP)

		assert.Equal(t, errBoom, client.Time("foo", func() error { return errBoom }))
		assert.Len(t, transport.Packets(), 1)
	})

	t.Run("Panic", func(t *testing.T) {
		client, transport := newMockClient(KindUDP)

		assert.PanicsWithValue(t, "boom", func() {
			_ = client.Time("foo", func() error { panic("boom") })
		})
		assert.Len(t, transport.Packets(), 1)
	})

	t.Run("Pipeline", func(t *testing.T) {
		client, transport := newMockClient(KindUDP)

		require.NoError(t, client.Batch(func(p *Pipeline) error {
			return p.Time("foo", func() error { return nil })
		}))

		packets := transport.Packets()
		require.Len(t, packets, 1)
		parseTiming(t, packets[0])
	})
}

func TestTimed(t *testing.T) {
	client, transport := newMockClient(KindUDP)

	var calls sync.WaitGroup

	fn := client.Timed("foo", func() error {
		time.Sleep(time.Millisecond)
		return nil
	})

	for i := 0; i < 10; i++ {
		calls.Add(1)

		go func() {
			defer calls.Done()

			assert.NoError(t, fn())
		}()
	}

	calls.Wait()

	packets := transport.Packets()
	require.Len(t, packets, 10)

	for _, packet := range packets {
		assert.GreaterOrEqual(t, parseTiming(t, packet), 1.0)
	}
}

func TestTimedAsync(t *testing.T) {
	errBoom := errors.New("boom")

	client, transport := newMockClient(KindUDP)

	release := make(chan struct{})

	fn := client.TimedAsync("foo", func() <-chan error {
		done := make(chan error, 1)

		go func() {
			<-release
			time.Sleep(2 * time.Millisecond)
			done <- errBoom
		}()

		return done
	})

	result := fn()
	assert.Empty(t, transport.Packets())

	close(release)

	assert.Equal(t, errBoom, <-result)

	packets := transport.Packets()
	require.Len(t, packets, 1)
	assert.GreaterOrEqual(t, parseTiming(t, packets[0]), 2.0)

	_, open := <-result
	assert.False(t, open)
}

func TestTimedAsyncClosedChannel(t *testing.T) {
	client, transport := newMockClient(KindUDP)

	fn := client.TimedAsync("foo", func() <-chan error {
		done := make(chan error)
		close(done)

		return done
	})

	assert.NoError(t, <-fn())
	assert.True(t, strings.HasPrefix(transport.Packets()[0], "foo:"))
}

func TestTimedAsyncNilChannel(t *testing.T) {
	client, transport := newMockClient(KindUDP)

	fn := client.TimedAsync("foo", func() <-chan error { return nil })

	select {
	case err := <-fn():
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("nil channel blocked the timer")
	}

	assert.Len(t, transport.Packets(), 1)
}
