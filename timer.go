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

import "time"

type timingClient interface {
	Timing(stat string, delta float64, opts ...MetricOption) error
}

// Timer measures duration of a scope and reports it as timing metric
//
// Timer goes through states: unstarted, started, stopped and sent.
// Timing is sent at most once per Start.
type Timer struct {
	client timingClient
	stat   string
	opts   []MetricOption

	start    time.Time
	started  bool
	ms       float64
	recorded bool
	sent     bool
}

// Timer returns new unstarted timer for the stat
func (s *statter) Timer(stat string, opts ...MetricOption) *Timer {
	return &Timer{client: s, stat: stat, opts: opts}
}

// Time runs fn and sends its duration as timing metric
//
// Timing is sent even if fn fails or panics, error from fn is returned as is.
func (s *statter) Time(stat string, fn func() error, opts ...MetricOption) error {
	return s.Timer(stat, opts...).Time(fn)
}

// Timed wraps fn, each call of returned function is timed with a fresh Timer
func (s *statter) Timed(stat string, fn func() error, opts ...MetricOption) func() error {
	return func() error {
		return s.Time(stat, fn, opts...)
	}
}

// TimedAsync wraps asynchronous fn, which delivers its result via channel
//
// Each call of returned function starts a fresh Timer, waits for fn to
// complete in background, sends the timing and then forwards the result.
// Channel closed without a value (or nil channel) is treated as success.
func (s *statter) TimedAsync(stat string, fn func() <-chan error, opts ...MetricOption) func() <-chan error {
	return func() <-chan error {
		t := s.Timer(stat, opts...).Start()
		done := fn()
		result := make(chan error, 1)

		go func() {
			var err error
			if done != nil {
				err = <-done
			}

			result <- t.finish(err)
			close(result)
		}()

		return result
	}
}

// Start starts (or restarts) the timer
func (t *Timer) Start() *Timer {
	t.ms = 0
	t.recorded = false
	t.sent = false
	t.start = time.Now()
	t.started = true

	return t
}

// Measure stops the timer without sending the timing
func (t *Timer) Measure() error {
	if !t.started {
		return ErrTimerNotStarted
	}

	t.ms = float64(time.Since(t.start)) / float64(time.Millisecond)
	t.recorded = true

	return nil
}

// Stop stops the timer and sends the timing
func (t *Timer) Stop() error {
	if err := t.Measure(); err != nil {
		return err
	}

	return t.Send()
}

// Send sends recorded timing, it could be called only once after each stop
func (t *Timer) Send() error {
	if !t.recorded {
		return ErrNoData
	}

	if t.sent {
		return ErrAlreadySent
	}

	t.sent = true

	return t.client.Timing(t.stat, t.ms, t.opts...)
}

// Elapsed returns recorded duration in milliseconds
func (t *Timer) Elapsed() (float64, error) {
	if !t.recorded {
		return 0, ErrNoData
	}

	return t.ms, nil
}

// Time starts the timer, runs fn and stops the timer on every exit path
func (t *Timer) Time(fn func() error) (err error) {
	t.Start()

	defer func() {
		err = t.finish(err)
	}()

	return fn()
}

// finish stops the timer, err from the measured code takes precedence
func (t *Timer) finish(err error) error {
	if stopErr := t.Stop(); err == nil {
		err = stopErr
	}

	return err
}
