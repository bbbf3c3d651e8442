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

import "go.uber.org/multierr"

// pack joins lines with '\n' into packets and passes each packet to flush
//
// New packet is started when appending the line would make packet reach
// maxSize. Lines are never split, a line longer than maxSize goes alone.
func pack(stats []string, maxSize int, flush func(data string) error) error {
	var errs error

	buf := make([]byte, 0, maxSize)
	buf = append(buf, stats[0]...)

	for _, stat := range stats[1:] {
		if len(stat)+len(buf)+1 >= maxSize {
			errs = multierr.Append(errs, flush(string(buf)))
			buf = append(buf[:0], stat...)
		} else {
			buf = append(buf, '\n')
			buf = append(buf, stat...)
		}
	}

	return multierr.Append(errs, flush(string(buf)))
}

// bufPool recycles packet buffers of background delivery
type bufPool chan []byte

// get returns a copy of data in a pooled buffer
func (pool bufPool) get(data []byte) []byte {
	var buf []byte

	select {
	case buf = <-pool:
		buf = buf[0:0]
	default:
		buf = make([]byte, 0, len(data))
	}

	return append(buf, data...)
}

// put returns buffer to the pool
func (pool bufPool) put(buf []byte) {
	select {
	case pool <- buf:
	default:
		// pool is full, let GC handle the buf
	}
}
