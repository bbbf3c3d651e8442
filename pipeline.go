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

import "strings"

// Pipeline accumulates metrics and sends them in batches
//
// Lines are buffered until Send is called (or Batch returns), then packed
// into packets of at most MaxPacketSize bytes for datagram transports or
// joined into a single write for stream transports. Packets are handed to
// the parent: a Client sends them, a parent Pipeline buffers them.
//
// Pipeline is not safe for concurrent use.
type Pipeline struct {
	statter

	parent  sink
	maxSize int
	stats   []string
}

func newPipeline(parent sink, opts *ClientOptions, prefix string, maxSize int) *Pipeline {
	p := &Pipeline{parent: parent, maxSize: maxSize}
	p.statter = statter{options: opts, prefix: prefix, out: p}

	return p
}

func (p *Pipeline) after(data string) error {
	p.stats = append(p.stats, data)

	return nil
}

// Pipeline returns nested pipeline, which flushes into this pipeline
func (p *Pipeline) Pipeline() *Pipeline {
	return newPipeline(p, p.options, p.prefix, p.maxSize)
}

// Len returns number of buffered lines
func (p *Pipeline) Len() int {
	return len(p.stats)
}

// Send flushes buffered lines to the parent
//
// Empty pipeline sends nothing. Buffer is cleared before delivery,
// so pipeline could be reused right away.
func (p *Pipeline) Send() error {
	if len(p.stats) == 0 {
		return nil
	}

	stats := p.stats
	p.stats = nil

	if p.maxSize <= 0 {
		return p.parent.after(strings.Join(stats, "\n"))
	}

	return pack(stats, p.maxSize, p.parent.after)
}

// Batch runs fn with the pipeline and sends the pipeline afterwards
//
// Pipeline is sent on every exit path, including panics. Error returned
// from fn takes precedence over the send error.
func (p *Pipeline) Batch(fn func(p *Pipeline) error) (err error) {
	defer func() {
		if sendErr := p.Send(); err == nil {
			err = sendErr
		}
	}()

	return fn(p)
}
