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

	"github.com/go-kit/log"
)

var nopLogger = log.NewNopLogger()

// mockTransport records packets it was asked to send
type mockTransport struct {
	kind Kind

	mu      sync.Mutex
	packets []string
	err     error
	closed  bool
}

func (m *mockTransport) Kind() Kind {
	return m.kind
}

func (m *mockTransport) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.packets = append(m.packets, string(data))

	return nil
}

func (m *mockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return nil
}

func (m *mockTransport) Packets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.packets...)
}

func newMockClient(kind Kind, options ...Option) (*Client, *mockTransport) {
	transport := &mockTransport{kind: kind}

	return NewClient(transport, append([]Option{Logger(nopLogger)}, options...)...), transport
}

// fixedRandom makes sampling deterministic
func fixedRandom(value float64) Option {
	return RandomSource(func() float64 { return value })
}
