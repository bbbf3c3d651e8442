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

import "strconv"

// MetricOption customizes single metric call
//
// Implemented by Tag and by SampleRate
type MetricOption interface {
	applyMetric(e *event)
}

// event is a metric being encoded, it lives only during encoding
type event struct {
	rate float64
	tags []Tag
}

func newEvent(opts []MetricOption) event {
	e := event{rate: 1}

	for _, opt := range opts {
		opt.applyMetric(&e)
	}

	return e
}

type sampleRate float64

func (r sampleRate) applyMetric(e *event) {
	e.rate = float64(r)
}

// SampleRate sends the metric with probability rate, the rate is appended
// to the line (|@rate) so that statsd server scales the value back
func SampleRate(rate float64) MetricOption {
	return sampleRate(rate)
}

// sampled draws from the random source and reports whether event with
// given rate should be sent
func (s *statter) sampled(rate float64) bool {
	if rate >= 1 {
		return true
	}

	return s.options.RandomSource() <= rate
}

func (s *statter) hasTags(e *event) bool {
	return len(e.tags) > 0 || len(s.options.DefaultTags) > 0
}

// prepare checks and encodes the event into a wire line
//
// Empty line is returned when sampling suppresses the event.
func (s *statter) prepare(stat string, value []byte, e *event) (string, error) {
	if s.options.TagFormat == nil && s.hasTags(e) {
		return "", ErrTagsNotSupported
	}

	if !s.sampled(e.rate) {
		return "", nil
	}

	return s.encode(stat, value, e), nil
}

// encode renders [prefix.]stat[tags]:value[|@rate][tags]
//
// value already carries the type suffix (e.g. "1|c").
func (s *statter) encode(stat string, value []byte, e *event) string {
	buf := make([]byte, 0, len(s.prefix)+len(stat)+len(value)+32)

	if s.prefix != "" {
		buf = append(buf, s.prefix...)
		buf = append(buf, '.')
	}

	buf = append(buf, stat...)

	style := s.options.TagFormat
	tagged := style != nil && s.hasTags(e)

	if tagged && style.Placement == TagPlacementName {
		buf = s.formatTags(buf, e.tags)
	}

	buf = append(buf, ':')
	buf = append(buf, value...)

	if e.rate < 1 {
		buf = append(buf, "|@"...)
		buf = strconv.AppendFloat(buf, e.rate, 'f', -1, 64)
	}

	if tagged && style.Placement == TagPlacementSuffix {
		buf = s.formatTags(buf, e.tags)
	}

	return string(buf)
}

// formatTags appends default tags followed by tags
func (s *statter) formatTags(buf []byte, tags []Tag) []byte {
	style := s.options.TagFormat
	first := true

	for _, list := range [2][]Tag{s.options.DefaultTags, tags} {
		for _, tag := range list {
			if first {
				buf = append(buf, style.FirstSeparator...)
				first = false
			} else {
				buf = append(buf, style.OtherSeparator)
			}

			buf = tag.Append(buf, style)
		}
	}

	return buf
}
