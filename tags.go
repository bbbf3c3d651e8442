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

// Tag placement constants
const (
	TagPlacementName = iota
	TagPlacementSuffix
)

// TagFormat controls tag formatting style
type TagFormat struct {
	// Placement is either in the name (TagPlacementName) or as a suffix (TagPlacementSuffix)
	Placement byte
	// FirstSeparator separates the first tag from the rest of the line
	FirstSeparator string
	// OtherSeparator separates 2nd and subsequent tags from each other
	OtherSeparator byte
	// KeyValueSeparator separates tag name and tag value
	KeyValueSeparator byte
}

var (
	// TagFormatDatadog is the Datadog-style suffix: name:value|type|#k:v,k:v
	//
	// This is the default tag style.
	TagFormatDatadog = &TagFormat{
		Placement:         TagPlacementSuffix,
		FirstSeparator:    "|#",
		OtherSeparator:    ',',
		KeyValueSeparator: ':',
	}

	// TagFormatTelegraf puts tags into the name: name,k=v,k=v:value|type
	TagFormatTelegraf = &TagFormat{
		Placement:         TagPlacementName,
		FirstSeparator:    ",",
		OtherSeparator:    ',',
		KeyValueSeparator: '=',
	}

	// TagFormatInfluxDB is the same as TagFormatTelegraf
	TagFormatInfluxDB = TagFormatTelegraf

	// TagFormatGraphite is the Graphite style: name;k=v;k=v:value|type
	TagFormatGraphite = &TagFormat{
		Placement:         TagPlacementName,
		FirstSeparator:    ";",
		OtherSeparator:    ';',
		KeyValueSeparator: '=',
	}
)

const (
	typeString = iota
	typeInt
	typeFloat
)

// Tag is metric-specific tag
//
// Tag is also a MetricOption, so tags are passed directly
// to metric methods:
//
//	client.Incr("requests", 1, StringTag("route", "/api"), IntTag("status", 200))
type Tag struct {
	name     string
	strvalue string
	intvalue int64
	fltvalue float64
	typ      byte
}

// Append formats tag and appends it to the buffer
func (tag Tag) Append(buf []byte, style *TagFormat) []byte {
	buf = append(buf, []byte(tag.name)...)
	buf = append(buf, style.KeyValueSeparator)

	switch tag.typ {
	case typeString:
		buf = append(buf, []byte(tag.strvalue)...)
	case typeInt:
		buf = strconv.AppendInt(buf, tag.intvalue, 10)
	case typeFloat:
		buf = strconv.AppendFloat(buf, tag.fltvalue, 'f', -1, 64)
	}

	return buf
}

func (tag Tag) applyMetric(e *event) {
	e.tags = append(e.tags, tag)
}

// StringTag creates Tag with string value
func StringTag(name, value string) Tag {
	return Tag{name: name, strvalue: value, typ: typeString}
}

// IntTag creates Tag with integer value
func IntTag(name string, value int) Tag {
	return Tag{name: name, intvalue: int64(value), typ: typeInt}
}

// Int64Tag creates Tag with integer value
func Int64Tag(name string, value int64) Tag {
	return Tag{name: name, intvalue: value, typ: typeInt}
}

// Float64Tag creates Tag with floating point value
func Float64Tag(name string, value float64) Tag {
	return Tag{name: name, fltvalue: value, typ: typeFloat}
}
