/*
Package statsd implements a batching statsd client.

The client turns counters, gauges, timers and sets into statsd text lines
and ships them over UDP, TCP or a Unix stream socket. Lines may be sent one
by one or collected into a Pipeline, which packs them into datagrams no larger
than the configured packet size (512 bytes by default), or joins them into a
single write for stream transports.

Wire format:

	[<prefix>.]<name>:<value>|<type>[|@<rate>][|#<k>:<v>,...]

or, with the Telegraf tag style:

	[<prefix>.]<name>,<k>=<v>,...:<value>|<type>[|@<rate>]

Architecture:

 * metric methods encode a line (applying prefix, sampling rate and tags) and
   hand it to the owner: a Client sends it through its Transport, a Pipeline
   appends it to its buffer
 * pipeline flush packs buffered lines into packets and hands each packet to
   its parent, so nested pipelines never transmit prematurely
 * negative absolute gauges are written as a "0" reset followed by the value,
   as a single entry, so the pair never gets split across packets
 * transport errors are logged and dropped, metrics are best effort
 * optionally, packets are handed to background send loops through a bounded
   queue, overflowing packets are either dropped or reported

Ideas were borrowed from the following statsd clients:

 * https://github.com/smira/go-statsd
 * https://github.com/alexcesaro/statsd/

*/
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
