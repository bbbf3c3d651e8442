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

import "github.com/pkg/errors"

// Errors returned to the caller on programmer misuse or queue overflow.
//
// Transport failures are never returned from metric methods.
var (
	ErrTimerNotStarted  = errors.New("statsd: timer has not started")
	ErrNoData           = errors.New("statsd: no data recorded")
	ErrAlreadySent      = errors.New("statsd: already sent data")
	ErrTagsNotSupported = errors.New("statsd: tags are not supported by the configured tag style")
	ErrSendQueueFull    = errors.New("statsd: send queue is full")
	ErrClosed           = errors.New("statsd: transport is closed")
)
