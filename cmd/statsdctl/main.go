// statsdctl sends single metrics to statsd and queries its management interface.
//
// Usage:
//
//	statsdctl [flags] incr|decr <stat> [count]
//	statsdctl [flags] gauge <stat> <value>
//	statsdctl [flags] timing <stat> <milliseconds>
//	statsdctl [flags] set <stat> <member>
//	statsdctl [flags] admin list stats|counters|timers|gauges
//	statsdctl [flags] admin del counters|timers|gauges <stat>...
//
// Flag defaults come from STATSD_* environment variables.
package main

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
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	statsd "github.com/smira/go-statsd-batch"
	"github.com/smira/go-statsd-batch/admin"
)

func main() {
	logger := log.With(log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr)), "ts", log.DefaultTimestampUTC)

	if err := run(context.Background(), os.Args[1:], os.Stdout, logger); err != nil {
		level.Error(logger).Log("err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, logger log.Logger) error {
	cfg, err := statsd.ConfigFromEnv()
	if err != nil {
		return err
	}

	fs := pflag.NewFlagSet("statsdctl", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: statsdctl [flags] <command> <stat> [value]\n\n%s", fs.FlagUsages())
	}

	fs.StringVar(&cfg.Protocol, "protocol", cfg.Protocol, "transport: udp, tcp or unix")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "statsd host")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "statsd port")
	fs.StringVar(&cfg.SocketPath, "socket", cfg.SocketPath, "statsd unix socket path")
	fs.StringVar(&cfg.Prefix, "prefix", cfg.Prefix, "prefix for stat names")
	fs.IntVar(&cfg.MaxUDPSize, "max-udp-size", cfg.MaxUDPSize, "maximum UDP packet size")
	fs.BoolVar(&cfg.IPv6, "ipv6", cfg.IPv6, "resolve addresses to IPv6")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "connect and write timeout")
	fs.BoolVar(&cfg.Telegraf, "telegraf", cfg.Telegraf, "put tags into the name (telegraf style)")

	rate := fs.Float64("rate", 1, "sample rate")
	tags := fs.StringSliceP("tag", "t", nil, "tag as key=value, may be repeated")
	delta := fs.Bool("delta", false, "send gauge value as delta")
	adminAddr := fs.String("admin-addr", admin.DefaultAddr, "statsd management interface address")

	if err = fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errors.New("command is required")
	}

	if rest[0] == "admin" {
		return runAdmin(ctx, admin.NewClient(*adminAddr, admin.DialTimeout(cfg.Timeout)), rest[1:], stdout)
	}

	opts := []statsd.MetricOption{statsd.SampleRate(*rate)}

	for _, tag := range *tags {
		kv := strings.SplitN(tag, "=", 2)
		if len(kv) != 2 {
			return errors.Errorf("invalid tag %q, expected key=value", tag)
		}

		opts = append(opts, statsd.StringTag(kv[0], kv[1]))
	}

	client, err := cfg.NewClient(statsd.Logger(logger))
	if err != nil {
		return err
	}
	defer client.Close() //nolint: errcheck

	return send(client, rest, *delta, opts)
}

func send(s statsd.Statter, args []string, delta bool, opts []statsd.MetricOption) error {
	if len(args) < 2 {
		return errors.New("expected <command> <stat> [value]")
	}

	cmd, stat, value := args[0], args[1], ""
	if len(args) > 2 {
		value = args[2]
	}

	switch cmd {
	case "incr", "decr":
		count := int64(1)

		if value != "" {
			var err error
			if count, err = strconv.ParseInt(value, 10, 64); err != nil {
				return errors.Wrap(err, "invalid count")
			}
		}

		if cmd == "decr" {
			return s.Decr(stat, count, opts...)
		}

		return s.Incr(stat, count, opts...)
	case "gauge":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return errors.Wrap(err, "invalid gauge value")
		}

		if delta {
			return s.FGaugeDelta(stat, v, opts...)
		}

		return s.FGauge(stat, v, opts...)
	case "timing":
		ms, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return errors.Wrap(err, "invalid timing value")
		}

		return s.Timing(stat, ms, opts...)
	case "set":
		if value == "" {
			return errors.New("set member is required")
		}

		return s.SetAdd(stat, value, opts...)
	default:
		return errors.Errorf("unknown command %q", cmd)
	}
}

func runAdmin(ctx context.Context, c *admin.Client, args []string, stdout io.Writer) error {
	if len(args) < 2 {
		return errors.New("expected admin list <type> or admin del <type> <stat>...")
	}

	switch args[0] {
	case "list":
		data, err := c.List(ctx, args[1])
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(data))
		for key := range data {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		for _, key := range keys {
			fmt.Fprintf(stdout, "%s = %v\n", key, data[key])
		}

		return nil
	case "del":
		names := args[2:]
		if len(names) == 0 {
			return errors.New("no stats to delete")
		}

		switch args[1] {
		case admin.TypeCounters:
			return c.DelCounters(ctx, names...)
		case admin.TypeTimers:
			return c.DelTimers(ctx, names...)
		case admin.TypeGauges:
			return c.DelGauges(ctx, names...)
		default:
			return errors.Errorf("can't delete %q", args[1])
		}
	default:
		return errors.Errorf("unknown admin command %q", args[0])
	}
}
