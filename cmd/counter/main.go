package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ChizhovVadim/counteruci/internal/logx"
	"github.com/ChizhovVadim/counteruci/pkg/engine"
	"github.com/ChizhovVadim/counteruci/pkg/online"
	"github.com/ChizhovVadim/counteruci/pkg/uci"
)

/*
Counter Copyright (C) 2017-2023 Vadim Chizhov
This program is free software: you can redistribute it and/or modify it under the terms of the GNU General Public License as published by the Free Software Foundation, either version 3 of the License, or (at your option) any later version.
This program is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License for more details.
You should have received a copy of the GNU General Public License along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

const (
	name   = "Counter"
	author = "Vadim Chizhov"
)

var (
	versionName = "dev"
	buildDate   = "(null)"
	gitRevision = "(null)"
)

type config struct {
	logLevel     string
	dev          bool
	hash         int
	threads      int
	bookURL      string
	tablebaseURL string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.logLevel, "loglevel", "info", "log level: debug, info, warn, error or off")
	flag.BoolVar(&cfg.dev, "dev", false, "enable eval, print and perft commands")
	flag.IntVar(&cfg.hash, "hash", 16, "initial hash size in megabytes")
	flag.IntVar(&cfg.threads, "threads", 1, "initial number of search threads")
	flag.StringVar(&cfg.bookURL, "bookurl", online.DefaultBookURL, "online opening book endpoint")
	flag.StringVar(&cfg.tablebaseURL, "tburl", online.DefaultTablebaseURL, "online tablebase endpoint")
	flag.Parse()

	var logger, err = logx.NewLogger(os.Stderr, cfg.logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger.Info().
		Str("name", name).
		Str("versionName", versionName).
		Str("buildDate", buildDate).
		Str("gitRevision", gitRevision).
		Str("runtimeVersion", runtime.Version()).
		Str("goarch", runtime.GOARCH).
		Str("goos", runtime.GOOS).
		Int("numCPU", runtime.NumCPU()).
		Msg("started")

	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, logger, cfg, flag.Args()); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("exit")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger zerolog.Logger, cfg config, args []string) error {
	var client = online.NewClient(
		online.WithBookURL(cfg.bookURL),
		online.WithTablebaseURL(cfg.tablebaseURL),
	)
	var eng = engine.NewEngine(logger, client)
	eng.Hash = cfg.hash
	eng.Threads = cfg.threads

	if len(args) > 0 {
		switch args[0] {
		case "bench":
			var depth = engine.DefaultBenchDepth
			if len(args) > 1 {
				var err error
				depth, err = strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("bench depth: %w", err)
				}
			}
			return engine.Benchmark(ctx, eng, depth, os.Stdout)
		default:
			return fmt.Errorf("unknown command %v", args[0])
		}
	}

	var syzygyPath string
	var protocol *uci.Protocol
	var options = newOptions(eng, &syzygyPath, func(s string) { protocol.InfoString(s) })
	protocol = uci.New(logger, name, author, versionName, eng, options, os.Stdout)
	if cfg.dev {
		protocol.EnableDevCommands()
	}
	return protocol.Run(ctx, os.Stdin)
}
