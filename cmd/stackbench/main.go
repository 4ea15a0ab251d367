// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	"unicode/utf16"

	"github.com/docopt/docopt-go"
	"github.com/nw4j/nativestack/config"
	"github.com/nw4j/nativestack/memory"
	"github.com/nw4j/nativestack/stack"
	"github.com/nw4j/nativestack/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"golang.org/x/xerrors"
)

const usage = `Stack arena workload driver.
Usage:
  stackbench -h | --help
  stackbench run [--config=FILE] [--workers=N] [--frames=N] [--depth=N]
                 [--max-size=N] [--seed=N] [--serve]
  stackbench utf8 [--config=FILE] <text>
Options:
  -h --help          Show this screen.
  --config=FILE      TOML configuration file.
  --workers=N        Number of workers, each owning one arena [default: 4].
  --frames=N         Frames per worker; a frame pushes, verifies and pops [default: 1000].
  --depth=N          Allocations per frame [default: 16].
  --max-size=N       Largest single allocation in bytes [default: 512].
  --seed=N           Random seed [default: 1].
  --serve            Keep serving metrics after the workload until interrupted.`

type cliArgs struct {
	Help    bool   `docopt:"--help"`
	Run     bool   `docopt:"run"`
	UTF8    bool   `docopt:"utf8"`
	Config  string `docopt:"--config"`
	Workers string `docopt:"--workers"`
	Frames  string `docopt:"--frames"`
	Depth   string `docopt:"--depth"`
	MaxSize string `docopt:"--max-size"`
	Seed    string `docopt:"--seed"`
	Serve   bool   `docopt:"--serve"`
	Text    string `docopt:"<text>"`
}

type runOptions struct {
	Workers int
	Frames  int
	Depth   int
	MaxSize int
	Seed    uint64
	Serve   bool
}

func parseArgs(p *docopt.Parser, argv []string) (cliArgs, error) {
	var args cliArgs
	opts, err := p.ParseArgs(usage, argv, "")
	if err != nil {
		return args, err
	}
	if err := opts.Bind(&args); err != nil {
		return args, xerrors.Errorf("stackbench: %w", err)
	}
	return args, nil
}

func (a cliArgs) runOptions() (runOptions, error) {
	var err error
	ro := runOptions{Serve: a.Serve}
	ints := []struct {
		flag, val string
		dst       *int
	}{
		{"--workers", a.Workers, &ro.Workers},
		{"--frames", a.Frames, &ro.Frames},
		{"--depth", a.Depth, &ro.Depth},
		{"--max-size", a.MaxSize, &ro.MaxSize},
	}
	for _, o := range ints {
		if *o.dst, err = strconv.Atoi(o.val); err != nil || *o.dst <= 0 {
			return ro, xerrors.Errorf("stackbench: %s needs a positive integer", o.flag)
		}
	}
	if ro.Seed, err = strconv.ParseUint(a.Seed, 10, 64); err != nil {
		return ro, xerrors.New("stackbench: --seed needs an unsigned integer")
	}
	return ro, nil
}

func main() {
	args, err := parseArgs(docopt.DefaultParser, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	cfg, err := config.Load(args.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	log := cfg.NewLogger(os.Stderr)

	if args.UTF8 {
		if err := dumpUTF8(cfg, log, args.Text); err != nil {
			log.Fatal().Err(err).Msg("utf8 failed")
		}
		return
	}

	ro, err := args.runOptions()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, log, ro); err != nil {
		log.Fatal().Err(err).Msg("workload failed")
	}
}

func run(ctx context.Context, cfg *config.Configuration, log zerolog.Logger, ro runOptions) error {
	mem, checked, err := cfg.NewAllocator()
	if err != nil {
		return err
	}

	g, _ := stack.NewGroup(ctx, mem, cfg.Stack.Capacity, cfg.StackConfig(log.With().Str("component", "stack").Logger()))

	var srv *http.Server
	if cfg.Prometheus.Enabled || ro.Serve {
		srv, err = serveMetrics(cfg.Prometheus.Address, telemetry.NewRegistry(g), log)
		if err != nil {
			return err
		}
		defer srv.Close()
	}

	log.Info().
		Int("workers", ro.Workers).
		Int("frames", ro.Frames).
		Int("capacity", cfg.Stack.Capacity).
		Bool("checks", cfg.Stack.EnableChecks).
		Str("allocator", string(cfg.Allocator.Kind)).
		Msg("starting workload")

	start := time.Now()
	for i := 0; i < ro.Workers; i++ {
		name := fmt.Sprintf("worker-%02d", i)
		r := rand.New(rand.NewSource(ro.Seed + uint64(i)))
		wlog := log.With().Str("worker", name).Logger()
		g.Go(name, func(ctx context.Context, s *stack.Stack) error {
			return work(ctx, s, r, ro, wlog)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	for _, st := range g.Snapshot() {
		log.Info().
			Str("worker", st.Name).
			Int("capacity", st.Capacity).
			Int("high_water", st.HighWater).
			Int64("pushes", st.Pushes).
			Int64("pops", st.Pops).
			Int64("overflows", st.Overflows).
			Int64("reallocations", st.Reallocations).
			Msg("worker done")
	}
	log.Info().Dur("elapsed", elapsed).Msg("workload finished")

	if checked != nil {
		for _, l := range checked.Leaks() {
			log.Warn().Int("bytes", l.Size).Str("caller", l.Caller).Int("line", l.Line).Msg("leaked allocation")
		}
	}

	if ro.Serve && srv != nil {
		log.Info().Str("address", cfg.Prometheus.Address).Msg("serving metrics, interrupt to exit")
		<-ctx.Done()
	}
	return nil
}

// work runs ro.Frames frames. Each frame pushes ro.Depth allocations filled
// with a pattern, checks the pattern survived and pops them in reverse. The
// arena is grown up front whenever a frame would not fit, so frames never
// overflow, with or without checks.
func work(ctx context.Context, s *stack.Stack, r *rand.Rand, ro runOptions, log zerolog.Logger) error {
	offsets := make([]int, 0, ro.Depth)
	sizes := make([]int, 0, ro.Depth)

	for f := 0; f < ro.Frames; f++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		need := 0
		sizes = sizes[:0]
		for d := 0; d < ro.Depth; d++ {
			n := 1 + r.Intn(ro.MaxSize)
			sizes = append(sizes, n)
			need += n
		}

		if need > s.Cap() {
			newCap := s.Cap()
			for newCap < need {
				newCap *= 2
			}
			grown, err := s.Reallocate(newCap)
			if err != nil {
				return err
			}
			if !grown {
				return xerrors.Errorf("stackbench: arena could not grow to %d bytes", newCap)
			}
			log.Debug().Int("capacity", newCap).Int("frame", f).Msg("arena grown")
		}

		var err error
		if offsets, err = frame(s, sizes, offsets[:0], byte(f)); err != nil {
			return err
		}
	}
	return s.Reset()
}

func frame(s *stack.Stack, sizes, offsets []int, pattern byte) ([]int, error) {
	for i, n := range sizes {
		off, err := s.PushBytes(n)
		if err != nil {
			return offsets, err
		}
		memory.Set(s.Bytes(off, n), pattern+byte(i))
		offsets = append(offsets, off)
	}

	for i, off := range offsets {
		b := s.Bytes(off, sizes[i])
		if b[0] != pattern+byte(i) || b[len(b)-1] != pattern+byte(i) {
			return offsets, xerrors.Errorf("stackbench: allocation %d at offset %d was overwritten", i, off)
		}
	}
	return offsets, unwind(s, offsets)
}

func unwind(s *stack.Stack, offsets []int) error {
	for i := len(offsets) - 1; i >= 0; i-- {
		if err := s.PopChecked(offsets[i]); err != nil {
			return err
		}
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, log zerolog.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, xerrors.Errorf("stackbench: metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !xerrors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	log.Info().Str("address", ln.Addr().String()).Msg("metrics listening")
	return srv, nil
}

func dumpUTF8(cfg *config.Configuration, log zerolog.Logger, text string) error {
	mem, _, err := cfg.NewAllocator()
	if err != nil {
		return err
	}
	s, err := stack.New(mem, cfg.Stack.Capacity, cfg.StackConfig(log))
	if err != nil {
		return err
	}
	defer s.Destroy()

	if need := stack.EncodedLen(utf16.Encode([]rune(text))) + 1; need > s.Cap() {
		grown, err := s.Reallocate(need)
		if err != nil {
			return err
		}
		if !grown {
			return xerrors.Errorf("stackbench: arena could not grow to %d bytes", need)
		}
	}

	off, err := s.PushString(text)
	if err != nil {
		return err
	}
	n := s.Len() - off
	log.Debug().Int("offset", off).Int("bytes", n).Uint64("address", uint64(s.Address())).Msg("text pushed")
	fmt.Printf("% x\n", s.Bytes(off, n))
	return s.Pop()
}
