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

package stack

import (
	"context"
	"sort"

	"github.com/nw4j/nativestack/memory"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// Group runs workers that each get a Stack of their own. The Stack is
// created inside the worker goroutine, so that goroutine is its owner, and
// is destroyed when the worker returns.
//
// Live stacks are kept in a registry so their Stats can be read while the
// workers run; the final Stats of finished workers are retained.
type Group struct {
	mem      memory.Allocator
	capacity int
	cfg      Config

	eg  *errgroup.Group
	ctx context.Context

	live    *xsync.MapOf[string, *Stack]
	retired *xsync.MapOf[string, Stats]
}

// NewGroup returns a Group whose workers allocate stacks of capacity bytes
// from mem. The derived context is cancelled as soon as a worker fails.
func NewGroup(ctx context.Context, mem memory.Allocator, capacity int, cfg Config) (*Group, context.Context) {
	eg, ctx := errgroup.WithContext(ctx)
	return &Group{
		mem:      mem,
		capacity: capacity,
		cfg:      cfg,
		eg:       eg,
		ctx:      ctx,
		live:     xsync.NewMapOf[string, *Stack](),
		retired:  xsync.NewMapOf[string, Stats](),
	}, ctx
}

// SetLimit bounds the number of workers running at once. See
// errgroup.Group.SetLimit.
func (g *Group) SetLimit(n int) { g.eg.SetLimit(n) }

// Go starts a worker called name. fn receives the worker's Stack directly
// and through its context.
func (g *Group) Go(name string, fn func(ctx context.Context, s *Stack) error) {
	g.eg.Go(func() error {
		s, err := New(g.mem, g.capacity, g.cfg)
		if err != nil {
			return xerrors.Errorf("stack: worker %s: %w", name, err)
		}
		g.live.Store(name, s)
		defer func() {
			// fn may have destroyed the stack itself
			_ = s.Destroy()
			g.retired.Store(name, s.Stats())
			g.live.Delete(name)
		}()

		return fn(NewContext(g.ctx, s), s)
	})
}

// Wait blocks until every worker has returned and reports the first error.
func (g *Group) Wait() error { return g.eg.Wait() }

// NamedStats pairs a worker name with the Stats of its stack.
type NamedStats struct {
	Name string
	Stats
}

// Snapshot returns the Stats of running and finished workers sorted by name.
// A running worker's entry wins over a retired one with the same name.
func (g *Group) Snapshot() []NamedStats {
	seen := make(map[string]struct{})
	out := make([]NamedStats, 0, g.live.Size()+g.retired.Size())
	g.live.Range(func(name string, s *Stack) bool {
		seen[name] = struct{}{}
		out = append(out, NamedStats{Name: name, Stats: s.Stats()})
		return true
	})
	g.retired.Range(func(name string, st Stats) bool {
		if _, ok := seen[name]; !ok {
			out = append(out, NamedStats{Name: name, Stats: st})
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
