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

package telemetry_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nw4j/nativestack/memory"
	"github.com/nw4j/nativestack/stack"
	"github.com/nw4j/nativestack/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSource []stack.NamedStats

func (f fixedSource) Snapshot() []stack.NamedStats { return f }

func TestCollector(t *testing.T) {
	src := fixedSource{
		{Name: "a", Stats: stack.Stats{Capacity: 64, InUse: 16, HighWater: 32, Depth: 2, Pushes: 5, Pops: 3, Overflows: 1}},
		{Name: "b", Stats: stack.Stats{Capacity: 128, Reallocations: 2}},
	}
	c := telemetry.NewCollector(src)
	assert.Equal(t, 16, testutil.CollectAndCount(c))

	exp := `
# HELP nativestack_arena_in_use_bytes Bytes currently allocated from the arena.
# TYPE nativestack_arena_in_use_bytes gauge
nativestack_arena_in_use_bytes{arena="a"} 16
nativestack_arena_in_use_bytes{arena="b"} 0
# HELP nativestack_arena_overflows_total Allocations rejected for lack of capacity.
# TYPE nativestack_arena_overflows_total counter
nativestack_arena_overflows_total{arena="a"} 1
nativestack_arena_overflows_total{arena="b"} 0
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(exp),
		"nativestack_arena_in_use_bytes", "nativestack_arena_overflows_total"))
}

func TestCollectorOverGroup(t *testing.T) {
	g, _ := stack.NewGroup(context.Background(), memory.NewGoAllocator(), 32, stack.DefaultConfig())
	g.Go("w0", func(ctx context.Context, s *stack.Stack) error {
		_, err := s.PushString("metrics")
		return err
	})
	require.NoError(t, g.Wait())

	reg := prometheus.NewRegistry()
	reg.MustRegister(telemetry.NewCollector(g))

	exp := `
# HELP nativestack_arena_high_water_bytes Largest number of bytes allocated at once.
# TYPE nativestack_arena_high_water_bytes gauge
nativestack_arena_high_water_bytes{arena="w0"} 8
# HELP nativestack_arena_pushes_total Allocations served.
# TYPE nativestack_arena_pushes_total counter
nativestack_arena_pushes_total{arena="w0"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(exp),
		"nativestack_arena_high_water_bytes", "nativestack_arena_pushes_total"))
}

func TestHandler(t *testing.T) {
	reg := telemetry.NewRegistry(fixedSource{{Name: "x", Stats: stack.Stats{Capacity: 8}}})

	rec := httptest.NewRecorder()
	telemetry.Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `nativestack_arena_capacity_bytes{arena="x"} 8`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
