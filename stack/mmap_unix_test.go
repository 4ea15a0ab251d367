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

//go:build unix

package stack_test

import (
	"testing"

	"github.com/nw4j/nativestack/memory"
	"github.com/nw4j/nativestack/stack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackOverMmapReleasesMappings(t *testing.T) {
	for _, capacity := range []int{100, 4096, 5000} {
		mem := memory.NewMmapAllocator()
		s, err := stack.New(mem, capacity, stack.DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, capacity, s.Cap())
		assert.Positive(t, mem.MappedBytes())

		off, err := s.Allocate(capacity)
		require.NoError(t, err)
		assert.Len(t, s.Bytes(off, capacity), capacity)
		// views stop at the requested capacity, not at the page boundary
		assert.Panics(t, func() { s.Bytes(off, capacity+1) })

		ok, err := s.Reallocate(3 * capacity)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 3*capacity, s.Cap())

		ok, err = s.Reallocate(capacity / 2)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, capacity/2, s.Cap())

		require.NoError(t, s.Destroy())
		assert.Zero(t, mem.MappedBytes(), "capacity %d", capacity)
	}
}
