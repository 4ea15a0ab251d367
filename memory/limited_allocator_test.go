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

package memory_test

import (
	"testing"

	"github.com/nw4j/nativestack/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitedAllocator(t *testing.T) {
	mem := memory.NewLimitedAllocator(memory.NewGoAllocator(), 100)
	assert.Equal(t, 100, mem.Limit())

	a := mem.Allocate(60)
	require.Len(t, a, 60)
	assert.Equal(t, 60, mem.Used())

	assert.Nil(t, mem.Allocate(41))
	assert.Equal(t, 60, mem.Used())

	b := mem.Allocate(40)
	require.Len(t, b, 40)
	assert.Equal(t, 100, mem.Used())

	// growing past the budget fails and leaves the buffer intact
	a[0] = 0xaa
	assert.Nil(t, mem.Reallocate(61, a))
	assert.Equal(t, byte(0xaa), a[0])
	assert.Equal(t, 100, mem.Used())

	// shrinking always fits
	a = mem.Reallocate(20, a)
	require.Len(t, a, 20)
	assert.Equal(t, byte(0xaa), a[0])
	assert.Equal(t, 60, mem.Used())

	mem.Free(a)
	mem.Free(b)
	assert.Equal(t, 0, mem.Used())
}

func TestLimitedAllocatorNegative(t *testing.T) {
	mem := memory.NewLimitedAllocator(memory.NewGoAllocator(), 8)
	assert.PanicsWithValue(t, "memory: negative size", func() { mem.Allocate(-1) })
}
