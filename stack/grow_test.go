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
	"fmt"
	"testing"

	"github.com/nw4j/nativestack/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowSize(t *testing.T) {
	tests := []struct {
		capacity, need, exp int
	}{
		{16, 20, 32},
		{16, 100, 128},
		{64, 1, 128},
		{0, 0, 1},
		{100, 10, 256},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d_%d", test.capacity, test.need), func(t *testing.T) {
			assert.Equal(t, test.exp, growSize(test.capacity, test.need))
		})
	}
}

func TestAllocateOrGrow(t *testing.T) {
	s, err := New(memory.NewGoAllocator(), 16, DefaultConfig())
	require.NoError(t, err)

	off, err := AllocateOrGrow(s, 40)
	require.NoError(t, err)
	assert.Equal(t, 0, off)
	assert.Equal(t, 64, s.Cap())

	// live allocations block growth
	_, err = AllocateOrGrow(s, 100)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, 64, s.Cap())
	assert.Equal(t, 40, s.Len())

	// invalid sizes are not retried
	require.NoError(t, s.Pop())
	_, err = AllocateOrGrow(s, 0)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestAllocateOrGrowFailure(t *testing.T) {
	s, err := New(memory.NewLimitedAllocator(memory.NewGoAllocator(), 32), 16, DefaultConfig())
	require.NoError(t, err)

	_, err = AllocateOrGrow(s, 64)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, 16, s.Cap())
}
