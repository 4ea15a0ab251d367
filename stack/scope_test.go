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

package stack_test

import (
	"errors"
	"testing"

	"github.com/nw4j/nativestack/stack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkRelease(t *testing.T) {
	s, _ := newStack(t, 128)
	_, err := s.Allocate(10)
	require.NoError(t, err)

	m := s.Mark()
	for _, n := range []int{1, 2, 3, 4} {
		_, err := s.Allocate(n)
		require.NoError(t, err)
	}
	require.NoError(t, s.Release(m))
	assert.Equal(t, 10, s.Len())
	assert.Equal(t, 1, s.Depth())
	assert.EqualValues(t, 4, s.Stats().Pops)

	// releasing to the same marker again is a no-op
	require.NoError(t, s.Release(m))
	assert.Equal(t, 10, s.Len())
}

func TestReleaseStaleMarker(t *testing.T) {
	s, _ := newStack(t, 128)
	_, err := s.Allocate(10)
	require.NoError(t, err)
	m := s.Mark()
	_, err = s.Allocate(10)
	require.NoError(t, err)

	require.NoError(t, s.Pop())
	require.NoError(t, s.Pop())
	assert.ErrorIs(t, s.Release(m), stack.ErrOrderViolation)

	// same depth as the marker, different layout
	_, err = s.Allocate(7)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Release(m), stack.ErrOrderViolation)
	assert.Equal(t, 7, s.Len())
}

func TestScope(t *testing.T) {
	s, _ := newStack(t, 128)
	_, err := s.Allocate(8)
	require.NoError(t, err)

	err = s.Scope(func() error {
		_, err := s.PushInt32(4)
		require.NoError(t, err)
		_, err = s.PushString("scoped")
		require.NoError(t, err)
		assert.Equal(t, 3, s.Depth())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 8, s.Len())
	assert.Equal(t, 1, s.Depth())

	boom := errors.New("boom")
	err = s.Scope(func() error {
		_, err := s.Allocate(16)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 8, s.Len())

	assert.Panics(t, func() {
		_ = s.Scope(func() error {
			_, _ = s.Allocate(16)
			panic("scope panic")
		})
	})
	assert.Equal(t, 8, s.Len())
}
