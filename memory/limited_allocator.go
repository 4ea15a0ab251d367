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

package memory

import "sync/atomic"

// LimitedAllocator caps the number of bytes another Allocator may hand out.
// Requests that would exceed the budget get the null result instead of
// memory, which is how out-of-memory conditions surface to callers.
type LimitedAllocator struct {
	mem   Allocator
	limit int64
	used  atomic.Int64
}

// NewLimitedAllocator returns an allocator that serves at most limit bytes
// from mem at any one time.
func NewLimitedAllocator(mem Allocator, limit int) *LimitedAllocator {
	return &LimitedAllocator{mem: mem, limit: int64(limit)}
}

// Used returns the number of bytes currently charged against the budget.
func (a *LimitedAllocator) Used() int { return int(a.used.Load()) }

// Limit returns the configured budget in bytes.
func (a *LimitedAllocator) Limit() int { return int(a.limit) }

func (a *LimitedAllocator) charge(delta int64) bool {
	for {
		cur := a.used.Load()
		if cur+delta > a.limit {
			return false
		}
		if a.used.CompareAndSwap(cur, cur+delta) {
			return true
		}
	}
}

func (a *LimitedAllocator) Allocate(size int) []byte {
	if size < 0 {
		panic("memory: negative size")
	}
	if !a.charge(int64(size)) {
		return nil
	}
	out := a.mem.Allocate(size)
	if IsNull(out, size) {
		a.used.Add(-int64(size))
		return nil
	}
	return out
}

func (a *LimitedAllocator) Reallocate(size int, b []byte) []byte {
	if size < 0 {
		panic("memory: negative size")
	}
	delta := int64(size - len(b))
	if delta > 0 && !a.charge(delta) {
		return nil
	}
	out := a.mem.Reallocate(size, b)
	if IsNull(out, size) {
		if delta > 0 {
			a.used.Add(-delta)
		}
		return nil
	}
	if delta < 0 {
		a.used.Add(delta)
	}
	return out
}

func (a *LimitedAllocator) Free(b []byte) {
	a.used.Add(-int64(len(b)))
	a.mem.Free(b)
}

var _ Allocator = (*LimitedAllocator)(nil)
