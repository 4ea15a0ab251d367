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

import (
	"os"
	"runtime"
	"sort"
	"strconv"
	"sync"
)

// CheckedAllocator wraps another Allocator and tracks every live allocation
// together with the caller that made it. It is meant for diagnostics and
// leak hunting in tests; all bookkeeping is serialized by a single mutex.
type CheckedAllocator struct {
	mem Allocator

	mu     sync.Mutex
	sz     int64
	allocs map[uintptr]*dalloc
}

func NewCheckedAllocator(mem Allocator) *CheckedAllocator {
	return &CheckedAllocator{mem: mem, allocs: make(map[uintptr]*dalloc)}
}

// CurrentAlloc returns the number of bytes currently handed out.
func (a *CheckedAllocator) CurrentAlloc() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.sz)
}

// Live returns the number of outstanding allocations.
func (a *CheckedAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.allocs)
}

func (a *CheckedAllocator) Allocate(size int) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := a.mem.Allocate(size)
	if size == 0 || IsNull(out, size) {
		return out
	}

	a.sz += int64(size)
	a.record(addressOf(out), size, allocFrames)
	return out
}

func (a *CheckedAllocator) Reallocate(size int, b []byte) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := a.mem.Reallocate(size, b)
	if IsNull(out, size) {
		return out
	}

	a.sz += int64(size - len(b))
	if len(b) > 0 {
		delete(a.allocs, addressOf(b))
	}
	if size > 0 {
		a.record(addressOf(out), size, reallocFrames)
	}
	return out
}

func (a *CheckedAllocator) Free(b []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	defer a.mem.Free(b)

	if len(b) == 0 {
		return
	}

	a.sz -= int64(len(b))
	delete(a.allocs, addressOf(b))
}

func (a *CheckedAllocator) record(ptr uintptr, size, frames int) {
	info := &dalloc{sz: size}
	if pc, _, l, ok := runtime.Caller(frames); ok {
		info.pc, info.line = pc, l
	}
	a.allocs[ptr] = info
}

// The arenas call Allocate/Reallocate on behalf of their users, so the frame
// recorded for an allocation skips the arena internals to land on the code
// that created or resized the arena.
const (
	defAllocFrames   = 3
	defReallocFrames = 3
)

// Use the environment variables NATIVESTACK_CHECKED_ALLOC_FRAMES and
// NATIVESTACK_CHECKED_REALLOC_FRAMES to control how many frames up the caller
// is looked up when recording an allocation.
var allocFrames, reallocFrames int = defAllocFrames, defReallocFrames

func init() {
	if val, ok := os.LookupEnv("NATIVESTACK_CHECKED_ALLOC_FRAMES"); ok {
		if f, err := strconv.Atoi(val); err == nil {
			allocFrames = f
		}
	}

	if val, ok := os.LookupEnv("NATIVESTACK_CHECKED_REALLOC_FRAMES"); ok {
		if f, err := strconv.Atoi(val); err == nil {
			reallocFrames = f
		}
	}
}

type dalloc struct {
	pc   uintptr
	line int
	sz   int
}

func (d *dalloc) caller() string {
	if f := runtime.FuncForPC(d.pc); f != nil {
		return f.Name()
	}
	return "???"
}

type TestingT interface {
	Errorf(format string, args ...interface{})
	Helper()
}

// Leak describes an allocation that is still outstanding.
type Leak struct {
	Addr   uintptr
	Size   int
	Caller string
	Line   int
}

// Leaks returns the outstanding allocations ordered by address.
func (a *CheckedAllocator) Leaks() []Leak {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Leak, 0, len(a.allocs))
	for ptr, info := range a.allocs {
		out = append(out, Leak{Addr: ptr, Size: info.sz, Caller: info.caller(), Line: info.line})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}

// AssertSize fails t if the outstanding byte count differs from sz. When sz
// is 0 every outstanding allocation is reported as a leak.
func (a *CheckedAllocator) AssertSize(t TestingT, sz int) {
	t.Helper()
	cur := a.CurrentAlloc()
	if sz == 0 {
		for _, l := range a.Leaks() {
			t.Errorf("LEAK of %d bytes FROM %s line %d\n", l.Size, l.Caller, l.Line)
		}
	}

	if cur != sz {
		t.Errorf("invalid memory size exp=%d, got=%d", sz, cur)
	}
}

type CheckedAllocatorScope struct {
	alloc *CheckedAllocator
	sz    int
}

func NewCheckedAllocatorScope(alloc *CheckedAllocator) *CheckedAllocatorScope {
	return &CheckedAllocatorScope{alloc: alloc, sz: alloc.CurrentAlloc()}
}

func (c *CheckedAllocatorScope) CheckSize(t TestingT) {
	sz := c.alloc.CurrentAlloc()
	if c.sz != sz {
		t.Helper()
		t.Errorf("invalid memory size exp=%d, got=%d", c.sz, sz)
	}
}

var (
	_ Allocator = (*CheckedAllocator)(nil)
)
