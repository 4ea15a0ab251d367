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

package memory

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sys/unix"
)

// MmapAllocator serves every request from its own anonymous private mapping,
// keeping arena memory outside the Go heap. Mappings are page granular. The
// length of every live mapping is recorded against its base address, so Free
// and Reallocate accept any slice that starts at the mapping, whatever its
// capacity.
type MmapAllocator struct {
	pageSize int
	mapped   atomic.Int64
	mappings *xsync.MapOf[uintptr, int]
}

func NewMmapAllocator() *MmapAllocator {
	return &MmapAllocator{
		pageSize: unix.Getpagesize(),
		mappings: xsync.NewMapOf[uintptr, int](),
	}
}

// MappedBytes returns the number of bytes currently mapped, rounded to pages.
func (a *MmapAllocator) MappedBytes() int64 { return a.mapped.Load() }

func (a *MmapAllocator) mapLen(size int) int {
	if isMultipleOfPowerOf2(size, a.pageSize) {
		return size
	}
	return roundToPowerOf2(size, a.pageSize)
}

// mapping returns the full mapping b starts, or nil if b is empty. It panics
// when b was not returned by this allocator.
func (a *MmapAllocator) mapping(b []byte) []byte {
	if cap(b) == 0 {
		return nil
	}
	base := unsafe.SliceData(b)
	n, ok := a.mappings.Load(uintptr(unsafe.Pointer(base)))
	if !ok {
		panic(fmt.Sprintf("memory: %p was not mapped by this allocator", base))
	}
	return unsafe.Slice(base, n)
}

func (a *MmapAllocator) Allocate(size int) []byte {
	if size < 0 {
		panic("memory: negative size")
	}
	if size == 0 {
		return []byte{}
	}

	n := a.mapLen(size)
	buf, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil
	}
	a.mappings.Store(addressOf(buf), n)
	a.mapped.Add(int64(n))
	return buf[:size:n]
}

// Reallocate grows or shrinks in place while the size fits the mapping.
// Otherwise it maps a new region, copies the common prefix and unmaps the old
// region. If the new mapping cannot be created nil is returned and b stays
// mapped and valid.
func (a *MmapAllocator) Reallocate(size int, b []byte) []byte {
	if size < 0 {
		panic("memory: negative size")
	}
	if size == len(b) {
		return b
	}
	if full := a.mapping(b); size > 0 && size <= len(full) {
		out := full[:size]
		if size > len(b) {
			Set(out[len(b):], 0)
		}
		return out
	}

	out := a.Allocate(size)
	if IsNull(out, size) {
		return nil
	}
	copy(out, b)
	a.Free(b)
	return out
}

// Free unmaps the mapping b starts. It panics if the mapping cannot be
// released.
func (a *MmapAllocator) Free(b []byte) {
	full := a.mapping(b)
	if full == nil {
		return
	}
	if err := unix.Munmap(full); err != nil {
		panic(fmt.Sprintf("memory: munmap of %d bytes at %p: %v", len(full), unsafe.SliceData(full), err))
	}
	a.mappings.Delete(addressOf(full))
	a.mapped.Add(-int64(len(full)))
}

var _ Allocator = (*MmapAllocator)(nil)
