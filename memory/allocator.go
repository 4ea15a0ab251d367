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

const (
	alignment = 64
)

// Allocator is the raw memory capability the arenas are built on.
//
// Allocate and Reallocate return a buffer of exactly size bytes. A nil (or
// short) result for a positive size is the null sentinel and signals that the
// memory could not be obtained; the input buffer of a failed Reallocate is
// left untouched and remains owned by the caller.
type Allocator interface {
	Allocate(size int) []byte
	Reallocate(size int, b []byte) []byte
	Free(b []byte)
}

// DefaultAllocator is a default implementation of Allocator and can be used anywhere
// an Allocator is required.
//
// DefaultAllocator is safe to use from multiple goroutines.
var DefaultAllocator Allocator = NewGoAllocator()

// IsNull reports whether b is the null result of an Allocate or Reallocate
// call that asked for size bytes.
func IsNull(b []byte, size int) bool {
	return size > 0 && len(b) < size
}
