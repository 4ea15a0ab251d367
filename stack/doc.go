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

/*
Package stack implements stack-discipline arenas: bump allocators over one
contiguous region with O(1) push and pop and strict last-in first-out
release.

# Basics

	s, err := stack.New(memory.DefaultAllocator, 64<<10, stack.DefaultConfig())
	if err != nil {
		return err
	}
	defer s.Destroy()

	off, err := s.PushInt32(16) // room for 16 int32 values
	if err != nil {
		return err
	}
	buf := s.Bytes(off, 16*stack.SizeofInt32)
	memory.PutInt32(buf, 0, 42)
	...
	s.Pop()

Allocations are offsets into the region. They must be popped in the reverse
order they were pushed; Pop only retires whatever is on top. PopChecked,
Mark/Release and Scope help keep the order straight.

# Ownership

A Stack belongs to the goroutine that created it. Nothing is locked; one
Stack per unit of concurrent work is the intended use. Group starts workers
that each own a Stack, and NewContext/FromContext pass a Stack down a call
graph.

# Checks

Config.EnableChecks validates sizes, the calling goroutine, overflow and pop
order. With checks off Allocate only refuses a destroyed stack and
otherwise bumps the cursor; misuse surfaces when the region is accessed. Pop
on an empty stack and any use of a destroyed stack are reported either way.

# Growth

Reallocate resizes the region and resets the stack: every offset handed out
before is invalid afterwards. When the allocator cannot serve the new size
Reallocate reports false with a nil error and leaves the stack untouched.
Misuse, such as growing a destroyed stack, is an error.
*/
package stack
