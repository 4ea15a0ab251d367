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
	"math/bits"

	"golang.org/x/xerrors"
)

// AllocateOrGrow allocates n bytes and, if the stack is too small and holds
// no live allocation, grows it and tries once more. Growing discards every
// offset, so a stack with live allocations returns the overflow unchanged and
// the caller has to unwind first. If the allocator cannot serve the larger
// region the original overflow error is returned.
func AllocateOrGrow(s *Stack, n int) (int, error) {
	off, err := s.Allocate(n)
	if !xerrors.Is(err, ErrOverflow) || s.Depth() > 0 {
		return off, err
	}
	grown, rerr := s.Reallocate(growSize(s.Cap(), n))
	if rerr != nil {
		return 0, rerr
	}
	if !grown {
		return 0, err
	}
	return s.Allocate(n)
}

// growSize doubles capacity until need fits, rounding to a power of two.
func growSize(capacity, need int) int {
	want := capacity * 2
	if want < need {
		want = need
	}
	if want <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(want-1))
}
