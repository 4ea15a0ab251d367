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
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"
	"golang.org/x/xerrors"
)

// Scalar is the set of fixed-width element types the typed pushes accept.
type Scalar interface {
	constraints.Integer | constraints.Float | ~bool
}

// Element widths of the native types served by the typed pushes.
const (
	SizeofByte   = 1
	SizeofBool   = 1
	SizeofChar   = 2
	SizeofInt16  = 2
	SizeofInt32  = 4
	SizeofFloat  = 4
	SizeofInt64  = 8
	SizeofDouble = 8
)

// Push allocates room for n elements of T and returns the offset of the
// first one.
func Push[T Scalar](s *Stack, n int) (int, error) {
	var zero T
	return s.pushN(n, int(unsafe.Sizeof(zero)))
}

func (s *Stack) pushN(n, width int) (int, error) {
	if s.checks && n > math.MaxInt/width {
		return 0, xerrors.Errorf("stack: %d elements of %d bytes: %w", n, width, ErrOverflow)
	}
	return s.Allocate(n * width)
}

// PushBytes and the other named pushes allocate room for n elements of the
// corresponding native type and return the offset of the first one. Element
// values are read and written with the memory package's accessors, such as
// memory.Int32 and memory.PutInt32.
func (s *Stack) PushBytes(n int) (int, error)   { return s.pushN(n, SizeofByte) }
func (s *Stack) PushBools(n int) (int, error)   { return s.pushN(n, SizeofBool) }
func (s *Stack) PushChars(n int) (int, error)   { return s.pushN(n, SizeofChar) }
func (s *Stack) PushInt16(n int) (int, error)   { return s.pushN(n, SizeofInt16) }
func (s *Stack) PushInt32(n int) (int, error)   { return s.pushN(n, SizeofInt32) }
func (s *Stack) PushFloat32(n int) (int, error) { return s.pushN(n, SizeofFloat) }
func (s *Stack) PushInt64(n int) (int, error)   { return s.pushN(n, SizeofInt64) }
func (s *Stack) PushFloat64(n int) (int, error) { return s.pushN(n, SizeofDouble) }
