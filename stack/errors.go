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

import "golang.org/x/xerrors"

var (
	// ErrAllocation is returned when the backing region cannot be obtained.
	ErrAllocation = xerrors.New("stack: backing memory could not be allocated")
	// ErrInvalidSize is returned for non-positive sizes.
	ErrInvalidSize = xerrors.New("stack: invalid allocation size")
	// ErrOverflow is returned when an allocation does not fit in the
	// remaining capacity. The stack is left unchanged.
	ErrOverflow = xerrors.New("stack: overflow")
	// ErrOwnership is returned when a goroutine other than the owner
	// mutates the stack.
	ErrOwnership = xerrors.New("stack: used from a goroutine that does not own it")
	// ErrEmptyStack is returned by Pop when nothing is allocated.
	ErrEmptyStack = xerrors.New("stack: pop on empty stack")
	// ErrUseAfterDestroy is returned by every operation on a destroyed stack.
	ErrUseAfterDestroy = xerrors.New("stack: use after Destroy")
	// ErrOrderViolation is returned when a pop or release does not match the
	// top of the stack.
	ErrOrderViolation = xerrors.New("stack: allocations released out of order")
)
