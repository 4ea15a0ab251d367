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
	"sync/atomic"

	"github.com/nw4j/nativestack/internal/debug"
	"github.com/nw4j/nativestack/memory"
	"github.com/petermattis/goid"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// Stack is a bump allocator over a single region with strict LIFO release.
//
// Every Allocate records its size in a ledger so Pop can retire the most
// recent allocation without the caller passing its size back. Allocations are
// returned as offsets into the region; Bytes turns an offset into a view that
// stays valid until the allocation is popped, the stack is reset, reallocated
// or destroyed.
//
// A Stack belongs to the goroutine that created it. It has no internal
// locking; with checks enabled any mutation from another goroutine fails with
// ErrOwnership.
type Stack struct {
	mem memory.Allocator
	buf []byte

	cursor int
	ledger []int

	owner     int64
	checks    bool
	destroyed bool
	log       zerolog.Logger

	counters
}

// counters are published with atomics so Stats can be read by goroutines
// other than the owner, e.g. a metrics scrape.
type counters struct {
	capacity  atomic.Int64
	inUse     atomic.Int64
	depth     atomic.Int64
	highWater atomic.Int64
	pushes    atomic.Int64
	pops      atomic.Int64
	overflows atomic.Int64
	reallocs  atomic.Int64
	dead      atomic.Bool
}

// New allocates a region of capacity bytes from mem and returns a Stack owned
// by the calling goroutine.
func New(mem memory.Allocator, capacity int, cfg Config) (*Stack, error) {
	if capacity <= 0 {
		return nil, xerrors.Errorf("stack: capacity %d: %w", capacity, ErrInvalidSize)
	}
	buf := mem.Allocate(capacity)
	if memory.IsNull(buf, capacity) {
		return nil, xerrors.Errorf("stack: %d bytes: %w", capacity, ErrAllocation)
	}

	s := &Stack{
		mem:    mem,
		buf:    buf[:capacity],
		ledger: make([]int, 0, 16),
		owner:  goid.Get(),
		checks: cfg.EnableChecks,
		log:    cfg.Logger,
	}
	s.capacity.Store(int64(capacity))
	return s, nil
}

// Allocate reserves n bytes at the top of the stack and returns their offset
// from the start of the region.
func (s *Stack) Allocate(n int) (int, error) {
	if s.checks {
		if err := s.checkAlloc(n); err != nil {
			return 0, err
		}
	} else if s.destroyed {
		return 0, ErrUseAfterDestroy
	}

	off := s.cursor
	s.cursor += n
	s.ledger = append(s.ledger, n)
	s.publish()
	s.pushes.Add(1)
	if hw := int64(s.cursor); hw > s.highWater.Load() {
		s.highWater.Store(hw)
	}
	s.assertLedger()
	return off, nil
}

func (s *Stack) checkAlloc(n int) error {
	if s.destroyed {
		return ErrUseAfterDestroy
	}
	if n <= 0 {
		return xerrors.Errorf("stack: %d bytes: %w", n, ErrInvalidSize)
	}
	if err := s.checkOwner(); err != nil {
		return err
	}
	if n > len(s.buf)-s.cursor {
		s.overflows.Add(1)
		s.log.Warn().
			Int("capacity", len(s.buf)).
			Int("cursor", s.cursor).
			Int("requested", n).
			Msg("stack overflow")
		return xerrors.Errorf("stack: capacity %d, requested size %d: %w", len(s.buf), s.cursor+n, ErrOverflow)
	}
	return nil
}

func (s *Stack) checkOwner() error {
	if id := goid.Get(); id != s.owner {
		return xerrors.Errorf("stack: owner goroutine %d, caller %d: %w", s.owner, id, ErrOwnership)
	}
	return nil
}

// checkMutate validates the common preconditions of the non hot path
// mutators. Destroyed is always checked, ownership only with checks on.
func (s *Stack) checkMutate() error {
	if s.destroyed {
		return ErrUseAfterDestroy
	}
	if s.checks {
		return s.checkOwner()
	}
	return nil
}

// Pop retires the most recent allocation.
func (s *Stack) Pop() error {
	if err := s.checkMutate(); err != nil {
		return err
	}
	top := len(s.ledger) - 1
	if top < 0 {
		return ErrEmptyStack
	}
	s.cursor -= s.ledger[top]
	s.ledger = s.ledger[:top]
	s.publish()
	s.pops.Add(1)
	s.assertLedger()
	return nil
}

// PopChecked retires the most recent allocation after verifying, when checks
// are enabled, that off is where that allocation starts.
func (s *Stack) PopChecked(off int) error {
	if s.checks && !s.destroyed {
		if top := len(s.ledger) - 1; top >= 0 && s.cursor-s.ledger[top] != off {
			return xerrors.Errorf("stack: pop of offset %d, top starts at %d: %w", off, s.cursor-s.ledger[top], ErrOrderViolation)
		}
	}
	return s.Pop()
}

// Reset releases every allocation at once and keeps the region. Calling it
// repeatedly has no further effect.
func (s *Stack) Reset() error {
	if err := s.checkMutate(); err != nil {
		return err
	}
	s.cursor = 0
	s.ledger = s.ledger[:0]
	s.publish()
	return nil
}

// Close resets the stack. It does not release the region; use Destroy.
func (s *Stack) Close() error { return s.Reset() }

// Reallocate resizes the region to n bytes. On success every allocation is
// discarded, since the region may have moved and all offsets handed out so
// far are invalid.
//
// If the allocator cannot provide n bytes Reallocate returns false and a nil
// error, and the stack, including its live allocations, is unchanged. Misuse
// is reported as an error: ErrUseAfterDestroy, ErrOwnership (checks on) or
// ErrInvalidSize.
func (s *Stack) Reallocate(n int) (bool, error) {
	if err := s.checkMutate(); err != nil {
		return false, err
	}
	if n <= 0 {
		return false, xerrors.Errorf("stack: reallocate to %d bytes: %w", n, ErrInvalidSize)
	}

	out := s.mem.Reallocate(n, s.buf)
	if memory.IsNull(out, n) {
		s.log.Debug().Int("from", len(s.buf)).Int("to", n).Msg("stack reallocate failed")
		return false, nil
	}

	s.log.Debug().Int("from", len(s.buf)).Int("to", n).Msg("stack reallocated")
	debug.Log(func() string {
		return fmt.Sprintf("stack: reallocated %d -> %d bytes, dropped %d live allocations", len(s.buf), n, len(s.ledger))
	})
	s.buf = out[:n]
	s.cursor = 0
	s.ledger = s.ledger[:0]
	s.capacity.Store(int64(n))
	s.reallocs.Add(1)
	s.publish()
	return true, nil
}

// Destroy releases the region. The stack cannot be used afterwards and a
// second Destroy fails with ErrUseAfterDestroy.
func (s *Stack) Destroy() error {
	if err := s.checkMutate(); err != nil {
		return err
	}
	s.log.Debug().Int("capacity", len(s.buf)).Int("live", len(s.ledger)).Msg("stack destroyed")
	if len(s.ledger) > 0 {
		debug.Log(func() string {
			return fmt.Sprintf("stack: destroyed with %d live allocations (%d bytes)", len(s.ledger), s.cursor)
		})
	}
	s.mem.Free(s.buf)
	s.buf = nil
	s.ledger = nil
	s.cursor = 0
	s.destroyed = true
	s.capacity.Store(0)
	s.publish()
	s.dead.Store(true)
	return nil
}

func (s *Stack) publish() {
	s.inUse.Store(int64(s.cursor))
	s.depth.Store(int64(len(s.ledger)))
}

func (s *Stack) assertLedger() {
	if !debug.Enabled {
		return
	}
	sum := 0
	for _, n := range s.ledger {
		sum += n
	}
	debug.Assert(sum == s.cursor, func() string {
		return fmt.Sprintf("stack: ledger sums to %d, cursor at %d", sum, s.cursor)
	})
}

// Address returns the address of the first byte of the region, or 0 once
// the stack is destroyed.
func (s *Stack) Address() uintptr { return memory.Address(s.buf) }

// Bytes returns the n bytes starting at off. It panics if the range lies
// outside the region.
func (s *Stack) Bytes(off, n int) []byte { return s.region()[off : off+n : off+n] }

// region is buf with its capacity cut to its length. buf itself keeps the
// capacity the allocator returned, which the allocator may need on Free.
func (s *Stack) region() []byte { return s.buf[:len(s.buf):len(s.buf)] }

// Cap returns the size of the region in bytes.
func (s *Stack) Cap() int { return len(s.buf) }

// Len returns the number of bytes currently allocated.
func (s *Stack) Len() int { return s.cursor }

// Remaining returns the number of bytes that can still be allocated.
func (s *Stack) Remaining() int { return len(s.buf) - s.cursor }

// Depth returns the number of live allocations.
func (s *Stack) Depth() int { return len(s.ledger) }

// Destroyed reports whether Destroy has been called.
func (s *Stack) Destroyed() bool { return s.destroyed }

// ChecksEnabled reports whether the stack validates its callers.
func (s *Stack) ChecksEnabled() bool { return s.checks }

func (s *Stack) String() string {
	return fmt.Sprintf("stack(cap=%d, used=%d, depth=%d)", len(s.buf), s.cursor, len(s.ledger))
}
