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

	"github.com/nw4j/nativestack/internal/debug"
	"golang.org/x/xerrors"
)

// Marker records the top of a stack so everything pushed after it can be
// released in one step.
type Marker struct {
	depth  int
	cursor int
}

// Mark returns a Marker for the current top of the stack.
func (s *Stack) Mark() Marker {
	return Marker{depth: len(s.ledger), cursor: s.cursor}
}

// Release pops every allocation made after m. The marker must still be below
// the top of the stack; releasing to a marker that was already popped past
// fails with ErrOrderViolation and changes nothing.
func (s *Stack) Release(m Marker) error {
	if err := s.checkMutate(); err != nil {
		return err
	}
	if m.depth > len(s.ledger) {
		return xerrors.Errorf("stack: marker depth %d above top %d: %w", m.depth, len(s.ledger), ErrOrderViolation)
	}

	released := 0
	for _, n := range s.ledger[m.depth:] {
		released += n
	}
	if s.checks && s.cursor-released != m.cursor {
		return xerrors.Errorf("stack: marker at offset %d, ledger unwinds to %d: %w", m.cursor, s.cursor-released, ErrOrderViolation)
	}

	debug.Log(func() string {
		return fmt.Sprintf("stack: release to depth %d frees %d allocations (%d bytes)", m.depth, len(s.ledger)-m.depth, released)
	})
	s.pops.Add(int64(len(s.ledger) - m.depth))
	s.cursor -= released
	s.ledger = s.ledger[:m.depth]
	s.publish()
	s.assertLedger()
	return nil
}

// Scope runs fn and then releases everything fn left on the stack, even if
// fn panics. The error of fn takes precedence over a release error.
func (s *Stack) Scope(fn func() error) (err error) {
	m := s.Mark()
	defer func() {
		if rerr := s.Release(m); err == nil {
			err = rerr
		}
	}()
	return fn()
}
