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

import "github.com/rs/zerolog"

// Config controls the behaviour of a Stack. It is fixed at construction.
type Config struct {
	// EnableChecks turns on size, ownership, overflow and ordering checks.
	// With checks off Allocate only rejects a destroyed stack and otherwise
	// bumps the cursor; misuse is caught when the returned region is touched.
	EnableChecks bool

	// Logger receives reallocation, destroy and overflow events. The zero
	// value discards everything.
	Logger zerolog.Logger
}

// DefaultConfig returns a Config with checks enabled and logging disabled.
func DefaultConfig() Config {
	return Config{EnableChecks: true, Logger: zerolog.Nop()}
}
