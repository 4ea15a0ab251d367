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

// Stats is a point in time view of a Stack's usage. It may be taken from any
// goroutine.
type Stats struct {
	Capacity      int
	InUse         int
	Depth         int
	HighWater     int
	Pushes        int64
	Pops          int64
	Overflows     int64
	Reallocations int64
	Destroyed     bool
}

// Utilization returns InUse as a fraction of Capacity.
func (st Stats) Utilization() float64 {
	if st.Capacity == 0 {
		return 0
	}
	return float64(st.InUse) / float64(st.Capacity)
}

func (s *Stack) Stats() Stats {
	return Stats{
		Capacity:      int(s.capacity.Load()),
		InUse:         int(s.inUse.Load()),
		Depth:         int(s.depth.Load()),
		HighWater:     int(s.highWater.Load()),
		Pushes:        s.pushes.Load(),
		Pops:          s.pops.Load(),
		Overflows:     s.overflows.Load(),
		Reallocations: s.reallocs.Load(),
		Destroyed:     s.dead.Load(),
	}
}
