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
Package memory provides the raw memory layer the stack arenas sit on.

An Allocator hands out, resizes and releases byte buffers. GoAllocator uses
the Go heap, MmapAllocator uses anonymous mappings outside of it,
LimitedAllocator enforces a byte budget and CheckedAllocator records every
live allocation for leak reports.

The scalar accessors (Int32, PutFloat64, ...) read and write fixed-width
values at byte offsets in host byte order.
*/
package memory
