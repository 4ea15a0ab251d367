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

import (
	"encoding/binary"
	"math"
)

// Scalar accessors read and write fixed-width values at a byte offset of a
// buffer using the host byte order, the layout native consumers expect.
// Offsets are bounds checked by the slice expressions.

var native = binary.NativeEndian

// Int8 returns the int8 at off. PutInt8 stores one.
func Int8(b []byte, off int) int8       { return int8(b[off]) }
func PutInt8(b []byte, off int, v int8) { b[off] = byte(v) }

// Uint8 returns the byte at off. PutUint8 stores one.
func Uint8(b []byte, off int) uint8       { return b[off] }
func PutUint8(b []byte, off int, v uint8) { b[off] = v }

// Bool reports whether the byte at off is non-zero.
func Bool(b []byte, off int) bool { return b[off] != 0 }

// PutBool stores v at off as 1 or 0.
func PutBool(b []byte, off int, v bool) {
	if v {
		b[off] = 1
	} else {
		b[off] = 0
	}
}

// Int16 and Uint16 read the two bytes at off; PutInt16 and PutUint16
// write them.
func Int16(b []byte, off int) int16         { return int16(native.Uint16(b[off : off+2])) }
func PutInt16(b []byte, off int, v int16)   { native.PutUint16(b[off:off+2], uint16(v)) }
func Uint16(b []byte, off int) uint16       { return native.Uint16(b[off : off+2]) }
func PutUint16(b []byte, off int, v uint16) { native.PutUint16(b[off:off+2], v) }

// Int32 and Uint32 read the four bytes at off; PutInt32 and PutUint32
// write them.
func Int32(b []byte, off int) int32         { return int32(native.Uint32(b[off : off+4])) }
func PutInt32(b []byte, off int, v int32)   { native.PutUint32(b[off:off+4], uint32(v)) }
func Uint32(b []byte, off int) uint32       { return native.Uint32(b[off : off+4]) }
func PutUint32(b []byte, off int, v uint32) { native.PutUint32(b[off:off+4], v) }

// Int64 and Uint64 read the eight bytes at off; PutInt64 and PutUint64
// write them.
func Int64(b []byte, off int) int64         { return int64(native.Uint64(b[off : off+8])) }
func PutInt64(b []byte, off int, v int64)   { native.PutUint64(b[off:off+8], uint64(v)) }
func Uint64(b []byte, off int) uint64       { return native.Uint64(b[off : off+8]) }
func PutUint64(b []byte, off int, v uint64) { native.PutUint64(b[off:off+8], v) }

// Float32 returns the IEEE 754 single at off.
func Float32(b []byte, off int) float32 {
	return math.Float32frombits(native.Uint32(b[off : off+4]))
}

// PutFloat32 stores v at off as an IEEE 754 single.
func PutFloat32(b []byte, off int, v float32) {
	native.PutUint32(b[off:off+4], math.Float32bits(v))
}

// Float64 returns the IEEE 754 double at off.
func Float64(b []byte, off int) float64 {
	return math.Float64frombits(native.Uint64(b[off : off+8]))
}

// PutFloat64 stores v at off as an IEEE 754 double.
func PutFloat64(b []byte, off int, v float64) {
	native.PutUint64(b[off:off+8], math.Float64bits(v))
}
