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

import "unicode/utf16"

// Text is pushed as null-terminated UTF-8 produced from 16-bit code units.
// Every unit is encoded on its own: below 0x80 it takes one byte, below
// 0x800 two bytes and anything else three bytes. Surrogate pairs are not
// combined into a single four byte sequence; each half becomes its own three
// byte run.

// EncodedLen returns the number of bytes units occupy once encoded, not
// counting the terminator.
func EncodedLen(units []uint16) int {
	n := 0
	for _, c := range units {
		n += unitLen(c)
	}
	return n
}

func unitLen(c uint16) int {
	switch {
	case c < 0x80:
		return 1
	case c < 0x800:
		return 2
	default:
		return 3
	}
}

// EncodeUTF8 writes the encoding of units into dst and returns the number of
// bytes written. dst must hold at least EncodedLen(units) bytes.
func EncodeUTF8(dst []byte, units []uint16) int {
	i := 0
	for _, c := range units {
		switch unitLen(c) {
		case 1:
			dst[i] = byte(c)
			i++
		case 2:
			dst[i] = byte(c>>6) | 0xc0
			dst[i+1] = byte(c&0x3f) | 0x80
			i += 2
		default:
			dst[i] = byte(c>>12) | 0xe0
			dst[i+1] = byte((c>>6)&0x3f) | 0x80
			dst[i+2] = byte(c&0x3f) | 0x80
			i += 3
		}
	}
	return i
}

// PushUTF8 encodes units onto the stack followed by a zero byte and returns
// the offset of the first byte. The allocation is EncodedLen(units)+1 bytes.
func (s *Stack) PushUTF8(units []uint16) (int, error) {
	n := EncodedLen(units) + 1
	off, err := s.Allocate(n)
	if err != nil {
		return 0, err
	}
	b := s.Bytes(off, n)
	b[EncodeUTF8(b, units)] = 0
	return off, nil
}

// PushString pushes str as null-terminated text, going through its UTF-16
// code units.
func (s *Stack) PushString(str string) (int, error) {
	return s.PushUTF8(utf16.Encode([]rune(str)))
}

// CString returns the text stored at off up to, not including, its
// terminator.
func (s *Stack) CString(off int) []byte {
	b := s.region()[off:s.cursor]
	for i, c := range b {
		if c == 0 {
			return b[:i:i]
		}
	}
	return b
}
