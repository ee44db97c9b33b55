// Copyright 2025 The LunarDB Security Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

/*
#include <stdlib.h>
#include <string.h>
*/
import "C"

import (
	"math"
	"unsafe"
)

// cChar names C.char for code that cannot import "C".
type cChar = C.char

// maxTextLen is the longest C string copied into Go. C.GoBytes takes a
// C int, so anything longer cannot be addressed.
var maxTextLen C.size_t = math.MaxInt32

// unaddressable stands in for text longer than maxTextLen. It is not valid
// UTF-8, so the engine reports an encoding failure.
var unaddressable = []byte{0xff}

// goBytes copies a NUL-terminated C string. NULL becomes a nil slice and
// the empty string a non-nil empty one.
func goBytes(p *cChar) []byte {
	if p == nil {
		return nil
	}
	n := C.strlen(p)
	if n > maxTextLen {
		return unaddressable
	}
	return C.GoBytes(unsafe.Pointer(p), C.int(n))
}

// cString copies s into malloc'd memory. The result is owned by whoever
// receives it and is released with freeText.
func cString(s string) *cChar {
	return C.CString(s)
}

// nullText is the NULL string returned when there is no result.
func nullText() *cChar {
	return nil
}

// ownedText hands s to the caller. The caller frees it with release_text.
func ownedText(s string, ok bool) *cChar {
	if !ok {
		return nullText()
	}
	return cString(s)
}

func freeText(p *cChar) {
	if p != nil {
		C.free(unsafe.Pointer(p))
	}
}
