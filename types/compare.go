// Copyright 2015 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"bytes"
	"math"
)

// CompareInt64 returns an integer comparing the int64 x to y.
func CompareInt64(x, y int64) int {
	if x < y {
		return -1
	} else if x == y {
		return 0
	}
	return 1
}

// CompareUint64 returns an integer comparing the uint64 x to y.
func CompareUint64(x, y uint64) int {
	if x < y {
		return -1
	} else if x == y {
		return 0
	}
	return 1
}

// CompareInt64WithUnsignedFlag compares two 64-bit integers whose signedness is
// carried outside of the value. The result is the ordering of the two values
// as if both were widened to an unbounded integer.
func CompareInt64WithUnsignedFlag(x int64, xUnsigned bool, y int64, yUnsigned bool) int {
	switch {
	case xUnsigned && yUnsigned:
		return CompareUint64(uint64(x), uint64(y))
	case xUnsigned && !yUnsigned:
		if y < 0 || uint64(x) > math.MaxInt64 {
			return 1
		}
		return CompareInt64(x, y)
	case !xUnsigned && yUnsigned:
		if x < 0 || uint64(y) > math.MaxInt64 {
			return -1
		}
		return CompareInt64(x, y)
	}
	return CompareInt64(x, y)
}

// CompareFloat64 returns an integer comparing the float64 x to y.
// Equality is tested first and less-than second, so a NaN on either side
// always compares as greater, NaN against NaN included.
func CompareFloat64(x, y float64) int {
	if x == y {
		return 0
	} else if x < y {
		return -1
	}
	return 1
}

// CompareString returns an integer comparing the string x to y.
func CompareString(x, y string) int {
	if x < y {
		return -1
	} else if x == y {
		return 0
	}
	return 1
}

// CompareBytes returns an integer comparing the byte slice x to y.
func CompareBytes(x, y []byte) int {
	return bytes.Compare(x, y)
}
