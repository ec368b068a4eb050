// Copyright 2019 PingCAP, Inc.
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

package json

import (
	"bytes"

	"github.com/cznic/mathutil"
	"github.com/pingcap/parser/mysql"
	"github.com/pingcap/parser/terror"
)

// Comparison precedences of the value kinds, lowest first, following
// https://dev.mysql.com/doc/refman/5.7/en/json.html#json-comparison.
// Numbers share one precedence and compare by value across their codes.
const (
	precNull = iota
	precNumber
	precString
	precObject
	precArray
	precBoolean
)

func (bj BinaryJSON) precedence() int {
	switch bj.TypeCode {
	case TypeCodeLiteral:
		if bj.Value[0] == LiteralNil {
			return precNull
		}
		return precBoolean
	case TypeCodeInt64, TypeCodeUint64, TypeCodeFloat64:
		return precNumber
	case TypeCodeString:
		return precString
	case TypeCodeObject:
		return precObject
	case TypeCodeArray:
		return precArray
	}
	panic(errUnknownTypeCode(bj.TypeCode))
}

// numberEpsilon is the distance under which two numbers are equal.
const numberEpsilon = 1e-8

func (bj BinaryJSON) number() float64 {
	switch bj.TypeCode {
	case TypeCodeInt64:
		return float64(bj.GetInt64())
	case TypeCodeUint64:
		return float64(bj.GetUint64())
	}
	return bj.GetFloat64()
}

func compareNumbers(x, y float64) int {
	switch diff := x - y; {
	case diff < numberEpsilon && -diff < numberEpsilon:
		return 0
	case diff < 0:
		return -1
	}
	return 1
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// CompareBinary returns -1, 0 or 1 as left is less than, equal to or
// greater than right. Values of different kinds order by kind precedence.
// Objects are only meaningful for equality, they are ordered by their
// binary form.
func CompareBinary(left, right BinaryJSON) int {
	lp, rp := left.precedence(), right.precedence()
	if lp != rp {
		return sign(lp - rp)
	}
	switch lp {
	case precBoolean:
		// LiteralTrue is stored as the smaller byte.
		return sign(int(right.Value[0]) - int(left.Value[0]))
	case precNumber:
		return compareNumbers(left.number(), right.number())
	case precString:
		return bytes.Compare(left.GetString(), right.GetString())
	case precObject:
		return bytes.Compare(left.Value, right.Value)
	case precArray:
		n, m := left.GetElemCount(), right.GetElemCount()
		for i := 0; i < mathutil.Min(n, m); i++ {
			if cmp := CompareBinary(left.arrayGetElem(i), right.arrayGetElem(i)); cmp != 0 {
				return cmp
			}
		}
		return sign(n - m)
	}
	return 0
}

// ErrInvalidJSONText means invalid JSON text.
var ErrInvalidJSONText = terror.ClassJSON.New(mysql.ErrInvalidJSONText, mysql.MySQLErrName[mysql.ErrInvalidJSONText])

func init() {
	terror.ErrClassToMySQLCodes[terror.ClassJSON] = map[terror.ErrCode]uint16{
		mysql.ErrInvalidJSONText: mysql.ErrInvalidJSONText,
	}
}
