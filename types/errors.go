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

package types

import (
	"github.com/pingcap/parser/mysql"
	"github.com/pingcap/parser/terror"
)

const (
	codeBadNumber         terror.ErrCode = 1
	codeInvalidTimeFormat terror.ErrCode = 2
	codeInvalidDuration   terror.ErrCode = 3
	codeInvalidFsp        terror.ErrCode = 4
	codeUnknownKind       terror.ErrCode = 5

	codeOverflow          = terror.ErrCode(mysql.ErrDataOutOfRange)
	codeTruncatedWrongVal = terror.ErrCode(mysql.ErrTruncatedWrongValue)
)

var (
	// ErrBadNumber is returned when a string can not be read as a decimal number.
	ErrBadNumber = terror.ClassTypes.New(codeBadNumber, "Bad Number")
	// ErrInvalidTimeFormat is returned when a string does not hold a valid date or datetime.
	ErrInvalidTimeFormat = terror.ClassTypes.New(codeInvalidTimeFormat, "invalid time format: '%v'")
	// ErrInvalidDuration is returned when a string does not hold a valid time value.
	ErrInvalidDuration = terror.ClassTypes.New(codeInvalidDuration, "invalid time value: '%v'")
	// ErrInvalidFsp is returned when the fractional seconds precision is out of [0, 6].
	ErrInvalidFsp = terror.ClassTypes.New(codeInvalidFsp, "Invalid fsp %d")
	// ErrUnknownKind is returned when a Go value has no matching datum kind.
	ErrUnknownKind = terror.ClassTypes.New(codeUnknownKind, "unknown datum kind for %T")
	// ErrOverflow is returned when a number is out of the range of its type.
	ErrOverflow = terror.ClassTypes.New(codeOverflow, mysql.MySQLErrName[mysql.ErrDataOutOfRange])
	// ErrTruncatedWrongVal is returned when a string can not be read as a value of its type.
	ErrTruncatedWrongVal = terror.ClassTypes.New(codeTruncatedWrongVal, mysql.MySQLErrName[mysql.ErrTruncatedWrongValue])
)

func init() {
	typesMySQLErrCodes := map[terror.ErrCode]uint16{
		codeBadNumber:         mysql.ErrTruncatedWrongValue,
		codeInvalidTimeFormat: mysql.ErrTruncatedWrongValue,
		codeInvalidDuration:   mysql.ErrTruncatedWrongValue,
		codeInvalidFsp:        mysql.ErrTooBigPrecision,
		codeUnknownKind:       mysql.ErrUnknown,
		codeOverflow:          mysql.ErrDataOutOfRange,
		codeTruncatedWrongVal: mysql.ErrTruncatedWrongValue,
	}
	terror.ErrClassToMySQLCodes[terror.ClassTypes] = typesMySQLErrCodes
}
