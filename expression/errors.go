// Copyright 2017 PingCAP, Inc.
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

package expression

import (
	"github.com/pingcap/parser/mysql"
	"github.com/pingcap/parser/terror"
)

const (
	codeIncompatibleArg terror.ErrCode = 1
	codeColumnOffset    terror.ErrCode = 2
)

var (
	// ErrIncorrectParameterCount is returned when a function gets a wrong number of arguments.
	ErrIncorrectParameterCount = terror.ClassExpression.New(mysql.ErrWrongParamcountToNativeFct, mysql.MySQLErrName[mysql.ErrWrongParamcountToNativeFct])
	// ErrFunctionNotExists is returned for a signature the evaluator does not implement.
	ErrFunctionNotExists = terror.ClassExpression.New(mysql.ErrSpDoesNotExist, mysql.MySQLErrName[mysql.ErrSpDoesNotExist])
	// ErrIncompatibleArg is returned when an argument cannot be evaluated in the domain a function asks for.
	ErrIncompatibleArg = terror.ClassExpression.New(codeIncompatibleArg, "%s cannot take a %s argument")
	// ErrColumnOffset is returned when a column reference points outside of the row.
	ErrColumnOffset = terror.ClassExpression.New(codeColumnOffset, "column offset %d out of range [0, %d)")
)

func init() {
	expressionMySQLErrCodes := map[terror.ErrCode]uint16{
		mysql.ErrWrongParamcountToNativeFct: mysql.ErrWrongParamcountToNativeFct,
		mysql.ErrSpDoesNotExist:             mysql.ErrSpDoesNotExist,
		codeIncompatibleArg:                 mysql.ErrUnknown,
		codeColumnOffset:                    mysql.ErrUnknown,
	}
	terror.ErrClassToMySQLCodes[terror.ClassExpression] = expressionMySQLErrCodes
}
