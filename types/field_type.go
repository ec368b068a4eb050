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
	ast "github.com/pingcap/parser/types"
)

// UnspecifiedLength is unspecified length.
const UnspecifiedLength = -1

// FieldType records field type information.
type FieldType = ast.FieldType

// NewFieldType returns a FieldType,
// with a type and other information about field type.
func NewFieldType(tp byte) *FieldType {
	return &FieldType{
		Tp:      tp,
		Flen:    UnspecifiedLength,
		Decimal: UnspecifiedLength,
	}
}

// IsUnsigned reports whether the field type carries the unsigned flag.
func IsUnsigned(ft *FieldType) bool {
	return mysql.HasUnsignedFlag(ft.Flag)
}

// EvalType indicates the specified types that arguments and result of a built-in function should be.
type EvalType = ast.EvalType

// EvalType values.
const (
	ETInt       = ast.ETInt
	ETReal      = ast.ETReal
	ETDecimal   = ast.ETDecimal
	ETString    = ast.ETString
	ETDatetime  = ast.ETDatetime
	ETTimestamp = ast.ETTimestamp
	ETDuration  = ast.ETDuration
	ETJson      = ast.ETJson
)

// TypeStr converts tp to a string.
func TypeStr(tp byte) string {
	return ast.TypeStr(tp)
}
