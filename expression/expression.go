// Copyright 2016 PingCAP, Inc.
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
	"fmt"

	"github.com/pingcap/copr/sessionctx/stmtctx"
	"github.com/pingcap/copr/types"
	"github.com/pingcap/copr/types/json"
)

// Evaluator reads an expression's value from a row as one of the
// evaluation types. isNull is set for a SQL NULL result, val is then the
// zero value.
type Evaluator interface {
	EvalInt(sc *stmtctx.StatementContext, row []types.Datum) (val int64, isNull bool, err error)
	EvalReal(sc *stmtctx.StatementContext, row []types.Datum) (val float64, isNull bool, err error)
	EvalString(sc *stmtctx.StatementContext, row []types.Datum) (val string, isNull bool, err error)
	EvalDecimal(sc *stmtctx.StatementContext, row []types.Datum) (val *types.Decimal, isNull bool, err error)
	// EvalTime reads DATE, DATETIME and TIMESTAMP values.
	EvalTime(sc *stmtctx.StatementContext, row []types.Datum) (val types.Time, isNull bool, err error)
	EvalDuration(sc *stmtctx.StatementContext, row []types.Datum) (val types.Duration, isNull bool, err error)
	EvalJSON(sc *stmtctx.StatementContext, row []types.Datum) (val json.BinaryJSON, isNull bool, err error)
}

// Expression is a scalar expression over a row of datums. Columns read
// the row by offset, constants ignore it.
type Expression interface {
	fmt.Stringer
	Evaluator

	// Eval returns the value as a datum of the kind GetType implies.
	Eval(sc *stmtctx.StatementContext, row []types.Datum) (types.Datum, error)

	GetType() *types.FieldType

	// Clone returns a deep copy.
	Clone() Expression

	Equal(e Expression) bool
}

// CNFExprs is a conjunction, a row passes when every member is true.
type CNFExprs []Expression

// Clone clones every member.
func (e CNFExprs) Clone() CNFExprs {
	cnf := make(CNFExprs, len(e))
	for i := range e {
		cnf[i] = e[i].Clone()
	}
	return cnf
}

// EvalBool evaluates the conjunction on row. A false member decides the
// result even when another member is NULL. Otherwise any NULL makes the
// result NULL, reported as (false, true).
func EvalBool(sc *stmtctx.StatementContext, exprList CNFExprs, row []types.Datum) (res bool, isNull bool, err error) {
	for _, expr := range exprList {
		v, null, err := expr.EvalInt(sc, row)
		switch {
		case err != nil:
			return false, false, err
		case null:
			isNull = true
		case v == 0:
			return false, false, nil
		}
	}
	return !isNull, isNull, nil
}
