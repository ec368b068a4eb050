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
	"github.com/pingcap/parser/model"
)

// Column represents a column.
type Column struct {
	ColName model.CIStr
	RetType *types.FieldType

	// Index is used for execution, to tell the column's position in the given row.
	Index int
}

// Equal implements Expression interface.
func (col *Column) Equal(expr Expression) bool {
	if newCol, ok := expr.(*Column); ok {
		return newCol.Index == col.Index && newCol.ColName.L == col.ColName.L
	}
	return false
}

// String implements Stringer interface.
func (col *Column) String() string {
	if col.ColName.L != "" {
		return col.ColName.L
	}
	return fmt.Sprintf("column#%d", col.Index)
}

// GetType implements Expression interface.
func (col *Column) GetType() *types.FieldType {
	return col.RetType
}

func (col *Column) datum(row []types.Datum) (*types.Datum, error) {
	if col.Index < 0 || col.Index >= len(row) {
		return nil, ErrColumnOffset.GenWithStackByArgs(col.Index, len(row))
	}
	return &row[col.Index], nil
}

// Eval implements Expression interface.
func (col *Column) Eval(_ *stmtctx.StatementContext, row []types.Datum) (types.Datum, error) {
	d, err := col.datum(row)
	if err != nil {
		return types.Datum{}, err
	}
	return *d, nil
}

// EvalInt returns int representation of Column.
func (col *Column) EvalInt(_ *stmtctx.StatementContext, row []types.Datum) (int64, bool, error) {
	d, err := col.datum(row)
	if err != nil {
		return 0, true, err
	}
	return intFromDatum(d)
}

// EvalReal returns real representation of Column.
func (col *Column) EvalReal(_ *stmtctx.StatementContext, row []types.Datum) (float64, bool, error) {
	d, err := col.datum(row)
	if err != nil {
		return 0, true, err
	}
	return realFromDatum(d)
}

// EvalString returns string representation of Column.
func (col *Column) EvalString(_ *stmtctx.StatementContext, row []types.Datum) (string, bool, error) {
	d, err := col.datum(row)
	if err != nil {
		return "", true, err
	}
	return stringFromDatum(d)
}

// EvalDecimal returns decimal representation of Column.
func (col *Column) EvalDecimal(_ *stmtctx.StatementContext, row []types.Datum) (*types.Decimal, bool, error) {
	d, err := col.datum(row)
	if err != nil {
		return nil, true, err
	}
	return decimalFromDatum(d)
}

// EvalTime returns DATE/DATETIME/TIMESTAMP representation of Column.
func (col *Column) EvalTime(_ *stmtctx.StatementContext, row []types.Datum) (types.Time, bool, error) {
	d, err := col.datum(row)
	if err != nil {
		return types.Time{}, true, err
	}
	return timeFromDatum(d)
}

// EvalDuration returns Duration representation of Column.
func (col *Column) EvalDuration(_ *stmtctx.StatementContext, row []types.Datum) (types.Duration, bool, error) {
	d, err := col.datum(row)
	if err != nil {
		return types.Duration{}, true, err
	}
	return durationFromDatum(d)
}

// EvalJSON returns JSON representation of Column.
func (col *Column) EvalJSON(_ *stmtctx.StatementContext, row []types.Datum) (json.BinaryJSON, bool, error) {
	d, err := col.datum(row)
	if err != nil {
		return json.BinaryJSON{}, true, err
	}
	return jsonFromDatum(d)
}

// Clone implements Expression interface.
func (col *Column) Clone() Expression {
	newCol := *col
	return &newCol
}
