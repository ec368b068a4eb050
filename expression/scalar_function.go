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
	"strings"

	"github.com/pingcap/copr/sessionctx/stmtctx"
	"github.com/pingcap/copr/types"
	"github.com/pingcap/copr/types/json"
	"github.com/pingcap/errors"
	"github.com/pingcap/parser/model"
	"github.com/pingcap/parser/mysql"
)

// ScalarFunction applies a built-in function signature to its arguments.
type ScalarFunction struct {
	FuncName model.CIStr
	RetType  *types.FieldType
	Function builtinFunc
}

// GetArgs gets arguments of function.
func (sf *ScalarFunction) GetArgs() []Expression {
	return sf.Function.getArgs()
}

// String renders the call as name(arg, ...).
func (sf *ScalarFunction) String() string {
	args := sf.GetArgs()
	strs := make([]string, len(args))
	for i, arg := range args {
		strs[i] = arg.String()
	}
	var sb strings.Builder
	sb.WriteString(sf.FuncName.L)
	sb.WriteByte('(')
	sb.WriteString(strings.Join(strs, ", "))
	sb.WriteByte(')')
	return sb.String()
}

// Clone implements Expression interface.
func (sf *ScalarFunction) Clone() Expression {
	c := *sf
	c.Function = sf.Function.Clone()
	return &c
}

// GetType implements Expression interface.
func (sf *ScalarFunction) GetType() *types.FieldType {
	return sf.RetType
}

// Equal reports whether e calls the same function on equal arguments.
func (sf *ScalarFunction) Equal(e Expression) bool {
	other, ok := e.(*ScalarFunction)
	return ok && sf.FuncName.L == other.FuncName.L && sf.Function.equal(other.Function)
}

// Eval implements Expression interface.
func (sf *ScalarFunction) Eval(sc *stmtctx.StatementContext, row []types.Datum) (types.Datum, error) {
	var (
		d      types.Datum
		isNull bool
		err    error
	)
	switch et := sf.RetType.EvalType(); et {
	case types.ETInt:
		var v int64
		if v, isNull, err = sf.EvalInt(sc, row); mysql.HasUnsignedFlag(sf.RetType.Flag) {
			d = types.NewUintDatum(uint64(v))
		} else {
			d = types.NewIntDatum(v)
		}
	case types.ETReal:
		var v float64
		v, isNull, err = sf.EvalReal(sc, row)
		d = types.NewFloat64Datum(v)
	case types.ETDecimal:
		var v *types.Decimal
		v, isNull, err = sf.EvalDecimal(sc, row)
		d = types.NewDecimalDatum(v)
	case types.ETDatetime, types.ETTimestamp:
		var v types.Time
		v, isNull, err = sf.EvalTime(sc, row)
		d = types.NewTimeDatum(v)
	case types.ETDuration:
		var v types.Duration
		v, isNull, err = sf.EvalDuration(sc, row)
		d = types.NewDurationDatum(v)
	case types.ETJson:
		var v json.BinaryJSON
		v, isNull, err = sf.EvalJSON(sc, row)
		d = types.NewJSONDatum(v)
	case types.ETString:
		var v string
		v, isNull, err = sf.EvalString(sc, row)
		d = types.NewStringDatum(v)
	default:
		return types.Datum{}, errors.Errorf("%s: unsupported evaluation type %v", sf.FuncName.O, et)
	}
	if isNull || err != nil {
		return types.Datum{}, err
	}
	return d, nil
}

// EvalInt implements Expression interface.
func (sf *ScalarFunction) EvalInt(sc *stmtctx.StatementContext, row []types.Datum) (int64, bool, error) {
	return sf.Function.evalInt(sc, row)
}

// EvalReal implements Expression interface.
func (sf *ScalarFunction) EvalReal(sc *stmtctx.StatementContext, row []types.Datum) (float64, bool, error) {
	return sf.Function.evalReal(sc, row)
}

// EvalDecimal implements Expression interface.
func (sf *ScalarFunction) EvalDecimal(sc *stmtctx.StatementContext, row []types.Datum) (*types.Decimal, bool, error) {
	return sf.Function.evalDecimal(sc, row)
}

// EvalString implements Expression interface.
func (sf *ScalarFunction) EvalString(sc *stmtctx.StatementContext, row []types.Datum) (string, bool, error) {
	return sf.Function.evalString(sc, row)
}

// EvalTime implements Expression interface.
func (sf *ScalarFunction) EvalTime(sc *stmtctx.StatementContext, row []types.Datum) (types.Time, bool, error) {
	return sf.Function.evalTime(sc, row)
}

// EvalDuration implements Expression interface.
func (sf *ScalarFunction) EvalDuration(sc *stmtctx.StatementContext, row []types.Datum) (types.Duration, bool, error) {
	return sf.Function.evalDuration(sc, row)
}

// EvalJSON implements Expression interface.
func (sf *ScalarFunction) EvalJSON(sc *stmtctx.StatementContext, row []types.Datum) (json.BinaryJSON, bool, error) {
	return sf.Function.evalJSON(sc, row)
}
