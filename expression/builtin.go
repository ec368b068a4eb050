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
	"github.com/pingcap/copr/sessionctx/stmtctx"
	"github.com/pingcap/copr/types"
	"github.com/pingcap/copr/types/json"
	"github.com/pingcap/errors"
)

// builtinFunc stands for a particular function signature.
type builtinFunc interface {
	// evalInt evaluates int result of builtinFunc by given row.
	evalInt(sc *stmtctx.StatementContext, row []types.Datum) (val int64, isNull bool, err error)
	// evalReal evaluates real representation of builtinFunc by given row.
	evalReal(sc *stmtctx.StatementContext, row []types.Datum) (val float64, isNull bool, err error)
	// evalString evaluates string representation of builtinFunc by given row.
	evalString(sc *stmtctx.StatementContext, row []types.Datum) (val string, isNull bool, err error)
	// evalDecimal evaluates decimal representation of builtinFunc by given row.
	evalDecimal(sc *stmtctx.StatementContext, row []types.Datum) (val *types.Decimal, isNull bool, err error)
	// evalTime evaluates DATE/DATETIME/TIMESTAMP representation of builtinFunc by given row.
	evalTime(sc *stmtctx.StatementContext, row []types.Datum) (val types.Time, isNull bool, err error)
	// evalDuration evaluates duration representation of builtinFunc by given row.
	evalDuration(sc *stmtctx.StatementContext, row []types.Datum) (val types.Duration, isNull bool, err error)
	// evalJSON evaluates JSON representation of builtinFunc by given row.
	evalJSON(sc *stmtctx.StatementContext, row []types.Datum) (val json.BinaryJSON, isNull bool, err error)
	// getArgs returns the arguments expressions.
	getArgs() []Expression
	// equal check if this function equals to another function.
	equal(builtinFunc) bool
	// getRetTp returns the return type of the built-in function.
	getRetTp() *types.FieldType
	// Clone returns a copy of itself.
	Clone() builtinFunc
}

type baseBuiltinFunc struct {
	args []Expression
	tp   *types.FieldType
}

func newBaseBuiltinFunc(funcName string, args []Expression, retTp *types.FieldType, wantArgs int) (baseBuiltinFunc, error) {
	if len(args) != wantArgs {
		return baseBuiltinFunc{}, ErrIncorrectParameterCount.GenWithStackByArgs(funcName)
	}
	for _, arg := range args {
		if arg == nil {
			return baseBuiltinFunc{}, ErrIncorrectParameterCount.GenWithStackByArgs(funcName)
		}
	}
	return baseBuiltinFunc{args: args, tp: retTp}, nil
}

func (b *baseBuiltinFunc) getArgs() []Expression {
	return b.args
}

func (b *baseBuiltinFunc) getRetTp() *types.FieldType {
	return b.tp
}

func (b *baseBuiltinFunc) evalInt(_ *stmtctx.StatementContext, _ []types.Datum) (int64, bool, error) {
	return 0, false, errors.Errorf("baseBuiltinFunc.evalInt() should never be called.")
}

func (b *baseBuiltinFunc) evalReal(_ *stmtctx.StatementContext, _ []types.Datum) (float64, bool, error) {
	return 0, false, errors.Errorf("baseBuiltinFunc.evalReal() should never be called.")
}

func (b *baseBuiltinFunc) evalString(_ *stmtctx.StatementContext, _ []types.Datum) (string, bool, error) {
	return "", false, errors.Errorf("baseBuiltinFunc.evalString() should never be called.")
}

func (b *baseBuiltinFunc) evalDecimal(_ *stmtctx.StatementContext, _ []types.Datum) (*types.Decimal, bool, error) {
	return nil, false, errors.Errorf("baseBuiltinFunc.evalDecimal() should never be called.")
}

func (b *baseBuiltinFunc) evalTime(_ *stmtctx.StatementContext, _ []types.Datum) (types.Time, bool, error) {
	return types.Time{}, false, errors.Errorf("baseBuiltinFunc.evalTime() should never be called.")
}

func (b *baseBuiltinFunc) evalDuration(_ *stmtctx.StatementContext, _ []types.Datum) (types.Duration, bool, error) {
	return types.Duration{}, false, errors.Errorf("baseBuiltinFunc.evalDuration() should never be called.")
}

func (b *baseBuiltinFunc) evalJSON(_ *stmtctx.StatementContext, _ []types.Datum) (json.BinaryJSON, bool, error) {
	return json.BinaryJSON{}, false, errors.Errorf("baseBuiltinFunc.evalJSON() should never be called.")
}

func (b *baseBuiltinFunc) equal(fun builtinFunc) bool {
	funArgs := fun.getArgs()
	if len(funArgs) != len(b.args) {
		return false
	}
	for i := range b.args {
		if !b.args[i].Equal(funArgs[i]) {
			return false
		}
	}
	return true
}

func (b *baseBuiltinFunc) cloneFrom(from *baseBuiltinFunc) {
	b.args = make([]Expression, 0, len(from.args))
	for _, arg := range from.args {
		b.args = append(b.args, arg.Clone())
	}
	b.tp = from.tp
}
