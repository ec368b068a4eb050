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
	"sort"

	"github.com/pingcap/copr/metrics"
	"github.com/pingcap/copr/sessionctx/stmtctx"
	"github.com/pingcap/copr/types"
	"github.com/pingcap/copr/types/json"
	"github.com/pingcap/parser/model"
	"github.com/pingcap/parser/mysql"
)

// operandEval reads one operand of a comparison in its evaluation domain.
// Method expressions like Expression.EvalInt satisfy it.
type operandEval[T any] func(e Expression, sc *stmtctx.StatementContext, row []types.Datum) (T, bool, error)

// evalOperands evaluates lhs then rhs. Both are always evaluated unless lhs
// fails, in which case its error is returned untouched.
func evalOperands[T any](sc *stmtctx.StatementContext, row []types.Datum, lhs, rhs Expression, eval operandEval[T]) (arg0 T, isNull0 bool, arg1 T, isNull1 bool, err error) {
	arg0, isNull0, err = eval(lhs, sc, row)
	if err != nil {
		return
	}
	arg1, isNull1, err = eval(rhs, sc, row)
	return
}

// compareOperands evaluates a comparison under SQL three-valued logic.
// Any NULL operand gives NULL, except for NullEQ whose result is chosen by
// the NULL-safe-equal policy of sc.
func compareOperands[T any](sc *stmtctx.StatementContext, row []types.Datum, lhs, rhs Expression, op cmpOp, eval operandEval[T], cmp func(T, T) int) (int64, bool, error) {
	arg0, isNull0, arg1, isNull1, err := evalOperands(sc, row, lhs, rhs, eval)
	if err != nil {
		return 0, true, err
	}
	if isNull0 || isNull1 {
		if op == opNullEQ {
			return sc.NullEQPolicy.NullEQResult(isNull0, isNull1), false, nil
		}
		return 0, true, nil
	}
	return boolToInt64(op.holds(cmp(arg0, arg1))), false, nil
}

// CompareInt evaluates an integer comparison. The signedness of each operand
// comes from the unsigned flag of its field type.
func CompareInt(sc *stmtctx.StatementContext, row []types.Datum, lhs, rhs Expression, sig IntCmpSig) (int64, bool, error) {
	isUnsigned0, isUnsigned1 := mysql.HasUnsignedFlag(lhs.GetType().Flag), mysql.HasUnsignedFlag(rhs.GetType().Flag)
	return compareOperands(sc, row, lhs, rhs, sig.op, Expression.EvalInt, func(arg0, arg1 int64) int {
		return types.CompareInt64WithUnsignedFlag(arg0, isUnsigned0, arg1, isUnsigned1)
	})
}

// CompareReal evaluates a float64 comparison. NaN is greater than any value.
func CompareReal(sc *stmtctx.StatementContext, row []types.Datum, lhs, rhs Expression, sig RealCmpSig) (int64, bool, error) {
	return compareOperands(sc, row, lhs, rhs, sig.op, Expression.EvalReal, types.CompareFloat64)
}

// CompareDecimal evaluates a decimal comparison.
func CompareDecimal(sc *stmtctx.StatementContext, row []types.Datum, lhs, rhs Expression, sig DecimalCmpSig) (int64, bool, error) {
	return compareOperands(sc, row, lhs, rhs, sig.op, Expression.EvalDecimal, (*types.Decimal).Compare)
}

// CompareString evaluates a bytewise string comparison.
func CompareString(sc *stmtctx.StatementContext, row []types.Datum, lhs, rhs Expression, sig StringCmpSig) (int64, bool, error) {
	return compareOperands(sc, row, lhs, rhs, sig.op, Expression.EvalString, types.CompareString)
}

// CompareTime evaluates a DATE/DATETIME/TIMESTAMP comparison.
func CompareTime(sc *stmtctx.StatementContext, row []types.Datum, lhs, rhs Expression, sig TimeCmpSig) (int64, bool, error) {
	return compareOperands(sc, row, lhs, rhs, sig.op, Expression.EvalTime, types.Time.Compare)
}

// CompareDuration evaluates a TIME comparison.
func CompareDuration(sc *stmtctx.StatementContext, row []types.Datum, lhs, rhs Expression, sig DurationCmpSig) (int64, bool, error) {
	return compareOperands(sc, row, lhs, rhs, sig.op, Expression.EvalDuration, types.Duration.Compare)
}

// CompareJSON evaluates a JSON comparison.
func CompareJSON(sc *stmtctx.StatementContext, row []types.Datum, lhs, rhs Expression, sig JSONCmpSig) (int64, bool, error) {
	return compareOperands(sc, row, lhs, rhs, sig.op, Expression.EvalJSON, json.CompareBinary)
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

var (
	_ builtinFunc = &builtinCompareIntSig{}
	_ builtinFunc = &builtinCompareRealSig{}
	_ builtinFunc = &builtinCompareDecimalSig{}
	_ builtinFunc = &builtinCompareStringSig{}
	_ builtinFunc = &builtinCompareTimeSig{}
	_ builtinFunc = &builtinCompareDurationSig{}
	_ builtinFunc = &builtinCompareJSONSig{}
)

// newCompareBase checks the children of a comparison. A NULL typed child is
// accepted by every domain.
func newCompareBase(name string, lhs, rhs Expression, accepted ...types.EvalType) (baseBuiltinFunc, error) {
	base, err := newBaseBuiltinFunc(name, []Expression{lhs, rhs}, types.NewFieldType(mysql.TypeLonglong), 2)
	if err != nil {
		return base, err
	}
	for _, arg := range base.args {
		tp := arg.GetType()
		if tp.Tp == mysql.TypeNull {
			continue
		}
		ok := false
		for _, et := range accepted {
			if tp.EvalType() == et {
				ok = true
				break
			}
		}
		if !ok {
			return base, ErrIncompatibleArg.GenWithStackByArgs(name, types.TypeStr(tp.Tp))
		}
	}
	return base, nil
}

func newCompareFunction(op cmpOp, domain string, f builtinFunc) *ScalarFunction {
	metrics.CmpSigCounter.WithLabelValues(domain, op.String()).Inc()
	return &ScalarFunction{
		FuncName: model.NewCIStr(op.funcName()),
		RetType:  f.getRetTp(),
		Function: f,
	}
}

// NewIntComparison builds sig(lhs, rhs) over integers.
func NewIntComparison(lhs, rhs Expression, sig IntCmpSig) (*ScalarFunction, error) {
	base, err := newCompareBase(sig.String(), lhs, rhs, types.ETInt)
	if err != nil {
		return nil, err
	}
	return newCompareFunction(sig.op, DomainInt, &builtinCompareIntSig{base, sig}), nil
}

// NewRealComparison builds sig(lhs, rhs) over float64 values.
func NewRealComparison(lhs, rhs Expression, sig RealCmpSig) (*ScalarFunction, error) {
	base, err := newCompareBase(sig.String(), lhs, rhs, types.ETReal)
	if err != nil {
		return nil, err
	}
	return newCompareFunction(sig.op, DomainReal, &builtinCompareRealSig{base, sig}), nil
}

// NewDecimalComparison builds sig(lhs, rhs) over decimals.
func NewDecimalComparison(lhs, rhs Expression, sig DecimalCmpSig) (*ScalarFunction, error) {
	base, err := newCompareBase(sig.String(), lhs, rhs, types.ETDecimal)
	if err != nil {
		return nil, err
	}
	return newCompareFunction(sig.op, DomainDecimal, &builtinCompareDecimalSig{base, sig}), nil
}

// NewStringComparison builds sig(lhs, rhs) over byte strings.
func NewStringComparison(lhs, rhs Expression, sig StringCmpSig) (*ScalarFunction, error) {
	base, err := newCompareBase(sig.String(), lhs, rhs, types.ETString)
	if err != nil {
		return nil, err
	}
	return newCompareFunction(sig.op, DomainString, &builtinCompareStringSig{base, sig}), nil
}

// NewTimeComparison builds sig(lhs, rhs) over DATE/DATETIME/TIMESTAMP values.
func NewTimeComparison(lhs, rhs Expression, sig TimeCmpSig) (*ScalarFunction, error) {
	base, err := newCompareBase(sig.String(), lhs, rhs, types.ETDatetime, types.ETTimestamp)
	if err != nil {
		return nil, err
	}
	return newCompareFunction(sig.op, DomainTime, &builtinCompareTimeSig{base, sig}), nil
}

// NewDurationComparison builds sig(lhs, rhs) over TIME values.
func NewDurationComparison(lhs, rhs Expression, sig DurationCmpSig) (*ScalarFunction, error) {
	base, err := newCompareBase(sig.String(), lhs, rhs, types.ETDuration)
	if err != nil {
		return nil, err
	}
	return newCompareFunction(sig.op, DomainDuration, &builtinCompareDurationSig{base, sig}), nil
}

// NewJSONComparison builds sig(lhs, rhs) over JSON documents.
func NewJSONComparison(lhs, rhs Expression, sig JSONCmpSig) (*ScalarFunction, error) {
	base, err := newCompareBase(sig.String(), lhs, rhs, types.ETJson)
	if err != nil {
		return nil, err
	}
	return newCompareFunction(sig.op, DomainJSON, &builtinCompareJSONSig{base, sig}), nil
}

// cmpBuilder builds a comparison of a fixed signature.
type cmpBuilder func(lhs, rhs Expression) (*ScalarFunction, error)

func intCmp(sig IntCmpSig) cmpBuilder {
	return func(lhs, rhs Expression) (*ScalarFunction, error) { return NewIntComparison(lhs, rhs, sig) }
}

func realCmp(sig RealCmpSig) cmpBuilder {
	return func(lhs, rhs Expression) (*ScalarFunction, error) { return NewRealComparison(lhs, rhs, sig) }
}

func decimalCmp(sig DecimalCmpSig) cmpBuilder {
	return func(lhs, rhs Expression) (*ScalarFunction, error) { return NewDecimalComparison(lhs, rhs, sig) }
}

func stringCmp(sig StringCmpSig) cmpBuilder {
	return func(lhs, rhs Expression) (*ScalarFunction, error) { return NewStringComparison(lhs, rhs, sig) }
}

func timeCmp(sig TimeCmpSig) cmpBuilder {
	return func(lhs, rhs Expression) (*ScalarFunction, error) { return NewTimeComparison(lhs, rhs, sig) }
}

func durationCmp(sig DurationCmpSig) cmpBuilder {
	return func(lhs, rhs Expression) (*ScalarFunction, error) { return NewDurationComparison(lhs, rhs, sig) }
}

func jsonCmp(sig JSONCmpSig) cmpBuilder {
	return func(lhs, rhs Expression) (*ScalarFunction, error) { return NewJSONComparison(lhs, rhs, sig) }
}

var cmpBuildersByName = make(map[string]cmpBuilder, len(allCmpOps)*7)

func init() {
	for _, op := range allCmpOps {
		cmpBuildersByName[IntCmpSig{op}.String()] = intCmp(IntCmpSig{op})
		cmpBuildersByName[RealCmpSig{op}.String()] = realCmp(RealCmpSig{op})
		cmpBuildersByName[DecimalCmpSig{op}.String()] = decimalCmp(DecimalCmpSig{op})
		cmpBuildersByName[StringCmpSig{op}.String()] = stringCmp(StringCmpSig{op})
		cmpBuildersByName[TimeCmpSig{op}.String()] = timeCmp(TimeCmpSig{op})
		cmpBuildersByName[DurationCmpSig{op}.String()] = durationCmp(DurationCmpSig{op})
		cmpBuildersByName[JSONCmpSig{op}.String()] = jsonCmp(JSONCmpSig{op})
	}
}

// NewComparisonByName builds a comparison from a signature name like
// "LTInt" or "NullEQJSON".
func NewComparisonByName(name string, lhs, rhs Expression) (*ScalarFunction, error) {
	build, ok := cmpBuildersByName[name]
	if !ok {
		return nil, ErrFunctionNotExists.GenWithStackByArgs("FUNCTION", name)
	}
	return build(lhs, rhs)
}

// CmpSigNames returns the names of all comparison signatures.
func CmpSigNames() []string {
	names := make([]string, 0, len(cmpBuildersByName))
	for name := range cmpBuildersByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type builtinCompareIntSig struct {
	baseBuiltinFunc
	sig IntCmpSig
}

func (b *builtinCompareIntSig) Clone() builtinFunc {
	newSig := &builtinCompareIntSig{sig: b.sig}
	newSig.cloneFrom(&b.baseBuiltinFunc)
	return newSig
}

func (b *builtinCompareIntSig) equal(fun builtinFunc) bool {
	other, ok := fun.(*builtinCompareIntSig)
	return ok && other.sig == b.sig && b.baseBuiltinFunc.equal(fun)
}

func (b *builtinCompareIntSig) evalInt(sc *stmtctx.StatementContext, row []types.Datum) (int64, bool, error) {
	return CompareInt(sc, row, b.args[0], b.args[1], b.sig)
}

type builtinCompareRealSig struct {
	baseBuiltinFunc
	sig RealCmpSig
}

func (b *builtinCompareRealSig) Clone() builtinFunc {
	newSig := &builtinCompareRealSig{sig: b.sig}
	newSig.cloneFrom(&b.baseBuiltinFunc)
	return newSig
}

func (b *builtinCompareRealSig) equal(fun builtinFunc) bool {
	other, ok := fun.(*builtinCompareRealSig)
	return ok && other.sig == b.sig && b.baseBuiltinFunc.equal(fun)
}

func (b *builtinCompareRealSig) evalInt(sc *stmtctx.StatementContext, row []types.Datum) (int64, bool, error) {
	return CompareReal(sc, row, b.args[0], b.args[1], b.sig)
}

type builtinCompareDecimalSig struct {
	baseBuiltinFunc
	sig DecimalCmpSig
}

func (b *builtinCompareDecimalSig) Clone() builtinFunc {
	newSig := &builtinCompareDecimalSig{sig: b.sig}
	newSig.cloneFrom(&b.baseBuiltinFunc)
	return newSig
}

func (b *builtinCompareDecimalSig) equal(fun builtinFunc) bool {
	other, ok := fun.(*builtinCompareDecimalSig)
	return ok && other.sig == b.sig && b.baseBuiltinFunc.equal(fun)
}

func (b *builtinCompareDecimalSig) evalInt(sc *stmtctx.StatementContext, row []types.Datum) (int64, bool, error) {
	return CompareDecimal(sc, row, b.args[0], b.args[1], b.sig)
}

type builtinCompareStringSig struct {
	baseBuiltinFunc
	sig StringCmpSig
}

func (b *builtinCompareStringSig) Clone() builtinFunc {
	newSig := &builtinCompareStringSig{sig: b.sig}
	newSig.cloneFrom(&b.baseBuiltinFunc)
	return newSig
}

func (b *builtinCompareStringSig) equal(fun builtinFunc) bool {
	other, ok := fun.(*builtinCompareStringSig)
	return ok && other.sig == b.sig && b.baseBuiltinFunc.equal(fun)
}

func (b *builtinCompareStringSig) evalInt(sc *stmtctx.StatementContext, row []types.Datum) (int64, bool, error) {
	return CompareString(sc, row, b.args[0], b.args[1], b.sig)
}

type builtinCompareTimeSig struct {
	baseBuiltinFunc
	sig TimeCmpSig
}

func (b *builtinCompareTimeSig) Clone() builtinFunc {
	newSig := &builtinCompareTimeSig{sig: b.sig}
	newSig.cloneFrom(&b.baseBuiltinFunc)
	return newSig
}

func (b *builtinCompareTimeSig) equal(fun builtinFunc) bool {
	other, ok := fun.(*builtinCompareTimeSig)
	return ok && other.sig == b.sig && b.baseBuiltinFunc.equal(fun)
}

func (b *builtinCompareTimeSig) evalInt(sc *stmtctx.StatementContext, row []types.Datum) (int64, bool, error) {
	return CompareTime(sc, row, b.args[0], b.args[1], b.sig)
}

type builtinCompareDurationSig struct {
	baseBuiltinFunc
	sig DurationCmpSig
}

func (b *builtinCompareDurationSig) Clone() builtinFunc {
	newSig := &builtinCompareDurationSig{sig: b.sig}
	newSig.cloneFrom(&b.baseBuiltinFunc)
	return newSig
}

func (b *builtinCompareDurationSig) equal(fun builtinFunc) bool {
	other, ok := fun.(*builtinCompareDurationSig)
	return ok && other.sig == b.sig && b.baseBuiltinFunc.equal(fun)
}

func (b *builtinCompareDurationSig) evalInt(sc *stmtctx.StatementContext, row []types.Datum) (int64, bool, error) {
	return CompareDuration(sc, row, b.args[0], b.args[1], b.sig)
}

type builtinCompareJSONSig struct {
	baseBuiltinFunc
	sig JSONCmpSig
}

func (b *builtinCompareJSONSig) Clone() builtinFunc {
	newSig := &builtinCompareJSONSig{sig: b.sig}
	newSig.cloneFrom(&b.baseBuiltinFunc)
	return newSig
}

func (b *builtinCompareJSONSig) equal(fun builtinFunc) bool {
	other, ok := fun.(*builtinCompareJSONSig)
	return ok && other.sig == b.sig && b.baseBuiltinFunc.equal(fun)
}

func (b *builtinCompareJSONSig) evalInt(sc *stmtctx.StatementContext, row []types.Datum) (int64, bool, error) {
	return CompareJSON(sc, row, b.args[0], b.args[1], b.sig)
}

// compareNull compares null values based on the following rules.
// 1. NULL is considered to be equal to NULL
// 2. NULL is considered to be smaller than a non-NULL value.
// NOTE: (lhsIsNull == true) or (rhsIsNull == true) is required.
func compareNull(lhsIsNull, rhsIsNull bool) int64 {
	if lhsIsNull && rhsIsNull {
		return 0
	}
	if lhsIsNull {
		return -1
	}
	return 1
}

// CompareFunc defines the compare function prototype. It returns the
// tri-state ordering of the two operands, each evaluated on its own row.
// The bool result reports that at least one operand was NULL, NULL sorts first.
type CompareFunc = func(sc *stmtctx.StatementContext, lhsArg, rhsArg Expression, lhsRow, rhsRow []types.Datum) (int64, bool, error)

// orderOperands is the ordering counterpart of compareOperands, used by
// sort and merge consumers.
func orderOperands[T any](sc *stmtctx.StatementContext, lhsArg, rhsArg Expression, lhsRow, rhsRow []types.Datum, eval operandEval[T], cmp func(T, T) int) (int64, bool, error) {
	arg0, isNull0, err := eval(lhsArg, sc, lhsRow)
	if err != nil {
		return 0, true, err
	}
	arg1, isNull1, err := eval(rhsArg, sc, rhsRow)
	if err != nil {
		return 0, true, err
	}
	if isNull0 || isNull1 {
		return compareNull(isNull0, isNull1), true, nil
	}
	return int64(cmp(arg0, arg1)), false, nil
}

// CmpInt orders two integers.
func CmpInt(sc *stmtctx.StatementContext, lhsArg, rhsArg Expression, lhsRow, rhsRow []types.Datum) (int64, bool, error) {
	isUnsigned0, isUnsigned1 := mysql.HasUnsignedFlag(lhsArg.GetType().Flag), mysql.HasUnsignedFlag(rhsArg.GetType().Flag)
	return orderOperands(sc, lhsArg, rhsArg, lhsRow, rhsRow, Expression.EvalInt, func(arg0, arg1 int64) int {
		return types.CompareInt64WithUnsignedFlag(arg0, isUnsigned0, arg1, isUnsigned1)
	})
}

// CmpReal orders two float-point values.
func CmpReal(sc *stmtctx.StatementContext, lhsArg, rhsArg Expression, lhsRow, rhsRow []types.Datum) (int64, bool, error) {
	return orderOperands(sc, lhsArg, rhsArg, lhsRow, rhsRow, Expression.EvalReal, types.CompareFloat64)
}

// CmpDecimal orders two decimals.
func CmpDecimal(sc *stmtctx.StatementContext, lhsArg, rhsArg Expression, lhsRow, rhsRow []types.Datum) (int64, bool, error) {
	return orderOperands(sc, lhsArg, rhsArg, lhsRow, rhsRow, Expression.EvalDecimal, (*types.Decimal).Compare)
}

// CmpString orders two strings.
func CmpString(sc *stmtctx.StatementContext, lhsArg, rhsArg Expression, lhsRow, rhsRow []types.Datum) (int64, bool, error) {
	return orderOperands(sc, lhsArg, rhsArg, lhsRow, rhsRow, Expression.EvalString, types.CompareString)
}

// CmpTime orders two datetime or timestamp values.
func CmpTime(sc *stmtctx.StatementContext, lhsArg, rhsArg Expression, lhsRow, rhsRow []types.Datum) (int64, bool, error) {
	return orderOperands(sc, lhsArg, rhsArg, lhsRow, rhsRow, Expression.EvalTime, types.Time.Compare)
}

// CmpDuration orders two durations.
func CmpDuration(sc *stmtctx.StatementContext, lhsArg, rhsArg Expression, lhsRow, rhsRow []types.Datum) (int64, bool, error) {
	return orderOperands(sc, lhsArg, rhsArg, lhsRow, rhsRow, Expression.EvalDuration, types.Duration.Compare)
}

// CmpJSON orders two JSON documents.
func CmpJSON(sc *stmtctx.StatementContext, lhsArg, rhsArg Expression, lhsRow, rhsRow []types.Datum) (int64, bool, error) {
	return orderOperands(sc, lhsArg, rhsArg, lhsRow, rhsRow, Expression.EvalJSON, json.CompareBinary)
}

func cmpEvalType(tp *types.FieldType) types.EvalType {
	et := tp.EvalType()
	if et == types.ETTimestamp {
		return types.ETDatetime
	}
	return et
}

// GetCmpFunction gets the compare function according to two arguments.
// It returns nil when the arguments do not share an evaluation domain.
func GetCmpFunction(lhs, rhs Expression) CompareFunc {
	lhsTp, rhsTp := lhs.GetType(), rhs.GetType()
	et := cmpEvalType(lhsTp)
	switch {
	case lhsTp.Tp == mysql.TypeNull:
		et = cmpEvalType(rhsTp)
	case rhsTp.Tp != mysql.TypeNull && cmpEvalType(rhsTp) != et:
		return nil
	}
	switch et {
	case types.ETInt:
		return CmpInt
	case types.ETReal:
		return CmpReal
	case types.ETDecimal:
		return CmpDecimal
	case types.ETString:
		return CmpString
	case types.ETDuration:
		return CmpDuration
	case types.ETDatetime:
		return CmpTime
	case types.ETJson:
		return CmpJSON
	}
	return nil
}
