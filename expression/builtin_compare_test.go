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
	"math"

	. "github.com/pingcap/check"
	"github.com/pingcap/copr/sessionctx/stmtctx"
	"github.com/pingcap/copr/types"
	"github.com/pingcap/copr/util/testleak"
	"github.com/pingcap/parser/mysql"
)

// evalCounter counts the evaluations of the wrapped expression.
type evalCounter struct {
	Expression
	count int
}

func (e *evalCounter) EvalInt(sc *stmtctx.StatementContext, row []types.Datum) (int64, bool, error) {
	e.count++
	return e.Expression.EvalInt(sc, row)
}

func (s *testEvaluatorSuite) TestCompareIntLiteral(c *C) {
	defer testleak.AfterTest(c)()
	maxU64 := uint64(math.MaxUint64)
	tests := []struct {
		lhs Expression
		rhs Expression
		sig IntCmpSig
		res int64
	}{
		{intConst(5), intConst(3), GTInt, 1},
		{uintConst(maxU64), uintConst(maxU64 - 1), GTInt, 1},
		{uintConst(5), intConst(math.MinInt64), GTInt, 1},
		{intConst(math.MinInt64), uintConst(3), LTInt, 1},
		{intConst(5), uintConst(maxU64), LTInt, 1},
		{intConst(5), uintConst(3), GTInt, 1},
		{intConst(3), intConst(5), LTInt, 1},
		{intConst(5), intConst(5), GEInt, 1},
		{intConst(-1), uintConst(maxU64), EQInt, 0},
		{intConst(-1), uintConst(maxU64), NEInt, 1},
		{uintConst(3), intConst(3), EQInt, 1},
		{uintConst(3), intConst(3), NullEQInt, 1},
		{intConst(3), intConst(4), LEInt, 1},
		{intConst(4), intConst(3), LEInt, 0},
	}
	for _, t := range tests {
		res, isNull, err := CompareInt(s.sc, nil, t.lhs, t.rhs, t.sig)
		c.Assert(err, IsNil)
		c.Assert(isNull, IsFalse)
		c.Assert(res, Equals, t.res, Commentf("%s(%s, %s)", t.sig, t.lhs, t.rhs))
	}
}

func (s *testEvaluatorSuite) TestNullPropagation(c *C) {
	defer testleak.AfterTest(c)()
	null := nullConst(mysql.TypeLonglong)
	five := intConst(5)

	res, isNull, err := CompareInt(s.sc, nil, null, five, EQInt)
	c.Assert(err, IsNil)
	c.Assert(isNull, IsTrue)
	c.Assert(res, Equals, int64(0))

	tests := []struct {
		policy stmtctx.NullEQPolicy
		lhs    Expression
		rhs    Expression
		res    int64
	}{
		{stmtctx.NullEQEither, null, five, 1},
		{stmtctx.NullEQEither, five, null, 1},
		{stmtctx.NullEQEither, null, null, 1},
		{stmtctx.NullEQBoth, null, five, 0},
		{stmtctx.NullEQBoth, five, null, 0},
		{stmtctx.NullEQBoth, null, null, 1},
	}
	for _, t := range tests {
		sc := &stmtctx.StatementContext{NullEQPolicy: t.policy}
		res, isNull, err := CompareInt(sc, nil, t.lhs, t.rhs, NullEQInt)
		c.Assert(err, IsNil)
		c.Assert(isNull, IsFalse)
		c.Assert(res, Equals, t.res, Commentf("%s: %s <=> %s", t.policy, t.lhs, t.rhs))
	}

	// Every other operator gives NULL, in every domain.
	domains := []struct {
		value Expression
		null  Expression
		cmp   func(sc *stmtctx.StatementContext, lhs, rhs Expression, op cmpOp) (int64, bool, error)
	}{
		{intConst(1), nullConst(mysql.TypeLonglong), func(sc *stmtctx.StatementContext, lhs, rhs Expression, op cmpOp) (int64, bool, error) {
			return CompareInt(sc, nil, lhs, rhs, IntCmpSig{op})
		}},
		{realConst(1), nullConst(mysql.TypeDouble), func(sc *stmtctx.StatementContext, lhs, rhs Expression, op cmpOp) (int64, bool, error) {
			return CompareReal(sc, nil, lhs, rhs, RealCmpSig{op})
		}},
		{decimalConst(c, "1.5"), nullConst(mysql.TypeNewDecimal), func(sc *stmtctx.StatementContext, lhs, rhs Expression, op cmpOp) (int64, bool, error) {
			return CompareDecimal(sc, nil, lhs, rhs, DecimalCmpSig{op})
		}},
		{stringConst("a"), nullConst(mysql.TypeVarString), func(sc *stmtctx.StatementContext, lhs, rhs Expression, op cmpOp) (int64, bool, error) {
			return CompareString(sc, nil, lhs, rhs, StringCmpSig{op})
		}},
		{timeConst(c, "2019-06-30 00:00:00"), nullConst(mysql.TypeDatetime), func(sc *stmtctx.StatementContext, lhs, rhs Expression, op cmpOp) (int64, bool, error) {
			return CompareTime(sc, nil, lhs, rhs, TimeCmpSig{op})
		}},
		{durationConst(c, "10:00:00"), nullConst(mysql.TypeDuration), func(sc *stmtctx.StatementContext, lhs, rhs Expression, op cmpOp) (int64, bool, error) {
			return CompareDuration(sc, nil, lhs, rhs, DurationCmpSig{op})
		}},
		{jsonConst(c, `{"a": 1}`), nullConst(mysql.TypeJSON), func(sc *stmtctx.StatementContext, lhs, rhs Expression, op cmpOp) (int64, bool, error) {
			return CompareJSON(sc, nil, lhs, rhs, JSONCmpSig{op})
		}},
	}
	for _, policy := range []stmtctx.NullEQPolicy{stmtctx.NullEQEither, stmtctx.NullEQBoth} {
		sc := &stmtctx.StatementContext{NullEQPolicy: policy}
		for _, d := range domains {
			for _, op := range allCmpOps {
				for _, args := range [][2]Expression{{d.null, d.value}, {d.value, d.null}, {d.null, d.null}} {
					res, isNull, err := d.cmp(sc, args[0], args[1], op)
					c.Assert(err, IsNil)
					if op == opNullEQ {
						c.Assert(isNull, IsFalse)
						c.Assert(res, Equals, policy.NullEQResult(args[0] == d.null, args[1] == d.null))
					} else {
						c.Assert(isNull, IsTrue, Commentf("%s %s(%s, %s)", policy, op, args[0], args[1]))
					}
				}
			}
		}
	}
}

func (s *testEvaluatorSuite) TestCompareRealNaN(c *C) {
	defer testleak.AfterTest(c)()
	nan := realConst(math.NaN())
	one := realConst(1.0)
	tests := []struct {
		lhs Expression
		rhs Expression
		sig RealCmpSig
		res int64
	}{
		{nan, one, GTReal, 1},
		{nan, nan, EQReal, 0},
		{nan, nan, GTReal, 1},
		{nan, nan, NEReal, 1},
		{nan, nan, NullEQReal, 0},
		{one, nan, GTReal, 1},
		{one, nan, LTReal, 0},
		{one, realConst(1.0), EQReal, 1},
		{realConst(math.Inf(-1)), one, LEReal, 1},
	}
	for _, t := range tests {
		res, isNull, err := CompareReal(s.sc, nil, t.lhs, t.rhs, t.sig)
		c.Assert(err, IsNil)
		c.Assert(isNull, IsFalse)
		c.Assert(res, Equals, t.res, Commentf("%s(%s, %s)", t.sig, t.lhs, t.rhs))
	}
}

func (s *testEvaluatorSuite) TestCompareDomains(c *C) {
	defer testleak.AfterTest(c)()
	res, _, err := CompareString(s.sc, nil, stringConst("abc"), stringConst("abd"), LEString)
	c.Assert(err, IsNil)
	c.Assert(res, Equals, int64(1))
	res, _, err = CompareString(s.sc, nil, stringConst("abc"), stringConst("ABC"), EQString)
	c.Assert(err, IsNil)
	c.Assert(res, Equals, int64(0))

	res, _, err = CompareDecimal(s.sc, nil, decimalConst(c, "1.50"), decimalConst(c, "1.5"), EQDecimal)
	c.Assert(err, IsNil)
	c.Assert(res, Equals, int64(1))
	res, _, err = CompareDecimal(s.sc, nil, decimalConst(c, "-0.01"), decimalConst(c, "0"), LTDecimal)
	c.Assert(err, IsNil)
	c.Assert(res, Equals, int64(1))

	res, _, err = CompareTime(s.sc, nil, timeConst(c, "0000-00-00 00:00:00"), timeConst(c, "1000-01-01 00:00:00"), LTTime)
	c.Assert(err, IsNil)
	c.Assert(res, Equals, int64(1))
	res, _, err = CompareTime(s.sc, nil, timeConst(c, "2019-06-30 12:00:00.000001"), timeConst(c, "2019-06-30 12:00:00"), GTTime)
	c.Assert(err, IsNil)
	c.Assert(res, Equals, int64(1))

	res, _, err = CompareDuration(s.sc, nil, durationConst(c, "-01:00:00"), durationConst(c, "00:00:00"), LTDuration)
	c.Assert(err, IsNil)
	c.Assert(res, Equals, int64(1))

	res, _, err = CompareJSON(s.sc, nil, jsonConst(c, `[1, 2]`), jsonConst(c, `[1, 2, 3]`), LTJSON)
	c.Assert(err, IsNil)
	c.Assert(res, Equals, int64(1))
	res, _, err = CompareJSON(s.sc, nil, jsonConst(c, `1`), jsonConst(c, `1.0`), EQJSON)
	c.Assert(err, IsNil)
	c.Assert(res, Equals, int64(1))
}

// TestOperatorLaws checks that the seven operators of a domain agree with
// each other on every pair of concrete values.
func (s *testEvaluatorSuite) TestOperatorLaws(c *C) {
	defer testleak.AfterTest(c)()
	type evalAll func(lhs, rhs Expression) map[cmpOp]int64
	collect := func(cmp func(lhs, rhs Expression, op cmpOp) (int64, bool, error)) evalAll {
		return func(lhs, rhs Expression) map[cmpOp]int64 {
			results := make(map[cmpOp]int64, len(allCmpOps))
			for _, op := range allCmpOps {
				res, isNull, err := cmp(lhs, rhs, op)
				c.Assert(err, IsNil)
				c.Assert(isNull, IsFalse)
				results[op] = res
			}
			return results
		}
	}
	domains := []struct {
		values []Expression
		eval   evalAll
	}{
		{
			[]Expression{intConst(math.MinInt64), intConst(-1), intConst(0), uintConst(3), uintConst(math.MaxUint64)},
			collect(func(lhs, rhs Expression, op cmpOp) (int64, bool, error) {
				return CompareInt(s.sc, nil, lhs, rhs, IntCmpSig{op})
			}),
		},
		{
			[]Expression{realConst(math.Inf(-1)), realConst(-0.5), realConst(0), realConst(2.5)},
			collect(func(lhs, rhs Expression, op cmpOp) (int64, bool, error) {
				return CompareReal(s.sc, nil, lhs, rhs, RealCmpSig{op})
			}),
		},
		{
			[]Expression{decimalConst(c, "-10.5"), decimalConst(c, "0"), decimalConst(c, "0.001"), decimalConst(c, "12345678901234567890")},
			collect(func(lhs, rhs Expression, op cmpOp) (int64, bool, error) {
				return CompareDecimal(s.sc, nil, lhs, rhs, DecimalCmpSig{op})
			}),
		},
		{
			[]Expression{stringConst(""), stringConst("a"), stringConst("ab"), stringConst("b")},
			collect(func(lhs, rhs Expression, op cmpOp) (int64, bool, error) {
				return CompareString(s.sc, nil, lhs, rhs, StringCmpSig{op})
			}),
		},
		{
			[]Expression{timeConst(c, "0000-00-00 00:00:00"), timeConst(c, "2019-06-30 00:00:00"), timeConst(c, "2019-06-30 00:00:00.5")},
			collect(func(lhs, rhs Expression, op cmpOp) (int64, bool, error) {
				return CompareTime(s.sc, nil, lhs, rhs, TimeCmpSig{op})
			}),
		},
		{
			[]Expression{durationConst(c, "-838:59:59"), durationConst(c, "00:00:00"), durationConst(c, "00:00:00.1")},
			collect(func(lhs, rhs Expression, op cmpOp) (int64, bool, error) {
				return CompareDuration(s.sc, nil, lhs, rhs, DurationCmpSig{op})
			}),
		},
		{
			[]Expression{jsonConst(c, `null`), jsonConst(c, `1`), jsonConst(c, `"a"`), jsonConst(c, `[1]`), jsonConst(c, `true`)},
			collect(func(lhs, rhs Expression, op cmpOp) (int64, bool, error) {
				return CompareJSON(s.sc, nil, lhs, rhs, JSONCmpSig{op})
			}),
		},
	}
	for _, d := range domains {
		for i, lhs := range d.values {
			for j, rhs := range d.values {
				r := d.eval(lhs, rhs)
				comment := Commentf("%s vs %s", lhs, rhs)
				c.Assert(r[opEQ], Equals, 1-r[opNE], comment)
				c.Assert(r[opNullEQ], Equals, r[opEQ], comment)
				c.Assert(r[opLT]+r[opEQ]+r[opGT], Equals, int64(1), comment)
				c.Assert(r[opLE], Equals, r[opLT]|r[opEQ], comment)
				c.Assert(r[opGE], Equals, r[opGT]|r[opEQ], comment)
				// Values are listed in ascending order.
				c.Assert(r[opLT] == 1, Equals, i < j, comment)
				c.Assert(r[opEQ] == 1, Equals, i == j, comment)
				reversed := d.eval(rhs, lhs)
				c.Assert(r[opLT], Equals, reversed[opGT], comment)
			}
		}
	}
}

func (s *testEvaluatorSuite) TestErrorPassThrough(c *C) {
	defer testleak.AfterTest(c)()
	bad := &Column{Index: 5, RetType: types.NewFieldType(mysql.TypeLonglong)}
	rhs := &evalCounter{Expression: intConst(1)}
	_, isNull, err := CompareInt(s.sc, types.MakeDatums(int64(1)), bad, rhs, NullEQInt)
	c.Assert(ErrColumnOffset.Equal(err), IsTrue)
	c.Assert(isNull, IsTrue)
	c.Assert(rhs.count, Equals, 0)

	lhs := &evalCounter{Expression: nullConst(mysql.TypeLonglong)}
	_, _, err = CompareInt(s.sc, types.MakeDatums(int64(1)), lhs, bad, NullEQInt)
	c.Assert(ErrColumnOffset.Equal(err), IsTrue)
	c.Assert(lhs.count, Equals, 1)

	// A NULL lhs does not skip the rhs.
	lhs, rhs = &evalCounter{Expression: nullConst(mysql.TypeLonglong)}, &evalCounter{Expression: intConst(1)}
	_, isNull, err = CompareInt(s.sc, nil, lhs, rhs, LTInt)
	c.Assert(err, IsNil)
	c.Assert(isNull, IsTrue)
	c.Assert(lhs.count, Equals, 1)
	c.Assert(rhs.count, Equals, 1)

	// A wrong datum kind in a row is reported, not coerced.
	col := &Column{Index: 0, RetType: types.NewFieldType(mysql.TypeLonglong)}
	_, _, err = CompareInt(s.sc, types.MakeDatums("5"), col, intConst(5), EQInt)
	c.Assert(ErrIncompatibleArg.Equal(err), IsTrue)
}

func (s *testEvaluatorSuite) TestNewComparison(c *C) {
	defer testleak.AfterTest(c)()
	_, err := NewIntComparison(nil, intConst(1), LTInt)
	c.Assert(ErrIncorrectParameterCount.Equal(err), IsTrue)
	_, err = NewRealComparison(realConst(1), nil, LTReal)
	c.Assert(ErrIncorrectParameterCount.Equal(err), IsTrue)

	_, err = NewIntComparison(intConst(1), realConst(1), LTInt)
	c.Assert(ErrIncompatibleArg.Equal(err), IsTrue)
	c.Assert(err, ErrorMatches, ".*LTInt cannot take a double argument.*")
	_, err = NewStringComparison(stringConst("a"), intConst(1), EQString)
	c.Assert(ErrIncompatibleArg.Equal(err), IsTrue)
	_, err = NewJSONComparison(jsonConst(c, "1"), stringConst("1"), EQJSON)
	c.Assert(ErrIncompatibleArg.Equal(err), IsTrue)
	_, err = NewDecimalComparison(decimalConst(c, "1"), decimalConst(c, "2"), LTDecimal)
	c.Assert(err, IsNil)
	_, err = NewDurationComparison(durationConst(c, "1:00:00"), nullConst(mysql.TypeNull), NullEQDuration)
	c.Assert(err, IsNil)

	ts := &Column{Index: 0, RetType: types.NewFieldType(mysql.TypeTimestamp)}
	sf, err := NewTimeComparison(ts, timeConst(c, "2019-06-30 00:00:00"), GETime)
	c.Assert(err, IsNil)
	c.Assert(sf.String(), Equals, "ge(column#0, 2019-06-30 00:00:00.000000)")

	tests := []struct {
		name     string
		lhs, rhs Expression
		funcName string
		res      int64
	}{
		{"LTInt", intConst(1), intConst(2), "lt", 1},
		{"NEReal", realConst(1), realConst(1), "ne", 0},
		{"GEDecimal", decimalConst(c, "2.0"), decimalConst(c, "2"), "ge", 1},
		{"EQString", stringConst("a"), stringConst("a"), "eq", 1},
		{"LETime", timeConst(c, "2019-06-30 00:00:00"), timeConst(c, "2019-06-29 00:00:00"), "le", 0},
		{"GTDuration", durationConst(c, "1:00:00"), durationConst(c, "0:59:59"), "gt", 1},
		{"NullEQJSON", jsonConst(c, "[]"), jsonConst(c, "[]"), "nulleq", 1},
	}
	for _, t := range tests {
		sf, err := NewComparisonByName(t.name, t.lhs, t.rhs)
		c.Assert(err, IsNil, Commentf("%s", t.name))
		c.Assert(sf.FuncName.L, Equals, t.funcName)
		res, isNull, err := sf.EvalInt(s.sc, nil)
		c.Assert(err, IsNil)
		c.Assert(isNull, IsFalse)
		c.Assert(res, Equals, t.res, Commentf("%s", t.name))
	}
	_, err = NewComparisonByName("LikeString", stringConst("a"), stringConst("a"))
	c.Assert(ErrFunctionNotExists.Equal(err), IsTrue)

	names := CmpSigNames()
	c.Assert(names, HasLen, 49)
	for i := 1; i < len(names); i++ {
		c.Assert(names[i-1] < names[i], IsTrue)
	}
}

func (s *testEvaluatorSuite) TestSignatures(c *C) {
	defer testleak.AfterTest(c)()
	var zero IntCmpSig
	c.Assert(zero, Equals, LTInt)
	c.Assert(LTInt.String(), Equals, "LTInt")
	c.Assert(NullEQJSON.String(), Equals, "NullEQJSON")
	c.Assert(GEDuration.String(), Equals, "GEDuration")
	c.Assert(NETime.String(), Equals, "NETime")
	c.Assert(LEDecimal.String(), Equals, "LEDecimal")
	c.Assert(EQString.String(), Equals, "EQString")
	c.Assert(GTReal.String(), Equals, "GTReal")

	tests := []struct {
		op   cmpOp
		less bool
		eq   bool
		gt   bool
	}{
		{opLT, true, false, false},
		{opLE, true, true, false},
		{opGT, false, false, true},
		{opGE, false, true, true},
		{opEQ, false, true, false},
		{opNE, true, false, true},
		{opNullEQ, false, true, false},
	}
	for _, t := range tests {
		c.Assert(t.op.holds(-1), Equals, t.less, Commentf("%s", t.op))
		c.Assert(t.op.holds(0), Equals, t.eq, Commentf("%s", t.op))
		c.Assert(t.op.holds(1), Equals, t.gt, Commentf("%s", t.op))
	}
}

func (s *testEvaluatorSuite) TestGetCmpFunction(c *C) {
	defer testleak.AfterTest(c)()
	c.Assert(GetCmpFunction(intConst(1), realConst(1)), IsNil)
	c.Assert(GetCmpFunction(stringConst("a"), jsonConst(c, "1")), IsNil)

	tsCol := &Column{Index: 0, RetType: types.NewFieldType(mysql.TypeTimestamp)}
	dtCol := &Column{Index: 1, RetType: types.NewFieldType(mysql.TypeDatetime)}
	cmp := GetCmpFunction(tsCol, dtCol)
	c.Assert(cmp, NotNil)
	t1, err := types.ParseTime("2019-06-30 00:00:00", mysql.TypeTimestamp, 0)
	c.Assert(err, IsNil)
	t2, err := types.ParseTime("2019-07-01 00:00:00", mysql.TypeDatetime, 0)
	c.Assert(err, IsNil)
	row := []types.Datum{types.NewTimeDatum(t1), types.NewTimeDatum(t2)}
	res, isNull, err := cmp(s.sc, tsCol, dtCol, row, row)
	c.Assert(err, IsNil)
	c.Assert(isNull, IsFalse)
	c.Assert(res, Equals, int64(-1))

	// NULL sorts first and never returns an operator result.
	intCol := &Column{Index: 0, RetType: types.NewFieldType(mysql.TypeLonglong)}
	cmp = GetCmpFunction(intCol, intCol)
	lhsRow, rhsRow := types.MakeDatums(nil), types.MakeDatums(int64(math.MinInt64))
	res, isNull, err = cmp(s.sc, intCol, intCol, lhsRow, rhsRow)
	c.Assert(err, IsNil)
	c.Assert(isNull, IsTrue)
	c.Assert(res, Equals, int64(-1))
	res, isNull, err = cmp(s.sc, intCol, intCol, rhsRow, lhsRow)
	c.Assert(err, IsNil)
	c.Assert(isNull, IsTrue)
	c.Assert(res, Equals, int64(1))
	res, isNull, err = cmp(s.sc, intCol, intCol, lhsRow, lhsRow)
	c.Assert(err, IsNil)
	c.Assert(isNull, IsTrue)
	c.Assert(res, Equals, int64(0))

	uintCol := &Column{Index: 0, RetType: &types.FieldType{Tp: mysql.TypeLonglong, Flag: mysql.UnsignedFlag}}
	res, isNull, err = GetCmpFunction(uintCol, intCol)(s.sc, uintCol, intCol, types.MakeDatums(uint64(math.MaxUint64)), types.MakeDatums(int64(1)))
	c.Assert(err, IsNil)
	c.Assert(isNull, IsFalse)
	c.Assert(res, Equals, int64(1))

	cmp = GetCmpFunction(Null, realConst(1))
	res, _, err = cmp(s.sc, realConst(math.NaN()), realConst(1), nil, nil)
	c.Assert(err, IsNil)
	c.Assert(res, Equals, int64(1))

	for _, t := range []struct {
		lhs, rhs Expression
	}{
		{decimalConst(c, "1"), decimalConst(c, "1.0")},
		{stringConst("a"), stringConst("a")},
		{durationConst(c, "1:00:00"), durationConst(c, "01:00:00")},
		{jsonConst(c, "[1]"), jsonConst(c, "[1.0]")},
	} {
		res, isNull, err := GetCmpFunction(t.lhs, t.rhs)(s.sc, t.lhs, t.rhs, nil, nil)
		c.Assert(err, IsNil)
		c.Assert(isNull, IsFalse)
		c.Assert(res, Equals, int64(0), Commentf("%s vs %s", t.lhs, t.rhs))
	}
}
