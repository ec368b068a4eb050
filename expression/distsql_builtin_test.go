// Copyright 2018 PingCAP, Inc.
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
	"math"
	"time"

	. "github.com/pingcap/check"
	"github.com/pingcap/copr/sessionctx/stmtctx"
	"github.com/pingcap/copr/types"
	"github.com/pingcap/copr/types/json"
	"github.com/pingcap/copr/util/codec"
	"github.com/pingcap/copr/util/testleak"
	"github.com/pingcap/parser/mysql"
	"github.com/pingcap/tipb/go-tipb"
)

var _ = Suite(&testEvalSuite{})

type testEvalSuite struct{}

func columnExpr(offset int64) *tipb.Expr {
	return &tipb.Expr{Tp: tipb.ExprType_ColumnRef, Val: codec.EncodeInt(nil, offset)}
}

func int64Expr(v int64) *tipb.Expr {
	return &tipb.Expr{Tp: tipb.ExprType_Int64, Val: codec.EncodeInt(nil, v)}
}

func uint64Expr(v uint64) *tipb.Expr {
	return &tipb.Expr{Tp: tipb.ExprType_Uint64, Val: codec.EncodeUint(nil, v)}
}

func float64Expr(v float64) *tipb.Expr {
	return &tipb.Expr{Tp: tipb.ExprType_Float64, Val: codec.EncodeFloat(nil, v)}
}

func stringExpr(v string) *tipb.Expr {
	return &tipb.Expr{Tp: tipb.ExprType_String, Val: []byte(v)}
}

func decimalExpr(v string) *tipb.Expr {
	return &tipb.Expr{Tp: tipb.ExprType_MysqlDecimal, Val: codec.EncodeCompactBytes(nil, []byte(v))}
}

func durationExpr(v time.Duration) *tipb.Expr {
	return &tipb.Expr{Tp: tipb.ExprType_MysqlDuration, Val: codec.EncodeInt(nil, int64(v))}
}

func timeExpr(t types.Time, tp byte) *tipb.Expr {
	return &tipb.Expr{
		Tp:        tipb.ExprType_MysqlTime,
		Val:       codec.EncodeUint(nil, t.ToPackedUint()),
		FieldType: &tipb.FieldType{Tp: int32(tp), Decimal: int32(t.Fsp)},
	}
}

func jsonExpr(j json.BinaryJSON) *tipb.Expr {
	return &tipb.Expr{Tp: tipb.ExprType_MysqlJson, Val: codec.EncodeJSON(nil, j)}
}

func scalarFunctionExpr(sig tipb.ScalarFuncSig, children ...*tipb.Expr) *tipb.Expr {
	return &tipb.Expr{
		Tp:        tipb.ExprType_ScalarFunc,
		Sig:       sig,
		Children:  children,
		FieldType: &tipb.FieldType{Tp: int32(mysql.TypeLonglong)},
	}
}

func (s *testEvalSuite) TestPBToExpr(c *C) {
	defer testleak.AfterTest(c)()
	sc := &stmtctx.StatementContext{TimeZone: time.UTC}
	tps := []*types.FieldType{
		types.NewFieldType(mysql.TypeLonglong),
		{Tp: mysql.TypeLonglong, Flag: mysql.UnsignedFlag},
		types.NewFieldType(mysql.TypeVarString),
	}
	row := types.MakeDatums(int64(-3), uint64(math.MaxUint64), "abc")

	j, err := json.ParseBinaryFromString(`{"a": [1, 2]}`)
	c.Assert(err, IsNil)
	t1, err := types.ParseTime("2019-06-30 12:00:00.123", mysql.TypeDatetime, 3)
	c.Assert(err, IsNil)

	tests := []struct {
		expr *tipb.Expr
		res  int64
		null bool
	}{
		{scalarFunctionExpr(tipb.ScalarFuncSig_LTInt, columnExpr(0), int64Expr(0)), 1, false},
		{scalarFunctionExpr(tipb.ScalarFuncSig_GTInt, columnExpr(1), columnExpr(0)), 1, false},
		{scalarFunctionExpr(tipb.ScalarFuncSig_EQInt, columnExpr(1), uint64Expr(math.MaxUint64)), 1, false},
		{scalarFunctionExpr(tipb.ScalarFuncSig_NEInt, columnExpr(1), int64Expr(-1)), 1, false},
		{scalarFunctionExpr(tipb.ScalarFuncSig_EQInt, columnExpr(0), &tipb.Expr{Tp: tipb.ExprType_Null}), 0, true},
		{scalarFunctionExpr(tipb.ScalarFuncSig_NullEQInt, columnExpr(0), &tipb.Expr{Tp: tipb.ExprType_Null}), 1, false},
		{scalarFunctionExpr(tipb.ScalarFuncSig_GEReal, float64Expr(1.5), float64Expr(1.5)), 1, false},
		{scalarFunctionExpr(tipb.ScalarFuncSig_LTReal, float64Expr(math.NaN()), float64Expr(1)), 0, false},
		{scalarFunctionExpr(tipb.ScalarFuncSig_GTReal, &tipb.Expr{Tp: tipb.ExprType_Float32, Val: codec.EncodeFloat(nil, 0.1)}, float64Expr(0.1)), 1, false},
		{scalarFunctionExpr(tipb.ScalarFuncSig_EQDecimal, decimalExpr("1.50"), decimalExpr("1.5")), 1, false},
		{scalarFunctionExpr(tipb.ScalarFuncSig_LEString, columnExpr(2), stringExpr("abd")), 1, false},
		{scalarFunctionExpr(tipb.ScalarFuncSig_EQString, columnExpr(2), &tipb.Expr{Tp: tipb.ExprType_Bytes, Val: []byte("abc")}), 1, false},
		{scalarFunctionExpr(tipb.ScalarFuncSig_GTDuration, durationExpr(time.Hour), durationExpr(time.Minute)), 1, false},
		{scalarFunctionExpr(tipb.ScalarFuncSig_EQTime, timeExpr(t1, mysql.TypeDatetime), timeExpr(t1, mysql.TypeDatetime)), 1, false},
		{scalarFunctionExpr(tipb.ScalarFuncSig_NullEQJson, jsonExpr(j), jsonExpr(j)), 1, false},
		{scalarFunctionExpr(tipb.ScalarFuncSig_LTJson, jsonExpr(json.CreateBinary(int64(1))), jsonExpr(j)), 1, false},
	}
	for _, t := range tests {
		expr, err := PBToExpr(t.expr, tps, sc)
		c.Assert(err, IsNil, Commentf("%s", t.expr.Sig))
		res, isNull, err := expr.EvalInt(sc, row)
		c.Assert(err, IsNil)
		c.Assert(isNull, Equals, t.null, Commentf("%s", expr))
		c.Assert(res, Equals, t.res, Commentf("%s", expr))
	}
}

func (s *testEvalSuite) TestPBToExprTimestamp(c *C) {
	defer testleak.AfterTest(c)()
	sc := &stmtctx.StatementContext{TimeZone: time.FixedZone("UTC+8", 8*3600)}
	utc, err := types.ParseTime("2019-06-30 20:00:00", mysql.TypeTimestamp, 0)
	c.Assert(err, IsNil)
	expr, err := PBToExpr(timeExpr(utc, mysql.TypeTimestamp), nil, sc)
	c.Assert(err, IsNil)
	c.Assert(expr.String(), Equals, "2019-07-01 04:00:00")

	// DATETIME is not converted.
	dt := utc
	dt.Type = mysql.TypeDatetime
	expr, err = PBToExpr(timeExpr(dt, mysql.TypeDatetime), nil, sc)
	c.Assert(err, IsNil)
	c.Assert(expr.String(), Equals, "2019-06-30 20:00:00")
}

func (s *testEvalSuite) TestPBToExprErrors(c *C) {
	defer testleak.AfterTest(c)()
	sc := &stmtctx.StatementContext{}
	tps := []*types.FieldType{types.NewFieldType(mysql.TypeLonglong)}

	_, err := PBToExpr(columnExpr(1), tps, sc)
	c.Assert(ErrColumnOffset.Equal(err), IsTrue)
	_, err = PBToExpr(columnExpr(-1), tps, sc)
	c.Assert(ErrColumnOffset.Equal(err), IsTrue)

	_, err = PBToExpr(scalarFunctionExpr(tipb.ScalarFuncSig_PlusInt, columnExpr(0), int64Expr(1)), tps, sc)
	c.Assert(ErrFunctionNotExists.Equal(err), IsTrue)
	_, err = PBToExpr(scalarFunctionExpr(tipb.ScalarFuncSig_LTInt, columnExpr(0)), tps, sc)
	c.Assert(ErrIncorrectParameterCount.Equal(err), IsTrue)
	_, err = PBToExpr(scalarFunctionExpr(tipb.ScalarFuncSig_LTInt, columnExpr(0), int64Expr(1), int64Expr(2)), tps, sc)
	c.Assert(ErrIncorrectParameterCount.Equal(err), IsTrue)
	_, err = PBToExpr(scalarFunctionExpr(tipb.ScalarFuncSig_LTReal, columnExpr(0), float64Expr(1)), tps, sc)
	c.Assert(ErrIncompatibleArg.Equal(err), IsTrue)
	_, err = PBToExpr(scalarFunctionExpr(tipb.ScalarFuncSig_LTInt, columnExpr(0), columnExpr(3)), tps, sc)
	c.Assert(ErrColumnOffset.Equal(err), IsTrue)

	_, err = PBToExpr(&tipb.Expr{Tp: tipb.ExprType_Int64, Val: []byte{1}}, tps, sc)
	c.Assert(err, NotNil)
	_, err = PBToExpr(&tipb.Expr{Tp: tipb.ExprType_MysqlDecimal, Val: codec.EncodeCompactBytes(nil, []byte("1.2.3"))}, tps, sc)
	c.Assert(err, NotNil)
	_, err = PBToExpr(&tipb.Expr{Tp: tipb.ExprType_MysqlJson, Val: []byte{0}}, tps, sc)
	c.Assert(err, NotNil)
	_, err = PBToExpr(&tipb.Expr{Tp: tipb.ExprType_ValueList}, tps, sc)
	c.Assert(err, ErrorMatches, ".*unsupported expression type.*")

	// JSON literals that are well framed but would break evaluation.
	arr, err := json.ParseBinaryFromString(`[1, 2]`)
	c.Assert(err, IsNil)
	for _, j := range []json.BinaryJSON{
		{TypeCode: json.TypeCodeLiteral},
		{TypeCode: 0x20, Value: []byte{1}},
		{TypeCode: json.TypeCodeInt64, Value: []byte{1, 2, 3}},
		{TypeCode: json.TypeCodeString, Value: []byte{5, 'a'}},
		{TypeCode: json.TypeCodeArray, Value: arr.Value[:len(arr.Value)-4]},
	} {
		_, err = PBToExpr(scalarFunctionExpr(tipb.ScalarFuncSig_EQJson, jsonExpr(j), jsonExpr(arr)), tps, sc)
		c.Assert(json.ErrInvalidJSONText.Equal(err), IsTrue, Commentf("%v", err))
	}

	// A column without a field type cannot be typed.
	_, err = PBToExpr(columnExpr(0), []*types.FieldType{nil}, sc)
	c.Assert(err, ErrorMatches, ".*column 0 has no field type.*")
}

func (s *testEvalSuite) TestPBToExprNilContext(c *C) {
	defer testleak.AfterTest(c)()
	ts, err := types.ParseTime("2019-06-30 20:00:00", mysql.TypeTimestamp, 0)
	c.Assert(err, IsNil)
	// Without a statement context timestamps are read as UTC.
	expr, err := PBToExpr(timeExpr(ts, mysql.TypeTimestamp), nil, nil)
	c.Assert(err, IsNil)
	c.Assert(expr.String(), Equals, "2019-06-30 20:00:00")
}

func (s *testEvalSuite) TestPBCmpSigCoverage(c *C) {
	defer testleak.AfterTest(c)()
	c.Assert(pbCmpBuilders, HasLen, 49)
	domains := map[string]func(c *C) *Constant{
		DomainInt:      func(c *C) *Constant { return intConst(1) },
		DomainReal:     func(c *C) *Constant { return realConst(1) },
		DomainDecimal:  func(c *C) *Constant { return decimalConst(c, "1") },
		DomainString:   func(c *C) *Constant { return stringConst("1") },
		DomainTime:     func(c *C) *Constant { return timeConst(c, "2019-06-30 00:00:00") },
		DomainDuration: func(c *C) *Constant { return durationConst(c, "01:00:00") },
		DomainJSON:     func(c *C) *Constant { return jsonConst(c, "1") },
	}
	seen := make(map[string]bool)
	for sig, build := range pbCmpBuilders {
		var sf *ScalarFunction
		var err error
		for _, arg := range domains {
			a := arg(c)
			if sf, err = build(a, a); err == nil {
				break
			}
		}
		c.Assert(sf, NotNil, Commentf("%s", sig))
		seen[fmt.Sprintf("%s/%T", sf.FuncName.L, sf.Function)] = true
	}
	c.Assert(seen, HasLen, 49)
}
