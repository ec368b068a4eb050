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
	"time"

	"github.com/pingcap/copr/metrics"
	"github.com/pingcap/copr/sessionctx/stmtctx"
	"github.com/pingcap/copr/types"
	"github.com/pingcap/copr/util/codec"
	"github.com/pingcap/copr/util/logutil"
	"github.com/pingcap/errors"
	"github.com/pingcap/parser/mysql"
	"github.com/pingcap/tipb/go-tipb"
	"go.uber.org/zap"
)

func pbTypeToFieldType(tp *tipb.FieldType) *types.FieldType {
	if tp == nil {
		return types.NewFieldType(mysql.TypeUnspecified)
	}
	return &types.FieldType{
		Tp:      byte(tp.Tp),
		Flag:    uint(tp.Flag),
		Flen:    int(tp.Flen),
		Decimal: int(tp.Decimal),
		Charset: tp.Charset,
		Collate: mysql.Collations[uint8(tp.Collate)],
	}
}

var pbCmpBuilders = map[tipb.ScalarFuncSig]cmpBuilder{
	tipb.ScalarFuncSig_LTInt:     intCmp(LTInt),
	tipb.ScalarFuncSig_LEInt:     intCmp(LEInt),
	tipb.ScalarFuncSig_GTInt:     intCmp(GTInt),
	tipb.ScalarFuncSig_GEInt:     intCmp(GEInt),
	tipb.ScalarFuncSig_EQInt:     intCmp(EQInt),
	tipb.ScalarFuncSig_NEInt:     intCmp(NEInt),
	tipb.ScalarFuncSig_NullEQInt: intCmp(NullEQInt),

	tipb.ScalarFuncSig_LTReal:     realCmp(LTReal),
	tipb.ScalarFuncSig_LEReal:     realCmp(LEReal),
	tipb.ScalarFuncSig_GTReal:     realCmp(GTReal),
	tipb.ScalarFuncSig_GEReal:     realCmp(GEReal),
	tipb.ScalarFuncSig_EQReal:     realCmp(EQReal),
	tipb.ScalarFuncSig_NEReal:     realCmp(NEReal),
	tipb.ScalarFuncSig_NullEQReal: realCmp(NullEQReal),

	tipb.ScalarFuncSig_LTDecimal:     decimalCmp(LTDecimal),
	tipb.ScalarFuncSig_LEDecimal:     decimalCmp(LEDecimal),
	tipb.ScalarFuncSig_GTDecimal:     decimalCmp(GTDecimal),
	tipb.ScalarFuncSig_GEDecimal:     decimalCmp(GEDecimal),
	tipb.ScalarFuncSig_EQDecimal:     decimalCmp(EQDecimal),
	tipb.ScalarFuncSig_NEDecimal:     decimalCmp(NEDecimal),
	tipb.ScalarFuncSig_NullEQDecimal: decimalCmp(NullEQDecimal),

	tipb.ScalarFuncSig_LTString:     stringCmp(LTString),
	tipb.ScalarFuncSig_LEString:     stringCmp(LEString),
	tipb.ScalarFuncSig_GTString:     stringCmp(GTString),
	tipb.ScalarFuncSig_GEString:     stringCmp(GEString),
	tipb.ScalarFuncSig_EQString:     stringCmp(EQString),
	tipb.ScalarFuncSig_NEString:     stringCmp(NEString),
	tipb.ScalarFuncSig_NullEQString: stringCmp(NullEQString),

	tipb.ScalarFuncSig_LTTime:     timeCmp(LTTime),
	tipb.ScalarFuncSig_LETime:     timeCmp(LETime),
	tipb.ScalarFuncSig_GTTime:     timeCmp(GTTime),
	tipb.ScalarFuncSig_GETime:     timeCmp(GETime),
	tipb.ScalarFuncSig_EQTime:     timeCmp(EQTime),
	tipb.ScalarFuncSig_NETime:     timeCmp(NETime),
	tipb.ScalarFuncSig_NullEQTime: timeCmp(NullEQTime),

	tipb.ScalarFuncSig_LTDuration:     durationCmp(LTDuration),
	tipb.ScalarFuncSig_LEDuration:     durationCmp(LEDuration),
	tipb.ScalarFuncSig_GTDuration:     durationCmp(GTDuration),
	tipb.ScalarFuncSig_GEDuration:     durationCmp(GEDuration),
	tipb.ScalarFuncSig_EQDuration:     durationCmp(EQDuration),
	tipb.ScalarFuncSig_NEDuration:     durationCmp(NEDuration),
	tipb.ScalarFuncSig_NullEQDuration: durationCmp(NullEQDuration),

	tipb.ScalarFuncSig_LTJson:     jsonCmp(LTJSON),
	tipb.ScalarFuncSig_LEJson:     jsonCmp(LEJSON),
	tipb.ScalarFuncSig_GTJson:     jsonCmp(GTJSON),
	tipb.ScalarFuncSig_GEJson:     jsonCmp(GEJSON),
	tipb.ScalarFuncSig_EQJson:     jsonCmp(EQJSON),
	tipb.ScalarFuncSig_NEJson:     jsonCmp(NEJSON),
	tipb.ScalarFuncSig_NullEQJson: jsonCmp(NullEQJSON),
}

func newDistSQLFunctionBySig(sigCode tipb.ScalarFuncSig, args []Expression) (Expression, error) {
	build, ok := pbCmpBuilders[sigCode]
	if !ok {
		return nil, ErrFunctionNotExists.GenWithStackByArgs("FUNCTION", sigCode.String())
	}
	if len(args) != 2 {
		return nil, ErrIncorrectParameterCount.GenWithStackByArgs(sigCode.String())
	}
	return build(args[0], args[1])
}

// PBToExpr converts pb structure to expression. tps holds the field types
// of the row columns. sc may be nil, timestamps are then read as UTC.
func PBToExpr(expr *tipb.Expr, tps []*types.FieldType, sc *stmtctx.StatementContext) (Expression, error) {
	e, err := pbToExpr(expr, tps, sc)
	switch {
	case err == nil:
		metrics.ExprBuildCounter.WithLabelValues(metrics.LblOK).Inc()
	case ErrFunctionNotExists.Equal(err):
		metrics.ExprBuildCounter.WithLabelValues(metrics.LblUnsupported).Inc()
		logutil.BgLogger().Warn("unsupported function in pb expression", zap.Error(err))
	default:
		metrics.ExprBuildCounter.WithLabelValues(metrics.LblInvalid).Inc()
		logutil.BgLogger().Warn("build expression from pb failed", zap.Stringer("tp", expr.Tp), zap.Error(err))
	}
	return e, err
}

func pbToExpr(expr *tipb.Expr, tps []*types.FieldType, sc *stmtctx.StatementContext) (Expression, error) {
	switch expr.Tp {
	case tipb.ExprType_ColumnRef:
		return columnFromPB(expr.Val, tps)
	case tipb.ExprType_MysqlTime:
		return timeFromPB(expr.Val, expr.FieldType, sc.Location())
	case tipb.ExprType_ScalarFunc:
		args := make([]Expression, len(expr.Children))
		for i, child := range expr.Children {
			arg, err := pbToExpr(child, tps, sc)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return newDistSQLFunctionBySig(expr.Sig, args)
	}
	decode, ok := literalDecoders[expr.Tp]
	if !ok {
		return nil, errors.Errorf("unsupported expression type %s", expr.Tp)
	}
	d, tp, err := decode(expr.Val)
	if err != nil {
		return nil, errors.Annotatef(err, "invalid %s literal % x", expr.Tp, expr.Val)
	}
	c := &Constant{Value: d, RetType: types.NewFieldType(tp)}
	if expr.Tp == tipb.ExprType_Uint64 {
		c.RetType.Flag |= mysql.UnsignedFlag
	}
	return c, nil
}

func columnFromPB(val []byte, tps []*types.FieldType) (*Column, error) {
	_, offset, err := codec.DecodeInt(val)
	if err != nil {
		return nil, errors.Annotatef(err, "invalid column reference % x", val)
	}
	if offset < 0 || offset >= int64(len(tps)) {
		return nil, ErrColumnOffset.GenWithStackByArgs(offset, len(tps))
	}
	if tps[offset] == nil {
		return nil, errors.Errorf("column %d has no field type", offset)
	}
	return &Column{Index: int(offset), RetType: tps[offset]}, nil
}

// literalDecoder decodes the value of a literal and returns the column type
// its Constant reports.
type literalDecoder func(val []byte) (types.Datum, byte, error)

var literalDecoders = map[tipb.ExprType]literalDecoder{
	tipb.ExprType_Null: func([]byte) (types.Datum, byte, error) {
		return types.Datum{}, mysql.TypeNull, nil
	},
	tipb.ExprType_Int64: func(val []byte) (types.Datum, byte, error) {
		_, i, err := codec.DecodeInt(val)
		return types.NewIntDatum(i), mysql.TypeLonglong, err
	},
	tipb.ExprType_Uint64: func(val []byte) (types.Datum, byte, error) {
		_, u, err := codec.DecodeUint(val)
		return types.NewUintDatum(u), mysql.TypeLonglong, err
	},
	tipb.ExprType_String: func(val []byte) (types.Datum, byte, error) {
		return types.NewStringDatum(string(val)), mysql.TypeVarString, nil
	},
	tipb.ExprType_Bytes: func(val []byte) (types.Datum, byte, error) {
		return types.NewBytesDatum(val), mysql.TypeString, nil
	},
	tipb.ExprType_Float32: func(val []byte) (types.Datum, byte, error) {
		_, f, err := codec.DecodeFloat(val)
		return types.NewFloat64Datum(float64(float32(f))), mysql.TypeDouble, err
	},
	tipb.ExprType_Float64: func(val []byte) (types.Datum, byte, error) {
		_, f, err := codec.DecodeFloat(val)
		return types.NewFloat64Datum(f), mysql.TypeDouble, err
	},
	// Decimals travel as their string form in compact bytes.
	tipb.ExprType_MysqlDecimal: func(val []byte) (types.Datum, byte, error) {
		_, s, err := codec.DecodeCompactBytes(val)
		if err != nil {
			return types.Datum{}, 0, err
		}
		dec, err := types.NewDecFromString(string(s))
		if err != nil {
			return types.Datum{}, 0, err
		}
		return types.NewDecimalDatum(dec), mysql.TypeNewDecimal, nil
	},
	tipb.ExprType_MysqlDuration: func(val []byte) (types.Datum, byte, error) {
		_, i, err := codec.DecodeInt(val)
		return types.NewDurationDatum(types.Duration{Duration: time.Duration(i), Fsp: types.MaxFsp}), mysql.TypeDuration, err
	},
	tipb.ExprType_MysqlJson: func(val []byte) (types.Datum, byte, error) {
		_, j, err := codec.DecodeJSON(val)
		return types.NewJSONDatum(j), mysql.TypeJSON, err
	},
}

// timeFromPB reads a packed time. TIMESTAMP literals are stored in UTC and
// moved to tz.
func timeFromPB(val []byte, ftPB *tipb.FieldType, tz *time.Location) (*Constant, error) {
	ft := pbTypeToFieldType(ftPB)
	switch ft.Tp {
	case mysql.TypeDate, mysql.TypeDatetime, mysql.TypeTimestamp:
	default:
		ft = types.NewFieldType(mysql.TypeDatetime)
	}
	_, packed, err := codec.DecodeUint(val)
	if err != nil {
		return nil, errors.Annotatef(err, "invalid time literal % x", val)
	}
	fsp, err := types.CheckFsp(ft.Decimal)
	if err != nil {
		return nil, err
	}
	t := types.Time{Type: ft.Tp, Fsp: fsp}
	t.FromPackedUint(packed)
	if ft.Tp == mysql.TypeTimestamp && tz != time.UTC {
		if err = t.ConvertTimeZone(time.UTC, tz); err != nil {
			return nil, err
		}
	}
	return &Constant{Value: types.NewTimeDatum(t), RetType: ft}, nil
}
