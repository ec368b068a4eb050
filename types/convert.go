// Copyright 2015 PingCAP, Inc.
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
	"strconv"
	"strings"

	"github.com/pingcap/copr/sessionctx/stmtctx"
	"github.com/pingcap/copr/types/json"
	"github.com/pingcap/errors"
	"github.com/pingcap/parser/mysql"
)

// ParseDatum reads str as a value of field type ft.
// An out of range number is clamped when sc allows overflow as a warning.
// A malformed value becomes NULL when sc allows truncation as a warning,
// and is an error otherwise.
func ParseDatum(sc *stmtctx.StatementContext, str string, ft *FieldType) (d Datum, err error) {
	switch ft.Tp {
	case mysql.TypeNull:
		return d, nil
	case mysql.TypeTiny, mysql.TypeShort, mysql.TypeInt24, mysql.TypeLong, mysql.TypeLonglong, mysql.TypeYear:
		if IsUnsigned(ft) {
			var u uint64
			u, err = StrToUint(sc, str)
			d.SetUint64(u)
		} else {
			var i int64
			i, err = StrToInt(sc, str)
			d.SetInt64(i)
		}
	case mysql.TypeFloat, mysql.TypeDouble:
		var f float64
		f, err = StrToFloat(sc, str)
		d.SetFloat64(f)
	case mysql.TypeNewDecimal:
		var dec *Decimal
		if dec, err = NewDecFromString(strings.TrimSpace(str)); err != nil {
			err = sc.HandleTruncate(ErrTruncatedWrongVal.GenWithStackByArgs("DECIMAL", str))
			return Datum{}, err
		}
		d.SetMysqlDecimal(dec)
	case mysql.TypeVarchar, mysql.TypeVarString, mysql.TypeString,
		mysql.TypeBlob, mysql.TypeTinyBlob, mysql.TypeMediumBlob, mysql.TypeLongBlob:
		d.SetString(str)
	case mysql.TypeDate, mysql.TypeDatetime, mysql.TypeTimestamp:
		var t Time
		if t, err = ParseTime(str, ft.Tp, ft.Decimal); err != nil {
			return Datum{}, sc.HandleTruncate(err)
		}
		d.SetMysqlTime(t)
	case mysql.TypeDuration:
		var dur Duration
		if dur, err = ParseDuration(str, ft.Decimal); err != nil {
			return Datum{}, sc.HandleTruncate(err)
		}
		d.SetMysqlDuration(dur)
	case mysql.TypeJSON:
		var j json.BinaryJSON
		if j, err = json.ParseBinaryFromString(str); err != nil {
			return Datum{}, sc.HandleTruncate(ErrTruncatedWrongVal.GenWithStackByArgs("JSON", str))
		}
		d.SetMysqlJSON(j)
	default:
		return d, errors.Errorf("can not read a value of type %s", TypeStr(ft.Tp))
	}
	if ErrTruncatedWrongVal.Equal(err) {
		return Datum{}, sc.HandleTruncate(err)
	}
	return d, err
}

// StrToInt converts a string to an int64. An out of range value is clamped
// to the nearest bound and reported as ErrOverflow, a malformed one as
// ErrTruncatedWrongVal.
func StrToInt(sc *stmtctx.StatementContext, str string) (int64, error) {
	str = strings.TrimSpace(str)
	iVal, err := strconv.ParseInt(str, 10, 64)
	return iVal, handleNumError(sc, err, "BIGINT", str)
}

// StrToUint converts a string to an uint64.
func StrToUint(sc *stmtctx.StatementContext, str string) (uint64, error) {
	str = strings.TrimPrefix(strings.TrimSpace(str), "+")
	uVal, err := strconv.ParseUint(str, 10, 64)
	return uVal, handleNumError(sc, err, "BIGINT UNSIGNED", str)
}

// StrToFloat converts a string to a float64, "NaN" and "Inf" included.
func StrToFloat(sc *stmtctx.StatementContext, str string) (float64, error) {
	str = strings.TrimSpace(str)
	f, err := strconv.ParseFloat(str, 64)
	return f, handleNumError(sc, err, "DOUBLE", str)
}

func handleNumError(sc *stmtctx.StatementContext, err error, tp, str string) error {
	if err == nil {
		return nil
	}
	if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
		ovErr := ErrOverflow.GenWithStackByArgs(tp, str)
		return sc.HandleOverflow(ovErr, ovErr)
	}
	return ErrTruncatedWrongVal.GenWithStackByArgs(tp, str)
}
