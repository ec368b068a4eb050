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

package expression

import (
	"github.com/pingcap/copr/types"
	"github.com/pingcap/copr/types/json"
)

// The helpers below read a datum in one evaluation domain. A NULL datum is
// NULL in every domain, any other kind outside of the domain is an error.

func datumKindName(d *types.Datum) string {
	switch d.Kind() {
	case types.KindInt64:
		return "int64"
	case types.KindUint64:
		return "uint64"
	case types.KindFloat64:
		return "float64"
	case types.KindString:
		return "string"
	case types.KindBytes:
		return "bytes"
	case types.KindMysqlDecimal:
		return "decimal"
	case types.KindMysqlDuration:
		return "duration"
	case types.KindMysqlTime:
		return "time"
	case types.KindMysqlJSON:
		return "json"
	}
	return "unknown"
}

func intFromDatum(d *types.Datum) (int64, bool, error) {
	switch d.Kind() {
	case types.KindNull:
		return 0, true, nil
	case types.KindInt64:
		return d.GetInt64(), false, nil
	case types.KindUint64:
		return int64(d.GetUint64()), false, nil
	}
	return 0, true, ErrIncompatibleArg.GenWithStackByArgs("evalInt", datumKindName(d))
}

func realFromDatum(d *types.Datum) (float64, bool, error) {
	switch d.Kind() {
	case types.KindNull:
		return 0, true, nil
	case types.KindFloat64:
		return d.GetFloat64(), false, nil
	}
	return 0, true, ErrIncompatibleArg.GenWithStackByArgs("evalReal", datumKindName(d))
}

func stringFromDatum(d *types.Datum) (string, bool, error) {
	switch d.Kind() {
	case types.KindNull:
		return "", true, nil
	case types.KindString, types.KindBytes:
		return d.GetString(), false, nil
	}
	return "", true, ErrIncompatibleArg.GenWithStackByArgs("evalString", datumKindName(d))
}

func decimalFromDatum(d *types.Datum) (*types.Decimal, bool, error) {
	switch d.Kind() {
	case types.KindNull:
		return nil, true, nil
	case types.KindMysqlDecimal:
		return d.GetMysqlDecimal(), false, nil
	}
	return nil, true, ErrIncompatibleArg.GenWithStackByArgs("evalDecimal", datumKindName(d))
}

func timeFromDatum(d *types.Datum) (types.Time, bool, error) {
	switch d.Kind() {
	case types.KindNull:
		return types.Time{}, true, nil
	case types.KindMysqlTime:
		return d.GetMysqlTime(), false, nil
	}
	return types.Time{}, true, ErrIncompatibleArg.GenWithStackByArgs("evalTime", datumKindName(d))
}

func durationFromDatum(d *types.Datum) (types.Duration, bool, error) {
	switch d.Kind() {
	case types.KindNull:
		return types.Duration{}, true, nil
	case types.KindMysqlDuration:
		return d.GetMysqlDuration(), false, nil
	}
	return types.Duration{}, true, ErrIncompatibleArg.GenWithStackByArgs("evalDuration", datumKindName(d))
}

func jsonFromDatum(d *types.Datum) (json.BinaryJSON, bool, error) {
	switch d.Kind() {
	case types.KindNull:
		return json.BinaryJSON{}, true, nil
	case types.KindMysqlJSON:
		return d.GetMysqlJSON(), false, nil
	}
	return json.BinaryJSON{}, true, ErrIncompatibleArg.GenWithStackByArgs("evalJSON", datumKindName(d))
}
