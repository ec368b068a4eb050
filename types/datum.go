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

package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	gotime "time"

	"github.com/pingcap/copr/types/json"
	"github.com/pingcap/errors"
)

// Kind constants. The values match the datum kinds of the coprocessor.
const (
	KindNull          byte = 0
	KindInt64         byte = 1
	KindUint64        byte = 2
	KindFloat64       byte = 4
	KindString        byte = 5
	KindBytes         byte = 6
	KindMysqlDecimal  byte = 8
	KindMysqlDuration byte = 9
	KindMysqlTime     byte = 13
	KindMysqlJSON     byte = 18
)

// Datum holds one value of any kind. The zero Datum is NULL.
//
// Integers, floats and durations live in i, strings, bytes and the JSON
// payload in b, decimals and times in x.
type Datum struct {
	k   byte
	fsp uint16
	i   int64
	b   []byte
	x   interface{}
}

// Kind gets the kind of the datum.
func (d *Datum) Kind() byte { return d.k }

// IsNull checks if datum is null.
func (d *Datum) IsNull() bool { return d.k == KindNull }

// SetNull sets datum to nil.
func (d *Datum) SetNull() { *d = Datum{} }

// GetInt64 gets int64 value.
func (d *Datum) GetInt64() int64 { return d.i }

// GetUint64 gets uint64 value.
func (d *Datum) GetUint64() uint64 { return uint64(d.i) }

// GetFloat64 gets float64 value.
func (d *Datum) GetFloat64() float64 { return math.Float64frombits(uint64(d.i)) }

// GetString gets string value.
func (d *Datum) GetString() string { return string(d.b) }

// GetBytes gets bytes value.
func (d *Datum) GetBytes() []byte { return d.b }

// GetMysqlDecimal gets Decimal value.
func (d *Datum) GetMysqlDecimal() *Decimal { return d.x.(*Decimal) }

// GetMysqlTime gets Time value.
func (d *Datum) GetMysqlTime() Time { return d.x.(Time) }

// GetMysqlDuration gets Duration value.
func (d *Datum) GetMysqlDuration() Duration {
	return Duration{Duration: gotime.Duration(d.i), Fsp: int(d.fsp)}
}

// GetMysqlJSON gets json.BinaryJSON value.
func (d *Datum) GetMysqlJSON() json.BinaryJSON {
	return json.BinaryJSON{TypeCode: byte(d.i), Value: d.b}
}

func (d *Datum) setNum(k byte, i int64) {
	*d = Datum{k: k, i: i}
}

// SetInt64 sets int64 value.
func (d *Datum) SetInt64(i int64) { d.setNum(KindInt64, i) }

// SetUint64 sets uint64 value.
func (d *Datum) SetUint64(u uint64) { d.setNum(KindUint64, int64(u)) }

// SetFloat64 sets float64 value.
func (d *Datum) SetFloat64(f float64) { d.setNum(KindFloat64, int64(math.Float64bits(f))) }

// SetString sets string value.
func (d *Datum) SetString(s string) { *d = Datum{k: KindString, b: []byte(s)} }

// SetBytes sets bytes value, b is not copied.
func (d *Datum) SetBytes(b []byte) { *d = Datum{k: KindBytes, b: b} }

// SetMysqlDecimal sets Decimal value.
func (d *Datum) SetMysqlDecimal(dec *Decimal) { *d = Datum{k: KindMysqlDecimal, x: dec} }

// SetMysqlTime sets Time value.
func (d *Datum) SetMysqlTime(t Time) { *d = Datum{k: KindMysqlTime, x: t} }

// SetMysqlDuration sets Duration value.
func (d *Datum) SetMysqlDuration(dur Duration) {
	*d = Datum{k: KindMysqlDuration, i: int64(dur.Duration), fsp: uint16(dur.Fsp)}
}

// SetMysqlJSON sets json.BinaryJSON value.
func (d *Datum) SetMysqlJSON(j json.BinaryJSON) {
	*d = Datum{k: KindMysqlJSON, i: int64(j.TypeCode), b: j.Value}
}

// GetValue returns the value boxed in an interface, nil for NULL.
func (d *Datum) GetValue() interface{} {
	switch d.k {
	case KindInt64:
		return d.GetInt64()
	case KindUint64:
		return d.GetUint64()
	case KindFloat64:
		return d.GetFloat64()
	case KindString:
		return d.GetString()
	case KindBytes:
		return d.GetBytes()
	case KindMysqlDecimal:
		return d.GetMysqlDecimal()
	case KindMysqlDuration:
		return d.GetMysqlDuration()
	case KindMysqlJSON:
		return d.GetMysqlJSON()
	case KindMysqlTime:
		return d.GetMysqlTime()
	}
	return nil
}

// SetValue sets a Go value. Booleans become 1 or 0, Go types without a
// datum kind are rejected with ErrUnknownKind.
func (d *Datum) SetValue(val interface{}) error {
	switch x := val.(type) {
	case nil:
		d.SetNull()
	case bool:
		if x {
			d.SetInt64(1)
		} else {
			d.SetInt64(0)
		}
	case int:
		d.SetInt64(int64(x))
	case int64:
		d.SetInt64(x)
	case uint64:
		d.SetUint64(x)
	case float32:
		d.SetFloat64(float64(x))
	case float64:
		d.SetFloat64(x)
	case string:
		d.SetString(x)
	case []byte:
		d.SetBytes(x)
	case *Decimal:
		d.SetMysqlDecimal(x)
	case Duration:
		d.SetMysqlDuration(x)
	case json.BinaryJSON:
		d.SetMysqlJSON(x)
	case Time:
		d.SetMysqlTime(x)
	default:
		return ErrUnknownKind.GenWithStackByArgs(val)
	}
	return nil
}

// ToString gets the string representation of the datum.
func (d *Datum) ToString() (string, error) {
	switch d.k {
	case KindInt64:
		return strconv.FormatInt(d.GetInt64(), 10), nil
	case KindUint64:
		return strconv.FormatUint(d.GetUint64(), 10), nil
	case KindFloat64:
		return strconv.FormatFloat(d.GetFloat64(), 'f', -1, 64), nil
	case KindString, KindBytes:
		return d.GetString(), nil
	case KindMysqlTime:
		return d.GetMysqlTime().String(), nil
	case KindMysqlDuration:
		return d.GetMysqlDuration().String(), nil
	case KindMysqlDecimal:
		return d.GetMysqlDecimal().String(), nil
	case KindMysqlJSON:
		return d.GetMysqlJSON().String(), nil
	}
	return "", errors.Errorf("cannot convert datum of kind %d to string", d.k)
}

// NewDatum creates a Datum from a Go value. It panics on a Go type that has
// no datum kind, use SetValue to get an error instead.
func NewDatum(in interface{}) (d Datum) {
	if err := d.SetValue(in); err != nil {
		panic(err)
	}
	return d
}

// NewIntDatum creates a new Datum from an int64 value.
func NewIntDatum(i int64) (d Datum) {
	d.SetInt64(i)
	return d
}

// NewUintDatum creates a new Datum from an uint64 value.
func NewUintDatum(u uint64) (d Datum) {
	d.SetUint64(u)
	return d
}

// NewFloat64Datum creates a new Datum from a float64 value.
func NewFloat64Datum(f float64) (d Datum) {
	d.SetFloat64(f)
	return d
}

// NewStringDatum creates a new Datum from a string.
func NewStringDatum(s string) (d Datum) {
	d.SetString(s)
	return d
}

// NewBytesDatum creates a new Datum from a byte slice.
func NewBytesDatum(b []byte) (d Datum) {
	d.SetBytes(b)
	return d
}

// NewDecimalDatum creates a new Datum from a Decimal value.
func NewDecimalDatum(dec *Decimal) (d Datum) {
	d.SetMysqlDecimal(dec)
	return d
}

// NewTimeDatum creates a new Datum from a Time value.
func NewTimeDatum(t Time) (d Datum) {
	d.SetMysqlTime(t)
	return d
}

// NewDurationDatum creates a new Datum from a Duration value.
func NewDurationDatum(dur Duration) (d Datum) {
	d.SetMysqlDuration(dur)
	return d
}

// NewJSONDatum creates a new Datum from a BinaryJSON value.
func NewJSONDatum(j json.BinaryJSON) (d Datum) {
	d.SetMysqlJSON(j)
	return d
}

// MakeDatums creates a row from Go values, see NewDatum.
func MakeDatums(args ...interface{}) []Datum {
	datums := make([]Datum, len(args))
	for i, v := range args {
		datums[i] = NewDatum(v)
	}
	return datums
}

// DatumsToString joins the datums with ", ". Strings are quoted and NULL
// is written as NULL.
func DatumsToString(datums []Datum) (string, error) {
	strs := make([]string, 0, len(datums))
	for i := range datums {
		d := &datums[i]
		if d.IsNull() {
			strs = append(strs, "NULL")
			continue
		}
		str, err := d.ToString()
		if err != nil {
			return "", errors.Trace(err)
		}
		if d.k == KindString || d.k == KindBytes {
			str = strconv.Quote(str)
		}
		strs = append(strs, str)
	}
	return strings.Join(strs, ", "), nil
}

// CompareDatum compares datum to another datum of the same kind.
// NULL is less than any other value, two NULLs are equal.
func (d *Datum) CompareDatum(ad *Datum) (int, error) {
	if d.IsNull() || ad.IsNull() {
		return CompareInt64(boolToOrder(!d.IsNull()), boolToOrder(!ad.IsNull())), nil
	}
	if d.k != ad.k {
		return 0, errors.Errorf("cannot compare datum of kind %d with kind %d", d.k, ad.k)
	}
	switch d.k {
	case KindInt64:
		return CompareInt64(d.GetInt64(), ad.GetInt64()), nil
	case KindUint64:
		return CompareUint64(d.GetUint64(), ad.GetUint64()), nil
	case KindFloat64:
		return CompareFloat64(d.GetFloat64(), ad.GetFloat64()), nil
	case KindString, KindBytes:
		return CompareBytes(d.b, ad.b), nil
	case KindMysqlDecimal:
		return d.GetMysqlDecimal().Compare(ad.GetMysqlDecimal()), nil
	case KindMysqlDuration:
		return d.GetMysqlDuration().Compare(ad.GetMysqlDuration()), nil
	case KindMysqlTime:
		return d.GetMysqlTime().Compare(ad.GetMysqlTime()), nil
	case KindMysqlJSON:
		return json.CompareBinary(d.GetMysqlJSON(), ad.GetMysqlJSON()), nil
	}
	return 0, errors.Errorf("cannot compare datum of kind %d", d.k)
}

func boolToOrder(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// String implements fmt.Stringer interface.
func (d Datum) String() string {
	if d.IsNull() {
		return "NULL"
	}
	s, err := d.ToString()
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return s
}
