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

package types

import (
	"math"

	"github.com/cockroachdb/apd/v3"
	"github.com/pingcap/errors"
)

// Decimal is an arbitrary-precision, finite decimal number.
// The zero value is 0.
type Decimal struct {
	d apd.Decimal
}

// NewDecFromString parses s, e.g. "-12.340" or "1e10", into a Decimal.
func NewDecFromString(s string) (*Decimal, error) {
	dec := new(Decimal)
	if err := dec.FromString(s); err != nil {
		return nil, err
	}
	return dec, nil
}

// NewDecFromInt creates a Decimal from an int64.
func NewDecFromInt(i int64) *Decimal {
	dec := new(Decimal)
	dec.d.SetInt64(i)
	return dec
}

// NewDecFromUint creates a Decimal from a uint64.
func NewDecFromUint(u uint64) *Decimal {
	dec := new(Decimal)
	dec.d.Coeff.SetUint64(u)
	dec.d.Exponent = 0
	return dec
}

// NewDecFromFloat creates a Decimal from a float64. NaN and infinities are
// rejected because a decimal column can not hold them.
func NewDecFromFloat(f float64) (*Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errors.Trace(ErrBadNumber)
	}
	dec := new(Decimal)
	if _, err := dec.d.SetFloat64(f); err != nil {
		return nil, errors.Trace(err)
	}
	return dec, nil
}

// FromString sets d to the value of s.
func (d *Decimal) FromString(s string) error {
	_, _, err := d.d.SetString(s)
	if err != nil || d.d.Form != apd.Finite {
		return errors.Trace(ErrBadNumber)
	}
	return nil
}

// Compare returns -1, 0 or 1 for d < o, d == o and d > o.
// Trailing zeros in the fraction do not affect the result.
func (d *Decimal) Compare(o *Decimal) int {
	return d.d.Cmp(&o.d)
}

// IsNegative reports whether d is less than zero.
func (d *Decimal) IsNegative() bool {
	return d.d.Sign() < 0
}

// IsZero reports whether d is zero.
func (d *Decimal) IsZero() bool {
	return d.d.IsZero()
}

// String returns the plain decimal notation of d.
func (d *Decimal) String() string {
	return d.d.Text('f')
}
