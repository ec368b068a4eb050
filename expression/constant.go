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
	"github.com/pingcap/copr/sessionctx/stmtctx"
	"github.com/pingcap/copr/types"
	"github.com/pingcap/copr/types/json"
	"github.com/pingcap/parser/mysql"
	"github.com/pingcap/parser/terror"
)

// Shared TINYINT and NULL constants. Callers must not modify them.
var (
	One  = newTinyConstant(1)
	Zero = newTinyConstant(0)
	Null = &Constant{RetType: types.NewFieldType(mysql.TypeNull)}
)

func newTinyConstant(v int64) *Constant {
	return &Constant{Value: types.NewIntDatum(v), RetType: types.NewFieldType(mysql.TypeTiny)}
}

// Constant is a literal value, it ignores the row it is evaluated on.
type Constant struct {
	Value   types.Datum
	RetType *types.FieldType
}

func (c *Constant) String() string {
	s, err := types.DatumsToString([]types.Datum{c.Value})
	terror.Log(err)
	return s
}

// Clone implements Expression interface.
func (c *Constant) Clone() Expression {
	dup := *c
	return &dup
}

// GetType implements Expression interface.
func (c *Constant) GetType() *types.FieldType {
	return c.RetType
}

// Equal reports whether b is a constant holding the same value of the same kind.
func (c *Constant) Equal(b Expression) bool {
	other, ok := b.(*Constant)
	if !ok {
		return false
	}
	cmp, err := c.Value.CompareDatum(&other.Value)
	return err == nil && cmp == 0
}

// Eval implements Expression interface.
func (c *Constant) Eval(*stmtctx.StatementContext, []types.Datum) (types.Datum, error) {
	return c.Value, nil
}

// EvalInt implements Expression interface.
func (c *Constant) EvalInt(*stmtctx.StatementContext, []types.Datum) (int64, bool, error) {
	return intFromDatum(&c.Value)
}

// EvalReal implements Expression interface.
func (c *Constant) EvalReal(*stmtctx.StatementContext, []types.Datum) (float64, bool, error) {
	return realFromDatum(&c.Value)
}

// EvalString implements Expression interface.
func (c *Constant) EvalString(*stmtctx.StatementContext, []types.Datum) (string, bool, error) {
	return stringFromDatum(&c.Value)
}

// EvalDecimal implements Expression interface.
func (c *Constant) EvalDecimal(*stmtctx.StatementContext, []types.Datum) (*types.Decimal, bool, error) {
	return decimalFromDatum(&c.Value)
}

// EvalTime implements Expression interface.
func (c *Constant) EvalTime(*stmtctx.StatementContext, []types.Datum) (types.Time, bool, error) {
	return timeFromDatum(&c.Value)
}

// EvalDuration implements Expression interface.
func (c *Constant) EvalDuration(*stmtctx.StatementContext, []types.Datum) (types.Duration, bool, error) {
	return durationFromDatum(&c.Value)
}

// EvalJSON implements Expression interface.
func (c *Constant) EvalJSON(*stmtctx.StatementContext, []types.Datum) (json.BinaryJSON, bool, error) {
	return jsonFromDatum(&c.Value)
}
