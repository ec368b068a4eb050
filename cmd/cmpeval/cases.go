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

package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/opentracing/opentracing-go"
	"github.com/pingcap/copr/expression"
	"github.com/pingcap/copr/metrics"
	"github.com/pingcap/copr/sessionctx/stmtctx"
	"github.com/pingcap/copr/types"
	"github.com/pingcap/copr/util/logutil"
	"github.com/pingcap/copr/util/printer"
	"github.com/pingcap/errors"
	"github.com/pingcap/parser/model"
	"github.com/pingcap/parser/mysql"
	"go.uber.org/zap"
)

const (
	refColumn = "col:"
	refConst  = "const:"
	nullValue = "NULL"
)

type columnDef struct {
	Name     string `toml:"name"`
	Type     string `toml:"type"`
	Unsigned bool   `toml:"unsigned"`
	Fsp      int    `toml:"fsp"`
}

type rowDef struct {
	Values []string `toml:"values"`
}

// cmpDef is a comparison to run over every row. Operands are "col:<name>"
// or "const:<literal>", constants are read in the domain of the signature.
// Filter comparisons select rows instead of being reported.
type cmpDef struct {
	Sig    string `toml:"sig"`
	LHS    string `toml:"lhs"`
	RHS    string `toml:"rhs"`
	Filter bool   `toml:"filter"`
}

type orderDef struct {
	Column string `toml:"column"`
	Desc   bool   `toml:"desc"`
}

// caseFile is a table of typed rows and the comparisons to run over it.
type caseFile struct {
	Columns []columnDef `toml:"column"`
	Rows    []rowDef    `toml:"row"`
	Cmps    []cmpDef    `toml:"cmp"`
	Orders  []orderDef  `toml:"order"`
}

var columnTypes = map[string]byte{
	"tinyint":   mysql.TypeTiny,
	"int":       mysql.TypeLong,
	"bigint":    mysql.TypeLonglong,
	"float":     mysql.TypeFloat,
	"double":    mysql.TypeDouble,
	"decimal":   mysql.TypeNewDecimal,
	"char":      mysql.TypeString,
	"varchar":   mysql.TypeVarchar,
	"blob":      mysql.TypeBlob,
	"date":      mysql.TypeDate,
	"datetime":  mysql.TypeDatetime,
	"timestamp": mysql.TypeTimestamp,
	"time":      mysql.TypeDuration,
	"json":      mysql.TypeJSON,
}

var cmpDomains = []string{
	expression.DomainInt,
	expression.DomainReal,
	expression.DomainDecimal,
	expression.DomainString,
	expression.DomainDuration,
	expression.DomainTime,
	expression.DomainJSON,
}

func loadCaseFile(path string) (*caseFile, error) {
	cf := &caseFile{}
	metaData, err := toml.DecodeFile(path, cf)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if undecoded := metaData.Undecoded(); len(undecoded) > 0 {
		items := make([]string, 0, len(undecoded))
		for _, item := range undecoded {
			items = append(items, item.String())
		}
		return nil, errors.Errorf("case file %s contained unknown keys: %s", path, strings.Join(items, ", "))
	}
	return cf, nil
}

// sigDomain returns the domain suffix of a signature name, "" if there is none.
func sigDomain(sig string) string {
	for _, domain := range cmpDomains {
		if strings.HasSuffix(sig, domain) {
			return domain
		}
	}
	return ""
}

// fracLen is the fsp a time literal asks for.
func fracLen(lit string) int {
	idx := strings.LastIndexByte(lit, '.')
	if idx < 0 {
		return types.DefaultFsp
	}
	if n := len(lit) - idx - 1; n < types.MaxFsp {
		return n
	}
	return types.MaxFsp
}

func constFieldType(lit, domain string) (*types.FieldType, error) {
	var ft *types.FieldType
	switch domain {
	case expression.DomainInt:
		ft = types.NewFieldType(mysql.TypeLonglong)
		lit = strings.TrimSpace(lit)
		if _, err := strconv.ParseInt(lit, 10, 64); err != nil {
			if _, err = strconv.ParseUint(strings.TrimPrefix(lit, "+"), 10, 64); err == nil {
				ft.Flag |= mysql.UnsignedFlag
			}
		}
	case expression.DomainReal:
		ft = types.NewFieldType(mysql.TypeDouble)
	case expression.DomainDecimal:
		ft = types.NewFieldType(mysql.TypeNewDecimal)
	case expression.DomainString:
		ft = types.NewFieldType(mysql.TypeVarchar)
	case expression.DomainTime:
		ft = types.NewFieldType(mysql.TypeDatetime)
		ft.Decimal = fracLen(lit)
	case expression.DomainDuration:
		ft = types.NewFieldType(mysql.TypeDuration)
		ft.Decimal = fracLen(lit)
	case expression.DomainJSON:
		ft = types.NewFieldType(mysql.TypeJSON)
	default:
		return nil, errors.Errorf("unknown domain %q", domain)
	}
	return ft, nil
}

type caseEvaluator struct {
	sc     *stmtctx.StatementContext
	schema []*expression.Column
	byName map[string]*expression.Column
	rows   [][]types.Datum
}

func newCaseEvaluator(sc *stmtctx.StatementContext, cf *caseFile) (*caseEvaluator, error) {
	e := &caseEvaluator{
		sc:     sc,
		byName: make(map[string]*expression.Column, len(cf.Columns)),
	}
	for i, def := range cf.Columns {
		tp, ok := columnTypes[strings.ToLower(def.Type)]
		if !ok {
			return nil, errors.Errorf("column %q has unknown type %q", def.Name, def.Type)
		}
		ft := types.NewFieldType(tp)
		if def.Unsigned {
			ft.Flag |= mysql.UnsignedFlag
		}
		if def.Fsp != 0 {
			ft.Decimal = def.Fsp
		}
		col := &expression.Column{ColName: model.NewCIStr(def.Name), RetType: ft, Index: i}
		if _, dup := e.byName[col.ColName.L]; dup || col.ColName.L == "" {
			return nil, errors.Errorf("column %d: empty or duplicated name %q", i+1, def.Name)
		}
		e.schema = append(e.schema, col)
		e.byName[col.ColName.L] = col
	}

	for i, def := range cf.Rows {
		if len(def.Values) != len(e.schema) {
			return nil, errors.Errorf("row %d has %d values, want %d", i+1, len(def.Values), len(e.schema))
		}
		row := make([]types.Datum, len(e.schema))
		for j, v := range def.Values {
			if v == nullValue {
				continue
			}
			d, err := types.ParseDatum(sc, v, e.schema[j].RetType)
			if err != nil {
				return nil, errors.Annotatef(err, "row %d column %s", i+1, e.schema[j])
			}
			row[j] = d
		}
		e.rows = append(e.rows, row)
	}
	return e, nil
}

func (e *caseEvaluator) operand(ref, domain string) (expression.Expression, error) {
	switch {
	case strings.HasPrefix(ref, refColumn):
		name := strings.ToLower(strings.TrimPrefix(ref, refColumn))
		col, ok := e.byName[name]
		if !ok {
			return nil, errors.Errorf("unknown column %q", name)
		}
		return col, nil
	case strings.HasPrefix(ref, refConst):
		lit := strings.TrimPrefix(ref, refConst)
		if lit == nullValue {
			return &expression.Constant{Value: types.NewDatum(nil), RetType: types.NewFieldType(mysql.TypeNull)}, nil
		}
		ft, err := constFieldType(lit, domain)
		if err != nil {
			return nil, err
		}
		d, err := types.ParseDatum(e.sc, lit, ft)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return &expression.Constant{Value: d, RetType: ft}, nil
	}
	return nil, errors.Errorf("operand %q should start with %q or %q", ref, refColumn, refConst)
}

type boundCmp struct {
	label string
	fn    *expression.ScalarFunction
}

func (e *caseEvaluator) bind(def cmpDef) (*boundCmp, error) {
	domain := sigDomain(def.Sig)
	if domain == "" {
		return nil, expression.ErrFunctionNotExists.GenWithStackByArgs("FUNCTION", def.Sig)
	}
	lhs, err := e.operand(def.LHS, domain)
	if err != nil {
		return nil, err
	}
	rhs, err := e.operand(def.RHS, domain)
	if err != nil {
		return nil, err
	}
	fn, err := expression.NewComparisonByName(def.Sig, lhs, rhs)
	if err != nil {
		return nil, err
	}
	return &boundCmp{label: fmt.Sprintf("%s(%s, %s)", def.Sig, lhs, rhs), fn: fn}, nil
}

// caseReport is the outcome of one case file. A failed report has at least
// one comparison that returned an error.
type caseReport struct {
	path   string
	lines  []string
	cols   []string
	table  [][]string
	failed bool
}

func (r *caseReport) addLine(format string, args ...interface{}) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *caseReport) fail(format string, args ...interface{}) {
	r.failed = true
	r.addLine(format, args...)
}

func (r *caseReport) print(withTable bool) {
	logutil.ReportLogger.Infof("== %s", r.path)
	for _, line := range r.lines {
		logutil.ReportLogger.Info(line)
	}
	if !withTable {
		return
	}
	if s, ok := printer.GetPrintResult(r.cols, r.table); ok {
		logutil.ReportLogger.Info(strings.TrimSuffix(s, "\n"))
	}
}

func runCase(ctx context.Context, sc *stmtctx.StatementContext, path string) (*caseReport, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "cmpeval.runCase")
	span.SetTag("case", path)
	defer span.Finish()
	start := time.Now()
	defer func() {
		metrics.CaseDuration.Observe(time.Since(start).Seconds())
	}()
	ctx = logutil.WithKeyValue(ctx, "case", path)

	cf, err := loadCaseFile(path)
	if err != nil {
		return nil, err
	}
	sc.ResetForRetry()
	e, err := newCaseEvaluator(sc, cf)
	if err != nil {
		return nil, err
	}

	var filters expression.CNFExprs
	var outputs []*boundCmp
	for i, def := range cf.Cmps {
		bc, err := e.bind(def)
		if err != nil {
			return nil, errors.Annotatef(err, "cmp %d", i+1)
		}
		if def.Filter {
			filters = append(filters, bc.fn)
		} else {
			outputs = append(outputs, bc)
		}
	}
	logutil.Logger(ctx).Debug("case loaded",
		zap.Int("rows", len(e.rows)),
		zap.Int("filters", len(filters)),
		zap.Int("cmps", len(outputs)))

	r := &caseReport{path: path, cols: []string{"row"}}
	for _, bc := range outputs {
		r.cols = append(r.cols, bc.label)
	}
	if err = e.evalRows(ctx, filters, outputs, r); err != nil {
		return nil, err
	}
	for _, def := range cf.Orders {
		e.order(def, r)
	}
	for _, warn := range sc.GetWarnings() {
		r.addLine("warning: %v", warn.Err)
	}
	return r, nil
}

func (e *caseEvaluator) evalRows(ctx context.Context, filters expression.CNFExprs, outputs []*boundCmp, r *caseReport) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "cmpeval.evalRows")
	defer span.Finish()

	for i, row := range e.rows {
		if err := ctx.Err(); err != nil {
			return errors.Trace(err)
		}
		n := i + 1
		if len(filters) > 0 {
			selected, isNull, err := expression.EvalBool(e.sc, filters, row)
			if err != nil {
				r.fail("row %d: filter error: %v", n, err)
				continue
			}
			if !selected {
				if isNull {
					r.addLine("row %d: filtered out (NULL)", n)
				} else {
					r.addLine("row %d: filtered out", n)
				}
				continue
			}
		}
		cells := []string{strconv.Itoa(n)}
		for _, bc := range outputs {
			res, isNull, err := bc.fn.EvalInt(e.sc, row)
			var cell string
			switch {
			case err != nil:
				metrics.CmpEvalCounter.WithLabelValues(metrics.LblError).Inc()
				r.fail("row %d: %s error: %v", n, bc.label, err)
				cells = append(cells, "error")
				continue
			case isNull:
				metrics.CmpEvalCounter.WithLabelValues(metrics.LblNull).Inc()
				cell = nullValue
			case res != 0:
				metrics.CmpEvalCounter.WithLabelValues(metrics.LblTrue).Inc()
				cell = strconv.FormatInt(res, 10)
			default:
				metrics.CmpEvalCounter.WithLabelValues(metrics.LblFalse).Inc()
				cell = strconv.FormatInt(res, 10)
			}
			r.addLine("row %d: %s = %s", n, bc.label, cell)
			cells = append(cells, cell)
		}
		r.table = append(r.table, cells)
	}
	return nil
}

// order reports the row numbers sorted by one column, NULLs first.
func (e *caseEvaluator) order(def orderDef, r *caseReport) {
	col, ok := e.byName[strings.ToLower(def.Column)]
	if !ok {
		r.fail("order by %s: unknown column", def.Column)
		return
	}
	cmp := expression.GetCmpFunction(col, col)
	if cmp == nil {
		r.fail("order by %s: column type %s can not be ordered", col, types.TypeStr(col.RetType.Tp))
		return
	}
	idx := make([]int, len(e.rows))
	for i := range idx {
		idx[i] = i
	}
	var sortErr error
	sort.SliceStable(idx, func(a, b int) bool {
		res, _, err := cmp(e.sc, col, col, e.rows[idx[a]], e.rows[idx[b]])
		if err != nil {
			if sortErr == nil {
				sortErr = err
			}
			return false
		}
		if def.Desc {
			return res > 0
		}
		return res < 0
	})
	if sortErr != nil {
		r.fail("order by %s: %v", col, sortErr)
		return
	}
	positions := make([]string, 0, len(idx))
	for _, i := range idx {
		positions = append(positions, strconv.Itoa(i+1))
	}
	dir := "asc"
	if def.Desc {
		dir = "desc"
	}
	r.addLine("order by %s %s: rows %s", col, dir, strings.Join(positions, ", "))
}
