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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Label values of ExprBuildCounter.
const (
	LblOK          = "ok"
	LblUnsupported = "unsupported"
	LblInvalid     = "invalid"
)

// Label values of CmpEvalCounter.
const (
	LblTrue  = "true"
	LblFalse = "false"
	LblNull  = "null"
	LblError = "error"
)

// Metrics of the comparison evaluator.
var (
	ExprBuildCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "copr",
			Subsystem: "expression",
			Name:      "pb_build_total",
			Help:      "Counter of expressions built from protobuf.",
		}, []string{LblType})

	CmpSigCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "copr",
			Subsystem: "expression",
			Name:      "cmp_sig_total",
			Help:      "Counter of comparison functions built, by domain and operator.",
		}, []string{LblDomain, LblOp})

	CmpEvalCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "copr",
			Subsystem: "cmpeval",
			Name:      "eval_total",
			Help:      "Counter of evaluated comparisons, by result.",
		}, []string{LblResult})

	CaseDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "copr",
			Subsystem: "cmpeval",
			Name:      "case_duration_seconds",
			Help:      "Bucketed histogram of processing time (s) of a case file.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 13),
		})
)

// Label names.
const (
	LblType   = "type"
	LblDomain = "domain"
	LblOp     = "op"
	LblResult = "result"
)

// RegisterMetrics registers the metrics which are ONLY used in the evaluator.
func RegisterMetrics() {
	prometheus.MustRegister(ExprBuildCounter)
	prometheus.MustRegister(CmpSigCounter)
	prometheus.MustRegister(CmpEvalCounter)
	prometheus.MustRegister(CaseDuration)
}
