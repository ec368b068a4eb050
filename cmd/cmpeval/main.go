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

// Command cmpeval runs typed comparisons over the rows of TOML case files
// and reports one 0, 1 or NULL per row and comparison.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/opentracing/opentracing-go"
	"github.com/pingcap/copr/config"
	"github.com/pingcap/copr/expression"
	"github.com/pingcap/copr/metrics"
	"github.com/pingcap/copr/util/logutil"
	"github.com/pingcap/copr/util/printer"
	"github.com/pingcap/copr/util/signal"
	"github.com/pingcap/log"
	"github.com/pingcap/parser/terror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Flag Names
const (
	nmVersion         = "V"
	nmConfig          = "config"
	nmConfigCheck     = "config-check"
	nmConfigStrict    = "config-strict"
	nmListSigs        = "list-sigs"
	nmNullEQPolicy    = "null-eq-policy"
	nmTimeZone        = "time-zone"
	nmLenient         = "lenient"
	nmTable           = "table"
	nmLogLevel        = "L"
	nmLogFile         = "log-file"
	nmReportFile      = "report-file"
	nmReportStatus    = "report-status"
	nmStatusHost      = "status-host"
	nmStatusPort      = "status"
	nmMetricsAddr     = "metrics-addr"
	nmMetricsInterval = "metrics-interval"
)

var (
	version      = flagBoolean(nmVersion, false, "print version information and exit")
	configPath   = flag.String(nmConfig, "", "config file path")
	configCheck  = flagBoolean(nmConfigCheck, false, "check config file validity and exit")
	configStrict = flagBoolean(nmConfigStrict, false, "enforce config file validity")
	listSigs     = flagBoolean(nmListSigs, false, "print the supported comparison signatures and exit")

	// Expression
	nullEQPolicy = flag.String(nmNullEQPolicy, "either", "result of <=> with a NULL operand: either, both")
	timeZone     = flag.String(nmTimeZone, "UTC", "location DATETIME and TIMESTAMP values are read in")
	lenient      = flagBoolean(nmLenient, false, "read malformed values as NULL and clamp out of range numbers")
	printTable   = flagBoolean(nmTable, false, "print the results of each case as a table")

	// Log
	logLevel   = flag.String(nmLogLevel, "info", "log level: info, debug, warn, error, fatal")
	logFile    = flag.String(nmLogFile, "", "log file path")
	reportFile = flag.String(nmReportFile, "", "report file path, stdout if empty")

	// Status
	reportStatus    = flagBoolean(nmReportStatus, false, "If enable status report HTTP service.")
	statusHost      = flag.String(nmStatusHost, "0.0.0.0", "status host")
	statusPort      = flag.Uint(nmStatusPort, 10080, "status port")
	metricsAddr     = flag.String(nmMetricsAddr, "", "prometheus pushgateway address, leaves it empty will disable prometheus push.")
	metricsInterval = flag.Uint(nmMetricsInterval, 15, "prometheus client push interval in second, set \"0\" to disable prometheus push.")
)

var (
	cfg          *config.Config
	statusServer *http.Server
	tracerCloser io.Closer

	casesRun    atomic.Int64
	casesFailed atomic.Int64
)

func main() {
	flag.Parse()
	if *version {
		fmt.Println(printer.GetCoprInfo())
		os.Exit(0)
	}
	if *listSigs {
		for _, name := range expression.CmpSigNames() {
			fmt.Println(name)
		}
		os.Exit(0)
	}
	registerMetrics()
	configWarning := loadConfig()
	overrideConfig()
	if err := cfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config", err)
		os.Exit(1)
	}
	if *configCheck {
		fmt.Println("config check successful")
		os.Exit(0)
	}
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: cmpeval [flags] case.toml...")
		os.Exit(2)
	}
	setupLog()
	if configWarning != "" {
		log.Warn(configWarning)
	}
	setupTracing()
	printInfo()
	setupMetrics()
	setupStatus()

	ctx, cancel := context.WithCancel(context.Background())
	signal.SetupSignalHandler(func(os.Signal) {
		cancel()
	})
	ok := runCases(ctx, flag.Args())
	cancel()
	cleanup()
	exit(ok)
}

func exit(ok bool) {
	code := 0
	if !ok {
		code = 1
	}
	if err := log.Sync(); err != nil {
		fmt.Fprintln(os.Stderr, "sync log err:", err)
		code = 1
	}
	os.Exit(code)
}

func registerMetrics() {
	metrics.RegisterMetrics()
}

func flagBoolean(name string, defaultVal bool, usage string) *bool {
	if !defaultVal {
		// Go does not print a false default in usage, so we append it.
		usage = fmt.Sprintf("%s (default false)", usage)
	}
	return flag.Bool(name, defaultVal, usage)
}

func loadConfig() string {
	cfg = config.GetGlobalConfig()
	if *configPath != "" {
		err := cfg.Load(*configPath)
		// Unknown options are only a warning unless strict checking is asked for.
		// The warning is deferred until logging has been set up.
		if _, ok := err.(*config.ErrConfigValidationFailed); ok && !*configCheck && !*configStrict {
			return err.Error()
		}
		terror.MustNil(err)
	}
	return ""
}

func overrideConfig() {
	actualFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		actualFlags[f.Name] = true
	})

	// Expression
	if actualFlags[nmNullEQPolicy] {
		cfg.Expression.NullEQPolicy = *nullEQPolicy
	}
	if actualFlags[nmTimeZone] {
		cfg.Expression.TimeZone = *timeZone
	}
	if actualFlags[nmLenient] {
		cfg.Expression.Lenient = *lenient
	}

	// Log
	if actualFlags[nmLogLevel] {
		cfg.Log.Level = *logLevel
	}
	if actualFlags[nmLogFile] {
		cfg.Log.File.Filename = *logFile
	}
	if actualFlags[nmReportFile] {
		cfg.Log.ReportFile = *reportFile
	}

	// Status
	if actualFlags[nmReportStatus] {
		cfg.Status.ReportStatus = *reportStatus
	}
	if actualFlags[nmStatusHost] {
		cfg.Status.StatusHost = *statusHost
	}
	if actualFlags[nmStatusPort] {
		cfg.Status.StatusPort = *statusPort
	}
	if actualFlags[nmMetricsAddr] {
		cfg.Status.MetricsAddr = *metricsAddr
	}
	if actualFlags[nmMetricsInterval] {
		cfg.Status.MetricsInterval = *metricsInterval
	}
}

func setupLog() {
	err := logutil.InitZapLogger(cfg.Log.ToLogConfig())
	terror.MustNil(err)

	err = logutil.InitLogger(cfg.Log.ToLogConfig())
	terror.MustNil(err)
}

func printInfo() {
	// Make sure the version info is always printed.
	level := log.GetLevel()
	log.SetLevel(zap.InfoLevel)
	printer.PrintCoprInfo(cfg)
	log.SetLevel(level)
}

func setupTracing() {
	tracingCfg := cfg.OpenTracing.ToTracingConfig()
	tracer, closer, err := tracingCfg.New("cmpeval")
	if err != nil {
		log.Fatal("setup jaeger tracer failed", zap.String("error message", err.Error()))
	}
	opentracing.SetGlobalTracer(tracer)
	tracerCloser = closer
}

func setupMetrics() {
	pushMetric(cfg.Status.MetricsAddr, time.Duration(cfg.Status.MetricsInterval)*time.Second)
}

// Prometheus push.
const zeroDuration = time.Duration(0)

// pushMetric pushes metrics in background.
func pushMetric(addr string, interval time.Duration) {
	if interval == zeroDuration || len(addr) == 0 {
		log.Info("disable Prometheus push client")
		return
	}
	log.Info("start prometheus push client", zap.String("server addr", addr), zap.String("interval", interval.String()))
	go prometheusPushClient(addr, interval)
}

// prometheusPushClient pushes metrics to Prometheus Pushgateway.
func prometheusPushClient(addr string, interval time.Duration) {
	for {
		pushOnce(addr)
		time.Sleep(interval)
	}
}

func pushOnce(addr string) {
	err := push.AddFromGatherer(
		"cmpeval",
		map[string]string{"instance": instanceName()},
		addr,
		prometheus.DefaultGatherer,
	)
	if err != nil {
		log.Error("could not push metrics to prometheus pushgateway", zap.String("err", err.Error()))
	}
}

func instanceName() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return fmt.Sprintf("%s_%d", hostname, os.Getpid())
}

type statusResponse struct {
	Version     string `json:"version"`
	GitHash     string `json:"git_hash"`
	CasesRun    int64  `json:"cases_run"`
	CasesFailed int64  `json:"cases_failed"`
}

func handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	js, err := json.Marshal(statusResponse{
		Version:     printer.CoprReleaseVersion,
		GitHash:     printer.CoprGitHash,
		CasesRun:    casesRun.Load(),
		CasesFailed: casesFailed.Load(),
	})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error("encode status failed", zap.Error(err))
		return
	}
	_, err = w.Write(js)
	terror.Log(err)
}

func newStatusRouter() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/status", handleStatus).Name("Status")
	// HTTP path for prometheus.
	router.Handle("/metrics", promhttp.Handler()).Name("Metrics")
	return router
}

func setupStatus() {
	if !cfg.Status.ReportStatus {
		return
	}
	addr := fmt.Sprintf("%s:%d", cfg.Status.StatusHost, cfg.Status.StatusPort)
	statusServer = &http.Server{Addr: addr, Handler: newStatusRouter()}
	log.Info("for status and metrics report", zap.String("listening on addr", addr))
	go func() {
		if err := statusServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen failed", zap.Error(err))
		}
	}()
}

// runCases runs every case file in order and reports whether all of them passed.
// A cancelled ctx stops the run before the next row.
func runCases(ctx context.Context, paths []string) bool {
	sc, err := cfg.NewStatementContext()
	terror.MustNil(err)
	passed := true
	for _, path := range paths {
		report, err := runCase(ctx, sc, path)
		casesRun.Inc()
		if err != nil {
			log.Error("run case failed", zap.String("case", path), zap.Error(err))
			casesFailed.Inc()
			passed = false
			if ctx.Err() != nil {
				break
			}
			continue
		}
		report.print(*printTable)
		if report.failed {
			casesFailed.Inc()
			passed = false
		}
	}
	log.Info("cmpeval finished", zap.Int64("cases", casesRun.Load()), zap.Int64("failed", casesFailed.Load()))
	return passed
}

func cleanup() {
	if statusServer != nil {
		terror.Log(statusServer.Close())
	}
	if cfg.Status.MetricsAddr != "" && cfg.Status.MetricsInterval != 0 {
		pushOnce(cfg.Status.MetricsAddr)
	}
	if tracerCloser != nil {
		terror.Log(tracerCloser.Close())
	}
}
