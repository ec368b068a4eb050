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

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/copr/sessionctx/stmtctx"
	"github.com/pingcap/copr/util/logutil"
	"github.com/pingcap/errors"
	tracing "github.com/uber/jaeger-client-go/config"
	"go.uber.org/atomic"
)

// MaxLogFileSize is the largest accepted log.file.max-size, in MB.
const MaxLogFileSize = 4096

var globalConf = atomic.Value{}

// Config is the cmpeval configuration. Every section maps to a table of
// the TOML config file and command line flags override single fields.
type Config struct {
	Log         Log         `toml:"log" json:"log"`
	Expression  Expression  `toml:"expression" json:"expression"`
	Status      Status      `toml:"status" json:"status"`
	OpenTracing OpenTracing `toml:"opentracing" json:"opentracing"`
}

// Log is the log section of config.
type Log struct {
	Level            string                `toml:"level" json:"level"`
	Format           string                `toml:"format" json:"format"`
	DisableTimestamp bool                  `toml:"disable-timestamp" json:"disable-timestamp"`
	File             logutil.FileLogConfig `toml:"file" json:"file"`
	// ReportFile receives the comparison reports, stdout when empty.
	ReportFile string `toml:"report-file" json:"report-file"`
}

// Expression is the expression section of the config.
type Expression struct {
	// NullEQPolicy is "either" or "both", see stmtctx.NullEQPolicy.
	NullEQPolicy string `toml:"null-eq-policy" json:"null-eq-policy"`
	// TimeZone is the location DATETIME and TIMESTAMP values are read in.
	TimeZone string `toml:"time-zone" json:"time-zone"`
	// Lenient turns malformed and out of range input values into warnings.
	Lenient bool `toml:"lenient" json:"lenient"`
}

// Status configures the status HTTP server and the pushgateway client.
type Status struct {
	ReportStatus    bool   `toml:"report-status" json:"report-status"`
	StatusHost      string `toml:"status-host" json:"status-host"`
	StatusPort      uint   `toml:"status-port" json:"status-port"`
	MetricsAddr     string `toml:"metrics-addr" json:"metrics-addr"`
	MetricsInterval uint   `toml:"metrics-interval" json:"metrics-interval"`
}

// OpenTracing configures the jaeger tracer, one span is started per case file.
type OpenTracing struct {
	Enable     bool                `toml:"enable" json:"enable"`
	Sampler    OpenTracingSampler  `toml:"sampler" json:"sampler"`
	Reporter   OpenTracingReporter `toml:"reporter" json:"reporter"`
	RPCMetrics bool                `toml:"rpc-metrics" json:"rpc-metrics"`
}

// OpenTracingSampler mirrors the jaeger sampler config.
type OpenTracingSampler struct {
	Type                    string        `toml:"type" json:"type"`
	Param                   float64       `toml:"param" json:"param"`
	SamplingServerURL       string        `toml:"sampling-server-url" json:"sampling-server-url"`
	MaxOperations           int           `toml:"max-operations" json:"max-operations"`
	SamplingRefreshInterval time.Duration `toml:"sampling-refresh-interval" json:"sampling-refresh-interval"`
}

// OpenTracingReporter mirrors the jaeger reporter config.
type OpenTracingReporter struct {
	QueueSize           int           `toml:"queue-size" json:"queue-size"`
	BufferFlushInterval time.Duration `toml:"buffer-flush-interval" json:"buffer-flush-interval"`
	LogSpans            bool          `toml:"log-spans" json:"log-spans"`
	LocalAgentHostPort  string        `toml:"local-agent-host-port" json:"local-agent-host-port"`
}

// ErrConfigValidationFailed is returned by Load when the file has keys that
// do not map to any Config field. The caller decides whether that is fatal.
type ErrConfigValidationFailed struct {
	File string
	Keys []string
}

func (e *ErrConfigValidationFailed) Error() string {
	return fmt.Sprintf("config file %s contained unknown configuration options: %s", e.File, strings.Join(e.Keys, ", "))
}

var defaultConf = Config{
	Log: Log{
		Level:  "info",
		Format: "text",
		File:   logutil.NewFileLogConfig(true, logutil.DefaultLogMaxSize),
	},
	Expression: Expression{
		NullEQPolicy: "either",
		TimeZone:     "UTC",
	},
	Status: Status{
		StatusHost:      "0.0.0.0",
		StatusPort:      10080,
		MetricsInterval: 15,
	},
	OpenTracing: OpenTracing{
		Sampler: OpenTracingSampler{
			Type:  "const",
			Param: 1.0,
		},
	},
}

// NewConfig returns a copy of the default config.
func NewConfig() *Config {
	conf := defaultConf
	return &conf
}

// GetGlobalConfig returns the config of the process.
func GetGlobalConfig() *Config {
	return globalConf.Load().(*Config)
}

// StoreGlobalConfig replaces the config of the process.
func StoreGlobalConfig(config *Config) {
	globalConf.Store(config)
}

// Load decodes confFile into c. Known keys are applied even when the file
// also has unknown ones, in which case *ErrConfigValidationFailed is returned.
func (c *Config) Load(confFile string) error {
	meta, err := toml.DecodeFile(confFile, c)
	if err != nil {
		return errors.Trace(err)
	}
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, 0, len(undecoded))
	for _, key := range undecoded {
		keys = append(keys, key.String())
	}
	return &ErrConfigValidationFailed{File: confFile, Keys: keys}
}

// Valid checks the values Load cannot check by type alone.
func (c *Config) Valid() error {
	if size := c.Log.File.MaxSize; size > MaxLogFileSize {
		return errors.Errorf("invalid max log file size=%v which is larger than max=%v", size, MaxLogFileSize)
	}
	if _, err := c.Expression.policy(); err != nil {
		return err
	}
	if _, err := c.Expression.location(); err != nil {
		return err
	}
	if c.Status.MetricsAddr != "" && c.Status.MetricsInterval == 0 {
		return errors.New("metrics-interval should be greater than 0 when metrics-addr is set")
	}
	return nil
}

func (e *Expression) policy() (stmtctx.NullEQPolicy, error) {
	return stmtctx.ParseNullEQPolicy(e.NullEQPolicy)
}

func (e *Expression) location() (*time.Location, error) {
	loc, err := time.LoadLocation(e.TimeZone)
	if err != nil {
		return nil, errors.Errorf("invalid time-zone %q: %v", e.TimeZone, err)
	}
	return loc, nil
}

// NewStatementContext creates an execution context carrying the expression settings.
func (c *Config) NewStatementContext() (*stmtctx.StatementContext, error) {
	policy, err := c.Expression.policy()
	if err != nil {
		return nil, errors.Trace(err)
	}
	loc, err := c.Expression.location()
	if err != nil {
		return nil, errors.Trace(err)
	}
	sc := &stmtctx.StatementContext{NullEQPolicy: policy, TimeZone: loc}
	if c.Expression.Lenient {
		sc.TruncateAsWarning = true
		sc.OverflowAsWarning = true
	}
	return sc, nil
}

// ToLogConfig converts *Log to *logutil.LogConfig.
func (l *Log) ToLogConfig() *logutil.LogConfig {
	return logutil.NewLogConfig(l.Level, l.Format, l.ReportFile, l.File, l.DisableTimestamp)
}

// ToTracingConfig converts *OpenTracing to *tracing.Configuration.
func (t *OpenTracing) ToTracingConfig() *tracing.Configuration {
	return &tracing.Configuration{
		Disabled:   !t.Enable,
		RPCMetrics: t.RPCMetrics,
		Sampler: &tracing.SamplerConfig{
			Type:                    t.Sampler.Type,
			Param:                   t.Sampler.Param,
			SamplingServerURL:       t.Sampler.SamplingServerURL,
			MaxOperations:           t.Sampler.MaxOperations,
			SamplingRefreshInterval: t.Sampler.SamplingRefreshInterval,
		},
		Reporter: &tracing.ReporterConfig{
			QueueSize:           t.Reporter.QueueSize,
			BufferFlushInterval: t.Reporter.BufferFlushInterval,
			LogSpans:            t.Reporter.LogSpans,
			LocalAgentHostPort:  t.Reporter.LocalAgentHostPort,
		},
	}
}

func init() {
	globalConf.Store(&defaultConf)
}
