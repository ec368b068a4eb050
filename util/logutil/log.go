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

package logutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"runtime"
	"sort"
	"strings"

	"github.com/pingcap/errors"
	zaplog "github.com/pingcap/log"
	log "github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogTimeFormat = "2006/01/02 15:04:05.000"
	// DefaultLogMaxSize is the default size of log files.
	DefaultLogMaxSize = 300 // MB
	// DefaultLogFormat is the default format of the log.
	DefaultLogFormat = "text"
)

// FileLogConfig serializes file log related config in toml/json.
type FileLogConfig struct {
	zaplog.FileLogConfig
}

// NewFileLogConfig creates a FileLogConfig.
func NewFileLogConfig(rotate bool, maxSize uint) FileLogConfig {
	return FileLogConfig{FileLogConfig: zaplog.FileLogConfig{
		LogRotate: rotate,
		MaxSize:   int(maxSize),
	}}
}

// LogConfig serializes log related config in toml/json.
type LogConfig struct {
	zaplog.Config

	// ReportFile receives the comparison reports, stdout on empty.
	ReportFile string
}

// NewLogConfig creates a LogConfig.
func NewLogConfig(level, format, reportFile string, fileCfg FileLogConfig, disableTimestamp bool) *LogConfig {
	return &LogConfig{
		Config: zaplog.Config{
			Level:            level,
			Format:           format,
			DisableTimestamp: disableTimestamp,
			File:             fileCfg.FileLogConfig,
		},
		ReportFile: reportFile,
	}
}

// callerHook adds the file and line of the first frame outside logrus.
type callerHook struct{}

func (hook callerHook) Fire(entry *log.Entry) error {
	pc := make([]uintptr, 8)
	frames := runtime.CallersFrames(pc[:runtime.Callers(4, pc)])
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.Function, "github.com/sirupsen/logrus") {
			entry.Data["file"] = path.Base(frame.File)
			entry.Data["line"] = frame.Line
			return nil
		}
		if !more {
			return nil
		}
	}
}

func (hook callerHook) Levels() []log.Level {
	return log.AllLevels
}

// stringToLogLevel parses level, falling back to info.
func stringToLogLevel(level string) log.Level {
	l, err := log.ParseLevel(level)
	if err != nil || l == log.PanicLevel {
		return log.InfoLevel
	}
	return l
}

var levelColors = map[log.Level]string{
	log.DebugLevel: "[0;37",
	log.InfoLevel:  "[0;36",
	log.WarnLevel:  "[0;33",
	log.ErrorLevel: "[0;31",
	log.FatalLevel: "[0;31",
	log.PanicLevel: "[0;31",
}

// textFormatter writes "time file:line: [level] message k=v...", fields sorted by key.
type textFormatter struct {
	DisableTimestamp bool
	EnableColors     bool
}

func entryBuffer(entry *log.Entry) *bytes.Buffer {
	if entry.Buffer != nil {
		return entry.Buffer
	}
	return &bytes.Buffer{}
}

// userFields returns the field names of entry except the caller position.
func userFields(entry *log.Entry) []string {
	names := make([]string, 0, len(entry.Data))
	for name := range entry.Data {
		switch name {
		case "file", "line":
		default:
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (f *textFormatter) Format(entry *log.Entry) ([]byte, error) {
	b := entryBuffer(entry)
	if f.EnableColors {
		b.WriteString("\033" + levelColors[entry.Level] + "m ")
	}
	if !f.DisableTimestamp {
		b.WriteString(entry.Time.Format(defaultLogTimeFormat) + " ")
	}
	if file, ok := entry.Data["file"]; ok {
		fmt.Fprintf(b, "%s:%v:", file, entry.Data["line"])
	}
	fmt.Fprintf(b, " [%s] %s", entry.Level, entry.Message)
	for _, name := range userFields(entry) {
		fmt.Fprintf(b, " %s=%v", name, entry.Data[name])
	}
	b.WriteByte('\n')
	if f.EnableColors {
		b.WriteString("\033[0m")
	}
	return b.Bytes(), nil
}

// reportFormatter writes the bare message, one report line per entry.
type reportFormatter struct{}

func (f *reportFormatter) Format(entry *log.Entry) ([]byte, error) {
	b := entryBuffer(entry)
	b.WriteString(entry.Message + "\n")
	return b.Bytes(), nil
}

func stringToLogFormatter(format string, disableTimestamp bool) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return &log.JSONFormatter{
			TimestampFormat:  defaultLogTimeFormat,
			DisableTimestamp: disableTimestamp,
		}
	case "console":
		return &log.TextFormatter{
			FullTimestamp:    true,
			TimestampFormat:  defaultLogTimeFormat,
			DisableTimestamp: disableTimestamp,
		}
	case "highlight":
		return &textFormatter{DisableTimestamp: disableTimestamp, EnableColors: true}
	}
	return &textFormatter{DisableTimestamp: disableTimestamp}
}

// newRotatingOutput opens cfg.Filename through lumberjack.
func newRotatingOutput(cfg zaplog.FileLogConfig) (*lumberjack.Logger, error) {
	if st, err := os.Stat(cfg.Filename); err == nil && st.IsDir() {
		return nil, errors.New("can't use directory as log file name")
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = DefaultLogMaxSize
	}
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxDays,
		LocalTime:  true,
	}, nil
}

// ReportLogger writes comparison reports, InitLogger will modify it according to config file.
var ReportLogger = newReportLogger()

func newReportLogger() *log.Logger {
	l := log.New()
	l.Out = os.Stdout
	l.Formatter = &reportFormatter{}
	return l
}

// InitLogger initializes the logrus standard logger and the report logger.
func InitLogger(cfg *LogConfig) error {
	log.SetLevel(stringToLogLevel(cfg.Level))
	log.AddHook(callerHook{})
	if cfg.Format == "" {
		cfg.Format = DefaultLogFormat
	}
	log.SetFormatter(stringToLogFormatter(cfg.Format, cfg.DisableTimestamp))

	if len(cfg.File.Filename) != 0 {
		output, err := newRotatingOutput(cfg.File)
		if err != nil {
			return errors.Trace(err)
		}
		log.SetOutput(output)
	}

	ReportLogger = newReportLogger()
	if len(cfg.ReportFile) != 0 {
		reportCfg := cfg.File
		reportCfg.Filename = cfg.ReportFile
		output, err := newRotatingOutput(reportCfg)
		if err != nil {
			return errors.Trace(err)
		}
		ReportLogger.Out = output
	}
	return nil
}

// InitZapLogger replaces the global zap logger of pingcap/log.
func InitZapLogger(cfg *LogConfig) error {
	gl, props, err := zaplog.InitLogger(&cfg.Config)
	if err != nil {
		return errors.Trace(err)
	}
	zaplog.ReplaceGlobals(gl, props)
	return nil
}

// SetLevel changes the level of the global zap logger.
func SetLevel(level string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return errors.Trace(err)
	}
	zaplog.SetLevel(l)
	return nil
}

type ctxLogKeyType struct{}

// BgLogger returns the global zap logger for code running without a context.
func BgLogger() *zap.Logger {
	return zaplog.L()
}

// Logger returns the logger WithKeyValue attached to ctx, or the global one.
func Logger(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxLogKeyType{}).(*zap.Logger); ok {
		return l
	}
	return zaplog.L()
}

// WithKeyValue returns a context whose Logger carries key=value.
func WithKeyValue(ctx context.Context, key, value string) context.Context {
	return context.WithValue(ctx, ctxLogKeyType{}, Logger(ctx).With(zap.String(key, value)))
}
