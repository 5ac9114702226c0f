package services

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger defines common logging interface for all services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// LogOptions controls where and how the production logger writes.
type LogOptions struct {
	Level      string
	Structured bool
	// File, when set, receives a copy of every entry and is rotated by size.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ProductionLogger is a structured logger backed by logrus.
type ProductionLogger struct {
	entry *logrus.Entry
}

// NewProductionLogger creates a production-ready logger
func NewProductionLogger(service string, opts LogOptions) *ProductionLogger {
	base := logrus.New()
	base.SetOutput(os.Stdout)

	if opts.File != "" {
		base.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 10),
			MaxAge:     orDefault(opts.MaxAgeDays, 30),
			Compress:   true,
		}))
	}

	if opts.Structured {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	return &ProductionLogger{entry: base.WithField("service", service)}
}

// NewProductionLoggerWithOutput writes to w; used by tests that inspect log lines.
func NewProductionLoggerWithOutput(service string, w io.Writer) *ProductionLogger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetFormatter(&logrus.JSONFormatter{})
	base.SetLevel(logrus.DebugLevel)
	return &ProductionLogger{entry: base.WithField("service", service)}
}

func (p *ProductionLogger) Info(msg string, keysAndValues ...interface{}) {
	p.entry.WithFields(toFields(keysAndValues)).Info(msg)
}

func (p *ProductionLogger) Error(msg string, keysAndValues ...interface{}) {
	p.entry.WithFields(toFields(keysAndValues)).Error(msg)
}

func (p *ProductionLogger) Debug(msg string, keysAndValues ...interface{}) {
	p.entry.WithFields(toFields(keysAndValues)).Debug(msg)
}

func (p *ProductionLogger) Warn(msg string, keysAndValues ...interface{}) {
	p.entry.WithFields(toFields(keysAndValues)).Warn(msg)
}

// toFields pairs up keys and values; a trailing key without a value is dropped.
func toFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, isErr := keysAndValues[i+1].(error); isErr {
			fields[key] = err.Error()
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// NoOpLogger is a logger that does nothing (for testing)
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}

// NewLogger builds the logger for the current environment.
func NewLogger(service, level, file string) Logger {
	env := os.Getenv("GO_ENV")
	if env == "test" {
		return &NoOpLogger{}
	}

	return NewProductionLogger(service, LogOptions{
		Level:      level,
		Structured: strings.ToLower(os.Getenv("ENV")) == "production",
		File:       file,
	})
}
