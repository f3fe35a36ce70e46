// ============================================================================
// rallyscore - Volleyball Rally Scorekeeper
// ============================================================================
//
// Package:     logging
// Description: Structured leveled logger with persistent context fields
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package logging

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/msto63/rallyscore/pkg/core/apperror"
)

// Logger writes structured entries. Derived loggers (WithField, WithLevel)
// share the output and its lock.
type Logger struct {
	level     Level
	formatter Formatter
	output    io.Writer
	name      string
	fields    Fields
	mu        *sync.Mutex
	now       func() time.Time
}

// Config represents logger configuration
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
	Name   string
}

// NewWithConfig creates a logger from an explicit configuration
func NewWithConfig(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	return &Logger{
		level:     cfg.Level,
		formatter: NewFormatter(cfg.Format),
		output:    output,
		name:      cfg.Name,
		fields:    make(Fields),
		mu:        &sync.Mutex{},
		now:       time.Now,
	}
}

// LoggerConfig holds the string form used by configuration files
type LoggerConfig struct {
	ServiceName string
	Level       string // debug, info, warn, error
	Format      string // json or text
	Output      io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "json",
	}
}

// NewLogger creates a logger; unknown levels and formats fall back to
// info and json
func NewLogger(cfg LoggerConfig) *Logger {
	level, _ := ParseLevel(cfg.Level)
	format, _ := ParseFormat(cfg.Format)
	return NewWithConfig(Config{
		Level:  level,
		Format: format,
		Output: cfg.Output,
		Name:   cfg.ServiceName,
	})
}

// New creates a logger with the default configuration
func New(name string) *Logger {
	return NewLogger(DefaultLoggerConfig(name))
}

func (l *Logger) clone() *Logger {
	c := *l
	c.fields = make(Fields, len(l.fields))
	for k, v := range l.fields {
		c.fields[k] = v
	}
	return &c
}

// Name returns the logger name
func (l *Logger) Name() string { return l.name }

// GetLevel returns the minimum level
func (l *Logger) GetLevel() Level { return l.level }

// IsLevelEnabled returns true if entries of level are written
func (l *Logger) IsLevelEnabled(level Level) bool {
	return level >= l.level
}

// WithLevel returns a new logger with the specified level
func (l *Logger) WithLevel(level Level) *Logger {
	c := l.clone()
	c.level = level
	return c
}

// WithOutput returns a new logger writing to w
func (l *Logger) WithOutput(w io.Writer) *Logger {
	c := l.clone()
	c.output = w
	c.mu = &sync.Mutex{}
	return c
}

// WithName returns a new logger with another name
func (l *Logger) WithName(name string) *Logger {
	c := l.clone()
	c.name = name
	return c
}

// WithField adds a persistent field to all log entries
func (l *Logger) WithField(key string, value interface{}) *Logger {
	c := l.clone()
	c.fields[key] = value
	return c
}

// WithFields adds persistent fields to all log entries
func (l *Logger) WithFields(fields Fields) *Logger {
	c := l.clone()
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.log(LevelDebug, msg, nil, keysAndValues)
}

// Info logs an info message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.log(LevelInfo, msg, nil, keysAndValues)
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.log(LevelWarn, msg, nil, keysAndValues)
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.log(LevelError, msg, nil, keysAndValues)
}

// ErrorWithErr logs an error message together with err
func (l *Logger) ErrorWithErr(msg string, err error, keysAndValues ...interface{}) {
	l.log(LevelError, msg, err, keysAndValues)
}

// LogError logs err at a level derived from its severity
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		l.log(LevelError, err.Error(), err, nil)
		return
	}

	kv := []interface{}{
		"error_code", appErr.Code().String(),
		"error_severity", appErr.Severity().String(),
	}
	if op := appErr.Operation(); op != "" {
		kv = append(kv, "error_operation", op)
	}

	level := LevelError
	switch appErr.Severity() {
	case apperror.SeverityLow:
		level = LevelInfo
	case apperror.SeverityMedium:
		level = LevelWarn
	}
	l.log(level, appErr.Message(), err, kv)
}

func (l *Logger) log(level Level, msg string, err error, keysAndValues []interface{}) {
	if !l.IsLevelEnabled(level) {
		return
	}

	entry := &Entry{
		Timestamp: l.now(),
		Level:     level,
		Message:   msg,
		Logger:    l.name,
		Fields:    make(Fields, len(l.fields)+len(keysAndValues)/2),
		Error:     err,
	}
	for k, v := range l.fields {
		entry.Fields[k] = v
	}
	for k, v := range toFields(keysAndValues...) {
		entry.Fields[k] = v
	}

	formatted, ferr := l.formatter.Format(entry)
	if ferr != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.output.Write(formatted)
}

// toFields converts key-value pairs to Fields. Non-string keys and a
// trailing key without value are dropped.
func toFields(keysAndValues ...interface{}) Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(Fields)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
