// Package log is the logging facade used across treeorder. It wraps logrus
// with the package-level helpers the rest of the code calls and adds a
// rotating file sink for the watch daemon.
package log

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	isDebug atomic.Bool

	mu     sync.RWMutex
	logger = NewLogger()
)

// Field is a single structured key/value pair attached to a log line.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Option configures a Logger.
type Option func(*options)

type options struct {
	out   io.Writer
	json  bool
	level logrus.Level
}

// WithOutput sends log lines to w.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithJSON switches to the JSON formatter.
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithFile writes to path with default rotation settings.
func WithFile(path string) Option {
	return WithRotatingFile(path, 10, 3)
}

// WithRotatingFile writes to path, rotating after maxSizeMB and keeping maxBackups old files.
func WithRotatingFile(path string, maxSizeMB, maxBackups int) Option {
	return func(o *options) {
		o.out = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
		}
	}
}

// WithLevel sets the minimum level ("debug", "info", "warn", "error").
// Unknown names leave the level unchanged.
func WithLevel(level string) Option {
	return func(o *options) {
		if lvl, err := logrus.ParseLevel(level); err == nil {
			o.level = lvl
		}
	}
}

// Logger is a leveled, structured logger.
type Logger struct {
	entry *logrus.Entry
	level logrus.Level
}

// NewLogger creates a logger writing text lines to stdout unless options say otherwise.
func NewLogger(opts ...Option) *Logger {
	o := &options{out: os.Stdout, level: logrus.InfoLevel}
	for _, opt := range opts {
		opt(o)
	}

	base := logrus.New()
	base.SetOutput(o.out)
	// Level gating happens in Logger so SetDebug affects existing loggers.
	base.SetLevel(logrus.TraceLevel)
	if o.json {
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			DisableColors:   true,
		})
	}
	return &Logger{entry: logrus.NewEntry(base), level: o.level}
}

// With returns a child logger carrying the given fields.
func (l *Logger) With(fields ...Field) *Logger {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(data), level: l.level}
}

// WithError attaches err under the "error" key. A nil error is ignored.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return &Logger{entry: l.entry.WithError(err), level: l.level}
}

// WithContext attaches ctx to the underlying entry.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	return &Logger{entry: l.entry.WithContext(ctx), level: l.level}
}

func (l *Logger) enabled(lvl logrus.Level) bool {
	if lvl >= logrus.DebugLevel && isDebug.Load() {
		return true
	}
	return lvl <= l.level
}

func (l *Logger) Debug(args ...interface{}) {
	if l.enabled(logrus.DebugLevel) {
		l.entry.Debug(args...)
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.enabled(logrus.DebugLevel) {
		l.entry.Debugf(format, args...)
	}
}

func (l *Logger) Info(args ...interface{}) {
	if l.enabled(logrus.InfoLevel) {
		l.entry.Info(args...)
	}
}

func (l *Logger) Infof(format string, args ...interface{}) {
	if l.enabled(logrus.InfoLevel) {
		l.entry.Infof(format, args...)
	}
}

func (l *Logger) Warn(args ...interface{}) {
	if l.enabled(logrus.WarnLevel) {
		l.entry.Warn(args...)
	}
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	if l.enabled(logrus.WarnLevel) {
		l.entry.Warnf(format, args...)
	}
}

func (l *Logger) Error(args ...interface{}) {
	if l.enabled(logrus.ErrorLevel) {
		l.entry.Error(args...)
	}
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	if l.enabled(logrus.ErrorLevel) {
		l.entry.Errorf(format, args...)
	}
}

// Configure replaces the package-level logger.
func Configure(opts ...Option) {
	l := NewLogger(opts...)
	mu.Lock()
	logger = l
	mu.Unlock()
}

func std() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetDebug turns debug output on or off for every logger.
func SetDebug(debug bool) {
	isDebug.Store(debug)
}

// LogWithFields returns the package logger with fields attached.
func LogWithFields(fields ...Field) *Logger {
	return std().With(fields...)
}

// LogWithError returns the package logger with err attached.
func LogWithError(err error) *Logger {
	return std().WithError(err)
}

func Debug(args ...interface{})                 { std().Debug(args...) }
func Debugf(format string, args ...interface{}) { std().Debugf(format, args...) }
func Info(args ...interface{})                  { std().Info(args...) }
func Infof(format string, args ...interface{})  { std().Infof(format, args...) }
func Warn(args ...interface{})                  { std().Warn(args...) }
func Warnf(format string, args ...interface{})  { std().Warnf(format, args...) }
func Error(args ...interface{})                 { std().Error(args...) }
func Errorf(format string, args ...interface{}) { std().Errorf(format, args...) }
