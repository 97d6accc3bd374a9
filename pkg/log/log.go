package log

import (
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide structured logger.
type Log struct {
	AppName string
	Logger  *logrus.Logger
}

var (
	logger Log
	mu     sync.RWMutex
)

func init() {
	logger = Log{AppName: "btc-backend", Logger: newLogrusLogger("info", os.Stdout)}
}

// InitLogger replaces the singleton with one at the given level.
func InitLogger(appName, level string) {
	mu.Lock()
	defer mu.Unlock()
	logger = Log{AppName: appName, Logger: newLogrusLogger(level, os.Stdout)}
}

// SetOutput redirects the singleton, used by tests to silence or capture logs.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.Logger.SetOutput(w)
}

// GetLogger return singleton
func GetLogger() Log {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func newLogrusLogger(levelStr string, w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return l
}

func (l Log) entry(context, scope, meta string, skip int) *logrus.Entry {
	_, file, line, _ := runtime.Caller(skip)
	return l.Logger.WithFields(logrus.Fields{
		"service": l.AppName,
		"context": context,
		"scope":   scope,
		"meta":    meta,
		"file":    file,
		"line":    line,
	})
}

func (l Log) Info(context, message, scope, meta string) {
	l.entry(context, scope, meta, 2).Info(message)
}

func (l Log) Warn(context, message, scope, meta string) {
	l.entry(context, scope, meta, 2).Warn(message)
}

func (l Log) Error(context, message, scope, meta string) {
	l.entry(context, scope, meta, 2).Error(message)
}

func (l Log) Debug(context, message, scope, meta string) {
	l.entry(context, scope, meta, 2).Debug(message)
}

// WithFields exposes logrus directly for callers that log request-shaped data.
func (l Log) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.Logger.WithFields(fields).WithField("service", l.AppName)
}
