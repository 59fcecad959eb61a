// Package obslog sets up structured logging for the execution core and
// its ambient tooling: console output plus a rotating file sink, mirroring
// the logging shape used across the rest of this codebase. The file sink
// always captures everything down to Debug (internal/cache's cache-hit
// logging only ever shows up there); the console sink respects LOG_LEVEL
// so a queue-consumer process can be run quiet in production and verbose
// under development without rebuilding.
package obslog

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	timeKey  = "time"
	levelKey = "level"
	nameKey  = "source"
	msgKey   = "msg"
)

var sugarLogger *zap.SugaredLogger

// moduleRoot walks up from this file's own directory until it finds a
// go.mod, falling back to the working directory if none turns up (e.g.
// when running from a stripped binary with no embedded source paths).
func moduleRoot() string {
	_, currentFile, _, ok := runtime.Caller(0)
	var dir string
	if !ok || currentFile == "" {
		dir, _ = os.Getwd()
	} else {
		dir = filepath.Dir(currentFile)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			wd, _ := os.Getwd()
			return wd
		}
		dir = parent
	}
}

func logFilePath() string {
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}
	return filepath.Join(moduleRoot(), logDir, "execcore.log")
}

// consoleLevel reads LOG_LEVEL (debug/info/warn/error), defaulting to
// Info when unset or unrecognized.
func consoleLevel() zapcore.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        timeKey,
		LevelKey:       levelKey,
		NameKey:        nameKey,
		MessageKey:     msgKey,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// sink pairs a writer with the minimum level it should accept.
type sink struct {
	writer zapcore.WriteSyncer
	level  zapcore.Level
}

func sinks() []sink {
	path := logFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		path = "execcore.log"
	}

	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    50,
		MaxBackups: 10,
		MaxAge:     28,
		Compress:   true,
		LocalTime:  true,
	})

	return []sink{
		{writer: fileWriter, level: zapcore.DebugLevel},
		{writer: zapcore.AddSync(os.Stderr), level: consoleLevel()},
	}
}

func initialize() {
	enc := zapcore.NewConsoleEncoder(encoderConfig())

	cores := make([]zapcore.Core, 0, 2)
	for _, s := range sinks() {
		cores = append(cores, zapcore.NewCore(enc, s.writer, s.level))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	sugarLogger = log.Sugar()
}

// NewNamedLogger returns a SugaredLogger named after the requesting
// component, e.g. "supervisor" or "runner".
func NewNamedLogger(name string) *zap.SugaredLogger {
	if sugarLogger == nil {
		initialize()
	}
	return sugarLogger.Named(name)
}
