package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"agentcrew/pkg/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log *zap.Logger
var sugar *zap.SugaredLogger

func init() {
	// Development logger until Init runs, so early startup errors are visible
	devConfig := zap.NewDevelopmentConfig()
	devConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	devConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")

	devLogger, _ := devConfig.Build(zap.AddCallerSkip(1))
	Log = devLogger
	sugar = devLogger.Sugar()
}

// Init initializes logger from global configuration
func Init() error {
	cfg := config.GlobalConfig.Logger

	atomicLevel := zap.NewAtomicLevel()
	atomicLevel.SetLevel(parseLevel(cfg.Level))

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000"),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	syncer, err := buildSyncer(cfg)
	if err != nil {
		return err
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		syncer,
		atomicLevel,
	)

	Log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	sugar = Log.Sugar()

	return nil
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func buildSyncer(cfg config.LoggerConfig) (zapcore.WriteSyncer, error) {
	switch cfg.Output {
	case "file":
		file, err := openLogFile(cfg.File.Path)
		if err != nil {
			return nil, err
		}
		return zapcore.AddSync(file), nil
	case "both":
		file, err := openLogFile(cfg.File.Path)
		if err != nil {
			return nil, err
		}
		return zapcore.NewMultiWriteSyncer(
			zapcore.AddSync(os.Stdout),
			zapcore.AddSync(file),
		), nil
	default: // console
		return zapcore.AddSync(os.Stdout), nil
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}
	return file, nil
}

// Debugf formats Debug log
func Debugf(format string, args ...interface{}) {
	sugar.Debugf(format, args...)
}

// Infof formats Info log
func Infof(format string, args ...interface{}) {
	sugar.Infof(format, args...)
}

// Warnf formats Warn log
func Warnf(format string, args ...interface{}) {
	sugar.Warnf(format, args...)
}

// Errorf formats Error log
func Errorf(format string, args ...interface{}) {
	sugar.Errorf(format, args...)
}

// Fatalf formats Fatal log
func Fatalf(format string, args ...interface{}) {
	sugar.Fatalf(format, args...)
}

// Ctx variants keep the call sites uniform with context-first methods.
// Tracing is not wired yet, the context is accepted for forward
// compatibility only.

func DebugCtx(_ context.Context, format string, args ...interface{}) {
	sugar.Debugf(format, args...)
}

func InfoCtx(_ context.Context, format string, args ...interface{}) {
	sugar.Infof(format, args...)
}

func WarnCtx(_ context.Context, format string, args ...interface{}) {
	sugar.Warnf(format, args...)
}

func ErrorCtx(_ context.Context, format string, args ...interface{}) {
	sugar.Errorf(format, args...)
}

func FatalCtx(_ context.Context, format string, args ...interface{}) {
	sugar.Fatalf(format, args...)
}

// Sync flushes any buffered log entries
func Sync() error {
	return Log.Sync()
}
