// Package logger provides the process-wide structured logger for Medley.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global structured logger. Safe to use before Initialize
	// is called: it starts as a no-op sink so library code never panics on
	// a nil logger.
	Logger *zap.SugaredLogger

	// JSONOutput records which encoding Initialize last chose.
	JSONOutput bool
)

func init() {
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger. jsonOutput selects structured JSON
// (for piping build output into another tool) over human-readable console
// output (the default for interactive CLI use).
func Initialize(jsonOutput bool) error {
	JSONOutput = jsonOutput

	var zapLogger *zap.Logger
	var err error

	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		zapLogger, err = config.Build()
	} else {
		config := zap.NewDevelopmentEncoderConfig()
		config.EncodeTime = zapcore.ISO8601TimeEncoder
		zapLogger = zap.New(
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(config),
				zapcore.AddSync(os.Stderr),
				zap.InfoLevel,
			),
		)
	}
	if err != nil {
		return err
	}

	Logger = zapLogger.Sugar()
	return nil
}

// Cleanup flushes any buffered log entries. Call before process exit.
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

func Info(args ...interface{})                        { Logger.Info(args...) }
func Infof(format string, args ...interface{})        { Logger.Infof(format, args...) }
func Infow(msg string, kv ...interface{})             { Logger.Infow(msg, kv...) }
func Warn(args ...interface{})                        { Logger.Warn(args...) }
func Warnf(format string, args ...interface{})        { Logger.Warnf(format, args...) }
func Warnw(msg string, kv ...interface{})             { Logger.Warnw(msg, kv...) }
func Error(args ...interface{})                       { Logger.Error(args...) }
func Errorf(format string, args ...interface{})       { Logger.Errorf(format, args...) }
func Errorw(msg string, kv ...interface{})            { Logger.Errorw(msg, kv...) }
func Debug(args ...interface{})                       { Logger.Debug(args...) }
func Debugf(format string, args ...interface{})       { Logger.Debugf(format, args...) }
func Debugw(msg string, kv ...interface{})            { Logger.Debugw(msg, kv...) }
