package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Initialize sets up the global zap logger for the given environment.
func Initialize(env string) *zap.Logger {
	return InitializeWithWriter(env, nil)
}

// InitializeWithWriter is Initialize with an optional extra JSON sink, used to
// ship logs to CloudWatch.
func InitializeWithWriter(env string, extra io.Writer) *zap.Logger {
	config := Config(env)

	var log *zap.Logger
	if extra != nil {
		level := zap.NewAtomicLevelAt(config.Level.Level())
		stdoutCore := zapcore.NewCore(stdoutEncoder(config), zapcore.AddSync(os.Stdout), level)
		extraCore := zapcore.NewCore(zapcore.NewJSONEncoder(SinkEncoderConfig(config)), zapcore.AddSync(extra), level)
		log = zap.New(zapcore.NewTee(stdoutCore, extraCore), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		var err error
		log, err = config.Build()
		if err != nil {
			fmt.Printf("Failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
	}

	zap.ReplaceGlobals(log)
	return log
}

func stdoutEncoder(config zap.Config) zapcore.Encoder {
	if config.Encoding == "json" {
		return zapcore.NewJSONEncoder(config.EncoderConfig)
	}
	return zapcore.NewConsoleEncoder(config.EncoderConfig)
}

// SinkEncoderConfig is the encoder config of the extra JSON sink. Levels are
// written without colour codes.
func SinkEncoderConfig(config zap.Config) zapcore.EncoderConfig {
	enc := config.EncoderConfig
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	return enc
}

// Config returns the zap configuration used for env.
func Config(env string) zap.Config {
	if env == "production" {
		config := zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return config
	}
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return config
}
