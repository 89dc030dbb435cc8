package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// A burst of redeliveries repeats the same messages; sampling keeps the first
// of them per second and then one in every thereafterSampling.
const (
	initialSampling    = 50
	thereafterSampling = 20
)

type settings struct {
	config *zap.Config
	opts   []zap.Option
}

// Option adjusts the logger settings before the logger is built.
type Option func(s *settings)

// WithOutputPaths replaces stderr as the log destination.
func WithOutputPaths(paths ...string) Option {
	return func(s *settings) {
		s.config.OutputPaths = paths
	}
}

// WithoutSampling keeps every entry. Used with the debug level.
func WithoutSampling() Option {
	return func(s *settings) {
		s.config.Sampling = nil
	}
}

func defaultSettings(level zap.AtomicLevel, options ...Option) *settings {
	config := &zap.Config{
		Level: level,
		Sampling: &zap.SamplingConfig{
			Initial:    initialSampling,
			Thereafter: thereafterSampling,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "message",
			LevelKey:       "level",
			TimeKey:        "@timestamp",
			CallerKey:      "caller",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
		InitialFields: map[string]any{
			"service": serviceName,
		},
	}

	s := &settings{
		config: config,
		opts: []zap.Option{
			// ZapLogger methods add one frame between the caller and zap.
			zap.AddCallerSkip(1),
		},
	}
	for _, option := range options {
		option(s)
	}
	return s
}
