package main

import (
	"fmt"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// newLogger 构建 zap logger，并桥接为库使用的 slog.Logger
func newLogger(level, format string) (*zap.Logger, *slog.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}

	var zcfg zap.Config
	switch strings.ToLower(format) {
	case "console":
		zcfg = zap.NewDevelopmentConfig()
	case "", "json":
		zcfg = zap.NewProductionConfig()
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", format)
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	z, err := zcfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return z, slog.New(zapslog.NewHandler(z.Core())), nil
}
