// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

// Package otrq adds structured logging, tracing, and metrics decorators
// for tasks spawned through the spawn package.
package otrq

import (
	"time"

	"go.uber.org/zap"
)

// LoggedFunc wraps fn with structured start/completion logging, suitable
// for boxing with spawn.FromFunc. operationName identifies the wrapped
// work in every log line it produces.
func LoggedFunc(operationName string, fn func() error) func() error {
	return func() error {
		logger := zap.L()

		logger.Debug("starting task",
			zap.String("operation", operationName),
			zap.String("component", "otrq"))

		start := time.Now()
		err := fn()
		duration := time.Since(start)

		if err != nil {
			logger.Error("task failed",
				zap.String("operation", operationName),
				zap.String("component", "otrq"),
				zap.Duration("duration", duration),
				zap.Error(err))
		} else {
			logger.Debug("task completed",
				zap.String("operation", operationName),
				zap.String("component", "otrq"),
				zap.Duration("duration", duration))
		}

		return err
	}
}
