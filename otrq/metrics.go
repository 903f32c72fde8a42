// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

package otrq

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
)

// MetricsFunc wraps fn with count, duration, and error metrics recorded
// under metricName, suitable for boxing with spawn.FromFunc.
func MetricsFunc(metricName string, fn func() error) func() error {
	return func() error {
		ctx := context.Background()
		start := time.Now()
		meter := otel.GetMeterProvider().Meter("otrq")

		taskCounter, _ := meter.Int64Counter(metricName + ".count")
		taskDuration, _ := meter.Float64Histogram(metricName + ".duration")

		taskCounter.Add(ctx, 1)
		err := fn()
		taskDuration.Record(ctx, time.Since(start).Seconds())

		if err != nil {
			errorCounter, _ := meter.Int64Counter(metricName + ".errors")
			errorCounter.Add(ctx, 1)
		}

		return err
	}
}
