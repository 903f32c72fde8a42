// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

package otrq

import (
	"context"

	"go.opentelemetry.io/otel"
)

// TracedFunc wraps fn in a span named operationName, suitable for boxing
// with spawn.FromFunc. readyq's task contract carries no context.Context
// of its own, so the span's context is rooted fresh on every call rather
// than propagated from a caller.
func TracedFunc(operationName string, fn func() error) func() error {
	return func() error {
		tracer := otel.Tracer("otrq")
		_, span := tracer.Start(context.Background(), operationName)
		defer span.End()

		err := fn()
		if err != nil {
			span.RecordError(err)
		}
		return err
	}
}
