// Copyright (c) readyq contributors. All rights reserved.
// Licensed under the MIT License.

package otrq_test

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/readypoll/readyq/otrq"
	"github.com/readypoll/readyq/spawn"
)

// Example demonstrates wiring otrq's decorators around a function spawned
// through the spawn package.
func Example_tracedSpawn() {
	exporter, _ := stdouttrace.New(stdouttrace.WithWriter(io.Discard), stdouttrace.WithPrettyPrint())
	tp := trace.NewTracerProvider(
		trace.WithSampler(trace.AlwaysSample()),
		trace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())

	q := spawn.NewQueue()
	defer q.Close()

	done := make(chan struct{})
	work := otrq.TracedFunc("greet", otrq.LoggedFunc("greet", func() error {
		fmt.Println("hello from a traced, logged task")
		close(done)
		return nil
	}))

	_ = q.Spawn(spawn.FromFunc(work))
	<-done

	// Output:
	// hello from a traced, logged task
}
