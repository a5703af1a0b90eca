// Package tracing wires OpenTelemetry into the service.
//
//	shutdown, err := tracing.InitProvider(ctx, "sitecms", 0.1)
//	defer shutdown(ctx)
//
//	ctx, span := tracing.GetTracer().Start(ctx, "content.CreateNews")
//	defer span.End()
package tracing
