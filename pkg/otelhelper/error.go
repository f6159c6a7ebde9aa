package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorEvent names the span event recorded for a failed run or node.
const ErrorEvent = "skillflow.error"

// SetError marks the span failed. attrs describe where the failure happened
// and are attached to both the recorded error and the error event.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if err == nil {
		return
	}

	span.RecordError(err, trace.WithAttributes(attrs...))
	span.SetStatus(codes.Error, err.Error())
	span.AddEvent(ErrorEvent, trace.WithAttributes(
		append([]attribute.KeyValue{attribute.String("error.message", err.Error())}, attrs...)...,
	))
}
