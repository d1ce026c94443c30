package orchestration

import (
	"context"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "github.com/koscakluka/ema-chat/core"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

var (
	sendCounter, _ = meter.Int64Counter("emachat.sends",
		metric.WithDescription("Orchestration sends, by outcome"))
	captureCounter, _ = meter.Int64Counter("emachat.capture_sessions",
		metric.WithDescription("Recording sessions, by outcome"))
	playbackCounter, _ = meter.Int64Counter("emachat.playbacks",
		metric.WithDescription("Speech playbacks, by outcome"))
)

func countOutcome(ctx context.Context, counter metric.Int64Counter, outcome string) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
