package orchestration

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync/atomic"

	"github.com/koscakluka/ema-chat/core/api"
	events "github.com/koscakluka/ema-chat/core/events"
	"go.opentelemetry.io/otel/attribute"
)

type sendState int32

const (
	sendIdle sendState = iota
	sendInFlight
)

// dispatcher owns the single outbound orchestration request. It is a latch,
// not a queue: a send while another is in flight is rejected.
type dispatcher struct {
	state atomic.Int32

	service         OrchestrationService
	transcript      *transcript
	input           *pendingInput
	model           func() api.Model
	contextProvider func() map[string]any
	coordinatorRole string

	emitEvent eventEmitter
}

func (d *dispatcher) IsBusy() bool {
	return sendState(d.state.Load()) == sendInFlight
}

// Send appends text as a user message, asks the backend and appends whatever
// the answer turns into. Failures past the guard become a single assistant
// message; only guard rejections are returned.
func (d *dispatcher) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	if !d.state.CompareAndSwap(int32(sendIdle), int32(sendInFlight)) {
		logger.InfoContext(ctx, "send rejected while another send is in flight")
		countOutcome(ctx, sendCounter, "rejected")
		return ErrBusy
	}

	var sendErr error
	defer func() {
		d.state.Store(int32(sendIdle))
		d.emitEvent(events.NewSendFinished(sendErr))
	}()

	ctx, span := tracer.Start(ctx, "send message")
	defer span.End()

	d.transcript.append(userDraft(text))
	d.input.Clear()
	d.emitEvent(events.NewSendStarted())

	drafts, sendErr := d.dispatch(ctx, text)
	if sendErr != nil {
		recordSpanError(span, sendErr)
		countOutcome(ctx, sendCounter, "failed")
		logger.WarnContext(ctx, "orchestration send failed", "error", sendErr)
		d.transcript.append(assistantDraft(describeFailure(sendErr)))
		return nil
	}

	span.SetAttributes(attribute.Int("messages.appended", len(drafts)))
	countOutcome(ctx, sendCounter, "ok")
	d.transcript.append(drafts...)
	return nil
}

func (d *dispatcher) dispatch(ctx context.Context, text string) ([]MessageDraft, error) {
	if d.service == nil {
		return nil, ErrServiceNotConfigured
	}

	request := api.Request{Text: text, Model: d.model()}
	if d.contextProvider != nil {
		request.Context = maps.Clone(d.contextProvider())
	}

	response, err := d.service.Orchestrate(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("orchestration request failed: %w", err)
	}

	return Interpret(response, d.coordinatorRole)
}

// describeFailure is the text of the assistant message shown for a failed
// send. Server reported errors are already meant for the user.
func describeFailure(err error) string {
	var serverErr *api.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Message
	}
	return "Error: " + err.Error()
}
