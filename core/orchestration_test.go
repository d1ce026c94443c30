package orchestration

import (
	"testing"

	"github.com/koscakluka/ema-chat/core/api"
)

func TestNewOrchestratorDefaults(t *testing.T) {
	o := NewOrchestrator()

	if got := o.Model(); got != api.DefaultModel {
		t.Fatalf("expected default model %s, got %s", api.DefaultModel, got)
	}
	if o.IsBusy() || o.IsCapturing() {
		t.Fatalf("expected a fresh orchestrator to be idle")
	}
	if got := len(o.Messages()); got != 0 {
		t.Fatalf("expected empty transcript, got %d messages", got)
	}
	if got := o.PlayingMessageID(); got != "" {
		t.Fatalf("expected nothing playing, got %q", got)
	}
}

func TestWithGreetingSeedsAssistantMessage(t *testing.T) {
	o := NewOrchestrator(WithGreeting("How can I help?"), WithIDGenerator(sequentialIDs()))

	messages := o.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].IsUser || messages[0].Text != "How can I help?" || messages[0].ID != "m1" {
		t.Fatalf("unexpected greeting %+v", messages[0])
	}
}

func TestSetModelIgnoresUnknownModels(t *testing.T) {
	o := NewOrchestrator(WithModel(api.ModelGPT4o))

	o.SetModel(api.Model("gpt-2"))
	if got := o.Model(); got != api.ModelGPT4o {
		t.Fatalf("expected model to stay %s, got %s", api.ModelGPT4o, got)
	}

	o.SetModel(o.Model().Next())
	if got := o.Model(); got != api.ModelGPT41 {
		t.Fatalf("expected model to cycle to %s, got %s", api.ModelGPT41, got)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	o := NewOrchestrator(WithMicrophone(&testMicrophone{}), WithSpeaker(&testSpeaker{}))

	o.Close()
	o.Close()
}
