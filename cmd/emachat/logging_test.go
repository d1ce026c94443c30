package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	orchestration "github.com/koscakluka/ema-chat/core"
	"github.com/koscakluka/ema-chat/core/api"
)

type failingService struct{}

func (failingService) Orchestrate(context.Context, api.Request) (api.Response, error) {
	return nil, errors.New("backend exploded")
}

func TestSetupLoggingCapturesCoreLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emachat.log")
	closeLog, err := setupLogging(path)
	if err != nil {
		t.Fatalf("expected logging to be set up, got %v", err)
	}

	o := orchestration.NewOrchestrator(orchestration.WithOrchestrationService(failingService{}))
	if err := o.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("expected send to report failure in the transcript, got %v", err)
	}
	o.Close()
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	for _, want := range []string{"orchestration send failed", "backend exploded"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected log file to contain %q, got %q", want, data)
		}
	}
}
