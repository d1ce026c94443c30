package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	orchestration "github.com/koscakluka/ema-chat/core"
	"github.com/koscakluka/ema-chat/core/api"
	"github.com/koscakluka/ema-chat/core/backend"
	events "github.com/koscakluka/ema-chat/core/events"
	"github.com/koscakluka/ema-chat/internal/config"
)

const (
	defaultGreeting = "Hi! Type a message, or press ctrl+r to dictate one."

	logScope        = "github.com/koscakluka/ema-chat/cmd/emachat"
	logFlushTimeout = 5 * time.Second
)

type rootOptions struct {
	configPath string
	backendURL string
	model      string
	audio      string
}

func newRootCommand() *cobra.Command {
	options := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "emachat",
		Short: "Chat with the ema backend from the terminal",
		Long: `Chat with the ema backend from the terminal.

Messages go to the backend orchestrator, which answers directly, runs a
two-agent conversation or a self-improvement cycle. Recordings are transcribed
by the backend and assistant messages can be read aloud.

Configuration is read from --config (YAML) and EMACHAT_* environment
variables; flags override both.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), options)
		},
	}

	cmd.Flags().StringVarP(&options.configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&options.backendURL, "backend-url", "", "backend base URL")
	cmd.Flags().StringVarP(&options.model, "model", "m", "", fmt.Sprintf("model to start with %v", api.Models()))
	cmd.Flags().StringVar(&options.audio, "audio", "", "audio driver: miniaudio, portaudio or none")

	cmd.AddCommand(newSchemaCommand())
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.backendURL != "" {
		cfg.Backend.URL = o.backendURL
	}
	if o.model != "" {
		cfg.Model = api.Model(o.model)
	}
	if o.audio != "" {
		cfg.Audio.Driver = config.AudioDriver(o.audio)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func runChat(ctx context.Context, options *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := options.load()
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()

	device, err := openAudioDevice(cfg.Audio)
	if err != nil {
		return err
	}
	defer device.Close()

	greeting := cfg.Greeting
	if greeting == "" {
		greeting = defaultGreeting
	}

	eventsCh := make(chan events.Event, 64)
	opts := []orchestration.OrchestratorOption{
		orchestration.WithBackend(backend.NewClient(cfg.Backend.URL, backend.WithTimeout(cfg.Backend.Timeout))),
		orchestration.WithModel(cfg.Model),
		orchestration.WithCoordinatorRole(cfg.CoordinatorRole),
		orchestration.WithGreeting(greeting),
		orchestration.WithEventHandler(forwardEvents(eventsCh)),
	}
	opts = append(opts, device.options()...)

	o := orchestration.NewOrchestrator(opts...)
	defer o.Close()

	slog.Info("starting chat",
		"backend", cfg.Backend.URL,
		"model", cfg.Model,
		"audio", cfg.Audio.Driver)

	program := tea.NewProgram(newChatModel(ctx, o, eventsCh), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chat UI: %w", err)
	}
	return nil
}

// forwardEvents hands core events to the UI loop. Events only tell the UI to
// re-read state, so one is dropped rather than blocking the core when the UI
// falls behind.
func forwardEvents(ch chan<- events.Event) func(events.Event) {
	return func(event events.Event) {
		select {
		case ch <- event:
		default:
		}
	}
}

// setupLogging routes every OpenTelemetry logger, the slog default included,
// to path as JSON records. The terminal belongs to the UI, so without a path
// logs are discarded. Loggers bind to the first installed provider, so this
// runs once per process.
func setupLogging(path string) (func(), error) {
	if path == "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(io.Discard, nil)))
		return func() {}, nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	exporter, err := stdoutlog.New(stdoutlog.WithWriter(file))
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to create log exporter: %w", err)
	}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)))
	global.SetLoggerProvider(provider)
	slog.SetDefault(otelslog.NewLogger(logScope))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), logFlushTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
		}
		_ = file.Close()
	}, nil
}
