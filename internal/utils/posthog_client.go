// posthog_client.go provides a wrapper around the posthog client that is safe to use when analytics is disabled.
package utils

import (
	"log/slog"

	"github.com/posthog/posthog-go"
)

// EventQueue is the subset of posthog.Client the wrapper needs.
type EventQueue interface {
	Enqueue(posthog.Message) error
	Close() error
}

// PosthogClientWrapper forwards API events to PostHog. The zero value is a disabled client.
type PosthogClientWrapper struct {
	posthogClient EventQueue
	logger        *slog.Logger
}

// InitializePosthogClient builds a wrapper; an empty apiKey yields a disabled client.
func InitializePosthogClient(apiKey, endpoint string, logger *slog.Logger) *PosthogClientWrapper {
	if apiKey == "" {
		logger.Warn("Posthog API key is empty, not initializing posthog client.")
		return &PosthogClientWrapper{}
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		logger.Error("Failed to initialize posthog client", slog.String("error", err.Error()))
		return &PosthogClientWrapper{}
	}
	logger.Info("Posthog client initialized", slog.String("endpoint", endpoint))
	return &PosthogClientWrapper{posthogClient: client, logger: logger}
}

// NewPosthogClientWrapper wraps an existing queue, mainly for tests.
func NewPosthogClientWrapper(queue EventQueue, logger *slog.Logger) *PosthogClientWrapper {
	return &PosthogClientWrapper{posthogClient: queue, logger: logger}
}

func (w *PosthogClientWrapper) IsInitialized() bool {
	return w != nil && w.posthogClient != nil
}

func (w *PosthogClientWrapper) Enqueue(distinctID string, event string, properties map[string]any) {
	if !w.IsInitialized() {
		return
	}
	err := w.posthogClient.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: properties,
	})
	if err != nil && w.logger != nil {
		w.logger.Warn("Failed to enqueue posthog event", slog.String("event", event), slog.String("error", err.Error()))
	}
}

func (w *PosthogClientWrapper) Close() {
	if !w.IsInitialized() {
		return
	}
	_ = w.posthogClient.Close()
}
