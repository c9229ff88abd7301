package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	events "github.com/docker/go-events"
)

// SlackSink posts Events to a Slack incoming webhook. Delivery runs on a
// background goroutine behind an eventQueue, so Notify never blocks on the
// network.
type SlackSink struct {
	queue *eventQueue
}

// NewSlackSink builds a SlackSink posting to webhookURL.
func NewSlackSink(webhookURL string) *SlackSink {
	return &SlackSink{queue: newEventQueue(&webhookSink{url: webhookURL, client: &http.Client{Timeout: 10 * time.Second}})}
}

func (s *SlackSink) Notify(_ context.Context, event Event) error {
	return s.queue.Write(event)
}

// Close stops accepting new events and lets the queue drain.
func (s *SlackSink) Close() error {
	return s.queue.Close()
}

// webhookSink is the events.Sink a SlackSink's queue flushes to.
type webhookSink struct {
	url    string
	client *http.Client
}

type slackPayload struct {
	Text string `json:"text"`
}

func (w *webhookSink) Write(event events.Event) error {
	e, ok := event.(Event)
	if !ok {
		return fmt.Errorf("notify: unexpected event type %T", event)
	}

	body, err := json.Marshal(slackPayload{Text: formatMessage(e)})
	if err != nil {
		return err
	}

	resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (w *webhookSink) Close() error { return nil }

func formatMessage(e Event) string {
	switch e.Kind {
	case EventPublished:
		return fmt.Sprintf("published %s %s", e.Artifact, e.Version)
	case EventSynced:
		return fmt.Sprintf("synced %s to %s", e.Artifact, e.Version)
	default:
		return fmt.Sprintf("%s %s %s", e.Kind, e.Artifact, e.Version)
	}
}
