package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// TodoSubjects matches every todo event subject.
	TodoSubjects = "todo.*"
	// FailedSubject receives the raw payload of events whose handler kept failing.
	FailedSubject = "todo.events.failed"

	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second
)

type TodoEventHandler func(ctx context.Context, event TodoEvent) error

type TodoSubscriber struct {
	natsConn   *nats.Conn
	sub        *nats.Subscription
	handler    TodoEventHandler
	maxRetries int
	retryDelay time.Duration
	// deadLetter publishes payloads that exhausted their retries.
	deadLetter func(data []byte) error
}

func NewTodoSubscriber(natsURL string, handler TodoEventHandler) (*TodoSubscriber, error) {
	nc, err := nats.Connect(natsURL, nats.Name("todo-event-worker"))
	if err != nil {
		return nil, err
	}
	slog.Info("Todo subscriber connected to NATS", slog.String("url", natsURL))

	s := newTodoSubscriber(handler, func(data []byte) error {
		return nc.Publish(FailedSubject, data)
	})
	s.natsConn = nc

	sub, err := nc.Subscribe(TodoSubjects, func(msg *nats.Msg) {
		s.process(context.Background(), msg.Subject, msg.Data)
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribe %s: %w", TodoSubjects, err)
	}
	s.sub = sub

	slog.Info("Todo subscriber listening", slog.String("subject", TodoSubjects))

	return s, nil
}

func newTodoSubscriber(handler TodoEventHandler, deadLetter func([]byte) error) *TodoSubscriber {
	return &TodoSubscriber{
		handler:    handler,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		deadLetter: deadLetter,
	}
}

// process decodes one message and runs the handler with retries. It reports
// whether the event was handled.
func (s *TodoSubscriber) process(ctx context.Context, subject string, data []byte) bool {
	if subject == FailedSubject {
		return false
	}

	var event TodoEvent
	if err := json.Unmarshal(data, &event); err != nil {
		slog.ErrorContext(ctx, "Failed to unmarshal todo event",
			slog.String("subject", subject), slog.String("error", err.Error()))
		return false
	}

	var handleErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		handleErr = s.handler(ctx, event)
		if handleErr == nil {
			return true
		}

		slog.WarnContext(ctx, "Failed handling todo event, retrying",
			slog.String("event_id", event.EventID.String()),
			slog.Int("attempt", attempt),
			slog.String("error", handleErr.Error()))

		if attempt < s.maxRetries {
			time.Sleep(s.retryDelay)
		}
	}

	slog.ErrorContext(ctx, "Giving up on todo event",
		slog.String("event_id", event.EventID.String()),
		slog.String("event_type", event.EventType),
		slog.Int("attempts", s.maxRetries),
		slog.String("error", handleErr.Error()))

	if err := s.deadLetter(data); err != nil {
		slog.ErrorContext(ctx, "Failed to publish to dead letter subject",
			slog.String("subject", FailedSubject), slog.String("error", err.Error()))
	}

	return false
}

func (s *TodoSubscriber) Close() {
	if s.sub != nil {
		_ = s.sub.Unsubscribe()
	}
	if s.natsConn != nil {
		if err := s.natsConn.Drain(); err != nil {
			s.natsConn.Close()
		}
	}
}

// AuditHandler writes one structured log line per todo event.
func AuditHandler(logger *slog.Logger) TodoEventHandler {
	return func(ctx context.Context, event TodoEvent) error {
		logger.InfoContext(ctx, "Todo audit",
			slog.String("event_id", event.EventID.String()),
			slog.String("event_type", event.EventType),
			slog.Int64("todo_id", event.TodoID),
			slog.Int64("user_id", event.UserID),
			slog.String("status", string(event.Status)),
			slog.String("priority", string(event.Priority)),
			slog.Time("occurred_at", event.OccurredAt))
		return nil
	}
}
