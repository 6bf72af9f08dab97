package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"todo-service/internal/model"
)

const (
	TodoCreated = "todo.created"
	TodoUpdated = "todo.updated"
	TodoDeleted = "todo.deleted"
)

type EventPublisher interface {
	PublishTodoEvent(ctx context.Context, eventType string, todo *model.Todo) error
	Close()
}

type TodoEvent struct {
	EventID    uuid.UUID      `json:"event_id"`
	EventType  string         `json:"event_type"`
	TodoID     int64          `json:"todo_id"`
	UserID     int64          `json:"user_id"`
	Title      string         `json:"title"`
	Status     model.Status   `json:"status"`
	Priority   model.Priority `json:"priority"`
	CategoryID *int64         `json:"category_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func NewTodoEvent(eventType string, todo *model.Todo) TodoEvent {
	return TodoEvent{
		EventID:    uuid.New(),
		EventType:  eventType,
		TodoID:     todo.ID,
		UserID:     todo.UserID,
		Title:      todo.Title,
		Status:     todo.Status,
		Priority:   todo.Priority,
		CategoryID: todo.CategoryID,
		OccurredAt: time.Now().UTC(),
	}
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (EventPublisher, error) {
	nc, err := nats.Connect(natsURL, nats.Name("todo-service"))

	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

// PublishTodoEvent publishes on the subject named after the event type.
func (p *NatsPublisher) PublishTodoEvent(ctx context.Context, eventType string, todo *model.Todo) error {
	eventJSON, err := json.Marshal(NewTodoEvent(eventType, todo))

	if err != nil {
		slog.ErrorContext(ctx, "Error marshalling event JSON", slog.String("error", err.Error()))
		return err
	}

	err = p.conn.Publish(eventType, eventJSON)

	if err != nil {
		slog.ErrorContext(ctx, "Error publishing to NATS", slog.String("subject", eventType), slog.String("error", err.Error()))
		return err
	}

	slog.DebugContext(ctx, "Published event to NATS", slog.String("subject", eventType), slog.Int64("todo_id", todo.ID))

	return nil
}

func (p *NatsPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// NoopPublisher is used when no NATS_URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishTodoEvent(context.Context, string, *model.Todo) error { return nil }
func (NoopPublisher) Close()                                                      {}
