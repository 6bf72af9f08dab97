package service_test

import (
	"context"
	"errors"
	"sync"

	"todo-service/internal/model"
)

type publishedEvent struct {
	Type   string
	TodoID int64
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	fail   bool
}

func (p *recordingPublisher) PublishTodoEvent(ctx context.Context, eventType string, todo *model.Todo) error {
	if p.fail {
		return errors.New("nats: connection closed")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, TodoID: todo.ID})
	return nil
}

func (p *recordingPublisher) Close() {}

type fakeSigner struct {
	keys []string
	err  error
}

func (s *fakeSigner) GeneratePresignedUploadURL(ctx context.Context, objectKey string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.keys = append(s.keys, objectKey)
	return "https://uploads.example.test/" + objectKey + "?sig=1", nil
}
