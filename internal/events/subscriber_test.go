package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-service/internal/model"
)

func encodeEvent(t *testing.T, eventType string) []byte {
	t.Helper()
	data, err := json.Marshal(NewTodoEvent(eventType, &model.Todo{ID: 3, UserID: 9, Title: "t", Status: model.StatusDone}))
	require.NoError(t, err)
	return data
}

func TestProcessHandlesEvent(t *testing.T) {
	var got []TodoEvent
	var dead [][]byte

	s := newTodoSubscriber(func(ctx context.Context, event TodoEvent) error {
		got = append(got, event)
		return nil
	}, func(data []byte) error {
		dead = append(dead, data)
		return nil
	})

	ok := s.process(context.Background(), TodoUpdated, encodeEvent(t, TodoUpdated))
	assert.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].TodoID)
	assert.Equal(t, TodoUpdated, got[0].EventType)
	assert.Empty(t, dead)
}

func TestProcessRetriesThenDeadLetters(t *testing.T) {
	attempts := 0
	var dead [][]byte

	s := newTodoSubscriber(func(ctx context.Context, event TodoEvent) error {
		attempts++
		return errors.New("audit sink down")
	}, func(data []byte) error {
		dead = append(dead, data)
		return nil
	})
	s.retryDelay = 0

	payload := encodeEvent(t, TodoDeleted)
	ok := s.process(context.Background(), TodoDeleted, payload)

	assert.False(t, ok)
	assert.Equal(t, defaultMaxRetries, attempts)
	require.Len(t, dead, 1)
	assert.Equal(t, payload, dead[0])
}

func TestProcessRecoversOnRetry(t *testing.T) {
	attempts := 0
	s := newTodoSubscriber(func(ctx context.Context, event TodoEvent) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	}, func([]byte) error {
		t.Fatal("dead letter should not be used")
		return nil
	})
	s.retryDelay = 0

	assert.True(t, s.process(context.Background(), TodoCreated, encodeEvent(t, TodoCreated)))
	assert.Equal(t, 2, attempts)
}

func TestProcessSkipsMalformedAndFailedSubject(t *testing.T) {
	called := false
	s := newTodoSubscriber(func(ctx context.Context, event TodoEvent) error {
		called = true
		return nil
	}, func([]byte) error { return nil })

	assert.False(t, s.process(context.Background(), TodoCreated, []byte("{not json")))
	assert.False(t, s.process(context.Background(), FailedSubject, encodeEvent(t, TodoCreated)))
	assert.False(t, called)
}

func TestAuditHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	event := NewTodoEvent(TodoCreated, &model.Todo{ID: 4, UserID: 2, Status: model.StatusPending, Priority: model.PriorityLow})
	require.NoError(t, AuditHandler(logger)(context.Background(), event))

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Todo audit", record["msg"])
	assert.Equal(t, "todo.created", record["event_type"])
	assert.EqualValues(t, 4, record["todo_id"])
}
