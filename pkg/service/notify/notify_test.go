package notify_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/nats-io/nats.go"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/domain/types"
	"github.com/secmon-lab/quadrant/pkg/service/notify"
)

func sampleTodo() *model.Todo {
	deadline := model.Date{Year: 2025, Month: time.March, Day: 4}
	return &model.Todo{
		ID:              types.TodoID("todo-1"),
		UserID:          types.UserID("user-1"),
		Title:           "Buy milk",
		Status:          types.TodoStatusOpen,
		Deadline:        &deadline,
		ImportanceScore: 0.8123,
		CreatedVia:      types.CreatedViaSlackWebhook,
		CreatedAt:       time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC),
	}
}

func TestNewTodoEvent(t *testing.T) {
	ev := notify.NewTodoEvent(sampleTodo())
	gt.Value(t, ev.TodoID).Equal("todo-1")
	gt.Value(t, ev.Deadline).Equal("2025-03-04")
	gt.Value(t, ev.CreatedVia).Equal("slack_webhook")
	gt.Value(t, ev.CreatedAt).Equal("2025-03-04T09:30:00.000Z")

	todo := sampleTodo()
	todo.Deadline = nil
	raw, err := json.Marshal(notify.NewTodoEvent(todo))
	gt.NoError(t, err).Required()
	gt.B(t, json.Valid(raw)).True()
	var m map[string]any
	gt.NoError(t, json.Unmarshal(raw, &m)).Required()
	_, hasDeadline := m["deadline"]
	gt.Bool(t, hasDeadline).False()
}

func TestNATSIntegration(t *testing.T) {
	url := os.Getenv("TEST_NATS_URL")
	if url == "" {
		t.Skip("TEST_NATS_URL not set")
	}

	sub, err := nats.Connect(url)
	gt.NoError(t, err).Required()
	defer sub.Close()

	received := make(chan *nats.Msg, 1)
	s, err := sub.ChanSubscribe(notify.SubjectTodoCreated, received)
	gt.NoError(t, err).Required()
	defer func() { _ = s.Unsubscribe() }()
	gt.NoError(t, sub.Flush()).Required()

	n, err := notify.NewNATS(url, "")
	gt.NoError(t, err).Required()
	defer func() { _ = n.Close() }()

	gt.NoError(t, n.TodoCreated(context.Background(), sampleTodo())).Required()

	select {
	case msg := <-received:
		var ev notify.TodoEvent
		gt.NoError(t, json.Unmarshal(msg.Data, &ev)).Required()
		gt.Value(t, ev.TodoID).Equal("todo-1")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for todo event")
	}
}
