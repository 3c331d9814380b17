package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/nats-io/nats.go"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
	"github.com/secmon-lab/quadrant/pkg/utils/logging"
)

// NATS publishes todo events to a NATS server
type NATS struct {
	conn *nats.Conn
}

var _ Notifier = &NATS{}

// NewNATS connects to the NATS server at url. Publishing never blocks on a
// disconnected server: messages are buffered by the client while it reconnects.
func NewNATS(url, token string) (*NATS, error) {
	logger := logging.Default()
	opts := []nats.Option{
		nats.Name("quadrant"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to NATS", goerr.V("url", url))
	}
	return &NATS{conn: nc}, nil
}

func (n *NATS) TodoCreated(ctx context.Context, todo *model.Todo) error {
	payload, err := json.Marshal(newTodoEvent(todo))
	if err != nil {
		return goerr.Wrap(err, "failed to marshal todo event", goerr.V("todo_id", todo.ID))
	}
	if err := n.conn.Publish(SubjectTodoCreated, payload); err != nil {
		return goerr.Wrap(err, "failed to publish todo event", goerr.V("todo_id", todo.ID))
	}
	return nil
}

// Close drains pending messages before closing the connection
func (n *NATS) Close() error {
	return n.conn.Drain()
}
