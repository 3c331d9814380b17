package errutil_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/quadrant/pkg/utils/errutil"
)

func TestHandleHTTPHidesServerErrorDetail(t *testing.T) {
	w := httptest.NewRecorder()
	err := goerr.New("database password is hunter2", goerr.V("table", "todos"))

	errutil.HandleHTTP(context.Background(), w, err, http.StatusInternalServerError)

	gt.Number(t, w.Code).Equal(http.StatusInternalServerError)
	gt.B(t, w.Body.String() == "Internal Server Error\n").True()
}

func TestHandleHTTPHidesUnauthorizedDetail(t *testing.T) {
	w := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), w, errors.New("signature mismatch"), http.StatusUnauthorized)

	gt.Number(t, w.Code).Equal(http.StatusUnauthorized)
	gt.B(t, w.Body.String() == "Unauthorized\n").True()
}

func TestHandleHTTPPassesClientErrorMessage(t *testing.T) {
	w := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), w, errors.New("title is required"), http.StatusBadRequest)

	gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	gt.String(t, w.Body.String()).Contains("title is required")
}

func TestHandleNil(t *testing.T) {
	errutil.Handle(context.Background(), nil, "nothing")
	w := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), w, nil, http.StatusBadRequest)
	gt.Number(t, w.Code).Equal(http.StatusOK)
}

func TestHandleForwardsToSentry(t *testing.T) {
	var (
		mu       sync.Mutex
		captured []*sentry.Event
	)
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "https://public@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			defer mu.Unlock()
			captured = append(captured, event)
			return nil
		},
	})
	gt.NoError(t, err).Required()

	hub := sentry.CurrentHub()
	prev := hub.Client()
	hub.BindClient(client)
	t.Cleanup(func() { hub.BindClient(prev) })

	errutil.Handle(context.Background(), goerr.New("ledger insert failed"), "background task failed")

	mu.Lock()
	defer mu.Unlock()
	gt.Array(t, captured).Length(1).Required()
	found := false
	for _, ex := range captured[0].Exception {
		if ex.Value == "ledger insert failed" {
			found = true
		}
	}
	gt.B(t, found).True()
}
