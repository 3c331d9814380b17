package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/domain/model"
)

type processedEventRepository struct {
	mu     sync.Mutex
	events map[string]*model.ProcessedEvent
}

func newProcessedEventRepository() *processedEventRepository {
	return &processedEventRepository{
		events: make(map[string]*model.ProcessedEvent),
	}
}

func (r *processedEventRepository) GetByKey(ctx context.Context, eventKey string) (*model.ProcessedEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[eventKey]
	if !ok {
		return nil, nil
	}
	c := *e
	return &c, nil
}

func (r *processedEventRepository) InsertIfAbsent(ctx context.Context, event *model.ProcessedEvent) (bool, error) {
	if event == nil || event.EventKey == "" {
		return false, goerr.New("event key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[event.EventKey]; ok {
		return false, nil
	}
	c := *event
	r.events[event.EventKey] = &c
	return true, nil
}
