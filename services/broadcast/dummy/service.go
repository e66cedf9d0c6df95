package dummybroadcast

import (
	"context"
	"sync"

	"github.com/trezcool/darasa/core"
)

// Event records one published event for test assertions.
type Event struct {
	Channel string
	Type    string
	Payload interface{}
}

type Service struct {
	mu     sync.Mutex
	events []Event
	err    error
}

var _ core.Broadcaster = (*Service)(nil)

func NewService() *Service {
	return &Service{}
}

// Fail makes every subsequent Publish return err.
func (svc *Service) Fail(err error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.err = err
}

func (svc *Service) Publish(_ context.Context, channel, eventType string, payload interface{}) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.err != nil {
		return svc.err
	}
	svc.events = append(svc.events, Event{Channel: channel, Type: eventType, Payload: payload})
	return nil
}

func (svc *Service) Events() []Event {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]Event, len(svc.events))
	copy(out, svc.events)
	return out
}

func (svc *Service) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.events = nil
}
