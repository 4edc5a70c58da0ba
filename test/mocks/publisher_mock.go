package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/membership-console/internal/core/ports"
)

// MockActivityPublisher implements ports.ActivityPublisher and
// ports.ActivityRecorder for testing. It lets the outbox relay and the
// console service run without RabbitMQ or Postgres.
type MockActivityPublisher struct {
	mu sync.RWMutex

	// Track published events for verification
	PublishedEvents []ports.ActivityEvent

	// Error injection for testing error scenarios
	PublishError error

	PublishCallCount int
}

var (
	_ ports.ActivityPublisher = (*MockActivityPublisher)(nil)
	_ ports.ActivityRecorder  = (*MockActivityPublisher)(nil)
)

func NewMockActivityPublisher() *MockActivityPublisher {
	return &MockActivityPublisher{
		PublishedEvents: make([]ports.ActivityEvent, 0),
	}
}

func (m *MockActivityPublisher) PublishActivity(ctx context.Context, evt ports.ActivityEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCallCount++

	if m.PublishError != nil {
		return m.PublishError
	}

	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

// RecordActivity behaves like PublishActivity.
func (m *MockActivityPublisher) RecordActivity(ctx context.Context, evt ports.ActivityEvent) error {
	return m.PublishActivity(ctx, evt)
}

// GetPublishedEvents returns a copy of the published events.
func (m *MockActivityPublisher) GetPublishedEvents() []ports.ActivityEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]ports.ActivityEvent, len(m.PublishedEvents))
	copy(events, m.PublishedEvents)
	return events
}

func (m *MockActivityPublisher) GetPublishCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PublishCallCount
}

func (m *MockActivityPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishedEvents = make([]ports.ActivityEvent, 0)
	m.PublishError = nil
	m.PublishCallCount = 0
}

// MockChangeNotifier records NotifyChange calls.
type MockChangeNotifier struct {
	mu      sync.Mutex
	Changes []Change
}

type Change struct {
	Screen string
	Action string
}

var _ ports.ChangeNotifier = (*MockChangeNotifier)(nil)

func (m *MockChangeNotifier) NotifyChange(screen, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Changes = append(m.Changes, Change{Screen: screen, Action: action})
}

func (m *MockChangeNotifier) GetChanges() []Change {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Change, len(m.Changes))
	copy(out, m.Changes)
	return out
}
