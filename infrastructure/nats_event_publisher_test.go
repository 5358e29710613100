package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"curator/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMessagePublisher struct {
	mock.Mock
}

func (m *mockMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordNATSMessagePublished(eventType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[eventType]++
}

func TestSubjectFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "curator.balance_change", SubjectFor(events.EventTypeBalanceChange))
	assert.Len(t, AllSubjects(), len(events.AllEventTypes))
	assert.Contains(t, AllSubjects(), "curator.activity_settled")
}

func TestNATSEventPublisher_PublishEnvelope(t *testing.T) {
	t.Parallel()

	transport := new(mockMessagePublisher)
	recorder := &countingRecorder{}
	p := NewNATSEventPublisher(transport, recorder)
	fixed := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	var captured []byte
	transport.On("Publish", mock.Anything, "curator.user_created", mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(2).([]byte) }).
		Return(nil).Once()

	event := events.UserCreatedEvent{GuildID: "g1", UserID: "u1", Name: "alice", InitialBalance: 100}
	require.NoError(t, p.Publish(context.Background(), event))

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(captured, &envelope))
	assert.Equal(t, "user_created", envelope.EventType)
	assert.Equal(t, SourceService, envelope.SourceService)
	assert.True(t, fixed.Equal(envelope.Timestamp))
	_, err := uuid.Parse(envelope.EventID)
	assert.NoError(t, err)

	var payload events.UserCreatedEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, event, payload)

	assert.Equal(t, 1, recorder.counts["user_created"])
	transport.AssertExpectations(t)
}

func TestNATSEventPublisher_PublishError(t *testing.T) {
	t.Parallel()

	transport := new(mockMessagePublisher)
	recorder := &countingRecorder{}
	p := NewNATSEventPublisher(transport, recorder)

	transport.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("no responders"))

	err := p.Publish(context.Background(), events.ActivityResetEvent{GuildID: "g1", ActivityID: uuid.New()})
	require.Error(t, err)
	assert.Empty(t, recorder.counts)
}

func TestNATSEventPublisher_AttachForwardsBusEvents(t *testing.T) {
	t.Parallel()

	transport := new(mockMessagePublisher)
	delivered := make(chan string, 1)
	transport.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { delivered <- args.String(1) }).
		Return(nil)

	bus := events.NewBus()
	NewNATSEventPublisher(transport, nil).Attach(bus)

	bus.Emit(context.Background(), events.BalanceChangeEvent{GuildID: "g1", UserID: "u1", NewBalance: 5})

	select {
	case subject := <-delivered:
		assert.Equal(t, "curator.balance_change", subject)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not forwarded")
	}
}
