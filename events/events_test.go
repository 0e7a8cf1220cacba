package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBus_EmitReachesSubscribedHandler(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var got []BalanceChangeEvent
	done := make(chan struct{})

	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, e Event) {
		mu.Lock()
		got = append(got, e.(BalanceChangeEvent))
		mu.Unlock()
		close(done)
	})

	bus.Emit(context.Background(), BalanceChangeEvent{UserID: 1, Field: "coins", ChangeAmount: 50})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not called")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].UserID)
	assert.Equal(t, "coins", got[0].Field)
}

func TestBus_EmitWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewBus()
	bus.Emit(context.Background(), RecordCreatedEvent{Kind: "user", ID: 1})
}

func TestBus_HandlerOnlySeesItsEventType(t *testing.T) {
	bus := NewBus()

	called := make(chan EventType, 2)
	bus.Subscribe(EventTypeItemsExpired, func(ctx context.Context, e Event) {
		called <- e.Type()
	})

	bus.Emit(context.Background(), RecordCreatedEvent{Kind: "user", ID: 1})
	bus.Emit(context.Background(), ItemsExpiredEvent{UserID: 1, Purchases: 2})

	select {
	case eventType := <-called:
		assert.Equal(t, EventTypeItemsExpired, eventType)
	case <-time.After(time.Second):
		t.Fatal("handler was not called")
	}

	select {
	case eventType := <-called:
		t.Fatalf("unexpected extra event: %s", eventType)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_PanickingHandlerDoesNotCrash(t *testing.T) {
	bus := NewBus()

	done := make(chan struct{})
	bus.Subscribe(EventTypeRecordCreated, func(ctx context.Context, e Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeRecordCreated, func(ctx context.Context, e Event) {
		close(done)
	})

	bus.Emit(context.Background(), RecordCreatedEvent{Kind: "user", ID: 1})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("surviving handler was not called")
	}
}
