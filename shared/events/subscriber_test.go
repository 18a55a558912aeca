package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// ---- fake stream ----

// fakeStream keeps one consumer's pending list and a queue of new entries.
// Calls outside the stream commands panic on the nil embedded interface.
type fakeStream struct {
	redis.Cmdable
	pending []redis.XMessage
	fresh   []redis.XMessage
	acked   []string
	added   []*redis.XAddArgs
	readErr error
}

func (f *fakeStream) XGroupCreateMkStream(_ context.Context, _, _, _ string) *redis.StatusCmd {
	return redis.NewStatusResult("", errors.New("BUSYGROUP Consumer Group name already exists"))
}

func (f *fakeStream) XReadGroup(_ context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	if f.readErr != nil {
		return redis.NewXStreamSliceCmdResult(nil, f.readErr)
	}
	id := a.Streams[1]
	if id == ">" {
		if len(f.fresh) == 0 {
			return redis.NewXStreamSliceCmdResult(nil, redis.Nil)
		}
		n := min(int(a.Count), len(f.fresh))
		batch := f.fresh[:n]
		f.fresh = f.fresh[n:]
		f.pending = append(f.pending, batch...)
		return redis.NewXStreamSliceCmdResult([]redis.XStream{{Stream: a.Streams[0], Messages: batch}}, nil)
	}
	n := min(int(a.Count), len(f.pending))
	batch := append([]redis.XMessage(nil), f.pending[:n]...)
	return redis.NewXStreamSliceCmdResult([]redis.XStream{{Stream: a.Streams[0], Messages: batch}}, nil)
}

func (f *fakeStream) XAck(_ context.Context, _, _ string, ids ...string) *redis.IntCmd {
	for _, id := range ids {
		f.acked = append(f.acked, id)
		for i, m := range f.pending {
			if m.ID == id {
				f.pending = append(f.pending[:i], f.pending[i+1:]...)
				break
			}
		}
	}
	return redis.NewIntResult(int64(len(ids)), nil)
}

func (f *fakeStream) XAdd(_ context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.added = append(f.added, a)
	return redis.NewStringResult("1-0", nil)
}

func entry(t *testing.T, id, eventType string) redis.XMessage {
	t.Helper()
	data, _ := json.Marshal(MerchantCredentialsRevokedEvent{MerchantID: "M-1"})
	env, err := json.Marshal(Event{ID: id, Type: eventType, Timestamp: time.Now().UTC(), Data: data})
	if err != nil {
		t.Fatal(err)
	}
	return redis.XMessage{ID: id, Values: map[string]any{"event": string(env)}}
}

// ---- tests ----

func TestSubscriber_DrainPending(t *testing.T) {
	tests := []struct {
		name        string
		pending     []string
		failOn      string
		wantHandled []string
		wantPending int
	}{
		{name: "nothing pending"},
		{name: "replays and acks", pending: []string{"1-0", "2-0", "3-0"}, wantHandled: []string{"1-0", "2-0", "3-0"}},
		{name: "failed entry stays pending", pending: []string{"1-0", "2-0"}, failOn: "1-0", wantHandled: []string{"1-0", "2-0", "1-0"}, wantPending: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeStream{}
			for _, id := range tt.pending {
				fake.pending = append(fake.pending, entry(t, id, MerchantCredentialsRevoked))
			}
			var handled []string
			sub := NewSubscriber(fake, SubscriberConfig{
				Group: "g", Consumer: "c", Stream: MerchantEventsStream,
				Handler: func(_ context.Context, e Event) error {
					handled = append(handled, e.ID)
					if e.ID == tt.failOn {
						return fmt.Errorf("boom")
					}
					return nil
				},
			})

			if err := sub.drainPending(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if fmt.Sprint(handled) != fmt.Sprint(tt.wantHandled) {
				t.Errorf("handled = %v, want %v", handled, tt.wantHandled)
			}
			if len(fake.pending) != tt.wantPending {
				t.Errorf("pending = %d, want %d", len(fake.pending), tt.wantPending)
			}
		})
	}
}

func TestSubscriber_PollSkipsMalformed(t *testing.T) {
	fake := &fakeStream{fresh: []redis.XMessage{
		{ID: "1-0", Values: map[string]any{"other": "x"}},
		entry(t, "2-0", MerchantCredentialsRevoked),
	}}
	calls := 0
	sub := NewSubscriber(fake, SubscriberConfig{Stream: MerchantEventsStream, Handler: func(context.Context, Event) error {
		calls++
		return nil
	}})

	acked, err := sub.poll(context.Background(), ">")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acked != 1 || calls != 1 {
		t.Fatalf("acked=%d calls=%d, want 1 and 1", acked, calls)
	}
	if len(fake.acked) != 1 || fake.acked[0] != "2-0" {
		t.Fatalf("acked ids = %v", fake.acked)
	}
}

func TestSubscriber_StartStopsWithContext(t *testing.T) {
	fake := &fakeStream{readErr: errors.New("connection refused")}
	sub := NewSubscriber(fake, SubscriberConfig{Stream: MerchantEventsStream, Handler: func(context.Context, Event) error { return nil }})
	sub.retryDelay = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := sub.Start(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Start() = %v, want deadline exceeded", err)
	}
}

func TestPublisher_Publish(t *testing.T) {
	fake := &fakeStream{}
	pub := NewPublisher(fake)

	err := pub.Publish(context.Background(), AuthorizationEventsStream, TransactionAuthorized, map[string]string{"transactionId": "T-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.added) != 1 || fake.added[0].Stream != AuthorizationEventsStream {
		t.Fatalf("unexpected XAdd calls %+v", fake.added)
	}
	raw, ok := fake.added[0].Values.(map[string]any)["event"].([]byte)
	if !ok {
		t.Fatalf("event value missing")
	}
	event, err := ParseEvent(raw)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if event.Type != TransactionAuthorized || event.ID == "" {
		t.Fatalf("unexpected envelope %+v", event)
	}
}
