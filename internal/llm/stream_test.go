package llm

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func TestEventStreamDeliversInOrder(t *testing.T) {
	stream := newEventStream(context.Background(), func(ctx context.Context, ch chan<- Event) error {
		ch <- Event{Type: EventTextDelta, Text: "Hel"}
		ch <- Event{Type: EventTextDelta, Text: "lo"}
		ch <- Event{Type: EventDone}
		return nil
	})
	defer stream.Close()

	var got []Event
	for {
		event, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, event)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].Text != "Hel" || got[1].Text != "lo" {
		t.Fatalf("fragments out of order: %q, %q", got[0].Text, got[1].Text)
	}
	if got[2].Type != EventDone {
		t.Fatalf("expected EventDone last, got %v", got[2].Type)
	}
}

func TestEventStreamRunErrorBecomesEvent(t *testing.T) {
	wantErr := errors.New("timeout")
	stream := newEventStream(context.Background(), func(ctx context.Context, ch chan<- Event) error {
		ch <- Event{Type: EventTextDelta, Text: "partial"}
		return wantErr
	})
	defer stream.Close()

	first, err := stream.Recv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Text != "partial" {
		t.Fatalf("first event=%q, want %q", first.Text, "partial")
	}

	second, err := stream.Recv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Type != EventError {
		t.Fatalf("expected EventError, got %v", second.Type)
	}
	if !errors.Is(second.Err, wantErr) {
		t.Fatalf("event error=%v, want %v", second.Err, wantErr)
	}

	if _, err := stream.Recv(); err != io.EOF {
		t.Fatalf("expected io.EOF after error event, got %v", err)
	}
}

func TestEventStreamDrainsBufferAfterCancel(t *testing.T) {
	produced := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	stream := newEventStream(ctx, func(ctx context.Context, ch chan<- Event) error {
		ch <- Event{Type: EventTextDelta, Text: "one"}
		ch <- Event{Type: EventUsage, Use: &Usage{OutputTokens: 2}}
		close(produced)
		return nil
	})
	defer stream.Close()

	<-produced
	cancel()

	// Buffered events must still be delivered after the context is gone.
	first, err := stream.Recv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Text != "one" {
		t.Fatalf("first event=%q, want %q", first.Text, "one")
	}
	second, err := stream.Recv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Type != EventUsage || second.Use == nil || second.Use.OutputTokens != 2 {
		t.Fatalf("unexpected second event: %+v", second)
	}
}

func TestEventStreamCloseUnblocksProducer(t *testing.T) {
	blocked := make(chan struct{})
	returned := make(chan struct{})

	stream := newEventStream(context.Background(), func(ctx context.Context, ch chan<- Event) error {
		close(blocked)
		<-ctx.Done()
		close(returned)
		return ctx.Err()
	})

	<-blocked
	stream.Close()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("producer did not observe cancellation after Close")
	}
}
