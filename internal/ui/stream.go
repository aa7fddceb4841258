package ui

import (
	"context"
	"io"

	"github.com/yashshri2111/ysbot/internal/llm"
)

// DefaultStreamBufferSize is the event channel capacity used when callers
// pass no explicit buffer. Large enough that a fast provider rarely blocks
// on a busy render loop.
const DefaultStreamBufferSize = 64

// StreamEventType discriminates events delivered to the presentation loop.
type StreamEventType int

const (
	// StreamEventText carries one response fragment.
	StreamEventText StreamEventType = iota
	// StreamEventUsage carries token accounting for the cycle.
	StreamEventUsage
	// StreamEventDone is the terminal event of a successful cycle.
	StreamEventDone
	// StreamEventError is the terminal event of a failed cycle.
	StreamEventError
)

// StreamEvent is a single update relayed from a background request to the
// presentation loop. The channel carrying these events closes after the
// terminal event (done or error) has been delivered.
type StreamEvent struct {
	Type         StreamEventType
	Text         string
	InputTokens  int
	OutputTokens int
	Err          error
}

// ErrorEvent wraps an error as a terminal stream event.
func ErrorEvent(err error) StreamEvent {
	return StreamEvent{Type: StreamEventError, Err: err}
}

// StreamAdapter converts an llm.Stream into a flat channel of StreamEvents.
// The channel preserves provider order; one adapter serves one request.
type StreamAdapter struct {
	events chan StreamEvent
}

// NewStreamAdapter creates an adapter whose event channel holds up to buffer
// events. A non-positive buffer selects DefaultStreamBufferSize.
func NewStreamAdapter(buffer int) *StreamAdapter {
	if buffer <= 0 {
		buffer = DefaultStreamBufferSize
	}
	return &StreamAdapter{events: make(chan StreamEvent, buffer)}
}

// Events returns the receive side of the adapter channel.
func (a *StreamAdapter) Events() <-chan StreamEvent {
	return a.events
}

// ProcessStream pumps provider events into the adapter channel until the
// stream ends, then closes the channel. The last event before close is
// always StreamEventDone or StreamEventError. When ctx is cancelled the
// remaining events are discarded and the channel still closes, so a
// consumer that went away mid-stream never wedges the producer.
func (a *StreamAdapter) ProcessStream(ctx context.Context, stream llm.Stream) {
	defer close(a.events)
	defer stream.Close()

	for {
		event, err := stream.Recv()
		if err == io.EOF {
			a.send(ctx, StreamEvent{Type: StreamEventDone})
			return
		}
		if err != nil {
			a.send(ctx, ErrorEvent(err))
			return
		}

		switch event.Type {
		case llm.EventTextDelta:
			if event.Text == "" {
				continue
			}
			if !a.send(ctx, StreamEvent{Type: StreamEventText, Text: event.Text}) {
				return
			}
		case llm.EventUsage:
			if event.Use == nil {
				continue
			}
			if !a.send(ctx, StreamEvent{
				Type:         StreamEventUsage,
				InputTokens:  event.Use.InputTokens,
				OutputTokens: event.Use.OutputTokens,
			}) {
				return
			}
		case llm.EventDone:
			a.send(ctx, StreamEvent{Type: StreamEventDone})
			return
		case llm.EventError:
			a.send(ctx, ErrorEvent(event.Err))
			return
		default:
			// Non-text provider events carry nothing the transcript shows.
		}
	}
}

func (a *StreamAdapter) send(ctx context.Context, ev StreamEvent) bool {
	select {
	case a.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
