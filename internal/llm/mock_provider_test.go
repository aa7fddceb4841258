package llm

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"unicode/utf8"
)

// collectStream drains a stream into its text, usage and terminal error.
func collectStream(t *testing.T, s Stream) (string, *Usage, error) {
	t.Helper()
	var text strings.Builder
	var usage *Usage
	for {
		event, err := s.Recv()
		if err == io.EOF {
			return text.String(), usage, nil
		}
		if err != nil {
			t.Fatalf("recv failed: %v", err)
		}
		switch event.Type {
		case EventTextDelta:
			text.WriteString(event.Text)
		case EventUsage:
			usage = event.Use
		case EventError:
			return text.String(), usage, event.Err
		}
	}
}

func TestMockProviderScriptedTurns(t *testing.T) {
	mock := NewMockProvider("mock").
		AddTextResponse("Hello there, how can I help?").
		AddTextResponse("Second reply")

	stream, err := mock.Stream(context.Background(), Request{Messages: []Message{UserMessage("hi")}})
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	text, _, streamErr := collectStream(t, stream)
	if streamErr != nil {
		t.Fatalf("unexpected stream error: %v", streamErr)
	}
	if text != "Hello there, how can I help?" {
		t.Fatalf("text=%q, want full first turn", text)
	}

	stream, err = mock.Stream(context.Background(), Request{Messages: []Message{UserMessage("again")}})
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	text, _, _ = collectStream(t, stream)
	if text != "Second reply" {
		t.Fatalf("text=%q, want %q", text, "Second reply")
	}

	if mock.RequestCount() != 2 {
		t.Fatalf("recorded %d requests, want 2", mock.RequestCount())
	}
	last, ok := mock.LastRequest()
	if !ok || len(last.Messages) != 1 || last.Messages[0].Content != "again" {
		t.Fatalf("unexpected last request: %+v", last)
	}
}

func TestMockProviderError(t *testing.T) {
	wantErr := errors.New("timeout")
	mock := NewMockProvider("mock").AddError(wantErr)

	stream, err := mock.Stream(context.Background(), Request{Messages: []Message{UserMessage("hi")}})
	if err != nil {
		t.Fatalf("stream setup failed: %v", err)
	}
	_, _, streamErr := collectStream(t, stream)
	if !errors.Is(streamErr, wantErr) {
		t.Fatalf("stream error=%v, want %v", streamErr, wantErr)
	}
}

func TestMockProviderExhaustedTurns(t *testing.T) {
	mock := NewMockProvider("mock")
	if _, err := mock.Stream(context.Background(), Request{}); err == nil {
		t.Fatal("expected error when no turns are configured")
	}
}

func TestChunkText(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		chunkSize int
		want      []string
	}{
		{name: "empty", input: "", chunkSize: 10, want: nil},
		{name: "short", input: "hi", chunkSize: 10, want: []string{"hi"}},
		{name: "breaks at space", input: "hellos worlds", chunkSize: 10, want: []string{"hellos ", "worlds"}},
		{name: "space too early to use", input: "hello world again", chunkSize: 10, want: []string{"hello worl", "d again"}},
		{name: "no space", input: "abcdefghijkl", chunkSize: 10, want: []string{"abcdefghij", "kl"}},
		{name: "multibyte runes stay whole", input: "こんにちは世界", chunkSize: 10, want: []string{"こんに", "ちは世", "界"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := chunkText(tc.input, tc.chunkSize)
			if len(got) != len(tc.want) {
				t.Fatalf("chunks=%q, want %q", got, tc.want)
			}
			for i := range got {
				if !utf8.ValidString(got[i]) {
					t.Fatalf("chunk %d is not valid UTF-8: %q", i, got[i])
				}
				if got[i] != tc.want[i] {
					t.Fatalf("chunk %d=%q, want %q", i, got[i], tc.want[i])
				}
			}
			if joined := strings.Join(got, ""); joined != tc.input {
				t.Fatalf("chunks lose content: %q != %q", joined, tc.input)
			}
		})
	}
}
