package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestSlogAdapterReading(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(newBufferLogger(&buf))

	adapter.Log(Event{
		Timestamp: time.Now(),
		Source:    SourceMonitor,
		Category:  CategoryReading,
		Region:    "r",
		Reading:   &ReadingEvent{Proximity: 3, Distance: 10, RSSI: -80, Matched: true, Location: "Location: Far ~10.00m"},
	})

	out := buf.String()
	for _, want := range []string{"category=READING", "proximity=Far", "matched=true", "rssi=-80", "region=r", "level=DEBUG"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestSlogAdapterTransitionAtInfo(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(newBufferLogger(&buf)).WithLevel(slog.LevelInfo)

	adapter.Log(Event{
		Category:   CategoryRegion,
		Name:       "Lobby",
		Transition: &TransitionEvent{Transition: TransitionExit, Reason: "timeout"},
	})

	out := buf.String()
	for _, want := range []string{"transition=EXIT", "reason=timeout", "name=Lobby", "level=INFO"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestSlogAdapterError(t *testing.T) {
	var buf bytes.Buffer
	NewSlogAdapter(newBufferLogger(&buf)).Log(Event{
		Category: CategoryError,
		Error:    &ErrorEventData{Message: "boom", Context: "scan"},
	})

	if !strings.Contains(buf.String(), "error_msg=boom") {
		t.Errorf("output missing error: %s", buf.String())
	}
}
