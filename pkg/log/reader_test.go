package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func writeEvents(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.blog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for _, ev := range events {
		logger.Log(ev)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return path
}

func TestReaderFilter(t *testing.T) {
	base := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, Source: SourceMonitor, Category: CategoryReading, Region: "a"},
		{Timestamp: base.Add(time.Second), Source: SourceMonitor, Category: CategoryRegion, Region: "a"},
		{Timestamp: base.Add(2 * time.Second), Source: SourceEmitter, Category: CategoryAdvertising, Region: "b"},
		{Timestamp: base.Add(3 * time.Second), Source: SourceMonitor, Category: CategoryReading, Region: "b"},
	}
	path := writeEvents(t, events)

	reading := CategoryReading
	emitter := SourceEmitter
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"All", Filter{}, 4},
		{"Region", Filter{Region: "a"}, 2},
		{"Category", Filter{Category: &reading}, 2},
		{"Source", Filter{Source: &emitter}, 1},
		{"TimeWindow", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"Combined", Filter{Region: "b", Category: &reading}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer r.Close()

			count := 0
			for {
				_, err := r.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("Next failed: %v", err)
				}
				count++
			}
			if count != tt.want {
				t.Errorf("got %d events, want %d", count, tt.want)
			}
		})
	}
}

func TestNewReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "nope.blog")); err == nil {
		t.Error("expected error for missing file")
	}
}
