package log

import (
	"testing"
	"time"
)

func TestEncodeDecodeReadingEvent(t *testing.T) {
	ts := time.Date(2026, 3, 20, 9, 30, 0, 123456789, time.UTC)
	event := Event{
		Timestamp: ts,
		Source:    SourceMonitor,
		Category:  CategoryReading,
		Region:    "ee7c8afc-4ded-48d6-9e17-19cf106d89ef:501:201",
		Name:      "BeaconRegion01",
		Reading: &ReadingEvent{
			Proximity: 2,
			Distance:  3.456,
			RSSI:      -65,
			Matched:   true,
			Location:  "Location: Near ~3.46m",
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(ts) {
		t.Errorf("Timestamp: got %v, want %v (nanoseconds must survive)", decoded.Timestamp, ts)
	}
	if decoded.Region != event.Region {
		t.Errorf("Region: got %q, want %q", decoded.Region, event.Region)
	}
	if decoded.Reading == nil {
		t.Fatal("Reading is nil")
	}
	if *decoded.Reading != *event.Reading {
		t.Errorf("Reading: got %+v, want %+v", *decoded.Reading, *event.Reading)
	}
	if decoded.Transition != nil || decoded.Advertising != nil || decoded.Error != nil {
		t.Error("unexpected payloads set after decode")
	}
}

func TestEncodeOmitsEmptyPayloads(t *testing.T) {
	small, err := EncodeEvent(Event{Timestamp: time.Unix(0, 0).UTC()})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	full, err := EncodeEvent(Event{
		Timestamp:  time.Unix(0, 0).UTC(),
		Transition: &TransitionEvent{Transition: TransitionExit, Reason: "timeout"},
	})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	if len(full) <= len(small) {
		t.Errorf("expected payload to grow encoding: %d <= %d", len(full), len(small))
	}
}

func TestDecodeEventGarbage(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xff, 0xff}); err == nil {
		t.Error("expected error decoding garbage")
	}
}
