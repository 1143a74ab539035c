// Package commands implements the beacon-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/sigobj/beaconfence/pkg/fence"
	"github.com/sigobj/beaconfence/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Source   *log.Source
	Category *log.Category
	Region   string
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		Region:   f.Region,
		Source:   f.Source,
		Category: f.Category,
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [region] SOURCE CATEGORY
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	region := event.Region
	if region == "" {
		region = "-"
	}

	fmt.Fprintf(w, "%s [%s] %-7s %s\n", ts, region, event.Source.String(), event.Category.String())
	if event.Name != "" {
		fmt.Fprintf(w, "  Name: %s\n", event.Name)
	}

	switch {
	case event.Reading != nil:
		formatReadingDetails(w, event.Reading)
	case event.Transition != nil:
		formatTransitionDetails(w, event.Transition)
	case event.Advertising != nil:
		formatAdvertisingDetails(w, event.Advertising)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

func formatReadingDetails(w io.Writer, r *log.ReadingEvent) {
	fmt.Fprintf(w, "  Proximity: %s\n", fence.Proximity(r.Proximity).String())
	if r.Distance >= 0 {
		fmt.Fprintf(w, "  Distance: %.2fm\n", r.Distance)
	}
	if r.RSSI != 0 {
		fmt.Fprintf(w, "  RSSI: %d dBm\n", r.RSSI)
	}
	fmt.Fprintf(w, "  Matched: %t\n", r.Matched)
	if r.Location != "" {
		fmt.Fprintf(w, "  %s\n", r.Location)
	}
}

func formatTransitionDetails(w io.Writer, t *log.TransitionEvent) {
	fmt.Fprintf(w, "  %s\n", t.Transition.String())
	if t.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", t.Reason)
	}
}

func formatAdvertisingDetails(w io.Writer, a *log.AdvertisingEvent) {
	fmt.Fprintf(w, "  %s -> %s\n", a.OldState, a.NewState)
	if a.RSSI != 0 {
		fmt.Fprintf(w, "  Signal: %d dBm\n", a.RSSI)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// ParseSourceFlag parses a source string from command-line flag (case-insensitive).
func ParseSourceFlag(s string) (log.Source, error) {
	switch strings.ToLower(s) {
	case "monitor":
		return log.SourceMonitor, nil
	case "emitter":
		return log.SourceEmitter, nil
	case "scanner":
		return log.SourceScanner, nil
	default:
		return 0, fmt.Errorf("invalid source: %s (must be monitor, emitter, or scanner)", s)
	}
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "reading":
		return log.CategoryReading, nil
	case "region":
		return log.CategoryRegion, nil
	case "advertising":
		return log.CategoryAdvertising, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be reading, region, advertising, or error)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		formatEvent(output, event)
	}

	return nil
}
