package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sigobj/beaconfence/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsBySource   map[log.Source]int
	EventsByCategory map[log.Category]int
	Regions          map[string]*RegionStats
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// RegionStats holds statistics for a single region key.
type RegionStats struct {
	Name      string
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Readings  int
	Matched   int
	Enters    int
	Exits     int

	// Closest is the smallest known distance of a matched reading, -1 if none.
	Closest float64
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsBySource:   make(map[log.Source]int),
		EventsByCategory: make(map[log.Category]int),
		Regions:          make(map[string]*RegionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsBySource[event.Source]++
		stats.EventsByCategory[event.Category]++

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		if event.Error != nil {
			stats.Errors++
		}

		if event.Region == "" {
			continue
		}
		rs, ok := stats.Regions[event.Region]
		if !ok {
			rs = &RegionStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
				Closest:   -1,
			}
			stats.Regions[event.Region] = rs
		}
		rs.Events++
		if event.Timestamp.After(rs.LastSeen) {
			rs.LastSeen = event.Timestamp
		}
		if event.Name != "" && rs.Name == "" {
			rs.Name = event.Name
		}

		switch {
		case event.Reading != nil:
			rs.Readings++
			if event.Reading.Matched {
				rs.Matched++
				d := event.Reading.Distance
				if d >= 0 && (rs.Closest < 0 || d < rs.Closest) {
					rs.Closest = d
				}
			}
		case event.Transition != nil:
			if event.Transition.Transition == log.TransitionEnter {
				rs.Enters++
			} else {
				rs.Exits++
			}
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Beacon Fence Log Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Source:")
	for _, src := range []log.Source{log.SourceMonitor, log.SourceEmitter, log.SourceScanner} {
		if count := stats.EventsBySource[src]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", src.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryReading, log.CategoryRegion, log.CategoryAdvertising, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Regions: %d\n", len(stats.Regions))
	if len(stats.Regions) > 0 {
		keys := make([]string, 0, len(stats.Regions))
		for key := range stats.Regions {
			keys = append(keys, key)
		}
		sort.Slice(keys, func(i, j int) bool {
			return stats.Regions[keys[i]].FirstSeen.Before(stats.Regions[keys[j]].FirstSeen)
		})

		fmt.Fprintln(w)
		for _, key := range keys {
			rs := stats.Regions[key]
			duration := rs.LastSeen.Sub(rs.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", key, rs.Events, duration)
			if rs.Name != "" {
				fmt.Fprintf(w, "           Name: %s\n", rs.Name)
			}
			if rs.Readings > 0 {
				fmt.Fprintf(w, "           Readings: %d (%d matched)\n", rs.Readings, rs.Matched)
			}
			if rs.Enters > 0 || rs.Exits > 0 {
				fmt.Fprintf(w, "           Enter/Exit: %d/%d\n", rs.Enters, rs.Exits)
			}
			if rs.Closest >= 0 {
				fmt.Fprintf(w, "           Closest: %.2fm\n", rs.Closest)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
