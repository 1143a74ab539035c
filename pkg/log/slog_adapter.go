package log

import (
	"context"
	"log/slog"

	"github.com/sigobj/beaconfence/pkg/fence"
)

// SlogAdapter writes events to an slog.Logger.
// Useful for development when you want to see fence events in the console.
type SlogAdapter struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlogAdapter creates a SlogAdapter that writes at Debug level.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger, level: slog.LevelDebug}
}

// WithLevel returns a copy of the adapter that writes at the given level.
func (a *SlogAdapter) WithLevel(level slog.Level) *SlogAdapter {
	return &SlogAdapter{logger: a.logger, level: level}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("source", event.Source.String()),
		slog.String("category", event.Category.String()),
	}

	if event.Region != "" {
		attrs = append(attrs, slog.String("region", event.Region))
	}
	if event.Name != "" {
		attrs = append(attrs, slog.String("name", event.Name))
	}

	switch {
	case event.Reading != nil:
		attrs = append(attrs,
			slog.String("proximity", fence.Proximity(event.Reading.Proximity).String()),
			slog.Float64("distance", event.Reading.Distance),
			slog.Bool("matched", event.Reading.Matched),
		)
		if event.Reading.RSSI != 0 {
			attrs = append(attrs, slog.Int("rssi", event.Reading.RSSI))
		}
		if event.Reading.Location != "" {
			attrs = append(attrs, slog.String("location", event.Reading.Location))
		}
	case event.Transition != nil:
		attrs = append(attrs, slog.String("transition", event.Transition.Transition.String()))
		if event.Transition.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.Transition.Reason))
		}
	case event.Advertising != nil:
		attrs = append(attrs,
			slog.String("old_state", event.Advertising.OldState),
			slog.String("new_state", event.Advertising.NewState),
		)
		if event.Advertising.RSSI != 0 {
			attrs = append(attrs, slog.Int("rssi", event.Advertising.RSSI))
		}
	case event.Error != nil:
		attrs = append(attrs, slog.String("error_msg", event.Error.Message))
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), a.level, "fence event", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
