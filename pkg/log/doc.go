// Package log provides structured event capture for beacon fences.
//
// This package defines the Logger interface and Event types for recording
// what happened to a fence over time: readings received, region enter/exit
// transitions, advertising state changes and errors. It is separate from
// operational logging (slog); captured events form a machine-readable trace
// that the beacon-log tool can replay.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// For production: write to a binary file
//	logger, _ := log.NewFileLogger("/var/log/beaconfence/fence.blog")
//
//	// Both
//	logger := log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys, using
// the .blog extension by convention.
package log
