package server

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/lab1702/shiparena/game"
)

// EventLogger writes engine events as timestamped lines
type EventLogger struct {
	logger *log.Logger
	closer io.Closer
}

// NewEventLogger writes events to w
func NewEventLogger(w io.Writer) *EventLogger {
	return &EventLogger{logger: log.New(w, "", log.LstdFlags)}
}

// OpenEventLogger appends events to the file at path and echoes them to
// mirror when it is not nil.
func OpenEventLogger(path string, mirror io.Writer) (*EventLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	var w io.Writer = f
	if mirror != nil {
		w = io.MultiWriter(f, mirror)
	}
	l := NewEventLogger(w)
	l.closer = f
	return l, nil
}

// Emit implements game.EventSink
func (l *EventLogger) Emit(ev game.Event) {
	l.logger.Printf("tick %d: %s", ev.Tick, ev)
}

// Close closes the underlying log file, if any
func (l *EventLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Writer returns the destination events are written to
func (l *EventLogger) Writer() io.Writer {
	return l.logger.Writer()
}
