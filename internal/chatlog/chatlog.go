// Package chatlog records completed chat exchanges as NDJSON, one file per
// session, without blocking the request path.
package chatlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config controls NDJSON conversation logging.
type Config struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Event is one logged message of an exchange.
type Event struct {
	Timestamp string         `json:"timestamp"`
	SessionID string         `json:"session_id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Logger accepts conversation events. Implementations must never block the
// caller; events may be dropped under backpressure.
type Logger interface {
	Log(event Event)
	Close() error
}

type noopLogger struct{}

func (noopLogger) Log(Event)    {}
func (noopLogger) Close() error { return nil }

// FileLogger appends events to <dir>/<sessionID>.ndjson via a background
// writer fed from a bounded queue.
type FileLogger struct {
	dir   string
	queue chan Event
	wg    sync.WaitGroup
	log   *slog.Logger

	closeOnce sync.Once
}

// New creates a conversation logger. When logging is disabled it returns a
// no-op implementation.
func New(cfg Config, logger *slog.Logger) (Logger, error) {
	if !cfg.Enabled {
		return noopLogger{}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create chat log directory: %w", err)
	}

	fl := &FileLogger{
		dir:   cfg.Dir,
		queue: make(chan Event, cfg.QueueSize),
		log:   logger,
	}
	fl.wg.Add(1)
	go fl.run()
	return fl, nil
}

// Log enqueues an event. A full queue drops the event with a warning rather
// than stalling the request.
func (fl *FileLogger) Log(event Event) {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	select {
	case fl.queue <- event:
	default:
		fl.log.Warn("chat log queue full, dropping event", "session_id", event.SessionID)
	}
}

// Close stops the writer after draining queued events.
func (fl *FileLogger) Close() error {
	fl.closeOnce.Do(func() { close(fl.queue) })
	fl.wg.Wait()
	return nil
}

func (fl *FileLogger) run() {
	defer fl.wg.Done()
	for event := range fl.queue {
		if err := fl.write(event); err != nil {
			fl.log.Warn("failed to write chat log event", "session_id", event.SessionID, "error", err)
		}
	}
}

func (fl *FileLogger) write(event Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	path := filepath.Join(fl.dir, event.SessionID+".ndjson")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			fl.log.Warn("failed to close chat log file", "path", path, "error", closeErr)
		}
	}()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}
